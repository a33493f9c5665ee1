package xaml

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts the input to text. The encoding is named by a pragma in one of the first two lines, either
// "!!! coding: NAME", "!!! coding = NAME" or "!!! vim: fileencoding=NAME". Without a pragma the input must be
// UTF-8 and a byte order mark is removed.
func Decode(b []byte) (string, error) {
	name, lineNum, line, found := findCoding(b)
	if !found {
		b = bytes.TrimPrefix(b, utf8BOM)
		if !utf8.Valid(b) {
			n, text, col := invalidLine(b)
			return "", NewError(EncodingError, "input is not valid UTF-8", n, text, col)
		}
		return string(b), nil
	}
	if name == "" {
		return "", NewError(EncodingError, "missing encoding name", lineNum, line, len(line)+1)
	}
	enc, err := LookupEncoding(name)
	if err != nil {
		return "", NewError(EncodingError, err.Error(), lineNum, line, strings.Index(line, name)+1)
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), b)
	if err != nil {
		return "", NewError(EncodingError, "cannot decode input as "+name+": "+err.Error(), 0, "", 0)
	}
	return string(out), nil
}

// LookupEncoding returns the encoding with the given WHATWG label or IANA name.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if enc, err := htmlindex.Get(name); err == nil {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, &Error{Kind: EncodingError, Message: "unknown encoding " + name}
	}
	return enc, nil
}

// findCoding looks for a coding pragma in the first two lines.
func findCoding(b []byte) (string, int, string, bool) {
	for n := 1; n <= 2 && 0 < len(b); n++ {
		var raw []byte
		if i := bytes.IndexByte(b, '\n'); i != -1 {
			raw, b = b[:i], b[i+1:]
		} else {
			raw, b = b, nil
		}
		if n == 1 {
			raw = bytes.TrimPrefix(raw, utf8BOM)
		}
		line := strings.TrimRight(string(raw), "\r")
		rest := TrimWhitespace(line)
		if !strings.HasPrefix(rest, "!!!") {
			continue
		}
		rest = TrimWhitespace(rest[3:])
		if strings.HasPrefix(rest, "coding") {
			after := TrimWhitespace(rest[len("coding"):])
			if strings.HasPrefix(after, ":") || strings.HasPrefix(after, "=") {
				return TrimWhitespace(after[1:]), n, line, true
			}
		} else if strings.HasPrefix(rest, "vim:") {
			if i := strings.Index(rest, "fileencoding="); i != -1 {
				name := rest[i+len("fileencoding="):]
				if j := strings.IndexAny(name, " \t:"); j != -1 {
					name = name[:j]
				}
				return name, n, line, true
			}
		}
	}
	return "", 0, "", false
}

// invalidLine returns the 1-based number of the first line that is not valid UTF-8, the line with invalid
// bytes replaced and the column of the first invalid byte.
func invalidLine(b []byte) (int, string, int) {
	for i, line := range bytes.Split(b, []byte{'\n'}) {
		for pos := 0; pos < len(line); {
			r, size := utf8.DecodeRune(line[pos:])
			if r == utf8.RuneError && size == 1 {
				return i + 1, strings.ToValidUTF8(string(line), "\uFFFD"), pos + 1
			}
			pos += size
		}
	}
	return 1, "", 1
}
