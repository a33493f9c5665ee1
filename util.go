package xaml

var whitespaceTable = [256]bool{
	' ':  true,
	'\t': true,
	'\n': true,
	'\r': true,
	'\f': true,
}

// IsWhitespace returns true for space, \t, \n, \r and \f.
func IsWhitespace(c byte) bool {
	return whitespaceTable[c]
}

// IsAllWhitespace returns true when the entire string consists of whitespace.
func IsAllWhitespace(s string) bool {
	for i := 0; i < len(s); i++ {
		if !IsWhitespace(s[i]) {
			return false
		}
	}
	return true
}

// TrimWhitespace removes leading and trailing whitespace.
func TrimWhitespace(s string) string {
	start, end := 0, len(s)
	for start < end && IsWhitespace(s[start]) {
		start++
	}
	for start < end && IsWhitespace(s[end-1]) {
		end--
	}
	return s[start:end]
}

// Indentation returns the number of leading spaces and tabs of a line, each counting as one column.
func Indentation(line string) int {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// isNameStart returns true for the first character of tag and attribute names.
func isNameStart(c byte) bool {
	return isLetter(c) || c == '_' || 0x80 <= c
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c) || c == '-' || c == '.'
}

// dedent removes the indentation common to all non-blank lines.
func dedent(lines []string) []string {
	n := -1
	for _, line := range lines {
		if IsAllWhitespace(line) {
			continue
		}
		if w := Indentation(line); n == -1 || w < n {
			n = w
		}
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if IsAllWhitespace(line) {
			out[i] = ""
		} else {
			out[i] = line[n:]
		}
	}
	return out
}
