package xaml

import (
	"strings"
	"testing"

	"github.com/tdewolff/test"
)

func TestDecode(t *testing.T) {
	var decodeTests = []struct {
		input    string
		expected string
	}{
		{"~a", "~a"},
		{"\xEF\xBB\xBF~a\n", "~a\n"},
		{"!!! coding: cp1252\n~p: caf\xe9", "!!! coding: cp1252\n~p: café"},
		{"!!! coding = latin1\n~p: \xe9", "!!! coding = latin1\n~p: é"},
		{"!!! html\n!!! vim: set fileencoding=iso-8859-1 :\n~p: \xe9", "!!! html\n!!! vim: set fileencoding=iso-8859-1 :\n~p: é"},
		{"\xEF\xBB\xBF!!! coding: utf-8\n~a", "!!! coding: utf-8\n~a"},
		{"~a\n~b\n!!! coding: cp1252", "~a\n~b\n!!! coding: cp1252"},
	}
	for _, tt := range decodeTests {
		t.Run(tt.input, func(t *testing.T) {
			s, err := Decode([]byte(tt.input))
			test.Error(t, err)
			test.String(t, s, tt.expected)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	var errorTests = []struct {
		input string
		line  int
	}{
		{"~a\n~b \xff", 2},
		{"!!! coding:\n~a", 1},
		{"!!! xml\n!!! coding: klingon\n~a", 2},
		{"!!! vim: fileencoding=klingon", 1},
	}
	for _, tt := range errorTests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			xerr, ok := err.(*Error)
			test.That(t, ok, "must return *Error, got", err)
			if ok {
				test.T(t, xerr.Kind, EncodingError)
				test.T(t, xerr.Line, tt.line, "line")
			}
		})
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"utf-8", "UTF-8", "cp1252", "latin1", "shift_jis", "ISO-8859-15"} {
		_, err := LookupEncoding(name)
		test.Error(t, err, name)
	}
	_, err := LookupEncoding("klingon")
	test.That(t, err != nil)
}

func TestDecodeInvalidContext(t *testing.T) {
	_, err := Decode([]byte("~a\n~b \xff\xfe x"))
	xerr, ok := err.(*Error)
	test.That(t, ok, "must return *Error, got", err)
	line, column, context := xerr.Position()
	test.T(t, line, 2, "line")
	test.T(t, column, 5, "column")
	test.T(t, "\n"+context, "\n    2: ~b � x\n"+strings.Repeat(" ", 10)+"^")
}
