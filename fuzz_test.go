package xaml

import (
	"errors"
	"testing"
)

func FuzzParse(f *testing.F) {
	f.Add("~a\n    ~b: text")
	f.Add("!!! html\n.container #main\n    ~p: Hello #{name}!")
	f.Add("~script\n    if (a < b) {}\n\n~after")
	f.Add("~p (class='a'\n   id=x)")
	f.Add("// one\n    two\n// three")
	f.Add(":css\n    body {}")
	f.Add("!!! coding: cp1252\n!!! xml\n~a\n!!! xsl\n~xsl")
	f.Add("~td : ~field @x | y='1'")

	f.Fuzz(func(t *testing.T, s string) {
		doc, err := ParseString(s)
		var ierr *InternalError
		if errors.As(err, &ierr) {
			t.Fatalf("internal error for %q: %v", s, err)
		}
		if err == nil && len(doc.Pages) == 0 {
			t.Fatalf("no pages for %q", s)
		}
	})
}
