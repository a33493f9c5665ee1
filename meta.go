package xaml

import "strings"

type docTypeSpec struct {
	versions []string // first one is the default
	aliases  map[string]string
}

var docTypes = map[string]docTypeSpec{
	"xml": {versions: []string{"1.0"}},
	"xsl": {versions: []string{"1.0"}},
	"html": {
		versions: []string{"5", "4-strict", "4-transitional"},
		aliases:  map[string]string{"4": "4-strict"},
	},
}

// ResolveVersion returns the canonical version of a doc type, the default version when version is empty.
// It returns false for unknown doc types and versions.
func ResolveVersion(docType, version string) (string, bool) {
	spec, ok := docTypes[docType]
	if !ok {
		return "", false
	}
	if version == "" {
		return spec.versions[0], true
	}
	if alias, ok := spec.aliases[version]; ok {
		version = alias
	}
	for _, v := range spec.versions {
		if v == version {
			return v, true
		}
	}
	return "", false
}

// lexMeta handles the content of a !!! line.
func (t *Tokenizer) lexMeta(z *scanner) error {
	z.skipWhitespace()
	if z.hasPrefix("coding") {
		p := z.pos
		z.pos += len("coding")
		z.skipWhitespace()
		if c := z.peek(0); c == ':' || c == '=' {
			if t.content {
				return t.errorf(p+1, "coding declaration must precede all content")
			}
			return nil
		}
		z.pos = p
	}
	if z.hasPrefix("vim:") {
		return nil
	}

	start := z.pos
	for isLetter(z.peek(0)) {
		z.pos++
	}
	docType := z.s[start:z.pos]
	if docType == "" {
		return t.errorf(z.column(), "missing document type")
	}
	if _, ok := docTypes[docType]; !ok {
		return t.errorf(start+1, "unknown document type %q", z.s[start:z.pos]+z.word())
	}

	versionPos := z.pos
	version := z.word()
	if version == "" {
		z.skipWhitespace()
		p := z.pos
		if w := z.word(); w != "" && !strings.Contains(w, "=") {
			version, versionPos = w, p
		} else {
			z.pos = p
		}
	}
	resolved, ok := ResolveVersion(docType, version)
	if !ok {
		return t.declErrorf(versionPos+1, "unsupported version %q of %s", version, docType)
	}

	if t.declared {
		return t.errorf(1, "declaration without content")
	}
	t.emit(Token{TokenType: MetaToken, Name: docType, Value: resolved})
	for {
		z.skipWhitespace()
		if z.eol() {
			break
		}
		p := z.pos
		name := z.name()
		if name == "" || z.peek(0) != '=' {
			return t.errorf(p+1, "expected key=value option")
		}
		z.pos++
		var value string
		if c := z.peek(0); c == '\'' || c == '"' {
			if value, ok = z.quoted(); !ok {
				return t.errorf(z.column(), "unterminated string")
			}
		} else {
			value = z.word()
		}
		t.emit(Token{TokenType: StrAttrToken, Name: name, Value: value, MakeSafe: true})
	}
	t.docType = docType
	return nil
}
