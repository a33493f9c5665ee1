package xaml

// Shortcut expands a sigil in attribute position, eg. #main to id="main".
type Shortcut struct {
	Attr   string
	Spaces bool // underscores in the value become spaces
}

// Filter describes how a raw :name block is wrapped when serialized.
type Filter struct {
	Tag   string // element wrapping the block, empty for CDATA only
	Type  string // value of the type attribute of Tag
	CDATA bool
}

// Dialect is the pluggable table of markup conventions the tokenizer consults.
type Dialect struct {
	Shortcuts   map[byte]Shortcut
	Filters     map[string]Filter
	RawElements map[string]bool   // elements whose indented content is captured verbatim
	FieldTag    string            // tag of @name lines
	DefaultTags map[string]string // tag of lines starting with a shortcut, per doc type
}

// DefaultDialect returns the dialect used when no other is given.
func DefaultDialect() *Dialect {
	return &Dialect{
		Shortcuts: map[byte]Shortcut{
			'#': {Attr: "id"},
			'.': {Attr: "class"},
			'$': {Attr: "string", Spaces: true},
			'@': {Attr: "name"},
		},
		Filters: map[string]Filter{
			"python":       {Tag: "script", Type: "text/python"},
			"javascript":   {Tag: "script", Type: "text/javascript"},
			"css":          {Tag: "style", Type: "text/css"},
			"cdata":        {CDATA: true},
			"cdata-python": {CDATA: true, Type: "text/python"},
		},
		RawElements: map[string]bool{
			"script": true,
			"style":  true,
		},
		FieldTag: "field",
		DefaultTags: map[string]string{
			"html": "div",
		},
	}
}

// Shortcut returns the shortcut for sigil c.
func (d *Dialect) Shortcut(c byte) (Shortcut, bool) {
	s, ok := d.Shortcuts[c]
	return s, ok
}

// Filter returns the filter with the given name.
func (d *Dialect) Filter(name string) (Filter, bool) {
	f, ok := d.Filters[name]
	return f, ok
}
