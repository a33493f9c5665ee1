package xaml

import (
	"strconv"
	"strings"
)

// TokenType determines the type of token, eg. an element or an attribute.
type TokenType uint32

// TokenType values.
const (
	ErrorToken     TokenType = iota // extra token at the end of input and when errors occur
	ElementToken                    // ~tag
	StrAttrToken                    // name='value'
	CodeAttrToken                   // name=expr
	StrDataToken                    // text
	CodeDataToken                   // = expr
	CommentToken                    // // text
	MetaToken                       // !!! xml1.0
	PythonToken                     // -code
	IndentToken
	DedentToken
	BlankLineToken
)

// String returns the string representation of a TokenType.
func (tt TokenType) String() string {
	switch tt {
	case ErrorToken:
		return "Error"
	case ElementToken:
		return "Element"
	case StrAttrToken:
		return "StrAttr"
	case CodeAttrToken:
		return "CodeAttr"
	case StrDataToken:
		return "StrData"
	case CodeDataToken:
		return "CodeData"
	case CommentToken:
		return "Comment"
	case MetaToken:
		return "Meta"
	case PythonToken:
		return "Python"
	case IndentToken:
		return "Indent"
	case DedentToken:
		return "Dedent"
	case BlankLineToken:
		return "BlankLine"
	}
	return "Invalid(" + strconv.Itoa(int(tt)) + ")"
}

////////////////////////////////////////////////////////////////

// Token is a single, immutable token unit. Tokens are comparable, two tokens are equal when all fields are.
//
// Name holds the tag of an element, the name of an attribute, the doc type of a meta declaration or the filter of
// raw data. Value holds the attribute value, the text or code, the version of a meta declaration or the comment.
type Token struct {
	TokenType
	Name     string
	Value    string
	MakeSafe bool // textual payload still requires escaping
	Inline   bool // continues the line of the preceding element or data
}

// String returns a debug representation of the token.
func (t Token) String() string {
	sb := strings.Builder{}
	sb.WriteString(t.TokenType.String())
	switch t.TokenType {
	case ElementToken:
		sb.WriteString("(" + t.Name + ")")
	case StrAttrToken, CodeAttrToken:
		sb.WriteString("(" + t.Name + "=" + strconv.Quote(t.Value) + ")")
	case MetaToken:
		sb.WriteString("(" + t.Name + " " + t.Value + ")")
	case StrDataToken, CodeDataToken, CommentToken, PythonToken:
		if t.Name != "" {
			sb.WriteString("(:" + t.Name + " " + strconv.Quote(t.Value) + ")")
		} else {
			sb.WriteString("(" + strconv.Quote(t.Value) + ")")
		}
	}
	if t.Inline {
		sb.WriteString("+inline")
	}
	return sb.String()
}
