package xml

import "strings"

const (
	singleQuoteEntity = "&#39;"
	doubleQuoteEntity = "&#34;"
)

var textReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeText escapes character data.
func EscapeText(s string) string {
	return textReplacer.Replace(s)
}

// EscapeAttrVal returns the escaped attribute value with quotes. Double quotes are used unless the value
// holds more double than single quotes.
func EscapeAttrVal(s string) string {
	singles := strings.Count(s, "'")
	doubles := strings.Count(s, `"`)

	quote, escapedQuote := byte('"'), doubleQuoteEntity
	if doubles > singles {
		quote, escapedQuote = '\'', singleQuoteEntity
	}

	sb := strings.Builder{}
	sb.Grow(len(s) + 2)
	sb.WriteByte(quote)
	start := 0
	for i := 0; i < len(s); i++ {
		var entity string
		switch c := s[i]; c {
		case '&':
			entity = "&amp;"
		case '<':
			entity = "&lt;"
		case '>':
			entity = "&gt;"
		case quote:
			entity = escapedQuote
		default:
			continue
		}
		sb.WriteString(s[start:i])
		sb.WriteString(entity)
		start = i + 1
	}
	sb.WriteString(s[start:])
	sb.WriteByte(quote)
	return sb.String()
}
