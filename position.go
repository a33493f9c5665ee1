package xaml

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// contextWidth is the number of characters of a source line shown in an error context.
const contextWidth = 60

// Context renders a source line with a caret below the given 1-based byte column. Lines longer than
// contextWidth characters are cut around the column and the cut is marked by an ellipsis.
func Context(line int, text string, column int) string {
	text = strings.TrimRight(text, "\r\n")
	rs := []rune(strings.ReplaceAll(text, "\t", " "))
	column = runeColumn(text, column)

	start, end := 0, len(rs)
	if contextWidth < len(rs) {
		start = column - 1 - contextWidth/2
		if start < 0 {
			start = 0
		}
		end = start + contextWidth
		if len(rs) < end {
			end = len(rs)
			start = end - contextWidth
		}
	}

	prefix, suffix := "", ""
	if 0 < start {
		prefix = "..."
	}
	if end < len(rs) {
		suffix = "..."
	}
	caret := column - start + len(prefix)
	if caret < 1 {
		caret = 1
	}

	context := fmt.Sprintf("%5d: %s%s%s\n", line, prefix, string(rs[start:end]), suffix)
	context += fmt.Sprintf("%s^", strings.Repeat(" ", caret+6))
	return context
}

// runeColumn converts a 1-based byte column to a 1-based rune column. Columns past the end of the line
// count one per byte.
func runeColumn(text string, column int) int {
	if column < 1 {
		return 1
	} else if len(text) < column-1 {
		return utf8.RuneCountInString(text) + column - len(text)
	}
	return utf8.RuneCountInString(text[:column-1]) + 1
}
