package xaml

import "strings"

// LineStream is a cursor over lines of text that reads either characters or whole lines.
// Characters and lines can be pushed back; pushed items are returned in LIFO order and ahead of the source.
type LineStream struct {
	lines []string
	pos   int

	cur    []rune   // rest of the current line, including its newline
	chars  []rune   // pushed characters, top at the end
	pushed []string // pushed lines, top at the end
}

// NewLineStream returns a new LineStream. A single trailing newline on each line is ignored.
func NewLineStream(lines []string) *LineStream {
	ls := make([]string, len(lines))
	for i, line := range lines {
		ls[i] = trimNewline(line)
	}
	return &LineStream{
		lines: ls,
	}
}

func (s *LineStream) next() (string, bool) {
	if n := len(s.pushed); 0 < n {
		line := s.pushed[n-1]
		s.pushed = s.pushed[:n-1]
		return line, true
	} else if s.pos < len(s.lines) {
		line := s.lines[s.pos]
		s.pos++
		return line, true
	}
	return "", false
}

// GetChar returns the next character, a newline ends every line. It returns false once the stream is exhausted.
func (s *LineStream) GetChar() (rune, bool) {
	if n := len(s.chars); 0 < n {
		c := s.chars[n-1]
		s.chars = s.chars[:n-1]
		return c, true
	}
	if len(s.cur) == 0 {
		line, ok := s.next()
		if !ok {
			return 0, false
		}
		s.cur = []rune(line + "\n")
	}
	c := s.cur[0]
	s.cur = s.cur[1:]
	return c, true
}

// GetLine returns the rest of the current line, or the next line, including its newline.
// Pushed characters are prepended. It returns false once the stream is exhausted.
func (s *LineStream) GetLine() (string, bool) {
	sb := strings.Builder{}
	for i := len(s.chars) - 1; 0 <= i; i-- {
		sb.WriteRune(s.chars[i])
	}
	s.chars = s.chars[:0]

	if 0 < len(s.cur) {
		sb.WriteString(string(s.cur))
		s.cur = s.cur[:0]
		return sb.String(), true
	}
	line, ok := s.next()
	if !ok {
		if 0 < sb.Len() {
			return sb.String(), true
		}
		return "", false
	}
	sb.WriteString(line)
	sb.WriteByte('\n')
	return sb.String(), true
}

// PushChar pushes a character back so that it is returned next.
func (s *LineStream) PushChar(c rune) {
	s.chars = append(s.chars, c)
}

// PushLine pushes a line back so that it is returned next. A trailing newline is ignored.
func (s *LineStream) PushLine(line string) {
	if 0 < len(s.cur) {
		s.pushed = append(s.pushed, trimNewline(string(s.cur)))
		s.cur = s.cur[:0]
	}
	s.pushed = append(s.pushed, trimNewline(line))
}

func trimNewline(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
