package xaml

// TokenBuffer is a buffer that allows for token look-ahead.
type TokenBuffer struct {
	t *Tokenizer

	buf []Token
	pos int
}

// NewTokenBuffer returns a new TokenBuffer.
func NewTokenBuffer(t *Tokenizer) *TokenBuffer {
	return &TokenBuffer{
		t:   t,
		buf: make([]Token, 0, 8),
	}
}

func (z *TokenBuffer) read(p []Token) int {
	for i := 0; i < len(p); i++ {
		p[i] = z.t.Next()
		if p[i].TokenType == ErrorToken {
			return i + 1
		}
	}
	return len(p)
}

// Peek returns the ith element and possibly does an allocation.
// Peeking past an error returns the ErrorToken.
func (z *TokenBuffer) Peek(pos int) *Token {
	pos += z.pos
	if pos >= len(z.buf) {
		if 0 < len(z.buf) && z.buf[len(z.buf)-1].TokenType == ErrorToken {
			return &z.buf[len(z.buf)-1]
		}

		c := cap(z.buf)
		d := len(z.buf) - z.pos
		p := pos - z.pos + 1 // required peek length
		var buf []Token
		if 2*p > c {
			buf = make([]Token, p, 2*c+p)
		} else {
			buf = z.buf[:p]
		}
		copy(buf[:d], z.buf[z.pos:])

		n := z.read(buf[d:p])
		pos -= z.pos
		z.pos, z.buf = 0, buf[:d+n]
		if pos >= len(z.buf) {
			return &z.buf[len(z.buf)-1]
		}
	}
	return &z.buf[pos]
}

// Shift returns the first element and advances position.
func (z *TokenBuffer) Shift() *Token {
	t := z.Peek(0)
	if t.TokenType != ErrorToken {
		z.pos++
	}
	return t
}

// Err returns the error of the underlying tokenizer.
func (z *TokenBuffer) Err() error {
	return z.t.Err()
}
