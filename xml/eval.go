package xml

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/xaml-go/xaml"
)

// ErrUnsupported is returned for code lines and expressions the renderer cannot evaluate.
var ErrUnsupported = errors.New("unsupported code")

// ErrUndefined is returned for names that are neither bound nor given as variables.
var ErrUndefined = errors.New("undefined name")

// scope holds the names bound while rendering a page. Names bound by code lines and loops stay visible
// to the rest of the page, args.name only refers to the variables.
type scope struct {
	names map[string]interface{}
	args  map[string]interface{}
}

func newScope(args map[string]interface{}) *scope {
	return &scope{
		names: map[string]interface{}{},
		args:  args,
	}
}

func (s *scope) lookup(name string) (interface{}, error) {
	if strings.HasPrefix(name, "args.") {
		if v, ok := s.args[name[len("args."):]]; ok {
			return v, nil
		}
	} else if v, ok := s.names[name]; ok {
		return v, nil
	} else if v, ok := s.args[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w %s", ErrUndefined, name)
}

func (s *scope) bind(targets []string, v interface{}) error {
	if len(targets) == 1 {
		s.names[targets[0]] = v
		return nil
	}
	items, ok := sequence(v)
	if !ok || len(items) != len(targets) {
		return fmt.Errorf("%w: cannot unpack %v into %d names", ErrUnsupported, v, len(targets))
	}
	for i, target := range targets {
		s.names[target] = items[i]
	}
	return nil
}

// eval evaluates a small expression language: string and number literals, True, False and None, names,
// zip(a, b), not, and, or, == and !=, and printf-style 'format' % args.
func (s *scope) eval(expr string) (interface{}, error) {
	expr = xaml.TrimWhitespace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrUnsupported)
	}
	if l, r, ok := splitOperator(expr, " or "); ok {
		v, err := s.eval(l)
		if err != nil || truthy(v) {
			return v, err
		}
		return s.eval(r)
	} else if l, r, ok := splitOperator(expr, " and "); ok {
		v, err := s.eval(l)
		if err != nil || !truthy(v) {
			return v, err
		}
		return s.eval(r)
	} else if strings.HasPrefix(expr, "not ") {
		v, err := s.eval(expr[len("not "):])
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	}
	for _, op := range []string{"==", "!="} {
		if l, r, ok := splitOperator(expr, op); ok {
			lv, err := s.eval(l)
			if err != nil {
				return nil, err
			}
			rv, err := s.eval(r)
			if err != nil {
				return nil, err
			}
			return equal(lv, rv) == (op == "=="), nil
		}
	}

	if l, r, ok := splitOperator(expr, " % "); ok {
		return s.format(l, r)
	}

	switch c := expr[0]; {
	case c == '\'' || c == '"':
		if v, ok := unquote(expr); ok {
			return v, nil
		}
	case c == '-' || '0' <= c && c <= '9':
		if i, err := strconv.Atoi(expr); err == nil {
			return i, nil
		} else if f, err := strconv.ParseFloat(expr, 64); err == nil {
			return f, nil
		}
	case expr == "True" || expr == "False":
		return expr == "True", nil
	case expr == "None":
		return nil, nil
	case strings.HasPrefix(expr, "zip(") && strings.HasSuffix(expr, ")"):
		return s.zip(expr[len("zip(") : len(expr)-1])
	case isName(expr):
		return s.lookup(expr)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, expr)
}

func (s *scope) zip(args string) (interface{}, error) {
	var seqs [][]interface{}
	for _, arg := range splitArgs(args) {
		v, err := s.eval(arg)
		if err != nil {
			return nil, err
		}
		items, ok := sequence(v)
		if !ok {
			return nil, fmt.Errorf("%w: zip of %T", ErrUnsupported, v)
		}
		seqs = append(seqs, items)
	}
	n := -1
	for _, seq := range seqs {
		if n == -1 || len(seq) < n {
			n = len(seq)
		}
	}
	out := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		tuple := make([]interface{}, len(seqs))
		for j, seq := range seqs {
			tuple[j] = seq[i]
		}
		out = append(out, tuple)
	}
	return out, nil
}

// format substitutes %s and %d verbs of a format string by the values of a single expression or a
// parenthesized list.
func (s *scope) format(l, r string) (interface{}, error) {
	v, err := s.eval(l)
	if err != nil {
		return nil, err
	}
	format, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T %% ...", ErrUnsupported, v)
	}
	r = xaml.TrimWhitespace(r)
	exprs := []string{r}
	if strings.HasPrefix(r, "(") && strings.HasSuffix(r, ")") {
		exprs = splitArgs(r[1 : len(r)-1])
	}

	sb := strings.Builder{}
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			sb.WriteByte(format[i])
			continue
		} else if i+1 == len(format) {
			return nil, fmt.Errorf("%w: incomplete format %q", ErrUnsupported, format)
		}
		i++
		switch format[i] {
		case '%':
			sb.WriteByte('%')
		case 's', 'd':
			if len(exprs) == 0 {
				return nil, fmt.Errorf("%w: not enough arguments for %q", ErrUnsupported, format)
			}
			v, err := s.eval(exprs[0])
			if err != nil {
				return nil, err
			}
			sb.WriteString(stringify(v))
			exprs = exprs[1:]
		default:
			return nil, fmt.Errorf("%w: format verb %%%c", ErrUnsupported, format[i])
		}
	}
	if len(exprs) != 0 {
		return nil, fmt.Errorf("%w: too many arguments for %q", ErrUnsupported, format)
	}
	return sb.String(), nil
}

// text returns the string value of an expression.
func (s *scope) text(expr string) (string, error) {
	v, err := s.eval(expr)
	if err != nil {
		return "", err
	}
	return stringify(v), nil
}

////////////////////////////////////////////////////////////////

func stringify(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	}
	return fmt.Sprint(v)
}

func truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() != 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func equal(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return stringify(a) == stringify(b)
}

// sequence returns the items of a slice or array.
func sequence(v interface{}) ([]interface{}, bool) {
	if items, ok := v.([]interface{}); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func unquote(s string) (string, bool) {
	q := s[0]
	if len(s) < 2 || s[len(s)-1] != q {
		return "", false
	}
	sb := strings.Builder{}
	for i := 1; i < len(s)-1; i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s)-1 {
			i++
			c = s[i]
		} else if c == q {
			return "", false
		}
		sb.WriteByte(c)
	}
	return sb.String(), true
}

func isName(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if part == "" || '0' <= part[0] && part[0] <= '9' {
			return false
		}
		for i := 0; i < len(part); i++ {
			if c := part[i]; c != '_' && !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
				return false
			}
		}
	}
	return true
}

// splitOperator splits expr at the first occurrence of op outside of quotes and parentheses.
func splitOperator(expr, op string) (string, string, bool) {
	var quote byte
	depth := 0
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		default:
			if depth == 0 && strings.HasPrefix(expr[i:], op) {
				return expr[:i], expr[i+len(op):], true
			}
		}
	}
	return "", "", false
}

func splitArgs(s string) []string {
	var args []string
	for {
		l, r, ok := splitOperator(s, ",")
		if !ok {
			if xaml.TrimWhitespace(s) != "" {
				args = append(args, s)
			}
			return args
		}
		args = append(args, l)
		s = r
	}
}

////////////////////////////////////////////////////////////////

type clauseKind int

const (
	assignClause clauseKind = iota
	forClause
	ifClause
	elifClause
	elseClause
)

// clause is a parsed code line.
type clause struct {
	kind    clauseKind
	targets []string // names bound by assignments and loops
	expr    string
}

func parseClause(src string) (clause, error) {
	src = xaml.TrimWhitespace(src)
	head := strings.TrimSuffix(src, ":")
	block := head != src
	switch {
	case block && strings.HasPrefix(head, "for "):
		l, r, ok := splitOperator(head[len("for "):], " in ")
		if !ok {
			break
		}
		targets := splitArgs(strings.Trim(xaml.TrimWhitespace(l), "()"))
		for i, target := range targets {
			targets[i] = xaml.TrimWhitespace(target)
			if !isName(targets[i]) {
				return clause{}, fmt.Errorf("%w: -%s", ErrUnsupported, src)
			}
		}
		return clause{kind: forClause, targets: targets, expr: r}, nil
	case block && strings.HasPrefix(head, "if "):
		return clause{kind: ifClause, expr: head[len("if "):]}, nil
	case block && strings.HasPrefix(head, "elif "):
		return clause{kind: elifClause, expr: head[len("elif "):]}, nil
	case block && xaml.TrimWhitespace(head) == "else":
		return clause{kind: elseClause}, nil
	case !block:
		if l, r, ok := splitOperator(src, "="); ok && !strings.HasPrefix(r, "=") {
			if name := xaml.TrimWhitespace(l); isName(name) {
				return clause{kind: assignClause, targets: []string{name}, expr: r}, nil
			}
		}
	}
	return clause{}, fmt.Errorf("%w: -%s", ErrUnsupported, src)
}
