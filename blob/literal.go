package blob

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/vaseug/PowerLib-sub000/encoding"
	"github.com/vaseug/PowerLib-sub000/errs"
)

// NullLiteral is the token of a null element and of an absent sequence.
const NullLiteral = "NULL"

// maxLiteralDepth bounds brace nesting in literals.
const maxLiteralDepth = 32

// literalNode is a parsed literal: either a brace list or a single token.
type literalNode struct {
	list   []literalNode
	isList bool
	token  string
	quoted bool
}

func (n literalNode) isNull() bool {
	return !n.isList && !n.quoted && strings.EqualFold(n.token, NullLiteral)
}

type lexer struct {
	s   string
	pos int
}

func parseLiteralTree(s string) (literalNode, error) {
	lx := &lexer{s: s}
	lx.skipSpace()

	n, err := lx.list(0)
	if err != nil {
		return literalNode{}, err
	}

	lx.skipSpace()
	if lx.pos != len(lx.s) {
		return literalNode{}, lx.errorf("unexpected %q after closing brace", lx.s[lx.pos])
	}

	return n, nil
}

func (lx *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: at offset %d: %s", errs.ErrParse, lx.pos, fmt.Sprintf(format, args...))
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.s) {
		switch lx.s[lx.pos] {
		case ' ', '\t', '\n', '\r':
			lx.pos++
		default:
			return
		}
	}
}

func (lx *lexer) peek() (byte, bool) {
	if lx.pos >= len(lx.s) {
		return 0, false
	}

	return lx.s[lx.pos], true
}

func (lx *lexer) list(depth int) (literalNode, error) {
	if depth >= maxLiteralDepth {
		return literalNode{}, lx.errorf("braces nested deeper than %d", maxLiteralDepth)
	}
	if c, ok := lx.peek(); !ok || c != '{' {
		return literalNode{}, lx.errorf("expected '{'")
	}
	lx.pos++

	node := literalNode{isList: true}
	lx.skipSpace()
	if c, ok := lx.peek(); ok && c == '}' {
		lx.pos++
		return node, nil
	}

	for {
		lx.skipSpace()
		c, ok := lx.peek()
		if !ok {
			return literalNode{}, lx.errorf("unterminated list")
		}

		var (
			elem literalNode
			err  error
		)
		switch c {
		case '{':
			elem, err = lx.list(depth + 1)
		case '"':
			elem, err = lx.quoted()
		default:
			elem, err = lx.bare()
		}
		if err != nil {
			return literalNode{}, err
		}
		node.list = append(node.list, elem)

		lx.skipSpace()
		c, ok = lx.peek()
		switch {
		case !ok:
			return literalNode{}, lx.errorf("unterminated list")
		case c == ',':
			lx.pos++
		case c == '}':
			lx.pos++
			return node, nil
		default:
			return literalNode{}, lx.errorf("expected ',' or '}', found %q", c)
		}
	}
}

func (lx *lexer) quoted() (literalNode, error) {
	lx.pos++ // opening quote

	var sb strings.Builder
	for lx.pos < len(lx.s) {
		c := lx.s[lx.pos]
		lx.pos++
		switch c {
		case '\\':
			if lx.pos >= len(lx.s) {
				return literalNode{}, lx.errorf("dangling escape")
			}
			sb.WriteByte(lx.s[lx.pos])
			lx.pos++
		case '"':
			return literalNode{token: sb.String(), quoted: true}, nil
		default:
			sb.WriteByte(c)
		}
	}

	return literalNode{}, lx.errorf("unterminated quoted string")
}

func (lx *lexer) bare() (literalNode, error) {
	start := lx.pos
	for lx.pos < len(lx.s) {
		switch lx.s[lx.pos] {
		case ',', '{', '}', '"':
			tok := strings.TrimSpace(lx.s[start:lx.pos])
			if tok == "" {
				return literalNode{}, lx.errorf("empty element")
			}

			return literalNode{token: tok}, nil
		}
		lx.pos++
	}

	return literalNode{}, lx.errorf("unterminated list")
}

func parseElement[T any](codec encoding.Codec[T], n literalNode) (sql.Null[T], error) {
	if n.isList {
		return sql.Null[T]{}, fmt.Errorf("%w: nested list where a %s element was expected", errs.ErrParse, codec.Kind())
	}
	if n.isNull() {
		return sql.Null[T]{}, nil
	}

	v, err := codec.ParseLiteral(n.token)
	if err != nil {
		return sql.Null[T]{}, err
	}

	return sql.Null[T]{V: v, Valid: true}, nil
}

// ParseValues parses a sequence literal such as {1,NULL,3} into values.
func ParseValues[T any](codec encoding.Codec[T], text string) ([]sql.Null[T], error) {
	root, err := parseLiteralTree(text)
	if err != nil {
		return nil, err
	}

	vals := make([]sql.Null[T], len(root.list))
	for i, n := range root.list {
		if vals[i], err = parseElement(codec, n); err != nil {
			return nil, err
		}
	}

	return vals, nil
}

// Parse replaces the contents of st with the sequence described by text.
//
// The grammar is '{' elem (',' elem)* '}' or '{}'. An unquoted NULL, in any
// case, is a null element. Quoted elements may escape '"' and '\' with '\'.
func Parse[T any](st Stream, codec encoding.Codec[T], text string, opts ...Option) (*Sequence[T], error) {
	vals, err := ParseValues(codec, text)
	if err != nil {
		return nil, err
	}

	return Build(st, codec, vals, opts...)
}

// Format renders the sequence as a literal accepted by Parse.
func Format[T any](s *Sequence[T]) (string, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for e, err := range s.All() {
		if err != nil {
			return "", err
		}
		if e.Index > 0 {
			sb.WriteByte(',')
		}
		writeElement(&sb, s.codec, e.Value)
	}
	sb.WriteByte('}')

	return sb.String(), nil
}

// FormatOrNull is Format, rendering a nil sequence as NULL.
func FormatOrNull[T any](s *Sequence[T]) (string, error) {
	if s == nil {
		return NullLiteral, nil
	}

	return Format(s)
}

func writeElement[T any](sb *strings.Builder, codec encoding.Codec[T], v sql.Null[T]) {
	if !v.Valid {
		sb.WriteString(NullLiteral)
		return
	}

	lit := codec.FormatLiteral(v.V)
	if !codec.Quoted() && !needsQuote(lit) {
		sb.WriteString(lit)
		return
	}

	sb.WriteByte('"')
	for i := 0; i < len(lit); i++ {
		if c := lit[i]; c == '"' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(lit[i])
	}
	sb.WriteByte('"')
}

func needsQuote(lit string) bool {
	if lit == "" || strings.EqualFold(lit, NullLiteral) || strings.TrimSpace(lit) != lit {
		return true
	}

	return strings.ContainsAny(lit, ",{}\"\\")
}
