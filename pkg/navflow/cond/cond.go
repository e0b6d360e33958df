package cond

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax indicates a condition that does not parse.
var ErrSyntax = errors.New("condition syntax error")

// Condition is a compiled condition. It is immutable and safe for
// concurrent use.
type Condition struct {
	src  string
	root expr
}

// Compile parses src.
func Compile(src string) (*Condition, error) {
	root, err := parse(strings.TrimSpace(src))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}
	return &Condition{src: src, root: root}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) *Condition {
	c, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the source text.
func (c *Condition) String() string {
	return c.src
}

// Eval evaluates the condition with vars.
func (c *Condition) Eval(vars map[string]any) bool {
	return c.root.eval(vars)
}

// Match evaluates the condition with output bound to "output".
func (c *Condition) Match(output any) bool {
	return c.root.eval(map[string]any{"output": output})
}

type expr interface {
	eval(vars map[string]any) bool
}

type orExpr struct{ left, right expr }

func (e orExpr) eval(vars map[string]any) bool { return e.left.eval(vars) || e.right.eval(vars) }

type andExpr struct{ left, right expr }

func (e andExpr) eval(vars map[string]any) bool { return e.left.eval(vars) && e.right.eval(vars) }

type notExpr struct{ inner expr }

func (e notExpr) eval(vars map[string]any) bool { return !e.inner.eval(vars) }

type compareExpr struct {
	op          string
	left, right operand
}

func (e compareExpr) eval(vars map[string]any) bool {
	return compare(e.op, e.left.value(vars), e.right.value(vars))
}

type truthExpr struct{ v operand }

func (e truthExpr) eval(vars map[string]any) bool { return IsTruthy(e.v.value(vars)) }

// Longer operators first so ">=" is not read as ">".
var operators = []string{"==", "!=", ">=", "<=", ">", "<", " contains "}

func parse(s string) (expr, error) {
	if s == "" {
		return nil, errors.New("empty expression")
	}

	if l, r, ok := splitOutsideQuotes(s, " or "); ok {
		return binary(l, r, func(a, b expr) expr { return orExpr{a, b} })
	}
	if l, r, ok := splitOutsideQuotes(s, " and "); ok {
		return binary(l, r, func(a, b expr) expr { return andExpr{a, b} })
	}

	if rest, ok := strings.CutPrefix(s, "not "); ok {
		inner, err := parse(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return notExpr{inner}, nil
	}
	if rest, ok := strings.CutPrefix(s, "!"); ok && !strings.HasPrefix(rest, "=") {
		inner, err := parse(strings.TrimSpace(rest))
		if err != nil {
			return nil, err
		}
		return notExpr{inner}, nil
	}

	for _, op := range operators {
		if l, r, ok := splitOutsideQuotes(s, op); ok {
			left, err := parseOperand(l)
			if err != nil {
				return nil, err
			}
			right, err := parseOperand(r)
			if err != nil {
				return nil, err
			}
			return compareExpr{op: strings.TrimSpace(op), left: left, right: right}, nil
		}
	}

	v, err := parseOperand(s)
	if err != nil {
		return nil, err
	}
	return truthExpr{v}, nil
}

func binary(l, r string, build func(a, b expr) expr) (expr, error) {
	left, err := parse(strings.TrimSpace(l))
	if err != nil {
		return nil, err
	}
	right, err := parse(strings.TrimSpace(r))
	if err != nil {
		return nil, err
	}
	return build(left, right), nil
}

// splitOutsideQuotes splits s at the first sep that is not inside a quoted
// string.
func splitOutsideQuotes(s, sep string) (string, string, bool) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case strings.HasPrefix(s[i:], sep):
			return s[:i], s[i+len(sep):], true
		}
	}
	return "", "", false
}

type operand interface {
	value(vars map[string]any) any
}

type literal struct{ v any }

func (l literal) value(map[string]any) any { return l.v }

type path []string

func (p path) value(vars map[string]any) any {
	v, ok := vars[p[0]]
	if !ok {
		return nil
	}
	for _, name := range p[1:] {
		if v, ok = field(v, name); !ok {
			return nil
		}
	}
	return v
}

var pathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

func parseOperand(s string) (operand, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("missing operand")
	}

	if q := s[0]; q == '\'' || q == '"' {
		if len(s) < 2 || s[len(s)-1] != q {
			return nil, fmt.Errorf("unterminated string %s", s)
		}
		return literal{s[1 : len(s)-1]}, nil
	}

	switch strings.ToLower(s) {
	case "true":
		return literal{true}, nil
	case "false":
		return literal{false}, nil
	case "null", "nil":
		return literal{nil}, nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return literal{i}, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return literal{f}, nil
	}

	if !pathPattern.MatchString(s) {
		return nil, fmt.Errorf("bad operand %s", s)
	}
	return path(strings.Split(s, ".")), nil
}
