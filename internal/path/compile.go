package path

import (
	"strconv"
	"strings"
	"sync"
)

type segKind uint8

const (
	segKey segKind = iota
	segIndex
	segWildcard
	segFilter
)

// segment is one step of a compiled expression.
type segment struct {
	kind  segKind
	name  string     // segKey
	index int        // segIndex
	pred  *predicate // segFilter
}

// predicate is an embedded filter like ?(@.price > 2.00). An empty target
// path compares the element itself. A predicate without an operator is an
// existence test.
type predicate struct {
	target []string
	op     string
	lit    any
	exists bool
}

// arithOp is an optional trailing element-wise arithmetic step.
type arithOp struct {
	op      byte
	operand float64
}

// Expr is a compiled path expression.
type Expr struct {
	src   string
	segs  []segment
	arith *arithOp
	multi bool
}

// Source returns the original expression text.
func (e *Expr) Source() string { return e.src }

// Multi reports whether the expression traverses a wildcard or filter, i.e.
// whether it can match more than one value per node.
func (e *Expr) Multi() bool { return e.multi }

var exprCache sync.Map // source text -> *Expr

// Compile parses an expression into its AST form. Results are memoized by
// source text; compilation never touches data.
func Compile(expr string) (*Expr, error) {
	if cached, ok := exprCache.Load(expr); ok {
		return cached.(*Expr), nil
	}

	compiled, err := compile(expr)
	if err != nil {
		return nil, err
	}

	exprCache.Store(expr, compiled)

	return compiled, nil
}

func compile(expr string) (*Expr, error) {
	out := &Expr{src: expr}

	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, &SyntaxError{Expr: expr, Offset: 0, Reason: "empty expression"}
	}

	i := 0
	if s[0] == '$' {
		i++
	}

	for i < len(s) {
		switch {
		case s[i] == '.':
			i++
			if i >= len(s) {
				return nil, &SyntaxError{Expr: expr, Offset: i, Reason: "trailing dot"}
			}
		case s[i] == '[':
			seg, next, err := parseBracket(expr, s, i)
			if err != nil {
				return nil, err
			}

			out.segs = append(out.segs, seg)
			i = next

			continue
		case s[i] == ' ' || s[i] == '+' || s[i] == '-' || s[i] == '*' || s[i] == '/':
			arith, err := parseArith(expr, s, i)
			if err != nil {
				return nil, err
			}

			out.arith = arith
			i = len(s)

			continue
		}

		name, next, err := parseName(expr, s, i)
		if err != nil {
			return nil, err
		}

		out.segs = append(out.segs, segment{kind: segKey, name: name})
		i = next
	}

	if len(out.segs) == 0 && out.arith != nil {
		return nil, &SyntaxError{Expr: expr, Offset: 0, Reason: "arithmetic without a path"}
	}

	for _, seg := range out.segs {
		if seg.kind == segWildcard || seg.kind == segFilter {
			out.multi = true
		}
	}

	return out, nil
}

func parseName(expr, s string, i int) (string, int, error) {
	start := i
	for i < len(s) && idRune(s[i]) {
		i++
	}

	if i == start {
		return "", 0, &SyntaxError{Expr: expr, Offset: i, Reason: "expected key name"}
	}

	return s[start:i], i, nil
}

func parseBracket(expr, s string, i int) (segment, int, error) {
	end := findMatchingBracket(s, i)
	if end < 0 {
		return segment{}, 0, &SyntaxError{Expr: expr, Offset: i, Reason: "unterminated '['"}
	}

	inner := strings.TrimSpace(s[i+1 : end])
	next := end + 1

	switch {
	case inner == "*":
		return segment{kind: segWildcard}, next, nil
	case strings.HasPrefix(inner, "?"):
		pred, err := parsePredicate(expr, inner)
		if err != nil {
			return segment{}, 0, err
		}

		return segment{kind: segFilter, pred: pred}, next, nil
	default:
		idx, err := strconv.Atoi(inner)
		if err != nil {
			return segment{}, 0, &SyntaxError{Expr: expr, Offset: i + 1, Reason: "expected index, '*', or '?(...)'"}
		}

		return segment{kind: segIndex, index: idx}, next, nil
	}
}

// parsePredicate handles the inner of a filter bracket: ?(...) or ?... .
func parsePredicate(expr, inner string) (*predicate, error) {
	body := strings.TrimSpace(strings.TrimPrefix(inner, "?"))
	if strings.HasPrefix(body, "(") && strings.HasSuffix(body, ")") {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}

	if !strings.HasPrefix(body, "@") {
		return nil, &SyntaxError{Expr: expr, Offset: 0, Reason: "filter must start with '@'"}
	}

	rest := body[1:]

	var target []string

	for strings.HasPrefix(rest, ".") {
		rest = rest[1:]

		j := 0
		for j < len(rest) && idRune(rest[j]) {
			j++
		}

		if j == 0 {
			return nil, &SyntaxError{Expr: expr, Offset: 0, Reason: "expected key after '@.'"}
		}

		target = append(target, rest[:j])
		rest = rest[j:]
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return &predicate{target: target, exists: true}, nil
	}

	op, rest, ok := splitOperator(rest)
	if !ok {
		return nil, &SyntaxError{Expr: expr, Offset: 0, Reason: "expected comparison operator in filter"}
	}

	lit, err := parseLiteral(expr, strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}

	return &predicate{target: target, op: op, lit: lit}, nil
}

func splitOperator(s string) (string, string, bool) {
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		if strings.HasPrefix(s, op) {
			return op, s[len(op):], true
		}
	}

	return "", "", false
}

func parseLiteral(expr, s string) (any, error) {
	switch {
	case s == "":
		return nil, &SyntaxError{Expr: expr, Offset: 0, Reason: "missing literal in filter"}
	case s == "null":
		return nil, nil
	case s == "true":
		return true, nil
	case s == "false":
		return false, nil
	case s[0] == '\'' || s[0] == '"':
		if len(s) < 2 || s[len(s)-1] != s[0] {
			return nil, &SyntaxError{Expr: expr, Offset: 0, Reason: "unterminated string literal"}
		}

		return s[1 : len(s)-1], nil
	default:
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &SyntaxError{Expr: expr, Offset: 0, Reason: "invalid literal " + strconv.Quote(s)}
		}

		return num, nil
	}
}

// parseArith consumes the remainder of the expression as an arithmetic
// suffix, e.g. " + 10".
func parseArith(expr, s string, i int) (*arithOp, error) {
	rest := strings.TrimSpace(s[i:])
	if rest == "" {
		return nil, &SyntaxError{Expr: expr, Offset: i, Reason: "trailing whitespace"}
	}

	op := rest[0]
	if op != '+' && op != '-' && op != '*' && op != '/' {
		return nil, &SyntaxError{Expr: expr, Offset: i, Reason: "unexpected character " + strconv.QuoteRune(rune(op))}
	}

	operandStr := strings.TrimSpace(rest[1:])

	operand, err := strconv.ParseFloat(operandStr, 64)
	if err != nil {
		return nil, &SyntaxError{Expr: expr, Offset: i, Reason: "invalid arithmetic operand " + strconv.Quote(operandStr)}
	}

	if op == '/' && operand == 0 {
		return nil, &SyntaxError{Expr: expr, Offset: i, Reason: "division by zero"}
	}

	return &arithOp{op: op, operand: operand}, nil
}

func findMatchingBracket(s string, start int) int {
	depth := 0

	var quote byte

	for i := start; i < len(s); i++ {
		c := s[i]

		if quote != 0 {
			if c == quote {
				quote = 0
			}

			continue
		}

		switch c {
		case '\'', '"':
			quote = c
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func idRune(b byte) bool {
	return b == '_' || b == '-' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
