// Package eval evaluates a restricted arithmetic grammar. It exists because
// the expressions it receives are derived from untrusted natural-language
// input: the expression is parsed into an explicit syntax tree whose node
// kinds and operators form a closed set, and the interpreter matches only
// those variants. There are no identifiers, no calls, no indexing — anything
// outside the grammar fails at parse time.
//
// Supported: integer and decimal literals, parentheses, unary minus, and the
// binary operators + - * / ** ^. The ^ operator is bitwise xor over
// whole-number operands, retained for compatibility with the historical
// operator whitelist.
package eval

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidExpression is wrapped by every error this package returns, so
// callers can treat all parse and evaluation failures uniformly.
var ErrInvalidExpression = errors.New("invalid expression")

// Operator identifies one of the allowed operations. The set is closed:
// the interpreter rejects any node carrying a value outside this list.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpXor
	OpNeg
)

func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "**"
	case OpXor:
		return "^"
	case OpNeg:
		return "-"
	}
	return "?"
}

// node is the closed-variant syntax tree: a literal, a unary operation, or a
// binary operation. No other shapes exist.
type node interface{ isNode() }

type literal struct{ value float64 }

type unaryOp struct {
	op      Operator
	operand node
}

type binaryOp struct {
	op          Operator
	left, right node
}

func (literal) isNode()  {}
func (unaryOp) isNode()  {}
func (binaryOp) isNode() {}

// Evaluate parses and evaluates expr. All failures — lexing, syntax,
// unsupported operator, division by zero, non-finite result — are reported
// as errors wrapping [ErrInvalidExpression]; the function never panics on
// any input.
func Evaluate(expr string) (float64, error) {
	p := &parser{}
	if err := p.lex(expr); err != nil {
		return 0, err
	}

	root, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if !p.atEnd() {
		return 0, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, p.peek().text)
	}

	result, err := evalNode(root)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: result is not a finite number", ErrInvalidExpression)
	}
	return result, nil
}

// FormatNumber renders v the way a person would write it: whole values
// without a decimal part, everything else in shortest-round-trip form.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

/*
	INTERPRETER
*/

func evalNode(n node) (float64, error) {
	switch t := n.(type) {
	case literal:
		return t.value, nil

	case unaryOp:
		operand, err := evalNode(t.operand)
		if err != nil {
			return 0, err
		}
		if t.op != OpNeg {
			return 0, fmt.Errorf("%w: unsupported unary operator %s", ErrInvalidExpression, t.op)
		}
		return -operand, nil

	case binaryOp:
		left, err := evalNode(t.left)
		if err != nil {
			return 0, err
		}
		right, err := evalNode(t.right)
		if err != nil {
			return 0, err
		}
		return applyBinary(t.op, left, right)
	}

	return 0, fmt.Errorf("%w: unsupported node %T", ErrInvalidExpression, n)
}

func applyBinary(op Operator, left, right float64) (float64, error) {
	switch op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return 0, fmt.Errorf("%w: division by zero", ErrInvalidExpression)
		}
		return left / right, nil
	case OpPow:
		return math.Pow(left, right), nil
	case OpXor:
		l, lok := wholeInt(left)
		r, rok := wholeInt(right)
		if !lok || !rok {
			return 0, fmt.Errorf("%w: ^ requires whole-number operands", ErrInvalidExpression)
		}
		return float64(l ^ r), nil
	}
	return 0, fmt.Errorf("%w: unsupported operator %s", ErrInvalidExpression, op)
}

func wholeInt(v float64) (int64, bool) {
	if v != math.Trunc(v) || math.Abs(v) > 1e15 {
		return 0, false
	}
	return int64(v), true
}

/*
	LEXER
*/

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokDoubleStar
	tokCaret
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind  tokenKind
	text  string
	value float64
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) lex(expr string) error {
	i := 0
	for i < len(expr) {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t':
			i++

		case c >= '0' && c <= '9' || c == '.':
			start := i
			seenDot := false
			for i < len(expr) && (expr[i] >= '0' && expr[i] <= '9' || expr[i] == '.') {
				if expr[i] == '.' {
					if seenDot {
						return fmt.Errorf("%w: malformed number at %q", ErrInvalidExpression, expr[start:i+1])
					}
					seenDot = true
				}
				i++
			}
			text := expr[start:i]
			value, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return fmt.Errorf("%w: malformed number %q", ErrInvalidExpression, text)
			}
			p.tokens = append(p.tokens, token{kind: tokNumber, text: text, value: value})

		case c == '+':
			p.tokens = append(p.tokens, token{kind: tokPlus, text: "+"})
			i++
		case c == '-':
			p.tokens = append(p.tokens, token{kind: tokMinus, text: "-"})
			i++
		case c == '*':
			if i+1 < len(expr) && expr[i+1] == '*' {
				p.tokens = append(p.tokens, token{kind: tokDoubleStar, text: "**"})
				i += 2
			} else {
				p.tokens = append(p.tokens, token{kind: tokStar, text: "*"})
				i++
			}
		case c == '/':
			p.tokens = append(p.tokens, token{kind: tokSlash, text: "/"})
			i++
		case c == '^':
			p.tokens = append(p.tokens, token{kind: tokCaret, text: "^"})
			i++
		case c == '(':
			p.tokens = append(p.tokens, token{kind: tokLParen, text: "("})
			i++
		case c == ')':
			p.tokens = append(p.tokens, token{kind: tokRParen, text: ")"})
			i++

		default:
			return fmt.Errorf("%w: illegal character %q", ErrInvalidExpression, string(c))
		}
	}

	p.tokens = append(p.tokens, token{kind: tokEOF})
	return nil
}

/*
	PARSER

	Grammar, loosest-binding first (xor sits below addition, as in the
	source language of the historical whitelist):

	  expr    := add ('^' add)*
	  add     := mul (('+' | '-') mul)*
	  mul     := unary (('*' | '/') unary)*
	  unary   := '-' unary | power
	  power   := primary ('**' unary)?     (right associative)
	  primary := NUMBER | '(' expr ')'

	Unary minus binding looser than '**' gives -2**2 == -4, matching the
	conventional reading.
*/

func (p *parser) peek() token { return p.tokens[p.pos] }
func (p *parser) next() token { t := p.tokens[p.pos]; p.pos++; return t }
func (p *parser) atEnd() bool { return p.peek().kind == tokEOF }

func (p *parser) parseExpr() (node, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokCaret {
		p.next()
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = binaryOp{op: OpXor, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAdd() (node, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.peek().kind {
		case tokPlus:
			op = OpAdd
		case tokMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = binaryOp{op: op, left: left, right: right}
	}
}

func (p *parser) parseMul() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.peek().kind {
		case tokStar:
			op = OpMul
		case tokSlash:
			op = OpDiv
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryOp{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokMinus {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return unaryOp{op: OpNeg, operand: operand}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokDoubleStar {
		p.next()
		// Right associative; the exponent may itself carry a unary minus.
		exponent, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binaryOp{op: OpPow, left: base, right: exponent}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (node, error) {
	switch t := p.next(); t.kind {
	case tokNumber:
		return literal{value: t.value}, nil

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrInvalidExpression)
		}
		p.next()
		return inner, nil

	case tokEOF:
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrInvalidExpression)

	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, t.text)
	}
}

// allowedChars is the full character whitelist for candidate expressions.
const allowedChars = "0123456789+-*/().^ \t"

// IsValidExpression reports whether raw looks like an arithmetic expression
// this package could evaluate: only allow-listed characters, at least one
// digit, at least one operator. It is a cheap pre-filter, not a parse; a true
// result does not guarantee the expression is well formed.
func IsValidExpression(raw string) bool {
	if raw == "" {
		return false
	}

	hasDigit := false
	for _, r := range raw {
		if r > 127 || !strings.ContainsRune(allowedChars, r) {
			return false
		}
		if r >= '0' && r <= '9' {
			hasDigit = true
		}
	}
	if !hasDigit {
		return false
	}

	return strings.ContainsAny(raw, "+-*/^")
}
