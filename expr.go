package talon

import (
	"fmt"
	"math"
)

// ExprInvalid is the reserved sentinel returned for invalid
// expressions. It is also, in theory, a valid numeric result, so
// callers must treat any message delivered through the report callback
// as authoritative over the return value.
const ExprInvalid = math.MinInt

// Term kinds tracked by the evaluator's recent-term queue.
const (
	termNone = iota
	termNumber
	termString
)

// exprState holds the scan position, recursion depth and error state
// of one evaluation. Keeping it in one explicit value makes partial
// grammars testable in isolation.
type exprState struct {
	input    string
	pos      int
	depth    int
	maxDepth int
	report   func(msg string)
	failed   bool
	errPos   int

	// The two most recently extracted terms. An ==/!= that follows two
	// string terms switches to true length+content comparison instead
	// of comparing numeric surrogates.
	kinds [2]int
	strs  [2]string
}

// EvalExpr parses and evaluates an integer/boolean/string expression.
// Errors are delivered as human-readable messages through report (may
// be nil); the returned offset is the scan position where the first
// error was detected, or -1 on success. The value is ExprInvalid on
// failure.
func EvalExpr(input string, maxDepth int, report func(msg string)) (value, errOffset int) {
	if maxDepth <= 0 {
		maxDepth = 32
	}
	p := &exprState{
		input:    input,
		maxDepth: maxDepth,
		report:   report,
		errPos:   -1,
	}
	v := p.expression()
	if !p.failed {
		p.skipSpace()
		if p.pos < len(p.input) {
			p.fail(fmt.Sprintf("unexpected character %q", p.input[p.pos]))
		}
	}
	if p.failed {
		return ExprInvalid, p.errPos
	}
	return v, -1
}

// fail records the first error at the current scan position and
// reports it. Later errors during the same evaluation are dropped.
func (p *exprState) fail(msg string) {
	if p.failed {
		return
	}
	p.failed = true
	p.errPos = p.pos
	if p.report != nil {
		p.report(msg)
	}
}

// enter bounds parse recursion; every recursive production calls it.
func (p *exprState) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.fail("expression nested too deeply")
		return false
	}
	return true
}

func (p *exprState) leave() {
	p.depth--
}

func (p *exprState) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprState) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// matchOp consumes the first operator from ops found at the scan
// position. Longer operators must be listed before their prefixes.
func (p *exprState) matchOp(ops ...string) string {
	for _, op := range ops {
		if len(p.input)-p.pos >= len(op) && p.input[p.pos:p.pos+len(op)] == op {
			p.pos += len(op)
			return op
		}
	}
	return ""
}

// recordTerm shifts a newly extracted term into the 2-slot queue.
func (p *exprState) recordTerm(kind int, s string) {
	p.kinds[1], p.strs[1] = p.kinds[0], p.strs[0]
	p.kinds[0], p.strs[0] = kind, s
}

// expression parses the lowest-precedence level: logical operators and
// comparisons.
func (p *exprState) expression() int {
	if !p.enter() {
		return ExprInvalid
	}
	defer p.leave()

	left := p.additive()
	for !p.failed {
		p.skipSpace()
		op := p.matchOp("&&", "||", "==", "!=", ">=", "<=", ">", "<")
		if op == "" {
			break
		}
		right := p.additive()
		if p.failed {
			break
		}
		switch op {
		case "&&":
			left = boolInt(left != 0 && right != 0)
		case "||":
			left = boolInt(left != 0 || right != 0)
		case "==", "!=":
			var eq bool
			if p.kinds[0] == termString && p.kinds[1] == termString {
				// Both sides were string terms: compare length and
				// content, not the packed surrogates.
				eq = len(p.strs[1]) == len(p.strs[0]) && p.strs[1] == p.strs[0]
			} else {
				eq = left == right
			}
			if op == "==" {
				left = boolInt(eq)
			} else {
				left = boolInt(!eq)
			}
		case ">=":
			left = boolInt(left >= right)
		case "<=":
			left = boolInt(left <= right)
		case ">":
			left = boolInt(left > right)
		case "<":
			left = boolInt(left < right)
		}
	}
	if p.failed {
		return ExprInvalid
	}
	return left
}

// additive parses + and -.
func (p *exprState) additive() int {
	left := p.multiplicative()
	for !p.failed {
		p.skipSpace()
		// Don't consume the first character of == or friends; additive
		// only owns bare + and -.
		op := p.matchOp("+", "-")
		if op == "" {
			break
		}
		right := p.multiplicative()
		if p.failed {
			break
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left
}

// multiplicative parses * and /. Division discards the remainder.
func (p *exprState) multiplicative() int {
	left := p.unary()
	for !p.failed {
		p.skipSpace()
		op := p.matchOp("*", "/")
		if op == "" {
			break
		}
		right := p.unary()
		if p.failed {
			break
		}
		if op == "*" {
			left *= right
		} else {
			if right == 0 {
				p.fail("division by zero")
				break
			}
			left /= right
		}
	}
	return left
}

// unary parses ! and unary -.
func (p *exprState) unary() int {
	if !p.enter() {
		return ExprInvalid
	}
	defer p.leave()

	p.skipSpace()
	switch p.peek() {
	case '!':
		// != is a comparison, not a negation of =.
		if p.pos+1 < len(p.input) && p.input[p.pos+1] == '=' {
			break
		}
		p.pos++
		return boolInt(p.unary() == 0)
	case '-':
		p.pos++
		return -p.unary()
	}
	return p.primary()
}

// primary parses an integer literal, a string term (bareword or
// quoted) or a parenthesized sub-expression.
func (p *exprState) primary() int {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		v := p.expression()
		if p.failed {
			return ExprInvalid
		}
		p.skipSpace()
		if p.peek() != ')' {
			p.fail("missing closing parenthesis")
			return ExprInvalid
		}
		p.pos++
		return v

	case c >= '0' && c <= '9':
		v := 0
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			v = v*10 + int(p.input[p.pos]-'0')
			p.pos++
		}
		p.recordTerm(termNumber, "")
		return v

	case isWordStart(c):
		start := p.pos
		for p.pos < len(p.input) && isWordChar(p.input[p.pos]) {
			p.pos++
		}
		s := p.input[start:p.pos]
		p.recordTerm(termString, s)
		return stringSurrogate(s)

	case c == '"' || c == '\'':
		quote := c
		p.pos++
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.input) {
			p.fail("unterminated string")
			return ExprInvalid
		}
		s := p.input[start:p.pos]
		p.pos++
		p.recordTerm(termString, s)
		return stringSurrogate(s)

	case c == 0:
		p.fail("unexpected end of expression")
		return ExprInvalid

	default:
		p.fail(fmt.Sprintf("unexpected character %q", c))
		return ExprInvalid
	}
}

// stringSurrogate packs the first up-to-3 characters of a string term
// into an integer so string terms can participate in ordering
// comparisons.
func stringSurrogate(s string) int {
	v := 0
	for i := 0; i < len(s) && i < 3; i++ {
		v = v<<8 | int(s[i])
	}
	return v
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
