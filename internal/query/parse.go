package query

// Expr is an OR of AND groups. The zero Expr matches everything.
type Expr struct {
	groups []andGroup
}

type andGroup []term

// Parse compiles a filter. Parsing never fails: a "(" without a partner runs
// to the end of the input, and a ")" without a partner ends the expression
// read so far, which is then ANDed with the expression that follows it.
// Empty groups, as in "a |", are dropped.
func Parse(s string) *Expr {
	p := &parser{tokens: Tokenize(s)}
	return p.expr(0)
}

// Empty reports whether the expression has no terms.
func (e *Expr) Empty() bool {
	return len(e.groups) == 0
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) expr(depth int) *Expr {
	e := &Expr{}
	var cur andGroup
	flush := func() {
		if len(cur) > 0 {
			e.groups = append(e.groups, cur)
		}
		cur = nil
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		p.pos++

		switch tok {
		case "|":
			flush()
		case "(":
			cur = append(cur, subTerm{expr: p.expr(depth + 1)})
		case ")":
			flush()
			if depth > 0 {
				return e
			}
			rest := p.expr(0)
			return &Expr{groups: []andGroup{{subTerm{expr: e}, subTerm{expr: rest}}}}
		default:
			cur = append(cur, parseLiteral(tok))
		}
	}
	flush()
	return e
}

func parseLiteral(tok string) term {
	if isQuoted(tok) {
		return newNameTerm(unquote(tok))
	}
	switch tok[0] {
	case '+':
		return tagTerm{tag: tok[1:], present: true}
	case '-':
		return tagTerm{tag: tok[1:], present: false}
	case '~':
		return categoryTerm{category: tok[1:]}
	case '!':
		return notTerm{inner: newNameTerm(unquote(tok[1:]))}
	}
	return newNameTerm(tok)
}
