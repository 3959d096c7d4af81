package poly

import (
	"strings"

	"github.com/2x3systems/goknot/goknot"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
)

// Exp is a variable exponent in quarter powers, so x^2 has Exp 8 and t^(1/2) has Exp 2.
type Exp int32

// ExpOne is the Exp of a first power.
const ExpOne Exp = 4

// Factor is a variable raised to a non-zero power.
type Factor struct {
	Var string
	Exp Exp
}

// Monomial is a product of Factors sorted by Var; the empty Monomial is 1.
type Monomial []Factor

// Term is a non-zero integer multiple of a Monomial.
type Term struct {
	Coef int64
	Mono Monomial
}

// Poly is an immutable Laurent polynomial with integer coefficients.
//
// Terms are kept sorted by descending exponent vector (variables compared alphabetically),
// so two equal polynomials always have identical Terms and String() forms.
// The zero value is the zero polynomial.
type Poly struct {
	terms []Term
}

// Const returns the constant polynomial c.
func Const(c int64) Poly {
	if c == 0 {
		return Poly{}
	}
	return Poly{
		terms: []Term{{Coef: c}},
	}
}

// One is the constant polynomial 1.
var One = Const(1)

// Var returns the polynomial v.
func Var(v string) Poly {
	return Mono(1, v, 1)
}

// Mono returns coef * v^pow.
func Mono(coef int64, v string, pow int) Poly {
	if coef == 0 {
		return Poly{}
	}
	if pow == 0 {
		return Const(coef)
	}
	return Poly{
		terms: []Term{{
			Coef: coef,
			Mono: Monomial{{Var: v, Exp: Exp(pow) * ExpOne}},
		}},
	}
}

// compareMono orders monomials by exponent vector: a variable missing from a monomial has exponent 0.
func compareMono(a, b Monomial) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var ea, eb Exp
		switch {
		case j == len(b) || (i < len(a) && a[i].Var < b[j].Var):
			ea = a[i].Exp
			i++
		case i == len(a) || b[j].Var < a[i].Var:
			eb = b[j].Exp
			j++
		default:
			ea, eb = a[i].Exp, b[j].Exp
			i++
			j++
		}
		if ea != eb {
			if ea > eb {
				return 1
			}
			return -1
		}
	}
	return 0
}

// termOrder sorts monomials in descending order.
func termOrder(a, b interface{}) int {
	return compareMono(b.(Monomial), a.(Monomial))
}

func (m Monomial) mul(other Monomial) Monomial {
	if len(m) == 0 {
		return other
	}
	if len(other) == 0 {
		return m
	}
	out := make(Monomial, 0, len(m)+len(other))
	i, j := 0, 0
	for i < len(m) || j < len(other) {
		switch {
		case j == len(other) || (i < len(m) && m[i].Var < other[j].Var):
			out = append(out, m[i])
			i++
		case i == len(m) || other[j].Var < m[i].Var:
			out = append(out, other[j])
			j++
		default:
			if e := m[i].Exp + other[j].Exp; e != 0 {
				out = append(out, Factor{Var: m[i].Var, Exp: e})
			}
			i++
			j++
		}
	}
	return out
}

// split returns the exponent of v in m and m with v removed.
func (m Monomial) split(v string) (Exp, Monomial) {
	for i, f := range m {
		if f.Var == v {
			rest := make(Monomial, 0, len(m)-1)
			rest = append(rest, m[:i]...)
			rest = append(rest, m[i+1:]...)
			return f.Exp, rest
		}
	}
	return 0, m
}

// termBuilder accumulates terms in canonical order, dropping any that cancel to zero.
type termBuilder struct {
	tree *redblacktree.Tree
}

func newTermBuilder() termBuilder {
	return termBuilder{
		tree: redblacktree.NewWith(termOrder),
	}
}

func (tb termBuilder) add(coef int64, m Monomial) {
	if coef == 0 {
		return
	}
	if existing, found := tb.tree.Get(m); found {
		sum := existing.(int64) + coef
		if sum == 0 {
			tb.tree.Remove(m)
		} else {
			tb.tree.Put(m, sum)
		}
		return
	}
	tb.tree.Put(m, coef)
}

func (tb termBuilder) poly() Poly {
	if tb.tree.Empty() {
		return Poly{}
	}
	terms := make([]Term, 0, tb.tree.Size())
	it := tb.tree.Iterator()
	for it.Next() {
		terms = append(terms, Term{
			Coef: it.Value().(int64),
			Mono: it.Key().(Monomial),
		})
	}
	return Poly{terms: terms}
}

// Terms returns the terms of p in canonical order.  The caller must not modify them.
func (p Poly) Terms() []Term {
	return p.terms
}

// IsZero reports if p is the zero polynomial.
func (p Poly) IsZero() bool {
	return len(p.terms) == 0
}

// Lead returns the first term of p in canonical order (the zero Term for the zero polynomial).
func (p Poly) Lead() Term {
	if len(p.terms) == 0 {
		return Term{}
	}
	return p.terms[0]
}

// Vars returns the variables appearing in p, sorted.
func (p Poly) Vars() []string {
	var vars []string
	for _, t := range p.terms {
		for _, f := range t.Mono {
			found := false
			for _, v := range vars {
				if v == f.Var {
					found = true
					break
				}
			}
			if !found {
				vars = append(vars, f.Var)
			}
		}
	}
	for i := 1; i < len(vars); i++ {
		for j := i; j > 0 && vars[j] < vars[j-1]; j-- {
			vars[j], vars[j-1] = vars[j-1], vars[j]
		}
	}
	return vars
}

// Span returns the lowest and highest exponent of v over all terms (0, 0 for the zero polynomial).
func (p Poly) Span(v string) (lo, hi Exp) {
	for i, t := range p.terms {
		e, _ := t.Mono.split(v)
		if i == 0 || e < lo {
			lo = e
		}
		if i == 0 || e > hi {
			hi = e
		}
	}
	return lo, hi
}

func (p Poly) Equal(q Poly) bool {
	if len(p.terms) != len(q.terms) {
		return false
	}
	for i, t := range p.terms {
		u := q.terms[i]
		if t.Coef != u.Coef || compareMono(t.Mono, u.Mono) != 0 {
			return false
		}
	}
	return true
}

func (p Poly) Add(q Poly) Poly {
	if p.IsZero() {
		return q
	}
	if q.IsZero() {
		return p
	}
	tb := newTermBuilder()
	for _, t := range p.terms {
		tb.add(t.Coef, t.Mono)
	}
	for _, t := range q.terms {
		tb.add(t.Coef, t.Mono)
	}
	return tb.poly()
}

func (p Poly) Sub(q Poly) Poly {
	return p.Add(q.Neg())
}

func (p Poly) Neg() Poly {
	return p.Scale(-1)
}

// Scale returns k * p.
func (p Poly) Scale(k int64) Poly {
	if k == 0 || p.IsZero() {
		return Poly{}
	}
	terms := make([]Term, len(p.terms))
	for i, t := range p.terms {
		terms[i] = Term{Coef: k * t.Coef, Mono: t.Mono}
	}
	return Poly{terms: terms}
}

func (p Poly) Mul(q Poly) Poly {
	if p.IsZero() || q.IsZero() {
		return Poly{}
	}
	tb := newTermBuilder()
	for _, t := range p.terms {
		for _, u := range q.terms {
			tb.add(t.Coef*u.Coef, t.Mono.mul(u.Mono))
		}
	}
	return tb.poly()
}

// Pow returns p^k for k >= 0.
func (p Poly) Pow(k int) Poly {
	out := One
	base := p
	for ; k > 0; k >>= 1 {
		if k&1 != 0 {
			out = out.Mul(base)
		}
		if k > 1 {
			base = base.Mul(base)
		}
	}
	return out
}

// SignNormalized returns p or -p, whichever has a positive leading term.
func (p Poly) SignNormalized() Poly {
	if p.Lead().Coef < 0 {
		return p.Neg()
	}
	return p
}

// powExp returns p raised to a power given in quarter units.
// Negative powers need p to be a monomial with coefficient ±1 and fractional powers need coefficient 1.
func (p Poly) powExp(e Exp) (Poly, error) {
	if e >= 0 && e%ExpOne == 0 {
		return p.Pow(int(e / ExpOne)), nil
	}
	if len(p.terms) != 1 {
		return Poly{}, errors.Wrapf(goknot.ErrSubstitution, "(%v)^%v", p, e.String())
	}

	t := p.terms[0]
	coef := t.Coef
	switch {
	case e%ExpOne != 0:
		if coef != 1 {
			return Poly{}, errors.Wrapf(goknot.ErrSubstitution, "(%v)^%v", p, e.String())
		}
	case coef == 1:
	case coef == -1:
		if (e/ExpOne)%2 == 0 {
			coef = 1
		}
	default:
		return Poly{}, errors.Wrapf(goknot.ErrSubstitution, "(%v)^%v", p, e.String())
	}

	mono := make(Monomial, 0, len(t.Mono))
	for _, f := range t.Mono {
		scaled := f.Exp * e
		if scaled%ExpOne != 0 {
			return Poly{}, errors.Wrapf(goknot.ErrSubstitution, "(%v)^%v", p, e.String())
		}
		if scaled != 0 {
			mono = append(mono, Factor{Var: f.Var, Exp: scaled / ExpOne})
		}
	}
	return Poly{terms: []Term{{Coef: coef, Mono: mono}}}, nil
}

// Substitute returns p with every occurrence of variable v replaced by repl.
func (p Poly) Substitute(v string, repl Poly) (Poly, error) {
	tb := newTermBuilder()
	for _, t := range p.terms {
		e, rest := t.Mono.split(v)
		if e == 0 {
			tb.add(t.Coef, t.Mono)
			continue
		}
		rp, err := repl.powExp(e)
		if err != nil {
			return Poly{}, err
		}
		for _, u := range rp.terms {
			tb.add(t.Coef*u.Coef, rest.mul(u.Mono))
		}
	}
	return tb.poly(), nil
}

// SubstituteExpr is Substitute with the replacement given as text, e.g. "t^-1/4".
func (p Poly) SubstituteExpr(v string, expr string) (Poly, error) {
	repl, err := Parse(expr)
	if err != nil {
		return Poly{}, err
	}
	return p.Substitute(v, repl)
}

// MulUnit returns p * (-1)^n * v^n, the unit factor that Reidemeister moves introduce.
func (p Poly) MulUnit(v string, n int) Poly {
	if n == 0 || p.IsZero() {
		return p
	}
	sign := int64(1)
	if n&1 != 0 {
		sign = -1
	}
	return p.Mul(Mono(sign, v, n))
}

func (e Exp) String() string {
	buf := strings.Builder{}
	writeExp(&buf, e)
	return buf.String()
}
