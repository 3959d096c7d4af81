package poly

import (
	"strconv"
	"strings"
)

func writeExp(buf *strings.Builder, e Exp) {
	if e%ExpOne == 0 {
		buf.WriteString(strconv.Itoa(int(e / ExpOne)))
	} else {
		buf.WriteString(strconv.FormatFloat(float64(e)/float64(ExpOne), 'f', -1, 64))
	}
}

func (m Monomial) writeTo(buf *strings.Builder) {
	for i, f := range m {
		if i > 0 {
			buf.WriteByte('*')
		}
		buf.WriteString(f.Var)
		if f.Exp != ExpOne {
			buf.WriteByte('^')
			writeExp(buf, f.Exp)
		}
	}
}

// String returns the canonical form of p, e.g. "-x^2-x-2-x^-1-x^-2".
func (p Poly) String() string {
	if len(p.terms) == 0 {
		return "0"
	}
	buf := strings.Builder{}
	for i, t := range p.terms {
		coef := t.Coef
		if coef < 0 {
			buf.WriteByte('-')
			coef = -coef
		} else if i > 0 {
			buf.WriteByte('+')
		}
		if len(t.Mono) == 0 {
			buf.WriteString(strconv.FormatInt(coef, 10))
			continue
		}
		if coef != 1 {
			buf.WriteString(strconv.FormatInt(coef, 10))
			buf.WriteByte('*')
		}
		t.Mono.writeTo(&buf)
	}
	return buf.String()
}

// ShortString returns the reduced form of p.
//
// A polynomial in one variable with integer powers prints as its coefficients from the lowest to the highest power,
// prefixed by "[lo] " when the lowest power lo is not 0, e.g. "1 -1 1" or "[-2] -1 -1 -2 -1 -1".
// Any other polynomial prints as String().
func (p Poly) ShortString() string {
	vars := p.Vars()
	if len(vars) != 1 {
		return p.String()
	}
	for _, t := range p.terms {
		for _, f := range t.Mono {
			if f.Exp%ExpOne != 0 {
				return p.String()
			}
		}
	}

	v := vars[0]
	lo, hi := p.Span(v)
	lo, hi = lo/ExpOne, hi/ExpOne
	coefs := make([]int64, hi-lo+1)
	for _, t := range p.terms {
		e, _ := t.Mono.split(v)
		coefs[e/ExpOne-lo] = t.Coef
	}

	buf := strings.Builder{}
	if lo != 0 {
		buf.WriteByte('[')
		buf.WriteString(strconv.Itoa(int(lo)))
		buf.WriteString("] ")
	}
	for i, c := range coefs {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(strconv.FormatInt(c, 10))
	}
	return buf.String()
}
