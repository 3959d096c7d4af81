package poly

import (
	"math/big"

	"github.com/2x3systems/goknot/goknot"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// PolyExpr is a sum of signed terms, e.g. "-x^2 - x - 2 - x**-1 - x^-2" or "2*l^2*m^-1 + (t-1)^2".
type PolyExpr struct {
	Head *TermExpr   `@@`
	Tail []*SumEntry `@@*`
}

type SumEntry struct {
	Sign string    `@( "+" | "-" )`
	Term *TermExpr `@@`
}

type TermExpr struct {
	Neg     bool          `@"-"?`
	Coef    *string       `@Int?`
	Factors []*FactorExpr `( "*"? @@ )*`
}

type FactorExpr struct {
	Var   string    `( @Ident`
	Group *PolyExpr `| "(" @@ ")" )`
	Exp   *ExpExpr  `( Pow @@ )?`
}

type ExpExpr struct {
	Paren *ExpValue `  "(" @@ ")"`
	Bare  *ExpValue `| @@`
}

type ExpValue struct {
	Neg bool    `@"-"?`
	Num string  `@( Float | Int )`
	Den *string `( "/" @Int )?`
}

var sPolyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{"Float", `\d+\.\d+`},
	{"Int", `\d+`},
	{"Ident", `[A-Za-z_][A-Za-z0-9_]*`},
	{"Pow", `\*\*|\^`},
	{"Punct", `[-+*/()]`},
	{"whitespace", `\s+`},
})

var sParsePolyExpr = participle.MustBuild[PolyExpr](
	participle.Lexer(sPolyLexer),
)

// Parse reads a polynomial from text.
func Parse(text string) (Poly, error) {
	expr, err := sParsePolyExpr.ParseString("", text)
	if err != nil {
		return Poly{}, errors.Wrap(goknot.ErrPolyParse, err.Error())
	}
	return expr.eval()
}

// MustParse is Parse for known-good literals.
func MustParse(text string) Poly {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

func (expr *PolyExpr) eval() (Poly, error) {
	sum, err := expr.Head.eval()
	if err != nil {
		return Poly{}, err
	}
	for _, entry := range expr.Tail {
		term, err := entry.Term.eval()
		if err != nil {
			return Poly{}, err
		}
		if entry.Sign == "-" {
			sum = sum.Sub(term)
		} else {
			sum = sum.Add(term)
		}
	}
	return sum, nil
}

func (term *TermExpr) eval() (Poly, error) {
	if term.Coef == nil && len(term.Factors) == 0 {
		return Poly{}, errors.Wrap(goknot.ErrPolyParse, "empty term")
	}

	out := One
	if term.Coef != nil {
		var coef big.Int
		if _, ok := coef.SetString(*term.Coef, 10); !ok || !coef.IsInt64() {
			return Poly{}, errors.Wrapf(goknot.ErrPolyParse, "bad coefficient %q", *term.Coef)
		}
		out = Const(coef.Int64())
	}
	for _, factor := range term.Factors {
		fp, err := factor.eval()
		if err != nil {
			return Poly{}, err
		}
		out = out.Mul(fp)
	}
	if term.Neg {
		out = out.Neg()
	}
	return out, nil
}

func (factor *FactorExpr) eval() (Poly, error) {
	var base Poly
	if factor.Group != nil {
		var err error
		if base, err = factor.Group.eval(); err != nil {
			return Poly{}, err
		}
	} else {
		base = Var(factor.Var)
	}

	if factor.Exp == nil {
		return base, nil
	}
	value := factor.Exp.Bare
	if value == nil {
		value = factor.Exp.Paren
	}
	e, err := value.exp()
	if err != nil {
		return Poly{}, err
	}
	p, err := base.powExp(e)
	if err != nil {
		return Poly{}, errors.Wrap(goknot.ErrPolyParse, err.Error())
	}
	return p, nil
}

// exp converts a decimal or rational exponent into quarter powers.
func (value *ExpValue) exp() (Exp, error) {
	var r big.Rat
	if _, ok := r.SetString(value.Num); !ok {
		return 0, errors.Wrapf(goknot.ErrPolyParse, "bad exponent %q", value.Num)
	}
	if value.Den != nil {
		var den big.Rat
		if _, ok := den.SetString(*value.Den); !ok || den.Sign() == 0 {
			return 0, errors.Wrapf(goknot.ErrPolyParse, "bad exponent denominator %q", *value.Den)
		}
		r.Quo(&r, &den)
	}
	if value.Neg {
		r.Neg(&r)
	}
	r.Mul(&r, big.NewRat(int64(ExpOne), 1))
	if !r.IsInt() || !r.Num().IsInt64() {
		return 0, errors.Wrapf(goknot.ErrPolyParse, "exponent %v is not a multiple of 1/%d", value.Num, ExpOne)
	}
	return Exp(r.Num().Int64()), nil
}
