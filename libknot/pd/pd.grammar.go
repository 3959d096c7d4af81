package pd

import (
	"github.com/2x3systems/goknot/goknot"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// PDExpr is an extended PD code such as "V[1,2,3];V[3,2,1]" or "X[1,5,2,4];X[3,1,4,6];X[5,3,6,2]".
type PDExpr struct {
	Elems []*PDElem `( @@ ( ";" @@ )* ";"? )?`
}

type PDElem struct {
	Kind   string `@( "V" | "X" )`
	Labels []int  `"[" ( @Int ( "," @Int )* )? "]"`
}

var sPDLexer = lexer.MustSimple([]lexer.SimpleRule{
	{"Kind", `[VX]`},
	{"Int", `\d+`},
	{"Punct", `[\[\],;]`},
	{"whitespace", `\s+`},
})

var sParsePDExpr = participle.MustBuild[PDExpr](
	participle.Lexer(sPDLexer),
)

// Parse builds a Graph from an extended PD code.  The empty code is the empty graph.
func Parse(code string) (*Graph, error) {
	expr, err := sParsePDExpr.ParseString("", code)
	if err != nil {
		return nil, errors.Wrap(goknot.ErrBadPDCode, err.Error())
	}

	X := NewGraph(nil)
	for _, elem := range expr.Elems {
		switch elem.Kind {
		case "V":
			X.Verts = append(X.Verts, append([]int{}, elem.Labels...))
		case "X":
			if len(elem.Labels) != 4 {
				X.Reclaim()
				return nil, errors.Wrapf(goknot.ErrBadCrossing, "X%v", elem.Labels)
			}
			X.Cross = append(X.Cross, [4]int{elem.Labels[0], elem.Labels[1], elem.Labels[2], elem.Labels[3]})
		}
	}

	if err := X.Validate(); err != nil {
		X.Reclaim()
		return nil, err
	}
	return X, nil
}

// MustParse is Parse for known-good codes.
func MustParse(code string) *Graph {
	X, err := Parse(code)
	if err != nil {
		panic(err)
	}
	return X
}

// Validate checks that every edge label occurs exactly twice.
func (X *Graph) Validate() error {
	counts := make(map[int]int)
	for _, v := range X.Verts {
		for _, e := range v {
			counts[e]++
		}
	}
	for _, c := range X.Cross {
		for _, e := range c {
			counts[e]++
		}
	}
	for e, n := range counts {
		if n != 2 {
			return errors.Wrapf(goknot.ErrBadLabel, "label %d occurs %d times", e, n)
		}
	}
	return nil
}
