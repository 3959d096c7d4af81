package reduce

import (
	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/pkg/errors"
	uf "github.com/spakin/disjoint"
)

// loopDelta is the value of a free loop in the Kauffman bracket.
var loopDelta = poly.MustParse("-A^2 - A^-2")

// Bracket returns the Kauffman bracket <X> of a link diagram, normalized so that a single loop is 1.
//
// Each of the 2^n states smooths every crossing either way: the A-smoothing (sign +1) joins positions (0,1) and (2,3),
// the B-smoothing joins (0,3) and (1,2).  The state contributes A^(a-b) d^(loops-1), where d = -A^2-A^-2.
func Bracket(X *pd.Graph, maxCrossings int) (poly.Poly, error) {
	for _, v := range X.Verts {
		if len(v) != 2 {
			return poly.Poly{}, errors.Wrapf(goknot.ErrNotALink, "V%v", v)
		}
	}
	if maxCrossings <= 0 {
		maxCrossings = goknot.DefaultMaxCrossings
	}
	nc := len(X.Cross)
	if nc > maxCrossings {
		return poly.Poly{}, &TooManyCrossingsError{
			Crossings: nc,
			Max:       maxCrossings,
		}
	}
	if X.IsEmpty() {
		return poly.One, nil
	}

	var labels []int
	seen := make(map[int]bool)
	addLabels := func(edges []int) {
		for _, e := range edges {
			if !seen[e] {
				seen[e] = true
				labels = append(labels, e)
			}
		}
	}
	for _, v := range X.Verts {
		addLabels(v)
	}
	for _, c := range X.Cross {
		addLabels(c[:])
	}

	// The most loops a state can have is one per edge.
	deltaPow := make([]poly.Poly, len(labels)+1)
	deltaPow[0] = poly.One
	for i := 1; i < len(deltaPow); i++ {
		deltaPow[i] = deltaPow[i-1].Mul(loopDelta)
	}

	// count[a-b+nc][loops] accumulates the number of states with the given A-power and loop count.
	count := make([][]int64, 2*nc+1)
	for i := range count {
		count[i] = make([]int64, len(labels)+1)
	}

	elems := make(map[int]*uf.Element, len(labels))
	for state := 0; state < 1<<nc; state++ {
		for _, e := range labels {
			elems[e] = uf.NewElement()
		}
		for _, v := range X.Verts {
			uf.Union(elems[v[0]], elems[v[1]])
		}
		apow := 0
		for ci, c := range X.Cross {
			if state&(1<<ci) == 0 {
				uf.Union(elems[c[0]], elems[c[1]])
				uf.Union(elems[c[2]], elems[c[3]])
				apow++
			} else {
				uf.Union(elems[c[0]], elems[c[3]])
				uf.Union(elems[c[1]], elems[c[2]])
				apow--
			}
		}
		loops := 0
		for _, el := range elems {
			if el.Find() == el {
				loops++
			}
		}
		count[apow+nc][loops]++
	}

	value := poly.Poly{}
	for i, byLoops := range count {
		for loops, n := range byLoops {
			if n == 0 {
				continue
			}
			term := poly.Mono(n, "A", i-nc).Mul(deltaPow[loops-1])
			value = value.Add(term)
		}
	}
	return value, nil
}

// Jones returns the Jones polynomial of a link diagram in the variable t, from its bracket:
// V(t) = (-A^3)^(-w) <X> with A = t^(-1/4), where w is the writhe.
func Jones(X *pd.Graph, maxCrossings int) (poly.Poly, error) {
	w, err := X.Writhe()
	if err != nil {
		return poly.Poly{}, err
	}
	bracket, err := Bracket(X, maxCrossings)
	if err != nil {
		return poly.Poly{}, err
	}

	sign := int64(1)
	if w&1 != 0 {
		sign = -1
	}
	norm := bracket.Mul(poly.Mono(sign, "A", -3*w))
	return norm.SubstituteExpr("A", "t^(-1/4)")
}
