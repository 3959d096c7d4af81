package reduce

import (
	"fmt"
	"sort"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// YamadaOpts specifies how a Yamada polynomial is reduced.
type YamadaOpts struct {
	MaxCrossings int       // crossing cutoff applied after simplification (0 denotes goknot.DefaultMaxCrossings)
	Memo         MemoStore // values of already reduced diagrams (nil disables memoization)
	CheckMemo    bool      // if set, the key of every memo hit is re-encoded and verified before the hit is used
}

// DefaultYamadaOpts reduces with the default crossing cutoff and no memo.
var DefaultYamadaOpts = YamadaOpts{
	MaxCrossings: goknot.DefaultMaxCrossings,
}

// TooManyCrossingsError reports a diagram left with more crossings than the cutoff after simplification.
// It wraps goknot.ErrTooManyCrossings.
type TooManyCrossingsError struct {
	Crossings int
	Max       int
}

func (err *TooManyCrossingsError) Error() string {
	return fmt.Sprintf("%v (%d > %d)", goknot.ErrTooManyCrossings, err.Crossings, err.Max)
}

func (err *TooManyCrossingsError) Unwrap() error {
	return goknot.ErrTooManyCrossings
}

var (
	sigma    = poly.MustParse("x + 1 + x^-1")
	negSigma = sigma.Neg()
	thetaVal = poly.MustParse("-x^2 - x - 2 - x^-1 - x^-2")
	xMinusXi = poly.MustParse("x - x^-1")
	xVar     = poly.Var("x")
	xInv     = poly.Mono(1, "x", -1)
)

// Yamada returns the raw (unnormalized) Yamada polynomial of X in the variable x.  X is not modified.
func Yamada(X *pd.Graph, opts YamadaOpts) (poly.Poly, error) {
	if opts.MaxCrossings <= 0 {
		opts.MaxCrossings = goknot.DefaultMaxCrossings
	}
	r := yamadaReducer{
		YamadaOpts: opts,
	}
	return r.eval(pd.NewGraph(X), 0)
}

type yamadaReducer struct {
	YamadaOpts
}

// eval simplifies and reduces X, which it consumes.
// The value returned includes the unit factor of this call's own simplification, applied once.
func (r *yamadaReducer) eval(X *pd.Graph, depth int) (poly.Poly, error) {
	defer X.Reclaim()

	n := X.Simplify()
	raw, err := r.reduce(X, depth)
	if err != nil {
		return poly.Poly{}, err
	}
	return raw.MulUnit("x", n), nil
}

// reduce returns the value of an already simplified X.
func (r *yamadaReducer) reduce(X *pd.Graph, depth int) (poly.Poly, error) {
	var code string
	if r.Memo != nil {
		code = X.PDCode()
		if value, found := r.Memo.Get(code); found {
			if r.CheckMemo {
				if err := checkMemoKey(X, code); err != nil {
					return poly.Poly{}, err
				}
			}
			klog.V(3).Infof("%*s%s: memo %v", depth, "", code, value)
			return value, nil
		}
	}

	if len(X.Cross) > r.MaxCrossings {
		return poly.Poly{}, &TooManyCrossingsError{
			Crossings: len(X.Cross),
			Max:       r.MaxCrossings,
		}
	}

	value, err := r.expand(X, depth)
	if err != nil {
		return poly.Poly{}, err
	}

	if r.Memo != nil {
		value = r.Memo.Put(code, value)
	}
	return value, nil
}

// checkMemoKey verifies that code is the stable canonical encoding of X.
func checkMemoKey(X *pd.Graph, code string) error {
	if X.PDCode() != code {
		return errors.Wrapf(goknot.ErrMemoInconsistent, "%q", code)
	}
	Y, err := pd.Parse(code)
	if err != nil {
		return errors.Wrapf(goknot.ErrMemoInconsistent, "%q: %v", code, err)
	}
	defer Y.Reclaim()
	if Y.PDCode() != code || Y.NumVerts() != X.NumVerts() || Y.Crossings() != X.Crossings() {
		return errors.Wrapf(goknot.ErrMemoInconsistent, "%q re-encodes as %q", code, Y.PDCode())
	}
	return nil
}

func (r *yamadaReducer) trace(depth int, X *pd.Graph, rule string) {
	klog.V(3).Infof("%*s%v: %s", depth, "", X, rule)
}

func (r *yamadaReducer) expand(X *pd.Graph, depth int) (poly.Poly, error) {
	if len(X.Cross) == 0 {
		switch len(X.Verts) {
		case 0:
			return poly.One, nil
		case 1:
			r.trace(depth, X, "bouquet")
			return bouquet(X.Verts[0]), nil
		case 2:
			v1, v2 := X.Verts[0], X.Verts[1]
			if isTheta(v1, v2) {
				r.trace(depth, X, "theta")
				return thetaVal, nil
			}
			if numShared(v1, v2) == 1 {
				r.trace(depth, X, "handcuff")
				return poly.Poly{}, nil
			}
		}
	}

	if vi, pos, found := X.LoopAt(); found {
		r.trace(depth, X, "loop")
		sub, err := r.eval(X.RemoveLoop(vi, pos), depth+1)
		if err != nil {
			return poly.Poly{}, err
		}
		return negSigma.Mul(sub), nil
	}

	comps := X.Components()
	if len(comps) > 1 {
		r.trace(depth, X, "split")
		return r.expandSplit(comps, depth)
	}
	for _, Xc := range comps {
		Xc.Reclaim()
	}

	if len(X.Cross) > 0 {
		return r.expandCrossing(X, depth)
	}

	if edges := X.NoloopEdges(); len(edges) > 0 {
		r.trace(depth, X, fmt.Sprintf("edge %d", edges[0]))
		removed, err := r.eval(X.RemoveEdge(edges[0]), depth+1)
		if err != nil {
			return poly.Poly{}, err
		}
		contracted, err := r.eval(X.ContractEdge(edges[0]), depth+1)
		if err != nil {
			return poly.Poly{}, err
		}
		return removed.Add(contracted), nil
	}

	return poly.One, nil
}

// expandSplit multiplies the values of the given components, which it consumes.
func (r *yamadaReducer) expandSplit(comps []*pd.Graph, depth int) (poly.Poly, error) {
	value := poly.One
	var err error
	for _, Xc := range comps {
		if err != nil {
			Xc.Reclaim()
			continue
		}
		var sub poly.Poly
		if sub, err = r.eval(Xc, depth+1); err == nil {
			value = value.Mul(sub)
		}
	}
	return value, err
}

// expandCrossing reduces the first crossing, by the skein relation if switching it lowers the crossing count,
// otherwise by replacing it with a vertex.
func (r *yamadaReducer) expandCrossing(X *pd.Graph, depth int) (poly.Poly, error) {
	inv := X.InvertCrossing(0)
	invN := inv.Simplify()
	skein := len(inv.Cross) < len(X.Cross)

	var third poly.Poly
	if skein {
		r.trace(depth, X, "skein")
		invVal, err := r.eval(inv, depth+1)
		if err != nil {
			return poly.Poly{}, err
		}
		third = invVal.MulUnit("x", invN)
	} else {
		inv.Reclaim()
		r.trace(depth, X, "vertex")
	}

	plus, err := r.eval(X.SmoothCrossing(0, 1), depth+1)
	if err != nil {
		return poly.Poly{}, err
	}
	minus, err := r.eval(X.SmoothCrossing(0, -1), depth+1)
	if err != nil {
		return poly.Poly{}, err
	}

	if skein {
		return xMinusXi.Mul(plus.Sub(minus)).Add(third), nil
	}

	zero, err := r.eval(X.SmoothCrossing(0, 0), depth+1)
	if err != nil {
		return poly.Poly{}, err
	}
	return xVar.Mul(plus).Add(xInv.Mul(minus)).Add(zero), nil
}

// bouquet returns the value of a single vertex carrying k loops: -(-x-1-x^-1)^k.
func bouquet(v []int) poly.Poly {
	k := len(distinct(v))
	return negSigma.Pow(k).Neg()
}

// isTheta reports if v1 and v2 are 3-valent vertices joined by three parallel edges.
func isTheta(v1, v2 []int) bool {
	if len(v1) != 3 || len(v2) != 3 {
		return false
	}
	a, b := distinct(v1), distinct(v2)
	if len(a) != 3 || len(b) != 3 {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func numShared(v1, v2 []int) int {
	n := 0
	for _, e := range distinct(v1) {
		for _, f := range v2 {
			if e == f {
				n++
				break
			}
		}
	}
	return n
}

// distinct returns the sorted distinct labels of v.
func distinct(v []int) []int {
	out := append([]int{}, v...)
	sort.Ints(out)
	n := 0
	for i, e := range out {
		if i == 0 || e != out[n-1] {
			out[n] = e
			n++
		}
	}
	return out[:n]
}
