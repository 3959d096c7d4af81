package reduce

import (
	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/plan-systems/klog"
)

var (
	// homflyDelta is the value added by each extra component of an unlink.
	homflyDelta = poly.MustParse("-l*m^-1 - l^-1*m^-1")

	homflyPlusSw  = poly.MustParse("-l^-2")
	homflyPlusL0  = poly.MustParse("-l^-1*m")
	homflyMinusSw = poly.MustParse("-l^2")
	homflyMinusL0 = poly.MustParse("-l*m")
)

// Homfly returns the HOMFLY-PT polynomial of a link diagram in the variables l and m, normalized so the unknot is 1
// and satisfying l*P(L+) + l^-1*P(L-) + m*P(L0) = 0.
//
// Crossings are switched until the diagram is descending (and so an unlink), each switch adding the smoothed diagram.
func Homfly(X *pd.Graph, maxCrossings int) (poly.Poly, error) {
	if maxCrossings <= 0 {
		maxCrossings = goknot.DefaultMaxCrossings
	}
	if nc := len(X.Cross); nc > maxCrossings {
		return poly.Poly{}, &TooManyCrossingsError{
			Crossings: nc,
			Max:       maxCrossings,
		}
	}
	h := homflyReducer{
		known: make(map[string]poly.Poly),
	}
	return h.eval(X)
}

type homflyReducer struct {
	known map[string]poly.Poly
}

func (h *homflyReducer) eval(X *pd.Graph) (poly.Poly, error) {
	code := X.PDCode()
	if value, found := h.known[code]; found {
		return value, nil
	}

	orient, err := X.Orient()
	if err != nil {
		return poly.Poly{}, err
	}

	var value poly.Poly
	ci := firstBadCrossing(orient)
	if ci < 0 {
		if n := len(orient.Strands); n > 0 {
			value = homflyDelta.Pow(n - 1)
		} else {
			value = poly.One
		}
	} else {
		sign := orient.Sign(ci)
		klog.V(3).Infof("homfly %s: switch X%v (%+d)", code, X.Cross[ci], sign)

		sw := X.SwitchCrossing(ci, sign)
		swVal, err := h.eval(sw)
		sw.Reclaim()
		if err != nil {
			return poly.Poly{}, err
		}
		l0 := X.SmoothCrossing(ci, sign)
		l0Val, err := h.eval(l0)
		l0.Reclaim()
		if err != nil {
			return poly.Poly{}, err
		}

		if sign > 0 {
			value = homflyPlusSw.Mul(swVal).Add(homflyPlusL0.Mul(l0Val))
		} else {
			value = homflyMinusSw.Mul(swVal).Add(homflyMinusL0.Mul(l0Val))
		}
	}

	h.known[code] = value
	return value, nil
}

// firstBadCrossing walks the strands in order from their base points and returns the first crossing that is first
// met as an under crossing, or -1 if the diagram is descending.
func firstBadCrossing(orient *pd.Orientation) int {
	met := make(map[int]bool)
	for _, strand := range orient.Strands {
		for _, e := range strand {
			head := orient.Heads[e]
			if !head.Cross || met[head.Index] {
				continue
			}
			met[head.Index] = true
			if head.Pos == 0 {
				return head.Index
			}
		}
	}
	return -1
}
