package reduce

import (
	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/pkg/errors"
)

// zSquared is z^2 written in t, where z = t^(1/2) - t^(-1/2).
var zSquared = poly.MustParse("t - 2 + t^-1")

// Conway returns the Conway polynomial of a knot diagram in the variable z.
func Conway(X *pd.Graph, maxCrossings int) (poly.Poly, error) {
	alex, err := Alexander(X, maxCrossings)
	if err != nil {
		return poly.Poly{}, err
	}
	return ConwayFromAlexander(alex)
}

// ConwayFromAlexander rewrites an Alexander polynomial as a polynomial in z = t^(1/2) - t^(-1/2).
//
// The Alexander polynomial is first centered on t^0 and signed so its value at t = 1 is 1.  The leading term c*t^n
// is then repeatedly replaced by c*z^(2n).
func ConwayFromAlexander(alex poly.Poly) (poly.Poly, error) {
	if alex.IsZero() {
		return alex, nil
	}
	lo, hi := alex.Span("t")
	span := int((hi - lo) / poly.ExpOne)
	if (hi-lo)%poly.ExpOne != 0 || span%2 != 0 {
		return poly.Poly{}, errors.Errorf("Alexander polynomial %v is not symmetric", alex)
	}
	p := alex.Mul(poly.Mono(1, "t", -int(lo/poly.ExpOne)-span/2))

	sum := int64(0)
	for _, t := range p.Terms() {
		sum += t.Coef
	}
	if sum < 0 {
		p = p.Neg()
	}

	conway := poly.Poly{}
	for !p.IsZero() {
		lead := p.Lead()
		_, n := p.Span("t")
		if n < 0 || n%poly.ExpOne != 0 {
			return poly.Poly{}, errors.Errorf("Alexander polynomial %v is not symmetric", alex)
		}
		k := int(n / poly.ExpOne)
		conway = conway.Add(poly.Mono(lead.Coef, "z", 2*k))
		p = p.Sub(zSquared.Pow(k).Scale(lead.Coef))
	}
	return conway, nil
}

// Writhe returns the writhe of a link diagram as a constant polynomial.
func Writhe(X *pd.Graph, maxCrossings int) (poly.Poly, error) {
	if maxCrossings <= 0 {
		maxCrossings = goknot.DefaultMaxCrossings
	}
	if n := len(X.Cross); n > maxCrossings {
		return poly.Poly{}, &TooManyCrossingsError{
			Crossings: n,
			Max:       maxCrossings,
		}
	}
	w, err := X.Writhe()
	if err != nil {
		return poly.Poly{}, err
	}
	return poly.Const(int64(w)), nil
}
