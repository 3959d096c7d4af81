package reduce

import (
	"math/big"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/pkg/errors"
)

// linear is a + b*t.
type linear struct {
	a, b int64
}

// Alexander returns the Alexander polynomial of a knot diagram in the variable t,
// shifted so its lowest power is 0 and signed so its leading coefficient is positive.
//
// Each crossing gives one row of the Alexander matrix over the arcs of the diagram; the polynomial is any
// first minor, found by evaluating the determinant exactly at integer points and interpolating.
func Alexander(X *pd.Graph, maxCrossings int) (poly.Poly, error) {
	if maxCrossings <= 0 {
		maxCrossings = goknot.DefaultMaxCrossings
	}
	n := len(X.Cross)
	if n > maxCrossings {
		return poly.Poly{}, &TooManyCrossingsError{
			Crossings: n,
			Max:       maxCrossings,
		}
	}

	orient, err := X.Orient()
	if err != nil {
		return poly.Poly{}, err
	}
	if len(orient.Strands) != 1 {
		return poly.Poly{}, errors.Wrapf(goknot.ErrNotAKnot, "%d components", len(orient.Strands))
	}
	if n == 0 {
		return poly.One, nil
	}

	arcOf := arcsOf(X, orient.Strands[0])

	mat := make([][]linear, n)
	for ci, c := range X.Cross {
		row := make([]linear, n)
		over, in, out := arcOf[c[1]], arcOf[c[0]], arcOf[c[2]]
		row[over].a += 1
		row[over].b -= 1
		if orient.Sign(ci) > 0 {
			row[in].b += 1
			row[out].a -= 1
		} else {
			row[in].a -= 1
			row[out].b += 1
		}
		mat[ci] = row
	}

	// Drop the last row and column; the minor has degree at most n-1 in t.
	minor := make([][]linear, n-1)
	for i := range minor {
		minor[i] = mat[i][:n-1]
	}

	xs := make([]*big.Rat, n)
	ys := make([]*big.Rat, n)
	for i := range xs {
		xs[i] = big.NewRat(int64(i+2), 1)
		ys[i] = det(minor, xs[i])
	}
	coefs, err := interpolate(xs, ys)
	if err != nil {
		return poly.Poly{}, err
	}

	value := poly.Poly{}
	lo := -1
	for i, c := range coefs {
		if c == 0 {
			continue
		}
		if lo < 0 {
			lo = i
		}
		value = value.Add(poly.Mono(c, "t", i-lo))
	}
	return value.SignNormalized(), nil
}

// arcsOf numbers the arcs of a knot diagram: an arc ends at each edge running into an under crossing.
func arcsOf(X *pd.Graph, strand []int) map[int]int {
	underIn := make(map[int]bool, len(X.Cross))
	for _, c := range X.Cross {
		underIn[c[0]] = true
	}
	first := 0
	for i, e := range strand {
		if underIn[e] {
			first = i + 1
			break
		}
	}
	arcOf := make(map[int]int, len(strand))
	arc := 0
	for i := range strand {
		e := strand[(first+i)%len(strand)]
		arcOf[e] = arc
		if underIn[e] {
			arc++
		}
	}
	return arcOf
}

// det returns the determinant of mat evaluated at t, by exact Gaussian elimination.
func det(mat [][]linear, t *big.Rat) *big.Rat {
	n := len(mat)
	m := make([][]*big.Rat, n)
	for i, row := range mat {
		m[i] = make([]*big.Rat, n)
		for j, entry := range row {
			v := new(big.Rat).Mul(t, big.NewRat(entry.b, 1))
			m[i][j] = v.Add(v, big.NewRat(entry.a, 1))
		}
	}

	d := big.NewRat(1, 1)
	for col := 0; col < n; col++ {
		pivot := -1
		for row := col; row < n; row++ {
			if m[row][col].Sign() != 0 {
				pivot = row
				break
			}
		}
		if pivot < 0 {
			return new(big.Rat)
		}
		if pivot != col {
			m[pivot], m[col] = m[col], m[pivot]
			d.Neg(d)
		}
		d.Mul(d, m[col][col])
		for row := col + 1; row < n; row++ {
			if m[row][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Quo(m[row][col], m[col][col])
			for j := col; j < n; j++ {
				m[row][j].Sub(m[row][j], new(big.Rat).Mul(f, m[col][j]))
			}
		}
	}
	return d
}

// interpolate returns the integer coefficients, lowest power first, of the polynomial through the given points.
func interpolate(xs, ys []*big.Rat) ([]int64, error) {
	n := len(xs)
	sum := make([]*big.Rat, n)
	for i := range sum {
		sum[i] = new(big.Rat)
	}

	for i := range xs {
		// basis is prod_{j != i} (t - x_j), denom is prod_{j != i} (x_i - x_j)
		basis := []*big.Rat{big.NewRat(1, 1)}
		denom := big.NewRat(1, 1)
		for j := range xs {
			if j == i {
				continue
			}
			next := make([]*big.Rat, len(basis)+1)
			for k := range next {
				next[k] = new(big.Rat)
			}
			for k, c := range basis {
				next[k+1].Add(next[k+1], c)
				next[k].Sub(next[k], new(big.Rat).Mul(c, xs[j]))
			}
			basis = next
			denom.Mul(denom, new(big.Rat).Sub(xs[i], xs[j]))
		}
		scale := new(big.Rat).Quo(ys[i], denom)
		for k, c := range basis {
			sum[k].Add(sum[k], new(big.Rat).Mul(c, scale))
		}
	}

	coefs := make([]int64, n)
	for k, c := range sum {
		if !c.IsInt() || !c.Num().IsInt64() {
			return nil, errors.Errorf("alexander: non-integer coefficient %v", c)
		}
		coefs[k] = c.Num().Int64()
	}
	return coefs, nil
}
