package chain

import (
	"math"
	"math/rand"

	"github.com/2x3systems/goknot/goknot"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// farFactor scales the chain radius to the sphere that closing points are placed on.
const farFactor = 100

// RandomDirection returns a uniformly distributed unit vector.
func RandomDirection(rnd *rand.Rand) r3.Vector {
	for {
		v := r3.Vector{X: rnd.NormFloat64(), Y: rnd.NormFloat64(), Z: rnd.NormFloat64()}
		if n := v.Norm(); n > 1e-9 {
			return v.Mul(1 / n)
		}
	}
}

// direction returns the given direction, or a random one if dir is not a non-zero 3-vector.
func direction(dir []float64, rnd *rand.Rand) r3.Vector {
	if len(dir) == 3 {
		v := r3.Vector{X: dir[0], Y: dir[1], Z: dir[2]}
		if v.Norm() > 0 {
			return v.Normalize()
		}
	}
	return RandomDirection(rnd)
}

// midway returns the unit vector halfway between unit vectors a and b along a great circle.
func midway(a, b r3.Vector) r3.Vector {
	mid := a.Add(b)
	if mid.Norm() < 1e-9 {
		// antipodal: any direction perpendicular to a
		mid = a.Cross(r3.Vector{X: 1})
		if mid.Norm() < 1e-9 {
			mid = a.Cross(r3.Vector{Y: 1})
		}
	}
	return mid.Normalize()
}

// Close turns ch into a Loop using the given closure method.
// dir fixes the direction used by Rays and OnePoint; rnd draws everything random.
func Close(ch *Chain, closure goknot.Closure, dir []float64, rnd *rand.Rand) (Loop, error) {
	n := ch.Len()
	if n < 3 {
		return nil, errors.Wrapf(goknot.ErrCurveTooShort, "%d points", n)
	}

	loop := make(Loop, n, n+3)
	copy(loop, ch.Coords)
	if closure == goknot.Closed {
		return loop, nil
	}

	center := ch.Center()
	R := farFactor * ch.Radius(center)
	if R == 0 || math.IsNaN(R) || math.IsInf(R, 0) {
		return nil, errors.Wrap(goknot.ErrDegenerateCurve, "chain has no extent")
	}
	first, last := ch.Coords[0], ch.Coords[n-1]
	onSphere := func(u r3.Vector) r3.Vector {
		return center.Add(u.Mul(R))
	}

	switch closure {
	case goknot.MassCenter:
		uFirst := first.Sub(center).Normalize()
		uLast := last.Sub(center).Normalize()
		if uFirst.Norm() == 0 {
			uFirst = uLast
		}
		if uLast.Norm() == 0 {
			uLast = uFirst
		}
		if uFirst.Norm() == 0 {
			return nil, errors.Wrap(goknot.ErrDegenerateCurve, "chain ends at its mass center")
		}
		loop = append(loop, onSphere(uLast), onSphere(midway(uLast, uFirst)), onSphere(uFirst))

	case goknot.TwoPoints:
		uLast, uFirst := RandomDirection(rnd), RandomDirection(rnd)
		loop = append(loop, onSphere(uLast), onSphere(midway(uLast, uFirst)), onSphere(uFirst))

	case goknot.OnePoint:
		loop = append(loop, onSphere(direction(dir, rnd)))

	case goknot.Rays:
		d := direction(dir, rnd).Mul(R)
		loop = append(loop, last.Add(d), first.Add(d))

	default:
		return nil, errors.Wrapf(goknot.ErrUnknownClosure, "%v", closure)
	}
	return loop, nil
}
