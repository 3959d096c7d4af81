package chain

import (
	"github.com/2x3systems/goknot/goknot"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Reduce simplifies loops with the given method without changing their knot type.
// The loops are modified in place and returned.
func Reduce(loops []Loop, method goknot.ReduceMethod) ([]Loop, error) {
	switch method {
	case goknot.ReduceKMT, "":
		return KMT(loops), nil
	case goknot.ReduceNone:
		return loops, nil
	}
	return nil, errors.Wrapf(goknot.ErrUnknownReduce, "%q", method)
}

// KMT applies Koniaris-Muthukumar-Taylor reduction: a vertex b with neighbors a and c is removed if no other
// segment passes through triangle abc.  Passes repeat until no vertex can be removed; a loop keeps at least 3 vertices.
func KMT(loops []Loop) []Loop {
	for changed := true; changed; {
		changed = false
		for li := range loops {
			for i := 0; len(loops[li]) > 3 && i < len(loops[li]); {
				if removable(loops, li, i) {
					L := loops[li]
					loops[li] = append(L[:i], L[i+1:]...)
					changed = true
				} else {
					i++
				}
			}
		}
	}
	return loops
}

func removable(loops []Loop, li, i int) bool {
	L := loops[li]
	n := len(L)
	a, b, c := L[(i+n-1)%n], L[i], L[(i+1)%n]

	for lj, M := range loops {
		m := len(M)
		for j := 0; j < m; j++ {
			if lj == li {
				// skip the two segments at b and the segments meeting the triangle at a or c
				if j == (i+n-2)%n || j == (i+n-1)%n || j == i || j == (i+1)%n {
					continue
				}
			}
			if segmentHitsTriangle(M[j], M[(j+1)%m], a, b, c) {
				return false
			}
		}
	}
	return true
}

// segmentHitsTriangle reports if segment pq meets triangle abc (Möller-Trumbore).
func segmentHitsTriangle(p, q, a, b, c r3.Vector) bool {
	const eps = 1e-12

	d := q.Sub(p)
	e1, e2 := b.Sub(a), c.Sub(a)
	h := d.Cross(e2)
	det := e1.Dot(h)
	if det > -eps && det < eps {
		return false
	}
	f := 1 / det
	s := p.Sub(a)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return false
	}
	qv := s.Cross(e1)
	v := f * d.Dot(qv)
	if v < 0 || u+v > 1 {
		return false
	}
	t := f * e2.Dot(qv)
	return t >= 0 && t <= 1
}
