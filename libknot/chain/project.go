package chain

import (
	"math"
	"sort"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

const (
	projectAttempts = 8
	projectEps      = 1e-9
)

type segment struct {
	loop, index int
	p, q        r3.Vector
	loopLen     int
}

// passage is a loop passing through a crossing.
type passage struct {
	param float64
	cross int
	over  bool
}

type crossingInfo struct {
	overDir, underDir r3.Vector
}

// Project returns the oriented PD code of loops seen from a generic direction.
// Edge labels run along each loop in order; a loop without crossings becomes V[a,a].
func Project(loops []Loop) (*pd.Graph, error) {
	for _, L := range loops {
		if len(L) < 3 {
			return nil, errors.Wrapf(goknot.ErrCurveTooShort, "loop of %d points", len(L))
		}
	}
	for attempt := 0; attempt < projectAttempts; attempt++ {
		X, ok := projectAlong(loops, attempt)
		if ok {
			return X, nil
		}
	}
	return nil, errors.Wrapf(goknot.ErrDegenerateCurve, "no generic projection after %d attempts", projectAttempts)
}

// rotation returns the projection rotation for the given attempt; the angles avoid axis-aligned views.
func rotation(attempt int) func(v r3.Vector) r3.Vector {
	alpha := 0.3711 + 0.1731*float64(attempt)
	beta := 0.5623 + 0.2417*float64(attempt)
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	cb, sb := math.Cos(beta), math.Sin(beta)
	return func(v r3.Vector) r3.Vector {
		y, z := v.Y*ca-v.Z*sa, v.Y*sa+v.Z*ca
		x, z := v.X*cb+z*sb, -v.X*sb+z*cb
		return r3.Vector{X: x, Y: y, Z: z}
	}
}

func projectAlong(loops []Loop, attempt int) (*pd.Graph, bool) {
	rotate := rotation(attempt)

	var segs []segment
	for li, L := range loops {
		R := make([]r3.Vector, len(L))
		for i, v := range L {
			R[i] = rotate(v)
		}
		for i := range R {
			segs = append(segs, segment{
				loop:    li,
				index:   i,
				p:       R[i],
				q:       R[(i+1)%len(R)],
				loopLen: len(R),
			})
		}
	}

	events := make(map[[2]int][]passage)
	var infos []crossingInfo

	for a := range segs {
		for b := a + 1; b < len(segs); b++ {
			s1, s2 := segs[a], segs[b]
			if s1.loop == s2.loop {
				gap := s1.index - s2.index
				if gap < 0 {
					gap = -gap
				}
				if gap == 1 || gap == s1.loopLen-1 {
					continue
				}
			}
			d1, d2 := s1.q.Sub(s1.p), s2.q.Sub(s2.p)
			den := d1.X*d2.Y - d1.Y*d2.X
			w := s2.p.Sub(s1.p)
			if math.Abs(den) < projectEps {
				// parallel in projection: only overlapping segments are degenerate
				if math.Abs(w.X*d1.Y-w.Y*d1.X) < projectEps {
					return nil, false
				}
				continue
			}
			s := (w.X*d2.Y - w.Y*d2.X) / den
			t := (w.X*d1.Y - w.Y*d1.X) / den
			if s < -projectEps || s > 1+projectEps || t < -projectEps || t > 1+projectEps {
				continue
			}
			if s < projectEps || s > 1-projectEps || t < projectEps || t > 1-projectEps {
				// crossing through a projected vertex
				return nil, false
			}

			z1 := s1.p.Z + s*d1.Z
			z2 := s2.p.Z + t*d2.Z
			if math.Abs(z1-z2) < projectEps {
				return nil, false
			}
			over1 := z1 > z2
			ci := len(infos)
			if over1 {
				infos = append(infos, crossingInfo{overDir: d1, underDir: d2})
			} else {
				infos = append(infos, crossingInfo{overDir: d2, underDir: d1})
			}
			k1, k2 := [2]int{s1.loop, s1.index}, [2]int{s2.loop, s2.index}
			events[k1] = append(events[k1], passage{param: s, cross: ci, over: over1})
			events[k2] = append(events[k2], passage{param: t, cross: ci, over: !over1})
		}
	}

	X := pd.NewGraph(nil)
	X.Cross = make([][4]int, len(infos))
	label := 1
	for li, L := range loops {
		var seq []passage
		for i := range L {
			ev := events[[2]int{li, i}]
			sort.Slice(ev, func(a, b int) bool {
				return ev[a].param < ev[b].param
			})
			seq = append(seq, ev...)
		}
		if len(seq) == 0 {
			X.Verts = append(X.Verts, []int{label, label})
			label++
			continue
		}

		m := len(seq)
		base := label
		label += m
		for k, ps := range seq {
			in, out := base+(k+m-1)%m, base+k
			c := &X.Cross[ps.cross]
			if !ps.over {
				c[0], c[2] = in, out
				continue
			}
			info := infos[ps.cross]
			u, o := info.underDir, info.overDir
			// position 1 lies a quarter turn counterclockwise from the incoming under edge
			if -u.X*o.Y+u.Y*o.X > 0 {
				c[1], c[3] = out, in
			} else {
				c[1], c[3] = in, out
			}
		}
	}
	return X, true
}
