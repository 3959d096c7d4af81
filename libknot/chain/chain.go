package chain

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/2x3systems/goknot/goknot"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Chain is an open polygonal curve in 3D, e.g. the backbone atoms of a protein.
type Chain struct {
	IDs    []int
	Coords []r3.Vector
}

// Loop is a closed polygon: the last vertex joins back to the first.
type Loop []r3.Vector

// FromPoints returns a Chain holding the given points.
func FromPoints(points []goknot.Point) *Chain {
	ch := &Chain{
		IDs:    make([]int, len(points)),
		Coords: make([]r3.Vector, len(points)),
	}
	for i, pt := range points {
		ch.IDs[i] = pt.ID
		ch.Coords[i] = r3.Vector{X: pt.X, Y: pt.Y, Z: pt.Z}
	}
	return ch
}

func (ch *Chain) Len() int {
	return len(ch.Coords)
}

// Cut returns the sub-chain [l, k), clamped to the chain.  The returned Chain shares storage with ch.
func (ch *Chain) Cut(l, k int) *Chain {
	if l < 0 {
		l = 0
	}
	if k > len(ch.Coords) || k < 0 {
		k = len(ch.Coords)
	}
	if l > k {
		l = k
	}
	return &Chain{
		IDs:    ch.IDs[l:k],
		Coords: ch.Coords[l:k],
	}
}

// Center returns the mass center of the chain's points.
func (ch *Chain) Center() r3.Vector {
	var sum r3.Vector
	for _, p := range ch.Coords {
		sum = sum.Add(p)
	}
	if len(ch.Coords) == 0 {
		return sum
	}
	return sum.Mul(1 / float64(len(ch.Coords)))
}

// Radius returns the largest distance of a point from center.
func (ch *Chain) Radius(center r3.Vector) float64 {
	r := 0.0
	for _, p := range ch.Coords {
		if d := p.Sub(center).Norm(); d > r {
			r = d
		}
	}
	return r
}

// Parse reads chain coordinates, one point per line as "id x y z" or "x y z".
// A blank line ends an arc; lines starting with '#' are skipped.
func Parse(r io.Reader) ([][]goknot.Point, error) {
	var arcs [][]goknot.Point
	var arc []goknot.Point

	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			if len(arc) > 0 {
				arcs = append(arcs, arc)
				arc = nil
			}
			continue
		}
		if line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		pt := goknot.Point{
			ID: len(arc) + 1,
		}
		switch len(fields) {
		case 4:
			id, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, errors.Wrapf(goknot.ErrBadCurve, "line %d: bad id %q", lineNum, fields[0])
			}
			pt.ID = id
			fields = fields[1:]
		case 3:
		default:
			return nil, errors.Wrapf(goknot.ErrBadCurve, "line %d: expected 3 or 4 fields, got %d", lineNum, len(fields))
		}

		var xyz [3]float64
		for i, field := range fields {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(goknot.ErrBadCurve, "line %d: bad coordinate %q", lineNum, field)
			}
			xyz[i] = val
		}
		pt.X, pt.Y, pt.Z = xyz[0], xyz[1], xyz[2]
		arc = append(arc, pt)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(arc) > 0 {
		arcs = append(arcs, arc)
	}
	if len(arcs) == 0 {
		return nil, errors.Wrap(goknot.ErrBadCurve, "no points")
	}
	return arcs, nil
}

// ParseString is Parse for in-memory text.
func ParseString(text string) ([][]goknot.Point, error) {
	return Parse(strings.NewReader(text))
}
