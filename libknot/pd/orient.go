package pd

import (
	"sort"

	"github.com/2x3systems/goknot/goknot"
	"github.com/pkg/errors"
)

// End is one end of an edge: a position on a vertex or on a crossing.
type End struct {
	Cross bool
	Index int
	Pos   int
}

// Orientation is the result of tracing the oriented components of a link diagram.
type Orientation struct {
	Strands [][]int     // edge labels of each component in travel order, starting from its smallest label, sorted by that label
	Heads   map[int]End // the end each edge travels into
	OverIn  []int       // per crossing, the position (1 or 3) where the over strand enters
}

func (X *Graph) edgeEnds() map[int][]End {
	ends := make(map[int][]End)
	for vi, v := range X.Verts {
		for p, e := range v {
			ends[e] = append(ends[e], End{Index: vi, Pos: p})
		}
	}
	for ci, c := range X.Cross {
		for p, e := range c {
			ends[e] = append(ends[e], End{Cross: true, Index: ci, Pos: p})
		}
	}
	return ends
}

// Orient traces the components of a link diagram, where every vertex is 2-valent and position 0 of every crossing is
// the incoming under edge.  Components that never pass under are traced in an arbitrary but fixed direction.
func (X *Graph) Orient() (*Orientation, error) {
	for _, v := range X.Verts {
		if len(v) != 2 {
			return nil, errors.Wrapf(goknot.ErrNotALink, "V%v", v)
		}
	}

	ends := X.edgeEnds()
	orient := &Orientation{
		Heads:  make(map[int]End, len(ends)),
		OverIn: make([]int, len(X.Cross)),
	}

	other := func(e int, from End) End {
		pair := ends[e]
		if pair[0] == from {
			return pair[1]
		}
		return pair[0]
	}

	trace := func(start int, head End) error {
		var strand []int
		e := start
		for {
			orient.Heads[e] = head
			strand = append(strand, e)

			var exit End
			if head.Cross {
				switch head.Pos {
				case 2:
					return errors.Wrapf(goknot.ErrBadOrientation, "under strand enters X%v at position 2", X.Cross[head.Index])
				case 1, 3:
					orient.OverIn[head.Index] = head.Pos
				}
				exit = End{Cross: true, Index: head.Index, Pos: (head.Pos + 2) & 3}
				e = X.Cross[head.Index][exit.Pos]
			} else {
				exit = End{Index: head.Index, Pos: 1 - head.Pos}
				e = X.Verts[head.Index][exit.Pos]
			}
			if e == start {
				break
			}
			if _, seen := orient.Heads[e]; seen {
				return errors.Wrapf(goknot.ErrBadOrientation, "edge %d traversed twice", e)
			}
			head = other(e, exit)
		}
		orient.Strands = append(orient.Strands, strand)
		return nil
	}

	for ci, c := range X.Cross {
		if _, seen := orient.Heads[c[0]]; seen {
			if h := orient.Heads[c[0]]; !(h.Cross && h.Index == ci && h.Pos == 0) {
				return nil, errors.Wrapf(goknot.ErrBadOrientation, "X%v", c)
			}
			continue
		}
		if err := trace(c[0], End{Cross: true, Index: ci, Pos: 0}); err != nil {
			return nil, err
		}
	}

	var rest []int
	for e := range ends {
		if _, seen := orient.Heads[e]; !seen {
			rest = append(rest, e)
		}
	}
	sort.Ints(rest)
	for _, e := range rest {
		if _, seen := orient.Heads[e]; seen {
			continue
		}
		if err := trace(e, ends[e][0]); err != nil {
			return nil, err
		}
	}

	for i, strand := range orient.Strands {
		min := 0
		for k, e := range strand {
			if e < strand[min] {
				min = k
			}
		}
		orient.Strands[i] = append(strand[min:], strand[:min]...)
	}
	sort.Slice(orient.Strands, func(i, j int) bool {
		return orient.Strands[i][0] < orient.Strands[j][0]
	})
	return orient, nil
}

// Sign returns the sign of crossing ci: +1 if the over strand runs from position 3 to position 1.
func (orient *Orientation) Sign(ci int) int {
	if orient.OverIn[ci] == 3 {
		return 1
	}
	return -1
}

// CrossingSigns returns the sign of every crossing of a link diagram.
func (X *Graph) CrossingSigns() ([]int, error) {
	orient, err := X.Orient()
	if err != nil {
		return nil, err
	}
	signs := make([]int, len(X.Cross))
	for ci := range signs {
		signs[ci] = orient.Sign(ci)
	}
	return signs, nil
}

// Writhe returns the sum of the crossing signs of a link diagram.
func (X *Graph) Writhe() (int, error) {
	signs, err := X.CrossingSigns()
	if err != nil {
		return 0, err
	}
	w := 0
	for _, s := range signs {
		w += s
	}
	return w, nil
}

// Mirror returns the mirror image of X.
// Link diagrams keep position 0 as the incoming under edge; other diagrams have every crossing rotated.
func (X *Graph) Mirror() *Graph {
	signs, err := X.CrossingSigns()
	Y := NewGraph(X)
	for ci, c := range Y.Cross {
		if err == nil && signs[ci] > 0 {
			Y.Cross[ci] = [4]int{c[3], c[0], c[1], c[2]}
		} else {
			Y.Cross[ci] = [4]int{c[1], c[2], c[3], c[0]}
		}
	}
	return Y
}
