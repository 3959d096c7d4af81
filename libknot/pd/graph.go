package pd

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Graph is a planar diagram of a spatial graph, knot or link.
//
// Each vertex lists its edge labels in counterclockwise order.  Each crossing lists its four edge labels
// counterclockwise, where positions 0 and 2 are the under strand and 1 and 3 are the over strand.
// For oriented diagrams position 0 is the incoming under edge.
// Every edge label occurs exactly twice over all vertices and crossings.
type Graph struct {
	Verts [][]int
	Cross [][4]int
}

var graphPool = sync.Pool{
	New: func() interface{} {
		return &Graph{}
	},
}

// NewGraph returns a pooled deep copy of Xsrc (or an empty graph if Xsrc is nil).
func NewGraph(Xsrc *Graph) *Graph {
	X := graphPool.Get().(*Graph)
	X.Init(Xsrc)
	return X
}

// Init makes X a deep copy of Xsrc.
func (X *Graph) Init(Xsrc *Graph) {
	if X == Xsrc {
		return
	}
	X.Verts = X.Verts[:0]
	X.Cross = X.Cross[:0]
	if Xsrc == nil {
		return
	}
	for _, v := range Xsrc.Verts {
		X.Verts = append(X.Verts, append(make([]int, 0, len(v)), v...))
	}
	X.Cross = append(X.Cross, Xsrc.Cross...)
}

// Reclaim returns X to the pool.  X must not be used afterwards.
func (X *Graph) Reclaim() {
	if X != nil {
		X.Init(nil)
		graphPool.Put(X)
	}
}

func (X *Graph) Clone() *Graph {
	return NewGraph(X)
}

// Crossings returns the number of crossings.
func (X *Graph) Crossings() int {
	return len(X.Cross)
}

func (X *Graph) NumVerts() int {
	return len(X.Verts)
}

// IsEmpty reports if X has no vertices and no crossings.
func (X *Graph) IsEmpty() bool {
	return len(X.Verts) == 0 && len(X.Cross) == 0
}

func (X *Graph) hasLabel(label int) bool {
	for _, v := range X.Verts {
		for _, e := range v {
			if e == label {
				return true
			}
		}
	}
	for _, c := range X.Cross {
		for _, e := range c {
			if e == label {
				return true
			}
		}
	}
	return false
}

// relabel renames every edge label present in names.
func (X *Graph) relabel(names map[int]int) {
	if len(names) == 0 {
		return
	}
	for _, v := range X.Verts {
		for i, e := range v {
			if to, ok := names[e]; ok {
				v[i] = to
			}
		}
	}
	for ci := range X.Cross {
		c := &X.Cross[ci]
		for i, e := range c {
			if to, ok := names[e]; ok {
				c[i] = to
			}
		}
	}
}

func (X *Graph) removeVert(vi int) {
	X.Verts = append(X.Verts[:vi], X.Verts[vi+1:]...)
}

func (X *Graph) removeCross(ci int) {
	X.Cross = append(X.Cross[:ci], X.Cross[ci+1:]...)
}

// indexOf returns the first position of label in labels, or -1.
func indexOf(labels []int, label int) int {
	for i, e := range labels {
		if e == label {
			return i
		}
	}
	return -1
}

// minRotation returns the lexicographically smallest cyclic rotation of labels.
func minRotation(labels []int) []int {
	n := len(labels)
	best := 0
	for r := 1; r < n; r++ {
		for i := 0; i < n; i++ {
			a, b := labels[(r+i)%n], labels[(best+i)%n]
			if a != b {
				if a < b {
					best = r
				}
				break
			}
		}
	}
	out := make([]int, n)
	for i := range out {
		out[i] = labels[(best+i)%n]
	}
	return out
}

func writeElem(buf *strings.Builder, kind byte, labels []int) {
	buf.WriteByte(kind)
	buf.WriteByte('[')
	for i, e := range labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(e))
	}
	buf.WriteByte(']')
}

// PDCode returns the canonical PD code of X.
//
// Vertices are rotated to their smallest rotation, crossings are kept as is, and elements are sorted,
// so the code depends only on the diagram and not on the order its elements were added.
// The empty graph has the empty code.
func (X *Graph) PDCode() string {
	elems := make([]string, 0, len(X.Verts)+len(X.Cross))
	buf := strings.Builder{}
	for _, v := range X.Verts {
		writeElem(&buf, 'V', minRotation(v))
		elems = append(elems, buf.String())
		buf.Reset()
	}
	for _, c := range X.Cross {
		writeElem(&buf, 'X', c[:])
		elems = append(elems, buf.String())
		buf.Reset()
	}
	sort.Strings(elems)
	return strings.Join(elems, ";")
}

func (X *Graph) String() string {
	return X.PDCode()
}
