package pd

import (
	uf "github.com/spakin/disjoint"
)

// labelSets groups edge labels into disjoint classes.
type labelSets struct {
	elems map[int]*uf.Element
}

func newLabelSets() labelSets {
	return labelSets{
		elems: make(map[int]*uf.Element),
	}
}

func (ls labelSets) elem(label int) *uf.Element {
	el := ls.elems[label]
	if el == nil {
		el = uf.NewElement()
		el.Data = label
		ls.elems[label] = el
	}
	return el
}

func (ls labelSets) union(a, b int) {
	uf.Union(ls.elem(a), ls.elem(b))
}

func (ls labelSets) unionAll(labels []int) {
	if len(labels) == 0 {
		return
	}
	first := ls.elem(labels[0])
	for _, e := range labels[1:] {
		uf.Union(first, ls.elem(e))
	}
}

// minNames maps every label that is not the smallest of its class to the smallest label of its class.
func (ls labelSets) minNames() map[int]int {
	mins := make(map[*uf.Element]int, len(ls.elems))
	for label, el := range ls.elems {
		root := el.Find()
		if min, ok := mins[root]; !ok || label < min {
			mins[root] = label
		}
	}
	names := make(map[int]int)
	for label, el := range ls.elems {
		if min := mins[el.Find()]; min != label {
			names[label] = min
		}
	}
	return names
}

// Components splits X into its connected components, in order of first appearance.
// Crossings connect all four of their edges; an empty vertex is a component of its own.
// The returned graphs are pooled and owned by the caller.
func (X *Graph) Components() []*Graph {
	ls := newLabelSets()
	for _, v := range X.Verts {
		ls.unionAll(v)
	}
	for _, c := range X.Cross {
		ls.unionAll(c[:])
	}

	var comps []*Graph
	index := make(map[*uf.Element]int)
	compOf := func(label int) *Graph {
		root := ls.elem(label).Find()
		ci, ok := index[root]
		if !ok {
			ci = len(comps)
			index[root] = ci
			comps = append(comps, NewGraph(nil))
		}
		return comps[ci]
	}

	for _, v := range X.Verts {
		var Xc *Graph
		if len(v) == 0 {
			Xc = NewGraph(nil)
			comps = append(comps, Xc)
		} else {
			Xc = compOf(v[0])
		}
		Xc.Verts = append(Xc.Verts, append([]int{}, v...))
	}
	for _, c := range X.Cross {
		Xc := compOf(c[0])
		Xc.Cross = append(Xc.Cross, c)
	}
	return comps
}

// NumComponents returns the number of connected components of X.
func (X *Graph) NumComponents() int {
	comps := X.Components()
	n := len(comps)
	for _, Xc := range comps {
		Xc.Reclaim()
	}
	return n
}

// NoloopEdges returns the labels of edges joining two distinct vertices, in vertex scan order.
func (X *Graph) NoloopEdges() []int {
	first := make(map[int]int)
	var edges []int
	for vi, v := range X.Verts {
		for _, e := range v {
			if fv, seen := first[e]; !seen {
				first[e] = vi
			} else if fv != vi {
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// LoopAt returns a vertex of degree greater than 3 holding a loop edge, along with the position of that loop.
func (X *Graph) LoopAt() (vi, pos int, found bool) {
	for vi, v := range X.Verts {
		if len(v) <= 3 {
			continue
		}
		for pos, e := range v {
			if indexOf(v[pos+1:], e) >= 0 {
				return vi, pos, true
			}
		}
	}
	return -1, -1, false
}
