package pd

// The edits below never modify X: each returns a new pooled Graph that the caller owns.

// InvertCrossing returns X with crossing ci switched over/under by rotating its labels one position.
func (X *Graph) InvertCrossing(ci int) *Graph {
	Y := NewGraph(X)
	c := Y.Cross[ci]
	Y.Cross[ci] = [4]int{c[1], c[2], c[3], c[0]}
	return Y
}

// SwitchCrossing returns X with crossing ci switched over/under such that position 0 remains the incoming under edge.
// sign is the sign of the crossing in X.
func (X *Graph) SwitchCrossing(ci int, sign int) *Graph {
	Y := NewGraph(X)
	c := Y.Cross[ci]
	if sign > 0 {
		Y.Cross[ci] = [4]int{c[3], c[0], c[1], c[2]}
	} else {
		Y.Cross[ci] = [4]int{c[1], c[2], c[3], c[0]}
	}
	return Y
}

// SmoothCrossing returns X with crossing ci resolved:
//
//	+1 joins positions (0,1) and (2,3)
//	-1 joins positions (0,3) and (1,2)
//	 0 replaces the crossing with a 4-valent vertex
//
// A strand closed off by the smoothing becomes a free circle V[a,a].
func (X *Graph) SmoothCrossing(ci int, sign int) *Graph {
	Y := NewGraph(X)
	Y.smoothCrossing(ci, sign)
	return Y
}

func (X *Graph) smoothCrossing(ci int, sign int) {
	c := X.Cross[ci]
	X.removeCross(ci)

	switch {
	case sign > 0:
		X.joinEdges(c[:], [2]int{c[0], c[1]}, [2]int{c[2], c[3]})
	case sign < 0:
		X.joinEdges(c[:], [2]int{c[0], c[3]}, [2]int{c[1], c[2]})
	default:
		X.Verts = append(X.Verts, []int{c[0], c[1], c[2], c[3]})
	}
}

// joinEdges merges each pair of edge labels into one edge that keeps the smaller label.
// Any label among ends that no longer occurs after the merge closed off a free circle, which is added as V[a,a].
func (X *Graph) joinEdges(ends []int, pairs ...[2]int) {
	ls := newLabelSets()
	for _, p := range pairs {
		ls.union(p[0], p[1])
	}
	names := ls.minNames()
	X.relabel(names)

	var circles []int
	for _, e := range ends {
		if to, ok := names[e]; ok {
			e = to
		}
		if indexOf(circles, e) < 0 && !X.hasLabel(e) {
			circles = append(circles, e)
		}
	}
	for _, e := range circles {
		X.Verts = append(X.Verts, []int{e, e})
	}
}

// findEdge returns the two vertices holding edge e (vj = -1 if e is not on two distinct vertices).
func (X *Graph) findEdge(e int) (vi, pi, vj, pj int) {
	vi, vj = -1, -1
	for v, labels := range X.Verts {
		for p, label := range labels {
			if label != e {
				continue
			}
			if vi < 0 {
				vi, pi = v, p
			} else if v != vi {
				vj, pj = v, p
			}
		}
	}
	return
}

// ContractEdge returns X with edge e, which must join two distinct vertices, contracted so its end vertices merge.
func (X *Graph) ContractEdge(e int) *Graph {
	Y := NewGraph(X)
	vi, pi, vj, pj := Y.findEdge(e)
	if vj < 0 {
		return Y
	}

	v1, v2 := Y.Verts[vi], Y.Verts[vj]
	merged := make([]int, 0, len(v1)+len(v2)-2)
	merged = append(merged, v1[pi+1:]...)
	merged = append(merged, v1[:pi]...)
	merged = append(merged, v2[pj+1:]...)
	merged = append(merged, v2[:pj]...)

	Y.Verts[vi] = merged
	Y.removeVert(vj)
	return Y
}

// RemoveEdge returns X with edge e, which must join two distinct vertices, deleted.
func (X *Graph) RemoveEdge(e int) *Graph {
	Y := NewGraph(X)
	vi, pi, vj, pj := Y.findEdge(e)
	if vj < 0 {
		return Y
	}
	Y.Verts[vi] = append(Y.Verts[vi][:pi], Y.Verts[vi][pi+1:]...)
	Y.Verts[vj] = append(Y.Verts[vj][:pj], Y.Verts[vj][pj+1:]...)
	return Y
}

// RemoveLoop returns X with the loop edge at position pos of vertex vi deleted.
func (X *Graph) RemoveLoop(vi, pos int) *Graph {
	Y := NewGraph(X)
	v := Y.Verts[vi]
	e := v[pos]
	out := v[:0]
	for _, label := range v {
		if label != e {
			out = append(out, label)
		}
	}
	Y.Verts[vi] = out
	return Y
}
