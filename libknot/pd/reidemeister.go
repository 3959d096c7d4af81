package pd

import (
	uf "github.com/spakin/disjoint"
)

// at returns c[i] for any i, taken mod 4.
func at(c [4]int, i int) int {
	return c[i&3]
}

// kinkPower is the power of x picked up when removing a kink that joins positions i-1 and i.
func kinkPower(i int) int {
	if i&1 != 0 {
		return 2
	}
	return -2
}

// Simplify applies Reidemeister moves to X in place until the crossing count stops dropping:
//
//	R1   kinks, also a kink closed through a 2-valent vertex
//	R2   bigons where one strand passes over the other twice
//	R5   a crossing twisted against a 3-valent vertex
//
// and merges 2-valent vertices along the way.
// It returns n such that the Yamada value of X before the moves is (-1)^n * x^n times its value after.
func (X *Graph) Simplify() int {
	n := 0
	X.mergeDoubleVerts()
	for {
		before := len(X.Cross)
		n += X.applyR1()
		X.applyR2()
		X.mergeDoubleVerts()
		n += X.applyR1()
		n += X.applyR5()
		X.mergeDoubleVerts()
		if len(X.Cross) >= before {
			break
		}
	}
	return n
}

// applyR1 removes kinks until none are left.
func (X *Graph) applyR1() int {
	n := 0
	for {
		if dn, ok := X.reduceR1(); ok {
			n += dn
		} else if dn, ok := X.reduceR1v(); ok {
			n += dn
		} else {
			return n
		}
	}
}

func (X *Graph) reduceR1() (int, bool) {
	for ci, c := range X.Cross {
		for i := 0; i < 4; i++ {
			if at(c, i) != at(c, i-1) {
				continue
			}
			a, b := at(c, i-2), at(c, i-3)
			X.removeCross(ci)
			if a == b {
				X.Verts = append(X.Verts, []int{a, a})
			} else {
				X.relabel(map[int]int{a: b})
			}
			return kinkPower(i), true
		}
	}
	return 0, false
}

// reduceR1v removes a kink whose loop passes through a 2-valent vertex.
func (X *Graph) reduceR1v() (int, bool) {
	for ci, c := range X.Cross {
		for i := 0; i < 4; i++ {
			e0, e1 := at(c, i-1), at(c, i)
			if e0 == e1 {
				continue
			}
			vi := X.doubleVertWith(e0, e1)
			if vi < 0 {
				continue
			}
			a, b := at(c, i-2), at(c, i-3)
			X.removeCross(ci)
			X.removeVert(vi)
			X.Verts = append(X.Verts, []int{a, b})
			return kinkPower(i), true
		}
	}
	return 0, false
}

// doubleVertWith returns the 2-valent vertex joining edges a and b, or -1.
func (X *Graph) doubleVertWith(a, b int) int {
	for vi, v := range X.Verts {
		if len(v) == 2 && ((v[0] == a && v[1] == b) || (v[0] == b && v[1] == a)) {
			return vi
		}
	}
	return -1
}

// applyR2 removes bigons until none are left.
func (X *Graph) applyR2() {
	for X.reduceR2() {
	}
}

func (X *Graph) reduceR2() bool {
	for i1 := 0; i1 < len(X.Cross); i1++ {
		for i2 := i1 + 1; i2 < len(X.Cross); i2++ {
			c1, c2 := X.Cross[i1], X.Cross[i2]
			for i := 0; i < 4; i++ {
				for _, j := range [2]int{i, i + 2} {
					if at(c1, i) != at(c2, j) {
						continue
					}

					// The second shared edge must bound the same face.
					var p1, p2 int
					switch {
					case at(c1, i-1) == at(c2, j+1):
						p1, p2 = i-1, j+1
					case at(c1, i+1) == at(c2, j-1):
						p1, p2 = i+1, j-1
					default:
						continue
					}

					X.removeCross(i2)
					X.removeCross(i1)
					X.Verts = append(X.Verts,
						[]int{at(c1, i+2), at(c2, j+2)},
						[]int{at(c1, p1+2), at(c2, p2+2)},
					)
					return true
				}
			}
		}
	}
	return false
}

// applyR5 untwists crossings adjacent to a 3-valent vertex until none are left.
func (X *Graph) applyR5() int {
	n := 0
	for {
		dn, ok := X.reduceR5()
		if !ok {
			return n
		}
		n += dn
	}
}

func (X *Graph) reduceR5() (int, bool) {
	for ci, c := range X.Cross {
		for i := 0; i < 4; i++ {
			e0, e1 := at(c, i-1), at(c, i)
			if e0 == e1 {
				continue
			}
			for vi, v := range X.Verts {
				if len(v) != 3 {
					continue
				}
				k0, k1 := indexOf(v, e0), indexOf(v, e1)
				if k0 < 0 || k1 < 0 || v[(k1+1)%3] != e0 {
					continue
				}

				iu, j := i, i-1
				if iu&1 != 0 {
					iu, j = j, iu
				}
				vn := append([]int{}, v...)
				vn[indexOf(v, at(c, iu))] = at(c, j-2)
				vn[indexOf(v, at(c, j))] = at(c, iu-2)

				X.Verts[vi] = vn
				X.removeCross(ci)
				if i&1 != 0 {
					return 1, true
				}
				return -1, true
			}
		}
	}
	return 0, false
}

// mergeDoubleVerts removes 2-valent vertices, joining their two edges.
// A strand component (crossings seen as two separate strands) without any other kind of vertex keeps its first 2-valent vertex.
// Merged edges keep the smallest label.
func (X *Graph) mergeDoubleVerts() {
	strands := newLabelSets()
	for _, v := range X.Verts {
		strands.unionAll(v)
	}
	for _, c := range X.Cross {
		strands.union(c[0], c[2])
		strands.union(c[1], c[3])
	}

	const otherVerts = -1
	keep := make(map[*uf.Element]int)
	for vi, v := range X.Verts {
		if len(v) == 0 {
			continue
		}
		root := strands.elem(v[0]).Find()
		if len(v) != 2 {
			keep[root] = otherVerts
		} else if _, ok := keep[root]; !ok {
			keep[root] = vi
		}
	}

	merge := newLabelSets()
	verts := X.Verts[:0]
	for vi, v := range X.Verts {
		if len(v) == 2 && keep[strands.elem(v[0]).Find()] != vi {
			merge.union(v[0], v[1])
			continue
		}
		verts = append(verts, v)
	}
	X.Verts = verts
	X.relabel(merge.minNames())
}
