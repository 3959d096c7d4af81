package goknot

// CellStream carries matrix cells from producers to consumers.
// Ownership of each Cell travels through the channel.
type CellStream struct {
	Outlet chan Cell
}

func NewCellStream() *CellStream {
	stream := &CellStream{
		Outlet: make(chan Cell, 1),
	}
	return stream
}

func (stream *CellStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *CellStream) PushCell(cell Cell) {
	stream.Outlet <- cell
}

// Select passes along only the cells for which keep() returns true.
func (stream *CellStream) Select(keep func(cell Cell) bool) *CellStream {
	next := NewCellStream()

	go func() {
		for cell := range stream.Outlet {
			if keep(cell) {
				next.Outlet <- cell
			}
		}
		next.Close()
	}()

	return next
}

// Collect drains the stream into a sorted Matrix.
func (stream *CellStream) Collect(beg, end int) Matrix {
	mat := Matrix{
		Beg: beg,
		End: end,
	}
	for cell := range stream.Outlet {
		mat.Cells = append(mat.Cells, cell)
	}
	mat.Sort()
	return mat
}
