package pd

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"text/template"
)

const tmplDiagram = `graph PD {
	label={{printf "%q" .Title}};
	fontname="Arial";
	node [fontname="Verdana" margin="0.05,0.0"];
	{{- range .Nodes}}
	{{printf "%q" .ID}} [ shape={{.Shape}} label={{printf "%q" .Label}} ];
	{{- end}}
	{{- range .Edges}}
	{{printf "%q -- %q" .From .To}} [ label="{{.Label}}" ];
	{{- end}}
}
`

var sDiagramTmpl = template.Must(template.New("pd").Parse(tmplDiagram))

type dotNode struct {
	ID    string
	Shape string
	Label string
}

type dotEdge struct {
	From, To string
	Label    int
}

type dotDiagram struct {
	Title string
	Nodes []dotNode
	Edges []dotEdge
}

func endID(end End) string {
	if end.Cross {
		return fmt.Sprintf("x%d", end.Index)
	}
	return fmt.Sprintf("v%d", end.Index)
}

// WriteDOT writes X as a graphviz graph: crossings are boxes labeled with their PD entry, vertices are circles.
func (X *Graph) WriteDOT(w io.Writer) error {
	diagram := dotDiagram{
		Title: X.PDCode(),
	}
	buf := bytes.Buffer{}
	for vi, v := range X.Verts {
		diagram.Nodes = append(diagram.Nodes, dotNode{
			ID:    endID(End{Index: vi}),
			Shape: "circle",
			Label: fmt.Sprintf("V%v", v),
		})
	}
	for ci, c := range X.Cross {
		diagram.Nodes = append(diagram.Nodes, dotNode{
			ID:    endID(End{Cross: true, Index: ci}),
			Shape: "box",
			Label: fmt.Sprintf("X%v", c),
		})
	}

	ends := X.edgeEnds()
	labels := make([]int, 0, len(ends))
	for e := range ends {
		labels = append(labels, e)
	}
	sort.Ints(labels)
	for _, e := range labels {
		pair := ends[e]
		if len(pair) != 2 {
			continue
		}
		diagram.Edges = append(diagram.Edges, dotEdge{
			From:  endID(pair[0]),
			To:    endID(pair[1]),
			Label: e,
		})
	}

	if err := sDiagramTmpl.Execute(&buf, diagram); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
