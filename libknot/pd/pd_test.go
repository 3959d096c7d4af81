package pd_test

import (
	"strings"
	"testing"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

var gT *testing.T

const (
	trefoil   = "X[1,4,2,5];X[3,6,4,1];X[5,2,6,3]"
	figure8   = "X[4,2,5,1];X[8,6,1,5];X[6,3,7,4];X[2,7,3,8]"
	unlink2R2 = "X[2,4,1,3];X[1,4,2,3]"
)

func checkCode(X *pd.Graph, expect string) {
	if got := X.PDCode(); got != expect {
		gT.Fatalf("expected %q, got %q", expect, got)
	}
}

func TestParse(t *testing.T) {
	gT = t

	X := pd.MustParse("V[3,2,1];V[1,2,3]")
	checkCode(X, "V[1,2,3];V[1,3,2]")

	Y := pd.MustParse(" V[2,3,1] ; V[2,1,3] ")
	checkCode(Y, X.PDCode())

	checkCode(pd.MustParse(""), "")
	checkCode(pd.MustParse("V[]"), "V[]")
	checkCode(pd.MustParse(trefoil+";"), "X[1,4,2,5];X[3,6,4,1];X[5,2,6,3]")
	checkCode(pd.MustParse("X[5,2,6,3];X[1,4,2,5];X[3,6,4,1]"), "X[1,4,2,5];X[3,6,4,1];X[5,2,6,3]")

	for _, tc := range []struct {
		code string
		err  error
	}{
		{"V[1,2,3", goknot.ErrBadPDCode},
		{"Q[1,1]", goknot.ErrBadPDCode},
		{"V[1,1];;", goknot.ErrBadPDCode},
		{"X[1,2,3];V[1,2,3]", goknot.ErrBadCrossing},
		{"V[1,2]", goknot.ErrBadLabel},
		{"V[1,1,1]", goknot.ErrBadLabel},
	} {
		if _, err := pd.Parse(tc.code); !errors.Is(err, tc.err) {
			t.Fatalf("%q: expected %v, got %v", tc.code, tc.err, err)
		}
	}
}

func TestEditsLeaveSourceIntact(t *testing.T) {
	gT = t

	X := pd.MustParse("V[1,2,3];V[3,4,5];X[1,2,4,5]")
	code := X.PDCode()

	for _, Y := range []*pd.Graph{
		X.InvertCrossing(0),
		X.SmoothCrossing(0, 1),
		X.SmoothCrossing(0, -1),
		X.SmoothCrossing(0, 0),
		X.ContractEdge(3),
		X.RemoveEdge(3),
		X.Mirror(),
		X.Clone(),
	} {
		if err := Y.Validate(); err != nil {
			t.Fatalf("%v: %v", Y, err)
		}
		Y.Reclaim()
	}
	checkCode(X, code)

	Z := X.Clone()
	Z.Simplify()
	checkCode(X, code)
}

func TestSmoothing(t *testing.T) {
	gT = t

	X := pd.MustParse("X[1,1,2,2]")
	checkCode(X.SmoothCrossing(0, 1), "V[1,1];V[2,2]")
	checkCode(X.SmoothCrossing(0, -1), "V[1,1]")
	checkCode(X.SmoothCrossing(0, 0), "V[1,1,2,2]")
	checkCode(X.InvertCrossing(0), "X[1,2,2,1]")

	T := pd.MustParse(trefoil)
	checkCode(T.SmoothCrossing(0, 1), "X[2,2,6,3];X[3,6,1,1]")
	checkCode(T.SmoothCrossing(0, 0), "V[1,4,2,5];X[3,6,4,1];X[5,2,6,3]")
}

func TestEdgeEdits(t *testing.T) {
	gT = t

	X := pd.MustParse("V[1,2,3];V[3,2,1]")
	if diff := cmp.Diff([]int{3, 2, 1}, X.NoloopEdges()); diff != "" {
		t.Fatalf("NoloopEdges() mismatch (-want +got):\n%s", diff)
	}
	checkCode(X.ContractEdge(3), "V[1,1,2,2]")
	checkCode(X.RemoveEdge(3), "V[1,2];V[1,2]")

	B := pd.MustParse("V[1,1,2,2]")
	vi, pos, found := B.LoopAt()
	if !found || vi != 0 || pos != 0 {
		t.Fatalf("LoopAt() = %d %d %v", vi, pos, found)
	}
	checkCode(B.RemoveLoop(vi, pos), "V[2,2]")

	if _, _, found := pd.MustParse("V[1,1,2];V[2,3,3]").LoopAt(); found {
		t.Fatal("3-valent loops are not removable")
	}
}

func TestComponents(t *testing.T) {
	gT = t

	X := pd.MustParse("V[1,1];V[];X[2,4,3,5];V[2,3,6];V[4,6,5];V[7,7]")
	comps := X.Components()
	var codes []string
	for _, Xc := range comps {
		codes = append(codes, Xc.PDCode())
		Xc.Reclaim()
	}
	expect := []string{
		"V[1,1]",
		"V[]",
		"V[2,3,6];V[4,6,5];X[2,4,3,5]",
		"V[7,7]",
	}
	if diff := cmp.Diff(expect, codes); diff != "" {
		t.Fatalf("Components() mismatch (-want +got):\n%s", diff)
	}
	if n := X.NumComponents(); n != 4 {
		t.Fatalf("expected 4 components, got %d", n)
	}
	if n := pd.MustParse(trefoil).NumComponents(); n != 1 {
		t.Fatalf("expected 1 component, got %d", n)
	}
}

func TestSimplify(t *testing.T) {
	gT = t

	for _, tc := range []struct {
		code   string
		expect string
		n      int
	}{
		{"X[1,1,2,2]", "V[2,2]", 2},
		{"X[1,2,2,1]", "V[2,2]", -2},
		{"X[1,2,3,4];V[1,2];V[3,4]", "V[1,1]", 2},
		{unlink2R2, "V[1,1];V[4,4]", 0},
		{"V[2,1,3];V[4,3,5];X[1,2,4,5]", "V[3,4,5];V[3,5,4]", 1},
		{"V[1,2];V[2,3];V[3,1]", "V[1,1]", 0},
		{"V[1,2,3];V[3,4];V[4,2,1]", "V[1,2,3];V[1,3,2]", 0},
		{trefoil, trefoil, 0},
	} {
		X := pd.MustParse(tc.code)
		n := X.Simplify()
		if got := X.PDCode(); got != tc.expect || n != tc.n {
			t.Fatalf("%q: expected %q (n=%d), got %q (n=%d)", tc.code, tc.expect, tc.n, got, n)
		}
		X.Reclaim()
	}
}

func TestOrientation(t *testing.T) {
	gT = t

	T := pd.MustParse(trefoil)
	orient, err := T.Orient()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([][]int{{1, 2, 3, 4, 5, 6}}, orient.Strands); diff != "" {
		t.Fatalf("Strands mismatch (-want +got):\n%s", diff)
	}
	if w, _ := T.Writhe(); w != -3 {
		t.Fatalf("expected writhe -3, got %d", w)
	}

	M := T.Mirror()
	if w, _ := M.Writhe(); w != 3 {
		t.Fatalf("expected mirror writhe 3, got %d", w)
	}
	if orient, err := M.Orient(); err != nil || len(orient.Strands) != 1 {
		t.Fatalf("mirror should stay a knot: %v", err)
	}

	if w, _ := pd.MustParse(figure8).Writhe(); w != 0 {
		t.Fatalf("expected figure-eight writhe 0, got %d", w)
	}

	U := pd.MustParse(unlink2R2)
	signs, err := U.CrossingSigns()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{1, -1}, signs); diff != "" {
		t.Fatalf("CrossingSigns() mismatch (-want +got):\n%s", diff)
	}
	orient, _ = U.Orient()
	if len(orient.Strands) != 2 {
		t.Fatalf("expected 2 strands, got %v", orient.Strands)
	}

	S := T.SwitchCrossing(0, -1)
	if signs, err := S.CrossingSigns(); err != nil || signs[0] != 1 {
		t.Fatalf("switched crossing should be positive: %v %v", signs, err)
	}

	if _, err := pd.MustParse("V[1,2,3];V[3,2,1]").Orient(); !errors.Is(err, goknot.ErrNotALink) {
		t.Fatalf("expected ErrNotALink, got %v", err)
	}
	if _, err := pd.MustParse("X[1,3,2,4];X[1,4,2,3]").Orient(); !errors.Is(err, goknot.ErrBadOrientation) {
		t.Fatalf("expected ErrBadOrientation, got %v", err)
	}
}

func TestWriteDOT(t *testing.T) {
	gT = t

	buf := strings.Builder{}
	if err := pd.MustParse("V[1,2,3];X[1,4,2,5];V[3,4,5]").WriteDOT(&buf); err != nil {
		t.Fatal(err)
	}
	dot := buf.String()
	for _, want := range []string{`"v0" -- "x0"`, `label="X[1 4 2 5]"`, `shape=circle`} {
		if !strings.Contains(dot, want) {
			t.Fatalf("DOT output missing %q:\n%s", want, dot)
		}
	}
}
