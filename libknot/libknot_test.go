package libknot_test

import (
	"context"
	"math"
	"os"
	"path"
	"testing"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot"
	"github.com/2x3systems/goknot/libknot/catalog"
	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

var gT *testing.T

const (
	trefoil       = "X[1,4,2,5];X[3,6,4,1];X[5,2,6,3]"
	kinkedTrefoil = "X[1,4,2,5];X[3,6,4,1];X[5,2,7,3];X[7,8,8,6]"
	figure8       = "X[4,2,5,1];X[8,6,1,5];X[6,3,7,4];X[2,7,3,8]"
	theta         = "V[1,2,3];V[3,2,1]"
	tangledTheta  = "V[1,2,3];V[4,5,6];X[1,7,8,4];X[2,9,7,5];X[3,8,9,6]"
)

func trefoilPoints(n int) []goknot.Point {
	points := make([]goknot.Point, n)
	for i := range points {
		t := 2 * math.Pi * float64(i) / float64(n)
		points[i] = goknot.Point{
			ID: i + 1,
			X:  math.Sin(t) + 2*math.Sin(2*t),
			Y:  math.Cos(t) - 2*math.Cos(2*t),
			Z:  -math.Sin(3 * t),
		}
	}
	return points
}

func circlePoints(n int) []goknot.Point {
	points := make([]goknot.Point, n)
	for i := range points {
		t := 2 * math.Pi * float64(i) / float64(n)
		points[i] = goknot.Point{ID: i + 1, X: math.Cos(t), Y: math.Sin(t), Z: 0.1 * math.Sin(2*t)}
	}
	return points
}

func calc(in goknot.Input, kind goknot.Kind, opts goknot.Opts) goknot.Result {
	res, err := libknot.CalculateInvariant(context.Background(), in, kind, opts)
	if err != nil {
		gT.Fatalf("%v %q: %v", kind, in.PDCode, err)
	}
	return res
}

func expectValue(what string, res goknot.Result, expect string) {
	if res.Kind != goknot.ResultValue || res.Value != expect {
		gT.Fatalf("%s: expected %q, got %v", what, expect, res)
	}
}

func TestDiagramInvariants(t *testing.T) {
	gT = t

	full := goknot.Opts{}
	reduced := goknot.Opts{PolyReduce: true}
	named := goknot.Opts{Translate: true}

	for _, tc := range []struct {
		code   string
		kind   goknot.Kind
		opts   goknot.Opts
		expect string
	}{
		{trefoil, goknot.Alexander, full, "t^2-t+1"},
		{trefoil, goknot.Jones, full, "t^-1+t^-3-t^-4"},
		{trefoil, goknot.Homfly, full, "-l^4+l^2*m^2-2*l^2"},
		{trefoil, goknot.Yamada, full, "x^6-x^4-x^3-x^2+x^-1+x^-2+x^-3+x^-4+x^-5"},
		{trefoil, goknot.KauffmanBracket, full, "A^7-A^3-A^-5"},
		{trefoil, goknot.Conway, full, "z^2+1"},
		{trefoil, goknot.Writhe, full, "-3"},
		{figure8, goknot.Writhe, full, "0"},

		{trefoil, goknot.Alexander, reduced, "1 -1 1"},
		{trefoil, goknot.Jones, reduced, "[-4] -1 1 0 1"},
		{trefoil, goknot.Homfly, reduced, "-l^4+l^2*m^2-2*l^2"},
		{figure8, goknot.Conway, reduced, "1 0 -1"},

		{trefoil, goknot.Alexander, named, "3_1"},
		{trefoil, goknot.Jones, named, "3_1"},
		{trefoil, goknot.Homfly, named, "3_1"},
		{trefoil, goknot.Yamada, named, "3_1"},
		{trefoil, goknot.KauffmanBracket, named, "A^7-A^3-A^-5"},
		{figure8, goknot.Alexander, named, "4_1"},
		{figure8, goknot.Jones, named, "4_1"},
		{figure8, goknot.Homfly, named, "4_1"},
		{figure8, goknot.Yamada, named, "4_1"},
		{figure8, goknot.Conway, named, "4_1"},
		{trefoil, goknot.Conway, named, "3_1"},
		{trefoil, goknot.Writhe, named, "-3"},
		{"V[1,1]", goknot.Yamada, named, "0_1"},
		{"V[1,1]", goknot.Jones, named, "0_1"},
		{theta, goknot.Yamada, named, "t0_1"},

		// Link invariants are taken after simplification, the bracket is not
		{kinkedTrefoil, goknot.Jones, full, "t^-1+t^-3-t^-4"},
		{kinkedTrefoil, goknot.Alexander, full, "t^2-t+1"},
		{kinkedTrefoil, goknot.KauffmanBracket, full, "-A^4+1+A^-8"},

		// Yamada values are centered on x^0
		{tangledTheta, goknot.Yamada, full, "2*x^5+x^4+2*x^3+x^2+x+1-x^-3-x^-4"},
		{tangledTheta, goknot.Yamada, named, "Unknown polynomial value (2*x^5+x^4+2*x^3+x^2+x+1-x^-3-x^-4)"},
	} {
		res := calc(goknot.Input{PDCode: tc.code}, tc.kind, tc.opts)
		expectValue(tc.kind.String()+" "+tc.code, res, tc.expect)
	}
}

func TestTooManyCrossings(t *testing.T) {
	gT = t

	for _, kind := range goknot.AllKinds() {
		res := calc(goknot.Input{PDCode: figure8}, kind, goknot.Opts{MaxCross: 3})
		expect := goknot.Result{
			Kind:      goknot.ResultTooManyCrossings,
			Crossings: 4,
			MaxCross:  3,
		}
		if diff := cmp.Diff(expect, res); diff != "" {
			t.Fatalf("%v: unexpected result (-want +got):\n%s", kind, diff)
		}
		if res.String() != "Too many crossings (4 > 3)" {
			t.Fatalf("%v: unexpected text %q", kind, res.String())
		}
	}

	// The cutoff applies to the simplified diagram
	res := calc(goknot.Input{PDCode: kinkedTrefoil}, goknot.Jones, goknot.Opts{MaxCross: 3})
	expectValue("kinked trefoil", res, "t^-1+t^-3-t^-4")
}

func TestInputErrors(t *testing.T) {
	gT = t

	ctx := context.Background()
	for _, tc := range []struct {
		in   goknot.Input
		kind goknot.Kind
		opts goknot.Opts
		err  error
	}{
		{goknot.Input{PDCode: trefoil}, goknot.Kind_nil, goknot.Opts{}, goknot.ErrUnknownInvariant},
		{goknot.Input{PDCode: trefoil}, goknot.Kind(42), goknot.Opts{}, goknot.ErrUnknownInvariant},
		{goknot.Input{}, goknot.Jones, goknot.Opts{}, goknot.ErrNoInput},
		{goknot.Input{PDCode: "X[1,2,3]"}, goknot.Jones, goknot.Opts{}, goknot.ErrBadCrossing},
		{goknot.Input{PDCode: "Q[1,2]"}, goknot.Jones, goknot.Opts{}, goknot.ErrBadPDCode},
		{goknot.Input{PDCode: theta}, goknot.Jones, goknot.Opts{}, goknot.ErrNotALink},
		{goknot.Input{PDCode: trefoil}, goknot.Jones, goknot.Opts{Matrix: true}, goknot.ErrNoMatrix},
		{goknot.Input{PDCode: trefoil}, goknot.KauffmanBracket, goknot.Opts{Matrix: true}, goknot.ErrNoMatrix},
		{goknot.Input{Arcs: [][]goknot.Point{trefoilPoints(40)}}, goknot.Writhe, goknot.Opts{Matrix: true}, goknot.ErrNoMatrix},
		{goknot.Input{PDCode: trefoil}, goknot.Jones, goknot.Opts{ReduceMethod: "bogus"}, goknot.ErrUnknownReduce},
		{goknot.Input{PDCode: trefoil}, goknot.Jones, goknot.Opts{Closure: 9}, goknot.ErrUnknownClosure},
		{goknot.Input{Arcs: [][]goknot.Point{trefoilPoints(2)}}, goknot.Jones, goknot.Opts{}, goknot.ErrCurveTooShort},
		{goknot.Input{Arcs: [][]goknot.Point{trefoilPoints(20), circlePoints(20)}}, goknot.Jones, goknot.Opts{Matrix: true}, goknot.ErrBadCurve},
	} {
		_, err := libknot.CalculateInvariant(ctx, tc.in, tc.kind, tc.opts)
		if !errors.Is(err, tc.err) {
			t.Fatalf("%v %+v: expected %v, got %v", tc.kind, tc.in.PDCode, tc.err, err)
		}
	}
}

func TestChainInvariants(t *testing.T) {
	gT = t

	// Closed loops are deterministic, so tries are forced to 1 and the result is a value
	knot := goknot.Input{Arcs: [][]goknot.Point{trefoilPoints(40)}}
	opts := goknot.Opts{
		Closure: goknot.Closed,
		Tries:   50,
	}
	expectValue("trefoil", calc(knot, goknot.Alexander, opts), "t^2-t+1")

	opts.Translate = true
	expectValue("trefoil", calc(knot, goknot.Alexander, opts), "3_1")

	unknot := goknot.Input{Arcs: [][]goknot.Point{circlePoints(20)}}
	expectValue("circle", calc(unknot, goknot.Alexander, opts), "0_1")
	expectValue("circle", calc(unknot, goknot.Yamada, opts), "0_1")

	opts.ReduceMethod = goknot.ReduceNone
	expectValue("trefoil", calc(knot, goknot.Alexander, opts), "3_1")
}

func TestDistribution(t *testing.T) {
	gT = t

	in := goknot.Input{Arcs: [][]goknot.Point{trefoilPoints(40)[:30]}}
	opts := goknot.Opts{
		Closure: goknot.TwoPoints,
		Tries:   20,
		Seed:    7,
	}
	res := calc(in, goknot.Alexander, opts)

	switch res.Kind {
	case goknot.ResultValue:
	case goknot.ResultDistribution:
		total := 0.0
		for i, outcome := range res.Dist {
			total += outcome.Freq
			if i > 0 && outcome.Freq > res.Dist[i-1].Freq {
				t.Fatalf("distribution not sorted: %v", res)
			}
		}
		if math.Abs(total-1) > 1e-9 {
			t.Fatalf("frequencies add up to %v: %v", total, res)
		}
	default:
		t.Fatalf("unexpected result %v", res)
	}

	// The same seed draws the same closures
	again := calc(in, goknot.Alexander, opts)
	if diff := cmp.Diff(res, again); diff != "" {
		t.Fatalf("same seed, different result (-first +second):\n%s", diff)
	}
}

func TestMatrix(t *testing.T) {
	gT = t

	in := goknot.Input{Arcs: [][]goknot.Point{trefoilPoints(40)}}
	opts := goknot.Opts{
		Closure: goknot.Closed,
		Matrix:  true,
		Density: 5,
		End:     -1,
		Workers: 4,
	}
	res := calc(in, goknot.Alexander, opts)
	if res.Kind != goknot.ResultMatrix {
		t.Fatalf("expected a matrix, got %v", res)
	}
	mat := res.Matrix
	if mat.Beg != 0 || mat.End != 40 {
		t.Fatalf("unexpected bounds [%d, %d)", mat.Beg, mat.End)
	}

	whole, found := mat.Get(0, 40)
	if !found {
		t.Fatalf("whole chain missing from matrix:\n%v", res)
	}
	expectValue("whole chain", whole, "t^2-t+1")

	for i, cell := range mat.Cells {
		// Six sticks are needed for a knot
		if cell.K-cell.L < 6 {
			t.Fatalf("trivial cell [%d, %d) kept", cell.L, cell.K)
		}
		if cell.Result.Kind == goknot.ResultValue && cell.Result.Value == "1" {
			t.Fatalf("unknotted cell [%d, %d) kept", cell.L, cell.K)
		}
		if (cell.L-mat.Beg)%5 != 0 || (mat.End-cell.K)%5 != 0 {
			t.Fatalf("cell [%d, %d) off the density grid", cell.L, cell.K)
		}
		if i > 0 {
			prev := mat.Cells[i-1]
			if prev.L > cell.L || (prev.L == cell.L && prev.K >= cell.K) {
				t.Fatalf("cells out of order at %d", i)
			}
		}
	}

	// A window keeps every sub-chain inside it
	opts.Beg, opts.End = 5, 25
	res = calc(in, goknot.Alexander, opts)
	for _, cell := range res.Matrix.Cells {
		if cell.L < 5 || cell.K > 25 {
			t.Fatalf("cell [%d, %d) outside [5, 25)", cell.L, cell.K)
		}
	}
}

func TestOutputFile(t *testing.T) {
	gT = t

	dir, err := os.MkdirTemp("", "junk*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	pathname := path.Join(dir, "out", "trefoil.txt")
	res := calc(goknot.Input{PDCode: trefoil}, goknot.Jones, goknot.Opts{OutputFile: pathname})
	if res.Kind != goknot.ResultWritten || res.Path != pathname {
		t.Fatalf("unexpected result %v", res)
	}
	buf, err := os.ReadFile(pathname)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "t^-1+t^-3-t^-4\n" {
		t.Fatalf("unexpected file contents %q", buf)
	}
}

func TestCatalogCache(t *testing.T) {
	gT = t

	dir, err := os.MkdirTemp("", "junk*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	opts := goknot.Opts{CatalogPath: path.Join(dir, "catalog")}
	for i := 0; i < 2; i++ {
		expectValue("cached trefoil", calc(goknot.Input{PDCode: trefoil}, goknot.Jones, opts), "t^-1+t^-3-t^-4")
	}

	ctx := goknot.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, goknot.CatalogOpts{
		DbPathName: opts.CatalogPath,
		ReadOnly:   true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if n := cat.NumEntries(goknot.Jones); n != 1 {
		t.Fatalf("expected 1 jones entry, got %d", n)
	}
	if value, found := cat.Lookup(goknot.Jones, trefoil); !found || value != "t^-1+t^-3-t^-4" {
		t.Fatalf("unexpected catalog value %q (found=%v)", value, found)
	}
	cat.Close()
	ctx.Close()
	<-ctx.Done()
}

func TestTranslate(t *testing.T) {
	gT = t

	for _, tc := range []struct {
		kind   goknot.Kind
		value  string
		expect string
	}{
		{goknot.Alexander, "1", "0_1"},
		{goknot.Alexander, "-t^2+t-1", "3_1"},
		{goknot.Alexander, "2t^2-3t+2", "5_2"},
		{goknot.Jones, "t+t^3-t^4", "3_1"},
		{goknot.Homfly, "l^-2*m^2-2*l^-2-l^-4", "3_1"},
		{goknot.Yamada, "x^5+x^4+x^3+x^2+x-x^-2-x^-3-x^-4+x^-6", "3_1"},
		{goknot.Yamada, "x^2+x+2+x^-1+x^-2", "t0_1"},
		{goknot.Alexander, "t^3+1", "Unknown polynomial value (t^3+1)"},
	} {
		got := libknot.Translate(tc.kind, poly.MustParse(tc.value))
		if got != tc.expect {
			t.Fatalf("%v %q: expected %q, got %q", tc.kind, tc.value, tc.expect, got)
		}
	}
}

func TestNormalizeYamada(t *testing.T) {
	gT = t

	for _, tc := range []struct {
		value  string
		expect string
	}{
		{"x^3+x^2+x", "x+1+x^-1"},
		{"x^-1+x^-2+x^-3", "x+1+x^-1"},
		{"-x^4-x^3-x^2", "x+1+x^-1"},
		{"x^2+1", "-x-x^-1"},
		{"x^3+1", "-x^2-x^-1"},
		{"0", "0"},
	} {
		got := libknot.NormalizeYamada(poly.MustParse(tc.value))
		if got.String() != tc.expect {
			t.Fatalf("%q: expected %q, got %q", tc.value, tc.expect, got.String())
		}
	}
}
