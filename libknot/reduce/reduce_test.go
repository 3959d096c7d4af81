package reduce_test

import (
	"sync"
	"testing"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/2x3systems/goknot/libknot/reduce"
	"github.com/pkg/errors"
)

var gT *testing.T

const (
	trefoil      = "X[1,4,2,5];X[3,6,4,1];X[5,2,6,3]"
	figure8      = "X[4,2,5,1];X[8,6,1,5];X[6,3,7,4];X[2,7,3,8]"
	unlink2R2    = "X[2,4,1,3];X[1,4,2,3]"
	twistedTheta = "V[2,1,3];V[4,3,5];X[1,2,4,5]"
	tangledTheta = "V[1,2,3];V[4,5,6];X[1,7,8,4];X[2,9,7,5];X[3,8,9,6]"
)

func yamada(code string, opts reduce.YamadaOpts) poly.Poly {
	X := pd.MustParse(code)
	defer X.Reclaim()
	value, err := reduce.Yamada(X, opts)
	if err != nil {
		gT.Fatalf("%q: %v", code, err)
	}
	return value
}

func checkValue(what string, got poly.Poly, expect string) {
	if got.String() != expect {
		gT.Fatalf("%s: expected %q, got %q", what, expect, got.String())
	}
}

func TestYamadaValues(t *testing.T) {
	gT = t

	for _, tc := range []struct {
		code   string
		expect string
	}{
		{"", "1"},
		{"V[]", "-1"},
		{"V[1,1]", "x+1+x^-1"},
		{"V[1,2];V[2,1]", "x+1+x^-1"},
		{"V[1,1];V[2,2]", "x^2+2*x+3+2*x^-1+x^-2"},
		{"V[1,1,2,2]", "-x^2-2*x-3-2*x^-1-x^-2"},
		{"V[1,2,3];V[3,2,1]", "-x^2-x-2-x^-1-x^-2"},
		{"V[1,1,2];V[2,3,3]", "0"},
		{"X[1,1,2,2]", "x^3+x^2+x"},
		{"X[1,2,2,1]", "x^-1+x^-2+x^-3"},
		{unlink2R2, "x^2+2*x+3+2*x^-1+x^-2"},
		{twistedTheta, "x^3+x^2+2*x+1+x^-1"},
		{trefoil, "x^6-x^4-x^3-x^2+x^-1+x^-2+x^-3+x^-4+x^-5"},
		{figure8, "x^7-x^5+x+1+x^-1-x^-5+x^-7"},
		{tangledTheta, "2*x^3+x^2+2*x+1+x^-1+x^-2-x^-5-x^-6"},
	} {
		checkValue(tc.code, yamada(tc.code, reduce.DefaultYamadaOpts), tc.expect)

		// The memo is never observable in the result
		checkValue(tc.code, yamada(tc.code, reduce.YamadaOpts{Memo: reduce.NewMemo(), CheckMemo: true}), tc.expect)
	}
}

func TestYamadaDeterminism(t *testing.T) {
	gT = t

	memo := reduce.NewMemo()
	opts := reduce.YamadaOpts{Memo: memo}
	first := yamada(tangledTheta, opts)
	if memo.Len() == 0 {
		t.Fatal("expected memo entries")
	}
	for i := 0; i < 3; i++ {
		checkValue("rerun", yamada(tangledTheta, opts), first.String())
		checkValue("rerun without memo", yamada(tangledTheta, reduce.DefaultYamadaOpts), first.String())
	}

	// Element order and vertex rotation do not matter
	checkValue("reordered", yamada("X[3,8,9,6];V[6,4,5];X[2,9,7,5];V[2,3,1];X[1,7,8,4]", opts), first.String())
}

func TestYamadaSplitProduct(t *testing.T) {
	gT = t

	code := trefoil + ";V[11,12,13];V[13,12,11];V[21,21]"
	X := pd.MustParse(code)
	comps := X.Components()
	if len(comps) != 3 {
		t.Fatalf("expected 3 components, got %d", len(comps))
	}

	product := poly.One
	for _, Xc := range comps {
		value, err := reduce.Yamada(Xc, reduce.DefaultYamadaOpts)
		if err != nil {
			t.Fatal(err)
		}
		product = product.Mul(value)
		Xc.Reclaim()
	}
	checkValue("split", yamada(code, reduce.DefaultYamadaOpts), product.String())
}

// The values of a crossing, its inverse, and its smoothings satisfy
//
//	R(X) - R(X') = (x - x^-1) (R(S+) - R(S-))
//	R(X) = x R(S+) + x^-1 R(S-) + R(S0)
func TestYamadaCrossingRelations(t *testing.T) {
	gT = t

	opts := reduce.YamadaOpts{Memo: reduce.NewMemo()}
	eval := func(X *pd.Graph) poly.Poly {
		defer X.Reclaim()
		value, err := reduce.Yamada(X, opts)
		if err != nil {
			t.Fatal(err)
		}
		return value
	}

	for _, code := range []string{trefoil, figure8, twistedTheta, tangledTheta} {
		X := pd.MustParse(code)
		value := eval(X.Clone())
		inverted := eval(X.InvertCrossing(0))
		plus := eval(X.SmoothCrossing(0, 1))
		minus := eval(X.SmoothCrossing(0, -1))
		zero := eval(X.SmoothCrossing(0, 0))

		skein := poly.MustParse("x - x^-1").Mul(plus.Sub(minus))
		checkValue(code+" skein", value.Sub(inverted), skein.String())

		vertex := poly.Var("x").Mul(plus).Add(poly.MustParse("x^-1").Mul(minus)).Add(zero)
		checkValue(code+" vertex", value, vertex.String())
	}
}

// An amphichiral diagram has the same value as its mirror image, a chiral one has its value with x -> x^-1.
func TestYamadaMirror(t *testing.T) {
	gT = t

	for _, tc := range []struct {
		code        string
		amphichiral bool
	}{
		{trefoil, false},
		{figure8, true},
		{"V[1,1]", true},
	} {
		X := pd.MustParse(tc.code)
		value := yamada(tc.code, reduce.DefaultYamadaOpts)
		mirror, err := reduce.Yamada(X.Mirror(), reduce.DefaultYamadaOpts)
		if err != nil {
			t.Fatal(err)
		}
		flipped, err := value.Substitute("x", poly.Mono(1, "x", -1))
		if err != nil {
			t.Fatal(err)
		}
		checkValue(tc.code+" mirror", mirror, flipped.String())
		if tc.amphichiral {
			checkValue(tc.code+" amphichiral", flipped, value.String())
		}
	}
}

func TestYamadaTooManyCrossings(t *testing.T) {
	gT = t

	X := pd.MustParse(figure8)
	_, err := reduce.Yamada(X, reduce.YamadaOpts{MaxCrossings: 3})
	if !errors.Is(err, goknot.ErrTooManyCrossings) {
		t.Fatalf("expected ErrTooManyCrossings, got %v", err)
	}
	var tooMany *reduce.TooManyCrossingsError
	if !errors.As(err, &tooMany) || tooMany.Crossings != 4 || tooMany.Max != 3 {
		t.Fatalf("unexpected error %#v", err)
	}

	// The cutoff applies after simplification
	if _, err := reduce.Yamada(pd.MustParse("X[1,1,2,2]"), reduce.YamadaOpts{MaxCrossings: 0}); err != nil {
		t.Fatal(err)
	}
	if _, err := reduce.Yamada(pd.MustParse(unlink2R2), reduce.YamadaOpts{MaxCrossings: 1}); err != nil {
		t.Fatal(err)
	}
}

func TestSharedMemo(t *testing.T) {
	gT = t

	memo, err := reduce.NewSharedMemo()
	if err != nil {
		t.Fatal(err)
	}
	defer memo.Close()

	a, b := poly.MustParse("x+1"), poly.MustParse("x-1")
	if got := memo.Put("V[1,1]", a); !got.Equal(a) {
		t.Fatalf("expected %v, got %v", a, got)
	}
	if got := memo.Put("V[1,1]", b); !got.Equal(a) {
		t.Fatalf("first value should win, got %v", got)
	}
	if got, found := memo.Get("V[1,1]"); !found || !got.Equal(a) {
		t.Fatalf("Get() = %v %v", got, found)
	}
	if _, found := memo.Get("V[2,2]"); found {
		t.Fatal("unexpected hit")
	}

	// Concurrent reductions through a fresh memo agree with reducing without one
	shared, err := reduce.NewSharedMemo()
	if err != nil {
		t.Fatal(err)
	}
	defer shared.Close()

	for _, code := range []string{figure8, tangledTheta} {
		expect := yamada(code, reduce.DefaultYamadaOpts).String()
		results := make([]string, 8)
		wg := sync.WaitGroup{}
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				X := pd.MustParse(code)
				defer X.Reclaim()
				value, err := reduce.Yamada(X, reduce.YamadaOpts{Memo: shared, CheckMemo: true})
				if err == nil {
					results[i] = value.String()
				}
			}(i)
		}
		wg.Wait()
		for _, got := range results {
			if got != expect {
				t.Fatalf("%q: expected %q, got %q", code, expect, got)
			}
		}
	}
	if hits, _ := shared.Stats(); hits == 0 {
		t.Fatal("expected memo hits")
	}
}

func TestConwayFromAlexander(t *testing.T) {
	gT = t

	for _, tc := range []struct {
		alexander string
		expect    string
	}{
		{"1", "1"},
		{"t^2-t+1", "z^2+1"},
		{"t^2-3*t+1", "-z^2+1"},
		{"t^4-t^3+t^2-t+1", "z^4+3*z^2+1"},
		{"2*t^2-3*t+2", "2*z^2+1"},
		{"2*t^2-5*t+2", "-2*z^2+1"},
		{"t^-1-1+t", "z^2+1"},
	} {
		value, err := reduce.ConwayFromAlexander(poly.MustParse(tc.alexander))
		if err != nil {
			t.Fatal(err)
		}
		checkValue(tc.alexander, value, tc.expect)
	}

	if _, err := reduce.ConwayFromAlexander(poly.MustParse("t+1")); err == nil {
		t.Fatal("expected an error for an odd span")
	}
}

func TestLinkInvariants(t *testing.T) {
	gT = t

	T := pd.MustParse(trefoil)
	M := T.Mirror()
	F := pd.MustParse(figure8)
	U := pd.MustParse(unlink2R2)

	for _, tc := range []struct {
		name   string
		fn     func(X *pd.Graph, maxCrossings int) (poly.Poly, error)
		X      *pd.Graph
		expect string
	}{
		{"bracket", reduce.Bracket, T, "A^7-A^3-A^-5"},
		{"bracket", reduce.Bracket, M, "-A^5-A^-3+A^-7"},
		{"bracket", reduce.Bracket, U, "-A^2-A^-2"},
		{"bracket", reduce.Bracket, pd.MustParse("V[1,1]"), "1"},
		{"bracket", reduce.Bracket, pd.MustParse(""), "1"},
		{"jones", reduce.Jones, T, "t^-1+t^-3-t^-4"},
		{"jones", reduce.Jones, M, "-t^4+t^3+t"},
		{"jones", reduce.Jones, F, "t^2-t+1-t^-1+t^-2"},
		{"jones", reduce.Jones, U, "-t^0.5-t^-0.5"},
		{"homfly", reduce.Homfly, T, "-l^4+l^2*m^2-2*l^2"},
		{"homfly", reduce.Homfly, M, "l^-2*m^2-2*l^-2-l^-4"},
		{"homfly", reduce.Homfly, F, "-l^2+m^2-1-l^-2"},
		{"homfly", reduce.Homfly, U, "-l*m^-1-l^-1*m^-1"},
		{"homfly", reduce.Homfly, pd.MustParse("V[1,1]"), "1"},
		{"alexander", reduce.Alexander, T, "t^2-t+1"},
		{"alexander", reduce.Alexander, M, "t^2-t+1"},
		{"alexander", reduce.Alexander, F, "t^2-3*t+1"},
		{"alexander", reduce.Alexander, pd.MustParse("V[1,1]"), "1"},
		{"conway", reduce.Conway, T, "z^2+1"},
		{"conway", reduce.Conway, M, "z^2+1"},
		{"conway", reduce.Conway, F, "-z^2+1"},
		{"conway", reduce.Conway, pd.MustParse("V[1,1]"), "1"},
		{"writhe", reduce.Writhe, T, "-3"},
		{"writhe", reduce.Writhe, M, "3"},
		{"writhe", reduce.Writhe, F, "0"},
		{"writhe", reduce.Writhe, pd.MustParse("V[1,1]"), "0"},
	} {
		value, err := tc.fn(tc.X, 0)
		if err != nil {
			t.Fatalf("%s %v: %v", tc.name, tc.X, err)
		}
		checkValue(tc.name+" "+tc.X.PDCode(), value, tc.expect)
	}

	if _, err := reduce.Alexander(U, 0); !errors.Is(err, goknot.ErrNotAKnot) {
		t.Fatalf("expected ErrNotAKnot, got %v", err)
	}
	if _, err := reduce.Bracket(pd.MustParse("V[1,2,3];V[3,2,1]"), 0); !errors.Is(err, goknot.ErrNotALink) {
		t.Fatalf("expected ErrNotALink, got %v", err)
	}
	if _, err := reduce.Homfly(F, 3); !errors.Is(err, goknot.ErrTooManyCrossings) {
		t.Fatalf("expected ErrTooManyCrossings, got %v", err)
	}
	if _, err := reduce.Writhe(F, 3); !errors.Is(err, goknot.ErrTooManyCrossings) {
		t.Fatalf("expected ErrTooManyCrossings, got %v", err)
	}
	if _, err := reduce.Conway(U, 0); !errors.Is(err, goknot.ErrNotAKnot) {
		t.Fatalf("expected ErrNotAKnot, got %v", err)
	}

	// Jones from its bracket agrees with the Jones of the kink-free diagram
	K := pd.MustParse("X[1,4,2,5];X[3,6,4,1];X[5,2,7,3];X[7,8,8,6]")
	if value, err := reduce.Jones(K, 0); err != nil {
		t.Fatal(err)
	} else {
		checkValue("kinked trefoil", value, "t^-1+t^-3-t^-4")
	}
}
