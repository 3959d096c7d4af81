package libknot

import (
	"context"
	"math/rand"
	"time"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot/catalog"
	"github.com/2x3systems/goknot/libknot/chain"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/2x3systems/goknot/libknot/poly"
	"github.com/2x3systems/goknot/libknot/reduce"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// invariantFunc computes one invariant of a diagram without modifying it.
type invariantFunc func(X *pd.Graph, r *runner) (poly.Poly, error)

var invariants = [...]invariantFunc{
	goknot.Alexander:       linkInvariant(reduce.Alexander),
	goknot.Jones:           linkInvariant(reduce.Jones),
	goknot.Homfly:          linkInvariant(reduce.Homfly),
	goknot.Yamada:          yamada,
	goknot.KauffmanBracket: bracket,
	goknot.Conway:          linkInvariant(reduce.Conway),
	goknot.Writhe:          writhe,
}

// unknotValues is the value of a single unknotted loop for each invariant.
var unknotValues = [...]poly.Poly{
	goknot.Alexander:       poly.One,
	goknot.Jones:           poly.One,
	goknot.Homfly:          poly.One,
	goknot.Yamada:          poly.MustParse("x + 1 + x^-1"),
	goknot.KauffmanBracket: poly.One,
	goknot.Conway:          poly.One,
	goknot.Writhe:          poly.Poly{},
}

func invariantFor(kind goknot.Kind) (invariantFunc, error) {
	if kind <= goknot.Kind_nil || int(kind) >= len(invariants) || invariants[kind] == nil {
		return nil, errors.Wrapf(goknot.ErrUnknownInvariant, "%v", kind)
	}
	return invariants[kind], nil
}

// linkInvariant runs a Reidemeister invariant on a simplified copy of X, so the crossing cutoff applies to the
// simplified diagram.
func linkInvariant(calc func(X *pd.Graph, maxCrossings int) (poly.Poly, error)) invariantFunc {
	return func(X *pd.Graph, r *runner) (poly.Poly, error) {
		Xs := pd.NewGraph(X)
		defer Xs.Reclaim()
		Xs.Simplify()
		return calc(Xs, r.opts.MaxCross)
	}
}

func yamada(X *pd.Graph, r *runner) (poly.Poly, error) {
	value, err := reduce.Yamada(X, reduce.YamadaOpts{
		MaxCrossings: r.opts.MaxCross,
		Memo:         r.memo,
	})
	if err != nil {
		return poly.Poly{}, err
	}
	return NormalizeYamada(value), nil
}

// The bracket changes under R1, so it is taken of the diagram as given.
func bracket(X *pd.Graph, r *runner) (poly.Poly, error) {
	return reduce.Bracket(X, r.opts.MaxCross)
}

// The writhe also changes under R1.
func writhe(X *pd.Graph, r *runner) (poly.Poly, error) {
	return reduce.Writhe(X, r.opts.MaxCross)
}

// NormalizeYamada multiplies a Yamada polynomial by the power of -x that centers its exponent span on 0
// (or on 1/2 for an odd span), removing the ambiguity left by vertex moves.
func NormalizeYamada(p poly.Poly) poly.Poly {
	if p.IsZero() {
		return p
	}
	x := goknot.Yamada.Variable()
	lo, hi := p.Span(x)
	sum := int((lo + hi) / poly.ExpOne)
	k := sum / 2
	if sum < 0 && sum%2 != 0 {
		k--
	}
	return p.MulUnit(x, -k)
}

// runner holds everything one CalculateInvariant call shares between its reductions.
type runner struct {
	kind goknot.Kind
	opts goknot.Opts
	calc invariantFunc
	memo reduce.MemoStore
	cat  goknot.Catalog
}

// value returns the invariant of X, consulting the catalog first if there is one.
func (r *runner) value(X *pd.Graph) (poly.Poly, error) {
	var code string
	if r.cat != nil {
		code = X.PDCode()
		if text, found := r.cat.Lookup(r.kind, code); found {
			p, err := poly.Parse(text)
			if err == nil {
				klog.V(2).Infof("catalog hit %v %q", r.kind, code)
				return p, nil
			}
			klog.Warningf("catalog value %q for %q: %v", text, code, err)
		}
	}

	p, err := r.calc(X, r)
	if err != nil {
		return poly.Poly{}, err
	}
	if r.cat != nil {
		if err := r.cat.Store(r.kind, code, p.String()); err != nil {
			klog.Warningf("catalog store %v %q: %v", r.kind, code, err)
		}
	}
	return p, nil
}

// format renders a value the way opts asks for.
func (r *runner) format(p poly.Poly) string {
	if r.opts.Translate && r.kind.SupportsTranslate() {
		return Translate(r.kind, p)
	}
	if r.opts.PolyReduce {
		return p.ShortString()
	}
	return p.String()
}

// unknot is the formatted value that marks a trivial sub-chain.
func (r *runner) unknot() string {
	return r.format(unknotValues[r.kind])
}

// tooMany converts a crossing cutoff error into its Result.
func tooMany(err error) (goknot.Result, bool) {
	var tooManyErr *reduce.TooManyCrossingsError
	if errors.As(err, &tooManyErr) {
		return goknot.Result{
			Kind:      goknot.ResultTooManyCrossings,
			Crossings: tooManyErr.Crossings,
			MaxCross:  tooManyErr.Max,
		}, true
	}
	return goknot.Result{}, false
}

// CalculateInvariant computes the given invariant of a PD code or of a 3D chain.
//
// Input problems (a malformed code or curve, an unknown invariant or option) are returned as errors before any
// reduction work.  A diagram with too many crossings is a ResultTooManyCrossings, not an error.
func CalculateInvariant(ctx context.Context, in goknot.Input, kind goknot.Kind, opts goknot.Opts) (goknot.Result, error) {
	calc, err := invariantFor(kind)
	if err != nil {
		return goknot.Result{}, err
	}
	opts = opts.Normalize()
	if _, err := goknot.ParseReduceMethod(string(opts.ReduceMethod)); err != nil {
		return goknot.Result{}, err
	}
	if opts.Closure < goknot.Closed || opts.Closure > goknot.Rays {
		return goknot.Result{}, errors.Wrapf(goknot.ErrUnknownClosure, "%v", opts.Closure)
	}
	if opts.Matrix && !kind.SupportsMatrix() {
		return goknot.Result{}, errors.Wrapf(goknot.ErrNoMatrix, "%v", kind)
	}

	r := &runner{
		kind: kind,
		opts: opts,
		calc: calc,
	}

	var X *pd.Graph
	var ch *chain.Chain
	var arcs []*chain.Chain
	switch {
	case len(in.PDCode) > 0:
		if opts.Matrix {
			return goknot.Result{}, errors.Wrap(goknot.ErrNoMatrix, "matrix mode needs chain coordinates")
		}
		if X, err = pd.Parse(in.PDCode); err != nil {
			return goknot.Result{}, err
		}
		defer X.Reclaim()
	case len(in.Arcs) > 0:
		for _, points := range in.Arcs {
			arc := chain.FromPoints(points)
			if arc.Len() < 3 {
				return goknot.Result{}, errors.Wrapf(goknot.ErrCurveTooShort, "arc of %d points", arc.Len())
			}
			arcs = append(arcs, arc)
		}
		if opts.Matrix {
			if len(arcs) != 1 {
				return goknot.Result{}, errors.Wrapf(goknot.ErrBadCurve, "matrix mode needs a single chain (got %d)", len(arcs))
			}
			ch = arcs[0]
		}
	default:
		return goknot.Result{}, goknot.ErrNoInput
	}

	if len(opts.CatalogPath) > 0 {
		catCtx := goknot.NewCatalogContext()
		r.cat, err = catalog.OpenCatalog(catCtx, goknot.CatalogOpts{
			DbPathName: opts.CatalogPath,
		})
		if err != nil {
			catCtx.Close()
			return goknot.Result{}, err
		}
		defer func() {
			catCtx.Close()
			<-catCtx.Done()
		}()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var res goknot.Result
	switch {
	case X != nil:
		res, err = r.diagramResult(X)
	case ch != nil:
		res, err = r.matrixResult(ctx, ch, seed)
	default:
		r.memo = reduce.NewMemo()
		res, err = r.chainResult(ctx, arcs, rand.New(rand.NewSource(seed)))
	}
	if err != nil {
		return goknot.Result{}, err
	}

	if len(opts.OutputFile) > 0 {
		return writeResult(res, opts.OutputFile)
	}
	return res, nil
}

func (r *runner) diagramResult(X *pd.Graph) (goknot.Result, error) {
	r.memo = reduce.NewMemo()
	p, err := r.value(X)
	if err != nil {
		if res, ok := tooMany(err); ok {
			return res, nil
		}
		return goknot.Result{}, err
	}
	return goknot.Result{
		Kind:  goknot.ResultValue,
		Value: r.format(p),
	}, nil
}

// chainResult closes, reduces and projects the arcs opts.Tries times, tallying the values.
// A diagram with too many crossings counts as a value of its own.
func (r *runner) chainResult(ctx context.Context, arcs []*chain.Chain, rnd *rand.Rand) (goknot.Result, error) {
	tally := goknot.NewTally()
	var lastTooMany goknot.Result

	for try := 0; try < r.opts.Tries; try++ {
		if err := ctx.Err(); err != nil {
			return goknot.Result{}, err
		}

		loops := make([]chain.Loop, len(arcs))
		for i, arc := range arcs {
			loop, err := chain.Close(arc, r.opts.Closure, r.opts.Direction, rnd)
			if err != nil {
				return goknot.Result{}, err
			}
			loops[i] = loop
		}
		loops, err := chain.Reduce(loops, r.opts.ReduceMethod)
		if err != nil {
			return goknot.Result{}, err
		}
		X, err := chain.Project(loops)
		if err != nil {
			return goknot.Result{}, err
		}
		p, err := r.value(X)
		X.Reclaim()

		if err != nil {
			res, ok := tooMany(err)
			if !ok {
				return goknot.Result{}, err
			}
			lastTooMany = res
			tally.Add(res.String())
			continue
		}
		tally.Add(r.format(p))
	}

	// Every try exceeded the cutoff
	if tally.Distinct() == 1 && lastTooMany.Kind == goknot.ResultTooManyCrossings && tally.Freq(lastTooMany.String()) == 1 {
		return lastTooMany, nil
	}
	return tally.Result(), nil
}
