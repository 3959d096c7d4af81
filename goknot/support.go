package goknot

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"
)

var kindNames = [...]string{
	Kind_nil:        "",
	Alexander:       "alexander",
	Jones:           "jones",
	Homfly:          "homfly",
	Yamada:          "yamada",
	KauffmanBracket: "kauffman_bracket",
	Conway:          "conway",
	Writhe:          "writhe",
}

func (kind Kind) String() string {
	if kind <= Kind_nil || int(kind) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(kind)) + ")"
	}
	return kindNames[kind]
}

// ParseKind maps an invariant name (case insensitive) to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, kindName := range kindNames {
		if i > 0 && kindName == name {
			return Kind(i), nil
		}
	}
	return Kind_nil, errors.Wrapf(ErrUnknownInvariant, "%q", name)
}

// AllKinds lists every supported invariant.
func AllKinds() []Kind {
	return []Kind{Alexander, Jones, Homfly, Yamada, KauffmanBracket, Conway, Writhe}
}

// SupportsMatrix reports if this invariant is well defined on sub-chains (i.e. is a knot type invariant).
func (kind Kind) SupportsMatrix() bool {
	switch kind {
	case Alexander, Jones, Homfly, Yamada, Conway:
		return true
	}
	return false
}

// SupportsTranslate reports if values of this invariant can be looked up by name.
func (kind Kind) SupportsTranslate() bool {
	return kind.SupportsMatrix()
}

// Variable returns the name of the main polynomial variable of this invariant.
func (kind Kind) Variable() string {
	switch kind {
	case Alexander, Jones:
		return "t"
	case Homfly:
		return "l"
	case Yamada:
		return "x"
	case KauffmanBracket:
		return "A"
	case Conway:
		return "z"
	}
	return ""
}

var closureNames = [...]string{
	Closed:     "closed",
	MassCenter: "mass_center",
	TwoPoints:  "two_points",
	OnePoint:   "one_point",
	Rays:       "rays",
}

func (c Closure) String() string {
	if c < 0 || int(c) >= len(closureNames) {
		return "Closure(" + strconv.Itoa(int(c)) + ")"
	}
	return closureNames[c]
}

// ParseClosure accepts either a closure name or its numeric code.
func ParseClosure(name string) (Closure, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, closureName := range closureNames {
		if closureName == name || strconv.Itoa(i) == name {
			return Closure(i), nil
		}
	}
	return Closed, errors.Wrapf(ErrUnknownClosure, "%q", name)
}

// Deterministic reports if closing a chain this way always gives the same loop.
func (c Closure) Deterministic() bool {
	return c == Closed || c == MassCenter
}

// ParseReduceMethod validates a chain reduction method name.
func ParseReduceMethod(name string) (ReduceMethod, error) {
	switch method := ReduceMethod(strings.ToLower(strings.TrimSpace(name))); method {
	case ReduceKMT, ReduceNone:
		return method, nil
	case "":
		return ReduceKMT, nil
	}
	return ReduceNone, errors.Wrapf(ErrUnknownReduce, "%q", name)
}

// Normalize returns a copy of opts with defaults filled in and tries forced to 1 for deterministic closures.
func (opts Opts) Normalize() Opts {
	if opts.MaxCross <= 0 {
		opts.MaxCross = DefaultMaxCrossings
	}
	if opts.Density <= 0 {
		opts.Density = 1
	}
	if opts.Tries <= 0 || opts.Closure.Deterministic() {
		opts.Tries = 1
	}
	if opts.ReduceMethod == "" {
		opts.ReduceMethod = ReduceKMT
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Beg < 0 {
		opts.Beg = 0
	}
	return opts
}

// Tally counts occurrences of values, kept in sorted order.
type Tally struct {
	counts *treemap.Map
	total  int
}

func NewTally() *Tally {
	return &Tally{
		counts: treemap.NewWithStringComparator(),
	}
}

func (tally *Tally) Add(value string) {
	count := 0
	if existing, found := tally.counts.Get(value); found {
		count = existing.(int)
	}
	tally.counts.Put(value, count+1)
	tally.total++
}

// Total is the number of values added.
func (tally *Tally) Total() int {
	return tally.total
}

// Distinct is the number of distinct values added.
func (tally *Tally) Distinct() int {
	return tally.counts.Size()
}

// Freq returns the fraction of added values equal to value.
func (tally *Tally) Freq(value string) float64 {
	if tally.total == 0 {
		return 0
	}
	count, found := tally.counts.Get(value)
	if !found {
		return 0
	}
	return float64(count.(int)) / float64(tally.total)
}

// Distribution returns each distinct value with its frequency, most frequent first.
func (tally *Tally) Distribution() Distribution {
	dist := make(Distribution, 0, tally.counts.Size())
	it := tally.counts.Iterator()
	for it.Next() {
		dist = append(dist, Outcome{
			Value: it.Key().(string),
			Freq:  float64(it.Value().(int)) / float64(tally.total),
		})
	}
	sort.SliceStable(dist, func(i, j int) bool {
		return dist[i].Freq > dist[j].Freq
	})
	return dist
}

// Result returns a scalar Result if only one distinct value was seen, otherwise a distribution.
func (tally *Tally) Result() Result {
	if tally.counts.Size() == 1 {
		key, _ := tally.counts.Min()
		return Result{
			Kind:  ResultValue,
			Value: key.(string),
		}
	}
	return Result{
		Kind: ResultDistribution,
		Dist: tally.Distribution(),
	}
}

func (dist Distribution) WriteAsString(out io.Writer, opts PrintOpts) {
	buf := strings.Builder{}
	buf.WriteByte('{')
	for i, outcome := range dist {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %s", outcome.Value, strconv.FormatFloat(outcome.Freq, 'f', -1, 64))
	}
	buf.WriteByte('}')
	io.WriteString(out, buf.String())
}

// Find returns the frequency of the given value (0 if absent).
func (dist Distribution) Find(value string) float64 {
	for _, outcome := range dist {
		if outcome.Value == value {
			return outcome.Freq
		}
	}
	return 0
}

func (res Result) WriteAsString(out io.Writer, opts PrintOpts) {
	if len(opts.Label) > 0 {
		io.WriteString(out, opts.Label)
		io.WriteString(out, ": ")
	}
	switch res.Kind {
	case ResultValue:
		io.WriteString(out, res.Value)
	case ResultDistribution:
		res.Dist.WriteAsString(out, opts)
	case ResultTooManyCrossings:
		fmt.Fprintf(out, "Too many crossings (%d > %d)", res.Crossings, res.MaxCross)
	case ResultWritten:
		fmt.Fprintf(out, "written to %s", res.Path)
	case ResultMatrix:
		cellOpts := opts
		cellOpts.Label = ""
		for i, cell := range res.Matrix.Cells {
			if i > 0 {
				io.WriteString(out, "\n")
			}
			fmt.Fprintf(out, "%d %d ", cell.L, cell.K)
			cell.Result.WriteAsString(out, cellOpts)
		}
	}
}

func (res Result) String() string {
	buf := strings.Builder{}
	res.WriteAsString(&buf, DefaultPrintOpts)
	return buf.String()
}

// Get returns the cell for sub-chain [l, k), if present.
func (mat *Matrix) Get(l, k int) (Result, bool) {
	i := sort.Search(len(mat.Cells), func(i int) bool {
		c := mat.Cells[i]
		return c.L > l || (c.L == l && c.K >= k)
	})
	if i < len(mat.Cells) && mat.Cells[i].L == l && mat.Cells[i].K == k {
		return mat.Cells[i].Result, true
	}
	return Result{}, false
}

// Sort orders cells by L then K.
func (mat *Matrix) Sort() {
	sort.Slice(mat.Cells, func(i, j int) bool {
		ci, cj := mat.Cells[i], mat.Cells[j]
		if ci.L != cj.L {
			return ci.L < cj.L
		}
		return ci.K < cj.K
	})
}

func NewCatalogContext() CatalogContext {
	ctx := &catalogContext{
		openCatalogs: make(map[Catalog]struct{}),
		closing:      make(chan struct{}),
		closed:       make(chan struct{}),
	}
	ctx.openCount.Add(1)
	go func() {
		<-ctx.Closing()
		ctx.openCount.Done()
		ctx.openCount.Wait()
		close(ctx.closed)
	}()
	return ctx
}

type catalogContext struct {
	mu           sync.Mutex
	openCount    sync.WaitGroup
	openCatalogs map[Catalog]struct{}
	closing      chan struct{}
	closed       chan struct{}
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.openCount.Add(1)
	ctx.mu.Lock()
	ctx.openCatalogs[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	if _, exists := ctx.openCatalogs[cat]; exists {
		delete(ctx.openCatalogs, cat)
		ctx.openCount.Done()
	}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) Closing() <-chan struct{} {
	return ctx.closing
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

func (ctx *catalogContext) Close() {
	close(ctx.closing)
	ctx.mu.Lock()
	for cat := range ctx.openCatalogs {
		go cat.Close()
	}
	ctx.mu.Unlock()
}
