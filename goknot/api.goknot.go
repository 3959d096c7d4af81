package goknot

import (
	"io"
)

const (

	// DefaultMaxCrossings is the crossing count above which a diagram is not reduced.
	DefaultMaxCrossings = 15

	// MinSubchainLen is the smallest sub-chain length [l, k) evaluated in matrix mode.
	MinSubchainLen = 5

	// DefaultTries is the number of closures drawn for probabilistic closure methods.
	DefaultTries = 200
)

// Kind names a polynomial invariant.
type Kind int32

const (
	Kind_nil Kind = iota
	Alexander
	Jones
	Homfly
	Yamada
	KauffmanBracket
	Conway
	Writhe
)

// Closure names a method for closing an open chain into a loop.
//
// The numbering follows the historic closure codes (closed = 0 .. rays = 4).
type Closure int32

const (
	Closed Closure = iota
	MassCenter
	TwoPoints
	OnePoint
	Rays
)

// ReduceMethod names a chain simplification applied before projection.
type ReduceMethod string

const (
	ReduceKMT  ReduceMethod = "kmt"
	ReduceNone ReduceMethod = "none"
)

// Point is one atom of a 3D chain.
type Point struct {
	ID      int
	X, Y, Z float64
}

// Input is either a PD code or 3D chain coordinates (one or more arcs).
type Input struct {
	PDCode string    // extended PD code, e.g. "V[1,2,3];V[3,2,1]"
	Arcs   [][]Point // chain coordinates; used when PDCode is empty
}

// Opts specifies how an invariant is computed and reported.
type Opts struct {
	Closure      Closure      // how open chains are closed
	Tries        int          // closures drawn per value; forced to 1 for deterministic closures
	Direction    []float64    // fixed direction for Rays and OnePoint (nil draws one at random)
	ReduceMethod ReduceMethod // chain reduction applied after closing
	Translate    bool         // if set, known values are reported by name
	PolyReduce   bool         // if set, single-variable polynomials print as coefficient lists
	MaxCross     int          // crossing cutoff (0 denotes DefaultMaxCrossings)
	Matrix       bool         // if set, computes the sub-chain fingerprint matrix
	Density      int          // matrix step between consecutive sub-chain ends (0 denotes 1)
	Level        float64      // a sub-chain is trivial if its unknot frequency is >= 1 - Level
	Beg          int          // first chain index used in matrix mode
	End          int          // last chain index used in matrix mode (-1 denotes chain end)
	OutputFile   string       // if set, the result text is written here and ResultWritten is returned
	Workers      int          // matrix mode workers (0 denotes runtime.NumCPU())
	Seed         int64        // random seed for probabilistic closures (0 denotes time based)
	CatalogPath  string       // if set, results are cached in a persistent catalog at this path
}

// DefaultOpts mirrors the historic calculate_invariant() defaults.
var DefaultOpts = Opts{
	Closure:      TwoPoints,
	Tries:        DefaultTries,
	ReduceMethod: ReduceKMT,
	PolyReduce:   true,
	MaxCross:     DefaultMaxCrossings,
	Density:      1,
	End:          -1,
}

// ResultKind says which field of a Result carries the outcome.
type ResultKind int32

const (
	ResultValue            ResultKind = iota // Value is a polynomial or a name
	ResultDistribution                       // Dist holds the frequency of each distinct value
	ResultMatrix                             // Matrix holds the non-trivial sub-chain results
	ResultTooManyCrossings                   // Crossings exceeded the crossing cutoff
	ResultWritten                            // the result text was written to Path
)

// Result is the outcome of an invariant query.
type Result struct {
	Kind      ResultKind
	Value     string
	Dist      Distribution
	Matrix    Matrix
	Crossings int    // crossing count that exceeded the cutoff
	MaxCross  int    // cutoff in effect
	Path      string // file written for ResultWritten
}

// Distribution is a set of distinct values with their frequencies, sorted by descending frequency.
type Distribution []Outcome

type Outcome struct {
	Value string
	Freq  float64
}

// Matrix is a sparse table of sub-chain results keyed by (L, K), sorted by L then K.
type Matrix struct {
	Beg   int
	End   int
	Cells []Cell
}

// Cell is the result for sub-chain [L, K).
type Cell struct {
	L, K   int
	Result Result
}

// PrintOpts specifies what is printed when printing a Result
type PrintOpts struct {
	Label string // Prefix label
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{}

// Printer is implemented by anything that can write itself as text.
type Printer interface {
	WriteAsString(out io.Writer, opts PrintOpts)
}

// CatalogOpts specifies params for opening a result Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
}

// Catalog caches invariant values keyed by invariant kind and canonical PD code.
type Catalog interface {

	// Lookup returns the stored value for the given diagram, if present.
	Lookup(kind Kind, pdCode string) (string, bool)

	// Store records a value for the given diagram.
	Store(kind Kind, pdCode string, value string) error

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumEntries returns the number of values stored for the given invariant kind.
	NumEntries(kind Kind) int64

	Close() error
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs to be closed then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}
