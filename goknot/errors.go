package goknot

import "errors"

// Errors
var (
	ErrPolyParse          = errors.New("malformed polynomial")
	ErrSubstitution       = errors.New("substitution not representable as a Laurent polynomial")
	ErrBadPDCode          = errors.New("malformed PD code")
	ErrBadLabel           = errors.New("bad PD edge label")
	ErrBadCrossing        = errors.New("crossing must have exactly 4 edge labels")
	ErrBadCurve           = errors.New("malformed curve coordinates")
	ErrCurveTooShort      = errors.New("curve has too few points")
	ErrDegenerateCurve    = errors.New("degenerate curve projection")
	ErrTooManyCrossings   = errors.New("too many crossings")
	ErrNotALink           = errors.New("diagram has vertices of valence other than 2")
	ErrNotAKnot           = errors.New("diagram has more than one component")
	ErrBadOrientation     = errors.New("inconsistent crossing orientation")
	ErrMemoInconsistent   = errors.New("memo entry does not match its diagram")
	ErrUnknownInvariant   = errors.New("unknown invariant")
	ErrUnknownClosure     = errors.New("unknown closure method")
	ErrUnknownReduce      = errors.New("unknown chain reduction method")
	ErrNoMatrix           = errors.New("invariant does not support matrix mode")
	ErrNoInput            = errors.New("no PD code or curve given")
	ErrBadCatalogParam    = errors.New("bad catalog param")
	ErrCatalogReadOnly    = errors.New("catalog is in read-only mode")
	ErrIncompatibleFormat = errors.New("catalog version is incompatible")
)
