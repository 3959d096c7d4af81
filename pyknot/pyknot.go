package pyknot

import (
	"context"
	"os"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot"
	"github.com/2x3systems/goknot/libknot/catalog"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/go-python/gpython/py"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyCatalogType   = py.NewType("Catalog", "goknot.Catalog")
	pyWorkspaceType = py.NewType("Workspace", "collects active session resources and catalogs")
)

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

// loadOpts reads the calculate_invariant() keyword args into opts.
func loadOpts(kwargs py.StringDict, opts *goknot.Opts) error {
	var (
		closure, reduceMethod string
		tries, maxCross       int64
		density, beg, end     int64
		workers, seed         int64
	)
	end = int64(opts.End)

	for _, attr := range []struct {
		name string
		dst  interface{}
	}{
		{"closure", &closure},
		{"tries", &tries},
		{"reduce_method", &reduceMethod},
		{"translate", &opts.Translate},
		{"poly_reduce", &opts.PolyReduce},
		{"max_cross", &maxCross},
		{"matrix", &opts.Matrix},
		{"density", &density},
		{"level", &opts.Level},
		{"beg", &beg},
		{"end", &end},
		{"output_file", &opts.OutputFile},
		{"workers", &workers},
		{"seed", &seed},
		{"catalog", &opts.CatalogPath},
	} {
		val, exists := kwargs[attr.name]
		if !exists {
			continue
		}
		if err := py.LoadTuple(py.Tuple{val}, []interface{}{attr.dst}); err != nil {
			return err
		}
	}

	if len(closure) > 0 {
		c, err := goknot.ParseClosure(closure)
		if err != nil {
			return py.ExceptionNewf(py.ValueError, "%v", err)
		}
		opts.Closure = c
	}
	if len(reduceMethod) > 0 {
		method, err := goknot.ParseReduceMethod(reduceMethod)
		if err != nil {
			return py.ExceptionNewf(py.ValueError, "%v", err)
		}
		opts.ReduceMethod = method
	}
	if tries > 0 {
		opts.Tries = int(tries)
	}
	if maxCross > 0 {
		opts.MaxCross = int(maxCross)
	}
	if density > 0 {
		opts.Density = int(density)
	}
	opts.Beg = int(beg)
	opts.End = int(end)
	opts.Workers = int(workers)
	opts.Seed = seed

	if dirObj, exists := kwargs["direction"]; exists {
		dir, err := loadFloats(dirObj)
		if err != nil {
			return err
		}
		opts.Direction = dir
	}
	return nil
}

func loadFloat(obj py.Object) (float64, error) {
	switch v := obj.(type) {
	case py.Int:
		return float64(v), nil
	case py.Float:
		return float64(v), nil
	}
	return 0, py.ExceptionNewf(py.TypeError, "expected a number (got %v)", obj.Type().Name)
}

func items(obj py.Object) ([]py.Object, bool) {
	switch v := obj.(type) {
	case py.Tuple:
		return v, true
	case *py.List:
		return v.Items, true
	}
	return nil, false
}

func loadFloats(obj py.Object) ([]float64, error) {
	list, ok := items(obj)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected a sequence of numbers (got %v)", obj.Type().Name)
	}
	vals := make([]float64, len(list))
	for i, item := range list {
		val, err := loadFloat(item)
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}
	return vals, nil
}

// loadArc reads a sequence of (x, y, z) or (id, x, y, z) points.
func loadArc(list []py.Object) ([]goknot.Point, error) {
	arc := make([]goknot.Point, len(list))
	for i, item := range list {
		vals, err := loadFloats(item)
		if err != nil {
			return nil, err
		}
		pt := goknot.Point{ID: i + 1}
		switch len(vals) {
		case 3:
			pt.X, pt.Y, pt.Z = vals[0], vals[1], vals[2]
		case 4:
			pt.ID = int(vals[0])
			pt.X, pt.Y, pt.Z = vals[1], vals[2], vals[3]
		default:
			return nil, py.ExceptionNewf(py.ValueError, "point %d: expected 3 or 4 values (got %d)", i, len(vals))
		}
		arc[i] = pt
	}
	return arc, nil
}

// loadInput reads a PD code string, a sequence of points, or a sequence of arcs.
func loadInput(obj py.Object) (goknot.Input, error) {
	var in goknot.Input
	if code, isStr := obj.(py.String); isStr {
		in.PDCode = string(code)
		return in, nil
	}

	list, ok := items(obj)
	if !ok || len(list) == 0 {
		return in, py.ExceptionNewf(py.TypeError, "expected a PD code or chain coordinates")
	}

	// A list of arcs holds sequences of points rather than numbers
	isArcs := false
	if first, ok := items(list[0]); ok && len(first) > 0 {
		_, isSeq := items(first[0])
		isArcs = isSeq
	}
	if !isArcs {
		list = []py.Object{obj}
	}
	for _, arcObj := range list {
		points, _ := items(arcObj)
		arc, err := loadArc(points)
		if err != nil {
			return in, err
		}
		in.Arcs = append(in.Arcs, arc)
	}
	return in, nil
}

func exportResult(res goknot.Result) py.Object {
	switch res.Kind {
	case goknot.ResultValue, goknot.ResultTooManyCrossings:
		return py.String(res.String())
	case goknot.ResultDistribution:
		dist := py.NewStringDict()
		for _, outcome := range res.Dist {
			dist[outcome.Value] = py.Float(outcome.Freq)
		}
		return dist
	case goknot.ResultMatrix:
		cells := make(py.Tuple, len(res.Matrix.Cells))
		for i, cell := range res.Matrix.Cells {
			cells[i] = py.Tuple{py.Int(cell.L), py.Int(cell.K), exportResult(cell.Result)}
		}
		return cells
	case goknot.ResultWritten:
		return py.True
	}
	return py.None
}

// Arg 1: PD code (str) or chain coordinates
// Arg 2: invariant name (str)
// kwargs: see loadOpts()
func py_CalculateInvariant(module py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	if len(args) != 2 {
		return nil, py.ExceptionNewf(py.TypeError, "CalculateInvariant() takes an input and an invariant name")
	}
	in, err := loadInput(args[0])
	if err != nil {
		return nil, err
	}
	var kindName string
	if err = py.LoadTuple(args[1:], []interface{}{&kindName}); err != nil {
		return nil, err
	}
	kind, err := goknot.ParseKind(kindName)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}

	opts := goknot.DefaultOpts
	if err = loadOpts(kwargs, &opts); err != nil {
		return nil, err
	}

	res, err := libknot.CalculateInvariant(context.Background(), in, kind, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return exportResult(res), nil
}

// Canonize returns the PD code of the given diagram with its elements in canonical order.
func py_Canonize(module py.Object, args py.Tuple) (py.Object, error) {
	var code string
	if err := py.LoadTuple(args, []interface{}{&code}); err != nil {
		return nil, err
	}
	X, err := pd.Parse(code)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	defer X.Reclaim()
	return py.String(X.PDCode()), nil
}

// Simplify returns the PD code after Reidemeister simplification and its crossing count.
func py_Simplify(module py.Object, args py.Tuple) (py.Object, error) {
	var code string
	if err := py.LoadTuple(args, []interface{}{&code}); err != nil {
		return nil, err
	}
	X, err := pd.Parse(code)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	defer X.Reclaim()
	X.Simplify()
	return py.Tuple{py.String(X.PDCode()), py.Int(X.Crossings())}, nil
}

type Workspace struct {
	CatalogCtx goknot.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: goknot.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	_ = self.(*Workspace)

	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(pathname)
	if os.IsNotExist(err) {
		return py.False, nil
	}
	return py.True, nil
}

// Arg 1: catalog pathname ("" for an in-memory catalog)
// Arg 2: flags (READ_ONLY)
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags})
	if err != nil {
		return nil, err
	}

	opts := goknot.CatalogOpts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: pathname,
	}
	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}

	return py.Object(pyCatalog{cat}), nil
}

type pyCatalog struct {
	goknot.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func loadKindAndCode(args py.Tuple, extra ...interface{}) (goknot.Kind, string, error) {
	var kindName, code string
	err := py.LoadTuple(args, append([]interface{}{&kindName, &code}, extra...))
	if err != nil {
		return goknot.Kind_nil, "", err
	}
	kind, err := goknot.ParseKind(kindName)
	if err != nil {
		return goknot.Kind_nil, "", py.ExceptionNewf(py.ValueError, "%v", err)
	}
	X, err := pd.Parse(code)
	if err != nil {
		return goknot.Kind_nil, "", py.ExceptionNewf(py.ValueError, "%v", err)
	}
	code = X.PDCode()
	X.Reclaim()
	return kind, code, nil
}

func py_Catalog_Lookup(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	kind, code, err := loadKindAndCode(args)
	if err != nil {
		return nil, err
	}
	value, found := cat.Lookup(kind, code)
	if !found {
		return py.None, nil
	}
	return py.String(value), nil
}

func py_Catalog_Store(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var value string
	kind, code, err := loadKindAndCode(args, &value)
	if err != nil {
		return nil, err
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", goknot.ErrCatalogReadOnly)
	}
	if err = cat.Store(kind, code, value); err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.None, nil
}

func py_Catalog_NumEntries(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var kindName string
	if err := py.LoadTuple(args, []interface{}{&kindName}); err != nil {
		return nil, err
	}
	kind, err := goknot.ParseKind(kindName)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Int(cat.NumEntries(kind)), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Lookup"] = py.MustNewMethod("Lookup", py_Catalog_Lookup, 0, "returns the stored value of an invariant for a PD code, or None")
		pyCatalogType.Dict["Store"] = py.MustNewMethod("Store", py_Catalog_Store, 0, "")
		pyCatalogType.Dict["NumEntries"] = py.MustNewMethod("NumEntries", py_Catalog_NumEntries, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", py_Workspace_CatalogExists, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("CalculateInvariant", py_CalculateInvariant, 0, "computes a polynomial invariant of a PD code or chain"),
			py.MustNewMethod("Canonize", py_Canonize, 0, ""),
			py.MustNewMethod("Simplify", py_Simplify, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		kinds := make(py.Tuple, 0, 5)
		for _, kind := range goknot.AllKinds() {
			kinds = append(kinds, py.String(kind.String()))
		}

		globals := py.StringDict{
			"LIB_VERSION":   py.String(LIB_VERSION),
			"PY_VERSION":    py.String("v3.4.0"),
			"READ_ONLY":     py.Int(READ_ONLY),
			"KINDS":         kinds,
			"MAX_CROSSINGS": py.Int(goknot.DefaultMaxCrossings),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyknot",
				Doc:  "knot and spatial graph invariants gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
