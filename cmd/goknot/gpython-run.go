package main

import (
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	_ "github.com/2x3systems/goknot/pyknot"
	_ "github.com/go-python/gpython/stdlib"
)

// defaultStartup is run before the REPL prompt when no startup script is given.
const defaultStartup = "import _pyknot"

// scriptRunner runs gpython scripts with the _pyknot module available.
type scriptRunner struct {
	startup string // Python file run first, in the same module as the script or REPL
}

// startModule runs the startup script (or defaultStartup) and returns the module it ran in.
func (sr *scriptRunner) startModule(ctx py.Context, module *py.Module) (*py.Module, error) {
	if len(sr.startup) == 0 {
		if module == nil {
			return nil, nil
		}
		_, err := py.RunSrc(ctx, defaultStartup, "<startup>", module)
		return module, err
	}

	var inModule interface{}
	if module != nil {
		inModule = module
	}
	module, err := py.RunFile(ctx, sr.startup, py.CompileOpts{}, inModule)
	if err != nil {
		return nil, errors.Wrapf(err, "startup %q", sr.startup)
	}
	klog.V(2).Infof("ran startup %q", sr.startup)
	return module, nil
}

// runScript runs the startup script and then pathname in the same module.
func (sr *scriptRunner) runScript(ctx py.Context, pathname string) error {
	module, err := sr.startModule(ctx, nil)
	if err != nil {
		return err
	}

	var inModule interface{}
	if module != nil {
		inModule = module
	}

	startTime := time.Now()
	klog.Infof("executing %q", pathname)
	if _, err = py.RunFile(ctx, pathname, py.CompileOpts{}, inModule); err != nil {
		return err
	}
	klog.Infof("%q complete: %v", pathname, time.Since(startTime))
	return nil
}

// runREPL runs the startup script in the REPL module and then reads commands until EOF.
func (sr *scriptRunner) runREPL(ctx py.Context) error {
	replCtx := repl.New(ctx)
	if _, err := sr.startModule(ctx, replCtx.Module); err != nil {
		return err
	}
	cli.RunREPL(replCtx)
	return nil
}

// run runs the given script, or an interactive session if pathname is empty.
func (sr *scriptRunner) run(pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())

	var err error
	if len(pathname) == 0 {
		err = sr.runREPL(ctx)
	} else {
		err = sr.runScript(ctx, pathname)
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
	}
	return err
}
