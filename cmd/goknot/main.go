package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/2x3systems/goknot/goknot"
	"github.com/2x3systems/goknot/libknot"
	"github.com/2x3systems/goknot/libknot/chain"
	"github.com/2x3systems/goknot/libknot/pd"
	"github.com/fatih/color"
	"github.com/goccy/go-graphviz"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

type cliFlags struct {
	pdCode    string
	curveFile string
	kind      string
	closure   string
	reduce    string
	direction string
	render    string
	startup   string
	opts      goknot.Opts
}

func (cli *cliFlags) register(fset *flag.FlagSet) {
	def := goknot.DefaultOpts
	fset.StringVar(&cli.pdCode, "pd", "", "PD code of the diagram, e.g. \"V[1,2,3];V[3,2,1]\"")
	fset.StringVar(&cli.curveFile, "curve", "", "file of chain coordinates (\"id x y z\" per line, arcs separated by a blank line)")
	fset.StringVar(&cli.kind, "invariant", "homfly", "one of alexander, jones, homfly, yamada, kauffman_bracket, conway, writhe")
	fset.StringVar(&cli.closure, "closure", def.Closure.String(), "chain closure: closed, mass_center, two_points, one_point, rays")
	fset.StringVar(&cli.reduce, "reduce", string(def.ReduceMethod), "chain reduction: kmt or none")
	fset.StringVar(&cli.direction, "direction", "", "closure direction for rays and one_point, e.g. \"0,0,1\"")
	fset.StringVar(&cli.render, "render", "", "render the PD diagram to this image file (png, svg, ...)")
	fset.StringVar(&cli.startup, "startup", "", "Python file run before the script or REPL (default: import _pyknot)")
	fset.IntVar(&cli.opts.Tries, "tries", def.Tries, "closures drawn for probabilistic closures")
	fset.BoolVar(&cli.opts.Translate, "translate", false, "report known values by name")
	fset.BoolVar(&cli.opts.PolyReduce, "poly-reduce", def.PolyReduce, "print one-variable polynomials as coefficient lists")
	fset.IntVar(&cli.opts.MaxCross, "max-cross", def.MaxCross, "crossing cutoff")
	fset.BoolVar(&cli.opts.Matrix, "matrix", false, "compute the sub-chain matrix")
	fset.IntVar(&cli.opts.Density, "density", def.Density, "matrix step between sub-chain ends")
	fset.Float64Var(&cli.opts.Level, "level", 0, "a sub-chain is trivial if its unknot frequency is at least 1 - level")
	fset.IntVar(&cli.opts.Beg, "beg", 0, "first chain index used in matrix mode")
	fset.IntVar(&cli.opts.End, "end", def.End, "last chain index used in matrix mode (-1 for the chain end)")
	fset.StringVar(&cli.opts.OutputFile, "out", "", "write the result to this file")
	fset.IntVar(&cli.opts.Workers, "workers", 0, "matrix workers (0 for one per CPU)")
	fset.Int64Var(&cli.opts.Seed, "seed", 0, "random seed (0 for time based)")
	fset.StringVar(&cli.opts.CatalogPath, "catalog", "", "cache results in a catalog at this path")
}

func (cli *cliFlags) exportOpts() (goknot.Opts, error) {
	opts := cli.opts
	var err error
	if opts.Closure, err = goknot.ParseClosure(cli.closure); err != nil {
		return opts, err
	}
	if opts.ReduceMethod, err = goknot.ParseReduceMethod(cli.reduce); err != nil {
		return opts, err
	}
	if len(cli.direction) > 0 {
		for _, field := range strings.Split(cli.direction, ",") {
			var v float64
			if _, err := fmt.Sscan(strings.TrimSpace(field), &v); err != nil {
				return opts, errors.Wrapf(err, "bad direction %q", cli.direction)
			}
			opts.Direction = append(opts.Direction, v)
		}
	}
	return opts, nil
}

func (cli *cliFlags) input() (goknot.Input, error) {
	var in goknot.Input
	if len(cli.curveFile) > 0 {
		file, err := os.Open(cli.curveFile)
		if err != nil {
			return in, err
		}
		defer file.Close()
		in.Arcs, err = chain.Parse(file)
		return in, err
	}
	in.PDCode = cli.pdCode
	return in, nil
}

func renderDiagram(pdCode string, pathname string) error {
	X, err := pd.Parse(pdCode)
	if err != nil {
		return err
	}
	defer X.Reclaim()

	dot := bytes.Buffer{}
	if err = X.WriteDOT(&dot); err != nil {
		return err
	}

	g := graphviz.New()
	defer g.Close()
	graph, err := graphviz.ParseBytes(dot.Bytes())
	if err != nil {
		return err
	}
	defer graph.Close()

	format := strings.TrimPrefix(filepath.Ext(pathname), ".")
	if format == "" {
		format = string(graphviz.PNG)
	}
	return g.RenderFilename(graph, graphviz.Format(format), pathname)
}

func runInvariant(cli *cliFlags) error {
	kind, err := goknot.ParseKind(cli.kind)
	if err != nil {
		return err
	}
	opts, err := cli.exportOpts()
	if err != nil {
		return err
	}
	in, err := cli.input()
	if err != nil {
		return err
	}

	if len(cli.render) > 0 && len(in.PDCode) > 0 {
		if err := renderDiagram(in.PDCode, cli.render); err != nil {
			return err
		}
		klog.Infof("rendered %q to %q", in.PDCode, cli.render)
	}

	res, err := libknot.CalculateInvariant(context.Background(), in, kind, opts)
	if err != nil {
		return err
	}

	buf := strings.Builder{}
	res.WriteAsString(&buf, goknot.PrintOpts{Label: kind.String()})
	switch res.Kind {
	case goknot.ResultTooManyCrossings:
		fmt.Println(color.YellowString("%s", buf.String()))
	case goknot.ResultWritten:
		fmt.Println(color.GreenString("%s", buf.String()))
	default:
		fmt.Println(buf.String())
	}
	return nil
}

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	cli := &cliFlags{}
	cli.register(flag.CommandLine)
	flag.Parse()

	exitCode := 0
	if len(cli.pdCode) > 0 || len(cli.curveFile) > 0 {
		if err := runInvariant(cli); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
			exitCode = 1
		}
	} else {
		runner := scriptRunner{startup: cli.startup}
		if err := runner.run(flag.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
			exitCode = 1
		}
	}

	klog.Flush()
	os.Exit(exitCode)
}
