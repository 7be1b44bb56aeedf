// Command mathexpr evaluates arithmetic expressions over numbers, image and
// latent sizes, and widget values from a workflow.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/zephyrtronium/mathexpr"
	"github.com/zephyrtronium/mathexpr/tensor"
	"github.com/zephyrtronium/mathexpr/workflow"
)

func main() {
	log.SetFlags(0)
	var (
		inname, verb  string
		wfname, pname string
		slots         [3]string
		nl, echo      bool
		repl          bool
		prec          int
		seed          int64
	)
	flag.StringVar(&inname, "in", "", "input file (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "", "result formatting string, e.g. %g (default prints int and float forms)")
	for i, name := range mathexpr.Slots {
		flag.StringVar(&slots[i], name, "", "value of "+name+": a number or a size like image:512x512 or latent:1024x1024")
	}
	flag.StringVar(&wfname, "workflow", "", "workflow file (JSON or YAML) for node widget references")
	flag.StringVar(&pname, "prompt", "", "prompt file (JSON or YAML) holding widget values")
	flag.IntVar(&prec, "p", mathexpr.DefaultPrec, "precision of calculations in bits")
	flag.Int64Var(&seed, "seed", 0, "seed for randomint and randomchoice (default time-based)")
	flag.BoolVar(&nl, "n", false, "parse separate input lines as separate expressions")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.BoolVar(&repl, "repl", false, "read expressions interactively")
	flag.Parse()
	if prec <= 0 {
		log.Fatalf("precision (%d) must be positive", prec)
	}

	opts := []mathexpr.ContextOption{mathexpr.Prec(uint(prec))}
	for i, name := range mathexpr.Slots {
		if slots[i] == "" {
			continue
		}
		v, err := tensor.ParseVar(slots[i])
		if err != nil {
			log.Fatalf("setting %s: %v", name, err)
		}
		opts = append(opts, mathexpr.SetVar(name, v))
	}
	if wfname != "" || pname != "" {
		reg, err := workflow.LoadFiles(wfname, pname)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, mathexpr.Widgets(reg))
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts = append(opts, mathexpr.Rand(rand.New(rand.NewSource(seed))))
		}
	})
	ctx := mathexpr.NewContext(opts...)
	out := printer{w: os.Stdout, echo: echo, verb: verb}

	if repl {
		os.Exit(runRepl(ctx, out))
	}

	var srcs []string
	f, err := infile(inname, flag.NArg() == 0)
	if err != nil {
		log.Fatal(err)
	}
	if f != nil {
		b, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
		srcs = append(srcs, split(string(b), nl)...)
	}
	srcs = append(srcs, flag.Args()...)

	failed := false
	for _, src := range srcs {
		if !out.run(ctx, src) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

// split separates input into expressions: one per non-blank line if lines is
// true, or the whole input otherwise.
func split(s string, lines bool) []string {
	if !lines {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []string{s}
	}
	var r []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			r = append(r, line)
		}
	}
	return r
}

type printer struct {
	w    io.Writer
	echo bool
	verb string
}

// run evaluates one expression and prints its result or error. It reports
// whether evaluation succeeded.
func (p printer) run(ctx *mathexpr.Context, src string) bool {
	a, err := mathexpr.ParseString(src)
	if err != nil {
		p.fail(err)
		return false
	}
	if p.echo {
		fmt.Fprintf(p.w, "%v : ", a)
	}
	r := ctx.Eval(a)
	if r == nil {
		p.fail(ctx.Err())
		return false
	}
	if p.verb != "" {
		fmt.Fprintf(p.w, p.verb+"\n", r)
		return true
	}
	res, err := mathexpr.Format(r)
	if err != nil {
		p.fail(err)
		return false
	}
	fmt.Fprintln(p.w, res)
	return true
}

func (p printer) fail(err error) {
	fmt.Fprintf(p.w, "%v: %v\n", mathexpr.KindOf(err), err)
}

func infile(inname string, std bool) (io.ReadCloser, error) {
	switch {
	case inname != "" && inname != "-":
		return os.Open(inname)
	case inname == "-", std:
		return io.NopCloser(os.Stdin), nil
	}
	return nil, nil
}
