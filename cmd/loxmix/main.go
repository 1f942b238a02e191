// Command loxmix is the CLI front end for the interpreter: it dispatches
// tokenize/parse/evaluate/run against a source file, or launches an
// interactive REPL when invoked with the `repl` command. With no command, or
// with a file command but no filename, it prints the usage line.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kr/pretty"

	"github.com/loxmix/loxmix/env"
	"github.com/loxmix/loxmix/eval"
	"github.com/loxmix/loxmix/interp"
	"github.com/loxmix/loxmix/repl"
	"github.com/loxmix/loxmix/value"
)

const usage = "Usage: loxmix [-debug] <tokenize|parse|evaluate|run> <file> | loxmix repl"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("loxmix", flag.ContinueOnError)
	fs.SetOutput(stderr)
	debug := fs.Bool("debug", false, "dump the top-level environment after running")
	if err := fs.Parse(args); err != nil {
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(stderr, usage)
		return 0
	}

	command := rest[0]
	if command == "repl" {
		startRepl(os.Stdin, stdout)
		return 0
	}

	if len(rest) < 2 {
		fmt.Fprintln(stderr, usage)
		return 0
	}
	path := rest[1]

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "failed to read %s: %v\n", path, err)
		return 70
	}
	source := string(src)

	e := env.New()
	var runErr error
	switch command {
	case "tokenize":
		runErr = interp.Tokenize(source, stdout)
	case "parse":
		runErr = interp.Parse(source, stdout)
	case "evaluate":
		runErr = evaluateWithEnv(source, stdout, e)
	case "run":
		runErr = runWithEnv(source, stdout, e)
	default:
		fmt.Fprintln(stderr, usage)
		return 0
	}

	if runErr != nil {
		fmt.Fprintln(stderr, runErr)
	}

	if *debug {
		fmt.Fprintf(stderr, "%# v\n", pretty.Formatter(e))
	}

	return interp.ExitCode(runErr)
}

// evaluateWithEnv and runWithEnv reuse interp's scan/parse path but keep a
// handle on the Env so -debug can inspect it afterward; interp.Evaluate and
// interp.Run build their own private Env since the plain CLI path never
// needs one.
func evaluateWithEnv(source string, w *os.File, e *env.Env) error {
	nodes, err := interp.ParseLine(source)
	if err != nil {
		return err
	}
	ev := eval.New(e, w)
	for _, n := range nodes {
		v, _, err := ev.Eval(n)
		if err != nil {
			return interp.NewRuntimeError(err)
		}
		fmt.Fprintln(w, value.Render(v))
	}
	return nil
}

func runWithEnv(source string, w *os.File, e *env.Env) error {
	nodes, err := interp.ParseLine(source)
	if err != nil {
		return err
	}
	ev := eval.New(e, w)
	for _, n := range nodes {
		if _, _, err := ev.Eval(n); err != nil {
			return interp.NewRuntimeError(err)
		}
	}
	return nil
}

func startRepl(stdin *os.File, stdout *os.File) {
	r := repl.NewRepl(
		"loxmix",
		"0.1.0",
		"loxmix contributors",
		"----------------------------------------",
		"MIT",
		"lox >>> ",
	)
	r.Start(stdin, stdout)
}
