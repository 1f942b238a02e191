// Package repl implements an interactive read-eval-print loop: a line is
// read, parsed with interp.ParseLine, and evaluated against one evaluator
// that persists for the whole session, and any `print` output or error is
// shown before reading the next line.
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/loxmix/loxmix/env"
	"github.com/loxmix/loxmix/eval"
	"github.com/loxmix/loxmix/interp"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl holds the banner and prompt text shown around an interactive
// session; the evaluation behavior itself is fixed.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string
}

// NewRepl creates a Repl with the given display text.
func NewRepl(banner, version, author, line, license, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

// PrintBannerInfo writes the startup banner and usage hints to writer.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Welcome to loxmix!")
	cyanColor.Fprintf(writer, "%s\n", "Type your code and press enter")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the REPL main loop against writer until the user exits or
// readline hits EOF (Ctrl+D). A single Env and Evaluator persist across
// lines, so `var`/`fun` declarations from one line are visible to the
// next.
func (r *Repl) Start(reader io.Reader, writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	e := env.New()
	ev := eval.New(e, writer)

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("Good Bye!\n"))
			break
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}
		if line == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			break
		}
		rl.SaveHistory(line)

		r.evalLine(writer, line, ev)
	}
}

// evalLine parses and evaluates one line of input, reporting any lexical,
// syntactic, or runtime error in red and continuing the session either
// way.
func (r *Repl) evalLine(writer io.Writer, line string, ev *eval.Evaluator) {
	nodes, err := interp.ParseLine(line)
	if err != nil {
		redColor.Fprintf(writer, "%s\n", err)
		return
	}
	for _, n := range nodes {
		if _, _, err := ev.Eval(n); err != nil {
			redColor.Fprintf(writer, "%s\n", err)
			return
		}
	}
}
