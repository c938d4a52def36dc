// Package driver orchestrates the full Grace pipeline — lex, parse,
// analyze, generate, optionally optimize, and emit — behind one Compile
// entry point so cmd/gracec stays a thin flag-handling shell that
// delegates the actual work to internal packages.
package driver

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/cwbudde/go-dws/internal/codegen"
	graceerrors "github.com/cwbudde/go-dws/internal/errors"
	"github.com/cwbudde/go-dws/internal/lexer"
	"github.com/cwbudde/go-dws/internal/parser"
	"github.com/cwbudde/go-dws/internal/semantic"
)

// Options controls one compilation run and the CLI flags that set it up:
// by default the driver writes both an intermediate-representation file
// and an assembly file next to the source; either can instead be
// streamed to stdout, and optimization is on unless explicitly disabled.
type Options struct {
	SourcePath    string
	PrintIntermIR bool // print the unoptimized .ll text to stdout instead of writing <path>.imm
	PrintFinalASM bool // print the final assembly to stdout instead of writing <path>.asm
	Optimize      bool
	OptBinary     string // external `opt` binary; defaults to "opt"
	LLCBinary     string // external `llc` binary; defaults to "llc"
}

// Result carries the artifacts a successful compilation produced, for
// callers (tests, cmd/gracec) that want to inspect them.
type Result struct {
	IntermediateIR string // unoptimized textual LLVM IR
	FinalIR        string // post-optimization textual LLVM IR (== IntermediateIR if Optimize is false)
	Assembly       string
}

// Compile runs the full pipeline over the source found at opts.SourcePath
// and returns its artifacts, or the first fatal diagnostic formatted with
// source context — compilation aborts at the first error it hits.
func Compile(opts Options) (*Result, error) {
	content, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", opts.SourcePath, err)
	}
	source := string(content)

	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		first := errs[0]
		return nil, graceerrors.NewCompilerError(first.Pos, first.Message, source, opts.SourcePath)
	}

	if err := semantic.Analyze(prog); err != nil {
		semErr := err.(*semantic.Error)
		return nil, graceerrors.NewCompilerError(semErr.Pos, semErr.Message, source, opts.SourcePath)
	}

	ctx := codegen.NewContext(opts.SourcePath)
	module, err := ctx.Generate(prog)
	if err != nil {
		return nil, fmt.Errorf("code generation: %w", err)
	}

	res := &Result{IntermediateIR: module.String()}
	res.FinalIR = res.IntermediateIR

	if opts.Optimize {
		optimized, err := runOpt(res.IntermediateIR, optBinary(opts))
		if err != nil {
			return nil, fmt.Errorf("optimization: %w", err)
		}
		res.FinalIR = optimized
	}

	asm, err := runLLC(res.FinalIR, llcBinary(opts))
	if err != nil {
		return nil, fmt.Errorf("assembly emission: %w", err)
	}
	res.Assembly = asm

	return res, nil
}

func optBinary(o Options) string {
	if o.OptBinary != "" {
		return o.OptBinary
	}
	return "opt"
}

func llcBinary(o Options) string {
	if o.LLCBinary != "" {
		return o.LLCBinary
	}
	return "llc"
}

// runOpt shells out to LLVM's `opt` to run the fixed optimization
// pipeline (mem2reg, reassociation, GVN, CFG simplify). llir/llvm is an
// IR builder, not an optimizer, so that pipeline is only reachable
// through the real LLVM tools; this is a deliberate boundary rather
// than a hand-rolled substitute.
func runOpt(irText, bin string) (string, error) {
	return pipeThrough(bin, []string{"-S", "-passes=mem2reg,reassociate,gvn,simplifycfg", "-o", "-", "-"}, irText)
}

// runLLC shells out to LLVM's `llc` to lower textual IR to target
// assembly, for the same reason runOpt shells out to `opt`.
func runLLC(irText, bin string) (string, error) {
	return pipeThrough(bin, []string{"-o", "-", "-"}, irText)
}

func pipeThrough(bin string, args []string, input string) (string, error) {
	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewBufferString(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", bin, err, stderr.String())
	}
	return stdout.String(), nil
}
