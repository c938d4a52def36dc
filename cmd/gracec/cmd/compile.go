package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/go-dws/internal/driver"
)

var (
	printIntermIR bool
	printFinalASM bool
	noOptimize    bool
)

// compileFile runs the full pipeline over args[0] and, per the
// specification's external interfaces, by default writes an
// intermediate-representation file and an assembly file next to the
// source (<path>.imm and <path>.asm); --print-ir/--print-asm stream
// either to stdout instead.
func compileFile(_ *cobra.Command, args []string) error {
	sourcePath := args[0]

	opts := driver.Options{
		SourcePath:    sourcePath,
		PrintIntermIR: printIntermIR,
		PrintFinalASM: printFinalASM,
		Optimize:      !noOptimize,
	}

	result, err := driver.Compile(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	base := strings.TrimSuffix(sourcePath, ".grc")

	if opts.PrintIntermIR {
		fmt.Println(result.IntermediateIR)
	} else if err := os.WriteFile(base+".imm", []byte(result.IntermediateIR), 0o644); err != nil {
		return fmt.Errorf("writing %s.imm: %w", base, err)
	}

	if opts.PrintFinalASM {
		fmt.Println(result.Assembly)
	} else if err := os.WriteFile(base+".asm", []byte(result.Assembly), 0o644); err != nil {
		return fmt.Errorf("writing %s.asm: %w", base, err)
	}

	return nil
}
