package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "gracec [file]",
	Short: "Grace compiler",
	Long: `gracec is a compiler for Grace, a small imperative, statically typed
teaching language. It lexes, parses, and semantically analyzes a source
file, then lowers it to LLVM IR, optionally optimizes it, and emits
target assembly.`,
	Version:      Version,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         compileFile,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().BoolVar(&printIntermIR, "print-ir", false, "print the unoptimized intermediate IR to stdout instead of writing <file>.imm")
	rootCmd.Flags().BoolVar(&printFinalASM, "print-asm", false, "print the final assembly to stdout instead of writing <file>.asm")
	rootCmd.Flags().BoolVar(&noOptimize, "no-optimize", false, "disable the mem2reg/reassociate/gvn/simplifycfg optimization pipeline")
}
