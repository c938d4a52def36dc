// Command gracec compiles Grace source files to LLVM IR and assembly.
package main

import (
	"os"

	"github.com/cwbudde/go-dws/cmd/gracec/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
