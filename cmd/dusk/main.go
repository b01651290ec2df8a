// Command dusk is the reference CLI for the dusk virtual machine: it loads
// a precompiled bytecode payload (this module ships no parser/compiler,
// spec Non-goals) and runs it, or disassembles it for inspection.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}
