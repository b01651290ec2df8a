package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusklang/dusk/dis"
)

var disCmd = &cobra.Command{
	Use:   "dis <bytecode.json>",
	Short: "disassemble a precompiled bytecode payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := loadCode(args[0])
		if err != nil {
			return fmt.Errorf("loading bytecode: %w", err)
		}
		bold := color.New(color.Bold)
		bold.Fprintf(os.Stdout, "%s (mode=%v, %d instructions)\n", args[0], code.Mode(), code.InstructionCount())
		dis.Print(dis.Disassemble(code), os.Stdout)
		return nil
	},
}
