package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dusklang/dusk/errz"
	"github.com/dusklang/dusk/object"
	"github.com/dusklang/dusk/vm"
)

var (
	runTimeout int
	runChannel bool
)

var runCmd = &cobra.Command{
	Use:   "run <bytecode.json>",
	Short: "execute a precompiled bytecode payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := loadCode(args[0])
		if err != nil {
			return fmt.Errorf("loading bytecode: %w", err)
		}
		log.Debug().Str("file", args[0]).Int("instructions", code.InstructionCount()).Msg("loaded bytecode")

		m := vm.New()
		if runChannel {
			m.EnableChannelMode()
		}
		mod := object.NewModule("__main__")
		mod.SetAttr("__name__", object.NewStr("__main__"))

		ctx := context.Background()
		if runTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(runTimeout)*time.Second)
			defer cancel()
		}

		result, err := m.Run(ctx, code, mod)
		if err != nil {
			if se, ok := err.(*errz.StructuredError); ok {
				log.Error().Str("correlation_id", se.CorrelationID).Str("kind", se.Kind.String()).Msg(se.Message)
			}
			return err
		}
		if result != nil {
			fmt.Println(result.Repr())
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runTimeout, "timeout", 0, "execution timeout in seconds (0 = no timeout)")
	runCmd.Flags().BoolVar(&runChannel, "channel", false, "run in cooperative channel-VM mode")
}
