package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theapemachine/orb/pkg/memory"
)

var (
	recallUserFlag  string
	recallAlphaFlag float64

	recallCmd = &cobra.Command{
		Use:   "recall [query]",
		Short: "Compose the priming directive for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()

			if err != nil {
				return err
			}

			alpha := recallAlphaFlag

			if alpha < 0 {
				alpha = viper.GetFloat64("memory.alpha")
			}

			results, err := engine.Recall(
				cmd.Context(), recallUserFlag, strings.Join(args, " "), alpha,
			)

			if err != nil {
				return err
			}

			fmt.Println(memory.Render(results))
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(recallCmd)
	recallCmd.Flags().StringVarP(&recallUserFlag, "user", "u", memory.DefaultUserID, "User whose memory to search")
	recallCmd.Flags().Float64VarP(&recallAlphaFlag, "alpha", "A", -1, "Fusion weight between similarity and keyword results (defaults to config)")
}
