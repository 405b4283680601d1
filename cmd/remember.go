package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theapemachine/orb/pkg/memory"
)

var (
	rememberUserFlag string

	rememberCmd = &cobra.Command{
		Use:   "remember",
		Short: "Record a conversation transcript as an episode",
		Long:  longRemember,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()

			if err != nil {
				return err
			}

			raw, err := io.ReadAll(os.Stdin)

			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}

			var turns []memory.Turn

			if err := json.Unmarshal(raw, &turns); err != nil {
				return fmt.Errorf("decode transcript: %w", err)
			}

			episode, err := engine.AddEpisode(cmd.Context(), turns, rememberUserFlag)

			if err != nil {
				return err
			}

			fmt.Println(episode.ID)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(rememberCmd)
	rememberCmd.Flags().StringVarP(&rememberUserFlag, "user", "u", memory.DefaultUserID, "User the episode belongs to")
}

var longRemember = `
Read a conversation transcript as JSON from stdin, reflect on it, and
store the resulting episode in the user's collection.

The transcript is an array of turns:
  [{"role": "user", "content": "..."}, {"role": "assistant", "content": "..."}]

Example:
  cat transcript.json | orb remember --user alice
`
