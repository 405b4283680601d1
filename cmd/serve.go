package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theapemachine/orb/pkg/service"
)

var (
	addrFlag string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the episodic memory API",
		Long:  longServe,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine()

			if err != nil {
				return err
			}

			addr := addrFlag

			if addr == "" {
				addr = viper.GetString("server.addr")
			}

			return service.NewMemoryServer(
				engine, viper.GetFloat64("memory.alpha"), addr,
			).Start()
		},
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&addrFlag, "addr", "a", "", "Address to serve on (overrides config)")
}

var longServe = `
Serve the episodic memory API over HTTP.

Endpoints:
  POST /episodes   record a finished conversation as an episode
  POST /recall     retrieve the top ranked episodes for a query
  GET  /directive  compose the priming directive for a query

Examples:
  # Serve on the configured address
  orb serve

  # Serve on port 8080
  orb serve --addr :8080
`
