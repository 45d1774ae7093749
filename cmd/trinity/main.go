package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trinity-go/trinity/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔╦╗┬─┐┬┌┐┌┬┌┬┐┬ ┬
   ║ ├┬┘│││││ │ └┬┘
   ╩ ┴└─┴┘└┘┴ ┴  ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "trinity",
		Short: "Reactive signal/scope host for Go",
		Long: `Trinity is a reactive state and scoped dependency layer for Go.

Signals propagate state changes to subscribers; scopes form a
hierarchical registry of nodes; bridges connect child state to
ancestor state. The CLI runs a reference WebSocket host:

  • Per-connection session scopes with a serializing event loop
  • Signal values pushed to clients as JSON patch frames
  • Client events routed to node handlers
  • Prometheus metrics and optional OpenTelemetry traces`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// printBanner prints the Trinity ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}
