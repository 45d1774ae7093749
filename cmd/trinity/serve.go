package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trinity-go/trinity/pkg/host"
	"github.com/trinity-go/trinity/pkg/trinity"
)

func serveCmd() *cobra.Command {
	var configPath string
	var listen string
	var debug bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo host server",
		Long: `Run a reference WebSocket host with three demo nodes:

  counter   per-session counter (events: counter.increment, counter.reset)
  clock     per-session wall clock fed by a stream signal
  editor    per-session view over the shared settings node, connected
            through a bridge (event: editor.set_theme)

The shared settings node lives in the root scope; every session's
editor bridges to it, so a theme change in one session is visible to
all of them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := host.DefaultConfig()
			if configPath != "" {
				loaded, err := host.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if listen != "" {
				cfg.Listen = listen
			}

			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			printBanner()

			root := trinity.NewScope(nil, trinity.WithLogger(logger))
			defer root.Dispose()
			if err := root.Register(newSettingsNode()); err != nil {
				return err
			}

			srv := host.NewServer(cfg, demoSession,
				host.WithRootScope(root),
				host.WithLogger(logger),
				host.WithTracing(),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to trinity.yaml")
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return cmd
}

// demoSession populates each connection's scope.
func demoSession(s *trinity.Scope) error {
	if err := s.Register(newCounterNode()); err != nil {
		return err
	}
	if err := s.Register(newClockNode()); err != nil {
		return err
	}
	return s.Register(newEditorNode())
}
