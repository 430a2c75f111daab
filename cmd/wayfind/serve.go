package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wayfind-dev/wayfind/pkg/dispatch"
	"github.com/wayfind-dev/wayfind/pkg/routefile"
	"github.com/wayfind-dev/wayfind/pkg/serve"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		metrics bool
		echo    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route table over HTTP",
		Long: `Serve starts an HTTP server that dispatches requests through the
route table. By default every handler reference answers with a JSON
description of the match, which makes the server useful for testing
route files. With --echo=false, unresolved handler references answer
with status 500 instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			handlers := dispatch.NewHandlers()
			table, cfg, err := loadTable(routefile.WithHandlers(handlers))
			if err != nil {
				return err
			}
			if echo {
				if err := registerEchoes(table, handlers); err != nil {
					return err
				}
			}

			if !cmd.Flags().Changed("addr") && cfg.Addr != "" {
				addr = cfg.Addr
			}
			if !cmd.Flags().Changed("metrics") {
				metrics = cfg.Metrics
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel(cfg.LogLevel),
			}))

			opts := []serve.Option{serve.WithLogger(logger)}
			if metrics {
				opts = append(opts, serve.WithMetrics())
			}
			mux := serve.NewMux(table, opts...)

			logger.Info("listening", "addr", addr, "metrics", metrics)
			srv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Address to listen on")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "Expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&echo, "echo", true, "Answer with the match details instead of invoking handlers")

	return cmd
}

// registerEchoes binds every handler reference of the table to a JSON
// echo of the match. Binding is lazy, so populating the registry after
// compilation is fine as long as it happens before the first request.
func registerEchoes(table *dispatch.Table, handlers *dispatch.Handlers) error {
	infos, err := table.Routes()
	if err != nil {
		return err
	}
	for _, ri := range infos {
		if ri.HandlerRef == "" {
			continue
		}
		if _, ok := handlers.Lookup(ri.HandlerRef); ok {
			continue
		}
		handlers.Register(ri.HandlerRef, echoHandler(ri.HandlerRef))
	}
	return nil
}

func echoHandler(ref string) serve.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, m *dispatch.Match) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"handler": ref,
			"name":    m.ViewName(),
			"pattern": m.Pattern,
			"args":    m.Args,
			"kwargs":  m.Kwargs,
		})
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
