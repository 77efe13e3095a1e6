package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/jaro/internal/catalog"
	"github.com/dshills/jaro/internal/fuzzy"
	"github.com/dshills/jaro/internal/script"
	"github.com/dshills/jaro/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr, catalogPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the similarity HTTP API",
		Long: `Serve /v1/compare, /v1/match and /healthz.

With a catalog, /v1/match ranks its entries and the file is reloaded
whenever it changes. SIGINT or SIGTERM shuts the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("catalog") {
				a.cfg.Server.Catalog = catalogPath
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			opts, err := a.cfg.Matcher.Options()
			if err != nil {
				return err
			}
			opts.Logger = a.logger

			if a.cfg.Matcher.Script != "" {
				s, err := script.Load(a.cfg.Matcher.Script)
				if err != nil {
					return err
				}
				defer s.Close()
				opts.Transformer = s
			}

			serverOpts := []server.Option{
				server.WithLogger(a.logger),
				server.WithWorkers(a.cfg.Matcher.Workers),
				server.WithDefaultLimit(a.cfg.Matcher.Limit),
			}
			if a.cfg.Server.Catalog != "" {
				c, err := catalog.Open(a.cfg.Server.Catalog, catalog.WithLogger(a.logger))
				if err != nil {
					return err
				}
				serverOpts = append(serverOpts, server.WithCatalog(c))
			}

			srv := server.New(a.cfg.Server, fuzzy.NewMatcher(opts), serverOpts...)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "candidate file for /v1/match")
	return cmd
}
