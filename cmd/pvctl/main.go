// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command pvctl seeds a ProperView database and browses the listings API
// from a terminal.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/properview/client"
)

const defaultAPI = "http://localhost:3318"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	apiURL string
}

// client builds an API client for the --api address
func (o *rootOptions) client() (*client.Client, error) {
	return client.New(o.apiURL)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pvctl",
		Short: "ProperView command line tools",
		Long: `pvctl talks to a ProperView API server and its database.

The API address comes from --api, then PROPERVIEW_API, then ` + defaultAPI + `.`,
		SilenceUsage: true,
	}

	api := os.Getenv("PROPERVIEW_API")
	if api == "" {
		api = defaultAPI
	}
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api", api, "ProperView API base URL")

	cmd.AddCommand(
		newSeedCmd(),
		newListingsCmd(opts),
		newBrowseCmd(opts),
	)
	return cmd
}
