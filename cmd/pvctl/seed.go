// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/properview/db"
)

type seedOptions struct {
	file   string
	dbURL  string
	dbType string
}

func newSeedCmd() *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load agents and listings from a YAML file",
		Long: `Load agents and listings from a YAML seed file.

Agents are matched by name, so re-running a seed adds listings to agents
that already exist. --db and --db-type fall back to DATABASE_URL and
DATABASE_TYPE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "seed file (YAML)")
	cmd.Flags().StringVar(&opts.dbURL, "db", "", "database URL (default $DATABASE_URL)")
	cmd.Flags().StringVar(&opts.dbType, "db-type", "", "sqlite, postgres or pgx (default $DATABASE_TYPE)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSeed(cmd *cobra.Command, opts *seedOptions) error {
	dbURL := opts.dbURL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return errors.New("database URL is required (--db or DATABASE_URL)")
	}
	dbType := opts.dbType
	if dbType == "" {
		dbType = os.Getenv("DATABASE_TYPE")
	}

	f, err := os.Open(opts.file)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := db.LoadSeed(f)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.file, err)
	}

	ctx := cmd.Context()
	conn, err := db.Open(ctx, dbType, dbURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.CreateSchema(ctx, conn); err != nil {
		return err
	}

	res, err := db.Seed(ctx, conn, data)
	if err != nil {
		return err
	}
	slog.Debug("Seed complete", "file", opts.file, "agents_created", res.AgentsCreated)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "agents:   %d created, %d reused\n", res.AgentsCreated, res.AgentsReused)
	fmt.Fprintf(out, "listings: %d created\n", res.ListingsCreated)
	return nil
}
