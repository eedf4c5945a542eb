package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fyrsmithlabs/moodwall/internal/config"
	"github.com/fyrsmithlabs/moodwall/internal/intent"
	"github.com/fyrsmithlabs/moodwall/internal/logging"
)

// runReferences embeds the default seed phrases with the configured
// provider and writes the resulting table to -o, or stdout.
func runReferences(ctx context.Context, configPath string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("references", flag.ContinueOnError)
	output := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg, logging.NewNop())
	if err != nil {
		return err
	}
	defer provider.Close()

	table, err := intent.BuildTable(ctx, provider, intent.DefaultSeeds())
	if err != nil {
		return err
	}

	w := stdout
	if *output != "" {
		f, err := os.OpenFile(*output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("create %s: %w", *output, err)
		}
		defer f.Close()
		w = f
	}
	return intent.WriteTable(w, table, cfg.Embeddings.Model)
}
