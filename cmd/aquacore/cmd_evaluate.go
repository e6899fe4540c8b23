package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"aquacore/internal/catalog"
	"aquacore/internal/logging"
	"aquacore/internal/stocking"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one stocking request and print the report",
	Long: `Reads an evaluation request as JSON from --input or stdin and prints
the stocking report as indented JSON on stdout.

Request shape:
  {"tank_volume": 120, "tank_shape": "rectangle",
   "fish_selections": {"Neon Tetra": 10},
   "feed_inventory": {"omnivore flakes": 100}}`,
	RunE: runEvaluate,
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if flagInput != "" {
		f, err := os.Open(flagInput)
		if err != nil {
			return fmt.Errorf("open request file: %w", err)
		}
		defer f.Close()
		in = f
	}
	return evaluateOnce(cmd.Context(), appConfig, logger, in, cmd.OutOrStdout())
}

// evaluateOnce runs a single stocking evaluation against a freshly wired
// service and writes the report to out.
func evaluateOnce(ctx context.Context, cfg Config, log *logging.Logger, in io.Reader, out io.Writer) error {
	var req stocking.Request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode evaluation request: %w", err)
	}

	packs := catalog.New()
	if cfg.Catalog.PackDir != "" {
		if _, err := loadPacksInto(packs, cfg.Catalog.PackDir); err != nil {
			return err
		}
	}
	svc, _, err := newService(cfg, log, packs)
	if err != nil {
		return err
	}

	report, err := svc.EvaluateStocking(ctx, req)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
