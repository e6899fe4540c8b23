package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"aquacore/internal/catalog"
)

var catalogCheckCmd = &cobra.Command{
	Use:   "catalog-check [path...]",
	Short: "Validate species pack files",
	Long: `Checks YAML species packs for blank or duplicate species names and
non-numeric values in numeric fields. Directory arguments are checked pack by
pack. Exits non-zero when any pack has problems.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogCheck,
}

func runCatalogCheck(cmd *cobra.Command, args []string) error {
	return checkPacks(cmd.OutOrStdout(), args)
}

func checkPacks(out io.Writer, paths []string) error {
	problems := 0
	for _, path := range paths {
		packs, err := packsAt(path)
		if err != nil {
			return err
		}
		for _, pack := range packs {
			issues := pack.Validate()
			if len(issues) == 0 {
				fmt.Fprintf(out, "ok: %s (%d species)\n", pack.Name, len(pack.Species))
				continue
			}
			problems += len(issues)
			for _, issue := range issues {
				fmt.Fprintf(out, "%s: %s\n", pack.Name, issue)
			}
		}
	}
	if problems > 0 {
		return fmt.Errorf("species packs: %d problems", problems)
	}
	return nil
}

func packsAt(path string) ([]catalog.Pack, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return catalog.LoadPackDir(path)
	}
	pack, err := catalog.LoadPackFile(path)
	if err != nil {
		return nil, err
	}
	return []catalog.Pack{pack}, nil
}
