// Command aquacore runs the aquarium stocking service: an HTTP API over the
// reference-data store and the evaluation engine, a one-shot evaluator, and a
// species-pack validator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aquacore/internal/logging"
)

var (
	// Persistent flags
	flagConfig   string
	flagLogLevel string
	flagDev      bool

	// Serve flags (pack-dir is shared with evaluate)
	flagAddr        string
	flagDriver      string
	flagSQLitePath  string
	flagPostgresDSN string
	flagBlobDriver  string
	flagBlobRoot    string
	flagPackDir     string
	flagWatch       bool

	// Evaluate flags
	flagInput string

	appConfig Config
	logger    *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aquacore",
	Short: "Aquarium stocking and resource capacity service",
	Long: `aquacore evaluates aquarium stocking: tank capacity, species
compatibility, recommended quantities per species, and feed depletion
forecasts.

serve runs the HTTP API, evaluate runs a single evaluation from a JSON
request, and catalog-check validates species pack files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd.Flags())
		if err != nil {
			return err
		}
		appConfig = cfg
		logger, err = logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	defaults := defaultConfig()

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", defaults.Log.Level, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagDev, "dev", false, "Use the development logger (console encoding)")

	serveCmd.Flags().StringVar(&flagAddr, "addr", defaults.HTTP.Addr, "HTTP listen address")
	serveCmd.Flags().StringVar(&flagDriver, "driver", defaults.Persistence.Driver, "Persistence driver: memory, sqlite, postgres")
	serveCmd.Flags().StringVar(&flagSQLitePath, "sqlite-path", defaults.Persistence.SQLitePath, "SQLite database file")
	serveCmd.Flags().StringVar(&flagPostgresDSN, "postgres-dsn", "", "PostgreSQL DSN")
	serveCmd.Flags().StringVar(&flagBlobDriver, "blob-driver", defaults.Blob.Driver, "Report artifact store: fs, s3, memory")
	serveCmd.Flags().StringVar(&flagBlobRoot, "blob-root", defaults.Blob.FSRoot, "Artifact directory for the fs blob driver")
	serveCmd.Flags().StringVar(&flagPackDir, "pack-dir", "", "Species pack directory")
	serveCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload species packs when files change")

	evaluateCmd.Flags().StringVarP(&flagInput, "input", "f", "", "Request JSON file (default stdin)")
	evaluateCmd.Flags().StringVar(&flagPackDir, "pack-dir", "", "Species pack directory")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(catalogCheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
