package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract/meesho"
	"github.com/joseph-ayodele/invoice-extractor/internal/pdftext"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	repo "github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "invoice-extractor",
		Short:         "Extract structured data from Meesho invoice PDFs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (overrides INVOICE_CONFIG)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (overrides LOG_LEVEL)")

	root.AddCommand(
		newExtractCmd(a),
		newBatchCmd(a),
		newWatchCmd(a),
		newExportCmd(a),
		newDBHealthCmd(a),
		newMCPCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := common.LoadConfig()
	if err != nil {
		return err
	}
	if a.configPath != "" {
		if err := cfg.ApplyFile(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries command output (and the MCP stream), logs go to stderr
	a.cfg = cfg
	a.logger = common.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(a.logger)
	return nil
}

// openDB opens the configured database, or a private in-memory one, and applies the schema.
func (a *app) openDB(ctx context.Context, inmem bool) (*repo.DB, error) {
	dbCfg := repo.ConfigFrom(a.cfg.Database)
	if inmem {
		dbCfg.Driver = repo.DriverSQLite
		dbCfg.DSN = ":memory:"
	}
	db, err := repo.Open(ctx, dbCfg, a.logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// processor wires the text and field stages. With a nil db nothing is stored or deduplicated.
func (a *app) processor(db *repo.DB) (*pipeline.Processor, *pdftext.Extractor) {
	text := pdftext.NewExtractor(pdftext.Config{MaxPages: a.cfg.Extract.MaxPages}, a.logger)
	fields := pipeline.NewFieldsStage(meesho.NewExtractor(a.logger), a.cfg.Extract.PageWorkers, a.logger)
	adapter := extract.NewPDFAdapter(text, a.logger)

	if db == nil {
		return pipeline.NewProcessor(a.logger, pipeline.NewTextStage(nil, adapter, a.logger), fields, nil), text
	}
	files := repo.NewInvoiceFileRepository(db, a.logger)
	invoices := repo.NewInvoiceRepository(db, a.logger)
	return pipeline.NewProcessor(a.logger, pipeline.NewTextStage(files, adapter, a.logger), fields, invoices), text
}
