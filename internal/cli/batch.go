package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/sidediff/pkg/batch"
	"github.com/sdejongh/sidediff/pkg/config"
	"github.com/sdejongh/sidediff/pkg/logging"
	"github.com/sdejongh/sidediff/pkg/models"
	"github.com/sdejongh/sidediff/pkg/output"
	"github.com/sdejongh/sidediff/pkg/ratelimit"
	"github.com/sdejongh/sidediff/pkg/storage"
)

// BatchFlags holds batch command flag values
type BatchFlags struct {
	engineFlags
	Root     string
	Right    string
	Out      string
	Exclude  []string
	Parallel int
}

var batchFlags BatchFlags

// NewBatchCommand creates the batch command
func NewBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compare every file of two directory trees",
		Long: `Compare the files found below --root with the files at the same relative
paths on the right side, which is either a second local tree (--right) or the
root served by a counterpart host (--remote).

One rendering per file is written below --out together with an index.html
linking every rendering and a machine-readable report.json.

Exit status is 0 when every file is identical, 1 when differences or missing
files were found, 2 when a file could not be compared and 3 when interrupted.`,
		Args: cobra.NoArgs,
		RunE: runBatch,
	}

	addEngineFlags(cmd, &batchFlags.engineFlags)
	cmd.Flags().StringVar(&batchFlags.Root, "root", "", "left directory (required)")
	cmd.Flags().StringVar(&batchFlags.Right, "right", "", "right directory (exclusive with --remote)")
	cmd.Flags().StringVarP(&batchFlags.Out, "out", "o", "", "directory receiving renderings and reports (required)")
	cmd.Flags().StringSliceVar(&batchFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
	cmd.Flags().IntVarP(&batchFlags.Parallel, "parallel", "p", 0, "number of parallel workers (default: batch.max_workers)")

	cmd.MarkFlagRequired("root")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if batchFlags.Parallel > 0 {
		cfg.Batch.MaxWorkers = batchFlags.Parallel
	}
	if len(batchFlags.Exclude) > 0 {
		cfg.Batch.Exclude = append(cfg.Batch.Exclude, batchFlags.Exclude...)
	}
	if err := applyEngineFlags(cmd, &batchFlags.engineFlags, cfg); err != nil {
		return err
	}
	// An explicit right tree wins over a remote URL from the config file
	if batchFlags.Right != "" && !cmd.Flags().Changed("remote") {
		cfg.Remote.URL = ""
	}

	req, err := createBatchRequest(cfg)
	if err != nil {
		return fmt.Errorf("failed to create batch request: %w", err)
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	renderer, err := output.NewRenderer(req.Format)
	if err != nil {
		return err
	}

	left, err := storage.NewLocal(req.Left)
	if err != nil {
		return fmt.Errorf("failed to open left root: %w", err)
	}
	defer left.Close()

	right, listers, err := openBatchRight(cfg, req, left)
	if err != nil {
		return err
	}
	defer right.Close()

	exclude, err := batch.NewExcluder(req.ExcludePatterns)
	if err != nil {
		return err
	}

	paths, err := batch.Discover(ctx, ".", exclude, listers...)
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}

	var progress output.ProgressReporter = output.NullProgress{}
	if cfg.Output.Progress && !cfg.Output.Quiet && output.IsTerminal(os.Stderr) {
		progress = output.NewProgressBar(os.Stderr)
	}

	runner := batch.NewRunner(left, right, renderer, progress, logger, batch.Config{
		MaxWorkers: req.MaxWorkers,
		OutputDir:  req.OutputDir,
		Compare:    cfg.CompareOptions(),
	})

	report, err := runner.Run(ctx, req.ID, paths)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("batch failed: %w", err)
	}

	if err := output.WriteReportFiles(report, req.OutputDir); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if !cfg.Output.Quiet {
		if err := output.WriteSummary(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}

	logger.Info(ctx, "Reports written", logging.Fields{"out": req.OutputDir})

	exit(report.Status.ExitCode())
	return nil
}

// createBatchRequest builds and validates the request from flags and config
func createBatchRequest(cfg *config.Config) (*models.Request, error) {
	rate, err := ratelimit.ParseRate(cfg.Remote.BandwidthLimit)
	if err != nil {
		return nil, err
	}

	req := &models.Request{
		ID:              uuid.New().String(),
		Left:            batchFlags.Root,
		Right:           batchFlags.Right,
		Remote:          cfg.Remote.URL,
		OutputDir:       batchFlags.Out,
		Format:          cfg.Output.Format,
		ExcludePatterns: cfg.Batch.Exclude,
		MaxWorkers:      cfg.Batch.MaxWorkers,
		BandwidthLimit:  rate,
		CreatedAt:       time.Now(),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := requireDir(req.Left, "left root"); err != nil {
		return nil, err
	}
	if req.Right != "" {
		if err := requireDir(req.Right, "right root"); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// openBatchRight opens the right side and returns the listers discovery walks.
// A remote cannot be listed, so only files present on the left are compared.
func openBatchRight(cfg *config.Config, req *models.Request, left *storage.Local) (storage.Fetcher, []storage.Lister, error) {
	if req.Remote != "" {
		remote, err := newRemote(cfg.Remote)
		if err != nil {
			return nil, nil, err
		}
		return remote, []storage.Lister{left}, nil
	}

	right, err := storage.NewLocal(req.Right)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open right root: %w", err)
	}
	return right, []storage.Lister{left, right}, nil
}
