package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/sidediff/pkg/compare"
	"github.com/sdejongh/sidediff/pkg/logging"
	"github.com/sdejongh/sidediff/pkg/models"
	"github.com/sdejongh/sidediff/pkg/output"
	"github.com/sdejongh/sidediff/pkg/storage"
)

// Config holds configuration for the runner
type Config struct {
	// MaxWorkers bounds the number of files compared concurrently
	MaxWorkers int
	// OutputDir receives one rendered file per compared path
	OutputDir string
	// Compare options applied to every file
	Compare []compare.Option
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{MaxWorkers: 4}
}

// Runner compares the same relative paths on two sides
type Runner struct {
	left     storage.Fetcher
	right    storage.Fetcher
	renderer output.Renderer
	progress output.ProgressReporter
	logger   logging.Logger
	config   Config
}

// NewRunner creates a batch runner. A nil progress or logger is replaced by a no-op.
func NewRunner(
	left, right storage.Fetcher,
	renderer output.Renderer,
	progress output.ProgressReporter,
	logger logging.Logger,
	config Config,
) *Runner {
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}
	if progress == nil {
		progress = output.NullProgress{}
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Runner{
		left:     left,
		right:    right,
		renderer: renderer,
		progress: progress,
		logger:   logger,
		config:   config,
	}
}

// Run compares every path and returns the finalized report. Per-file
// failures are recorded in the report; only cancellation is returned as an error.
func (r *Runner) Run(ctx context.Context, operationID string, paths []string) (*models.Report, error) {
	report := &models.Report{
		OperationID: operationID,
		Left:        r.left.Name(),
		Right:       r.right.Name(),
		OutputDir:   r.config.OutputDir,
		StartTime:   time.Now(),
	}

	log := r.logger.WithFields(logging.Fields{"operation_id": operationID})
	log.Info(ctx, "Starting batch comparison", logging.Fields{
		"left":        report.Left,
		"right":       report.Right,
		"files":       len(paths),
		"max_workers": r.config.MaxWorkers,
	})

	if r.config.OutputDir != "" {
		if err := os.MkdirAll(r.config.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tasks := make([]*fileTask, len(paths))
	for i, p := range paths {
		tasks[i] = newFileTask(p)
	}

	r.progress.Start(len(tasks))

	var progressMu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.config.MaxWorkers)

	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				task.status = TaskSkipped
				return nil
			}
			task.markProcessing()
			r.compareFile(ctx, task, log)

			progressMu.Lock()
			r.progress.FileDone(task.result)
			progressMu.Unlock()
			return nil
		})
	}
	g.Wait()

	for _, task := range tasks {
		if task.status == TaskCompleted {
			report.Files = append(report.Files, task.result)
		}
	}

	cancelled := ctx.Err() != nil
	report.EndTime = time.Now()
	report.Finalize(cancelled)
	r.progress.Finish(report)

	log.Info(ctx, "Batch comparison finished", logging.Fields{
		"status":    report.Status,
		"files":     report.Totals.Files,
		"different": report.Totals.Different,
		"failed":    report.Totals.Failed,
		"duration":  report.Duration.String(),
	})

	if cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

func (r *Runner) compareFile(ctx context.Context, task *fileTask, log logging.Logger) {
	left := storage.Load(ctx, r.left, task.path)
	right := storage.Load(ctx, r.right, task.path)

	if err := sideFailure(left, right); err != nil {
		log.Warn(ctx, "File could not be compared", logging.Fields{"path": task.path, "error": err.Error()})
		task.fail(err)
		return
	}

	opts := append([]compare.Option{}, r.config.Compare...)
	opts = append(opts, compare.WithTitles(title(left), title(right)))
	result := compare.Compare(left.Text, right.Text, opts...)

	res := models.FileResult{Stats: result.Stats}
	switch {
	case left.Missing:
		res.Status = models.FileMissingLeft
	case right.Missing:
		res.Status = models.FileMissingRight
	case result.Equal:
		res.Status = models.FileIdentical
	default:
		res.Status = models.FileDifferent
	}
	if !left.Missing {
		res.LeftSHA256 = digest(left.Text)
	}
	if !right.Missing {
		res.RightSHA256 = digest(right.Text)
	}

	if r.config.OutputDir != "" && r.renderer != nil {
		out, err := r.writeRendered(task.path, result)
		if err != nil {
			log.Error(ctx, "Failed to write rendered comparison", err, logging.Fields{"path": task.path})
			task.fail(err)
			return
		}
		res.Output = out
	}

	log.Debug(ctx, "File compared", logging.Fields{
		"path":    task.path,
		"status":  res.Status,
		"changed": result.Stats.Changed,
	})
	task.complete(res)
}

// sideFailure returns an error when a side failed for a reason other than
// the file being absent, or when the file exists on neither side
func sideFailure(left, right storage.Side) error {
	switch {
	case left.Missing && !errors.Is(left.Err, storage.ErrNotFound):
		return fmt.Errorf("left: %w", left.Err)
	case right.Missing && !errors.Is(right.Err, storage.ErrNotFound):
		return fmt.Errorf("right: %w", right.Err)
	case left.Missing && right.Missing:
		return fmt.Errorf("%s: %w on both sides", left.Path, storage.ErrNotFound)
	}
	return nil
}

func (r *Runner) writeRendered(rel string, result *models.Result) (string, error) {
	out := rel + r.renderer.Extension()
	full := filepath.Join(r.config.OutputDir, filepath.FromSlash(out))

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := r.renderer.Render(f, result); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to render %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}

func title(s storage.Side) string {
	return fmt.Sprintf("%s [%s]", s.Path, s.Source)
}

func digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
