package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sdejongh/sidediff/pkg/compare"
	"github.com/sdejongh/sidediff/pkg/config"
	"github.com/sdejongh/sidediff/pkg/logging"
	"github.com/sdejongh/sidediff/pkg/models"
	"github.com/sdejongh/sidediff/pkg/output"
	"github.com/sdejongh/sidediff/pkg/storage"
)

// CompareFlags holds compare command flag values
type CompareFlags struct {
	engineFlags
	LeftTitle  string
	RightTitle string
	Out        string
}

var compareFlags CompareFlags

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare LEFT RIGHT",
		Short: "Render a side-by-side comparison of two texts",
		Long: `Compare two texts line by line and render them side by side, highlighting
the characters that differ on changed lines.

Without --remote both arguments are local files. With --remote, LEFT is a local
file and RIGHT is a path below the root served by the counterpart host.

Exit status is 0 when the texts are identical, 1 when they differ and 2 on error.`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}

	addEngineFlags(cmd, &compareFlags.engineFlags)
	cmd.Flags().StringVar(&compareFlags.LeftTitle, "left-title", "", "left column title (default: the LEFT path)")
	cmd.Flags().StringVar(&compareFlags.RightTitle, "right-title", "", "right column title (default: the RIGHT path, prefixed with the host for --remote)")
	cmd.Flags().StringVarP(&compareFlags.Out, "out", "o", "", "write output to file instead of stdout")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyEngineFlags(cmd, &compareFlags.engineFlags, cfg); err != nil {
		return err
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	renderer, err := output.NewRenderer(cfg.Output.Format)
	if err != nil {
		return err
	}

	p, err := openPair(cfg, args[0], args[1], compareFlags.LeftTitle, compareFlags.RightTitle)
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.compare(ctx, logger, cfg.CompareOptions())
	if err != nil {
		return err
	}

	if err := writeResult(renderer, result, compareFlags.Out, cmd.OutOrStdout()); err != nil {
		return err
	}

	logger.Info(ctx, "Comparison complete", logging.Fields{
		"left":    args[0],
		"right":   args[1],
		"equal":   result.Equal,
		"rows":    len(result.Rows),
		"changed": result.Stats.Changed,
	})

	if result.Equal {
		exit(0)
	} else {
		exit(1)
	}
	return nil
}

// pair is the two sides of a single comparison
type pair struct {
	left, right           storage.Fetcher
	leftPath, rightPath   string
	leftTitle, rightTitle string
}

// openPair resolves LEFT to a local file and RIGHT to a local file or, when a
// remote URL is configured, to a path on the counterpart host
func openPair(cfg *config.Config, leftArg, rightArg, leftTitle, rightTitle string) (*pair, error) {
	p := &pair{leftTitle: leftTitle, rightTitle: rightTitle}
	if p.leftTitle == "" {
		p.leftTitle = leftArg
	}
	if p.rightTitle == "" {
		p.rightTitle = rightArg
	}

	left, leftPath, err := openLocalFile(leftArg)
	if err != nil {
		return nil, fmt.Errorf("left: %w", err)
	}
	p.left, p.leftPath = left, leftPath

	if cfg.Remote.URL != "" {
		remote, err := newRemote(cfg.Remote)
		if err != nil {
			return nil, err
		}
		p.right, p.rightPath = remote, rightArg
		if rightTitle == "" {
			p.rightTitle = remote.Name() + ":" + rightArg
		}
		return p, nil
	}

	right, rightPath, err := openLocalFile(rightArg)
	if err != nil {
		return nil, fmt.Errorf("right: %w", err)
	}
	p.right, p.rightPath = right, rightPath
	return p, nil
}

// openLocalFile returns a fetcher rooted at the file's directory and the file's name
func openLocalFile(path string) (*storage.Local, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve path: %w", err)
	}
	local, err := storage.NewLocal(filepath.Dir(abs))
	if err != nil {
		return nil, "", err
	}
	return local, filepath.Base(abs), nil
}

// compare loads both sides and runs the engine. A side that does not exist
// is compared as empty text; any other fetch failure is an error.
func (p *pair) compare(ctx context.Context, logger logging.Logger, opts []compare.Option) (*models.Result, error) {
	left := storage.Load(ctx, p.left, p.leftPath)
	right := storage.Load(ctx, p.right, p.rightPath)

	for _, side := range []struct {
		name string
		s    storage.Side
	}{{"left", left}, {"right", right}} {
		if !side.s.Missing {
			continue
		}
		if !errors.Is(side.s.Err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", side.name, side.s.Err)
		}
		logger.Warn(ctx, "Side not found, comparing against empty text", logging.Fields{
			"side":   side.name,
			"source": side.s.Source,
			"path":   side.s.Path,
		})
	}

	opts = append(append([]compare.Option{}, opts...), compare.WithTitles(p.leftTitle, p.rightTitle))
	return compare.Compare(left.Text, right.Text, opts...), nil
}

// Close releases both fetchers
func (p *pair) Close() error {
	return errors.Join(p.left.Close(), p.right.Close())
}

// writeResult renders to stdout, or to out through a temporary file so a
// reader never observes a partial document
func writeResult(renderer output.Renderer, result *models.Result, out string, stdout io.Writer) error {
	if out == "" {
		return renderer.Render(stdout, result)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp := out + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := renderer.Render(f, result); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to render: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp, out); err != nil {
		return fmt.Errorf("failed to replace output file: %w", err)
	}
	return nil
}
