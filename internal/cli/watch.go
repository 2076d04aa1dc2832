package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/sidediff/pkg/logging"
	"github.com/sdejongh/sidediff/pkg/output"
	"github.com/sdejongh/sidediff/pkg/watch"
)

// WatchFlags holds watch command flag values
type WatchFlags struct {
	engineFlags
	LeftTitle  string
	RightTitle string
	Out        string
}

var watchFlags WatchFlags

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch LEFT RIGHT",
		Short: "Re-render a comparison whenever the left file changes",
		Long: `Render LEFT against RIGHT into --out, then render again every time LEFT is
saved. RIGHT is re-read on every render, locally or from --remote.
Stops on SIGINT or SIGTERM.`,
		Args: cobra.ExactArgs(2),
		RunE: runWatch,
	}

	addEngineFlags(cmd, &watchFlags.engineFlags)
	cmd.Flags().StringVar(&watchFlags.LeftTitle, "left-title", "", "left column title (default: the LEFT path)")
	cmd.Flags().StringVar(&watchFlags.RightTitle, "right-title", "", "right column title (default: the RIGHT path, prefixed with the host for --remote)")
	cmd.Flags().StringVarP(&watchFlags.Out, "out", "o", "", "file rewritten on every change (required)")
	cmd.MarkFlagRequired("out")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyEngineFlags(cmd, &watchFlags.engineFlags, cfg); err != nil {
		return err
	}
	// A fragment is not viewable on its own
	if cfg.Output.Format == "html" {
		cfg.Output.Format = "page"
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

	p, err := openPair(cfg, args[0], args[1], watchFlags.LeftTitle, watchFlags.RightTitle)
	if err != nil {
		return err
	}
	defer p.Close()

	opts := cfg.CompareOptions()
	out := watchFlags.Out
	render := func(ctx context.Context) error {
		result, err := p.compare(ctx, logger, opts)
		if err != nil {
			return err
		}
		if err := writeResult(renderer, result, out, nil); err != nil {
			return err
		}
		logger.Debug(ctx, "Comparison written", logging.Fields{
			"out":     out,
			"equal":   result.Equal,
			"changed": result.Stats.Changed,
		})
		return nil
	}

	w, err := watch.New(args[0], render, logger)
	if err != nil {
		return err
	}

	if !cfg.Output.Quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s, writing %s (Ctrl-C to stop)\n", args[0], out)
	}
	return w.Run(ctx)
}
