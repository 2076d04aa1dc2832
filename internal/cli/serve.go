package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/spf13/cobra"

	"github.com/sdejongh/sidediff/pkg/config"
	"github.com/sdejongh/sidediff/pkg/logging"
	"github.com/sdejongh/sidediff/pkg/storage"
)

// ServeFlags holds serve command flag values
type ServeFlags struct {
	Root    string
	Listen  string
	MaxSkew time.Duration
}

var serveFlags ServeFlags

// shutdownTimeout bounds how long in-flight fetches may finish after a signal
const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve texts to a counterpart host",
		Long: `Serve the files below --root to counterpart hosts running compare, batch or
watch with --remote. Every request must be signed with the shared secret
(remote.secret or ` + config.SecretEnv + `).`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveFlags.Root, "root", "", "directory to serve (default: serve.root)")
	cmd.Flags().StringVar(&serveFlags.Listen, "listen", "", "listen address (default: serve.listen)")
	cmd.Flags().DurationVar(&serveFlags.MaxSkew, "max-skew", 0, "maximum accepted request clock skew (default: serve.max_skew)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("root") {
		cfg.Serve.Root = serveFlags.Root
	}
	if cmd.Flags().Changed("listen") {
		cfg.Serve.Listen = serveFlags.Listen
	}
	if cmd.Flags().Changed("max-skew") {
		cfg.Serve.MaxSkew = serveFlags.MaxSkew
	}
	applyGlobalFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	ln, err := net.Listen("tcp", cfg.Serve.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return serve(ctx, ln, cfg, logger)
}

// serve answers signed fetches on ln until ctx is cancelled or the process
// receives SIGINT or SIGTERM. ln is closed on return.
func serve(ctx context.Context, ln net.Listener, cfg *config.Config, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if cfg.Remote.Secret == "" {
		ln.Close()
		return fmt.Errorf("a shared secret is required to serve (set remote.secret or %s)", config.SecretEnv)
	}
	if err := requireDir(cfg.Serve.Root, "serve root"); err != nil {
		ln.Close()
		return err
	}

	local, err := storage.NewLocal(cfg.Serve.Root)
	if err != nil {
		ln.Close()
		return err
	}
	defer local.Close()

	mux := http.NewServeMux()
	mux.Handle(storage.RawPrefix, storage.NewHandler(local, []byte(cfg.Remote.Secret), cfg.Serve.MaxSkew, logger))

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group
	{
		g.Add(func() error {
			logger.Info(ctx, "Serving texts", logging.Fields{
				"addr": ln.Addr().String(),
				"root": local.Root(),
			})
			return server.Serve(ln)
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn(ctx, "Server shutdown incomplete", logging.Fields{"error": err.Error()})
			}
		})
	}
	{
		g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))
	}

	err = g.Run()

	var sigErr run.SignalError
	switch {
	case errors.As(err, &sigErr):
		logger.Info(ctx, "Stopping server", logging.Fields{"signal": sigErr.Signal.String()})
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, http.ErrServerClosed):
		return nil
	default:
		return err
	}
}
