package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/latbench/internal/bench"
	"github.com/wesleyorama2/latbench/internal/config"
	"github.com/wesleyorama2/latbench/internal/target"
)

type targetOptions struct {
	addr         string
	prefix       string
	mockedID     string
	backendDelay time.Duration
	logLevel     string
}

func newTargetCmd() *cobra.Command {
	opts := &targetOptions{}

	cmd := &cobra.Command{
		Use:   "target",
		Short: "Serve a local stand-in for the latency API",
		Long: `Serve answers the built-in endpoint table locally. Mocked clients get an
immediate answer, every other client waits --backend-delay first.

  latbench target --addr :8080 &
  latbench run --base-url http://localhost:8080/api/latency/`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveTarget(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", ":8080", "Listen address")
	flags.StringVar(&opts.prefix, "prefix", "/api/latency/", "Path prefix of every route")
	flags.StringVar(&opts.mockedID, "mocked-id", config.DefaultMockedClientID, "Client id treated as mocked")
	flags.DurationVar(&opts.backendDelay, "backend-delay", 20*time.Millisecond, "Delay added to backend calls")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level")
	return cmd
}

func serveTarget(cmd *cobra.Command, opts *targetOptions) error {
	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, "target")
	if err != nil {
		return err
	}

	handler := target.NewHandler(target.Options{
		Prefix:       opts.prefix,
		ClientHeader: bench.DefaultClientHeader,
		MockedID:     opts.mockedID,
		BackendDelay: opts.backendDelay,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info().Str("addr", opts.addr).Str("prefix", opts.prefix).Msg("target listening")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("target server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info().Int64("calls", handler.Calls()).Msg("target stopped")
	return nil
}
