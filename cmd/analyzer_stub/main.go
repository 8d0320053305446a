package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kurochkinivan/compliance_client/internal/stubserver"
)

const (
	exitCodeOK = iota
	exitCodeInputErr
	exitCodeInternalErr
)

type flags struct {
	host      string
	port      string
	stepDelay time.Duration
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	exitCode, err := Run(ctx, log)
	if err != nil {
		log.ErrorContext(ctx, "stub analyzer stopped", slog.String("err", err.Error()))
	}

	stop()
	os.Exit(exitCode)
}

func Run(ctx context.Context, log *slog.Logger) (int, error) {
	f := parseFlags()

	if err := f.validate(); err != nil {
		return exitCodeInputErr, fmt.Errorf("invalid flags: %w", err)
	}

	handler := stubserver.NewHandler(log, stubserver.NewStore(), f.stepDelay)
	server := stubserver.NewServer(f.host, f.port, handler)

	erg, ctx := errgroup.WithContext(ctx)

	erg.Go(func() error {
		log.InfoContext(ctx, "starting stub analyzer",
			slog.String("addr", net.JoinHostPort(f.host, f.port)),
			slog.Duration("step_delay", f.stepDelay),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}

		return nil
	})

	erg.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := erg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return exitCodeInternalErr, err
	}

	log.InfoContext(ctx, "stub analyzer stopped gracefully")

	return exitCodeOK, nil
}

func parseFlags() *flags {
	f := &flags{}
	flag.StringVar(&f.host, "host", "localhost", "address to listen on")
	flag.StringVar(&f.port, "port", "8001", "port to listen on")
	flag.DurationVar(&f.stepDelay, "step-delay", 2*time.Second, "delay between simulated analysis phases")
	flag.Parse()
	return f
}

func (f *flags) validate() error {
	if f.port == "" {
		return errors.New("port is required")
	}

	if f.stepDelay <= 0 {
		return errors.New("step-delay must be positive")
	}

	return nil
}
