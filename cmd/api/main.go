package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/agent"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment/repo"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/relay"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/templates"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/metrics"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/utilities"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile, addr string
	flags := pflag.NewFlagSet("enrollment-api", pflag.ContinueOnError)
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	flags.StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	// best-effort: a missing file leaves the real environment in charge
	_ = godotenv.Load(envFile)

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer lg.Sync()
	sugar := lg.Sugar()
	sugar.Info("starting enrollment service")

	dbCfg := database.ConfigFromEnv()
	db, err := database.Open(dbCfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repo.NewEnrollmentRepo(db)
	if err := store.EnsureTables(ctx); err != nil {
		return fmt.Errorf("ensure tables: %w", err)
	}
	sugar.Infow("enrollment storage ready", "driver", dbCfg.Driver)

	m := metrics.New(prometheus.DefaultRegisterer)
	gw := agent.NewHTTPGateway(agent.ConfigFromEnv(), sugar, m)
	events := relay.New(relay.ConfigFromEnv(), sugar, m)

	httpCfg := router.ConfigFromEnv()
	if addr != "" {
		httpCfg.Addr = addr
	}
	handler := router.RegisterRoutes(sugar, httpCfg, router.Deps{
		Agent:      agent.NewHandler(gw, sugar),
		Enrollment: enrollment.NewHandler(enrollment.NewService(gw, store, sugar, m), sugar),
		Templates:  templates.NewHandler(templates.NewAggregator(store, sugar, m), sugar),
		Events:     events,
		Metrics:    promhttp.Handler(),
		Health:     db.PingContext,
	})
	srv := &http.Server{
		Addr:              httpCfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sugar.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return events.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		sugar.Info("shutting down")
		// observers hold hijacked connections that Shutdown does not wait for
		events.Close()
		doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(doneCtx); err != nil {
			sugar.Warnw("http server shutdown failed", "err", err)
		}
		return nil
	})

	err = g.Wait()
	sugar.Info("goodbye")
	return err
}
