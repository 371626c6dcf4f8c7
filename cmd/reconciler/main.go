package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/healthmate/internal/config"
	"github.com/geocoder89/healthmate/internal/db"
	"github.com/geocoder89/healthmate/internal/observability"
	"github.com/geocoder89/healthmate/internal/reconcile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env).With("component", "reconciler")
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	prom := observability.NewProm(prometheus.NewRegistry())

	stores, err := db.Open(ctx, cfg, prom, log)
	if err != nil {
		log.Error("store open failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer stores.Close()

	r := reconcile.New(stores.Users, stores.Spots, log, prom)

	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	mux.Handle("/", r.HealthHandler())

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := healthSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()

	c := cron.New()

	_, err = c.AddFunc(cfg.ReconcileSchedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		_, _ = r.RunOnce(runCtx)
	})
	if err != nil {
		log.Error("bad reconcile schedule", "schedule", cfg.ReconcileSchedule, "err", err)
		os.Exit(1)
	}

	c.Start()
	log.Info("reconciler has started", "schedule", cfg.ReconcileSchedule, "health_port", cfg.WorkerHealthPort)

	<-ctx.Done()
	r.SetReady(false)

	// wait for a run in progress
	<-c.Stop().Done()

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("reconciler shutdown complete")
}
