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

	"github.com/geocoder89/healthmate/internal/auth"
	"github.com/geocoder89/healthmate/internal/cache"
	"github.com/geocoder89/healthmate/internal/config"
	"github.com/geocoder89/healthmate/internal/db"
	httpx "github.com/geocoder89/healthmate/internal/http"
	"github.com/geocoder89/healthmate/internal/notifications"
	"github.com/geocoder89/healthmate/internal/observability"
	"github.com/geocoder89/healthmate/internal/redisclient"
	"github.com/geocoder89/healthmate/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	if cfg.OTelEnabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
			Endpoint:    cfg.OTelEndpoint,
			Environment: cfg.Env,
			SampleRatio: cfg.OTelSampleRatio,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	stores, err := db.Open(ctx, cfg, prom, log)
	if err != nil {
		log.Error("store open failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer stores.Close()

	if err := db.EnsureSeedUser(ctx, stores.Users, cfg); err != nil {
		log.Error("seed user failed", "err", err)
		os.Exit(1)
	}

	var listCache service.ListCache = cache.New(cfg.SpotsCacheTTL)
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.New(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn("redis unavailable, using in-process cache", "err", err)
		} else {
			defer rdb.Close()
			listCache = cache.NewRedis(rdb, cfg.SpotsCacheTTL, log)
		}
	}

	var notifier notifications.Notifier = notifications.NewLogNotifier(log)
	if cfg.SMTP.Host != "" {
		notifier = notifications.NewSMTPNotifier(notifications.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	notifier = notifications.NewProtectedNotifier(notifier, notifications.ProtectedNotifierConfig{
		Timeout:          cfg.SMTP.Timeout,
		FailureThreshold: cfg.SMTP.FailureThreshold,
		Cooldown:         cfg.SMTP.Cooldown,
	}, log)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, httpx.Services{
		Identity:  service.NewIdentity(stores.Users, tokens),
		Users:     service.NewUsers(stores.Users, tokens, notifier, log),
		Spots:     service.NewSpots(stores.Spots, listCache),
		Favorites: service.NewFavorites(stores.Users, stores.Spots),
		Ping:      stores.Ping,
		Prom:      prom,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
