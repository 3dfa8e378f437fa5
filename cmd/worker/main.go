package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/carpool/config"
	"github.com/Domenick1991/carpool/internal/auth"
	"github.com/Domenick1991/carpool/internal/bootstrap"
	"github.com/Domenick1991/carpool/internal/email"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/realtime"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/retry"
	"github.com/Domenick1991/carpool/internal/service/notify"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if !cfg.Kafka.Enabled() {
		log.Fatalf("worker requires kafka.brokers")
	}
	logger := logging.NewLogger(cfg.Log.Level).With("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store repository.NotificationRepository
	if cfg.Storage.Driver == config.StorageMemory {
		store = repository.NewMemoryNotificationRepository()
	} else {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		store = repository.NewNotificationRepository(pool)
	}

	hub := realtime.NewHub(logger)
	service := notify.NewNotificationService(store, notify.Fallback{
		Realtime: hub,
		Deferred: email.NewSender(nil, logger),
	}, logger, notify.WithRetryPolicy(retry.Policy{
		Attempts:  cfg.Ledger.MaxAttempts,
		BaseDelay: cfg.Ledger.BaseDelay,
		MaxDelay:  retry.DefaultPolicy().MaxDelay,
	}))

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EventsTopic, logger)
	defer consumer.Close()

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- consumer.Consume(ctx, service.Handle)
	}()

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws/{user_id}", func(w http.ResponseWriter, req *http.Request) {
		userID := mux.Vars(req)["user_id"]
		caller, err := verifier.Verify(req.URL.Query().Get("token"))
		if err != nil || caller != userID {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		hub.ServeWS(w, req, userID)
	})

	httpCfg := cfg.HTTP
	httpCfg.Address = cfg.Worker.Address
	// Websocket sessions outlive any write timeout.
	httpCfg.WriteTimeout = 0

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- bootstrap.Run(ctx, httpCfg, r, logger)
	}()

	select {
	case err := <-consumeErr:
		if err != nil && ctx.Err() == nil {
			logger.Error("consumer stopped", "error", err)
			stop()
		}
		<-serveErr
	case err := <-serveErr:
		if err != nil {
			logger.Error("server error", "error", err)
		}
		stop()
		<-consumeErr
	}
	logger.Info("worker stopped")
}
