package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mangopay-card-gateway/internal/config"
	"mangopay-card-gateway/internal/domain/ports/adapter"
	"mangopay-card-gateway/internal/domain/ports/repository"
	evts "mangopay-card-gateway/internal/infra/adapters/events"
	"mangopay-card-gateway/internal/infra/adapters/mango"
	pg "mangopay-card-gateway/internal/infra/db/postgres"
	"mangopay-card-gateway/internal/infra/logging"
	"mangopay-card-gateway/internal/infra/metrics"
	red "mangopay-card-gateway/internal/infra/redis"
	"mangopay-card-gateway/internal/infra/web"
	"mangopay-card-gateway/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	sessionStore := red.NewSessionStore(redisClient, cfg.Redis.SessionTTL.Std())
	locker := red.NewLocker(redisClient)

	// ---- MangoPay ----
	mangoClient, err := mango.NewClient(cfg.Mango.ClientID, cfg.Mango.APIKey, cfg.Mango.Sandbox)
	if err != nil {
		log.Fatalf("mango client: %v", err)
	}

	// ---- Audit log (optional) ----
	var auditLog repository.RegistrationLog
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		auditLog = pg.NewRegistrationLogRepo(pool)
	} else {
		logger.Warn().Msg("database.url not set; registration audit log disabled")
	}

	// ---- Events ----
	dispatcher := evts.NewDispatcher(logger)
	for _, name := range []string{
		adapter.EventRegistrationValidated,
		adapter.EventRegistrationErrorInValidating,
		adapter.EventRegistrationError,
	} {
		dispatcher.Subscribe(name, func(_ context.Context, e adapter.RegistrationEvent) {
			logger.Info().
				Str("event", e.Name).
				Str("session_id", e.Session.SessionID).
				Str("registration_id", e.Registration.ID).
				Str("card_id", e.Registration.CardID).
				Msg("card registration resolved")
		})
	}

	// ---- Coordinator ----
	regUC := usecase.NewRegistrationUseCase(
		mangoClient,
		sessionStore,
		locker,
		dispatcher,
		auditLog,
		cfg.Callback.ReturnURL,
		logger,
	)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Server.APISecret, cfg.Server.TokenTTL.Std())
	srv := web.NewServer(regUC, auth, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	// ---- Shutdown ----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("stopped")
}
