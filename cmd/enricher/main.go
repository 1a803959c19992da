package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"distress/internal/audit"
	"distress/internal/enrichment"
	"distress/internal/enrichment/disambig"
	"distress/internal/enrichment/metrics"
	"distress/internal/platform/config"
	"distress/internal/platform/httpserver"
	"distress/internal/platform/logger"
	"distress/internal/platform/postgres"
	platformredis "distress/internal/platform/redis"
	"distress/internal/property"
	"distress/internal/registry"
	transport "distress/internal/transport/http"
)

// main wires dependencies and keeps the server lifecycle small. Resolution
// logic lives in internal/enrichment.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("property index unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	met := metrics.New()

	chClient := registry.NewClient(cfg.CompaniesHouseURL, cfg.CompaniesHouseAPIKey,
		registry.WithLogger(log))
	var searcher registry.Searcher = chClient
	if redisClient != nil {
		searcher = registry.NewCachedSearcher(redisClient.Client, chClient, config.SearchCacheTTL, log)
	}

	assistant := disambig.NewAnthropicClient(cfg.AnthropicURL, cfg.AnthropicAPIKey,
		disambig.WithLogger(log))

	machine, err := enrichment.NewMachine(searcher, chClient, assistant,
		property.NewPostgresStore(db),
		enrichment.WithLogger(log),
		enrichment.WithMetrics(met),
	)
	if err != nil {
		log.Error("machine construction failed", "error", err)
		os.Exit(1)
	}

	var publisher audit.Publisher = audit.NewMemoryPublisher()
	var kafkaPublisher *audit.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err = audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OutcomeTopic, log)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		publisher = kafkaPublisher
	}

	service, err := enrichment.NewService(machine,
		enrichment.WithServiceLogger(log),
		enrichment.WithServiceMetrics(met),
		enrichment.WithAuditPublisher(publisher),
		enrichment.WithWorkers(cfg.Workers),
	)
	if err != nil {
		log.Error("service construction failed", "error", err)
		os.Exit(1)
	}

	var health []transport.HealthChecker
	if redisClient != nil {
		health = append(health, redisClient)
	}
	handler := transport.NewHandler(service, log, health...)
	srv := httpserver.New(cfg.Addr, transport.NewRouter(handler))

	log.Info("starting enricher", "addr", cfg.Addr, "workers", cfg.Workers)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(shutdownCtx); err != nil {
			log.Warn("outcome publisher close failed", "error", err)
		}
	}
}
