package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/bet-audit/consumer"
	"github.com/radieske/bet-tracker/internal/bet-audit/repository"
	"github.com/radieske/bet-tracker/internal/shared/config"
	"github.com/radieske/bet-tracker/internal/shared/db"
	"github.com/radieske/bet-tracker/internal/shared/kafka"
	"github.com/radieske/bet-tracker/internal/shared/logger"
	"github.com/radieske/bet-tracker/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the audit worker")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN, db.PoolOptions{
		MaxOpenConns:    cfg.PGMaxOpenConns,
		MaxIdleConns:    cfg.PGMaxIdleConns,
		ConnMaxLifetime: cfg.PGConnMaxLifetime,
	})
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	audit := repository.NewPostgresRepo(pg)
	if err := audit.EnsureSchema(ctx); err != nil {
		log.Fatal("audit schema", zap.Error(err))
	}

	// consumer group bet-audit; mensagens inválidas vão para a DLQ
	reader := kafka.NewReader(brokers, cfg.TopicBetChanges, cfg.AuditConsumerGroup)
	defer reader.Close()
	dlq := kafka.NewWriter(brokers, cfg.TopicBetChangesDLQ)
	defer dlq.Close()

	reg := prometheus.NewRegistry()
	wm := metrics.NewWorkerMetrics(reg, cfg.ServiceName)
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bet_audit_duplicates_total",
		Help: "Redelivered events already present in the audit log.",
	})
	reg.MustRegister(duplicates)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Store:       audit,
		DLQ:         dlq,
		OnConsumed:  func() { wm.Consumed.Inc() },
		OnPersist:   func() { wm.Persisted.Inc() },
		OnDuplicate: func() { duplicates.Inc() },
		OnError:     func(phase string) { wm.Errors.WithLabelValues(phase).Inc() },
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, pg.PingContext, func(err error) {
		log.Error("metrics server", zap.Error(err))
	})

	log.Info("bet-audit-worker started",
		zap.String("topic", cfg.TopicBetChanges),
		zap.String("group", cfg.AuditConsumerGroup),
		zap.String("metrics", metricsSrv.Addr),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("bet-audit-worker stopped")
}
