package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/bet-service/analytics"
	bhttp "github.com/radieske/bet-tracker/internal/bet-service/http"
	"github.com/radieske/bet-tracker/internal/bet-service/live"
	kpub "github.com/radieske/bet-tracker/internal/bet-service/producer"
	"github.com/radieske/bet-tracker/internal/bet-service/repo"
	sharedcache "github.com/radieske/bet-tracker/internal/shared/cache"
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Storage: Postgres por padrão, memória para dev local
	var (
		store bhttp.Store
		pg    *sql.DB
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		store = repo.NewMemory()
	case "postgres":
		pg, err = db.ConnectPostgres(cfg.PostgresDSN, db.PoolOptions{
			MaxOpenConns:    cfg.PGMaxOpenConns,
			MaxIdleConns:    cfg.PGMaxIdleConns,
			ConnMaxLifetime: cfg.PGConnMaxLifetime,
		})
		if err != nil {
			log.Fatal("postgres connect", zap.Error(err))
		}
		defer pg.Close()

		pgStore := repo.NewPostgres(pg)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatal("postgres schema", zap.Error(err))
		}
		store = pgStore
	default:
		log.Fatal("unknown STORE_DRIVER", zap.String("driver", cfg.StoreDriver))
	}

	// Redis (opcional): cache do resumo
	var (
		summaryCache bhttp.SummaryCache = analytics.Noop{}
		rdb          *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb, err = sharedcache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		summaryCache = analytics.NewRedisCache(rdb, cfg.SummaryCacheTTL)
	}

	// Eventos bet_changes: websocket sempre; Kafka quando configurado.
	// Com Redis, o websocket passa pelo Pub/Sub para alcançar todas as instâncias.
	hub := live.NewHub(log, live.AllowOrigins(cfg.CORSOrigins))
	var publ kpub.Fanout
	if rdb != nil {
		publ = append(publ, live.NewRedisRelay(rdb))
		live.StartRedisSubscriber(ctx, rdb, hub, log)
	} else {
		publ = append(publ, hub)
	}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		writer := kafka.NewWriter(brokers, cfg.TopicBetChanges)
		defer writer.Close()
		publ = append(publ, kpub.NewKafkaPublisher(writer))
		log.Info("publishing bet changes", zap.Strings("brokers", brokers), zap.String("topic", cfg.TopicBetChanges))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	api := bhttp.NewServer(log, store, summaryCache, publ, metrics.NewHTTPMetrics(reg), bhttp.Options{
		AppName:     cfg.AppName,
		AppVersion:  cfg.AppVersion,
		APIPrefix:   cfg.APIPrefix,
		CORSOrigins: cfg.CORSOrigins,
		Stream:      hub,
	})
	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// metrics/health
	health := func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return err
		}
		if rdb != nil {
			return rdb.Ping(ctx).Err()
		}
		return nil
	}
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, reg, health, func(err error) {
		log.Error("metrics server", zap.Error(err))
	})
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	errCh := make(chan error, 1)
	go func() {
		log.Info("bet-service listening", zap.String("addr", apiSrv.Addr), zap.String("store", cfg.StoreDriver))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("api server", zap.Error(err))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer stop()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("api shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics shutdown", zap.Error(err))
	}
	log.Info("bet-service stopped")
}
