package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/bet-service/repo"
	"github.com/radieske/bet-tracker/internal/bet-service/seed"
	"github.com/radieske/bet-tracker/internal/shared/config"
	"github.com/radieske/bet-tracker/internal/shared/db"
	"github.com/radieske/bet-tracker/internal/shared/logger"
)

func main() {
	clearFirst := flag.Bool("clear", true, "delete existing bets before seeding")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New("seed", cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN, db.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := repo.NewPostgres(pg)
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("postgres schema", zap.Error(err))
	}

	created, err := seed.Run(ctx, store, time.Now().UTC(), *clearFirst)
	if err != nil {
		log.Fatal("seed failed", zap.Int("created", len(created)), zap.Error(err))
	}

	log.Info("seed completed", zap.Int("created", len(created)), zap.Bool("cleared", *clearFirst))
	for _, line := range seed.NewReport(created).Lines() {
		log.Info(line)
	}
}
