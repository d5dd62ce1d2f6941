package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/docuchat/docuchat/internal/cache"
	"github.com/docuchat/docuchat/internal/config"
	"github.com/docuchat/docuchat/internal/database"
	"github.com/docuchat/docuchat/internal/docsession"
	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/llm"
	"github.com/docuchat/docuchat/internal/queue"
	"github.com/docuchat/docuchat/internal/queue/workers"
	"github.com/docuchat/docuchat/internal/rag"
	"github.com/docuchat/docuchat/internal/vectorstore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database required for worker", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	store := vectorstore.NewPgVectorStore(db)
	docs := docsession.NewPGStore(db, cache.NewCache(rdb))
	gw := llm.NewGateway(cfg.LLM)
	embedSvc := embedding.NewService(gw, cfg.LLM.EmbedModel)
	ragSvc := rag.NewService(store, embedSvc, docs, gw, rag.Options{})

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	purgeWorker := workers.NewPurgeWorker(ragSvc)
	registry.Register(queue.TypeDocumentPurge, asynq.HandlerFunc(purgeWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
