package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/docuchat/docuchat/internal/api/handlers"
	"github.com/docuchat/docuchat/internal/api/middleware"
	"github.com/docuchat/docuchat/internal/auth"
	"github.com/docuchat/docuchat/internal/cache"
	"github.com/docuchat/docuchat/internal/config"
	"github.com/docuchat/docuchat/internal/docsession"
	"github.com/docuchat/docuchat/internal/embedding"
	"github.com/docuchat/docuchat/internal/llm"
	"github.com/docuchat/docuchat/internal/queue"
	"github.com/docuchat/docuchat/internal/rag"
	"github.com/docuchat/docuchat/internal/vectorstore"
	"github.com/docuchat/docuchat/pkg/chunker"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
	jwt   *auth.JWTMiddleware
	llmGW llm.Gateway
}

// NewRouter wires the HTTP surface. db may be nil, in which case the
// vector store and session records live in process memory.
func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
		jwt:   auth.NewJWTMiddleware(cfg.Auth.JWTSecret),
		llmGW: llm.NewGateway(cfg.LLM),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	var store vectorstore.VectorStore
	var docs docsession.Store
	if rt.db != nil {
		var c *cache.Cache
		if rt.redis != nil {
			c = cache.NewCache(rt.redis)
		}
		store = vectorstore.NewPgVectorStore(rt.db)
		docs = docsession.NewPGStore(rt.db, c)
	} else {
		store = vectorstore.NewMemoryStore()
		docs = docsession.NewMemoryStore()
	}

	embedSvc := embedding.NewService(rt.llmGW, rt.cfg.LLM.EmbedModel)
	ragSvc := rag.NewService(store, embedSvc, docs, rt.llmGW, rag.Options{
		Chunk: chunker.Options{
			ChunkSize:    rt.cfg.RAG.ChunkSize,
			ChunkOverlap: rt.cfg.RAG.ChunkOverlap,
			Separator:    rt.cfg.RAG.Separator,
		},
		TopK:            rt.cfg.RAG.TopK,
		SessionCapacity: rt.cfg.RAG.SessionCapacity,
		ChatProvider:    rt.cfg.LLM.DefaultProvider,
		ChatModel:       rt.cfg.LLM.DefaultModel,
	})
	queueClient := queue.NewClient(rt.cfg.Redis)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.jwt.Authenticate)

		ragH := handlers.NewRAGHandler(ragSvc, queueClient)
		r.Route("/rag", func(r chi.Router) {
			r.Post("/upload", ragH.Upload)
			r.Post("/chat/{file_id}", ragH.Chat)
			r.Get("/sessions", ragH.ListSessions)
			r.Delete("/sessions/{file_id}", ragH.DeleteSession)
		})
	})

	return r
}
