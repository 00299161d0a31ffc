package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/bet-service/domain"
	"github.com/radieske/bet-tracker/internal/bet-service/dto"
	"github.com/radieske/bet-tracker/internal/shared/metrics"
	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

// Store é o armazenamento de apostas (repo.Postgres ou repo.Memory)
type Store interface {
	Create(ctx context.Context, b domain.Bet) (domain.Bet, error)
	Get(ctx context.Context, id int64) (domain.Bet, error)
	List(ctx context.Context, f domain.Filter, offset, limit int) ([]domain.Bet, error)
	Update(ctx context.Context, id int64, p domain.BetPatch) (domain.Bet, error)
	Replace(ctx context.Context, id int64, b domain.Bet) (domain.Bet, error)
	Delete(ctx context.Context, id int64) error
	Summary(ctx context.Context) (domain.Summary, error)
	Ping(ctx context.Context) error
}

// SummaryCache guarda o resumo entre mutações (analytics.RedisCache ou Noop)
type SummaryCache interface {
	GetSummary(ctx context.Context) (domain.Summary, bool, error)
	SetSummary(ctx context.Context, s domain.Summary) error
	Invalidate(ctx context.Context) error
}

// Publisher recebe o evento de cada mutação (producer.Fanout com Kafka e o
// hub de websocket)
type Publisher interface {
	Publish(ctx context.Context, e events.BetChanged) error
}

type Options struct {
	AppName     string
	AppVersion  string
	APIPrefix   string
	CORSOrigins []string
	Stream      http.Handler // GET /ws/bets; nil desliga
}

type Server struct {
	log   *zap.Logger
	store Store
	cache SummaryCache
	publ  Publisher
	http  *metrics.HTTPMetrics
	opts  Options
	now   func() time.Time
}

func NewServer(log *zap.Logger, s Store, c SummaryCache, p Publisher, m *metrics.HTTPMetrics, opts Options) *Server {
	return &Server{
		log:   log,
		store: s,
		cache: c,
		publ:  p,
		http:  m,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Router monta as rotas públicas; /bets fica sob o API_PREFIX
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if s.http != nil {
		r.Use(s.http.Middleware)
	}
	r.Use(s.requestLog)

	r.Get("/", s.root)
	r.Get("/health", s.health)
	if s.opts.Stream != nil {
		r.Get("/ws/bets", s.opts.Stream.ServeHTTP)
	}

	r.Route(s.opts.APIPrefix+"/bets", func(r chi.Router) {
		r.Post("/", s.createBet)
		r.Get("/", s.listBets)
		r.Get("/analytics/summary", s.summary) // antes de /{id}
		r.Get("/{id}", s.getBet)
		r.Patch("/{id}", s.patchBet)
		r.Put("/{id}", s.replaceBet)
		r.Delete("/{id}", s.deleteBet)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// requestLog registra cada requisição depois de respondida
func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &metrics.StatusWriter{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.Status),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.RootResponse{
		Message: "Welcome to " + s.opts.AppName,
		Version: s.opts.AppVersion,
		Status:  "healthy",
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.log.Warn("health: store ping failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, dto.HealthResponse{Status: "unhealthy", Service: s.opts.AppName})
		return
	}
	writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "healthy", Service: s.opts.AppName})
}
