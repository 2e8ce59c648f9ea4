package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetplanner/internal/cache"
	"budgetplanner/internal/core"
	"budgetplanner/internal/log"
	"budgetplanner/internal/middleware/ratelimit"
	"budgetplanner/internal/middleware/security"
	"budgetplanner/internal/middleware/trace"
	"budgetplanner/internal/services"
)

const (
	tokenCacheSize    = 1000
	tokenCacheTTL     = 5 * time.Minute
	cacheSweepPeriod  = 10 * time.Minute
	readinessDeadline = 2 * time.Second
)

// Services groups the application services the API exposes.
type Services struct {
	Accounts     *services.AccountService
	Budgets      *services.BudgetService
	Invitations  *services.InvitationService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	History      *services.HistoryService
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the middleware stack.
type Options struct {
	AllowedOrigins []string
	// TrustedProxies are CIDRs whose forwarding headers are honored, in
	// addition to loopback and private ranges.
	TrustedProxies []string
	// RateLimit is the number of requests per minute allowed per client IP.
	RateLimit int
	Logger    *log.Logger
}

type Server struct {
	http.Server
	svc     Services
	auth    *authenticator
	store   Pinger
	logger  *log.Logger
	events  *log.StructuredLogger
	limiter *ratelimit.Limiter
	caches  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// Callers must call Shutdown to stop background goroutines.
func NewServer(addr string, svc Services, tokens TokenVerifier, store Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	tokenCache := cache.NewLRUCache[core.Identity](tokenCacheSize, tokenCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(tokenCache)
	caches.StartCleanup(cacheSweepPeriod)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		svc:     svc,
		auth:    newAuthenticator(tokens, tokenCache),
		store:   store,
		logger:  logger,
		events:  log.NewStructuredLogger(logger),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}),
		caches:  caches,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}
	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ClientIP, s.onRateLimited)(h)
	h = security.NewCORS(opts.AllowedOrigins).Middleware(h)
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.NewMiddleware(logger, detector.ClientIP).Middleware(h)
	s.Handler = h

	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/verify-email", s.handleVerifyEmail)
	mux.HandleFunc("GET /api/me", s.requireAuth(s.handleMe))
	mux.HandleFunc("PUT /api/users/profile", s.requireAuth(s.handleUpdateProfile))

	mux.HandleFunc("POST /api/budgets", s.requireAuth(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets", s.requireAuth(s.handleListBudgets))
	mux.HandleFunc("GET /api/budgets/{id}", s.requireAuth(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.requireAuth(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.requireAuth(s.handleDeleteBudget))
	mux.HandleFunc("GET /api/budgets/{id}/members", s.requireAuth(s.handleListMembers))

	mux.HandleFunc("POST /api/budgets/{id}/invite", s.requireAuth(s.handleInvite))
	mux.HandleFunc("GET /api/invitations", s.requireAuth(s.handleListInvitations))
	mux.HandleFunc("POST /api/invitations/{id}/respond", s.requireAuth(s.handleRespondInvitation))

	mux.HandleFunc("POST /api/budgets/{id}/categories", s.requireAuth(s.handleCreateCategory))
	mux.HandleFunc("GET /api/budgets/{id}/categories", s.requireAuth(s.handleListCategories))
	mux.HandleFunc("PUT /api/categories/{id}", s.requireAuth(s.handleUpdateCategory))

	mux.HandleFunc("POST /api/budgets/{id}/transactions", s.requireAuth(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/budgets/{id}/transactions", s.requireAuth(s.handleListTransactions))
	mux.HandleFunc("PUT /api/transactions/{id}", s.requireAuth(s.handleUpdateTransaction))

	mux.HandleFunc("GET /api/budgets/{id}/history", s.requireAuth(s.handleListHistory))
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	_ = NewJSONResponse().Status(http.StatusTooManyRequests).Error("rate limit exceeded, try again later").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_ = NewJSONResponse().Body(map[string]string{
		"service": "budgetplanner",
		"status":  "running",
	}).Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessDeadline)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", log.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
