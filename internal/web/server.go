package web

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/vbonduro/poseidon/internal/auth"
	"github.com/vbonduro/poseidon/internal/domain"
	"github.com/vbonduro/poseidon/internal/metrics"
	"github.com/vbonduro/poseidon/internal/service"
	"github.com/vbonduro/poseidon/internal/validation"
	"golang.org/x/time/rate"
)

// Services are the per-entity services the server exposes.
type Services struct {
	Bids        *service.BidService
	CurvePoints *service.CurvePointService
	Ratings     *service.RatingService
	Rules       *service.RuleService
	Trades      *service.TradeService
	Users       *service.UserService
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// Options carries the server's non-service dependencies.
type Options struct {
	Sessions   *auth.Sessions
	Metrics    *metrics.Metrics
	DB         pinger
	Env        string
	LoginRate  rate.Limit
	LoginBurst int
}

type Server struct {
	services  Services
	templates fs.FS
	router    *mux.Router
	handler   http.Handler
	sessions  *auth.Sessions
	metrics   *metrics.Metrics
	db        pinger
	env       string
	limiter   *loginLimiter
	validator *validation.Validator
	tmplFuncs template.FuncMap
	logger    zerolog.Logger
}

func NewServer(svcs Services, tmpl fs.FS, opts Options, logger zerolog.Logger) *Server {
	s := &Server{
		services:  svcs,
		templates: tmpl,
		router:    mux.NewRouter(),
		sessions:  opts.Sessions,
		metrics:   opts.Metrics,
		db:        opts.DB,
		env:       opts.Env,
		limiter:   newLoginLimiter(opts.LoginRate, opts.LoginBurst),
		validator: validation.New(),
		logger:    logger,
		tmplFuncs: template.FuncMap{
			"inc": func(i int) int { return i + 1 },
		},
	}
	s.registerRoutes()

	resolver := auth.NewResolver(s.sessions, svcs.Users, http.HandlerFunc(s.handleUnavailable), logger)
	s.handler = requestLogger(logger, securityHeaders(resolver.Wrap(s.router)))
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(s.metrics.Instrument)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "The requested page does not exist.")
	})
	// Route middleware never runs on a method mismatch, so the login
	// redirect for anonymous callers is repeated here.
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	static, err := fs.Sub(s.templates, "static")
	if err != nil {
		panic(err) // embedded tree is fixed at build time
	}
	r.PathPrefix("/css/").Handler(http.FileServer(http.FS(static))).Methods(http.MethodGet)

	r.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	forbidden := http.HandlerFunc(s.handleForbidden)
	anyRole := auth.RequireRole(forbidden, domain.RoleUser, domain.RoleAdmin)
	adminOnly := auth.RequireRole(forbidden, domain.RoleAdmin)

	bids := newResource(s, bidEntity, s.services.Bids)
	curvePoints := newResource(s, curvePointEntity, s.services.CurvePoints)
	ratings := newResource(s, ratingEntity, s.services.Ratings)
	rules := newResource(s, ruleEntity, s.services.Rules)
	trades := newResource(s, tradeEntity, s.services.Trades)
	users := newResource(s, userEntity, s.services.Users)

	// Longer prefixes first: "/bid" would otherwise also claim "/bidList".
	bids.register(r, "/bidList", anyRole)
	bids.register(r, "/bid", anyRole)
	curvePoints.register(r, "/curvePoint", anyRole)
	ratings.register(r, "/rating", anyRole)
	rules.register(r, "/ruleName", anyRole)
	rules.register(r, "/rule", anyRole)
	trades.register(r, "/trade", anyRole)
	users.register(r, "/user", adminOnly)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// StartCleanup evicts idle login limiters every interval until ctx ends.
func (s *Server) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.limiter.cleanup(interval)
			}
		}
	}()
}

// securityHeaders sets browser security headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; form-action 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogger tags each request with an id, stores a request-scoped logger
// in the context and logs the outcome.
func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)

		l := logger.With().Str("request_id", reqID).Logger()
		r = r.WithContext(l.WithContext(r.Context()))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("request")
	})
}

// renderPage parses and executes a full-page template set. The page is
// buffered so a template failure can still produce a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, data map[string]any, files ...string) {
	if p, ok := auth.FromContext(r.Context()); ok {
		data["Principal"] = p
	}

	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Strs("files", files).Msg("failed to parse templates")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Strs("files", files).Msg("failed to render page")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.renderPage(w, r, status, map[string]any{
		"Title":      http.StatusText(status),
		"Status":     status,
		"StatusText": http.StatusText(status),
		"Message":    message,
	}, "base.html", "pages/error.html")
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func (s *Server) handleUnavailable(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); !ok {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
		return
	}
	s.renderError(w, r, http.StatusMethodNotAllowed, "The requested method is not supported for this page.")
}

func (s *Server) handleForbidden(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusForbidden, "You are not authorized to access the requested data.")
}
