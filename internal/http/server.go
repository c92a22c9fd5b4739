// Package http serves the dashboard page, its JSON API, the XLSX export and
// the operational endpoints.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"transferdash/internal/log"
	"transferdash/internal/metrics"
	"transferdash/internal/middleware/ratelimit"
	"transferdash/internal/middleware/security"
	"transferdash/internal/middleware/trace"
	"transferdash/internal/refresh"
	"transferdash/internal/sheets"
	appweb "transferdash/web"
)

// StateReader is the read side of the refresher.
type StateReader interface {
	Current() refresh.State
	Interval() time.Duration
}

// Options configures the server. Zero values pick defaults.
type Options struct {
	Addr            string
	Logger          *log.Logger
	Metrics         *metrics.Metrics
	ExportRateLimit int
	// Records, when set, is read by the export so the workbook reflects the
	// freshest cached data. Failures fall back to the published snapshot.
	Records         sheets.TransferReader
	Location        *time.Location
	Now             func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	state     StateReader
	records   sheets.TransferReader
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter
	clientIP  *security.ClientIP
	logger    *log.Logger
	loc       *time.Location
	now       func() time.Time
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware.
func NewServer(state StateReader, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		state:    state,
		records:  opts.Records,
		metrics:  opts.Metrics,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.ExportRateLimit}),
		clientIP: security.NewClientIP(),
		logger:   opts.Logger.WithComponent(log.ComponentHTTP),
		loc:      opts.Location,
		now:      opts.Now,
	}
	s.started = s.now()

	t, err := template.New("").Funcs(templateFuncs(s.loc)).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.limiter.Stop()
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	handler, err := s.routes()
	if err != nil {
		s.limiter.Stop()
		return nil, err
	}
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() (http.Handler, error) {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.PathPrefix("/static/").Handler(
		security.StaticAssetMiddleware(3600)(http.StripPrefix("/static/", http.FileServer(http.FS(static)))),
	).Methods(http.MethodGet, http.MethodHead)

	r.Handle("/", security.NoStore(http.HandlerFunc(s.handleDashboard))).Methods(http.MethodGet, http.MethodHead)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(security.NoStore)
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/agents/{name}", s.handleAgent).Methods(http.MethodGet)
	api.HandleFunc("/trend", s.handleTrend).Methods(http.MethodGet)

	limit := s.limiter.Middleware(s.clientIP.Extract, func(r *http.Request, ip string) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
			WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, ip, log.FieldPath, r.URL.Path)
	})
	r.Handle("/export.xlsx", limit(http.HandlerFunc(s.handleExport))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	var h http.Handler = r
	h = handlers.CompressHandler(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	h = trace.NewMiddleware(s.logger, s.clientIP.Extract).Middleware(h)
	return h, nil
}

// recoveryLogger adapts the logger to gorilla's RecoveryHandlerLogger.
type recoveryLogger struct{ logger *log.Logger }

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("Recovered from panic", log.FieldError, fmt.Sprint(v...))
}

// Shutdown stops the HTTP server and the limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
