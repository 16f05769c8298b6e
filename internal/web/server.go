package web

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"math"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/hpungsan/shogun/internal/ops"
)

// APIPrefix is where the REST routes live.
const APIPrefix = "/wp-json/shogun-slogans/v1"

//go:embed templates/*.html
var templateFS embed.FS

// NewHandler builds the router for the REST API, the preview stream, the
// gallery and /metrics. A nil gatherer serves the default registry.
func NewHandler(env *ops.Env, version string, gatherer prometheus.Gatherer) http.Handler {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("failed to create template sub-FS: %v", err))
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := &Handlers{
		env:      env,
		renderer: NewRenderer(templateSub, version),
		limiter:  newLimiter(env.Config.PreviewRateLimit),
		logger:   log.With(env.Logger, "component", "web"),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}

	r := mux.NewRouter()
	r.Use(h.instrument)

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.HandleFunc("/animations", h.HandleListAnimations).Methods(http.MethodGet)
	api.HandleFunc("/animations/{name}", h.HandleGetAnimation).Methods(http.MethodGet)
	api.Handle("/generate-css", h.requireEditor(http.HandlerFunc(h.HandleGenerateCSS))).Methods(http.MethodPost)
	api.HandleFunc("/css/{animation:[a-zA-Z0-9_-]+}", h.HandleCSS).Methods(http.MethodGet)
	api.Handle("/preview", h.requireEditor(h.rateLimited(http.HandlerFunc(h.HandlePreview)))).Methods(http.MethodPost)
	api.Handle("/preview/stream", h.requireEditor(h.rateLimited(http.HandlerFunc(h.HandleStream)))).Methods(http.MethodGet)
	api.Handle("/cache/clear", h.requireAdmin(http.HandlerFunc(h.HandleClearCache))).Methods(http.MethodPost)

	r.HandleFunc("/", h.HandleGallery).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return securityHeaders(r)
}

// NewServer creates and configures the HTTP server.
func NewServer(env *ops.Env, version, bind string, port int, gatherer prometheus.Gatherer) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(bind, strconv.Itoa(port)),
		Handler:           NewHandler(env, version, gatherer),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// newLimiter allows perSecond requests per second with a matching burst.
// A non-positive rate disables limiting.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(math.Ceil(perSecond))
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// securityHeaders adds security-related HTTP headers to all responses.
// The gallery inlines the compiled animation CSS, so inline styles are allowed.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// instrument records request durations by method, route template and status.
func (h *Handlers) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := h.env.Metrics
		if m == nil {
			next.ServeHTTP(w, r)
			return
		}
		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger log.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	level.Info(logger).Log("msg", "shogun server running", "addr", "http://"+srv.Addr)

	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.HasPrefix(srv.Addr, "[::]") || strings.HasPrefix(srv.Addr, ":") {
		level.Warn(logger).Log("msg", "server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		level.Info(logger).Log("msg", "shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
