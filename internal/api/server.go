package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kjannette/quotegraph/internal/controller"
	"github.com/kjannette/quotegraph/internal/graph"
	"github.com/kjannette/quotegraph/internal/loader"
	"github.com/kjannette/quotegraph/internal/logx"
	"github.com/kjannette/quotegraph/internal/models"
	"go.uber.org/zap"
)

// largest PNG edge served by /v1/graph.png
const maxImageSize = 4096

// Server is the HTTP shell. It receives controller output through the
// controller.Shell methods and serves it as JSON.
type Server struct {
	ctrl       *controller.Controller
	httpServer *http.Server
	log        *zap.Logger

	mu        sync.Mutex
	drawing   *graph.Drawing
	options   []string
	lastError string
}

func NewServer(port int, corsOrigin string, log *zap.Logger) *Server {
	s := &Server{log: logx.OrNop(log).Named("api")}

	mux := http.NewServeMux()

	// Source routes
	mux.HandleFunc("GET /v1/sources", s.handleSources)
	mux.HandleFunc("POST /v1/sources/{name}/select", s.handleSelect)

	// Graph routes
	mux.HandleFunc("GET /v1/graph", s.handleGraph)
	mux.HandleFunc("PUT /v1/graph/kind/{kind}", s.handleSetKind)
	mux.HandleFunc("GET /v1/graph.png", s.handleGraphPNG)
	mux.HandleFunc("GET /v1/series", s.handleSeries)

	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      corsMiddleware(mux, corsOrigin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Bind attaches the controller the handlers act on.
func (s *Server) Bind(c *controller.Controller) { s.ctrl = c }

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	fmt.Printf("[API] Quote graph server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- controller.Shell ---

func (s *Server) SetGraph(d *graph.Drawing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drawing = d
	s.lastError = ""
}

func (s *Server) SetSourceOptions(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = append([]string(nil), names...)
}

func (s *Server) ShowError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

func (s *Server) view() (*graph.Drawing, []string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawing, s.options, s.lastError
}

// --- middleware ---

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- validation helpers ---

// parseDimension reads a positive pixel size from the query, falling back
// to def when the parameter is absent.
func parseDimension(r *http.Request, key string, def float64) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", graph.ErrInvalidViewport, key, v)
	}
	if n > maxImageSize {
		n = maxImageSize
	}
	return float64(n), nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, loader.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrEmptySeries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, graph.ErrUnknownKind), errors.Is(err, graph.ErrInvalidViewport):
		return http.StatusBadRequest
	case errors.Is(err, loader.ErrConnection), errors.Is(err, loader.ErrFileNotFound),
		errors.Is(err, loader.ErrNoData):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeControllerError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), controller.UserMessage(err))
}
