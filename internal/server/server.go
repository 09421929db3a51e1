package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/HerbHall/adminlist/docs"
	"github.com/HerbHall/adminlist/internal/dataprovider"
	"github.com/HerbHall/adminlist/internal/listcontroller"
	"github.com/HerbHall/adminlist/internal/listparams"
	"github.com/HerbHall/adminlist/internal/navstate"
	"github.com/HerbHall/adminlist/internal/version"
)

// ListDefaults apply to lists whose create request leaves a setting out.
type ListDefaults struct {
	PerPage       int
	Sort          listparams.Sort
	Debounce      time.Duration
	PerPagePolicy listparams.PerPagePolicy
	FetchTimeout  time.Duration
}

// Deps are the collaborators shared by every list the server opens.
type Deps struct {
	Provider    dataprovider.Provider
	Snapshot    navstate.Reader
	ParamsStore listparams.ParamsStore
	Inbox       *listcontroller.Inbox
	Selections  *listcontroller.Selections
	Metrics     *listcontroller.Metrics
	Defaults    ListDefaults
}

// Server is the AdminList HTTP API.
type Server struct {
	httpServer *http.Server
	deps       Deps
	notifier   listcontroller.Notifier
	sessions   *Sessions
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a new Server instance.
func New(addr string, deps Deps, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Inbox == nil {
		deps.Inbox = listcontroller.NewInbox(listcontroller.DefaultInboxSize)
	}
	if deps.Selections == nil {
		deps.Selections = listcontroller.NewSelections()
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      logRequests(logger, mux),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps: deps,
		notifier: listcontroller.Notifiers{
			listcontroller.NewLogNotifier(logger.Named("notify")),
			deps.Inbox,
		},
		sessions: NewSessions(logger.Named("sessions")),
		logger:   logger,
		mux:      mux,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/notifications", s.handleNotifications)

	s.mux.HandleFunc("GET /api/v1/lists", s.handleListSessions)
	s.mux.HandleFunc("POST /api/v1/lists", s.handleCreateList)
	s.mux.HandleFunc("GET /api/v1/lists/{id}", s.handleGetList)
	s.mux.HandleFunc("DELETE /api/v1/lists/{id}", s.handleDeleteList)

	s.mux.HandleFunc("PUT /api/v1/lists/{id}/page", s.handleSetPage)
	s.mux.HandleFunc("PUT /api/v1/lists/{id}/per-page", s.handleSetPerPage)
	s.mux.HandleFunc("PUT /api/v1/lists/{id}/sort", s.handleSetSort)
	s.mux.HandleFunc("PUT /api/v1/lists/{id}/filters", s.handleSetFilters)
	s.mux.HandleFunc("PUT /api/v1/lists/{id}/filters/{name}", s.handleShowFilter)
	s.mux.HandleFunc("DELETE /api/v1/lists/{id}/filters/{name}", s.handleHideFilter)
	s.mux.HandleFunc("GET /api/v1/lists/{id}/location", s.handleGetLocation)
	s.mux.HandleFunc("PUT /api/v1/lists/{id}/location", s.handleSetLocation)

	s.mux.HandleFunc("PUT /api/v1/lists/{id}/selection", s.handleSelect)
	s.mux.HandleFunc("POST /api/v1/lists/{id}/selection/toggle", s.handleToggle)
	s.mux.HandleFunc("DELETE /api/v1/lists/{id}/selection", s.handleClearSelection)

	s.mux.HandleFunc("POST /api/v1/lists/{id}/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /api/v1/lists/{id}/export", s.handleExport)

	if s.deps.Metrics != nil {
		s.mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}

	docs.SwaggerInfo.BasePath = "/api/v1"
	s.mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
	))
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Sessions returns the open-list registry.
func (s *Server) Sessions() *Sessions { return s.sessions }

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, then closes every open list.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	err := s.httpServer.Shutdown(ctx)
	s.sessions.CloseAll()
	return err
}

// handleHealth reports liveness and the number of open lists.
//
//	@Summary		Health check
//	@Tags			system
//	@Produce		json
//	@Success		200 {object} map[string]any
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "adminlist",
		"version": version.Map(),
		"lists":   len(s.sessions.All()),
	})
}

//	@Summary		Recent notifications
//	@Tags			system
//	@Produce		json
//	@Success		200 {array} listcontroller.Notification
//	@Router			/notifications [get]
func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Inbox.List())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-AdminList-Version", version.Short())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
