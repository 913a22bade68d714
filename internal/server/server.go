package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/skillmesh/ai-orchestrator/internal/registry"
	"github.com/skillmesh/ai-orchestrator/internal/routing"
	"github.com/skillmesh/ai-orchestrator/internal/transparency"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Server exposes the engine's two narrow interfaces over HTTP: submit a task,
// query transparency. Everything else about the surrounding product's route
// layer lives elsewhere.
type Server struct {
	router     *routing.Router
	registry   *registry.Registry
	reporter   *transparency.Reporter
	httpServer *http.Server
	logger     *logrus.Logger
	config     *Config
}

// Config holds server configuration.
type Config struct {
	Port           string        `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

// New creates a server instance.
func New(router *routing.Router, reg *registry.Registry, reporter *transparency.Reporter, config *Config, logger *logrus.Logger) *Server {
	return &Server{
		router:   router,
		registry: reg,
		reporter: reporter,
		config:   config,
		logger:   logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:           ":" + s.config.Port,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	s.logger.WithField("port", s.config.Port).Info("Starting orchestrator server")
	return s.httpServer.ListenAndServe()
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping orchestrator server")
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/tasks", s.handleSubmitTask).Methods(http.MethodPost)
	r.HandleFunc("/v1/transparency", s.handleAggregateReport).Methods(http.MethodGet)
	r.HandleFunc("/v1/transparency/{id}", s.handleTransparencyRecord).Methods(http.MethodGet)
	r.HandleFunc("/v1/providers", s.handleProviders).Methods(http.MethodGet)
	return r
}

// submitRequest is the submit-task wire shape.
type submitRequest struct {
	Kind    types.TaskKind `json:"kind"`
	Payload map[string]any `json:"payload"`
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Kind == "" {
		s.writeError(w, http.StatusBadRequest, "kind is required")
		return
	}

	resp, err := s.router.Submit(r.Context(), req.Kind, req.Payload)
	if err != nil {
		var classErr *types.ClassificationError
		if errors.As(err, &classErr) {
			s.writeError(w, http.StatusBadRequest, classErr.Error())
			return
		}
		s.logger.WithError(err).Error("Task submission failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAggregateReport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.reporter.Report())
}

func (s *Server) handleTransparencyRecord(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, ok := s.reporter.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no transparency record for request "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.registry.Health())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
