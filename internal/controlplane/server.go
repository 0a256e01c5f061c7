package controlplane

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/timeline/internal/log"
	"github.com/fentz26/timeline/internal/models"
)

// Version is reported by /health.
var Version = "dev"

// Server provides the HTTP API for the timeline.
type Server struct {
	service *Service
	addr    string
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, addr string) *Server {
	return &Server{
		service: service,
		addr:    addr,
	}
}

// Handler builds the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Item endpoints
	mux.HandleFunc("/items", s.handleItems)
	mux.HandleFunc("/items/", s.handleItemByID)

	// Derived layout and audit trail
	mux.HandleFunc("/layout", s.handleLayout)
	mux.HandleFunc("/changes", s.handleChanges)

	mux.HandleFunc("/health", s.handleHealth)

	return logRequests(mux)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("starting timeline api", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", err)
	}
	http.Error(w, err.Error(), status)
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	OK       bool   `json:"ok"`
	DB       string `json:"db"`
	Version  string `json:"version"`
	Time     string `json:"time"`
	Items    int    `json:"items"`
	Revision int64  `json:"revision"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.service.Ping(ctx); err != nil {
		resp.OK = false
		resp.DB = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	if snap, err := s.service.Snapshot(); err == nil {
		resp.Items = len(snap.Items)
		resp.Revision = snap.Revision
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleItems handles GET /items
func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap, err := s.service.Snapshot()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleItemByID handles /items/{id}/*
func (s *Server) handleItemByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/items/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		writeError(w, ErrItemIDRequired)
		return
	}

	itemID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.getItem(w, itemID)
	case action == "rename" && r.Method == http.MethodPost:
		s.renameItem(w, r, itemID)
	case action == "reschedule" && r.Method == http.MethodPost:
		s.rescheduleItem(w, r, itemID)
	case action == "changes" && r.Method == http.MethodGet:
		s.listChanges(w, r, itemID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) getItem(w http.ResponseWriter, itemID string) {
	item, err := s.service.GetItem(itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// RenameRequest is the body of POST /items/{id}/rename.
type RenameRequest struct {
	Name string `json:"name"`
}

func (s *Server) renameItem(w http.ResponseWriter, r *http.Request, itemID string) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := s.service.RenameItem(itemID, req.Name); err != nil {
		writeError(w, err)
		return
	}
	s.getItem(w, itemID)
}

// RescheduleRequest is the body of POST /items/{id}/reschedule.
type RescheduleRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (s *Server) rescheduleItem(w http.ResponseWriter, r *http.Request, itemID string) {
	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := s.service.RescheduleItem(itemID, req.Start, req.End); err != nil {
		writeError(w, err)
		return
	}
	s.getItem(w, itemID)
}

// handleLayout handles GET /layout?strict=1
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	strict := s.service.views.Options().Strict
	if v := r.URL.Query().Get("strict"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid strict flag", http.StatusBadRequest)
			return
		}
		strict = b
	}

	data, err := s.service.LayoutJSON(r.Context(), strict)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleChanges handles GET /changes?item=&limit=
func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.listChanges(w, r, r.URL.Query().Get("item"))
}

func (s *Server) listChanges(w http.ResponseWriter, r *http.Request, itemID string) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	changes, err := s.service.Changes(itemID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if changes == nil {
		changes = []models.ChangeRecord{}
	}
	writeJSON(w, http.StatusOK, changes)
}
