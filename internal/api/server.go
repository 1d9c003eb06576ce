package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JustinTDCT/organizer/internal/auth"
	"github.com/JustinTDCT/organizer/internal/config"
	"github.com/JustinTDCT/organizer/internal/jobs"
	"github.com/JustinTDCT/organizer/internal/models"
	"github.com/JustinTDCT/organizer/internal/organizer"
	"github.com/JustinTDCT/organizer/internal/repository"
)

// Server exposes the command surface of spec.md §6 over HTTP, plus the
// progress stream over WebSocket (websocket.go).
type Server struct {
	config       *config.Config
	db           *sql.DB
	auth         *auth.Validator
	controller   *jobs.Controller
	wsHub        *WSHub
	items        *repository.MediaItemRepository
	settingsRepo *repository.SettingsRepository
	scanJobs     *repository.ScanJobRepository
	organizeJobs *repository.OrganizeJobRepository
	logs         *repository.OrganizationLogRepository
	organizer    *organizer.Organizer
	router       *http.ServeMux
}

// Response is the JSON envelope every handler replies with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewServer(
	cfg *config.Config,
	database *sql.DB,
	authValidator *auth.Validator,
	controller *jobs.Controller,
	wsHub *WSHub,
	items *repository.MediaItemRepository,
	settingsRepo *repository.SettingsRepository,
	scanJobs *repository.ScanJobRepository,
	organizeJobs *repository.OrganizeJobRepository,
	logs *repository.OrganizationLogRepository,
	org *organizer.Organizer,
) *Server {
	s := &Server{
		config:       cfg,
		db:           database,
		auth:         authValidator,
		controller:   controller,
		wsHub:        wsHub,
		items:        items,
		settingsRepo: settingsRepo,
		scanJobs:     scanJobs,
		organizeJobs: organizeJobs,
		logs:         logs,
		organizer:    org,
		router:       http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) WSHub() *WSHub {
	return s.wsHub
}

func (s *Server) Router() http.Handler {
	return s.securityHeadersMiddleware(s.corsMiddleware(s.router))
}

func (s *Server) Start(port int) error {
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.Router())
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /api/v1/ws", s.handleWebSocket)

	s.router.HandleFunc("GET /api/v1/settings", s.authMiddleware(s.handleGetSettings))
	s.router.HandleFunc("PUT /api/v1/settings", s.authMiddleware(s.handleUpdateSettings))

	s.router.HandleFunc("POST /api/v1/scan", s.authMiddleware(s.handleStartScan))
	s.router.HandleFunc("POST /api/v1/organize", s.authMiddleware(s.handleStartOrganize))

	s.router.HandleFunc("GET /api/v1/media", s.authMiddleware(s.handleListMediaItems))
	s.router.HandleFunc("GET /api/v1/media/{id}", s.authMiddleware(s.handleGetMediaItem))
	s.router.HandleFunc("POST /api/v1/media/{id}/rescan", s.authMiddleware(s.handleRescanItem))
	s.router.HandleFunc("POST /api/v1/media/{id}/undo", s.authMiddleware(s.handleUndoOrganize))

	s.router.HandleFunc("GET /api/v1/stats", s.authMiddleware(s.handleGetStats))

	s.router.HandleFunc("GET /api/v1/browse", s.authMiddleware(s.handleBrowse))
}

// ──────────────────── startScan / startOrganize ────────────────────

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	jobID, err := s.controller.StartScan(settings)
	if err != nil {
		s.respondJobError(w, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, Response{Success: true, Data: map[string]string{"jobId": jobID.String()}})
}

func (s *Server) handleStartOrganize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid media item id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	settings, err := s.settingsRepo.Get()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	jobID, err := s.controller.StartOrganize(ids, settings)
	if err != nil {
		s.respondJobError(w, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, Response{Success: true, Data: map[string]string{"jobId": jobID.String()}})
}

func (s *Server) respondJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobs.ErrAlreadyRunning):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, jobs.ErrNotConfigured):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// ──────────────────── rescanItem / undoOrganize ────────────────────

func (s *Server) handleRescanItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := s.items.GetByID(id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "media item not found")
		return
	}

	if err := s.items.ResetForRescan(item.ID); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated, err := s.items.GetByID(id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: updated})
}

func (s *Server) handleUndoOrganize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := s.organizer.Undo(id); err != nil {
		switch {
		case errors.Is(err, organizer.ErrItemNotFound):
			s.respondError(w, http.StatusNotFound, err.Error())
		default:
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}

	updated, err := s.items.GetByID(id)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: updated})
}

// ──────────────────── getStats / listMediaItems ────────────────────

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.items.Stats()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: stats})
}

func (s *Server) handleGetMediaItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	item, err := s.items.GetByID(id)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "media item not found")
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

func (s *Server) handleListMediaItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filters models.ListFilters
	if t := q.Get("type"); t != "" {
		dt := models.DetectedType(t)
		filters.Type = &dt
	}
	if st := q.Get("status"); st != "" {
		is := models.ItemStatus(st)
		filters.Status = &is
	}
	filters.Search = q.Get("search")
	if cb := q.Get("confidenceBelow"); cb != "" {
		if n, err := strconv.Atoi(cb); err == nil {
			filters.ConfidenceBelow = &n
		}
	}
	filters.DuplicatesOnly = q.Get("duplicatesOnly") == "true"

	results, err := s.items.List(filters)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: results})
}

// ──────────────────── settings ────────────────────

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsRepo.Get()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: settings})
}

// updateSettingsRequest carries the plaintext catalog API key alongside the
// rest of Settings; the key is hashed before it ever reaches the repository
// and the plaintext is never persisted (spec.md §9, bcrypt at rest).
type updateSettingsRequest struct {
	models.Settings
	CatalogAPIKey string `json:"catalogApiKey,omitempty"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.settingsRepo.Get()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	req := updateSettingsRequest{Settings: *current}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings := req.Settings
	if req.CatalogAPIKey != "" {
		hash, err := config.HashCatalogAPIKey(req.CatalogAPIKey)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to hash catalog API key")
			return
		}
		settings.CatalogAPIKeyHash = hash
	}

	if err := s.settingsRepo.Update(&settings); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: &settings})
}

// ──────────────────── filesystem browser ────────────────────

// handleBrowse lists the immediate children of a directory, refusing any
// path that does not resolve under one of the configured BrowseRoots
// (spec.md §6 "Filesystem safety").
func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	requested := r.URL.Query().Get("path")
	if requested == "" {
		requested = "/"
	}

	resolved, err := filepath.Abs(requested)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}

	if !s.withinBrowseRoots(resolved) {
		s.respondError(w, http.StatusForbidden, "path outside allowed roots")
		return
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "cannot read directory")
		return
	}

	type dirEntry struct {
		Name  string `json:"name"`
		IsDir bool   `json:"isDir"`
	}
	out := make([]dirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, dirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: map[string]interface{}{
		"path":    resolved,
		"entries": out,
	}})
}

func (s *Server) withinBrowseRoots(path string) bool {
	for _, root := range s.config.BrowseRoots {
		if root == "/" {
			return true
		}
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// ──────────────────── middleware ────────────────────

func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			s.respondError(w, http.StatusUnauthorized, "missing authorization")
			return
		}
		if _, err := s.auth.ValidateToken(token); err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func (s *Server) securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ──────────────────── helpers ────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, Response{Success: true, Data: map[string]string{"status": "ok"}})
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, Response{Success: false, Error: message})
}
