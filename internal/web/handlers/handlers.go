package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/contactbook/internal/database"
	"github.com/saltyorg/contactbook/internal/maintenance"
)

// VersionInfo holds application version information
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Handlers contains all HTTP handlers
type Handlers struct {
	db          *database.DB
	contacts    *database.ContactRepository
	scheduler   *maintenance.Scheduler
	versionInfo VersionInfo
	versionMu   sync.RWMutex
}

// New creates a new Handlers instance
func New(db *database.DB) *Handlers {
	return &Handlers{
		db:       db,
		contacts: database.NewContactRepository(db),
	}
}

// SetScheduler sets the maintenance scheduler reported by the health endpoint
func (h *Handlers) SetScheduler(s *maintenance.Scheduler) {
	h.scheduler = s
}

// SetVersionInfo sets the application version information
func (h *Handlers) SetVersionInfo(version, commit, date string) {
	// Keep the raw value when the date is not RFC3339
	formattedDate := date
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		formattedDate = t.UTC().Format(time.DateTime)
	}

	h.versionMu.Lock()
	h.versionInfo = VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    formattedDate,
	}
	h.versionMu.Unlock()
}

// getVersionInfo returns a copy of the version info (thread-safe)
func (h *Handlers) getVersionInfo() VersionInfo {
	h.versionMu.RLock()
	defer h.versionMu.RUnlock()
	return h.versionInfo
}

type maintenanceStatus struct {
	LastRun *time.Time `json:"last_run,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string             `json:"status"`
	Driver      string             `json:"driver"`
	Contacts    int64              `json:"contacts"`
	Version     VersionInfo        `json:"version"`
	Maintenance *maintenanceStatus `json:"maintenance,omitempty"`
}

// Health reports whether the store is reachable
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	count, err := h.contacts.Count(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Health check failed")
		h.jsonError(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := healthResponse{
		Status:   "ok",
		Driver:   h.db.Driver(),
		Contacts: count,
		Version:  h.getVersionInfo(),
	}
	if h.scheduler != nil {
		status := h.scheduler.Status()
		resp.Maintenance = &maintenanceStatus{LastRun: status.LastRun, NextRun: status.NextRun}
		if status.LastErr != nil {
			resp.Maintenance.Error = status.LastErr.Error()
		}
	}

	h.jsonResponse(w, resp, http.StatusOK)
}

// Version returns the build information
func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	h.jsonResponse(w, h.getVersionInfo(), http.StatusOK)
}

// storageError maps a repository error to a response
func (h *Handlers) storageError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.jsonError(w, "Contact not found", http.StatusNotFound)
	case errors.Is(err, database.ErrInvalidContact):
		h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, database.ErrNotConnected):
		h.jsonError(w, "Database unavailable", http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Msg("Failed to " + action)
		h.jsonError(w, "Failed to "+action, http.StatusInternalServerError)
	}
}

// jsonResponse encodes v with the given status
func (h *Handlers) jsonResponse(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write response")
	}
}

// jsonError sends a JSON error response
func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	h.jsonResponse(w, map[string]string{"error": message}, status)
}

// jsonSuccess sends a JSON success response
func (h *Handlers) jsonSuccess(w http.ResponseWriter, message string) {
	h.jsonResponse(w, map[string]any{"success": true, "message": message}, http.StatusOK)
}
