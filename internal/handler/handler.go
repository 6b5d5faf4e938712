package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"netcanvas/internal/canvas"
	"netcanvas/internal/domain"
	"netcanvas/internal/repository"
	"netcanvas/internal/service"
)

// MaxImportBytes bounds the body of an import request
const MaxImportBytes = 8 << 20

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MapResponse is a map with its scene
type MapResponse struct {
	domain.MapInfo
	Scene *domain.Scene `json:"scene"`
}

// SaveMapRequest creates or replaces a map
type SaveMapRequest struct {
	Name         string        `json:"name"`
	AssetBaseURL string        `json:"asset_base_url,omitempty"`
	ReadOnly     bool          `json:"read_only"`
	Scene        *domain.Scene `json:"scene"`
}

// PointerRequest is a pointer event for a session
type PointerRequest struct {
	Action service.PointerAction `json:"action"`
	canvas.Pointer
}

// KeyRequest is a key press for a session
type KeyRequest struct {
	Key canvas.Key `json:"key"`
}

// SelectRequest forces a single-node selection
type SelectRequest struct {
	NodeID string `json:"node_id"`
}

// EventResponse reports what an input event did
type EventResponse struct {
	Commands []json.RawMessage   `json:"commands"`
	Session  *service.SessionInfo `json:"session"`
}

// StatusTrigger runs the status adapters on demand
type StatusTrigger interface {
	TriggerSyncAll(ctx context.Context) error
}

// MapHandler handles map and session API requests
type MapHandler struct {
	maps     *service.MapService
	sessions *service.SessionManager
	status   StatusTrigger
}

// NewMapHandler creates a new map handler
func NewMapHandler(maps *service.MapService, sessions *service.SessionManager) *MapHandler {
	return &MapHandler{maps: maps, sessions: sessions}
}

// SetStatusTrigger enables POST /api/status/sync
func (h *MapHandler) SetStatusTrigger(t StatusTrigger) {
	h.status = t
}

// Routes registers the API on r
func (h *MapHandler) Routes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Get("/api/maps", h.ListMaps)
	r.Post("/api/import", h.Import)
	r.Get("/api/maps/{id}", h.GetMap)
	r.Put("/api/maps/{id}", h.SaveMap)
	r.Delete("/api/maps/{id}", h.DeleteMap)
	r.Post("/api/maps/{id}/import", h.Import)
	r.Get("/api/maps/{id}/export", h.Export)
	r.Post("/api/maps/{id}/sessions", h.OpenSession)

	r.Get("/api/sessions", h.ListSessions)
	r.Get("/api/sessions/{sid}", h.GetSession)
	r.Delete("/api/sessions/{sid}", h.CloseSession)
	r.Post("/api/sessions/{sid}/pointer", h.Pointer)
	r.Post("/api/sessions/{sid}/key", h.Key)
	r.Post("/api/sessions/{sid}/select", h.Select)
	r.Get("/api/sessions/{sid}/frame.png", h.Frame)

	r.Post("/api/status/sync", h.TriggerStatus)
}

// Health reports that the server is up
func (h *MapHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// ListMaps returns metadata for every map
func (h *MapHandler) ListMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := h.maps.ListMaps(r.Context())
	if err != nil {
		log.Printf("Failed to list maps: %v", err)
		writeError(w, "Failed to list maps", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, maps, http.StatusOK)
}

// GetMap returns a map with its scene
func (h *MapHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	info, err := h.maps.GetMap(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get map", err)
		return
	}
	scene, err := h.maps.GetScene(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get scene", err)
		return
	}

	writeJSON(w, MapResponse{MapInfo: *info, Scene: scene}, http.StatusOK)
}

// SaveMap creates or replaces a map
func (h *MapHandler) SaveMap(w http.ResponseWriter, r *http.Request) {
	var req SaveMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Scene == nil {
		req.Scene = domain.NewScene()
	}

	info := domain.NewMapInfo(chi.URLParam(r, "id"), req.Name)
	info.AssetBaseURL = req.AssetBaseURL
	info.ReadOnly = req.ReadOnly

	if err := h.maps.SaveMap(r.Context(), info, req.Scene); err != nil {
		log.Printf("Failed to save map %s: %v", info.ID, err)
		writeError(w, "Failed to save map", err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, info, http.StatusOK)
}

// DeleteMap deletes a map
func (h *MapHandler) DeleteMap(w http.ResponseWriter, r *http.Request) {
	if err := h.maps.DeleteMap(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, "Failed to delete map", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Import stores a document posted as the request body. The format comes
// from the "format" query parameter and defaults to yaml.
func (h *MapHandler) Import(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "yaml"
	}

	body := http.MaxBytesReader(w, r.Body, MaxImportBytes)
	info, err := h.maps.Import(r.Context(), chi.URLParam(r, "id"), format, body)
	if err != nil {
		log.Printf("Failed to import map: %v", err)
		writeError(w, "Failed to import map", err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, info, http.StatusCreated)
}

// Export writes a map as a document
func (h *MapHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "yaml"
	}

	contentType, ext := exportContentType(format)
	if contentType == "" {
		writeError(w, "Unsupported format", format, http.StatusBadRequest)
		return
	}

	if _, err := h.maps.GetMap(r.Context(), id); err != nil {
		writeServiceError(w, "Failed to export map", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", id, ext))
	if err := h.maps.Export(r.Context(), id, format, w); err != nil {
		log.Printf("Failed to export map %s: %v", id, err)
	}
}

// OpenSession creates a canvas session on a map
func (h *MapHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to open session", err)
		return
	}

	writeJSON(w, info, http.StatusCreated)
}

// ListSessions returns every open session
func (h *MapHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.sessions.List(), http.StatusOK)
}

// GetSession returns the state of a session
func (h *MapHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	info, err := h.sessions.Info(chi.URLParam(r, "sid"))
	if err != nil {
		writeServiceError(w, "Failed to get session", err)
		return
	}

	writeJSON(w, info, http.StatusOK)
}

// CloseSession ends a session
func (h *MapHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sid")); err != nil {
		writeServiceError(w, "Failed to close session", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Pointer delivers a pointer event
func (h *MapHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	sid := chi.URLParam(r, "sid")
	cmds, err := h.sessions.Pointer(r.Context(), sid, req.Action, req.Pointer)
	h.writeEventResult(w, sid, cmds, err)
}

// Key delivers a key press
func (h *MapHandler) Key(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Key == "" {
		writeError(w, "Invalid key", "key is required", http.StatusBadRequest)
		return
	}

	sid := chi.URLParam(r, "sid")
	cmds, err := h.sessions.Key(r.Context(), sid, req.Key)
	h.writeEventResult(w, sid, cmds, err)
}

// Select forces a single-node selection
func (h *MapHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	sid := chi.URLParam(r, "sid")
	err := h.sessions.SelectNode(r.Context(), sid, req.NodeID)
	h.writeEventResult(w, sid, nil, err)
}

// Frame returns the session's current picture
func (h *MapHandler) Frame(w http.ResponseWriter, r *http.Request) {
	sid := chi.URLParam(r, "sid")
	if _, err := h.sessions.Info(sid); err != nil {
		writeServiceError(w, "Failed to render frame", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.sessions.Frame(r.Context(), sid, w); err != nil {
		log.Printf("Failed to render frame for %s: %v", sid, err)
	}
}

// TriggerStatus starts a status probe round in the background
func (h *MapHandler) TriggerStatus(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		writeError(w, "Status poller disabled", "", http.StatusServiceUnavailable)
		return
	}

	go func() {
		if err := h.status.TriggerSyncAll(context.Background()); err != nil {
			log.Printf("Status sync failed: %v", err)
		}
	}()

	writeJSON(w, map[string]string{"status": "started"}, http.StatusAccepted)
}

func (h *MapHandler) writeEventResult(w http.ResponseWriter, sid string, cmds []domain.Command, err error) {
	if err != nil {
		writeServiceError(w, "Failed to handle event", err)
		return
	}

	resp := EventResponse{Commands: make([]json.RawMessage, 0, len(cmds))}
	for _, cmd := range cmds {
		data, err := domain.EncodeCommand(cmd)
		if err != nil {
			log.Printf("Failed to encode command %s: %v", cmd.Type(), err)
			continue
		}
		resp.Commands = append(resp.Commands, json.RawMessage(data))
	}

	// The session can be gone when a command deleted its map
	if info, err := h.sessions.Info(sid); err == nil {
		resp.Session = info
	}

	writeJSON(w, resp, http.StatusOK)
}

func exportContentType(format string) (string, string) {
	switch format {
	case "json":
		return "application/json", "json"
	case "yaml", "yml":
		return "application/x-yaml", "yaml"
	case "ansible", "ansible-inventory":
		return "application/x-yaml", "inventory.yaml"
	}
	return "", ""
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeServiceError maps service errors to HTTP status codes
func writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrSessionNotFound):
		writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrReadOnly):
		writeError(w, "Map is read-only", err.Error(), http.StatusConflict)
	default:
		log.Printf("%s: %v", msg, err)
		writeError(w, msg, err.Error(), http.StatusBadRequest)
	}
}
