// Package api provides the HTTP handlers for the tuning-profile resources.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/abhinaya/internal/store"
)

// ProfileHandler handles HTTP requests for tuning-profile resources.
type ProfileHandler struct {
	store *store.Store
}

// NewProfileHandler creates a new ProfileHandler with the given store.
func NewProfileHandler(s *store.Store) *ProfileHandler {
	return &ProfileHandler{store: s}
}

// ServeHTTP routes profile requests.
// Paths: /api/profiles, /api/profiles/{id}, /api/profiles/{id}/activate,
// /api/profiles/{id}/aliases, /api/profiles/{id}/aliases/{channel}.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	parts := strings.SplitN(path, "/", 3)
	id := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "activate":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, id)
	case "aliases":
		h.serveAliases(w, r, id, parts)
	default:
		http.NotFound(w, r)
	}
}

func (h *ProfileHandler) serveAliases(w http.ResponseWriter, r *http.Request, id string, parts []string) {
	if len(parts) == 2 {
		switch r.Method {
		case http.MethodGet:
			h.listAliases(w, r, id)
		case http.MethodPut:
			h.setAlias(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.deleteAlias(w, r, id, parts[2])
}

// Request and response types

type profileRequest struct {
	Name             string   `json:"name"`
	TiltSensitivity  *float64 `json:"tilt_sensitivity"`
	ChannelSmoothing *float64 `json:"channel_smoothing"`
	LipSyncGain      *float64 `json:"lip_sync_gain"`
	ClickCooldownMs  *int     `json:"click_cooldown_ms"`
	SwipeCooldownMs  *int     `json:"swipe_cooldown_ms"`
}

type profileResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Active           bool    `json:"active"`
	TiltSensitivity  float64 `json:"tilt_sensitivity"`
	ChannelSmoothing float64 `json:"channel_smoothing"`
	LipSyncGain      float64 `json:"lip_sync_gain"`
	ClickCooldownMs  int     `json:"click_cooldown_ms"`
	SwipeCooldownMs  int     `json:"swipe_cooldown_ms"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

type aliasRequest struct {
	Channel   string `json:"channel"`
	Parameter string `json:"parameter"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:               p.ID,
		Name:             p.Name,
		Active:           p.Active,
		TiltSensitivity:  p.TiltSensitivity,
		ChannelSmoothing: p.ChannelSmoothing,
		LipSyncGain:      p.LipSyncGain,
		ClickCooldownMs:  p.ClickCooldownMs,
		SwipeCooldownMs:  p.SwipeCooldownMs,
		CreatedAt:        p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:        p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/profiles.
func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/profiles/{id}.
func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

// create handles POST /api/profiles.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	profile := &store.Profile{
		Name:             req.Name,
		TiltSensitivity:  15.0,
		ChannelSmoothing: 0.3,
		LipSyncGain:      2.0,
		ClickCooldownMs:  500,
		SwipeCooldownMs:  800,
	}
	applyRequest(profile, &req)

	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(profile))
}

// update handles PUT /api/profiles/{id}.
func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name != "" {
		profile.Name = req.Name
	}
	applyRequest(profile, &req)

	if err := h.store.Profiles().Update(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(profile))
}

func applyRequest(p *store.Profile, req *profileRequest) {
	if req.TiltSensitivity != nil {
		p.TiltSensitivity = *req.TiltSensitivity
	}
	if req.ChannelSmoothing != nil {
		p.ChannelSmoothing = *req.ChannelSmoothing
	}
	if req.LipSyncGain != nil {
		p.LipSyncGain = *req.LipSyncGain
	}
	if req.ClickCooldownMs != nil {
		p.ClickCooldownMs = *req.ClickCooldownMs
	}
	if req.SwipeCooldownMs != nil {
		p.SwipeCooldownMs = *req.SwipeCooldownMs
	}
}

// delete handles DELETE /api/profiles/{id}.
func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// activate handles POST /api/profiles/{id}/activate.
func (h *ProfileHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().SetActive(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to activate profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// listAliases handles GET /api/profiles/{id}/aliases.
func (h *ProfileHandler) listAliases(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Profiles().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	aliases, err := h.store.Profiles().GetAliases(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list aliases")
		return
	}

	writeJSON(w, http.StatusOK, map[string]map[string]string{"aliases": aliases})
}

// setAlias handles PUT /api/profiles/{id}/aliases.
func (h *ProfileHandler) setAlias(w http.ResponseWriter, r *http.Request, id string) {
	var req aliasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Channel == "" || req.Parameter == "" {
		writeError(w, http.StatusBadRequest, "Channel and parameter are required")
		return
	}

	if _, err := h.store.Profiles().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	if err := h.store.Profiles().SetAlias(id, req.Channel, req.Parameter); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set alias")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// deleteAlias handles DELETE /api/profiles/{id}/aliases/{channel}.
func (h *ProfileHandler) deleteAlias(w http.ResponseWriter, r *http.Request, id, channel string) {
	err := h.store.Profiles().DeleteAlias(id, channel)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Alias not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete alias")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
