package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthward/exposure-core/internal/exposure"
)

// overrideRequest is the body for override endpoints. A null (or
// absent) expose clears the override.
type overrideRequest struct {
	Expose *bool `json:"expose"`
}

// filterRequest is the body for filter endpoints.
type filterRequest struct {
	Filtered bool `json:"filtered"`
}

// handleSetEntityOverride sets, flips, or clears an entity override on
// the working copy and runs propagation toward the owning device.
func (s *Server) handleSetEntityOverride(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")
	snap := s.registry.Snapshot()
	if snap.Entity(entityID) == nil {
		writeNotFound(w, "unknown entity: "+entityID)
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	var decision exposure.Decision
	s.session.Edit(func(pending *exposure.Config) {
		exposure.ApplyEntityOverride(pending, snap, entityID, req.Expose)
		decision = exposure.Resolve(snap, pending)[entityID]
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"entity_id": entityID,
		"decision":  decision,
		"dirty":     s.session.Dirty(),
	})
}

// handleSetDeviceOverride sets, flips, or clears a device override on
// the working copy and propagates implied overrides to its entities.
func (s *Server) handleSetDeviceOverride(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	snap := s.registry.Snapshot()
	if snap.Device(deviceID) == nil {
		writeNotFound(w, "unknown device: "+deviceID)
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	var affected []string
	s.session.Edit(func(pending *exposure.Config) {
		exposure.ApplyDeviceOverride(pending, snap, deviceID, req.Expose)
		for _, e := range snap.EntitiesOwnedBy(deviceID) {
			affected = append(affected, e.ID)
		}
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"entities":  affected,
		"dirty":     s.session.Dirty(),
	})
}

// handleSetEntityFilter hides or unhides an entity from bulk
// operations. Filtering never changes the entity's decision.
func (s *Server) handleSetEntityFilter(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")
	if s.registry.Snapshot().Entity(entityID) == nil {
		writeNotFound(w, "unknown entity: "+entityID)
		return
	}

	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	s.session.Edit(func(pending *exposure.Config) {
		pending.SetEntityFiltered(entityID, req.Filtered)
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"entity_id": entityID,
		"filtered":  req.Filtered,
	})
}

// handleSetDeviceFilter hides or unhides a device from bulk operations.
func (s *Server) handleSetDeviceFilter(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	if s.registry.Snapshot().Device(deviceID) == nil {
		writeNotFound(w, "unknown device: "+deviceID)
		return
	}

	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	s.session.Edit(func(pending *exposure.Config) {
		pending.SetDeviceFiltered(deviceID, req.Filtered)
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": deviceID,
		"filtered":  req.Filtered,
	})
}
