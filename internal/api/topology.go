package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/hearthward/exposure-core/internal/topology"
)

// deviceView is a device annotated with how many entities it owns.
type deviceView struct {
	topology.Device
	EntityCount int `json:"entity_count"`
}

// topologyResponse is the GET /topology body.
type topologyResponse struct {
	Entities []topology.Entity `json:"entities"`
	Devices  []deviceView      `json:"devices"`
	Areas    []topology.Area   `json:"areas"`
}

// handleGetTopology returns the current topology snapshot.
func (s *Server) handleGetTopology(w http.ResponseWriter, _ *http.Request) {
	snap := s.registry.Snapshot()

	devices := make([]deviceView, 0, len(snap.Devices))
	for _, d := range snap.Devices {
		devices = append(devices, deviceView{
			Device:      d,
			EntityCount: len(snap.EntitiesOwnedBy(d.ID)),
		})
	}

	entities := snap.Entities
	if entities == nil {
		entities = []topology.Entity{}
	}
	areas := snap.Areas
	if areas == nil {
		areas = []topology.Area{}
	}

	writeJSON(w, http.StatusOK, topologyResponse{
		Entities: entities,
		Devices:  devices,
		Areas:    areas,
	})
}

// handlePutTopology replaces the topology from a full snapshot document.
// The body shares its shape with the MQTT snapshot payload.
func (s *Server) handlePutTopology(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body: "+err.Error())
		return
	}

	if err := s.registry.UpdateFromJSON(r.Context(), body); err != nil {
		if errors.Is(err, topology.ErrInvalidSnapshot) {
			writeBadRequest(w, "invalid snapshot document")
			return
		}
		s.logger.Error("topology update failed", "error", err)
		writeInternalError(w, "failed to persist topology")
		return
	}

	snap := s.registry.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"entities": len(snap.Entities),
		"devices":  len(snap.Devices),
		"areas":    len(snap.Areas),
	})
}
