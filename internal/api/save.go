package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hearthward/exposure-core/internal/artifact"
	"github.com/hearthward/exposure-core/internal/exposure"
	"github.com/hearthward/exposure-core/internal/infrastructure/metrics"
	"github.com/hearthward/exposure-core/internal/infrastructure/mqtt"
)

// saveResponse is the POST /config/save body on success.
type saveResponse struct {
	Revision string          `json:"revision"`
	Counts   exposure.Counts `json:"counts"`
	Filtered int             `json:"filtered"`
}

// handleSaveConfig runs the save pipeline: validate, render, write the
// artifact, persist a revision, commit the session, then notify
// subscribers. A validation failure rejects the save with the complete
// violation list and leaves everything untouched.
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	pending := s.session.Pending()
	snap := s.registry.Snapshot()

	if errs := exposure.Validate(snap, pending); len(errs) > 0 {
		writeValidationErrors(w, errs)
		return
	}

	decisions := exposure.Resolve(snap, pending)

	data, err := artifact.Render(decisions, pending.EntityConfig)
	if err != nil {
		s.logger.Error("rendering artifact", "error", err)
		writeInternalError(w, "failed to render artifact")
		return
	}

	if err := s.artifacts.Write(data); err != nil {
		s.logger.Error("writing artifact", "error", err, "path", s.artifacts.ManagedPath())
		writeInternalError(w, "failed to write artifact")
		return
	}

	revisionID, err := s.store.SaveRevision(r.Context(), pending)
	if err != nil {
		s.logger.Error("persisting revision", "error", err)
		writeInternalError(w, "failed to persist revision")
		return
	}

	s.session.Commit()

	counts, filtered := summarize(pending, decisions)
	s.logger.Info("configuration saved",
		"revision", revisionID,
		"exposed", counts.Exposed,
		"excluded", counts.Excluded,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	s.notifySaved(revisionID, counts, filtered, time.Since(start))

	writeJSON(w, http.StatusOK, saveResponse{
		Revision: revisionID,
		Counts:   counts,
		Filtered: filtered,
	})
}

// notifySaved fans the save event out to WebSocket clients, the MQTT
// bus, and the metrics store. All three are best-effort.
func (s *Server) notifySaved(revisionID string, counts exposure.Counts, filtered int, elapsed time.Duration) {
	payload := map[string]any{
		"revision": revisionID,
		"site_id":  s.siteID,
		"exposed":  counts.Exposed,
		"excluded": counts.Excluded,
	}

	s.hub.Broadcast(ChannelConfigSaved, payload)

	if s.mqtt != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			if err := s.mqtt.PublishEvent(mqtt.Topics{}.ArtifactUpdated(), data); err != nil {
				s.logger.Warn("publishing artifact event", "error", err)
			}
		}
	}

	if s.metrics != nil {
		s.metrics.WriteExposureSummary(metrics.ExposureSummary{
			SiteID:   s.siteID,
			Exposed:  counts.Exposed,
			Excluded: counts.Excluded,
			Unset:    counts.Unset,
			Filtered: filtered,
			Revision: revisionID,
		})
		s.metrics.WriteSaveDuration(s.siteID, elapsed)
	}
}

// summarize tallies decision outcomes and the filtered entity count.
func summarize(cfg *exposure.Config, decisions map[string]exposure.Decision) (exposure.Counts, int) {
	var counts exposure.Counts
	filtered := 0
	for id, d := range decisions {
		switch d.Outcome {
		case exposure.OutcomeExposed:
			counts.Exposed++
		case exposure.OutcomeExcluded:
			counts.Excluded++
		case exposure.OutcomeUnset:
			counts.Unset++
		}
		if cfg.IsEntityFiltered(id) {
			filtered++
		}
	}
	return counts, filtered
}
