package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hearthward/exposure-core/internal/artifact"
)

// migrationRequest is the POST /migration body.
type migrationRequest struct {
	Action string `json:"action"`
}

// Migration actions.
const (
	migrationActionImport = "import"
	migrationActionSkip   = "skip"
)

// handleMigration resolves the first-run foreign configuration. Import
// parses the foreign assistant config into the working copy (backing
// the file up first); skip dismisses it. Either way the offer is gone
// afterwards.
func (s *Server) handleMigration(w http.ResponseWriter, r *http.Request) {
	var req migrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	switch req.Action {
	case migrationActionSkip:
		s.markMigrationDone()
		writeJSON(w, http.StatusOK, map[string]any{"status": "skipped"})

	case migrationActionImport:
		s.handleMigrationImport(w)

	default:
		writeBadRequest(w, "action must be \"import\" or \"skip\"")
	}
}

func (s *Server) handleMigrationImport(w http.ResponseWriter) {
	data, err := s.artifacts.ReadForeign()
	if err != nil {
		if errors.Is(err, artifact.ErrNoForeignConfig) {
			writeNotFound(w, "no foreign configuration found")
			return
		}
		s.logger.Error("reading foreign configuration", "error", err)
		writeInternalError(w, "failed to read foreign configuration")
		return
	}

	cfg, conflicts, err := artifact.ImportForeign(data, s.defaultDomains)
	if err != nil {
		writeBadRequest(w, "foreign configuration does not parse")
		return
	}
	if len(conflicts) > 0 {
		writeValidationErrors(w, conflicts)
		return
	}

	if err := s.artifacts.BackupForeign(); err != nil {
		s.logger.Error("backing up foreign configuration", "error", err)
		writeInternalError(w, "failed to back up foreign configuration")
		return
	}

	s.session.ReplacePending(cfg)
	s.markMigrationDone()

	s.logger.Info("foreign configuration imported",
		"overrides", len(cfg.EntityOverrides),
		"entity_config", len(cfg.EntityConfig),
	)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "imported",
		"pending": s.session.Pending(),
	})
}
