package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/hearthward/exposure-core/internal/exposure"
)

// configResponse is the GET /config body: the working copy, the last
// persisted document and its revision, plus session state the frontend
// needs to render its header.
type configResponse struct {
	Pending            *exposure.Config `json:"pending"`
	Persisted          *exposure.Config `json:"persisted"`
	Revision           string           `json:"revision,omitempty"`
	Dirty              bool             `json:"dirty"`
	MigrationAvailable bool             `json:"migration_available"`
}

// handleGetConfig returns the session state.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	revision := ""
	if _, rev, err := s.store.LoadLatest(r.Context()); err == nil {
		revision = rev
	} else if !errors.Is(err, exposure.ErrNoRevisions) {
		s.logger.Error("loading latest revision", "error", err)
		writeInternalError(w, "failed to load revision history")
		return
	}

	writeJSON(w, http.StatusOK, configResponse{
		Pending:            s.session.Pending(),
		Persisted:          s.session.Persisted(),
		Revision:           revision,
		Dirty:              s.session.Dirty(),
		MigrationAvailable: s.migrationAvailable(),
	})
}

// handlePutConfig replaces the pending working copy with the submitted
// document. Legacy override encodings are normalized on the way in.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body: "+err.Error())
		return
	}

	cfg, err := exposure.DecodeConfig(body)
	if err != nil {
		writeBadRequest(w, "invalid configuration document")
		return
	}

	s.session.ReplacePending(cfg)
	writeJSON(w, http.StatusOK, map[string]any{
		"pending": s.session.Pending(),
		"dirty":   s.session.Dirty(),
	})
}

// handleResetConfig discards the working copy, reloading it from the
// persisted document.
func (s *Server) handleResetConfig(w http.ResponseWriter, _ *http.Request) {
	s.session.Reset()
	writeJSON(w, http.StatusOK, map[string]any{
		"pending": s.session.Pending(),
		"dirty":   false,
	})
}
