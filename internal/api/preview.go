package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/hearthward/exposure-core/internal/exposure"
)

// handlePreview resolves and previews a configuration against the
// current topology. An empty body previews the pending working copy;
// otherwise the submitted document is previewed without touching the
// session.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body: "+err.Error())
		return
	}

	cfg := s.session.Pending()
	if len(bytes.TrimSpace(body)) > 0 {
		cfg, err = exposure.DecodeConfig(body)
		if err != nil {
			writeBadRequest(w, "invalid configuration document")
			return
		}
	}

	snap := s.registry.Snapshot()
	decisions := exposure.Resolve(snap, cfg)
	preview := exposure.BuildPreview(snap, decisions, s.session.Persisted(), cfg)

	writeJSON(w, http.StatusOK, preview)
}
