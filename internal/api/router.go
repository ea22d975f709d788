// Package api exposes the session surface the rendering and debugging
// collaborators poll: cue lookups, segment window enumeration, buffered
// ranges, and a websocket cue feed.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"streamplane/internal/logger"
	"streamplane/internal/models"
	"streamplane/internal/session"
)

type API struct {
	sessionMgr *session.Manager
	logger     logger.Logger
}

// New builds the HTTP handler over the session manager.
func New(sessionMgr *session.Manager, log logger.Logger) http.Handler {
	api := &API{sessionMgr: sessionMgr, logger: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /streams/{streamId}/reps/{repId}/cue", api.handleCue)
	mux.HandleFunc("GET /streams/{streamId}/reps/{repId}/segments", api.handleSegments)
	mux.HandleFunc("GET /streams/{streamId}/reps/{repId}/buffered", api.handleBuffered)
	mux.HandleFunc("GET /streams/{streamId}/reps/{repId}/feed", api.handleFeed)
	mux.HandleFunc("GET /streams/{streamId}/status", api.handleStatus)

	return mux
}

// cuePayload is the JSON shape of a served cue.
type cuePayload struct {
	Start   float64     `json:"start"`
	End     float64     `json:"end"`
	Payload interface{} `json:"payload"`
}

func cueToPayload(c *models.Cue) cuePayload {
	return cuePayload{Start: c.Start, End: c.End, Payload: c.Payload}
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) *session.StreamSession {
	streamId := r.PathValue("streamId")
	sess, err := a.sessionMgr.GetOrCreateSession(streamId)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get session: %v", err), http.StatusNotFound)
		return nil
	}
	return sess
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing query parameter %q", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid query parameter %q: %w", name, err)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (a *API) handleCue(w http.ResponseWriter, r *http.Request) {
	sess := a.getSession(w, r)
	if sess == nil {
		return
	}
	t, err := queryFloat(r, "t")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	cue, err := sess.CueAt(r.PathValue("repId"), t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if cue == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, cueToPayload(cue))
}

func (a *API) handleSegments(w http.ResponseWriter, r *http.Request) {
	sess := a.getSession(w, r)
	if sess == nil {
		return
	}
	from, err := queryFloat(r, "from")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	to, err := queryFloat(r, "to")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	segs, err := sess.SegmentsIn(r.PathValue("repId"), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, segs)
}

func (a *API) handleBuffered(w http.ResponseWriter, r *http.Request) {
	sess := a.getSession(w, r)
	if sess == nil {
		return
	}
	ranges, err := sess.BufferedRanges(r.PathValue("repId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, ranges)
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess := a.getSession(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, map[string]interface{}{
		"stream":          sess.StreamID,
		"playhead":        sess.Playhead(),
		"representations": sess.Representations(),
	})
}
