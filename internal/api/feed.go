package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// feedMessage is one tick of the cue feed. Cue is null while the playhead
// sits in a gap.
type feedMessage struct {
	Playhead float64     `json:"playhead"`
	Cue      *cuePayload `json:"cue"`
}

// handleFeed upgrades to a websocket and pushes the active cue of the
// representation on every rendering tick until the peer goes away.
func (a *API) handleFeed(w http.ResponseWriter, r *http.Request) {
	sess := a.getSession(w, r)
	if sess == nil {
		return
	}
	repId := r.PathValue("repId")

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warnf("Feed upgrade failed: %v", err)
		return
	}
	defer ws.Close()
	a.logger.Debugf("Cue feed opened for %s/%s", sess.StreamID, repId)

	// Reads are only consumed to notice the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			a.logger.Debugf("Cue feed closed for %s/%s", sess.StreamID, repId)
			return
		case <-ticker.C:
			playhead := sess.Playhead()
			cue, err := sess.CueAt(repId, playhead)
			if err != nil {
				a.logger.Warnf("Cue feed lookup failed for %s/%s: %v", sess.StreamID, repId, err)
				return
			}
			msg := feedMessage{Playhead: playhead}
			if cue != nil {
				p := cueToPayload(cue)
				msg.Cue = &p
			}
			if err := ws.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
