package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/sim-replay-client/internal/hub"
	"github.com/DoyleJ11/sim-replay-client/internal/session"
)

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Control forwards one playback control message to the active session.
func Control(h *hub.Hub, msg session.Msg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.Inbox() <- hub.Control{Msg: msg}
		w.WriteHeader(http.StatusAccepted)
	}
}

func Subscribe(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}
		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.Subscribe{SessionID: id, Reply: reply}
		<-reply
		w.WriteHeader(http.StatusAccepted)
	}
}

func Replay(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "missing session id", http.StatusBadRequest)
			return
		}
		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.BeginReplay{SessionID: id, Reply: reply}
		<-reply
		w.WriteHeader(http.StatusAccepted)
	}
}

// State dumps the active session's view; 404 when nothing is active.
func State(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := activeView(h)
		if !ok {
			http.Error(w, "no active session", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(view)
	}
}

func Progress(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := activeView(h)
		if !ok {
			http.Error(w, "no active session", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Chunks   int     `json:"chunks"`
			Progress float64 `json:"progress"`
		}{Chunks: view.Chunks, Progress: view.Progress})
	}
}

func activeView(h *hub.Hub) (session.View, bool) {
	reply := make(chan *session.Session, 1)
	h.Inbox() <- hub.ActiveSession{Reply: reply}
	s := <-reply
	if s == nil {
		return session.View{}, false
	}
	viewReply := make(chan session.View, 1)
	s.Inbox() <- session.GetView{Reply: viewReply}
	return <-viewReply, true
}
