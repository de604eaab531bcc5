package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DoyleJ11/sim-replay-client/internal/hub"
	"github.com/DoyleJ11/sim-replay-client/internal/session"
)

// SetupRoutes builds the local control surface with the hub injected.
func SetupRoutes(h *hub.Hub) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", State(h))
	r.Get("/progress", Progress(h))

	r.Post("/speed/up", Control(h, session.SpeedUp{}))
	r.Post("/speed/down", Control(h, session.SpeedDown{}))
	r.Post("/pause", Control(h, session.Pause{}))
	r.Post("/play", Control(h, session.Play{}))

	r.Post("/subscribe/{id}", Subscribe(h))
	r.Post("/replay/{id}", Replay(h))

	return r
}
