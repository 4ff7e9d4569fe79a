package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/planboard/internal/telemetry"
)

// NewRouter wires the REST endpoints and, when ws is non-nil, the floor
// WebSocket at /ws/floors/{floorID}.
func NewRouter(h *Handler, ws http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(telemetry.Middleware)
	r.Use(telemetry.Recover)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/floors", h.ListFloors).Methods("GET")
	api.HandleFunc("/floors/{floorID}", h.PutFloor).Methods("PUT")
	api.HandleFunc("/floors/{floorID}/image", h.FloorImage).Methods("GET")
	api.HandleFunc("/floors/{floorID}/draws", h.ListDraws).Methods("GET")
	api.HandleFunc("/floors/{floorID}/draws", h.CreateDraws).Methods("POST")
	api.HandleFunc("/draws/{drawID}", h.UpdateDraw).Methods("PATCH")
	api.HandleFunc("/draws", h.DeleteDraws).Methods("DELETE")
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	if ws != nil {
		r.Handle("/ws/floors/{floorID}", ws)
	}
	return r
}
