// Package api exposes a store over HTTP and provides a client that speaks to
// it, so a viewer can persist to a remote server.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/store"
	"github.com/example/planboard/internal/telemetry"
)

// Handler serves the REST endpoints for floors and draws.
type Handler struct {
	store store.Store
}

// NewHandler returns a Handler backed by s.
func NewHandler(s store.Store) *Handler {
	return &Handler{store: s}
}

type errorBody struct {
	Error string `json:"error"`
}

type deleteBody struct {
	IDs []string `json:"ids"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	telemetry.SpanError(r.Context(), err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, drawing.ErrUnknownType):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *Handler) ListFloors(w http.ResponseWriter, r *http.Request) {
	floors, err := h.store.ListFloors(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, floors)
}

func (h *Handler) PutFloor(w http.ResponseWriter, r *http.Request) {
	var f store.Floor
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	f.ID = mux.Vars(r)["floorID"]
	if err := h.store.PutFloor(r.Context(), f); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// FloorImage serves the floor's background when it is a local file.
func (h *Handler) FloorImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["floorID"]
	floors, err := h.store.ListFloors(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for _, f := range floors {
		if f.ID != id {
			continue
		}
		if f.Image == "" || strings.Contains(f.Image, "://") {
			break
		}
		if _, err := os.Stat(f.Image); err != nil {
			break
		}
		http.ServeFile(w, r, f.Image)
		return
	}
	writeJSON(w, http.StatusNotFound, errorBody{Error: "no image for floor " + id})
}

func (h *Handler) ListDraws(w http.ResponseWriter, r *http.Request) {
	draws, err := h.store.ListDraws(r.Context(), mux.Vars(r)["floorID"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if draws == nil {
		draws = []drawing.Draw{}
	}
	writeJSON(w, http.StatusOK, draws)
}

func (h *Handler) CreateDraws(w http.ResponseWriter, r *http.Request) {
	var draws []drawing.Draw
	if err := json.NewDecoder(r.Body).Decode(&draws); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	created, err := h.store.CreateDraws(r.Context(), mux.Vars(r)["floorID"], draws)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateDraw(w http.ResponseWriter, r *http.Request) {
	var p drawing.Patch
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	d, err := h.store.UpdateDraw(r.Context(), mux.Vars(r)["drawID"], p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) DeleteDraws(w http.ResponseWriter, r *http.Request) {
	var body deleteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if err := h.store.DeleteDraws(r.Context(), body.IDs); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
