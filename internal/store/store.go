// Package store persists floors and their draws.
package store

import (
	"context"
	"errors"

	"github.com/example/planboard/internal/drawing"
)

// ErrNotFound is returned when a draw or floor does not exist.
var ErrNotFound = errors.New("not found")

// Floor is a static background image that draws are placed on.
type Floor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Store is the persistence collaborator used by the board and the API.
//
// CreateDraws assigns ids to draws that have none and keeps the id of draws
// that do, restoring them if they were deleted. Listing returns draws in
// creation order and omits deleted ones.
type Store interface {
	CreateDraws(ctx context.Context, floorID string, draws []drawing.Draw) ([]drawing.Draw, error)
	UpdateDraw(ctx context.Context, id string, p drawing.Patch) (drawing.Draw, error)
	DeleteDraws(ctx context.Context, ids []string) error
	ListDraws(ctx context.Context, floorID string) ([]drawing.Draw, error)
	ListFloors(ctx context.Context) ([]Floor, error)
	PutFloor(ctx context.Context, f Floor) error
}
