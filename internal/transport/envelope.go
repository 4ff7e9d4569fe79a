// Package transport relays cursor, laser and draw mutation messages between
// the participants of a floor over WebSockets.
package transport

import (
	"encoding/json"
	"fmt"

	"github.com/example/planboard/internal/drawing"
	"github.com/example/planboard/internal/ephemeral"
)

// MessageType names an envelope payload.
type MessageType string

const (
	TypeCursor      MessageType = "cursor"
	TypeLaser       MessageType = "laser"
	TypeLaserEnd    MessageType = "laser_end"
	TypeDrawCreated MessageType = "draw_created"
	TypeDrawUpdated MessageType = "draw_updated"
	TypeDrawDeleted MessageType = "draw_deleted"
	TypeJoin        MessageType = "join"
	TypeLeave       MessageType = "leave"
)

// Envelope is one message on the wire. The hub stamps FloorID and UserID
// from the connection so clients cannot speak for someone else.
type Envelope struct {
	Type    MessageType     `json:"type"`
	FloorID string          `json:"floorId"`
	UserID  string          `json:"userId"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DrawUpdated is the payload of TypeDrawUpdated.
type DrawUpdated struct {
	ID    string        `json:"id"`
	Patch drawing.Patch `json:"patch"`
}

// DrawDeleted is the payload of TypeDrawDeleted.
type DrawDeleted struct {
	IDs []string `json:"ids"`
}

// NewEnvelope encodes payload into an envelope of type t.
func NewEnvelope(t MessageType, floorID, userID string, payload any) (Envelope, error) {
	env := Envelope{Type: t, FloorID: floorID, UserID: userID}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("encode %s: %w", t, err)
		}
		env.Payload = b
	}
	return env, nil
}

// Receiver consumes inbound messages. board.Board implements it.
type Receiver interface {
	HandleCursor(c ephemeral.Cursor)
	HandleLaser(s ephemeral.Stroke, final bool)
	HandlePeerCreate(d drawing.Draw)
	HandlePeerUpdate(id string, p drawing.Patch)
	HandlePeerDelete(ids []string)
	HandleJoin(userID string)
	HandleLeave(userID string)
}

// Dispatch decodes env and calls the matching Receiver method. The sender's
// user id from the envelope overrides any id in the payload.
func Dispatch(env Envelope, r Receiver) error {
	switch env.Type {
	case TypeCursor:
		var c ephemeral.Cursor
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			return fmt.Errorf("decode cursor: %w", err)
		}
		c.UserID = env.UserID
		r.HandleCursor(c)
	case TypeLaser, TypeLaserEnd:
		var s ephemeral.Stroke
		if err := json.Unmarshal(env.Payload, &s); err != nil {
			return fmt.Errorf("decode laser: %w", err)
		}
		s.UserID = env.UserID
		r.HandleLaser(s, env.Type == TypeLaserEnd)
	case TypeDrawCreated:
		var d drawing.Draw
		if err := json.Unmarshal(env.Payload, &d); err != nil {
			return fmt.Errorf("decode draw: %w", err)
		}
		if d.FloorID == "" {
			d.FloorID = env.FloorID
		}
		r.HandlePeerCreate(d)
	case TypeDrawUpdated:
		var u DrawUpdated
		if err := json.Unmarshal(env.Payload, &u); err != nil {
			return fmt.Errorf("decode update: %w", err)
		}
		r.HandlePeerUpdate(u.ID, u.Patch)
	case TypeDrawDeleted:
		var d DrawDeleted
		if err := json.Unmarshal(env.Payload, &d); err != nil {
			return fmt.Errorf("decode delete: %w", err)
		}
		r.HandlePeerDelete(d.IDs)
	case TypeJoin:
		r.HandleJoin(env.UserID)
	case TypeLeave:
		r.HandleLeave(env.UserID)
	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
	return nil
}
