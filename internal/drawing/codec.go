package drawing

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/planboard/internal/geom"
)

// ErrUnknownType is returned when decoding a draw with an unrecognised type.
var ErrUnknownType = errors.New("unknown draw type")

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireData struct {
	Points     []wirePoint `json:"points,omitempty"`
	Color      string      `json:"color,omitempty"`
	LineWidth  float64     `json:"lineWidth,omitempty"`
	Width      float64     `json:"width,omitempty"`
	Height     float64     `json:"height,omitempty"`
	Filled     bool        `json:"filled,omitempty"`
	Text       string      `json:"text,omitempty"`
	FontSize   float64     `json:"fontSize,omitempty"`
	Size       float64     `json:"size,omitempty"`
	IconURL    string      `json:"iconUrl,omitempty"`
	Glyph      string      `json:"fallbackGlyph,omitempty"`
	GlyphColor string      `json:"fallbackColor,omitempty"`
	Background string      `json:"bgColor,omitempty"`
	Rotation   float64     `json:"rotation,omitempty"`
}

type wireDraw struct {
	ID      string   `json:"id,omitempty"`
	UserID  string   `json:"userId,omitempty"`
	FloorID string   `json:"floorId,omitempty"`
	PhaseID string   `json:"phaseId,omitempty"`
	SlotID  string   `json:"operatorSlotId,omitempty"`
	Type    Kind     `json:"type"`
	OriginX float64  `json:"originX"`
	OriginY float64  `json:"originY"`
	DestX   *float64 `json:"destinationX,omitempty"`
	DestY   *float64 `json:"destinationY,omitempty"`
	Deleted bool     `json:"isDeleted"`
	Data    wireData `json:"data"`
}

// MarshalJSON encodes d in the wire format shared with the server.
func (d Draw) MarshalJSON() ([]byte, error) {
	if d.Shape == nil {
		return nil, fmt.Errorf("draw %q: %w", d.ID, ErrUnknownType)
	}
	w := wireDraw{
		ID:      d.ID,
		UserID:  d.UserID,
		FloorID: d.FloorID,
		PhaseID: d.PhaseID,
		SlotID:  d.SlotID,
		Type:    d.Kind(),
		OriginX: d.Origin.X,
		OriginY: d.Origin.Y,
		Deleted: d.Deleted,
	}
	w.Data.Rotation = d.Rotation
	if dest, ok := d.Dest(); ok {
		w.DestX, w.DestY = &dest.X, &dest.Y
	}
	switch s := d.Shape.(type) {
	case *Path:
		w.Data.Points = make([]wirePoint, len(s.Points))
		for i, p := range s.Points {
			w.Data.Points[i] = wirePoint{p.X, p.Y}
		}
		w.Data.Color, w.Data.LineWidth = s.Color, s.Width
	case *Line:
		w.Data.Color, w.Data.LineWidth = s.Color, s.Width
	case *Rect:
		w.Data.Color, w.Data.LineWidth = s.Color, s.StrokeWidth
		w.Data.Width, w.Data.Height, w.Data.Filled = s.Width, s.Height, s.Filled
	case *Text:
		w.Data.Text, w.Data.FontSize, w.Data.Color = s.Text, s.FontSize, s.Color
	case *Icon:
		w.Data.Size, w.Data.IconURL = s.Size, s.URL
		w.Data.Glyph, w.Data.GlyphColor, w.Data.Background = s.Glyph, s.GlyphColor, s.Background
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire format. Unknown types are rejected.
func (d *Draw) UnmarshalJSON(b []byte) error {
	var w wireDraw
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := Draw{
		ID:       w.ID,
		UserID:   w.UserID,
		FloorID:  w.FloorID,
		PhaseID:  w.PhaseID,
		SlotID:   w.SlotID,
		Origin:   geom.Pt(w.OriginX, w.OriginY),
		Rotation: w.Data.Rotation,
		Deleted:  w.Deleted,
	}
	dest := out.Origin
	if w.DestX != nil && w.DestY != nil {
		dest = geom.Pt(*w.DestX, *w.DestY)
	}
	switch w.Type {
	case KindPath:
		pts := make([]geom.Point, len(w.Data.Points))
		for i, p := range w.Data.Points {
			pts[i] = geom.Pt(p.X, p.Y)
		}
		out.Shape = &Path{Points: pts, Color: w.Data.Color, Width: w.Data.LineWidth}
	case KindLine:
		out.Shape = &Line{Dest: dest, Color: w.Data.Color, Width: w.Data.LineWidth}
	case KindRect:
		out.Shape = &Rect{
			Dest:        dest,
			Width:       w.Data.Width,
			Height:      w.Data.Height,
			Filled:      w.Data.Filled,
			Color:       w.Data.Color,
			StrokeWidth: w.Data.LineWidth,
		}
	case KindText:
		out.Shape = &Text{Text: w.Data.Text, FontSize: w.Data.FontSize, Color: w.Data.Color}
	case KindIcon:
		out.Shape = &Icon{
			Size:       w.Data.Size,
			URL:        w.Data.IconURL,
			Glyph:      w.Data.Glyph,
			GlyphColor: w.Data.GlyphColor,
			Background: w.Data.Background,
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
	*d = out
	return nil
}
