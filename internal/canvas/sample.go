package canvas

import (
	"time"

	"github.com/quillboard/quillboard/backend-go/internal/typeid"
)

// NewSampleDocument builds the demo board used by the playground and by
// the wasm build before a real board is loaded.
func NewSampleDocument(boardID string) *Document {
	now := time.Now().UTC().Format(time.RFC3339)

	rectID := typeid.NewElementID()
	circleID := typeid.NewElementID()
	noteID := typeid.NewElementID()
	textID := typeid.NewElementID()
	connID := typeid.NewConnectorID()

	return &Document{
		Board: Board{
			ID:         boardID,
			Name:       "Welcome board",
			Version:    1,
			Width:      1920,
			Height:     1080,
			Background: "#f7f6f3",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		Elements: map[string]Element{
			rectID: {
				ID: rectID, Type: TypeRectangle,
				X: 200, Y: 160, ScaleX: 1, ScaleY: 1, Opacity: 1,
				Visible: true, Listening: true, Draggable: true,
				Props: Props{
					Width: Float(240), Height: Float(140),
					Fill: Str("#ffd166"), Stroke: Str("#1a1a2e"),
					CornerRadius: Float(8),
				},
			},
			circleID: {
				ID: circleID, Type: TypeCircle,
				X: 720, Y: 420, ScaleX: 1, ScaleY: 1, Opacity: 1,
				Visible: true, Listening: true, Draggable: true,
				Props: Props{
					Radius: Float(80),
					Fill:   Str("#06d6a0"), Stroke: Str("#1a1a2e"),
				},
			},
			noteID: {
				ID: noteID, Type: TypeStickyNote,
				X: 980, Y: 140, ScaleX: 1, ScaleY: 1, Opacity: 1,
				Visible: true, Listening: true, Draggable: true,
				Props: Props{
					Width: Float(180), Height: Float(180),
					Fill: Str("#fff3b0"),
					Text: Str("Drag the connector\nendpoints around"),
				},
			},
			textID: {
				ID: textID, Type: TypeText,
				X: 200, Y: 60, ScaleX: 1, ScaleY: 1, Opacity: 1,
				Visible: true, Listening: true, Draggable: true,
				Props: Props{
					Text:     Str("Welcome to Quillboard"),
					FontSize: Float(28),
					Fill:     Str("#1a1a2e"),
				},
			},
			connID: {
				ID: connID, Type: TypeConnector,
				ScaleX: 1, ScaleY: 1, Opacity: 1,
				Visible: true, Listening: true,
				StartPoint: &Point{X: 440, Y: 230},
				EndPoint:   &Point{X: 640, Y: 420},
				Props: Props{
					Stroke:      Str("#1a1a2e"),
					StrokeWidth: Float(2),
				},
			},
		},
	}
}
