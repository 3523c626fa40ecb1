package canvas

// Document is a full board snapshot: board metadata plus the element map.
// This is the unit of persistence and of doc.sync in the collab protocol.
type Document struct {
	Board    Board              `json:"board"`
	Elements map[string]Element `json:"elements"`
}

type Board struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// NewEmptyDocument creates a blank board document.
func NewEmptyDocument(boardID, name string) *Document {
	return &Document{
		Board: Board{
			ID:         boardID,
			Name:       name,
			Version:    1,
			Width:      1920,
			Height:     1080,
			Background: "#f7f6f3",
		},
		Elements: map[string]Element{},
	}
}

// Clone returns a deep copy of the document, used for undo snapshots.
func (d *Document) Clone() *Document {
	out := &Document{
		Board:    d.Board,
		Elements: make(map[string]Element, len(d.Elements)),
	}
	for id, el := range d.Elements {
		out.Elements[id] = el.Clone()
	}
	return out
}
