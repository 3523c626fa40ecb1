package render

import (
	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

// Callbacks is how rendering code requests changes to store-owned state.
// Any entry may be nil; renderers must tolerate that.
type Callbacks struct {
	OnElementUpdate  func(id string, patch canvas.Patch)
	OnElementClick   func(ev *scene.Event, el canvas.Element)
	OnElementDragEnd func(ev *scene.Event, id string)
	OnStartTextEdit  func(id string)
}

// Context is handed to every renderer at construction: the layer its node
// attaches to, the root stage, and the UI callback bundle.
type Context struct {
	Layer     *scene.Layer
	Stage     *scene.Stage
	Callbacks Callbacks
}
