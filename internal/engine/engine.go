package engine

import (
	"encoding/json"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/layers"
	"github.com/quillboard/quillboard/backend-go/internal/overlay"
	"github.com/quillboard/quillboard/backend-go/internal/render"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
	"github.com/quillboard/quillboard/backend-go/internal/store"
)

// Engine is the board engine: it owns the document store, the stage with
// its layer stack, the renderer registry and the connector overlay, and
// keeps the scene reconciled with the document. One engine serves one
// board on one goroutine; concurrent access goes through the store.
type Engine struct {
	stage    *scene.Stage
	store    *store.Store
	registry *render.Registry
	layers   *layers.Manager
	overlay  *overlay.Manager

	frames    *frameSink
	editingID string
}

// NewEngine creates an engine with an empty stage of the given size.
func NewEngine(width, height float64) *Engine {
	e := &Engine{
		stage:    scene.NewStage(width, height),
		store:    store.New(),
		registry: render.Defaults(),
		frames:   newFrameSink(),
	}
	e.stage.SetSink(e.frames)

	e.layers = layers.NewManager(e.registry, render.Callbacks{
		OnElementUpdate:  e.onElementUpdate,
		OnElementClick:   e.onElementClick,
		OnElementDragEnd: e.onElementDragEnd,
		OnStartTextEdit:  e.onStartTextEdit,
	})
	e.layers.Initialize(e.stage)
	e.overlay = overlay.NewManager(e.store, e.layers, e.layers.ConnectorLayer())

	e.store.OnChange(e.reconcile)
	return e
}

// Store exposes the document store for collab sessions and persistence.
func (e *Engine) Store() *store.Store { return e.store }

// Stage exposes the scene stage, mainly for tests and export.
func (e *Engine) Stage() *scene.Stage { return e.stage }

// Overlay exposes the connector endpoint overlay.
func (e *Engine) Overlay() *overlay.Manager { return e.overlay }

// --- Commands (frontend -> backend) ---

// LoadDocument loads a board document from JSON, replacing all state.
func (e *Engine) LoadDocument(jsonData string) error {
	var doc canvas.Document
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return err
	}
	if doc.Elements == nil {
		doc.Elements = map[string]canvas.Element{}
	}
	e.editingID = ""
	e.overlay.Clear()
	e.store.LoadDocument(&doc)
	return nil
}

// UpdateDocument reloads the document from JSON while preserving the
// selection. Used when the document changes mid-edit, for example after
// a collab sync.
func (e *Engine) UpdateDocument(jsonData string) error {
	var doc canvas.Document
	if err := json.Unmarshal([]byte(jsonData), &doc); err != nil {
		return err
	}
	if doc.Elements == nil {
		doc.Elements = map[string]canvas.Element{}
	}
	selected := e.store.SelectedElementIDs()
	e.store.LoadDocument(&doc)
	e.SetSelection(selected)
	return nil
}

// LoadSampleDocument loads the built-in demo board.
func (e *Engine) LoadSampleDocument(boardID string) {
	e.editingID = ""
	e.overlay.Clear()
	e.store.LoadDocument(canvas.NewSampleDocument(boardID))
}

// SetSelection replaces the selection and rebuilds the endpoint overlay
// for any selected connectors.
func (e *Engine) SetSelection(ids []string) {
	e.store.SetSelection(ids)
	e.refreshOverlay()
}

// SubmitOperation applies one document operation from JSON and returns
// the server sequence it landed at.
func (e *Engine) SubmitOperation(jsonData string) (int64, error) {
	var op store.Operation
	if err := json.Unmarshal([]byte(jsonData), &op); err != nil {
		return 0, err
	}
	return e.store.ApplyOperation(op)
}

// Undo restores the previous document snapshot.
func (e *Engine) Undo() error {
	err := e.store.Undo()
	if err == nil {
		e.refreshOverlay()
	}
	return err
}

// PointerDown forwards a pointer press to the stage.
func (e *Engine) PointerDown(x, y float64) { e.stage.PointerDown(x, y) }

// PointerMove forwards a pointer move to the stage.
func (e *Engine) PointerMove(x, y float64) { e.stage.PointerMove(x, y) }

// PointerUp forwards a pointer release to the stage.
func (e *Engine) PointerUp(x, y float64) { e.stage.PointerUp(x, y) }

// Tick runs one animation frame: every batched redraw scheduled since
// the last tick is drawn once, and the resulting frames are returned as
// JSON. Called once per display frame from the frontend.
func (e *Engine) Tick() string {
	e.frames.reset()
	e.stage.Clock().Step()
	return e.frames.toJSON()
}

// Render draws every layer immediately and returns the frames as JSON.
func (e *Engine) Render() string {
	e.frames.reset()
	for _, l := range e.stage.Layers() {
		l.Draw()
	}
	return e.frames.toJSON()
}

// --- Queries (frontend <- backend) ---

// HitTest returns the element id of the topmost interactive node at the
// stage coordinates, or the empty string.
func (e *Engine) HitTest(x, y float64) string {
	n := e.stage.HitAt(x, y)
	for n != nil {
		if n.ID() != "" {
			return n.ID()
		}
		n = n.Parent()
	}
	return ""
}

// QueryRect returns the ids of elements whose drawn bounds strictly
// overlap the given rect.
func (e *Engine) QueryRect(x, y, w, h float64) []string {
	return e.layers.QueryRect(scene.Rect{X: x, Y: y, Width: w, Height: h})
}

// GetDocument returns the full document as JSON.
func (e *Engine) GetDocument() string {
	doc := e.store.Document()
	if doc == nil {
		return "{}"
	}
	data, _ := json.Marshal(doc)
	return string(data)
}

// GetSelection returns the selected ids as JSON.
func (e *Engine) GetSelection() string {
	data, _ := json.Marshal(e.store.SelectedElementIDs())
	return string(data)
}

// GetCursor returns the cursor the frontend should show.
func (e *Engine) GetCursor() string { return e.stage.Cursor() }

// EditingElementID returns the element a double click put into text
// editing, or the empty string.
func (e *Engine) EditingElementID() string { return e.editingID }

// StopTextEdit leaves text editing mode.
func (e *Engine) StopTextEdit() { e.editingID = "" }

// Layers exposes the layer manager.
func (e *Engine) Layers() *layers.Manager { return e.layers }

// --- internal wiring ---

// reconcile drives the scene to match the store. Runs after every
// committed store mutation.
func (e *Engine) reconcile() {
	e.layers.Reconcile(e.store.Elements())
}

func (e *Engine) refreshOverlay() {
	var connectors []string
	for _, id := range e.store.SelectedElementIDs() {
		if el, ok := e.store.Element(id); ok && el.Type == canvas.TypeConnector {
			connectors = append(connectors, id)
		}
	}
	if len(connectors) == 0 {
		e.overlay.Clear()
		return
	}
	e.overlay.RenderHandles(connectors)
}

func (e *Engine) onElementUpdate(id string, patch canvas.Patch) {
	raw, err := json.Marshal(patch)
	if err != nil {
		return
	}
	e.store.SaveSnapshot()
	e.store.ApplyOperation(store.Operation{
		ID:        store.NewOperationID(),
		Type:      store.OpElementUpdate,
		Timestamp: store.ServerTimestamp(),
		ElementID: id,
		Patch:     raw,
	})
}

func (e *Engine) onElementClick(ev *scene.Event, el canvas.Element) {
	e.SetSelection([]string{el.ID})
}

// onElementDragEnd folds the node's final position back into the
// document as a transform operation.
func (e *Engine) onElementDragEnd(ev *scene.Event, id string) {
	n := e.layers.NodeByID(id)
	if n == nil {
		return
	}
	x, y := n.Position()
	raw, _ := json.Marshal(map[string]float64{"x": x, "y": y})
	e.store.SaveSnapshot()
	e.store.ApplyOperation(store.Operation{
		ID:        store.NewOperationID(),
		Type:      store.OpElementTransform,
		Timestamp: store.ServerTimestamp(),
		ElementID: id,
		Transform: raw,
	})
}

func (e *Engine) onStartTextEdit(id string) {
	e.editingID = id
}
