package layers

import (
	"log/slog"
	"reflect"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/render"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

// Layer names, back to front. Background sits below everything, tool
// sits above everything including the UI chrome.
const (
	LayerBackground = "background"
	LayerMain       = "main"
	LayerConnector  = "connector"
	LayerUI         = "ui"
	LayerTool       = "tool"
)

var stackOrder = []string{LayerBackground, LayerMain, LayerConnector, LayerUI, LayerTool}

// Manager owns the fixed layer stack and keeps one renderer alive per
// board element. Reconcile is the only way element renderers are created,
// updated or destroyed.
type Manager struct {
	registry *render.Registry
	ctx      render.Context

	stage  *scene.Stage
	layers map[string]*scene.Layer

	renderers map[string]*render.Renderer
	elements  map[string]canvas.Element
}

func NewManager(registry *render.Registry, cb render.Callbacks) *Manager {
	return &Manager{
		registry:  registry,
		ctx:       render.Context{Callbacks: cb},
		layers:    make(map[string]*scene.Layer),
		renderers: make(map[string]*render.Renderer),
		elements:  make(map[string]canvas.Element),
	}
}

// Initialize attaches the five-layer stack to the stage in back-to-front
// order. Safe to call again after Teardown.
func (m *Manager) Initialize(stage *scene.Stage) {
	if m.stage != nil {
		m.Teardown()
	}
	m.stage = stage
	for _, name := range stackOrder {
		l := scene.NewLayer(name)
		stage.Add(l)
		m.layers[name] = l
	}
	m.ctx.Stage = stage
	m.ctx.Layer = m.layers[LayerMain]
}

// Layer returns the named layer, or nil before Initialize.
func (m *Manager) Layer(name string) *scene.Layer { return m.layers[name] }

func (m *Manager) MainLayer() *scene.Layer      { return m.layers[LayerMain] }
func (m *Manager) ConnectorLayer() *scene.Layer { return m.layers[LayerConnector] }
func (m *Manager) ToolLayer() *scene.Layer      { return m.layers[LayerTool] }

// Stage returns the stage the stack is attached to.
func (m *Manager) Stage() *scene.Stage { return m.stage }

// Element returns the last reconciled value for an id.
func (m *Manager) Element(id string) (canvas.Element, bool) {
	el, ok := m.elements[id]
	return el, ok
}

// NodeByID returns the live drawable node for an element id, or nil when
// the element has no renderer or nothing drawn.
func (m *Manager) NodeByID(id string) *scene.Node {
	rd, ok := m.renderers[id]
	if !ok {
		return nil
	}
	return rd.Node()
}

// RendererCount reports how many elements currently hold a renderer.
func (m *Manager) RendererCount() int { return len(m.renderers) }

// Reconcile drives the renderer set to match the desired element map.
// Existing renderers are updated, new elements get renderers, and only
// then are renderers for absent ids destroyed. The whole pass requests a
// single batched redraw of the main layer.
func (m *Manager) Reconcile(desired map[string]canvas.Element) {
	if m.stage == nil {
		slog.Warn("reconcile before initialize")
		return
	}

	// Snapshot the desired id set up front so destruction is unaffected
	// by anything the create/update phase does.
	keep := make(map[string]struct{}, len(desired))
	for id := range desired {
		keep[id] = struct{}{}
	}

	for id, el := range desired {
		if rd, ok := m.renderers[id]; ok {
			if prev, seen := m.elements[id]; seen && reflect.DeepEqual(prev, el) {
				continue
			}
			rd.Update(el)
			m.elements[id] = el
			continue
		}

		rd := m.registry.CreateRenderer(el, m.ctx)
		if rd == nil {
			// Unsupported type. Skip silently so one unknown element
			// never blocks the rest of the board.
			continue
		}
		rd.Render()
		m.renderers[id] = rd
		m.elements[id] = el
	}

	for id, rd := range m.renderers {
		if _, ok := keep[id]; ok {
			continue
		}
		rd.Destroy()
		delete(m.renderers, id)
		delete(m.elements, id)
	}

	m.layers[LayerMain].BatchDraw()
}

// QueryRect returns the ids of elements whose drawn bounds overlap the
// query rect. Overlap is strict: shapes that merely share an edge do not
// count.
func (m *Manager) QueryRect(r scene.Rect) []string {
	var ids []string
	for id, rd := range m.renderers {
		n := rd.Node()
		if n == nil {
			continue
		}
		if n.GetClientRect().Intersects(r) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Teardown destroys every renderer and removes the layer stack from the
// stage, front to back. Idempotent.
func (m *Manager) Teardown() {
	m.registry.DestroyRenderers(m.renderers)
	clear(m.elements)

	for i := len(stackOrder) - 1; i >= 0; i-- {
		if l, ok := m.layers[stackOrder[i]]; ok {
			l.Destroy()
			delete(m.layers, stackOrder[i])
		}
	}
	m.stage = nil
	m.ctx.Stage = nil
	m.ctx.Layer = nil
}
