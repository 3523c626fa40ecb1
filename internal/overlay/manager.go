package overlay

import (
	"log/slog"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

// Node names used to find overlay pieces during cleanup.
const (
	nameHandle    = "endpoint-handle"
	nameHighlight = "connector-highlight"
)

// StoreAdapter is the overlay's write path into document state. Every
// endpoint drag flows through it as one snapshot, one begin, a stream of
// updates, and one commit.
type StoreAdapter interface {
	SaveSnapshot()
	BeginEndpointDrag(connectorID string, end canvas.Endpoint) error
	UpdateEndpointDrag(pos canvas.Point) error
	CommitEndpointDrag() error

	SelectedElementIDs() []string
	Element(id string) (canvas.Element, bool)
	Draft() (canvas.EndpointDraft, bool)
}

// NodeIndex resolves element ids to their live drawable nodes.
type NodeIndex interface {
	NodeByID(id string) *scene.Node
}

// Manager draws endpoint grab handles for selected connectors on the
// connector layer and runs the endpoint drag gesture against the store.
type Manager struct {
	store  StoreAdapter
	nodes  NodeIndex
	layer  *scene.Layer
	styles Styles

	group      *scene.Node
	active     []string
	highlights map[string]*scene.Node
	destroyed  bool
}

func NewManager(store StoreAdapter, nodes NodeIndex, layer *scene.Layer) *Manager {
	m := &Manager{
		store:      store,
		nodes:      nodes,
		layer:      layer,
		styles:     DefaultStyles(),
		highlights: make(map[string]*scene.Node),
	}
	m.group = scene.NewGroup()
	m.group.SetName("endpoint-overlay")
	m.group.SetListening(true)
	m.group.Hide()
	layer.Add(m.group)
	return m
}

func (m *Manager) Styles() Styles { return m.styles }

// UpdateStyles merges the patch and restyles any visible handles.
func (m *Manager) UpdateStyles(p StylesPatch) {
	m.styles = m.styles.Merge(p)
	if len(m.active) > 0 {
		ids := append([]string(nil), m.active...)
		m.RenderHandles(ids)
	}
}

// HasActiveConnectors reports whether any connector currently shows
// handles.
func (m *Manager) HasActiveConnectors() bool { return len(m.active) > 0 }

// ActiveConnectorIDs returns the connectors currently showing handles.
func (m *Manager) ActiveConnectorIDs() []string {
	return append([]string(nil), m.active...)
}

// Clear removes every handle and highlight and redraws the layer
// immediately, not batched, so stale chrome never outlives a selection
// change.
func (m *Manager) Clear() {
	if m.destroyed {
		return
	}
	m.group.RemoveChildren()
	m.group.Hide()
	m.active = nil
	clear(m.highlights)

	// Sweep strays: anything tagged as overlay chrome that ended up
	// outside the group.
	for _, n := range m.layer.FindByName(nameHandle) {
		n.Destroy()
	}
	for _, n := range m.layer.FindByName(nameHighlight) {
		n.Destroy()
	}
	m.layer.Draw()
}

// RenderHandles rebuilds the overlay for the given connector ids. Ids
// that are not connectors, have no live node, or have degenerate
// geometry are skipped. Returns true when at least one connector got
// handles. The rebuild requests a single batched redraw.
func (m *Manager) RenderHandles(ids []string) bool {
	if m.destroyed {
		return false
	}
	m.group.RemoveChildren()
	m.group.Hide()
	m.active = nil
	clear(m.highlights)

	for _, id := range ids {
		el, ok := m.store.Element(id)
		if !ok || el.Type != canvas.TypeConnector {
			continue
		}
		start, end, ok := m.resolveEndpoints(el)
		if !ok {
			continue
		}
		if m.nodes.NodeByID(id) == nil {
			continue
		}

		m.addHighlight(el, start, end)
		m.addHandle(el.ID, canvas.EndpointStart, start)
		m.addHandle(el.ID, canvas.EndpointEnd, end)
		m.active = append(m.active, id)
	}

	if len(m.active) == 0 {
		m.layer.BatchDraw()
		return false
	}
	m.group.Show()
	m.layer.BatchDraw()
	return true
}

// Destroy tears the overlay down. Idempotent.
func (m *Manager) Destroy() {
	if m.destroyed {
		return
	}
	m.Clear()
	m.destroyed = true
	m.group.Destroy()
	m.group = nil
}

// resolveEndpoints returns the connector's endpoints, preferring an
// in-flight draft for the dragged end.
func (m *Manager) resolveEndpoints(el canvas.Element) (start, end canvas.Point, ok bool) {
	start, end, ok = el.Endpoints()
	if !ok {
		return start, end, false
	}
	if draft, live := m.store.Draft(); live && draft.ConnectorID == el.ID {
		if draft.End == canvas.EndpointStart {
			start = draft.Pos
		} else {
			end = draft.Pos
		}
	}
	return start, end, true
}

func (m *Manager) addHighlight(el canvas.Element, start, end canvas.Point) {
	width := canvas.DefaultStrokeWidth
	if el.Props.StrokeWidth != nil {
		width = *el.Props.StrokeWidth
	}
	line := scene.NewLine(scene.LineGeom{
		Points: []float64{start.X, start.Y, end.X, end.Y},
	})
	line.SetName(nameHighlight)
	line.SetListening(false)
	line.SetOpacity(m.styles.HighlightOpacity)
	line.SetStyle(scene.Style{
		Stroke:           m.styles.HighlightColor,
		StrokeWidth:      width + m.styles.HighlightWidthExtra,
		FixedStrokeWidth: true,
	})
	m.group.Add(line)
	m.highlights[el.ID] = line
}

func (m *Manager) addHandle(connectorID string, end canvas.Endpoint, pos canvas.Point) {
	h := scene.NewCircle(scene.CircleGeom{Radius: m.styles.HandleRadius})
	h.SetName(nameHandle)
	h.SetPosition(pos.X, pos.Y)
	h.SetDraggable(true)
	h.SetOpacity(m.styles.HandleOpacity)
	h.SetStyle(scene.Style{
		Fill:        m.styles.HandleFill,
		Stroke:      m.styles.HandleStroke,
		StrokeWidth: m.styles.HandleStrokeWidth,
		Shadow: &scene.Shadow{
			Color:   m.styles.HandleShadowColor,
			Blur:    m.styles.HandleShadowBlur,
			Opacity: 1,
		},
	})
	m.bindHandle(h, connectorID, end)
	m.group.Add(h)
}

// bindHandle wires the four-stage endpoint drag gesture. Whatever the
// pointer does, the store sees at most one snapshot, one begin and one
// commit per gesture.
func (m *Manager) bindHandle(h *scene.Node, connectorID string, end canvas.Endpoint) {
	begun := false

	h.On("mouseenter", func(ev *scene.Event) {
		ev.StopPropagation()
		h.SetScale(m.styles.HoverScale, m.styles.HoverScale)
		m.layer.BatchDraw()
	})
	h.On("mouseleave", func(ev *scene.Event) {
		ev.StopPropagation()
		h.SetScale(1, 1)
		m.layer.BatchDraw()
	})

	h.On("dragstart", func(ev *scene.Event) {
		ev.StopPropagation()
		if begun {
			return
		}
		begun = true
		m.store.SaveSnapshot()
		if err := m.store.BeginEndpointDrag(connectorID, end); err != nil {
			slog.Warn("begin endpoint drag", "connector", connectorID, "end", end, "error", err)
		}
	})

	h.On("dragmove", func(ev *scene.Event) {
		ev.StopPropagation()
		if !begun {
			return
		}
		lx, ly := m.layer.AbsoluteTransform().Invert().TransformPoint(ev.X, ev.Y)
		pos := canvas.Point{X: lx, Y: ly}

		if err := m.store.UpdateEndpointDrag(pos); err != nil {
			slog.Warn("update endpoint drag", "connector", connectorID, "error", err)
			return
		}
		h.SetPosition(pos.X, pos.Y)
		m.moveLiveEndpoint(connectorID, end, pos)
		m.layer.BatchDraw()
	})

	h.On("dragend", func(ev *scene.Event) {
		ev.StopPropagation()
		if !begun {
			return
		}
		begun = false
		if err := m.store.CommitEndpointDrag(); err != nil {
			slog.Warn("commit endpoint drag", "connector", connectorID, "error", err)
		}
		m.RenderHandles(connectorIDs(m.store))
	})
}

// moveLiveEndpoint drags the visible connector line along with the
// handle without waiting for a reconcile pass.
func (m *Manager) moveLiveEndpoint(connectorID string, end canvas.Endpoint, pos canvas.Point) {
	if n := m.nodes.NodeByID(connectorID); n != nil {
		if g, ok := n.Geom().(scene.LineGeom); ok && len(g.Points) >= 4 {
			pts := append([]float64(nil), g.Points...)
			if end == canvas.EndpointStart {
				pts[0], pts[1] = pos.X, pos.Y
			} else {
				pts[len(pts)-2], pts[len(pts)-1] = pos.X, pos.Y
			}
			n.SetGeom(scene.LineGeom{Points: pts, Closed: g.Closed})
			if l := n.Layer(); l != nil {
				l.BatchDraw()
			}
		}
	}
	if line, ok := m.highlights[connectorID]; ok {
		if g, lok := line.Geom().(scene.LineGeom); lok && len(g.Points) == 4 {
			pts := append([]float64(nil), g.Points...)
			if end == canvas.EndpointStart {
				pts[0], pts[1] = pos.X, pos.Y
			} else {
				pts[2], pts[3] = pos.X, pos.Y
			}
			line.SetGeom(scene.LineGeom{Points: pts})
		}
	}
}

// connectorIDs filters the current selection down to connectors.
func connectorIDs(store StoreAdapter) []string {
	var ids []string
	for _, id := range store.SelectedElementIDs() {
		if el, ok := store.Element(id); ok && el.Type == canvas.TypeConnector {
			ids = append(ids, id)
		}
	}
	return ids
}
