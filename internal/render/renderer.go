package render

import (
	"log/slog"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

// Shape builds and refreshes the drawable node for one element kind.
// CreateNode may return (nil, nil) when the element has nothing drawable
// (for example a connector with degenerate geometry); that is an omission,
// not an error.
type Shape interface {
	CreateNode(el canvas.Element) (*scene.Node, error)
	UpdateNode(n *scene.Node, el canvas.Element) error
}

// HoverReactor lets a shape layer extra hover feedback on top of the base
// cursor behavior. The base behavior always runs first.
type HoverReactor interface {
	HoverEnter(n *scene.Node, ctx Context)
	HoverLeave(n *scene.Node, ctx Context)
}

// Renderer binds exactly one element id to exactly one drawable node and
// drives its lifecycle: unrendered -> rendered <-> updated -> destroyed.
// Destroyed is terminal; every call on a destroyed renderer is a no-op.
type Renderer struct {
	ctx   Context
	shape Shape

	el        canvas.Element
	node      *scene.Node
	rendered  bool
	destroyed bool
}

func NewRenderer(el canvas.Element, ctx Context, shape Shape) *Renderer {
	return &Renderer{ctx: ctx, shape: shape, el: el}
}

// Element returns the last element value the renderer was given.
func (r *Renderer) Element() canvas.Element { return r.el }

// Node returns the owned drawable node, or nil when nothing is drawn.
func (r *Renderer) Node() *scene.Node { return r.node }

// Render creates the drawable node, applies common properties, wires the
// base event set, and attaches the node to the context layer. Internal
// failures are logged, never propagated.
func (r *Renderer) Render() *scene.Node {
	if r.destroyed || r.rendered {
		return r.node
	}
	r.rendered = true
	r.attach()
	return r.node
}

// Update replaces the stored element value, refreshes the node, and
// requests a batched redraw of the owning layer. No-op before Render and
// after Destroy.
func (r *Renderer) Update(el canvas.Element) {
	if r.destroyed || !r.rendered {
		return
	}
	r.el = el

	if r.node == nil {
		// The first render produced nothing (degenerate geometry); the
		// new value may be drawable now.
		r.attach()
		if r.node != nil {
			r.ctx.Layer.BatchDraw()
		}
		return
	}

	if err := r.shape.UpdateNode(r.node, el); err != nil {
		slog.Warn("update element node", "id", el.ID, "type", el.Type, "error", err)
		return
	}
	r.applyCommonProps()
	r.ctx.Layer.BatchDraw()
}

// Destroy unbinds events, frees the drawable node, and retires the
// renderer. Idempotent.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.node != nil {
		r.unbindEvents(r.node)
		r.node.Destroy()
		r.node = nil
	}
}

func (r *Renderer) attach() {
	node, err := r.shape.CreateNode(r.el)
	if err != nil {
		slog.Warn("create element node", "id", r.el.ID, "type", r.el.Type, "error", err)
		return
	}
	if node == nil {
		return
	}
	r.node = node
	r.applyCommonProps()
	r.bindEvents(node)
	r.ctx.Layer.Add(node)
}

// applyCommonProps pushes the element's shared attributes onto the node.
// Order matters under interleaved updates: transform first, then the
// visibility/interaction flags, then the identity tags.
func (r *Renderer) applyCommonProps() {
	n := r.node
	el := r.el

	sx, sy := el.ScaleX, el.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	n.SetPosition(el.X, el.Y)
	n.SetRotation(el.Rotation)
	n.SetScale(sx, sy)
	n.SetOpacity(clamp01(el.Opacity))

	n.SetVisible(el.Visible)
	n.SetListening(el.Listening)
	n.SetDraggable(el.Draggable)

	n.SetID(el.ID)
	n.SetName(string(el.Type))
}

const boundEvents = "click tap dragend dblclick dbltap mouseenter mouseleave"

func (r *Renderer) bindEvents(n *scene.Node) {
	cb := r.ctx.Callbacks

	n.On("click tap", func(ev *scene.Event) {
		ev.StopPropagation()
		if cb.OnElementClick != nil {
			cb.OnElementClick(ev, r.el)
		}
	})
	n.On("dragend", func(ev *scene.Event) {
		if cb.OnElementDragEnd != nil {
			cb.OnElementDragEnd(ev, r.el.ID)
		}
	})
	n.On("dblclick dbltap", func(ev *scene.Event) {
		if cb.OnStartTextEdit != nil {
			cb.OnStartTextEdit(r.el.ID)
		}
	})
	n.On("mouseenter", func(ev *scene.Event) {
		if r.ctx.Stage != nil {
			r.ctx.Stage.SetCursor("pointer")
		}
		if hr, ok := r.shape.(HoverReactor); ok {
			hr.HoverEnter(n, r.ctx)
		}
	})
	n.On("mouseleave", func(ev *scene.Event) {
		if r.ctx.Stage != nil {
			r.ctx.Stage.SetCursor("default")
		}
		if hr, ok := r.shape.(HoverReactor); ok {
			hr.HoverLeave(n, r.ctx)
		}
	})
}

func (r *Renderer) unbindEvents(n *scene.Node) {
	n.Off(boundEvents)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
