package scene

import "strings"

// Kind discriminates the retained node variants.
type Kind string

const (
	KindGroup  Kind = "group"
	KindLayer  Kind = "layer"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindLine   Kind = "line"
	KindText   Kind = "text"
	KindImage  Kind = "image"
)

// Shadow is an optional drop shadow on a node.
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Opacity float64 `json:"opacity"`
}

// Style is the paint state of a node.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	// FixedStrokeWidth keeps the stroke at its nominal width regardless of
	// any scale on the node or its ancestors.
	FixedStrokeWidth bool
	Shadow           *Shadow
}

// Node is a retained scene-graph node: a transform, paint state, optional
// geometry, children, and event handlers. Each node has exactly one parent.
type Node struct {
	kind Kind
	id   string
	name string

	x, y      float64
	rotation  float64
	scaleX    float64
	scaleY    float64
	opacity   float64
	visible   bool
	listening bool
	draggable bool

	style Style
	geom  Geom

	parent   *Node
	children []*Node
	handlers map[string][]Handler

	// non-nil when this node is a layer's root
	ownerLayer *Layer

	destroyed bool
}

func newNode(kind Kind) Node {
	return Node{
		kind:      kind,
		scaleX:    1,
		scaleY:    1,
		opacity:   1,
		visible:   true,
		listening: true,
	}
}

// NewGroup creates an empty container node.
func NewGroup() *Node {
	n := newNode(KindGroup)
	return &n
}

// NewRect creates a rectangle node.
func NewRect(g RectGeom) *Node {
	n := newNode(KindRect)
	n.geom = g
	return &n
}

// NewCircle creates a circle node.
func NewCircle(g CircleGeom) *Node {
	n := newNode(KindCircle)
	n.geom = g
	return &n
}

// NewLine creates a polyline node.
func NewLine(g LineGeom) *Node {
	n := newNode(KindLine)
	n.geom = g
	return &n
}

// NewText creates a text node.
func NewText(g TextGeom) *Node {
	n := newNode(KindText)
	n.geom = g
	return &n
}

// NewImage creates an image node.
func NewImage(g ImageGeom) *Node {
	n := newNode(KindImage)
	n.geom = g
	return &n
}

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) ID() string      { return n.id }
func (n *Node) SetID(id string) { n.id = id }

func (n *Node) Name() string      { return n.name }
func (n *Node) SetName(nm string) { n.name = nm }

func (n *Node) Position() (x, y float64) { return n.x, n.y }
func (n *Node) SetPosition(x, y float64) { n.x, n.y = x, y }

func (n *Node) Rotation() float64       { return n.rotation }
func (n *Node) SetRotation(deg float64) { n.rotation = deg }

func (n *Node) Scale() (sx, sy float64) { return n.scaleX, n.scaleY }
func (n *Node) SetScale(sx, sy float64) { n.scaleX, n.scaleY = sx, sy }

func (n *Node) Opacity() float64     { return n.opacity }
func (n *Node) SetOpacity(o float64) { n.opacity = o }

func (n *Node) Visible() bool       { return n.visible }
func (n *Node) SetVisible(v bool)   { n.visible = v }
func (n *Node) Show()               { n.visible = true }
func (n *Node) Hide()               { n.visible = false }
func (n *Node) Listening() bool     { return n.listening }
func (n *Node) SetListening(v bool) { n.listening = v }
func (n *Node) Draggable() bool     { return n.draggable }
func (n *Node) SetDraggable(v bool) { n.draggable = v }

func (n *Node) Style() Style     { return n.style }
func (n *Node) SetStyle(s Style) { n.style = s }

func (n *Node) Geom() Geom     { return n.geom }
func (n *Node) SetGeom(g Geom) { n.geom = g }

func (n *Node) Parent() *Node   { return n.parent }
func (n *Node) Destroyed() bool { return n.destroyed }

// Children returns a copy of the child list in z-order (back to front).
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Add attaches children to a container node. Non-container kinds ignore it.
func (n *Node) Add(children ...*Node) {
	if n.kind != KindGroup && n.kind != KindLayer {
		return
	}
	for _, c := range children {
		if c == nil || c == n {
			continue
		}
		c.Remove()
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches the node from its parent. The node stays usable.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// RemoveChildren detaches every child without destroying them.
func (n *Node) RemoveChildren() {
	for _, c := range n.Children() {
		c.Remove()
	}
}

// Destroy detaches the node, destroys its subtree, and drops all handlers.
// Idempotent: repeat calls are no-ops.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true
	for _, c := range n.Children() {
		c.Destroy()
	}
	n.Remove()
	n.handlers = nil
}

// Handler receives scene events.
type Handler func(*Event)

// Event is a pointer or lifecycle event dispatched through the node tree.
type Event struct {
	Type   string
	Target *Node
	// pointer position in stage (absolute) coordinates
	X, Y float64

	cancelBubble bool
}

// StopPropagation stops the event from bubbling past the current node.
func (e *Event) StopPropagation() { e.cancelBubble = true }

// On subscribes a handler to one or more space-separated event types.
func (n *Node) On(types string, h Handler) {
	if n.destroyed || h == nil {
		return
	}
	if n.handlers == nil {
		n.handlers = make(map[string][]Handler)
	}
	for _, t := range strings.Fields(types) {
		n.handlers[t] = append(n.handlers[t], h)
	}
}

// Off removes every handler for the given space-separated event types.
func (n *Node) Off(types string) {
	for _, t := range strings.Fields(types) {
		delete(n.handlers, t)
	}
}

// Fire dispatches an event on the node and bubbles it toward the root
// unless a handler stops propagation. Destroyed nodes swallow events.
func (n *Node) Fire(typ string, ev *Event) {
	if n.destroyed {
		return
	}
	if ev == nil {
		ev = &Event{Type: typ}
	}
	if ev.Target == nil {
		ev.Target = n
	}
	for _, h := range n.handlers[typ] {
		h(ev)
	}
	if !ev.cancelBubble && n.parent != nil {
		n.parent.Fire(typ, ev)
	}
}

// Transform returns the node's local transform.
func (n *Node) Transform() Matrix2D {
	return FromTransform(n.x, n.y, n.scaleX, n.scaleY, n.rotation)
}

// AbsoluteTransform returns the composed transform from the root down to
// this node.
func (n *Node) AbsoluteTransform() Matrix2D {
	if n.parent == nil {
		return n.Transform()
	}
	return n.parent.AbsoluteTransform().Multiply(n.Transform())
}

// Layer returns the layer this node is attached to, or nil.
func (n *Node) Layer() *Layer {
	for p := n; p != nil; p = p.parent {
		if p.ownerLayer != nil {
			return p.ownerLayer
		}
	}
	return nil
}

// GetClientRect returns the node's bounding box in absolute coordinates,
// including visible descendants. Invisible nodes report an empty rect.
func (n *Node) GetClientRect() Rect {
	if !n.visible || n.destroyed {
		return Rect{}
	}
	var out Rect
	if n.geom != nil {
		local := n.geom.Bounds()
		if !local.IsEmpty() || n.kind == KindLine {
			out = n.AbsoluteTransform().TransformRect(local)
		}
	}
	for _, c := range n.children {
		cr := c.GetClientRect()
		if !cr.IsEmpty() {
			out = out.Union(cr)
		}
	}
	return out
}

// FindByName returns every descendant (including the node itself) tagged
// with the given name.
func (n *Node) FindByName(name string) []*Node {
	var out []*Node
	if n.name == name {
		out = append(out, n)
	}
	for _, c := range n.children {
		out = append(out, c.FindByName(name)...)
	}
	return out
}

// hitAt returns the topmost listening descendant whose geometry contains
// the absolute point, testing front to back.
func (n *Node) hitAt(x, y float64) *Node {
	if !n.visible || !n.listening || n.destroyed {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := n.children[i].hitAt(x, y); hit != nil {
			return hit
		}
	}
	if n.geom == nil {
		return nil
	}
	lx, ly := n.AbsoluteTransform().Invert().TransformPoint(x, y)
	b := n.geom.Bounds()
	if n.kind == KindLine {
		// Lines have no area; pad by half the stroke so they stay clickable.
		pad := max(n.style.StrokeWidth, 8) / 2
		b = Rect{X: b.X - pad, Y: b.Y - pad, Width: b.Width + 2*pad, Height: b.Height + 2*pad}
	}
	if b.Contains(lx, ly) {
		return n
	}
	return nil
}
