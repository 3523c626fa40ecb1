package scene

import "time"

// Stage is the root drawing surface: an ordered stack of layers plus the
// pointer-event dispatch state. All mutation happens on the host's event
// loop; the stage is not safe for concurrent use.
type Stage struct {
	width, height float64
	layers        []*Layer
	clock         *FrameClock
	sink          Sink
	cursor        string

	// pointer dispatch state
	pointerX, pointerY float64
	hover              *Node
	pressed            *Node
	dragTarget         *Node
	dragging           bool
	lastClickAt        time.Time
	lastClickOn        *Node
}

const dblClickWindow = 400 * time.Millisecond

func NewStage(width, height float64) *Stage {
	return &Stage{
		width:  width,
		height: height,
		clock:  NewFrameClock(),
		cursor: "default",
	}
}

func (s *Stage) Size() (w, h float64) { return s.width, s.height }

// Clock returns the stage's frame clock. The host drives it once per
// animation frame.
func (s *Stage) Clock() *FrameClock { return s.clock }

// SetSink installs the frame consumer for all layers.
func (s *Stage) SetSink(sink Sink) { s.sink = sink }

func (s *Stage) SetCursor(c string) { s.cursor = c }
func (s *Stage) Cursor() string     { return s.cursor }

// Add attaches a layer on top of the existing stack.
func (s *Stage) Add(l *Layer) {
	if l == nil || l.stage == s {
		return
	}
	l.stage = s
	s.layers = append(s.layers, l)
}

// Layers returns the layer stack in z-order (bottom first).
func (s *Stage) Layers() []*Layer {
	return append([]*Layer(nil), s.layers...)
}

func (s *Stage) removeLayer(l *Layer) {
	for i, x := range s.layers {
		if x == l {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			break
		}
	}
	l.stage = nil
}

// HitAt returns the topmost listening node containing the point, searching
// layers front to back.
func (s *Stage) HitAt(x, y float64) *Node {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if hit := s.layers[i].hitAt(x, y); hit != nil {
			return hit
		}
	}
	return nil
}

// PointerDown injects a pointer-press at stage coordinates. It fires
// mousedown on the hit node and arms dragging on the nearest draggable
// ancestor.
func (s *Stage) PointerDown(x, y float64) {
	s.pointerX, s.pointerY = x, y
	hit := s.HitAt(x, y)
	s.pressed = hit
	if hit != nil {
		hit.Fire("mousedown", &Event{Type: "mousedown", X: x, Y: y})
		s.dragTarget = draggableAncestor(hit)
	}
}

// PointerMove injects a pointer move: hover enter/leave transitions, then
// drag progression if a drag is armed. The drag target follows the pointer
// delta by default; dragmove handlers may reposition it further.
func (s *Stage) PointerMove(x, y float64) {
	dx, dy := x-s.pointerX, y-s.pointerY
	s.pointerX, s.pointerY = x, y

	if s.dragTarget != nil {
		if !s.dragging {
			s.dragging = true
			s.dragTarget.Fire("dragstart", &Event{Type: "dragstart", Target: s.dragTarget, X: x, Y: y})
		}
		nx, ny := s.dragTarget.Position()
		s.dragTarget.SetPosition(nx+dx, ny+dy)
		s.dragTarget.Fire("dragmove", &Event{Type: "dragmove", Target: s.dragTarget, X: x, Y: y})
		return
	}

	hit := s.HitAt(x, y)
	if hit != s.hover {
		if s.hover != nil {
			s.hover.Fire("mouseleave", &Event{Type: "mouseleave", Target: s.hover, X: x, Y: y})
		}
		if hit != nil {
			hit.Fire("mouseenter", &Event{Type: "mouseenter", Target: hit, X: x, Y: y})
		}
		s.hover = hit
	}
}

// PointerUp injects a pointer release: dragend when a drag was in
// progress, otherwise click (and dblclick within the double-click window).
func (s *Stage) PointerUp(x, y float64) {
	s.pointerX, s.pointerY = x, y

	if s.dragging {
		t := s.dragTarget
		s.dragTarget = nil
		s.dragging = false
		s.pressed = nil
		t.Fire("dragend", &Event{Type: "dragend", Target: t, X: x, Y: y})
		return
	}
	s.dragTarget = nil

	hit := s.HitAt(x, y)
	if hit != nil && hit == s.pressed {
		now := time.Now()
		hit.Fire("click", &Event{Type: "click", X: x, Y: y})
		if hit == s.lastClickOn && now.Sub(s.lastClickAt) <= dblClickWindow {
			hit.Fire("dblclick", &Event{Type: "dblclick", X: x, Y: y})
			s.lastClickOn = nil
		} else {
			s.lastClickOn = hit
			s.lastClickAt = now
		}
	}
	s.pressed = nil
}

func draggableAncestor(n *Node) *Node {
	for p := n; p != nil; p = p.Parent() {
		if p.Draggable() {
			return p
		}
	}
	return nil
}
