package scene

// Sink receives compiled frames. The server export path and the wasm
// bridge both implement it; tests use a recording sink.
type Sink interface {
	Flush(layer *Layer, commands []DrawCommand)
}

// Layer is a compositing surface: a container node that owns its redraw
// scheduling. Layers attach directly to a Stage in z-order.
type Layer struct {
	Node

	stage *Stage
	draws int
}

// NewLayer creates a detached layer with the given name tag.
func NewLayer(name string) *Layer {
	l := &Layer{Node: newNode(KindLayer)}
	l.Node.ownerLayer = l
	l.SetName(name)
	return l
}

// Stage returns the stage the layer is attached to, or nil.
func (l *Layer) Stage() *Stage { return l.stage }

// Draw compiles the layer immediately and flushes it to the stage sink.
func (l *Layer) Draw() {
	if l.Destroyed() {
		return
	}
	l.draws++
	if l.stage != nil && l.stage.sink != nil {
		l.stage.sink.Flush(l, Compile(l))
	}
}

// BatchDraw coalesces redraw requests: the layer is drawn once on the next
// frame no matter how many times this is called in between. A detached
// layer draws immediately since there is no clock to defer to.
func (l *Layer) BatchDraw() {
	if l.Destroyed() {
		return
	}
	if l.stage == nil {
		l.Draw()
		return
	}
	l.stage.clock.Schedule(l)
}

// DrawCount reports how many times the layer has actually been drawn.
func (l *Layer) DrawCount() int { return l.draws }

// Destroy detaches the layer from its stage and destroys its subtree.
func (l *Layer) Destroy() {
	if l.Destroyed() {
		return
	}
	if l.stage != nil {
		l.stage.removeLayer(l)
	}
	l.Node.Destroy()
}
