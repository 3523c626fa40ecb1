package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddReparents(t *testing.T) {
	g1 := NewGroup()
	g2 := NewGroup()
	n := NewRect(RectGeom{Width: 10, Height: 10})

	g1.Add(n)
	require.Equal(t, g1, n.Parent())
	g2.Add(n)
	assert.Equal(t, g2, n.Parent())
	assert.Empty(t, g1.Children())
	assert.Len(t, g2.Children(), 1)
}

func TestNonContainerIgnoresAdd(t *testing.T) {
	r := NewRect(RectGeom{Width: 10, Height: 10})
	r.Add(NewGroup())
	assert.Empty(t, r.Children())
}

func TestEventBubblingAndStopPropagation(t *testing.T) {
	g := NewGroup()
	n := NewCircle(CircleGeom{Radius: 5})
	g.Add(n)

	var order []string
	n.On("click", func(e *Event) { order = append(order, "child") })
	g.On("click", func(e *Event) { order = append(order, "parent") })

	n.Fire("click", nil)
	assert.Equal(t, []string{"child", "parent"}, order)

	order = nil
	n.Off("click")
	n.On("click", func(e *Event) {
		order = append(order, "child")
		e.StopPropagation()
	})
	n.Fire("click", nil)
	assert.Equal(t, []string{"child"}, order)
}

func TestDestroyedNodeSwallowsEverything(t *testing.T) {
	n := NewRect(RectGeom{Width: 5, Height: 5})
	fired := false
	n.On("click", func(e *Event) { fired = true })

	n.Destroy()
	n.Destroy() // second call is a no-op, not a panic

	n.Fire("click", nil)
	assert.False(t, fired)
	assert.True(t, n.Destroyed())
}

func TestDestroySubtreeDetaches(t *testing.T) {
	g := NewGroup()
	child := NewRect(RectGeom{Width: 5, Height: 5})
	g.Add(child)

	g.Destroy()
	assert.True(t, child.Destroyed())
	assert.Nil(t, child.Parent())
}

func TestGetClientRectComposesTransforms(t *testing.T) {
	g := NewGroup()
	g.SetPosition(100, 50)
	n := NewRect(RectGeom{Width: 10, Height: 20})
	n.SetPosition(5, 5)
	n.SetScale(2, 1)
	g.Add(n)

	r := n.GetClientRect()
	assert.Equal(t, Rect{X: 105, Y: 55, Width: 20, Height: 20}, r)

	// The group's rect covers its children.
	assert.Equal(t, r, g.GetClientRect())

	n.Hide()
	assert.True(t, n.GetClientRect().IsEmpty())
}

func TestFindByName(t *testing.T) {
	g := NewGroup()
	a := NewCircle(CircleGeom{Radius: 2})
	a.SetName("handle")
	b := NewCircle(CircleGeom{Radius: 2})
	b.SetName("handle")
	c := NewCircle(CircleGeom{Radius: 2})
	c.SetName("other")
	g.Add(a, b, c)

	assert.Len(t, g.FindByName("handle"), 2)
	assert.Len(t, g.FindByName("missing"), 0)
}

func TestBatchDrawCoalesces(t *testing.T) {
	stage := NewStage(800, 600)
	l := NewLayer("main")
	stage.Add(l)

	for i := 0; i < 25; i++ {
		l.BatchDraw()
	}
	assert.Equal(t, 0, l.DrawCount())

	stage.Clock().Step()
	assert.Equal(t, 1, l.DrawCount())

	// Nothing pending: another step draws nothing.
	stage.Clock().Step()
	assert.Equal(t, 1, l.DrawCount())
}

func TestDrawFlushesToSink(t *testing.T) {
	stage := NewStage(800, 600)
	l := NewLayer("main")
	stage.Add(l)
	sink := &recordingSink{}
	stage.SetSink(sink)

	n := NewRect(RectGeom{Width: 10, Height: 10})
	n.SetID("elem_a")
	n.SetStyle(Style{Fill: "#fff", Stroke: "#000", StrokeWidth: 2})
	l.Add(n)

	l.Draw()
	require.Len(t, sink.frames, 1)
	require.Len(t, sink.frames[0], 1)
	cmd := sink.frames[0][0]
	assert.Equal(t, "path", cmd.Op)
	assert.Equal(t, "elem_a", cmd.NodeID)
	assert.Equal(t, "#fff", cmd.Fill)
}

func TestCompileSkipsInvisibleAndDegenerate(t *testing.T) {
	l := NewLayer("main")
	hidden := NewRect(RectGeom{Width: 10, Height: 10})
	hidden.Hide()
	short := NewLine(LineGeom{Points: []float64{1, 2}})
	l.Add(hidden, short)

	assert.Empty(t, Compile(l))
}

func TestClockDeferRunsAfterDraws(t *testing.T) {
	stage := NewStage(100, 100)
	l := NewLayer("main")
	stage.Add(l)

	var order []string
	stage.SetSink(sinkFunc(func(*Layer, []DrawCommand) { order = append(order, "draw") }))
	l.BatchDraw()
	stage.Clock().Defer(func() { order = append(order, "defer") })

	stage.Clock().Step()
	assert.Equal(t, []string{"draw", "defer"}, order)
}

func TestLimiter(t *testing.T) {
	l := Limiter{Interval: 16 * time.Millisecond}
	t0 := time.Now()

	assert.True(t, l.Allow(t0))
	assert.False(t, l.Allow(t0.Add(5*time.Millisecond)))
	assert.False(t, l.Allow(t0.Add(15*time.Millisecond)))
	assert.True(t, l.Allow(t0.Add(17*time.Millisecond)))

	unlimited := Limiter{}
	assert.True(t, unlimited.Allow(t0))
	assert.True(t, unlimited.Allow(t0))
}

func TestStagePointerDragLifecycle(t *testing.T) {
	stage := NewStage(800, 600)
	l := NewLayer("main")
	stage.Add(l)

	n := NewRect(RectGeom{Width: 40, Height: 40})
	n.SetPosition(100, 100)
	n.SetDraggable(true)
	l.Add(n)

	var events []string
	n.On("dragstart dragmove dragend", func(e *Event) { events = append(events, e.Type) })

	stage.PointerDown(110, 110)
	stage.PointerMove(130, 125)
	stage.PointerMove(140, 130)
	stage.PointerUp(140, 130)

	assert.Equal(t, []string{"dragstart", "dragmove", "dragmove", "dragend"}, events)
	x, y := n.Position()
	assert.Equal(t, 130.0, x)
	assert.Equal(t, 120.0, y)
}

func TestStageHoverTransitions(t *testing.T) {
	stage := NewStage(800, 600)
	l := NewLayer("main")
	stage.Add(l)

	n := NewRect(RectGeom{Width: 40, Height: 40})
	n.SetPosition(100, 100)
	l.Add(n)

	var events []string
	n.On("mouseenter mouseleave", func(e *Event) { events = append(events, e.Type) })

	stage.PointerMove(110, 110)
	stage.PointerMove(120, 120)
	stage.PointerMove(500, 500)
	assert.Equal(t, []string{"mouseenter", "mouseleave"}, events)
}

func TestStageHitRespectsListening(t *testing.T) {
	stage := NewStage(800, 600)
	l := NewLayer("main")
	stage.Add(l)

	deaf := NewRect(RectGeom{Width: 40, Height: 40})
	deaf.SetListening(false)
	below := NewRect(RectGeom{Width: 40, Height: 40})
	l.Add(below, deaf)

	assert.Equal(t, below, stage.HitAt(10, 10))
}

type recordingSink struct {
	frames [][]DrawCommand
}

func (s *recordingSink) Flush(_ *Layer, commands []DrawCommand) {
	s.frames = append(s.frames, commands)
}

type sinkFunc func(*Layer, []DrawCommand)

func (f sinkFunc) Flush(l *Layer, c []DrawCommand) { f(l, c) }
