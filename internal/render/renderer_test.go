package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

func testContext(t *testing.T) (Context, *scene.Stage, *scene.Layer) {
	t.Helper()
	stage := scene.NewStage(800, 600)
	layer := scene.NewLayer("main")
	stage.Add(layer)
	return Context{Layer: layer, Stage: stage}, stage, layer
}

func rectElement(id string) canvas.Element {
	return canvas.Element{
		ID:        id,
		Type:      canvas.TypeRectangle,
		X:         10,
		Y:         20,
		Visible:   true,
		Listening: true,
		Props: canvas.Props{
			Width:  canvas.Float(100),
			Height: canvas.Float(60),
		},
	}
}

func TestRendererLifecycle(t *testing.T) {
	ctx, _, layer := testContext(t)

	r := NewRenderer(rectElement("el_1"), ctx, &rectShape{})

	assert.Nil(t, r.Node(), "nothing drawn before Render")

	node := r.Render()
	require.NotNil(t, node)
	assert.Len(t, layer.Children(), 1)

	x, y := node.Position()
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
	assert.Equal(t, "el_1", node.ID())
	assert.Equal(t, string(canvas.TypeRectangle), node.Name())

	// Render is not re-entrant; a second call returns the same node.
	assert.Same(t, node, r.Render())
	assert.Len(t, layer.Children(), 1)

	el := rectElement("el_1")
	el.X = 55
	r.Update(el)
	x, _ = node.Position()
	assert.Equal(t, 55.0, x)

	r.Destroy()
	assert.Nil(t, r.Node())
	assert.Empty(t, layer.Children())
	assert.True(t, node.Destroyed())

	// Destroyed is terminal.
	r.Destroy()
	r.Update(el)
	assert.Nil(t, r.Render())
}

func TestRendererUpdateBeforeRenderIsNoop(t *testing.T) {
	ctx, _, layer := testContext(t)

	r := NewRenderer(rectElement("el_1"), ctx, &rectShape{})
	r.Update(rectElement("el_1"))
	assert.Nil(t, r.Node())
	assert.Empty(t, layer.Children())
}

func TestRendererZeroScaleNormalized(t *testing.T) {
	ctx, _, _ := testContext(t)

	el := rectElement("el_1")
	el.ScaleX, el.ScaleY = 0, 0
	r := NewRenderer(el, ctx, &rectShape{})
	node := r.Render()
	require.NotNil(t, node)
	sx, sy := node.Scale()
	assert.Equal(t, 1.0, sx)
	assert.Equal(t, 1.0, sy)
}

type failingShape struct {
	fail bool
}

func (s *failingShape) CreateNode(el canvas.Element) (*scene.Node, error) {
	if s.fail {
		return nil, errors.New("boom")
	}
	return scene.NewRect(scene.RectGeom{Width: 10, Height: 10}), nil
}

func (s *failingShape) UpdateNode(n *scene.Node, el canvas.Element) error {
	if s.fail {
		return errors.New("boom")
	}
	return nil
}

func TestRendererCreateFailureLeavesNoNode(t *testing.T) {
	ctx, _, layer := testContext(t)

	shape := &failingShape{fail: true}
	r := NewRenderer(rectElement("el_1"), ctx, shape)
	assert.Nil(t, r.Render())
	assert.Empty(t, layer.Children())

	// A later update retries construction once the shape recovers.
	shape.fail = false
	r.Update(rectElement("el_1"))
	assert.NotNil(t, r.Node())
	assert.Len(t, layer.Children(), 1)
}

func TestRendererDegenerateGeometryOmitted(t *testing.T) {
	ctx, _, layer := testContext(t)

	el := canvas.Element{
		ID:      "conn_1",
		Type:    canvas.TypeConnector,
		Visible: true,
	}
	r := NewRenderer(el, ctx, &connectorShape{})
	assert.Nil(t, r.Render(), "connector without endpoints draws nothing")
	assert.Empty(t, layer.Children())

	// Geometry filling in later attaches the node.
	withGeom := el.WithEndpoint(canvas.EndpointStart, canvas.Point{X: 0, Y: 0})
	withGeom = withGeom.WithEndpoint(canvas.EndpointEnd, canvas.Point{X: 100, Y: 50})
	r.Update(withGeom)
	require.NotNil(t, r.Node())
	assert.Len(t, layer.Children(), 1)
}

func TestRendererClickStopsPropagationAndReportsElement(t *testing.T) {
	ctx, _, _ := testContext(t)

	var clicked []string
	ctx.Callbacks.OnElementClick = func(ev *scene.Event, el canvas.Element) {
		clicked = append(clicked, el.ID)
	}

	r := NewRenderer(rectElement("el_1"), ctx, &rectShape{})
	node := r.Render()
	require.NotNil(t, node)

	var reachedLayer bool
	ctx.Layer.On("click", func(ev *scene.Event) { reachedLayer = true })

	node.Fire("click", &scene.Event{Type: "click"})
	assert.Equal(t, []string{"el_1"}, clicked)
	assert.False(t, reachedLayer, "element clicks do not bubble to the layer")
}

func TestRendererHoverSetsCursor(t *testing.T) {
	ctx, stage, _ := testContext(t)

	r := NewRenderer(rectElement("el_1"), ctx, &rectShape{})
	node := r.Render()
	require.NotNil(t, node)

	node.Fire("mouseenter", &scene.Event{Type: "mouseenter"})
	assert.Equal(t, "pointer", stage.Cursor())
	node.Fire("mouseleave", &scene.Event{Type: "mouseleave"})
	assert.Equal(t, "default", stage.Cursor())
}

func TestRendererTextHoverUnderline(t *testing.T) {
	ctx, stage, _ := testContext(t)

	el := canvas.Element{
		ID: "el_t", Type: canvas.TypeText, Visible: true, Listening: true,
		Props: canvas.Props{Text: canvas.Str("hello")},
	}
	r := NewRenderer(el, ctx, &textShape{})
	node := r.Render()
	require.NotNil(t, node)

	node.Fire("mouseenter", &scene.Event{Type: "mouseenter"})
	assert.Equal(t, "text", stage.Cursor())
	g, ok := node.Geom().(scene.TextGeom)
	require.True(t, ok)
	assert.True(t, g.Underline)

	node.Fire("mouseleave", &scene.Event{Type: "mouseleave"})
	g = node.Geom().(scene.TextGeom)
	assert.False(t, g.Underline)
}

func TestRendererStrokeHoverThickens(t *testing.T) {
	ctx, _, _ := testContext(t)

	el := canvas.Element{
		ID: "el_s", Type: canvas.TypePenStroke, Visible: true, Listening: true,
		Props: canvas.Props{Points: []float64{0, 0, 10, 10, 20, 5}},
	}
	r := NewRenderer(el, ctx, newStrokeShape(canvas.TypePenStroke))
	node := r.Render()
	require.NotNil(t, node)
	base := node.Style().StrokeWidth

	node.Fire("mouseenter", &scene.Event{Type: "mouseenter"})
	assert.Equal(t, base+hoverWidthBoost, node.Style().StrokeWidth)
	node.Fire("mouseleave", &scene.Event{Type: "mouseleave"})
	assert.Equal(t, base, node.Style().StrokeWidth)
}

func TestRendererDblClickStartsTextEdit(t *testing.T) {
	ctx, _, _ := testContext(t)

	var edited []string
	ctx.Callbacks.OnStartTextEdit = func(id string) { edited = append(edited, id) }

	r := NewRenderer(rectElement("el_1"), ctx, &rectShape{})
	node := r.Render()
	require.NotNil(t, node)

	node.Fire("dblclick", &scene.Event{Type: "dblclick"})
	node.Fire("dbltap", &scene.Event{Type: "dbltap"})
	assert.Equal(t, []string{"el_1", "el_1"}, edited)
}
