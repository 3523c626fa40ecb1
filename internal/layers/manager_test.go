package layers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/render"
	"github.com/quillboard/quillboard/backend-go/internal/scene"
)

func newTestManager(t *testing.T) (*Manager, *scene.Stage) {
	t.Helper()
	stage := scene.NewStage(1000, 800)
	m := NewManager(render.Defaults(), render.Callbacks{})
	m.Initialize(stage)
	return m, stage
}

func rectAt(id string, x, y, w, h float64) canvas.Element {
	return canvas.Element{
		ID: id, Type: canvas.TypeRectangle,
		X: x, Y: y, Visible: true, Listening: true,
		Props: canvas.Props{Width: canvas.Float(w), Height: canvas.Float(h)},
	}
}

func TestInitializeBuildsFixedStack(t *testing.T) {
	m, stage := newTestManager(t)

	layers := stage.Layers()
	require.Len(t, layers, 5)
	var names []string
	for _, l := range layers {
		names = append(names, l.Name())
	}
	assert.Equal(t, []string{"background", "main", "connector", "ui", "tool"}, names)
	assert.Same(t, layers[1], m.MainLayer())
	assert.Same(t, layers[2], m.ConnectorLayer())
}

func TestReconcileCardinality(t *testing.T) {
	m, _ := newTestManager(t)

	desired := map[string]canvas.Element{
		"a": rectAt("a", 0, 0, 50, 50),
		"b": rectAt("b", 100, 0, 50, 50),
	}
	m.Reconcile(desired)
	assert.Equal(t, 2, m.RendererCount())
	assert.Len(t, m.MainLayer().Children(), 2)

	// Reconciling the same set again changes nothing.
	m.Reconcile(desired)
	assert.Equal(t, 2, m.RendererCount())
	assert.Len(t, m.MainLayer().Children(), 2)
}

func TestReconcileUpdatesInPlace(t *testing.T) {
	m, _ := newTestManager(t)

	m.Reconcile(map[string]canvas.Element{"a": rectAt("a", 0, 0, 50, 50)})
	node := m.NodeByID("a")
	require.NotNil(t, node)

	m.Reconcile(map[string]canvas.Element{"a": rectAt("a", 50, 50, 50, 50)})
	assert.Same(t, node, m.NodeByID("a"), "update reuses the renderer and its node")
	x, y := node.Position()
	assert.Equal(t, 50.0, x)
	assert.Equal(t, 50.0, y)
}

func TestReconcileRemovesAbsent(t *testing.T) {
	m, _ := newTestManager(t)

	m.Reconcile(map[string]canvas.Element{
		"a": rectAt("a", 0, 0, 50, 50),
		"b": rectAt("b", 100, 0, 50, 50),
	})
	bNode := m.NodeByID("b")
	require.NotNil(t, bNode)

	m.Reconcile(map[string]canvas.Element{"a": rectAt("a", 0, 0, 50, 50)})
	assert.Equal(t, 1, m.RendererCount())
	assert.Nil(t, m.NodeByID("b"))
	assert.True(t, bNode.Destroyed())
}

func TestReconcileSkipsUnsupportedTypes(t *testing.T) {
	m, _ := newTestManager(t)

	el := rectAt("x", 0, 0, 10, 10)
	el.Type = "hologram"
	m.Reconcile(map[string]canvas.Element{
		"a": rectAt("a", 0, 0, 50, 50),
		"x": el,
	})
	assert.Equal(t, 1, m.RendererCount())
	assert.Nil(t, m.NodeByID("x"))
}

func TestReconcileSingleBatchedRedraw(t *testing.T) {
	m, stage := newTestManager(t)

	desired := make(map[string]canvas.Element, 20)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("el_%d", i)
		desired[id] = rectAt(id, float64(i)*10, 0, 8, 8)
	}
	m.Reconcile(desired)

	stage.Clock().Step()
	assert.Equal(t, 1, m.MainLayer().DrawCount(), "one pass, one draw")
}

func TestQueryRectOpenInterval(t *testing.T) {
	m, _ := newTestManager(t)

	m.Reconcile(map[string]canvas.Element{
		"a": rectAt("a", 0, 0, 100, 100),
		"b": rectAt("b", 300, 300, 50, 50),
	})

	ids := m.QueryRect(scene.Rect{X: 50, Y: 50, Width: 100, Height: 100})
	assert.Equal(t, []string{"a"}, ids)

	// Edge contact is not overlap.
	ids = m.QueryRect(scene.Rect{X: 100, Y: 0, Width: 50, Height: 50})
	assert.Empty(t, ids)

	ids = m.QueryRect(scene.Rect{X: 0, Y: 0, Width: 400, Height: 400})
	assert.Len(t, ids, 2)
}

func TestTeardownIdempotent(t *testing.T) {
	m, stage := newTestManager(t)

	m.Reconcile(map[string]canvas.Element{"a": rectAt("a", 0, 0, 50, 50)})
	m.Teardown()
	assert.Empty(t, stage.Layers())
	assert.Equal(t, 0, m.RendererCount())
	assert.Nil(t, m.MainLayer())

	m.Teardown()
	assert.Empty(t, stage.Layers())
}
