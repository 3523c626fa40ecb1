package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/store"
)

func newSampleEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(1920, 1080)
	e.LoadSampleDocument("board_demo")
	return e
}

func TestLoadSampleDocumentReconciles(t *testing.T) {
	e := newSampleEngine(t)

	doc := e.Store().Document()
	require.NotNil(t, doc)
	assert.Equal(t, len(doc.Elements), e.Layers().RendererCount(),
		"every supported element gets exactly one renderer")
}

func TestLoadDocumentFromJSON(t *testing.T) {
	e := NewEngine(1920, 1080)

	doc := canvas.NewEmptyDocument("board_1", "From JSON")
	doc.Elements["el_1"] = canvas.Element{
		ID: "el_1", Type: canvas.TypeRectangle,
		X: 100, Y: 100, Visible: true, Listening: true,
		Props: canvas.Props{Width: canvas.Float(50), Height: canvas.Float(50)},
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, e.LoadDocument(string(raw)))
	assert.Equal(t, 1, e.Layers().RendererCount())

	assert.Error(t, e.LoadDocument("{not json"))
}

func TestTickEmitsFramesOnceThenGoesQuiet(t *testing.T) {
	e := newSampleEngine(t)

	first := e.Tick()
	assert.NotEqual(t, "[]", first, "the load's batched redraw lands on the first tick")

	var frames []LayerFrame
	require.NoError(t, json.Unmarshal([]byte(first), &frames))
	require.NotEmpty(t, frames)

	// Nothing changed, nothing scheduled, nothing drawn.
	assert.Equal(t, "[]", e.Tick())
}

func TestRenderDrawsAllLayers(t *testing.T) {
	e := newSampleEngine(t)

	var frames []LayerFrame
	require.NoError(t, json.Unmarshal([]byte(e.Render()), &frames))
	assert.Len(t, frames, 5)
}

func TestSelectionDrivesOverlay(t *testing.T) {
	e := newSampleEngine(t)

	var connectorID, rectID string
	for id, el := range e.Store().Document().Elements {
		switch el.Type {
		case canvas.TypeConnector:
			connectorID = id
		case canvas.TypeRectangle:
			rectID = id
		}
	}
	require.NotEmpty(t, connectorID)
	require.NotEmpty(t, rectID)

	e.SetSelection([]string{connectorID})
	assert.True(t, e.Overlay().HasActiveConnectors())

	e.SetSelection([]string{rectID})
	assert.False(t, e.Overlay().HasActiveConnectors(),
		"selecting a non-connector clears the endpoint overlay")

	e.SetSelection(nil)
	assert.False(t, e.Overlay().HasActiveConnectors())
}

func TestHitTestResolvesElementID(t *testing.T) {
	e := NewEngine(1920, 1080)

	doc := canvas.NewEmptyDocument("board_1", "Hit")
	doc.Elements["el_1"] = canvas.Element{
		ID: "el_1", Type: canvas.TypeRectangle,
		X: 100, Y: 100, Visible: true, Listening: true,
		Props: canvas.Props{Width: canvas.Float(200), Height: canvas.Float(150)},
	}
	raw, _ := json.Marshal(doc)
	require.NoError(t, e.LoadDocument(string(raw)))

	assert.Equal(t, "el_1", e.HitTest(150, 150))
	assert.Equal(t, "", e.HitTest(10, 10))
}

func TestQueryRectStrictOverlap(t *testing.T) {
	e := NewEngine(1920, 1080)

	doc := canvas.NewEmptyDocument("board_1", "Query")
	doc.Elements["el_1"] = canvas.Element{
		ID: "el_1", Type: canvas.TypeRectangle,
		Visible: true, Listening: true,
		Props: canvas.Props{Width: canvas.Float(100), Height: canvas.Float(100)},
	}
	raw, _ := json.Marshal(doc)
	require.NoError(t, e.LoadDocument(string(raw)))

	assert.Equal(t, []string{"el_1"}, e.QueryRect(50, 50, 10, 10))
	assert.Empty(t, e.QueryRect(100, 0, 50, 50), "edge contact is not overlap")
}

func TestDragEndWritesTransformOperation(t *testing.T) {
	e := NewEngine(1920, 1080)

	doc := canvas.NewEmptyDocument("board_1", "Drag")
	doc.Elements["el_1"] = canvas.Element{
		ID: "el_1", Type: canvas.TypeRectangle,
		X: 100, Y: 100, Visible: true, Listening: true, Draggable: true,
		Props: canvas.Props{Width: canvas.Float(100), Height: canvas.Float(100)},
	}
	raw, _ := json.Marshal(doc)
	require.NoError(t, e.LoadDocument(string(raw)))

	e.PointerDown(150, 150)
	e.PointerMove(180, 170)
	e.PointerMove(200, 190)
	e.PointerUp(200, 190)

	el, ok := e.Store().Element("el_1")
	require.True(t, ok)
	assert.Equal(t, 150.0, el.X)
	assert.Equal(t, 140.0, el.Y)

	ops := e.Store().OpLog()
	require.Len(t, ops, 1)
	assert.Equal(t, store.OpElementTransform, ops[0].Type)

	// The pre-drag snapshot makes the move undoable.
	require.NoError(t, e.Undo())
	el, _ = e.Store().Element("el_1")
	assert.Equal(t, 100.0, el.X)
}

func TestEndpointDragThroughEngine(t *testing.T) {
	e := NewEngine(1920, 1080)

	doc := canvas.NewEmptyDocument("board_1", "Connector")
	doc.Elements["conn_1"] = canvas.Element{
		ID: "conn_1", Type: canvas.TypeConnector,
		Visible: true, Listening: true,
		StartPoint: &canvas.Point{X: 200, Y: 200},
		EndPoint:   &canvas.Point{X: 600, Y: 400},
	}
	raw, _ := json.Marshal(doc)
	require.NoError(t, e.LoadDocument(string(raw)))

	e.SetSelection([]string{"conn_1"})
	require.True(t, e.Overlay().HasActiveConnectors())

	// Grab the end handle and drag it.
	e.PointerDown(600, 400)
	e.PointerMove(650, 450)
	e.PointerMove(700, 500)
	e.PointerUp(700, 500)

	el, _ := e.Store().Element("conn_1")
	_, end, ok := el.Endpoints()
	require.True(t, ok)
	assert.Equal(t, canvas.Point{X: 700, Y: 500}, end)
	assert.True(t, e.Overlay().HasActiveConnectors(), "handles rebuilt after commit")
}

func TestSubmitOperation(t *testing.T) {
	e := newSampleEngine(t)

	seq, err := e.SubmitOperation(`{"id":"op_x","type":"board.rename","name":"Renamed"}`)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	assert.Equal(t, "Renamed", e.Store().Document().Board.Name)

	_, err = e.SubmitOperation(`{"id":"op_y","type":"element.warp"}`)
	assert.Error(t, err)
}

func TestUpdateDocumentPreservesSelection(t *testing.T) {
	e := NewEngine(1920, 1080)

	doc := canvas.NewEmptyDocument("board_1", "Sel")
	doc.Elements["el_1"] = canvas.Element{
		ID: "el_1", Type: canvas.TypeRectangle,
		Visible: true, Listening: true,
		Props: canvas.Props{Width: canvas.Float(10), Height: canvas.Float(10)},
	}
	raw, _ := json.Marshal(doc)
	require.NoError(t, e.LoadDocument(string(raw)))
	e.SetSelection([]string{"el_1"})

	doc.Board.Name = "Sel v2"
	raw, _ = json.Marshal(doc)
	require.NoError(t, e.UpdateDocument(string(raw)))
	assert.Equal(t, []string{"el_1"}, e.Store().SelectedElementIDs())
}
