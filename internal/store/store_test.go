package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
)

func docWithConnector() *canvas.Document {
	doc := canvas.NewEmptyDocument("board_1", "Test Board")
	doc.Elements["conn_1"] = canvas.Element{
		ID: "conn_1", Type: canvas.TypeConnector,
		Visible: true, Listening: true,
		StartPoint: &canvas.Point{X: 0, Y: 0},
		EndPoint:   &canvas.Point{X: 100, Y: 100},
	}
	doc.Elements["el_1"] = canvas.Element{
		ID: "el_1", Type: canvas.TypeRectangle,
		X: 10, Y: 20, Visible: true, Listening: true,
		Props: canvas.Props{Width: canvas.Float(50), Height: canvas.Float(50)},
	}
	return doc
}

func TestLoadDocumentCopies(t *testing.T) {
	s := New()
	src := docWithConnector()
	s.LoadDocument(src)

	// Mutating the caller's document does not leak into the store.
	src.Elements["el_1"] = canvas.Element{ID: "el_1", Type: canvas.TypeCircle}
	el, ok := s.Element("el_1")
	require.True(t, ok)
	assert.Equal(t, canvas.TypeRectangle, el.Type)
}

func TestSelectionDropsUnknownIDs(t *testing.T) {
	s := New()
	s.LoadDocument(docWithConnector())

	s.SetSelection([]string{"el_1", "ghost", "conn_1"})
	assert.Equal(t, []string{"el_1", "conn_1"}, s.SelectedElementIDs())
}

func TestEndpointDragLifecycle(t *testing.T) {
	s := New()
	s.LoadDocument(docWithConnector())

	require.NoError(t, s.BeginEndpointDrag("conn_1", canvas.EndpointEnd))

	// Double begin is rejected while the slot is occupied.
	assert.ErrorIs(t, s.BeginEndpointDrag("conn_1", canvas.EndpointStart), ErrDraftActive)

	require.NoError(t, s.UpdateEndpointDrag(canvas.Point{X: 250, Y: 70}))

	// The draft shadows the document in reads but not in the document
	// itself.
	el, _ := s.Element("conn_1")
	_, end, _ := el.Endpoints()
	assert.Equal(t, canvas.Point{X: 250, Y: 70}, end)
	raw := s.Document().Elements["conn_1"]
	_, rawEnd, _ := raw.Endpoints()
	assert.Equal(t, canvas.Point{X: 100, Y: 100}, rawEnd)

	require.NoError(t, s.CommitEndpointDrag())
	committed := s.Document().Elements["conn_1"]
	_, committedEnd, _ := committed.Endpoints()
	assert.Equal(t, canvas.Point{X: 250, Y: 70}, committedEnd)

	_, live := s.Draft()
	assert.False(t, live)
	assert.ErrorIs(t, s.CommitEndpointDrag(), ErrNoActiveDraft)
	assert.ErrorIs(t, s.UpdateEndpointDrag(canvas.Point{}), ErrNoActiveDraft)
}

func TestBeginEndpointDragValidation(t *testing.T) {
	s := New()
	s.LoadDocument(docWithConnector())

	assert.Error(t, s.BeginEndpointDrag("ghost", canvas.EndpointEnd))
	assert.Error(t, s.BeginEndpointDrag("el_1", canvas.EndpointEnd))

	empty := New()
	assert.ErrorIs(t, empty.BeginEndpointDrag("conn_1", canvas.EndpointEnd), ErrNoDocument)
}

func TestSnapshotUndo(t *testing.T) {
	s := New()
	s.LoadDocument(docWithConnector())

	s.SaveSnapshot()
	require.NoError(t, s.BeginEndpointDrag("conn_1", canvas.EndpointEnd))
	require.NoError(t, s.UpdateEndpointDrag(canvas.Point{X: 400, Y: 400}))
	require.NoError(t, s.CommitEndpointDrag())

	require.NoError(t, s.Undo())
	el, _ := s.Element("conn_1")
	_, end, _ := el.Endpoints()
	assert.Equal(t, canvas.Point{X: 100, Y: 100}, end)

	assert.ErrorIs(t, s.Undo(), ErrNothingToUndo)
}

func TestOnChangeFiresOutsideMutations(t *testing.T) {
	s := New()
	var fired int
	s.OnChange(func() {
		fired++
		// Re-entrant reads must not deadlock.
		s.SelectedElementIDs()
	})

	s.LoadDocument(docWithConnector())
	assert.Equal(t, 1, fired)

	s.SetSelection([]string{"el_1"})
	assert.Equal(t, 2, fired)

	require.NoError(t, s.BeginEndpointDrag("conn_1", canvas.EndpointEnd))
	require.NoError(t, s.UpdateEndpointDrag(canvas.Point{X: 1, Y: 1}))
	assert.Equal(t, 2, fired, "draft moves do not notify")

	require.NoError(t, s.CommitEndpointDrag())
	assert.Equal(t, 3, fired)
}

func TestApplyOperations(t *testing.T) {
	s := New()
	s.LoadDocument(docWithConnector())

	newEl := canvas.Element{
		ID: "el_2", Type: canvas.TypeCircle,
		X: 5, Y: 5, Visible: true, Listening: true,
		Props: canvas.Props{Radius: canvas.Float(25)},
	}
	raw, err := json.Marshal(newEl)
	require.NoError(t, err)

	seq, err := s.ApplyOperation(Operation{
		ID: "op_1", Type: OpElementCreate, Element: raw,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	seq, err = s.ApplyOperation(Operation{
		ID: "op_2", Type: OpElementTransform, ElementID: "el_2",
		Transform: json.RawMessage(`{"x":77,"rotation":45}`),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	el, ok := s.Element("el_2")
	require.True(t, ok)
	assert.Equal(t, 77.0, el.X)
	assert.Equal(t, 45.0, el.Rotation)

	_, err = s.ApplyOperation(Operation{
		ID: "op_3", Type: OpElementDelete, ElementID: "el_2",
	})
	require.NoError(t, err)
	_, ok = s.Element("el_2")
	assert.False(t, ok)

	_, err = s.ApplyOperation(Operation{ID: "op_4", Type: "element.teleport"})
	assert.Error(t, err)
	assert.Equal(t, int64(3), s.ServerSeq(), "failed ops do not advance the sequence")
	assert.Len(t, s.OpLog(), 3)
}

func TestApplyBoardOperations(t *testing.T) {
	s := New()
	s.LoadDocument(docWithConnector())

	_, err := s.ApplyOperation(Operation{
		ID: "op_1", Type: OpBoardUpdate,
		Changes: json.RawMessage(`{"name":"Renamed","width":2560,"background":"#ffffff"}`),
	})
	require.NoError(t, err)

	doc := s.Document()
	assert.Equal(t, "Renamed", doc.Board.Name)
	assert.Equal(t, 2560, doc.Board.Width)
	assert.Equal(t, "#ffffff", doc.Board.Background)

	_, err = s.ApplyOperation(Operation{ID: "op_2", Type: OpBoardRename, Name: "Final"})
	require.NoError(t, err)
	assert.Equal(t, "Final", s.Document().Board.Name)
}
