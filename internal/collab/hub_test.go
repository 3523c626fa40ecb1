package collab

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
)

func testLoader(doc *canvas.Document) Loader {
	return func(ctx context.Context, boardID string) (*canvas.Document, error) {
		return doc.Clone(), nil
	}
}

func drain(c *Client) []Message {
	var msgs []Message
	for {
		select {
		case data := <-c.send:
			var m Message
			if err := json.Unmarshal(data, &m); err == nil {
				msgs = append(msgs, m)
			}
		default:
			return msgs
		}
	}
}

func joinClient(h *Hub, userID, boardID, clientID string) *Client {
	c := NewClient(h, nil, userID, userID, boardID, clientID)
	h.addClient(context.Background(), c)
	return c
}

func TestJoinSyncsDocument(t *testing.T) {
	doc := canvas.NewEmptyDocument("board_1", "Synced")
	doc.Elements["el_1"] = canvas.Element{ID: "el_1", Type: canvas.TypeRectangle, Visible: true}

	h := NewHub(testLoader(doc), nil)
	c := joinClient(h, "user_1", "board_1", "client_1")

	msgs := drain(c)
	require.NotEmpty(t, msgs)
	assert.Equal(t, TypeDocSync, msgs[0].Type)

	var sync DocSyncPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &sync))
	require.NotNil(t, sync.Document)
	assert.Equal(t, "Synced", sync.Document.Board.Name)
	assert.Contains(t, sync.Document.Elements, "el_1")
}

func TestOpSubmitAckAndBroadcast(t *testing.T) {
	doc := canvas.NewEmptyDocument("board_1", "Ops")
	doc.Elements["el_1"] = canvas.Element{ID: "el_1", Type: canvas.TypeRectangle, Visible: true}

	h := NewHub(testLoader(doc), nil)
	sender := joinClient(h, "user_1", "board_1", "client_1")
	peer := joinClient(h, "user_2", "board_1", "client_2")
	drain(sender)
	drain(peer)

	payload, _ := json.Marshal(map[string]interface{}{
		"operation": map[string]interface{}{
			"id":        "op_1",
			"type":      "element.transform",
			"elementId": "el_1",
			"transform": map[string]float64{"x": 42},
		},
	})
	h.handleMessage(sender, &Message{
		Type: TypeOpSubmit, BoardID: "board_1",
		UserID: "user_1", ClientID: "client_1",
		Payload: payload,
	})

	senderMsgs := drain(sender)
	require.Len(t, senderMsgs, 1)
	assert.Equal(t, TypeOpAck, senderMsgs[0].Type)
	var ack OperationAckPayload
	require.NoError(t, json.Unmarshal(senderMsgs[0].Payload, &ack))
	assert.Equal(t, "op_1", ack.OperationID)
	assert.Equal(t, int64(1), ack.ServerSeq)

	peerMsgs := drain(peer)
	require.Len(t, peerMsgs, 1)
	assert.Equal(t, TypeOpBroadcast, peerMsgs[0].Type)

	state := h.RoomState("board_1")
	require.NotNil(t, state)
	el, ok := state.Element("el_1")
	require.True(t, ok)
	assert.Equal(t, 42.0, el.X)
}

func TestOpSubmitNackOnBadOperation(t *testing.T) {
	h := NewHub(testLoader(canvas.NewEmptyDocument("board_1", "Nack")), nil)
	sender := joinClient(h, "user_1", "board_1", "client_1")
	drain(sender)

	payload, _ := json.Marshal(map[string]interface{}{
		"operation": map[string]interface{}{
			"id":        "op_bad",
			"type":      "element.transform",
			"elementId": "ghost",
			"transform": map[string]float64{"x": 1},
		},
	})
	h.handleMessage(sender, &Message{
		Type: TypeOpSubmit, BoardID: "board_1",
		UserID: "user_1", ClientID: "client_1",
		Payload: payload,
	})

	msgs := drain(sender)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypeOpNack, msgs[0].Type)
	var nack OperationNackPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &nack))
	assert.Equal(t, "op_bad", nack.OperationID)
	assert.NotEmpty(t, nack.Reason)
}

func TestLastLeavePersists(t *testing.T) {
	doc := canvas.NewEmptyDocument("board_1", "Persist")

	var saved int
	var savedSeq int64
	saver := func(ctx context.Context, boardID string, d *canvas.Document, seq int64) error {
		saved++
		savedSeq = seq
		return nil
	}

	h := NewHub(testLoader(doc), saver)
	c1 := joinClient(h, "user_1", "board_1", "client_1")
	c2 := joinClient(h, "user_2", "board_1", "client_2")
	drain(c1)
	drain(c2)

	payload, _ := json.Marshal(map[string]interface{}{
		"operation": map[string]interface{}{
			"id":   "op_1",
			"type": "board.rename",
			"name": "Persisted",
		},
	})
	h.handleMessage(c1, &Message{
		Type: TypeOpSubmit, BoardID: "board_1",
		UserID: "user_1", ClientID: "client_1",
		Payload: payload,
	})

	h.removeClient(context.Background(), c1)
	assert.Zero(t, saved, "room persists only when the last client leaves")

	h.removeClient(context.Background(), c2)
	assert.Equal(t, 1, saved)
	assert.Equal(t, int64(1), savedSeq)
	assert.Nil(t, h.RoomState("board_1"))
}

func TestPresenceFanout(t *testing.T) {
	h := NewHub(testLoader(canvas.NewEmptyDocument("board_1", "Presence")), nil)
	a := joinClient(h, "user_a", "board_1", "client_a")
	b := joinClient(h, "user_b", "board_1", "client_b")
	drain(a)
	drain(b)

	payload, _ := json.Marshal(PresencePayload{
		Cursor:    &CursorPos{X: 10, Y: 20},
		Selection: []string{"el_1"},
	})
	h.handleMessage(a, &Message{
		Type: TypePresenceUpdate, BoardID: "board_1",
		UserID: "user_a", ClientID: "client_a",
		Payload: payload,
	})

	assert.Empty(t, drain(a), "sender does not hear its own presence")
	msgs := drain(b)
	require.Len(t, msgs, 1)
	assert.Equal(t, TypePresenceUpdate, msgs[0].Type)
	assert.Equal(t, "user_a", msgs[0].UserID)
}
