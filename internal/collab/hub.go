package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/store"
)

// Loader fetches the persisted document when the first client opens a
// board. Saver writes it back when the last client leaves or the hub
// stops.
type (
	Loader func(ctx context.Context, boardID string) (*canvas.Document, error)
	Saver  func(ctx context.Context, boardID string, doc *canvas.Document, serverSeq int64) error
)

// Room is one live board: its connected clients, their presence, and the
// authoritative document state every operation is applied to.
type Room struct {
	boardID  string
	clients  map[string]*Client // clientID -> client
	presence *PresenceManager
	state    *store.Store
}

func newRoom(boardID string, doc *canvas.Document) *Room {
	st := store.New()
	st.LoadDocument(doc)
	return &Room{
		boardID:  boardID,
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
		state:    st,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // boardID -> room
	register   chan *Client
	unregister chan *Client

	loader Loader
	saver  Saver
}

func NewHub(loader Loader, saver Saver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		loader:     loader,
		saver:      saver,
	}
}

// Run processes joins and leaves until the context is canceled, then
// persists every open room.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.addClient(ctx, client)
		case client := <-h.unregister:
			h.removeClient(ctx, client)
		case <-ctx.Done():
			h.Stop(context.Background())
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Stop persists every open room's document.
func (h *Hub) Stop(ctx context.Context) {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.Unlock()

	for _, room := range rooms {
		h.persistRoom(ctx, room)
	}
}

// RoomState returns the live document state for a board, or nil when the
// board has no open room.
func (h *Hub) RoomState(boardID string) *store.Store {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[boardID]; ok {
		return room.state
	}
	return nil
}

func (h *Hub) addClient(ctx context.Context, client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		doc, err := h.loader(ctx, client.BoardID)
		if err != nil {
			h.mu.Unlock()
			slog.Error("load board", "board", client.BoardID, "error", err)
			client.SendError("board unavailable")
			return
		}
		room = newRoom(client.BoardID, doc)
		h.rooms[client.BoardID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Sync the full document to the new client before anything else.
	syncPayload, _ := json.Marshal(DocSyncPayload{
		Document:  room.state.Document(),
		ServerSeq: room.state.ServerSeq(),
	})
	client.Send(&Message{
		Type:    TypeDocSync,
		BoardID: client.BoardID,
		Seq:     room.state.ServerSeq(),
		Payload: syncPayload,
	})

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.BoardID, &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) removeClient(ctx context.Context, client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.BoardID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.BoardID)
	}
	h.mu.Unlock()

	if empty {
		h.persistRoom(ctx, room)
	}

	leavePayload, _ := json.Marshal(PresenceLeavePayload{
		UserID: client.UserID,
	})
	h.broadcastToRoom(client.BoardID, &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}, "")

	slog.Info("client left", "user", client.UserID, "board", client.BoardID)
}

func (h *Hub) persistRoom(ctx context.Context, room *Room) {
	if h.saver == nil {
		return
	}
	if err := h.saver(ctx, room.boardID, room.state.Document(), room.state.ServerSeq()); err != nil {
		slog.Error("persist board", "board", room.boardID, "error", err)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

// handleOpSubmit applies one operation to the room state; the sender
// gets an ack or nack, everyone else gets the operation replayed.
func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		sender.SendError("invalid operation payload")
		return
	}
	op := submit.Operation

	h.mu.RLock()
	room, ok := h.rooms[sender.BoardID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	serverSeq, err := room.state.ApplyOperation(op)
	if err != nil {
		nackPayload, _ := json.Marshal(OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		})
		sender.Send(&Message{Type: TypeOpNack, Payload: nackPayload})
		return
	}

	ackPayload, _ := json.Marshal(OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       serverSeq,
		ServerTimestamp: store.ServerTimestamp(),
	})
	sender.Send(&Message{Type: TypeOpAck, Seq: serverSeq, Payload: ackPayload})

	broadcastPayload, _ := json.Marshal(OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: serverSeq,
	})
	h.broadcastToRoom(sender.BoardID, &Message{
		Type:    TypeOpBroadcast,
		UserID:  sender.UserID,
		Seq:     serverSeq,
		Payload: broadcastPayload,
	}, sender.ClientID)
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.BoardID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.BoardID, &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}, sender.ClientID)
}

func (h *Hub) broadcastToRoom(boardID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[boardID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}
