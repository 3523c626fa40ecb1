package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// PresenceManager tracks live cursors and selections for the users in a
// room. Updates arrive per-user from their client and are fanned out to
// everyone else; the full state is replayed to newly joined clients.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Update stores the latest presence for a user. Cursor-only updates keep
// the display name from the previous payload so the cursor label never
// flickers blank.
func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if prev, ok := pm.presences[userID]; ok && p.DisplayName == "" {
		p.DisplayName = prev.DisplayName
	}
	pm.presences[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		result[k] = v
	}
	return result
}

// StateMessage builds the presence.state message sent to a client when
// it joins a room.
func (pm *PresenceManager) StateMessage() *Message {
	all := pm.GetAll()
	payload, err := json.Marshal(PresenceStatePayload{Presences: all})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
