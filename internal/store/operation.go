package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
	"github.com/quillboard/quillboard/backend-go/internal/typeid"
)

// Operation types accepted by ApplyOperation.
const (
	OpElementCreate    = "element.create"
	OpElementUpdate    = "element.update"
	OpElementDelete    = "element.delete"
	OpElementTransform = "element.transform"
	OpBoardUpdate      = "board.update"
	OpBoardRename      = "board.rename"
)

// Operation is one document mutation, as submitted by a client and
// replayed to everyone else.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`
	ElementID string `json:"elementId,omitempty"`

	// For element.create
	Element json.RawMessage `json:"element,omitempty"`

	// For element.update
	Patch json.RawMessage `json:"patch,omitempty"`

	// For element.transform
	Transform json.RawMessage `json:"transform,omitempty"`

	// For board.update / board.rename
	Changes json.RawMessage `json:"changes,omitempty"`
	Name    string          `json:"name,omitempty"`
}

// NewOperationID mints a prefixed operation id.
func NewOperationID() string {
	return typeid.NewOpID()
}

// ServerTimestamp returns the current wall clock in milliseconds, the
// unit operations carry on the wire.
func ServerTimestamp() int64 {
	return time.Now().UnixMilli()
}

// ApplyOperation applies one operation to the document and returns the
// new server sequence number.
func (s *Store) ApplyOperation(op Operation) (int64, error) {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return 0, ErrNoDocument
	}
	if err := s.applyOperationLocked(op); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.serverSeq++
	s.opLog = append(s.opLog, op)
	seq := s.serverSeq
	s.mu.Unlock()
	s.notify()
	return seq, nil
}

func (s *Store) applyOperationLocked(op Operation) error {
	switch op.Type {
	case OpElementCreate:
		return s.applyCreate(op)
	case OpElementUpdate:
		return s.applyUpdate(op)
	case OpElementDelete:
		return s.applyDelete(op)
	case OpElementTransform:
		return s.applyTransform(op)
	case OpBoardUpdate:
		return s.applyBoardUpdate(op)
	case OpBoardRename:
		s.doc.Board.Name = op.Name
		return nil
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

func (s *Store) applyCreate(op Operation) error {
	var el canvas.Element
	if err := json.Unmarshal(op.Element, &el); err != nil {
		return fmt.Errorf("invalid element: %w", err)
	}
	if el.ID == "" {
		return fmt.Errorf("element has no id")
	}
	s.doc.Elements[el.ID] = el
	return nil
}

func (s *Store) applyUpdate(op Operation) error {
	el, ok := s.doc.Elements[op.ElementID]
	if !ok {
		return fmt.Errorf("element not found: %s", op.ElementID)
	}
	var patch canvas.Patch
	if err := json.Unmarshal(op.Patch, &patch); err != nil {
		return fmt.Errorf("invalid patch: %w", err)
	}
	s.doc.Elements[op.ElementID] = patch.Apply(el)
	return nil
}

func (s *Store) applyDelete(op Operation) error {
	if _, ok := s.doc.Elements[op.ElementID]; !ok {
		return fmt.Errorf("element not found: %s", op.ElementID)
	}
	delete(s.doc.Elements, op.ElementID)
	return nil
}

func (s *Store) applyTransform(op Operation) error {
	el, ok := s.doc.Elements[op.ElementID]
	if !ok {
		return fmt.Errorf("element not found: %s", op.ElementID)
	}

	var changes map[string]float64
	if err := json.Unmarshal(op.Transform, &changes); err != nil {
		return fmt.Errorf("invalid transform: %w", err)
	}

	if v, ok := changes["x"]; ok {
		el.X = v
	}
	if v, ok := changes["y"]; ok {
		el.Y = v
	}
	if v, ok := changes["rotation"]; ok {
		el.Rotation = v
	}
	if v, ok := changes["scaleX"]; ok {
		el.ScaleX = v
	}
	if v, ok := changes["scaleY"]; ok {
		el.ScaleY = v
	}

	s.doc.Elements[op.ElementID] = el
	return nil
}

func (s *Store) applyBoardUpdate(op Operation) error {
	var changes map[string]interface{}
	if err := json.Unmarshal(op.Changes, &changes); err != nil {
		return fmt.Errorf("invalid board changes: %w", err)
	}
	if v, ok := changes["name"].(string); ok {
		s.doc.Board.Name = v
	}
	if v, ok := changes["width"].(float64); ok {
		s.doc.Board.Width = int(v)
	}
	if v, ok := changes["height"].(float64); ok {
		s.doc.Board.Height = int(v)
	}
	if v, ok := changes["background"].(string); ok {
		s.doc.Board.Background = v
	}
	return nil
}
