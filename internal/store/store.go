package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/quillboard/quillboard/backend-go/internal/canvas"
)

var (
	ErrNoDocument    = errors.New("no document loaded")
	ErrNoActiveDraft = errors.New("no endpoint drag in progress")
	ErrDraftActive   = errors.New("endpoint drag already in progress")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// maxSnapshots bounds the undo stack.
const maxSnapshots = 100

// Store holds the authoritative document state for one board: the
// element map, the current selection, the single-slot endpoint drag
// draft, and a snapshot stack for undo.
type Store struct {
	mu sync.RWMutex

	doc       *canvas.Document
	selection []string
	draft     *canvas.EndpointDraft
	snapshots []*canvas.Document

	opLog     []Operation
	serverSeq int64

	onChange []func()
}

func New() *Store {
	return &Store{}
}

// OnChange registers a callback fired after every committed mutation.
// Callbacks run outside the store lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := append([]func(){}, s.onChange...)
	s.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// LoadDocument replaces the whole document and resets selection, draft,
// undo history and the op log.
func (s *Store) LoadDocument(doc *canvas.Document) {
	s.mu.Lock()
	s.doc = doc.Clone()
	s.selection = nil
	s.draft = nil
	s.snapshots = nil
	s.opLog = nil
	s.serverSeq = 0
	s.mu.Unlock()
	s.notify()
}

// Document returns a deep copy of the current document, or nil before
// any load.
func (s *Store) Document() *canvas.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.Clone()
}

// Elements returns a copy of the element map with the in-flight draft,
// if any, already applied. This is the map a reconcile pass consumes.
func (s *Store) Elements() map[string]canvas.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil
	}
	out := make(map[string]canvas.Element, len(s.doc.Elements))
	for id, el := range s.doc.Elements {
		out[id] = el
	}
	if s.draft != nil {
		if el, ok := out[s.draft.ConnectorID]; ok {
			out[s.draft.ConnectorID] = el.WithEndpoint(s.draft.End, s.draft.Pos)
		}
	}
	return out
}

// Element returns the current value for one id, draft applied.
func (s *Store) Element(id string) (canvas.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return canvas.Element{}, false
	}
	el, ok := s.doc.Elements[id]
	if !ok {
		return canvas.Element{}, false
	}
	if s.draft != nil && s.draft.ConnectorID == id {
		el = el.WithEndpoint(s.draft.End, s.draft.Pos)
	}
	return el, true
}

// SetSelection replaces the selected id set, dropping ids that do not
// resolve to elements.
func (s *Store) SetSelection(ids []string) {
	s.mu.Lock()
	s.selection = s.selection[:0]
	for _, id := range ids {
		if s.doc != nil {
			if _, ok := s.doc.Elements[id]; ok {
				s.selection = append(s.selection, id)
			}
		}
	}
	s.mu.Unlock()
	s.notify()
}

// SelectedElementIDs returns a copy of the current selection.
func (s *Store) SelectedElementIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selection...)
}

// SaveSnapshot pushes a deep copy of the document onto the undo stack.
func (s *Store) SaveSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return
	}
	s.snapshots = append(s.snapshots, s.doc.Clone())
	if len(s.snapshots) > maxSnapshots {
		s.snapshots = s.snapshots[len(s.snapshots)-maxSnapshots:]
	}
}

// Undo restores the most recent snapshot. Any in-flight draft is
// discarded.
func (s *Store) Undo() error {
	s.mu.Lock()
	if len(s.snapshots) == 0 {
		s.mu.Unlock()
		return ErrNothingToUndo
	}
	s.doc = s.snapshots[len(s.snapshots)-1]
	s.snapshots = s.snapshots[:len(s.snapshots)-1]
	s.draft = nil
	s.pruneSelectionLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// BeginEndpointDrag opens the single draft slot for one connector
// endpoint.
func (s *Store) BeginEndpointDrag(connectorID string, end canvas.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.draft != nil {
		return ErrDraftActive
	}
	el, ok := s.doc.Elements[connectorID]
	if !ok {
		return fmt.Errorf("element not found: %s", connectorID)
	}
	if el.Type != canvas.TypeConnector {
		return fmt.Errorf("element is not a connector: %s", connectorID)
	}
	start, endPt, ok := el.Endpoints()
	if !ok {
		return fmt.Errorf("connector has no drawable geometry: %s", connectorID)
	}
	pos := start
	if end == canvas.EndpointEnd {
		pos = endPt
	}
	s.draft = &canvas.EndpointDraft{ConnectorID: connectorID, End: end, Pos: pos}
	return nil
}

// UpdateEndpointDrag moves the drafted endpoint. The document itself is
// untouched until commit.
func (s *Store) UpdateEndpointDrag(pos canvas.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		return ErrNoActiveDraft
	}
	s.draft.Pos = pos
	return nil
}

// CommitEndpointDrag applies the draft to the document and clears the
// slot.
func (s *Store) CommitEndpointDrag() error {
	s.mu.Lock()
	if s.draft == nil {
		s.mu.Unlock()
		return ErrNoActiveDraft
	}
	draft := *s.draft
	s.draft = nil
	el, ok := s.doc.Elements[draft.ConnectorID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("element not found: %s", draft.ConnectorID)
	}
	s.doc.Elements[draft.ConnectorID] = el.WithEndpoint(draft.End, draft.Pos)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Draft returns the in-flight endpoint draft, if any.
func (s *Store) Draft() (canvas.EndpointDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.draft == nil {
		return canvas.EndpointDraft{}, false
	}
	return *s.draft, true
}

// ServerSeq returns the sequence number of the last applied operation.
func (s *Store) ServerSeq() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverSeq
}

// OpLog returns a copy of the applied operation history.
func (s *Store) OpLog() []Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Operation(nil), s.opLog...)
}

// pruneSelectionLocked drops selected ids that no longer resolve.
func (s *Store) pruneSelectionLocked() {
	kept := s.selection[:0]
	for _, id := range s.selection {
		if _, ok := s.doc.Elements[id]; ok {
			kept = append(kept, id)
		}
	}
	s.selection = kept
}
