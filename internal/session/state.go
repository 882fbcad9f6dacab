package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/lukman83/phonescope/internal/models"
)

// Snapshot is a completed search as it was rendered.
type Snapshot struct {
	SearchID    string
	Request     models.SearchRequest
	Response    *models.SearchResponse
	CompletedAt time.Time
}

// Raw returns the payload as received from the backend.
func (s *Snapshot) Raw() json.RawMessage {
	if s == nil || s.Response == nil {
		return nil
	}
	return s.Response.Raw
}

// Ticket identifies one search from Begin to Complete.
type Ticket uint64

// State holds the last completed search. Searches are sequenced: a response
// only replaces the stored result if no newer search has begun since its own
// Begin, so the latest submitted search wins regardless of arrival order.
type State struct {
	mu     sync.Mutex
	issued Ticket
	last   *Snapshot
}

func New() *State {
	return &State{}
}

// Begin registers a new search and returns its ticket.
func (s *State) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Complete stores snap if t is still the newest ticket. It reports whether
// snap was stored.
func (s *State) Complete(t Ticket, snap *Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.issued {
		return false
	}
	s.last = snap
	return true
}

// Current reports whether t is still the newest ticket.
func (s *State) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t == s.issued
}

// Last returns the last completed search, or nil if none has completed.
func (s *State) Last() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
