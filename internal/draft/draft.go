// Package draft holds unconfirmed event drafts, one per user, until the
// user confirms or cancels them.
package draft

import (
	"errors"
	"sync"

	"eventbot/internal/models"
)

// ErrNoDraft means the user has no pending draft. A duplicate or stale
// confirm click observes this; it is recoverable and reported to the user.
var ErrNoDraft = errors.New("no pending draft")

// Store maps a user ID to at most one pending draft. A new draft silently
// overwrites any existing one for the same user; concurrent confirm and
// cancel race on Take and the loser gets ErrNoDraft.
type Store struct {
	mu     sync.Mutex
	drafts map[string]models.Draft
}

func NewStore() *Store {
	return &Store{drafts: make(map[string]models.Draft)}
}

// Put stores the draft for its owner, replacing any existing one.
func (s *Store) Put(d models.Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.OwnerID] = d
}

// Take removes and returns the user's pending draft.
func (s *Store) Take(userID string) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return models.Draft{}, ErrNoDraft
	}
	delete(s.drafts, userID)
	return d, nil
}
