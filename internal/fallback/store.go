package fallback

import (
	"sync"

	"github.com/gnome-horoscope/gnome-bridge/internal/resolver"
	"github.com/rs/zerolog/log"
)

// Store holds the current fallback entries and satisfies
// resolver.FallbackSource. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries Entries
}

var _ resolver.FallbackSource = (*Store)(nil)

func NewStore(entries Entries) *Store {
	return &Store{entries: entries}
}

// Fallback returns the fallback text for the key's family.
func (s *Store) Fallback(key resolver.ContentKey) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.entries.Lookup(key)
}

// Update replaces the stored entries. Logs at info level if the content
// changed (based on digest), or at debug level if unchanged.
func (s *Store) Update(entries Entries) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries.Digest() != entries.Digest() {
		log.Info().Int("families", len(entries.Families)).Msg("fallback content: updated")
	} else {
		log.Debug().Msg("fallback content: no changes detected")
	}

	s.entries = entries
}
