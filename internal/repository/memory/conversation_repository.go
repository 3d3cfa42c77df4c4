package memory

import (
	"time"

	"cardiac-assistant-be/pkg/rag/history"

	"github.com/patrickmn/go-cache"
)

// ConversationRepository keeps one conversation per session in process
// memory. Idle sessions expire after the TTL.
type ConversationRepository struct {
	cache *cache.Cache
}

func NewConversationRepository(ttl time.Duration) *ConversationRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	// Purge expired sessions every 10 minutes
	return &ConversationRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// GetOrCreate returns the session's conversation, creating it if needed, and
// refreshes its expiry.
func (r *ConversationRepository) GetOrCreate(sessionID string) *history.Conversation {
	if conv, found := r.Get(sessionID); found {
		r.cache.Set(sessionID, conv, cache.DefaultExpiration)
		return conv
	}

	conv := history.NewConversation()
	// Add fails when a concurrent caller created it first
	if err := r.cache.Add(sessionID, conv, cache.DefaultExpiration); err != nil {
		if existing, ok := r.Get(sessionID); ok {
			return existing
		}
		r.cache.Set(sessionID, conv, cache.DefaultExpiration)
	}
	return conv
}

func (r *ConversationRepository) Get(sessionID string) (*history.Conversation, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*history.Conversation), true
	}
	return nil, false
}
