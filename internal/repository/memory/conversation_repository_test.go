package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationRepository_GetOrCreateReturnsSameConversation(t *testing.T) {
	repo := NewConversationRepository(time.Minute)

	a := repo.GetOrCreate("s-1")
	a.AppendExchange("q", "a")
	b := repo.GetOrCreate("s-1")

	assert.Same(t, a, b)
	assert.Equal(t, 2, b.Len())
}

func TestConversationRepository_ConcurrentCreate(t *testing.T) {
	repo := NewConversationRepository(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo.GetOrCreate("shared").Append("user", "hello")
		}()
	}
	wg.Wait()

	conv, ok := repo.Get("shared")
	require.True(t, ok)
	assert.Equal(t, 20, conv.Len())
}

func TestConversationRepository_Expiry(t *testing.T) {
	repo := NewConversationRepository(20 * time.Millisecond)
	repo.GetOrCreate("s-1")

	time.Sleep(40 * time.Millisecond)
	_, ok := repo.Get("s-1")
	assert.False(t, ok)
}
