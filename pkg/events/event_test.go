package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAnswerGenerated(t *testing.T) {
	e := NewAnswerGenerated("s-1", "intra-op", []string{"patients", "devices"}, "", "fallback")

	assert.Equal(t, TypeAnswerGenerated, e.EventType())
	assert.NotEmpty(t, e.EventID())
	assert.False(t, e.Timestamp().IsZero())
	assert.Equal(t, "intra-op", e.Payload()["phase"])
	assert.NotContains(t, e.Payload(), "response")
}

func TestNewDocumentIndexed_UniqueIDs(t *testing.T) {
	a := NewDocumentIndexed("d-1", "devices")
	b := NewDocumentIndexed("d-1", "devices")
	assert.NotEqual(t, a.EventID(), b.EventID())
	assert.Equal(t, "devices", a.Payload()["collection"])
}
