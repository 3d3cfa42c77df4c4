package nats

import (
	"encoding/json"
	"testing"

	"cardiac-assistant-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Envelope(t *testing.T) {
	e := events.NewDocumentIndexed("d-1", "guidelines")

	raw, err := Encode(e)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, e.EventID(), got["id"])
	assert.Equal(t, "document.indexed", got["type"])
	assert.Equal(t, "guidelines", got["data"].(map[string]interface{})["collection"])
	assert.NotEmpty(t, got["occurred_at"])
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.assistant.answered", Subject(events.TypeAnswerGenerated))
}
