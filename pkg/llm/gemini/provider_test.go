package gemini

import (
	"testing"

	"cardiac-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToContents(t *testing.T) {
	system, contents := toContents([]llm.Message{
		{Role: llm.RoleSystem, Content: "You are a cardiac surgery assistant."},
		{Role: llm.RoleUser, Content: "earlier question"},
		{Role: llm.RoleSystem, Content: "earlier answer"},
		{Role: llm.RoleUser, Content: "Context: x\n\nQuestion: y"},
	})

	require.NotNil(t, system)
	require.Len(t, system.Parts, 1)
	assert.Equal(t, "You are a cardiac surgery assistant.", system.Parts[0].Text)

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "earlier answer", contents[1].Parts[0].Text)
	assert.Equal(t, "user", contents[2].Role)
}

func TestToContents_NoSystem(t *testing.T) {
	system, contents := toContents([]llm.Message{{Role: llm.RoleUser, Content: "hi"}})
	assert.Nil(t, system)
	assert.Len(t, contents, 1)
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider("", "", "")
	assert.Error(t, err)
}
