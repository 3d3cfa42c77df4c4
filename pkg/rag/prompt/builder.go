package prompt

import (
	"fmt"
	"strings"

	"cardiac-assistant-be/internal/constant"
	"cardiac-assistant-be/pkg/llm"
	"cardiac-assistant-be/pkg/rag"
	"cardiac-assistant-be/pkg/rag/history"
)

// Profile parameterizes the single answer pipeline for one surgical phase.
type Profile struct {
	Phase              rag.Phase
	SystemPrompt       string
	DefaultCollections []string
}

var profiles = map[rag.Phase]Profile{
	rag.PhasePreOp: {
		Phase:        rag.PhasePreOp,
		SystemPrompt: constant.PreOpSystemPrompt,
		DefaultCollections: []string{
			rag.CollectionPatients, rag.CollectionDevices, rag.CollectionGuidelines, rag.CollectionLiterature,
		},
	},
	rag.PhaseIntraOp: {
		Phase:        rag.PhaseIntraOp,
		SystemPrompt: constant.IntraOpSystemPrompt,
		DefaultCollections: []string{
			rag.CollectionPatients, rag.CollectionDevices, rag.CollectionGuidelines, rag.CollectionNotes,
		},
	},
	rag.PhasePostOp: {
		Phase:        rag.PhasePostOp,
		SystemPrompt: constant.PostOpSystemPrompt,
		DefaultCollections: []string{
			rag.CollectionPatients, rag.CollectionGuidelines, rag.CollectionNotes, rag.CollectionLiterature,
		},
	},
}

// ProfileFor returns the phase profile. Unknown phases get the general prompt
// and only the patients collection.
func ProfileFor(phase rag.Phase) Profile {
	if p, ok := profiles[phase]; ok {
		p.DefaultCollections = append([]string(nil), p.DefaultCollections...)
		return p
	}
	return Profile{
		Phase:              phase,
		SystemPrompt:       constant.GeneralSystemPrompt,
		DefaultCollections: []string{rag.CollectionPatients},
	}
}

// SystemPrompt is the phase prompt, the patient focus clause when scoped,
// then the shared clinical guidance.
func SystemPrompt(phase rag.Phase, patientID string) string {
	var sb strings.Builder
	sb.WriteString(ProfileFor(phase).SystemPrompt)
	if patientID != "" {
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf(constant.PatientFocusPrompt, patientID))
	}
	sb.WriteString("\n\n")
	sb.WriteString(constant.ClinicalGuidancePrompt)
	return sb.String()
}

// BuildMessages lays out the conversation after the system prompt: prior user
// turns, then prior assistant turns as system context, then the final turn
// carrying the assembled context and the question.
func BuildMessages(window []history.Turn, assembled string, query string) []llm.Message {
	user, assistant := history.Partition(window)

	messages := make([]llm.Message, 0, len(user)+len(assistant)+1)
	for _, content := range user {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: content})
	}
	for _, content := range assistant {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: content})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf(constant.FinalTurnTemplate, assembled, query),
	})
	return messages
}
