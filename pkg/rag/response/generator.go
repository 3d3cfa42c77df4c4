package response

import (
	"context"
	"fmt"
	"strings"

	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/pkg/llm"
	"cardiac-assistant-be/pkg/rag"
	"cardiac-assistant-be/pkg/rag/history"
	"cardiac-assistant-be/pkg/rag/prompt"
)

// Generator produces the final answer from the assembled context.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	temperature float64
}

func NewGenerator(llmProvider llm.LLMProvider, logger logger.ILogger, temperature float64) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
		temperature: temperature,
	}
}

// Generate has no local recovery. Any failure, including an empty reply, is
// returned wrapped in rag.ErrGeneration.
func (g *Generator) Generate(
	ctx context.Context,
	decision rag.RoutingDecision,
	window []history.Turn,
	assembled string,
	query string,
) (string, error) {
	systemPrompt := prompt.SystemPrompt(decision.Phase, decision.PatientID)
	messages := prompt.BuildMessages(window, assembled, query)

	reply, err := llm.Complete(ctx, g.llmProvider, systemPrompt, messages, llm.WithTemperature(g.temperature))
	if err != nil {
		g.logger.Error("Pipeline", "Answer generation failed", map[string]interface{}{
			"phase": decision.Phase,
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", rag.ErrGeneration, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		g.logger.Error("Pipeline", "Answer generation returned empty reply", map[string]interface{}{
			"phase": decision.Phase,
		})
		return "", fmt.Errorf("%w: empty reply", rag.ErrGeneration)
	}
	return reply, nil
}
