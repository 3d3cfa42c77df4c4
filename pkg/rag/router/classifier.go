package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cardiac-assistant-be/internal/constant"
	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/pkg/llm"
	"cardiac-assistant-be/pkg/rag"
)

// classification is the schema the model must answer with.
type classification struct {
	Phase           string   `json:"phase"`
	Collections     []string `json:"collections"`
	PatientSpecific bool     `json:"patient_specific"`
	Reasoning       string   `json:"reasoning"`
}

type Classifier struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
	temperature float64
}

func NewClassifier(llmProvider llm.LLMProvider, logger logger.ILogger, temperature float64) *Classifier {
	return &Classifier{
		llmProvider: llmProvider,
		logger:      logger,
		temperature: temperature,
	}
}

// Classify never fails: any LLM or parse problem routes through Fallback.
// A non-empty patientID always overrides the model's patient determination.
func (c *Classifier) Classify(ctx context.Context, query string, patientID string) rag.RoutingDecision {
	reply, err := llm.Complete(ctx, c.llmProvider, constant.ClassifierSystemPrompt,
		[]llm.Message{{Role: llm.RoleUser, Content: "Query: " + query}},
		llm.WithTemperature(c.temperature),
	)
	if err != nil {
		c.logger.Warn("Classifier", "Classification call failed, using fallback", map[string]interface{}{
			"error": err.Error(),
		})
		return Fallback(query, patientID)
	}

	decision, err := ParseDecision(reply)
	if err != nil {
		c.logger.Warn("Classifier", "Classification reply rejected, using fallback", map[string]interface{}{
			"error":       err.Error(),
			"reply_chars": len(reply),
		})
		return Fallback(query, patientID)
	}

	decision.WithPatient(patientID)

	c.logger.Debug("Classifier", "Query routed", map[string]interface{}{
		"phase":       decision.Phase,
		"collections": decision.Collections,
		"patient_id":  decision.PatientID,
	})
	return *decision
}

// ParseDecision extracts the first well-formed JSON object from reply and
// validates it against the routing schema. Any anomaly is an
// rag.ErrClassificationParse; a partially valid object is never used.
func ParseDecision(reply string) (*rag.RoutingDecision, error) {
	raw, ok := firstJSONObject(reply)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in reply", rag.ErrClassificationParse)
	}

	var parsed classification
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", rag.ErrClassificationParse, err)
	}

	phase, ok := rag.ParsePhase(parsed.Phase)
	if !ok {
		return nil, fmt.Errorf("%w: unknown phase %q", rag.ErrClassificationParse, parsed.Phase)
	}

	collections := make([]string, 0, len(parsed.Collections))
	for _, name := range parsed.Collections {
		name = strings.ToLower(strings.TrimSpace(name))
		if !rag.IsKnownCollection(name) {
			return nil, fmt.Errorf("%w: unknown collection %q", rag.ErrClassificationParse, name)
		}
		collections = append(collections, name)
	}
	collections = rag.DedupeCollections(collections)
	if len(collections) == 0 {
		return nil, fmt.Errorf("%w: no collections selected", rag.ErrClassificationParse)
	}

	return &rag.RoutingDecision{
		Phase:           phase,
		Collections:     collections,
		PatientSpecific: parsed.PatientSpecific,
		Reasoning:       strings.TrimSpace(parsed.Reasoning),
		Source:          rag.SourceLLM,
	}, nil
}

// firstJSONObject returns the first '{' position that decodes as a complete object.
func firstJSONObject(text string) (json.RawMessage, bool) {
	for i := strings.IndexByte(text, '{'); i >= 0; {
		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		if err := dec.Decode(&raw); err == nil {
			return raw, true
		}
		next := strings.IndexByte(text[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, false
}
