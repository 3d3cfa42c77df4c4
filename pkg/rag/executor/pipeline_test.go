package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"cardiac-assistant-be/internal/constant"
	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/pkg/embedding"
	"cardiac-assistant-be/pkg/events"
	"cardiac-assistant-be/pkg/llm"
	"cardiac-assistant-be/pkg/rag"
	ragcontext "cardiac-assistant-be/pkg/rag/context"
	"cardiac-assistant-be/pkg/rag/history"
	"cardiac-assistant-be/pkg/rag/response"
	"cardiac-assistant-be/pkg/rag/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers routing prompts with classifyReply and everything else
// with answerReply, recording the generation request.
type scriptedLLM struct {
	mu            sync.Mutex
	classifyReply string
	answerReply   string
	answerErr     error
	generation    []llm.Message
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(history) > 0 && history[0].Content == constant.ClassifierSystemPrompt {
		return s.classifyReply, nil
	}
	s.generation = history
	return s.answerReply, s.answerErr
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

type unitEmbedder struct{}

func (unitEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1}}}, nil
}

type cannedStore struct {
	docs map[string][]rag.RetrievalResult
}

func (c *cannedStore) Query(ctx context.Context, collection string, vector []float32, topK int, filter map[string]interface{}) ([]rag.RetrievalResult, error) {
	if collection == rag.CollectionLiterature {
		return nil, errors.New("collection missing")
	}
	return c.docs[collection], nil
}

func (c *cannedStore) GetByMetadata(ctx context.Context, collection string, field string, value interface{}) (*rag.Record, error) {
	for _, d := range c.docs[collection] {
		if d.Metadata[field] == value {
			return &rag.Record{Document: d.Document, Metadata: d.Metadata}, nil
		}
	}
	return nil, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	r.events = append(r.events, event)
	return r.err
}

func newPipeline(model *scriptedLLM, pub EventPublisher) *Pipeline {
	log := logger.NewNopLogger()
	store := &cannedStore{docs: map[string][]rag.RetrievalResult{
		rag.CollectionDevices: {
			{Document: "EndoFlex IFU: advance to renal arteries, deploy main body", Distance: 0.2},
		},
		rag.CollectionPatients: {
			{Document: "Patient P003: 71M, AAA 5.8cm", Metadata: map[string]interface{}{"patient_id": "P003"}, Distance: 0.1},
		},
	}}
	return NewPipeline(
		router.NewClassifier(model, log, 0.1),
		ragcontext.NewAssembler(unitEmbedder{}, store, log, ragcontext.DefaultConfig()),
		response.NewGenerator(model, log, 0.7),
		pub,
		log,
		history.DefaultWindow,
	)
}

func TestPipeline_EndToEndDeploymentQuery(t *testing.T) {
	query := "How do I deploy the EndoFlex graft during surgery?"
	model := &scriptedLLM{
		classifyReply: "not json at all",
		answerReply:   "Advance the delivery system, then deploy the main body.",
	}
	pub := &recordingPublisher{}
	p := newPipeline(model, pub)
	conv := history.NewConversation()

	res, err := p.Answer(context.Background(), "s-1", query, conv)
	require.NoError(t, err)

	assert.Equal(t, rag.PhaseIntraOp, res.Phase)
	assert.Contains(t, res.Collections, rag.CollectionDevices)
	assert.Equal(t, rag.SourceFallback, res.Source)
	assert.False(t, res.PatientSpecific)
	assert.Equal(t, "Advance the delivery system, then deploy the main body.", res.Response)

	require.NotEmpty(t, model.generation)
	assert.Contains(t, model.generation[0].Content, "during surgery")
	final := model.generation[len(model.generation)-1]
	assert.Contains(t, final.Content, "--- Information from devices ---")
	assert.True(t, strings.HasSuffix(final.Content, "Question: "+query))

	assert.Equal(t, 2, conv.Len())
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeAnswerGenerated, pub.events[0].EventType())
}

func TestPipeline_PatientScopedWithHistory(t *testing.T) {
	model := &scriptedLLM{
		classifyReply: `{"phase":"pre-op","collections":["patients","literature"],"patient_specific":false,"reasoning":"Planning."}`,
		answerReply:   "P003 is a candidate.",
	}
	p := newPipeline(model, nil)
	conv := history.NewConversation()
	conv.AppendExchange("earlier question", "earlier answer")

	res, err := p.Answer(context.Background(), "s-2", "Is patient p003 a candidate?", conv)
	require.NoError(t, err)

	assert.Equal(t, "P003", res.PatientID)
	assert.True(t, res.PatientSpecific)
	assert.Equal(t, rag.SourceLLM, res.Source)
	assert.Equal(t, "P003", conv.CurrentPatient())

	require.Len(t, model.generation, 4)
	assert.Contains(t, model.generation[0].Content, "You are currently assisting with patient P003.")
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "earlier question"}, model.generation[1])
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "earlier answer"}, model.generation[2])
	assert.Contains(t, model.generation[3].Content, "--- Patient Information ---\nPatient P003")
	assert.NotContains(t, model.generation[3].Content, "Information from literature")
}

func TestPipeline_GenerationFailureLeavesHistory(t *testing.T) {
	model := &scriptedLLM{classifyReply: "{}", answerErr: errors.New("429 rate limited")}
	pub := &recordingPublisher{}
	p := newPipeline(model, pub)
	conv := history.NewConversation()

	res, err := p.Answer(context.Background(), "s-3", "What stent graft is suitable?", conv)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, rag.ErrGeneration)
	assert.Equal(t, 0, conv.Len())
	assert.Empty(t, pub.events)
}

func TestPipeline_PhaseOverrideSkipsClassifier(t *testing.T) {
	model := &scriptedLLM{classifyReply: `{"phase":"pre-op","collections":["devices"],"patient_specific":false,"reasoning":"x"}`, answerReply: "ok"}
	p := newPipeline(model, &recordingPublisher{err: errors.New("nats down")})

	res, err := p.AnswerInPhase(context.Background(), "s-4", "What should I watch for in case P003?", rag.PhasePostOp, history.NewConversation())
	require.NoError(t, err)

	assert.Equal(t, rag.PhasePostOp, res.Phase)
	assert.Equal(t, rag.SourceOverride, res.Source)
	assert.Equal(t, []string{"patients", "guidelines", "notes", "literature"}, res.Collections)
	assert.Equal(t, "P003", res.PatientID)
	assert.Contains(t, model.generation[0].Content, "post-operative phase")
}

func TestPipeline_ClassifyAndBuildContext(t *testing.T) {
	p := newPipeline(&scriptedLLM{classifyReply: "garbage"}, nil)

	decision := p.Classify(context.Background(), "What stent graft is suitable?")
	assert.Equal(t, []string{"patients", "devices"}, decision.Collections)

	assembled := p.BuildContext(context.Background(), decision, "", "What stent graft is suitable?")
	assert.Contains(t, assembled, "Information from devices")
	assert.Contains(t, assembled, "Information from patients")
}
