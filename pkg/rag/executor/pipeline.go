package executor

import (
	"context"
	"time"

	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/pkg/events"
	"cardiac-assistant-be/pkg/rag"
	ragcontext "cardiac-assistant-be/pkg/rag/context"
	"cardiac-assistant-be/pkg/rag/history"
	"cardiac-assistant-be/pkg/rag/patient"
	"cardiac-assistant-be/pkg/rag/prompt"
	"cardiac-assistant-be/pkg/rag/response"
	"cardiac-assistant-be/pkg/rag/router"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EventPublisher receives audit events after each answer. Optional.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Pipeline runs extraction, routing, retrieval and generation for one query.
// Every phase shares this pipeline; a phase only changes the prompt profile.
type Pipeline struct {
	classifier    *router.Classifier
	assembler     *ragcontext.Assembler
	generator     *response.Generator
	publisher     EventPublisher
	logger        logger.ILogger
	tracer        trace.Tracer
	historyWindow int
}

func NewPipeline(
	classifier *router.Classifier,
	assembler *ragcontext.Assembler,
	generator *response.Generator,
	publisher EventPublisher,
	logger logger.ILogger,
	historyWindow int,
) *Pipeline {
	if historyWindow <= 0 {
		historyWindow = history.DefaultWindow
	}
	return &Pipeline{
		classifier:    classifier,
		assembler:     assembler,
		generator:     generator,
		publisher:     publisher,
		logger:        logger,
		tracer:        otel.Tracer("cardiac-assistant-be/pkg/rag/executor"),
		historyWindow: historyWindow,
	}
}

// Result is the answer plus the routing decision behind it.
type Result struct {
	Response string
	rag.RoutingDecision
}

// Classify extracts a patient id and routes the query.
func (p *Pipeline) Classify(ctx context.Context, query string) rag.RoutingDecision {
	ctx, span := p.tracer.Start(ctx, "pipeline.classify")
	defer span.End()

	decision := p.classifier.Classify(ctx, query, patient.ExtractID(query))
	span.SetAttributes(
		attribute.String("rag.phase", string(decision.Phase)),
		attribute.String("rag.source", decision.Source),
	)
	return decision
}

// Route classifies the query, or applies the caller's phase when one is given.
func (p *Pipeline) Route(ctx context.Context, query string, phase rag.Phase) rag.RoutingDecision {
	if phase == "" {
		return p.Classify(ctx, query)
	}
	profile := prompt.ProfileFor(phase)
	return router.Override(phase, profile.DefaultCollections, patient.ExtractID(query))
}

// BuildContext never fails; missing collections only shorten the text.
func (p *Pipeline) BuildContext(ctx context.Context, decision rag.RoutingDecision, patientID string, query string) string {
	ctx, span := p.tracer.Start(ctx, "pipeline.build_context")
	defer span.End()

	assembled := p.assembler.Build(ctx, decision, patientID, query)
	span.SetAttributes(
		attribute.StringSlice("rag.collections", decision.Collections),
		attribute.Int("rag.context_chars", len(assembled)),
	)
	return assembled
}

// Answer routes with the classifier.
func (p *Pipeline) Answer(ctx context.Context, sessionID string, query string, conv *history.Conversation) (*Result, error) {
	return p.AnswerInPhase(ctx, sessionID, query, "", conv)
}

// AnswerInPhase answers a query and records the exchange in conv. An empty
// phase means classify. Only rag.ErrGeneration is ever returned, and the
// conversation is left untouched in that case.
func (p *Pipeline) AnswerInPhase(ctx context.Context, sessionID string, query string, phase rag.Phase, conv *history.Conversation) (*Result, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.answer")
	defer span.End()
	start := time.Now()

	decision := p.Route(ctx, query, phase)
	assembled := p.BuildContext(ctx, decision, decision.PatientID, query)

	reply, err := p.generator.Generate(ctx, decision, conv.Window(p.historyWindow), assembled, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, err
	}

	conv.AppendExchange(query, reply)
	conv.SetPatient(decision.PatientID)

	p.logger.Info("Pipeline", "Query answered", map[string]interface{}{
		"session_id":  sessionID,
		"phase":       decision.Phase,
		"collections": decision.Collections,
		"patient_id":  decision.PatientID,
		"source":      decision.Source,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	p.publish(ctx, sessionID, decision)

	return &Result{Response: reply, RoutingDecision: decision}, nil
}

func (p *Pipeline) publish(ctx context.Context, sessionID string, decision rag.RoutingDecision) {
	if p.publisher == nil {
		return
	}
	event := events.NewAnswerGenerated(sessionID, string(decision.Phase), decision.Collections, decision.PatientID, decision.Source)
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("Pipeline", "Failed to publish answer event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
