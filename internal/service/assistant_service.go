package service

import (
	"context"

	"cardiac-assistant-be/internal/dto"
	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/internal/repository/contract"
	"cardiac-assistant-be/internal/repository/memory"
	"cardiac-assistant-be/pkg/rag"
	"cardiac-assistant-be/pkg/rag/executor"
	"cardiac-assistant-be/pkg/rag/history"
	"cardiac-assistant-be/pkg/rag/patient"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AssistantPipeline is the part of executor.Pipeline the service drives.
type AssistantPipeline interface {
	Classify(ctx context.Context, query string) rag.RoutingDecision
	Route(ctx context.Context, query string, phase rag.Phase) rag.RoutingDecision
	BuildContext(ctx context.Context, decision rag.RoutingDecision, patientID string, query string) string
	AnswerInPhase(ctx context.Context, sessionID string, query string, phase rag.Phase, conv *history.Conversation) (*executor.Result, error)
}

type IAssistantService interface {
	Ask(ctx context.Context, clinicianId string, req *dto.AskRequest) (*dto.AskResponse, error)
	Classify(ctx context.Context, req *dto.ClassifyRequest) *dto.RoutingDecisionResponse
	BuildContext(ctx context.Context, req *dto.BuildContextRequest) (*dto.BuildContextResponse, error)
	GetSession(ctx context.Context, clinicianId string, sessionId string) (*dto.SessionResponse, error)
	ClearSession(ctx context.Context, clinicianId string, sessionId string) error
	ListCollections(ctx context.Context) ([]*dto.CollectionResponse, error)
}

type assistantService struct {
	pipeline         AssistantPipeline
	conversationRepo *memory.ConversationRepository
	documentRepo     contract.ClinicalDocumentRepository
	logger           logger.ILogger
}

func NewAssistantService(
	pipeline AssistantPipeline,
	conversationRepo *memory.ConversationRepository,
	documentRepo contract.ClinicalDocumentRepository,
	logger logger.ILogger,
) IAssistantService {
	return &assistantService{
		pipeline:         pipeline,
		conversationRepo: conversationRepo,
		documentRepo:     documentRepo,
		logger:           logger,
	}
}

// sessionKey scopes a session id to the clinician that owns it.
func sessionKey(clinicianId, sessionId string) string {
	return clinicianId + ":" + sessionId
}

func toDecisionResponse(d rag.RoutingDecision) dto.RoutingDecisionResponse {
	return dto.RoutingDecisionResponse{
		Phase:           string(d.Phase),
		Collections:     d.Collections,
		PatientSpecific: d.PatientSpecific,
		PatientId:       d.PatientID,
		Reasoning:       d.Reasoning,
		Source:          d.Source,
	}
}

func (s *assistantService) Ask(ctx context.Context, clinicianId string, req *dto.AskRequest) (*dto.AskResponse, error) {
	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	phase, _ := rag.ParsePhase(req.Phase)
	conv := s.conversationRepo.GetOrCreate(sessionKey(clinicianId, sessionId))

	result, err := s.pipeline.AnswerInPhase(ctx, sessionId, req.Query, phase, conv)
	if err != nil {
		s.logger.Error("AssistantService", "Ask failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil, err
	}

	return &dto.AskResponse{
		SessionId:               sessionId,
		Response:                result.Response,
		RoutingDecisionResponse: toDecisionResponse(result.RoutingDecision),
	}, nil
}

func (s *assistantService) Classify(ctx context.Context, req *dto.ClassifyRequest) *dto.RoutingDecisionResponse {
	res := toDecisionResponse(s.pipeline.Classify(ctx, req.Query))
	return &res
}

// BuildContext routes the query unless the caller pins collections. An
// explicit patient id replaces the one found in the query.
func (s *assistantService) BuildContext(ctx context.Context, req *dto.BuildContextRequest) (*dto.BuildContextResponse, error) {
	phase, _ := rag.ParsePhase(req.Phase)
	decision := s.pipeline.Route(ctx, req.Query, phase)

	if len(req.Collections) > 0 {
		decision.Collections = rag.DedupeCollections(req.Collections)
	}

	if req.PatientId != "" {
		id, ok := patient.NormalizeID(req.PatientId)
		if !ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, "patient_id must look like P003")
		}
		if id != decision.PatientID {
			decision.PatientID = ""
			decision.WithPatient(id)
		}
	}

	return &dto.BuildContextResponse{
		Decision: toDecisionResponse(decision),
		Context:  s.pipeline.BuildContext(ctx, decision, decision.PatientID, req.Query),
	}, nil
}

func (s *assistantService) GetSession(ctx context.Context, clinicianId string, sessionId string) (*dto.SessionResponse, error) {
	conv, found := s.conversationRepo.Get(sessionKey(clinicianId, sessionId))
	if !found {
		return nil, fiber.NewError(fiber.StatusNotFound, "Session not found")
	}

	turns := conv.Turns()
	res := &dto.SessionResponse{
		SessionId:      sessionId,
		CurrentPatient: conv.CurrentPatient(),
		Turns:          make([]dto.TurnResponse, len(turns)),
	}
	for i, t := range turns {
		res.Turns[i] = dto.TurnResponse{Role: t.Role, Content: t.Content}
	}
	return res, nil
}

func (s *assistantService) ClearSession(ctx context.Context, clinicianId string, sessionId string) error {
	conv, found := s.conversationRepo.Get(sessionKey(clinicianId, sessionId))
	if !found {
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	}
	conv.Clear()
	return nil
}

// ListCollections reports every collection in the vocabulary, including empty ones.
func (s *assistantService) ListCollections(ctx context.Context) ([]*dto.CollectionResponse, error) {
	counts, err := s.documentRepo.CountByCollection(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]int64, len(counts))
	for _, c := range counts {
		byName[c.Name] = c.Count
	}

	names := rag.AllCollections()
	res := make([]*dto.CollectionResponse, 0, len(names))
	for _, name := range names {
		res = append(res, &dto.CollectionResponse{Name: name, Count: byName[name]})
	}
	return res, nil
}
