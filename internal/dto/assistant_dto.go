package dto

type AskRequest struct {
	SessionId string `json:"session_id" validate:"omitempty,max=64"`
	Query     string `json:"query" validate:"required,max=4000"`
	Phase     string `json:"phase" validate:"omitempty,oneof=pre-op intra-op post-op"`
}

type RoutingDecisionResponse struct {
	Phase           string   `json:"phase"`
	Collections     []string `json:"collections"`
	PatientSpecific bool     `json:"patient_specific"`
	PatientId       string   `json:"patient_id,omitempty"`
	Reasoning       string   `json:"reasoning"`
	Source          string   `json:"source"`
}

type AskResponse struct {
	SessionId string `json:"session_id"`
	Response  string `json:"response"`
	RoutingDecisionResponse
}

type ClassifyRequest struct {
	Query string `json:"query" validate:"required,max=4000"`
}

type BuildContextRequest struct {
	Query       string   `json:"query" validate:"required,max=4000"`
	Phase       string   `json:"phase" validate:"omitempty,oneof=pre-op intra-op post-op"`
	Collections []string `json:"collections" validate:"omitempty,dive,oneof=patients notes devices guidelines literature"`
	PatientId   string   `json:"patient_id" validate:"omitempty,max=16"`
}

type BuildContextResponse struct {
	Decision RoutingDecisionResponse `json:"decision"`
	Context  string                  `json:"context"`
}

type TurnResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type SessionResponse struct {
	SessionId      string         `json:"session_id"`
	CurrentPatient string         `json:"current_patient,omitempty"`
	Turns          []TurnResponse `json:"turns"`
}

type CollectionResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
