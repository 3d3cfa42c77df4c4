package rag

import (
	"errors"
	"strings"
)

// Phase is the surgical workflow stage a query is routed to.
type Phase string

const (
	PhasePreOp   Phase = "pre-op"
	PhaseIntraOp Phase = "intra-op"
	PhasePostOp  Phase = "post-op"
)

// Collection names are a closed vocabulary; the classifier must choose from these.
const (
	CollectionPatients   = "patients"
	CollectionNotes      = "notes"
	CollectionDevices    = "devices"
	CollectionGuidelines = "guidelines"
	CollectionLiterature = "literature"
)

// MetadataPatientID is the metadata field carrying the patient identifier on
// the patients and notes collections.
const MetadataPatientID = "patient_id"

// Routing sources, reported for observability.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
	SourceOverride = "override"
)

var (
	// ErrClassificationParse marks an LLM reply that could not be turned into a routing decision.
	ErrClassificationParse = errors.New("classification reply could not be parsed")
	// ErrRetrievalUnavailable marks a collection that could not be queried.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrPatientNotFound marks a patient id with no record in the patients collection.
	ErrPatientNotFound = errors.New("patient record not found")
	// ErrGeneration marks a failed answer completion. It is the only error the pipeline surfaces.
	ErrGeneration = errors.New("response generation failed")
)

// AllCollections returns the collection vocabulary in its canonical order.
func AllCollections() []string {
	return []string{
		CollectionPatients,
		CollectionNotes,
		CollectionDevices,
		CollectionGuidelines,
		CollectionLiterature,
	}
}

// IsKnownCollection reports whether name belongs to the collection vocabulary.
func IsKnownCollection(name string) bool {
	for _, c := range AllCollections() {
		if c == name {
			return true
		}
	}
	return false
}

// ParsePhase normalizes a phase label. Only the three canonical labels are accepted.
func ParsePhase(s string) (Phase, bool) {
	switch Phase(strings.ToLower(strings.TrimSpace(s))) {
	case PhasePreOp:
		return PhasePreOp, true
	case PhaseIntraOp:
		return PhaseIntraOp, true
	case PhasePostOp:
		return PhasePostOp, true
	}
	return "", false
}

// RoutingDecision is the classifier's structured output for a query.
// If PatientID is set, PatientSpecific is true.
type RoutingDecision struct {
	Phase           Phase    `json:"phase"`
	Collections     []string `json:"collections"`
	PatientSpecific bool     `json:"patient_specific"`
	PatientID       string   `json:"patient_id,omitempty"`
	Reasoning       string   `json:"reasoning"`
	Source          string   `json:"source"`
}

// WithPatient scopes the decision to patientID. An empty id is a no-op.
func (d *RoutingDecision) WithPatient(patientID string) {
	if patientID == "" {
		return
	}
	d.PatientSpecific = true
	d.PatientID = patientID
	d.Reasoning += " Query specifically mentions patient " + patientID + "."
}

// RetrievalResult is a single similarity hit. Lower distance means more similar.
type RetrievalResult struct {
	Document string                 `json:"document"`
	Metadata map[string]interface{} `json:"metadata"`
	Distance float64                `json:"distance"`
}

// PatientID returns the patient_id metadata value as a string, if any.
func (r RetrievalResult) PatientID() string {
	if r.Metadata == nil {
		return ""
	}
	if v, ok := r.Metadata[MetadataPatientID].(string); ok {
		return v
	}
	return ""
}

// Record is a document fetched by exact metadata lookup.
type Record struct {
	Document string                 `json:"document"`
	Metadata map[string]interface{} `json:"metadata"`
}

// DedupeCollections drops repeats while keeping first-seen order.
func DedupeCollections(collections []string) []string {
	seen := make(map[string]bool, len(collections))
	out := make([]string, 0, len(collections))
	for _, c := range collections {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
