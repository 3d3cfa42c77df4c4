package router

import (
	"strings"

	"cardiac-assistant-be/pkg/rag"
)

type phaseRule struct {
	phase     rag.Phase
	reasoning string
	terms     []string
}

// Evaluated in order; the first rule with a matching term wins.
var phaseRules = []phaseRule{
	{
		phase:     rag.PhasePreOp,
		reasoning: "Query relates to preoperative planning or assessment",
		terms:     []string{"pre-op", "preoperative", "planning", "assessment", "selection", "evaluate", "suitable"},
	},
	{
		phase:     rag.PhaseIntraOp,
		reasoning: "Query relates to intraoperative procedures or guidance",
		terms:     []string{"intra-op", "intraoperative", "surgery", "procedure", "deployment", "step", "during", "how to"},
	},
	{
		phase:     rag.PhasePostOp,
		reasoning: "Query relates to postoperative care or follow-up",
		terms:     []string{"post-op", "postoperative", "recovery", "follow-up", "discharge", "complication", "after surgery"},
	},
}

const defaultPhaseReasoning = "Defaulting to pre-op for general queries"

type collectionRule struct {
	collection string
	terms      []string
}

// Not mutually exclusive; every matching group appends its collection.
var collectionRules = []collectionRule{
	{collection: rag.CollectionDevices, terms: []string{"device", "stent", "graft", "implant", "sizing", "delivery"}},
	{collection: rag.CollectionGuidelines, terms: []string{"guideline", "protocol", "standard", "recommend", "best practice"}},
	{collection: rag.CollectionLiterature, terms: []string{"study", "literature", "research", "trial", "evidence", "outcome"}},
	{collection: rag.CollectionNotes, terms: []string{"note", "record", "history", "previous", "prior"}},
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Fallback is the deterministic keyword router used whenever the LLM reply
// cannot be trusted. Identical input always yields an identical decision.
func Fallback(query string, patientID string) rag.RoutingDecision {
	lower := strings.ToLower(query)

	decision := rag.RoutingDecision{
		Phase:     rag.PhasePreOp,
		Reasoning: defaultPhaseReasoning,
		Source:    rag.SourceFallback,
	}
	for _, rule := range phaseRules {
		if containsAny(lower, rule.terms) {
			decision.Phase = rule.phase
			decision.Reasoning = rule.reasoning
			break
		}
	}

	decision.Collections = []string{rag.CollectionPatients}
	for _, rule := range collectionRules {
		if containsAny(lower, rule.terms) {
			decision.Collections = append(decision.Collections, rule.collection)
		}
	}

	decision.WithPatient(patientID)
	return decision
}

// Override builds the decision for a caller-chosen phase. The classifier is
// skipped and the phase's default collections are used.
func Override(phase rag.Phase, collections []string, patientID string) rag.RoutingDecision {
	decision := rag.RoutingDecision{
		Phase:       phase,
		Collections: rag.DedupeCollections(collections),
		Reasoning:   "Phase set to " + string(phase) + " by the caller.",
		Source:      rag.SourceOverride,
	}
	if len(decision.Collections) == 0 {
		decision.Collections = []string{rag.CollectionPatients}
	}
	decision.WithPatient(patientID)
	return decision
}
