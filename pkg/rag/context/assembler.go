package context

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/pkg/embedding"
	"cardiac-assistant-be/pkg/rag"
)

// VectorStore is the read side of the document store the assembler needs.
type VectorStore interface {
	// Query returns up to topK hits ordered by ascending distance. A non-empty
	// filter restricts hits to documents whose metadata equals every pair.
	Query(ctx context.Context, collection string, vector []float32, topK int, filter map[string]interface{}) ([]rag.RetrievalResult, error)
	// GetByMetadata returns the first document whose metadata field equals value,
	// or nil when there is none.
	GetByMetadata(ctx context.Context, collection string, field string, value interface{}) (*rag.Record, error)
}

type Config struct {
	QueryLimit int // hits requested from the store per collection
	TopK       int // hits kept per collection block
}

func DefaultConfig() Config {
	return Config{QueryLimit: 5, TopK: 3}
}

// Assembler turns a routing decision into the context text handed to the
// answer model. Retrieval problems only shrink the context, they never fail it.
type Assembler struct {
	embeddingProvider embedding.EmbeddingProvider
	store             VectorStore
	logger            logger.ILogger
	config            Config
}

func NewAssembler(embeddingProvider embedding.EmbeddingProvider, store VectorStore, logger logger.ILogger, config Config) *Assembler {
	if config.TopK <= 0 {
		config.TopK = DefaultConfig().TopK
	}
	if config.QueryLimit < config.TopK {
		config.QueryLimit = config.TopK
	}
	return &Assembler{
		embeddingProvider: embeddingProvider,
		store:             store,
		logger:            logger,
		config:            config,
	}
}

func patientHeader() string {
	return "\n\n--- Patient Information ---\n"
}

func collectionHeader(collection string) string {
	return fmt.Sprintf("\n\n--- Information from %s ---\n", collection)
}

// Build assembles the patient block (if any) followed by one block per
// collection, in decision order.
func (a *Assembler) Build(ctx context.Context, decision rag.RoutingDecision, patientID string, query string) string {
	var sb strings.Builder

	patientIncluded := false
	if patientID != "" {
		if doc, ok := a.patientRecord(ctx, patientID); ok {
			sb.WriteString(patientHeader())
			sb.WriteString(doc)
			sb.WriteString("\n")
			patientIncluded = true
		}
	}

	collections := rag.DedupeCollections(decision.Collections)
	if len(collections) == 0 {
		return sb.String()
	}

	embeddingRes, err := a.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		a.logger.Warn("Assembler", "Query embedding failed, similarity blocks omitted", map[string]interface{}{
			"error": fmt.Errorf("%w: %v", rag.ErrRetrievalUnavailable, err).Error(),
		})
		return sb.String()
	}
	vector := embeddingRes.Embedding.Values

	for _, collection := range collections {
		results, err := a.retrieve(ctx, collection, vector, patientID)
		if err != nil {
			a.logger.Warn("Assembler", "Collection skipped", map[string]interface{}{
				"collection": collection,
				"error":      err.Error(),
			})
			continue
		}

		if patientIncluded && collection == rag.CollectionPatients {
			results = dropPatient(results, patientID)
		}
		if len(results) > a.config.TopK {
			results = results[:a.config.TopK]
		}
		if len(results) == 0 {
			continue
		}

		sb.WriteString(collectionHeader(collection))
		for _, r := range results {
			sb.WriteString("\n")
			sb.WriteString(r.Document)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (a *Assembler) patientRecord(ctx context.Context, patientID string) (string, bool) {
	record, err := a.store.GetByMetadata(ctx, rag.CollectionPatients, rag.MetadataPatientID, patientID)
	if err != nil {
		a.logger.Warn("Assembler", "Patient lookup failed", map[string]interface{}{
			"patient_id": patientID,
			"error":      fmt.Errorf("%w: %v", rag.ErrRetrievalUnavailable, err).Error(),
		})
		return "", false
	}
	if record == nil {
		a.logger.Warn("Assembler", "Patient lookup missed", map[string]interface{}{
			"patient_id": patientID,
			"error":      rag.ErrPatientNotFound.Error(),
		})
		return "", false
	}
	return record.Document, true
}

// retrieve queries one collection. Notes are restricted to the scoped patient,
// and the restriction is re-checked on the hits in case the store ignores it.
func (a *Assembler) retrieve(ctx context.Context, collection string, vector []float32, patientID string) ([]rag.RetrievalResult, error) {
	var filter map[string]interface{}
	if patientID != "" && collection == rag.CollectionNotes {
		filter = map[string]interface{}{rag.MetadataPatientID: patientID}
	}

	results, err := a.store.Query(ctx, collection, vector, a.config.QueryLimit, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", rag.ErrRetrievalUnavailable, collection, err)
	}

	if filter != nil {
		results = keepMatching(results, filter)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results, nil
}

func keepMatching(results []rag.RetrievalResult, filter map[string]interface{}) []rag.RetrievalResult {
	out := results[:0:0]
	for _, r := range results {
		matched := true
		for field, want := range filter {
			if fmt.Sprint(r.Metadata[field]) != fmt.Sprint(want) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, r)
		}
	}
	return out
}

func dropPatient(results []rag.RetrievalResult, patientID string) []rag.RetrievalResult {
	out := results[:0:0]
	for _, r := range results {
		if r.PatientID() == patientID {
			continue
		}
		out = append(out, r)
	}
	return out
}
