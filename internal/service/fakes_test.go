package service

import (
	"context"
	"errors"
	"sync"

	"cardiac-assistant-be/internal/entity"
	"cardiac-assistant-be/internal/repository/specification"
	"cardiac-assistant-be/pkg/embedding"
	"cardiac-assistant-be/pkg/events"
	"cardiac-assistant-be/pkg/rag"

	"github.com/google/uuid"
)

type fakeDocumentRepo struct {
	mu        sync.Mutex
	documents []*entity.ClinicalDocument
	counts    []entity.CollectionCount
	err       error
}

func (r *fakeDocumentRepo) Create(ctx context.Context, document *entity.ClinicalDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.documents = append(r.documents, document)
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	kept := r.documents[:0]
	for _, d := range r.documents {
		if d.Id != id {
			kept = append(kept, d)
		}
	}
	r.documents = kept
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ClinicalDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, spec := range specs {
		byID, ok := spec.(specification.ByID)
		if !ok {
			continue
		}
		for _, d := range r.documents {
			if d.Id == byID.ID {
				return d, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) CountByCollection(ctx context.Context) ([]entity.CollectionCount, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.counts, nil
}

func (r *fakeDocumentRepo) Query(ctx context.Context, collection string, vector []float32, topK int, filter map[string]interface{}) ([]rag.RetrievalResult, error) {
	return nil, nil
}

func (r *fakeDocumentRepo) GetByMetadata(ctx context.Context, collection string, field string, value interface{}) (*rag.Record, error) {
	return nil, nil
}

func (r *fakeDocumentRepo) stored() []*entity.ClinicalDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.ClinicalDocument(nil), r.documents...)
}

// flakyEmbedder fails its first failures calls.
type flakyEmbedder struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (e *flakyEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.calls <= e.failures {
		return nil, errors.New("embedding backend unavailable")
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.6, 0.8}}}, nil
}

func (e *flakyEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type recordingEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEvents) Publish(ctx context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingEvents) published() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}
