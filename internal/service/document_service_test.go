package service

import (
	"context"
	"errors"
	"testing"

	"cardiac-assistant-be/internal/dto"
	"cardiac-assistant-be/internal/entity"
	"cardiac-assistant-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	sent []dto.IndexDocumentMessage
	err  error
}

func (p *capturingPublisher) PublishIndexDocument(ctx context.Context, msg dto.IndexDocumentMessage) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, msg)
	return nil
}

func TestDocumentService_IndexQueuesMessage(t *testing.T) {
	pub := &capturingPublisher{}
	svc := NewDocumentService(pub, &fakeDocumentRepo{}, logger.NewNopLogger())

	res, err := svc.Index(context.Background(), &dto.IndexDocumentRequest{
		Collection: "notes",
		Text:       "Day 1: ambulating, no endoleak on duplex.",
		Metadata: map[string]interface{}{
			"patient_id": "P003",
			"vitals":     map[string]interface{}{"hr": 72},
		},
	})
	require.NoError(t, err)
	require.Len(t, pub.sent, 1)

	msg := pub.sent[0]
	assert.Equal(t, res.Id, msg.Id)
	assert.Equal(t, "notes", res.Collection)
	assert.Equal(t, "P003", msg.Metadata["patient_id"])
	assert.IsType(t, "", msg.Metadata["vitals"])
}

func TestDocumentService_PublishFailure(t *testing.T) {
	svc := NewDocumentService(&capturingPublisher{err: errors.New("closed")}, &fakeDocumentRepo{}, logger.NewNopLogger())

	_, err := svc.Index(context.Background(), &dto.IndexDocumentRequest{Collection: "devices", Text: "x"})
	assert.Error(t, err)
}

func TestDocumentService_Delete(t *testing.T) {
	keep := &entity.ClinicalDocument{Id: uuid.New(), Collection: "devices", Document: "Endurant II IFU"}
	drop := &entity.ClinicalDocument{Id: uuid.New(), Collection: "guidelines", Document: "Superseded 2019 guidance"}
	repo := &fakeDocumentRepo{documents: []*entity.ClinicalDocument{keep, drop}}
	svc := NewDocumentService(&capturingPublisher{}, repo, logger.NewNopLogger())

	res, err := svc.Delete(context.Background(), drop.Id.String())
	require.NoError(t, err)
	assert.Equal(t, "guidelines", res.Collection)
	require.Len(t, repo.stored(), 1)
	assert.Equal(t, keep.Id, repo.stored()[0].Id)
}

func TestDocumentService_DeleteErrors(t *testing.T) {
	svc := NewDocumentService(&capturingPublisher{}, &fakeDocumentRepo{}, logger.NewNopLogger())

	_, err := svc.Delete(context.Background(), "not-a-uuid")
	assert.Equal(t, fiber.StatusBadRequest, statusOf(t, err))

	_, err = svc.Delete(context.Background(), uuid.NewString())
	assert.Equal(t, fiber.StatusNotFound, statusOf(t, err))

	failing := NewDocumentService(&capturingPublisher{}, &fakeDocumentRepo{err: errors.New("connection reset")}, logger.NewNopLogger())
	_, err = failing.Delete(context.Background(), uuid.NewString())
	var fe *fiber.Error
	assert.Error(t, err)
	assert.False(t, errors.As(err, &fe))
}
