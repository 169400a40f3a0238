package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/leaps-program/leaps-api/internal/dto"
	"github.com/leaps-program/leaps-api/internal/service"
)

type stubWebhookService struct {
	ingestResult    dto.WebhookEventResult
	ingestErr       error
	reprocessResult dto.WebhookEventResult
	reprocessErr    error
}

func (s *stubWebhookService) Ingest(ctx context.Context, payload dto.WebhookEventRequest) (dto.WebhookEventResult, error) {
	return s.ingestResult, s.ingestErr
}

func (s *stubWebhookService) Reprocess(ctx context.Context, eventID uint, actor service.ReviewActor) (dto.WebhookEventResult, error) {
	return s.reprocessResult, s.reprocessErr
}

func (s *stubWebhookService) List(ctx context.Context, req dto.WebhookEventListRequest) (dto.WebhookEventListResponse, error) {
	return dto.WebhookEventListResponse{}, nil
}

func newWebhookTestApp(stub *stubWebhookService) *fiber.App {
	app := fiber.New()
	h := NewWebhookHandler(stub, zerolog.Nop())
	h.RegisterIngest(app.Group("/webhooks"))
	h.RegisterAdmin(app.Group("/admin/webhook-events"))
	return app
}

func TestWebhookHandlerIngestReturnsOutcome(t *testing.T) {
	stub := &stubWebhookService{
		ingestResult: dto.WebhookEventResult{EventID: 7, Status: "processed"},
	}
	app := newWebhookTestApp(stub)

	body, err := json.Marshal(dto.WebhookEventRequest{EventID: "evt-1", Tag: "leaps-learn-course-complete"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/lms", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWebhookHandlerReprocessMapsErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing event", service.ErrEventNotFound, fiber.StatusNotFound},
		{"ineligible user", service.ErrIneligible, fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newWebhookTestApp(&stubWebhookService{reprocessErr: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/admin/webhook-events/5/reprocess", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestWebhookHandlerReprocessRejectsBadID(t *testing.T) {
	app := newWebhookTestApp(&stubWebhookService{})

	req := httptest.NewRequest(http.MethodPost, "/admin/webhook-events/not-a-number/reprocess", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
