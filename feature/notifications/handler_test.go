package notifications_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"purchase-manager/core/entitlement"
	"purchase-manager/feature/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockIngester struct {
	mock.Mock
}

func (m *mockIngester) Ingest(ctx context.Context, tx entitlement.SignedTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *mockIngester) IngestStatus(ctx context.Context, status entitlement.SignedStatus) error {
	return m.Called(ctx, status).Error(0)
}

func post(t *testing.T, app *fiber.App, path, body string) int {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func setupApp(ingester notifications.Ingester) *fiber.App {
	app := fiber.New()
	_ = notifications.NewFeature(ingester, true, zap.NewNop()).Load(app)
	return app
}

func TestHandleTransaction(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		ingestErr error
		ingest    bool
		want      int
	}{
		{"Accepted", `{"signed_transaction":"a.b.c"}`, nil, true, fiber.StatusAccepted},
		{"Undecodable payload", `{"signed_transaction":"garbage"}`, errors.New("transaction payload cannot be decoded"), true, fiber.StatusBadRequest},
		{"Missing transaction", `{}`, nil, false, fiber.StatusBadRequest},
		{"Malformed body", `{"signed_transaction":`, nil, false, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingester := new(mockIngester)
			if tt.ingest {
				ingester.On("Ingest", mock.Anything, mock.AnythingOfType("entitlement.SignedTransaction")).Return(tt.ingestErr).Once()
			}

			assert.Equal(t, tt.want, post(t, setupApp(ingester), "/notifications/transactions", tt.body))
			ingester.AssertExpectations(t)
		})
	}
}

func TestHandleStatus(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		ingester := new(mockIngester)
		ingester.On("IngestStatus", mock.Anything, entitlement.SignedStatus{
			Transaction: entitlement.SignedTransaction{JWS: "a.b.c"},
			State:       entitlement.StateInGracePeriod,
		}).Return(nil).Once()

		status := post(t, setupApp(ingester), "/notifications/statuses",
			`{"transaction":{"signed_transaction":"a.b.c"},"state":"inGracePeriod"}`)
		assert.Equal(t, fiber.StatusAccepted, status)
		ingester.AssertExpectations(t)
	})

	t.Run("Unknown state", func(t *testing.T) {
		ingester := new(mockIngester)

		status := post(t, setupApp(ingester), "/notifications/statuses",
			`{"transaction":{"signed_transaction":"a.b.c"},"state":"paused"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
		ingester.AssertNotCalled(t, "IngestStatus", mock.Anything, mock.Anything)
	})

	t.Run("Missing transaction", func(t *testing.T) {
		ingester := new(mockIngester)

		status := post(t, setupApp(ingester), "/notifications/statuses", `{"state":"subscribed"}`)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})
}

func TestFeature_Disabled(t *testing.T) {
	f := notifications.NewFeature(new(mockIngester), false, zap.NewNop())
	assert.False(t, f.IsEnabled())
	assert.Equal(t, "notifications", f.Name())
}
