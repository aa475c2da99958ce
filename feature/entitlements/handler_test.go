package entitlements_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"purchase-manager/core/entitlement"
	"purchase-manager/feature/entitlements"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockManager struct {
	mock.Mock
}

func (m *mockManager) Balance() int { return m.Called().Int(0) }

func (m *mockManager) Owns(productID string) bool { return m.Called(productID).Bool(0) }

func (m *mockManager) Owned() []string {
	owned, _ := m.Called().Get(0).([]string)
	return owned
}

func (m *mockManager) Plan() entitlement.Plan { return m.Called().Get(0).(entitlement.Plan) }

func (m *mockManager) Transactions(ctx context.Context) []entitlement.PurchaseRecord {
	records, _ := m.Called(ctx).Get(0).([]entitlement.PurchaseRecord)
	return records
}

func (m *mockManager) LastError() error { return m.Called().Error(0) }

func (m *mockManager) SubmitPurchaseResult(ctx context.Context, result entitlement.PurchaseResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockManager) Restore(ctx context.Context) error { return m.Called(ctx).Error(0) }

func (m *mockManager) LoadProducts(ctx context.Context) { m.Called(ctx) }

func (m *mockManager) ConsumableProducts() []entitlement.ProductDescriptor {
	products, _ := m.Called().Get(0).([]entitlement.ProductDescriptor)
	return products
}

func (m *mockManager) NonConsumableProducts() []entitlement.ProductDescriptor {
	products, _ := m.Called().Get(0).([]entitlement.ProductDescriptor)
	return products
}

func (m *mockManager) SubscriptionProducts() []entitlement.ProductDescriptor {
	products, _ := m.Called().Get(0).([]entitlement.ProductDescriptor)
	return products
}

func setupApp(manager entitlements.Manager) *fiber.App {
	app := fiber.New()
	_ = entitlements.NewFeature(manager, nil, zap.NewNop()).Load(app)
	return app
}

func expectState(m *mockManager, lastErr error) {
	m.On("Balance").Return(600)
	m.On("Plan").Return(entitlement.PlanPlus)
	m.On("Owned").Return([]string{"nonconsumable.removeAds"})
	m.On("LastError").Return(lastErr)
}

func decode[T any](t *testing.T, body io.Reader) T {
	var v T
	require.NoError(t, json.NewDecoder(body).Decode(&v))
	return v
}

func TestHandleGetState(t *testing.T) {
	m := new(mockManager)
	expectState(m, errors.New("transaction signature is invalid"))

	resp, err := setupApp(m).Test(httptest.NewRequest("GET", "/entitlements", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	state := decode[entitlements.State](t, resp.Body)
	assert.Equal(t, entitlements.State{
		Balance:   600,
		Plan:      entitlement.PlanPlus,
		Owned:     []string{"nonconsumable.removeAds"},
		LastError: "transaction signature is invalid",
	}, state)
}

func TestHandleGetOwned(t *testing.T) {
	m := new(mockManager)
	m.On("Owns", "nonconsumable.removeAds").Return(true)

	resp, err := setupApp(m).Test(httptest.NewRequest("GET", "/entitlements/owned/nonconsumable.removeAds", nil))
	require.NoError(t, err)

	ownership := decode[entitlements.Ownership](t, resp.Body)
	assert.Equal(t, entitlements.Ownership{ProductID: "nonconsumable.removeAds", Owned: true}, ownership)
}

func TestHandleGetTransactions(t *testing.T) {
	m := new(mockManager)
	m.On("Transactions", mock.Anything).Return(nil)

	resp, err := setupApp(m).Test(httptest.NewRequest("GET", "/entitlements/transactions", nil))
	require.NoError(t, err)

	data, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `[]`, string(data))
}

func TestHandleGetProducts(t *testing.T) {
	m := new(mockManager)
	m.On("LoadProducts", mock.Anything).Return().Once()
	m.On("ConsumableProducts").Return([]entitlement.ProductDescriptor{{ID: "consumable.gachaStone.100"}})
	m.On("NonConsumableProducts").Return(nil)
	m.On("SubscriptionProducts").Return(nil)
	app := setupApp(m)

	resp, err := app.Test(httptest.NewRequest("GET", "/entitlements/products?reload=true", nil))
	require.NoError(t, err)
	listings := decode[entitlements.Listings](t, resp.Body)
	assert.Len(t, listings.Consumables, 1)
	assert.NotNil(t, listings.NonConsumables)

	_, err = app.Test(httptest.NewRequest("GET", "/entitlements/products", nil))
	require.NoError(t, err)
	m.AssertNumberOfCalls(t, "LoadProducts", 1)
}

func TestHandleSubmitPurchase(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		result entitlement.PurchaseResult
		status int
	}{
		{
			name:   "Success",
			body:   `{"status":"success","signed_transaction":"eyJ.a.b"}`,
			result: entitlement.PurchaseSuccess{Transaction: entitlement.SignedTransaction{JWS: "eyJ.a.b"}},
			status: fiber.StatusOK,
		},
		{
			name:   "Pending",
			body:   `{"status":"pending"}`,
			result: entitlement.PurchasePending{},
			status: fiber.StatusOK,
		},
		{
			name:   "Cancelled",
			body:   `{"status":"cancelled"}`,
			result: entitlement.PurchaseCancelled{},
			status: fiber.StatusOK,
		},
		{
			name:   "Failed",
			body:   `{"status":"failed","error":"card declined"}`,
			result: entitlement.PurchaseFailure{Err: errors.New("card declined")},
			status: fiber.StatusOK,
		},
		{name: "Success without transaction", body: `{"status":"success"}`, status: fiber.StatusBadRequest},
		{name: "Unknown status", body: `{"status":"refunded"}`, status: fiber.StatusBadRequest},
		{name: "Malformed body", body: `{"status":`, status: fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockManager)
			expectState(m, nil)
			if tt.result != nil {
				m.On("SubmitPurchaseResult", mock.Anything, tt.result).Return(nil).Once()
			}

			req := httptest.NewRequest("POST", "/entitlements/purchases", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := setupApp(m).Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.result == nil {
				m.AssertNotCalled(t, "SubmitPurchaseResult", mock.Anything, mock.Anything)
				return
			}
			m.AssertExpectations(t)
		})
	}
}

func TestHandleSubmitPurchase_Closed(t *testing.T) {
	m := new(mockManager)
	m.On("SubmitPurchaseResult", mock.Anything, mock.Anything).Return(entitlement.ErrClosed)

	req := httptest.NewRequest("POST", "/entitlements/purchases", strings.NewReader(`{"status":"pending"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := setupApp(m).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleRestore(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		m := new(mockManager)
		expectState(m, nil)
		m.On("Restore", mock.Anything).Return(nil).Once()

		resp, err := setupApp(m).Test(httptest.NewRequest("POST", "/entitlements/restore", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, 600, decode[entitlements.State](t, resp.Body).Balance)
	})

	t.Run("Sync failure", func(t *testing.T) {
		m := new(mockManager)
		m.On("Restore", mock.Anything).Return(errors.New("failed to sync: not signed in"))

		resp, err := setupApp(m).Test(httptest.NewRequest("POST", "/entitlements/restore", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, decode[map[string]string](t, resp.Body)["error"], "not signed in")
	})
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, tx entitlement.SignedTransaction) error {
	return m.Called(ctx, tx).Error(0)
}

func TestHandleSubmitPurchase_RecordsSuccess(t *testing.T) {
	tx := entitlement.SignedTransaction{JWS: "eyJ.a.b"}
	m := new(mockManager)
	expectState(m, nil)
	m.On("SubmitPurchaseResult", mock.Anything, entitlement.PurchaseSuccess{Transaction: tx}).Return(nil).Once()
	recorder := new(mockRecorder)
	recorder.On("Record", mock.Anything, tx).Return(errors.New("disk full")).Once()

	app := fiber.New()
	require.NoError(t, entitlements.NewFeature(m, recorder, zap.NewNop()).Load(app))

	req := httptest.NewRequest("POST", "/entitlements/purchases", strings.NewReader(`{"status":"success","signed_transaction":"eyJ.a.b"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	recorder.AssertExpectations(t)
	m.AssertExpectations(t)
}
