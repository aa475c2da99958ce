package integrity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"purchase-manager/core/storage/mocks"
	"purchase-manager/feature/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type notPublished struct{}

func (notPublished) Fetch(context.Context) (*catalog.Document, error) {
	return nil, catalog.ErrNotPublished
}

func setupApp(client *mocks.Client) *fiber.App {
	feature := NewFeature(Sources{
		Client:  client,
		Bucket:  "purchases",
		Catalog: notPublished{},
		Config: catalog.Config{
			Object:        "catalog/products.json",
			ArchivePrefix: "catalog/archive/",
			ProductIDs:    []string{"nonconsumable.removeAds"},
		},
	}, zap.NewNop())

	app := fiber.New()
	_ = feature.Load(app)
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestLoader(t *testing.T) {
	feature := NewFeature(Sources{Client: new(mocks.Client), Bucket: "test-bucket"}, zap.NewNop())

	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NoError(t, feature.Load(fiber.New()))
}

func TestPrefixes(t *testing.T) {
	svc := NewService(Sources{Config: catalog.Config{Object: "products.json"}}, zap.NewNop())
	assert.Empty(t, svc.Prefixes())

	svc = NewService(Sources{Config: catalog.Config{Object: "catalog/products.json", ArchivePrefix: "catalog/archive/"}}, zap.NewNop())
	assert.Equal(t, []string{"catalog", "catalog/archive/"}, svc.Prefixes())
}

func TestHandleStructureCheck(t *testing.T) {
	t.Run("Report", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "purchases").Return(true, nil)
		client.On("ListObjects", mock.Anything, "purchases", mock.Anything).Return(nil)

		status, body := getJSON(t, setupApp(client), "/integrity/structure")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "checked", body["status"])
		assert.Len(t, body["missing"], 2)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fix", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "purchases").Return(true, nil)
		client.On("ListObjects", mock.Anything, "purchases", mock.Anything).Return(nil)
		client.On("PutObject", mock.Anything, "purchases", mock.Anything, mock.Anything, int64(0), mock.Anything).
			Return(minio.UploadInfo{}, nil).Twice()

		status, body := getJSON(t, setupApp(client), "/integrity/structure?fix=true")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "fixed", body["status"])
		client.AssertExpectations(t)
	})

	t.Run("Storage Down", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "purchases").Return(false, errors.New("connection refused"))

		status, body := getJSON(t, setupApp(client), "/integrity/structure")
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Contains(t, body["error"], "connection refused")
	})
}

func TestHandleCatalogCheck(t *testing.T) {
	status, body := getJSON(t, setupApp(new(mocks.Client)), "/integrity/catalog")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, false, body["published"])
	assert.Equal(t, []interface{}{"nonconsumable.removeAds"}, body["missing"])
}

func TestHandleUnconfiguredChecks(t *testing.T) {
	app := setupApp(new(mocks.Client))

	status, _ := getJSON(t, app, "/integrity/schema")
	assert.Equal(t, fiber.StatusInternalServerError, status)

	status, body := getJSON(t, app, "/integrity/balance")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, body["error"], "not configured")
}

func TestHandleIntegrityCheck(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "purchases").Return(false, nil)

	status, body := getJSON(t, setupApp(client), "/integrity")
	assert.Equal(t, fiber.StatusOK, status)
	require.Len(t, body, 4)

	structure := body["structure"].(map[string]interface{})
	assert.Equal(t, "error", structure["status"])
	assert.Contains(t, structure["error"], "does not exist")

	assert.Equal(t, false, body["catalog"].(map[string]interface{})["published"])
	assert.Equal(t, "error", body["schema"].(map[string]interface{})["status"])
	assert.Equal(t, "error", body["balance"].(map[string]interface{})["status"])
}
