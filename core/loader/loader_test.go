package loader_test

import (
	"errors"
	"testing"

	"purchase-manager/core/loader"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockFeature struct {
	mock.Mock
	name string
}

func (m *mockFeature) Name() string { return m.name }

func (m *mockFeature) IsEnabled() bool {
	return m.Called().Bool(0)
}

func (m *mockFeature) Load(app fiber.Router) error {
	return m.Called(app).Error(0)
}

func TestManager_LoadAll(t *testing.T) {
	app := fiber.New()

	enabled := &mockFeature{name: "catalog"}
	enabled.On("IsEnabled").Return(true)
	enabled.On("Load", mock.Anything).Return(nil).Once()

	disabled := &mockFeature{name: "notifications"}
	disabled.On("IsEnabled").Return(false)

	mgr := loader.NewManager()
	mgr.Register(enabled)
	mgr.Register(disabled)

	loaded, err := mgr.LoadAll(app)
	assert.NoError(t, err)
	assert.Equal(t, []string{"catalog"}, loaded)
	enabled.AssertExpectations(t)
	disabled.AssertNotCalled(t, "Load", mock.Anything)
}

func TestManager_LoadAllStopsOnError(t *testing.T) {
	failing := &mockFeature{name: "entitlements"}
	failing.On("IsEnabled").Return(true)
	failing.On("Load", mock.Anything).Return(errors.New("boom"))

	next := &mockFeature{name: "catalog"}
	next.On("IsEnabled").Return(true)

	mgr := loader.NewManager()
	mgr.Register(failing)
	mgr.Register(next)

	loaded, err := mgr.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "entitlements")
	assert.Empty(t, loaded)
	next.AssertNotCalled(t, "Load", mock.Anything)
}
