package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type mockFeature struct {
	name    string
	enabled bool
	loadErr error
	loaded  bool
}

func (m *mockFeature) Name() string    { return m.name }
func (m *mockFeature) IsEnabled() bool { return m.enabled }
func (m *mockFeature) Load(app fiber.Router) error {
	m.loaded = true
	return m.loadErr
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("LoadsEnabledOnly", func(t *testing.T) {
		on := &mockFeature{name: "on", enabled: true}
		off := &mockFeature{name: "off", enabled: false}

		mgr := NewManager()
		mgr.Register(on)
		mgr.Register(off)

		assert.NoError(t, mgr.LoadAll(fiber.New()))
		assert.True(t, on.loaded)
		assert.False(t, off.loaded)
		assert.Len(t, mgr.Features(), 2)
	})

	t.Run("StopsOnError", func(t *testing.T) {
		bad := &mockFeature{name: "bad", enabled: true, loadErr: errors.New("boom")}
		next := &mockFeature{name: "next", enabled: true}

		mgr := NewManager()
		mgr.Register(bad)
		mgr.Register(next)

		err := mgr.LoadAll(fiber.New())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "bad")
		assert.False(t, next.loaded)
	})
}
