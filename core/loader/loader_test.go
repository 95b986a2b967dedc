package loader

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (f *stubFeature) Name() string    { return f.name }
func (f *stubFeature) IsEnabled() bool { return f.enabled }
func (f *stubFeature) Load(app fiber.Router) error {
	if f.err != nil {
		return f.err
	}
	f.loaded = true
	app.Get("/"+f.name, func(c *fiber.Ctx) error { return c.SendString(f.name) })
	return nil
}

func TestManager_LoadAll(t *testing.T) {
	on := &stubFeature{name: "on", enabled: true}
	off := &stubFeature{name: "off", enabled: false}

	m := NewManager(nil)
	m.Register(on)
	m.Register(off)
	assert.Len(t, m.Features(), 2)

	app := fiber.New()
	require.NoError(t, m.LoadAll(app))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)

	resp, err := app.Test(httptest.NewRequest("GET", "/on", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/off", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestManager_LoadAllError(t *testing.T) {
	m := NewManager(nil)
	m.Register(&stubFeature{name: "broken", enabled: true, err: errors.New("boom")})

	err := m.LoadAll(fiber.New())
	assert.ErrorContains(t, err, "broken")
	assert.ErrorContains(t, err, "boom")
}
