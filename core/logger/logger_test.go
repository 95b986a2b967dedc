package logger

import (
	"errors"
	"net/http/httptest"
	"testing"

	"point-record/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("Levels", func(t *testing.T) {
		l, err := New(&Config{Level: "warn", Format: "json"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

		l, err = New(&Config{Level: "debug", Format: "console"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("Invalid Level", func(t *testing.T) {
		_, err := New(&Config{Level: "loud"})
		assert.Error(t, err)
	})
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(rayid.LocalsKey, "abc-123")
		WithRayID(base, c).Info("handled")
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc-123", logs.All()[0].ContextMap()["ray_id"])
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	app := fiber.New()
	app.Use(rayid.New())
	app.Use(Middleware(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })
	app.Get("/fail", func(c *fiber.Ctx) error { return errors.New("boom") })

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set(rayid.Header, "rid-1")
	_, err := app.Test(req)
	require.NoError(t, err)

	_, err = app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)

	ok := entries[0].ContextMap()
	assert.Equal(t, "Request completed", entries[0].Message)
	assert.Equal(t, "rid-1", ok["ray_id"])
	assert.Equal(t, int64(fiber.StatusTeapot), ok["status"])
	assert.Equal(t, "/ok", ok["path"])

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
