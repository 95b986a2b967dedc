package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"point-record/core/point"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useMemoryBackend points every command at a fresh in-memory badger store.
func useMemoryBackend(t *testing.T) {
	t.Helper()
	t.Setenv("BACKEND_DRIVER", "badger")
	t.Setenv("BACKEND_BADGER_IN_MEMORY", "true")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(append(args, "--config-dir", t.TempDir()))
	_, err := RootCmd.ExecuteC()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"start", "query", "point", "register", "invalidate", "export"} {
		c, _, err := RootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, point.New(1, 2)))
	assert.Contains(t, buf.String(), "\n  \"time\": 1,")
}

func TestQueryCommand(t *testing.T) {
	useMemoryBackend(t)

	out, err := run(t, "query", "flow", "--start", "0", "--end", "10")
	require.NoError(t, err)

	var pts []point.Point
	require.NoError(t, json.Unmarshal([]byte(out), &pts))
	assert.Empty(t, pts)

	_, err = run(t, "query", "flow", "--start", "10", "--end", "0")
	assert.ErrorContains(t, err, "invalid range")
}

func TestPointCommand_NotFound(t *testing.T) {
	useMemoryBackend(t)

	_, err := run(t, "point", "flow", "--at", "5")
	assert.ErrorIs(t, err, errNotFound)
}

func TestRegisterCommand(t *testing.T) {
	useMemoryBackend(t)

	_, err := run(t, "register", "flow", "--units", "gpm")
	assert.NoError(t, err)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	t.Setenv("BACKEND_DRIVER", "oracle")

	_, err := run(t, "invalidate", "flow")
	assert.ErrorContains(t, err, "backend.driver")
}
