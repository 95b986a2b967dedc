package backend

import (
	"context"
	"testing"

	"point-record/core/database"
	"point-record/core/reconcile/adapters/badgerdb"
	"point-record/core/reconcile/adapters/gormdb"
	"point-record/core/reconcile/adapters/influx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("SQL", func(t *testing.T) {
		b, err := New(Config{Driver: DriverSQL, ReadOnly: true}, database.Config{Driver: "sqlite", Name: ":memory:"}, nil)
		require.NoError(t, err)
		assert.IsType(t, &gormdb.Adapter{}, b)
		assert.True(t, b.Capabilities().ImplementationReadonly)
		assert.NoError(t, b.Close())
	})

	t.Run("Badger", func(t *testing.T) {
		b, err := New(Config{Driver: DriverBadger, Badger: badgerdb.Config{InMemory: true}}, database.Config{}, nil)
		require.NoError(t, err)
		assert.IsType(t, &badgerdb.Adapter{}, b)
		require.NoError(t, b.Connect(context.Background()))
		assert.True(t, b.IsConnected())
		assert.NoError(t, b.Close())
	})

	t.Run("Influx", func(t *testing.T) {
		b, err := New(Config{Driver: DriverInflux, Influx: influx.Config{URL: "http://127.0.0.1:1"}}, database.Config{}, nil)
		require.NoError(t, err)
		assert.IsType(t, &influx.Adapter{}, b)
		assert.True(t, b.Capabilities().SearchIteratively)
		assert.NoError(t, b.Close())
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := New(Config{Driver: "csv"}, database.Config{}, nil)
		assert.Error(t, err)
	})
}

func TestConfig_IsValidDriver(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		want   bool
	}{
		{"SQL", DriverSQL, true},
		{"Badger", DriverBadger, true},
		{"Influx", DriverInflux, true},
		{"Invalid", "invalid", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{Driver: tt.driver}
			assert.Equal(t, tt.want, c.IsValidDriver())
		})
	}
}
