package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
	}{
		{"Int64", int64(192), 192},
		{"Int", 7, 7},
		{"Uint32", uint32(64), 64},
		{"Float", 3.9, 3},
		{"String", " 128 ", 128},
		{"Bytes", []byte("12"), 12},
		{"Garbage", "abc", 0},
		{"Nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt64(tt.in))
		})
	}
}

func TestToFloat64(t *testing.T) {
	assert.Equal(t, 1.5, ToFloat64(1.5))
	assert.Equal(t, 2.0, ToFloat64(int64(2)))
	assert.Equal(t, 0.25, ToFloat64("0.25"))
	assert.Equal(t, 0.0, ToFloat64(nil))
}

func TestToStringAndBool(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "flow", ToString([]byte("flow")))
	assert.Equal(t, "42", ToString(42))

	assert.True(t, ToBool("TRUE"))
	assert.True(t, ToBool(1))
	assert.False(t, ToBool("no"))
	assert.False(t, ToBool(nil))
}
