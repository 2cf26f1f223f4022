package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayeredError_New(t *testing.T) {
	err := New(20, 2, "comparator", "error.comparator.index_out_of_range", "index out of range")

	assert.Equal(t, 200002, err.Code())
	assert.Equal(t, "comparator", err.Module())
	assert.Equal(t, "error.comparator.index_out_of_range", err.MsgKey())
	assert.Equal(t, "index out of range", err.Message())
	assert.Equal(t, "index out of range", err.Error())
	assert.Empty(t, err.Data())
}

func TestLayeredError_Wrap(t *testing.T) {
	base := New(21, 1, "event", "error.event.invalid_config", "invalid config")
	cause := errors.New("pool_size must be positive")

	wrapped := base.Wrap(cause)
	assert.Equal(t, "invalid config: pool_size must be positive", wrapped.Error())
	assert.True(t, errors.Is(wrapped, cause))
	assert.Nil(t, base.Unwrap(), "original instance must stay untouched")

	assert.Same(t, base, base.Wrap(nil))
}

func TestLayeredError_Is(t *testing.T) {
	base := New(20, 1, "comparator", "error.comparator.invalid_argument", "invalid argument")
	detailed := base.WithData("index", 3).WithMsg("comparator must not be nil")

	assert.True(t, errors.Is(detailed, base))
	assert.False(t, errors.Is(detailed, New(20, 2, "comparator", "k", "m")))
	assert.False(t, errors.Is(detailed, errors.New("invalid argument")))

	chained := fmt.Errorf("add: %w", detailed)
	assert.True(t, errors.Is(chained, base))

	var layered *LayeredError
	require.True(t, errors.As(chained, &layered))
	assert.Equal(t, 3, layered.Data()["index"])
}

func TestLayeredError_WithDataDoesNotShareMap(t *testing.T) {
	base := New(20, 2, "comparator", "k", "m")
	a := base.WithData("index", 1)
	b := a.WithFields(map[string]any{"length": 4})

	assert.Empty(t, base.Data())
	assert.Len(t, a.Data(), 1)
	assert.Len(t, b.Data(), 2)
}

func TestLayeredError_WithMsgf(t *testing.T) {
	err := New(20, 2, "comparator", "k", "m").WithMsgf("index %d outside [0, %d]", 7, 3)
	assert.Equal(t, "index 7 outside [0, 3]", err.Error())
	assert.Contains(t, err.String(), "code:200002")
}
