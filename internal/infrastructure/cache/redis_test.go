package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobDigest_Deterministic(t *testing.T) {
	input := map[string]any{"package_name": "com.example.app", "n": 3}

	a, err := JobDigest(input)
	require.NoError(t, err)
	b, err := JobDigest(input)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "hex-encoded sha256")
}

func TestJobDigest_DistinguishesInputs(t *testing.T) {
	a, err := JobDigest(map[string]any{"package_name": "com.example.app"})
	require.NoError(t, err)
	b, err := JobDigest(map[string]any{"package_name": "com.example.other"})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestJobDigest_RejectsUnmarshalable(t *testing.T) {
	_, err := JobDigest(make(chan int))
	assert.Error(t, err)
}
