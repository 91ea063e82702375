package stream

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrameLayout(t *testing.T) {
	data := EncodeFrame(0x0102030405060708, []float32{0.5, 0.25, 1})

	require.Len(t, data, headerSize+vertexBytes)
	assert.Equal(t, "SNOW", string(data[:4]))
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, data[4:12], "step is little-endian")
	assert.Equal(t, []byte{1, 0, 0, 0}, data[12:16], "one particle")
	assert.Equal(t, []byte{0, 0, 0, 0x3f}, data[16:20], "0.5 as float32")
}

func TestDecodeFrame(t *testing.T) {
	vertices := []float32{0.1, 0.2, 3, 0.4, 0.5, 6}

	step, got, err := DecodeFrame(EncodeFrame(42, vertices))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), step)
	assert.Equal(t, vertices, got)
}

func TestEncodeFrameDropsPartialVertex(t *testing.T) {
	_, got, err := DecodeFrame(EncodeFrame(1, []float32{1, 2, 3, 4}))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, got)
}

func TestDecodeFrameErrors(t *testing.T) {
	good := EncodeFrame(1, []float32{1, 2, 3})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", good[:10]},
		{"bad magic", append([]byte("SLUSH"), good[5:]...)},
		{"truncated body", good[:len(good)-1]},
		{"trailing bytes", append(append([]byte(nil), good...), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeFrame(tt.data)
			assert.True(t, errors.Is(err, ErrBadFrame), "got %v", err)
		})
	}
}
