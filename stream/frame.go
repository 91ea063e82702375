// Package stream publishes simulation frames to websocket clients and
// accepts simple control commands back.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/snowfall/mpm"
)

// Frame layout, little-endian:
//
//	magic  [4]byte "SNOW"
//	step   uint64
//	count  uint32  particles
//	data   count × (x, y, tag) float32
//
// The tag float carries the particle's packed 0xRRGGBB colour bits.
const (
	frameMagic  = "SNOW"
	headerSize  = 4 + 8 + 4
	vertexBytes = mpm.VertexStride * 4
)

// ErrBadFrame is returned by DecodeFrame for malformed input.
var ErrBadFrame = errors.New("stream: malformed frame")

// EncodeFrame encodes vertex data produced by mpm.Sim.AppendVertexData.
func EncodeFrame(step uint64, vertices []float32) []byte {
	return AppendFrame(nil, step, vertices)
}

// AppendFrame appends the encoded frame to dst.
func AppendFrame(dst []byte, step uint64, vertices []float32) []byte {
	count := len(vertices) / mpm.VertexStride

	dst = append(dst, frameMagic...)
	dst = binary.LittleEndian.AppendUint64(dst, step)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(count))
	for _, v := range vertices[:count*mpm.VertexStride] {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// DecodeFrame parses a frame produced by EncodeFrame.
func DecodeFrame(data []byte) (step uint64, vertices []float32, err error) {
	if len(data) < headerSize || string(data[:4]) != frameMagic {
		return 0, nil, fmt.Errorf("%w: missing header", ErrBadFrame)
	}
	step = binary.LittleEndian.Uint64(data[4:12])
	count := int(binary.LittleEndian.Uint32(data[12:16]))

	body := data[headerSize:]
	if len(body) != count*vertexBytes {
		return 0, nil, fmt.Errorf("%w: %d particles need %d bytes, got %d", ErrBadFrame, count, count*vertexBytes, len(body))
	}

	vertices = make([]float32, count*mpm.VertexStride)
	for i := range vertices {
		vertices[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))
	}
	return step, vertices, nil
}
