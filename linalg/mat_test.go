package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat2Mul(t *testing.T) {
	a := Mat2{A: 1, B: 2, C: 3, D: 4}
	b := Mat2{A: 5, B: 6, C: 7, D: 8}

	assert.Equal(t, Mat2{A: 19, B: 22, C: 43, D: 50}, a.Mul(b))
	assert.Equal(t, a, a.Mul(Identity()))
	assert.Equal(t, V2(5, 11), a.MulVec(V2(1, 2)))
}

func TestMat2Accessors(t *testing.T) {
	m := FromCols(V2(1, 3), V2(2, 4))

	assert.Equal(t, Mat2{A: 1, B: 2, C: 3, D: 4}, m)
	assert.Equal(t, m, FromRows(V2(1, 2), V2(3, 4)))
	assert.Equal(t, V2(2, 4), m.Col(1))
	assert.Equal(t, V2(3, 4), m.Row(1))
	assert.Equal(t, float32(3), m.At(1, 0))
	assert.Equal(t, float32(-2), m.Det())
	assert.Equal(t, Mat2{A: 1, B: 3, C: 2, D: 4}, m.Transpose())
}

func TestMat2ScalarAdds(t *testing.T) {
	m := Mat2{A: 1, B: 2, C: 3, D: 4}

	assert.Equal(t, Mat2{A: 2, B: 3, C: 4, D: 5}, m.AddScalar(1))
	assert.Equal(t, Mat2{A: 2, B: 2, C: 3, D: 5}, m.AddDiagonal(1))
}

func TestOuterColumnConvention(t *testing.T) {
	a := V2(2, 3)
	b := V2(5, 7)
	m := Outer(a, b)

	// Column j is a scaled by b[j].
	assert.Equal(t, a.Scale(b.X), m.Col(0))
	assert.Equal(t, a.Scale(b.Y), m.Col(1))
}

func TestVecFloor(t *testing.T) {
	assert.Equal(t, IVec2{X: 1, Y: -1}, V2(1.7, -0.2).Floor())
	assert.Equal(t, V2(1, -1), IVec2{X: 1, Y: -1}.Vec2())
}

func TestIsFinite(t *testing.T) {
	var zero float32
	nan := zero / zero

	assert.True(t, V2(1, 2).IsFinite())
	assert.False(t, V2(nan, 2).IsFinite())
	assert.False(t, Mat2{A: 1, D: nan}.IsFinite())
}
