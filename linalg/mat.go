package linalg

// Mat2 is a 2x2 float32 matrix stored by rows:
//
//	| A B |
//	| C D |
type Mat2 struct {
	A, B, C, D float32
}

// Identity returns the 2x2 identity matrix.
func Identity() Mat2 {
	return Mat2{A: 1, D: 1}
}

// FromCols builds a matrix from its two columns.
func FromCols(c0, c1 Vec2) Mat2 {
	return Mat2{A: c0.X, B: c1.X, C: c0.Y, D: c1.Y}
}

// FromRows builds a matrix from its two rows.
func FromRows(r0, r1 Vec2) Mat2 {
	return Mat2{A: r0.X, B: r0.Y, C: r1.X, D: r1.Y}
}

// Diag returns the diagonal matrix diag(x, y).
func Diag(x, y float32) Mat2 {
	return Mat2{A: x, D: y}
}

// Outer returns the outer product a * bᵗ. Column j of the result is a * b[j].
func Outer(a, b Vec2) Mat2 {
	return Mat2{
		A: a.X * b.X, B: a.X * b.Y,
		C: a.Y * b.X, D: a.Y * b.Y,
	}
}

// At returns the entry at row r, column c.
func (m Mat2) At(r, c int) float32 {
	switch {
	case r == 0 && c == 0:
		return m.A
	case r == 0 && c == 1:
		return m.B
	case r == 1 && c == 0:
		return m.C
	case r == 1 && c == 1:
		return m.D
	}
	panic("linalg: Mat2 index out of range")
}

// Col returns column i.
func (m Mat2) Col(i int) Vec2 {
	if i == 0 {
		return Vec2{X: m.A, Y: m.C}
	}
	return Vec2{X: m.B, Y: m.D}
}

// Row returns row i.
func (m Mat2) Row(i int) Vec2 {
	if i == 0 {
		return Vec2{X: m.A, Y: m.B}
	}
	return Vec2{X: m.C, Y: m.D}
}

// Add returns m + o.
func (m Mat2) Add(o Mat2) Mat2 {
	return Mat2{A: m.A + o.A, B: m.B + o.B, C: m.C + o.C, D: m.D + o.D}
}

// Sub returns m - o.
func (m Mat2) Sub(o Mat2) Mat2 {
	return Mat2{A: m.A - o.A, B: m.B - o.B, C: m.C - o.C, D: m.D - o.D}
}

// Scale returns m * s.
func (m Mat2) Scale(s float32) Mat2 {
	return Mat2{A: m.A * s, B: m.B * s, C: m.C * s, D: m.D * s}
}

// AddScalar adds s to every entry of m, off-diagonals included.
func (m Mat2) AddScalar(s float32) Mat2 {
	return Mat2{A: m.A + s, B: m.B + s, C: m.C + s, D: m.D + s}
}

// AddDiagonal adds s to the diagonal entries of m.
func (m Mat2) AddDiagonal(s float32) Mat2 {
	return Mat2{A: m.A + s, B: m.B, C: m.C, D: m.D + s}
}

// Mul returns the matrix product m * o.
func (m Mat2) Mul(o Mat2) Mat2 {
	return Mat2{
		A: m.A*o.A + m.B*o.C,
		B: m.A*o.B + m.B*o.D,
		C: m.C*o.A + m.D*o.C,
		D: m.C*o.B + m.D*o.D,
	}
}

// MulVec returns m * v.
func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{X: m.A*v.X + m.B*v.Y, Y: m.C*v.X + m.D*v.Y}
}

// Transpose returns mᵗ.
func (m Mat2) Transpose() Mat2 {
	return Mat2{A: m.A, B: m.C, C: m.B, D: m.D}
}

// Det returns the determinant of m.
func (m Mat2) Det() float32 {
	return m.A*m.D - m.B*m.C
}

// IsFinite reports whether every entry is finite.
func (m Mat2) IsFinite() bool {
	return isFinite(m.A) && isFinite(m.B) && isFinite(m.C) && isFinite(m.D)
}
