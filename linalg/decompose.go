package linalg

import "math"

// diagonalEpsilon is the off-diagonal magnitude below which the stretch
// factor of a polar decomposition is treated as already diagonal.
const diagonalEpsilon = 1e-6

// PolarDecompose factors m into a rotation r and a symmetric stretch s
// such that m = r * s.
//
// The rotation is found in closed form from x = m00 + m11 and
// y = m10 - m01. When both are zero (the zero matrix, or a reflection
// symmetric enough that no rotation is preferred) the rotation is
// undefined and the identity is returned, leaving s = m.
func PolarDecompose(m Mat2) (r, s Mat2) {
	x := m.A + m.D
	y := m.C - m.B

	norm := math.Hypot(float64(x), float64(y))
	if norm == 0 {
		return Identity(), m
	}

	c := float32(float64(x) / norm)
	sn := float32(float64(y) / norm)
	r = Mat2{
		A: c, B: -sn,
		C: sn, D: c,
	}
	return r, r.Transpose().Mul(m)
}

// SVD computes the singular value decomposition m = u * sig * vᵗ.
//
// sig is diagonal with sig00 >= sig11. When det(m) < 0 the smaller entry
// is negative: u and v are always rotations, the reflection lives in sig.
func SVD(m Mat2) (u, sig, v Mat2) {
	r, s := PolarDecompose(m)

	// Jacobi rotation (c, sn) diagonalizing the symmetric stretch.
	var c, sn float32
	off := s.B

	if abs32(off) < diagonalEpsilon {
		sig = Diag(s.A, s.D)
		c, sn = 1, 0
	} else {
		tao := 0.5 * (s.A - s.D)
		w := sqrt32(tao*tao + off*off)

		var t float32
		if tao > 0 {
			t = off / (tao + w)
		} else {
			t = off / (tao - w)
		}

		c = 1 / sqrt32(t*t+1)
		sn = -t * c
		sig = Diag(
			c*c*s.A-2*c*sn*off+sn*sn*s.D,
			sn*sn*s.A+2*c*sn*off+c*c*s.D,
		)
	}

	if sig.A < sig.D {
		sig = Diag(sig.D, sig.A)
		v = Mat2{
			A: -sn, B: c,
			C: -c, D: -sn,
		}
	} else {
		v = Mat2{
			A: c, B: sn,
			C: -sn, D: c,
		}
	}

	return r.Mul(v), sig, v
}

// Compose returns u * sig * vᵗ.
func Compose(u, sig, v Mat2) Mat2 {
	return u.Mul(sig).Mul(v.Transpose())
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func sqrt32(f float32) float32 {
	return float32(math.Sqrt(float64(f)))
}
