// seehuhn.de/go/cms - colour management and conversion
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package cms

import "math"

// invertMatrix3x3 returns the inverse of a 3x3 matrix in row-major
// order, or nil if the matrix is singular.
func invertMatrix3x3(m []float64) []float64 {
	if len(m) != 9 {
		return nil
	}

	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if math.Abs(det) < 1e-12 {
		return nil
	}

	invDet := 1.0 / det

	return []float64{
		(e*i - f*h) * invDet, (c*h - b*i) * invDet, (b*f - c*e) * invDet,
		(f*g - d*i) * invDet, (a*i - c*g) * invDet, (c*d - a*f) * invDet,
		(d*h - e*g) * invDet, (b*g - a*h) * invDet, (a*e - b*d) * invDet,
	}
}

// mulMatrix3x3 returns the product a*b of two 3x3 matrices.
func mulMatrix3x3(a, b []float64) []float64 {
	r := make([]float64, 9)
	for i := range 3 {
		for j := range 3 {
			r[i*3+j] = a[i*3]*b[j] + a[i*3+1]*b[3+j] + a[i*3+2]*b[6+j]
		}
	}
	return r
}

// transform3 applies a 3x3 matrix to the first three entries of src and
// stores the result in dst. dst and src may be the same slice.
func transform3(dst []float64, m []float64, src []float64) {
	x, y, z := src[0], src[1], src[2]
	dst[0] = m[0]*x + m[1]*y + m[2]*z
	dst[1] = m[3]*x + m[4]*y + m[5]*z
	dst[2] = m[6]*x + m[7]*y + m[8]*z
}

// isIdentityMatrix3x3 reports whether m is (close to) the identity.
func isIdentityMatrix3x3(m []float64) bool {
	if len(m) != 9 {
		return false
	}
	for i := range 9 {
		expected := 0.0
		if i%4 == 0 {
			expected = 1.0
		}
		if math.Abs(m[i]-expected) > 1e-6 {
			return false
		}
	}
	return true
}

// isIdentityMatrix3x4 reports whether a 3x4 matrix (3x3 plus offset
// column) is the identity with zero offsets.
func isIdentityMatrix3x4(m []float64) bool {
	if len(m) != 12 {
		return false
	}
	ident := []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	for i := range 9 {
		if math.Abs(m[i]-ident[i]) > 1e-6 {
			return false
		}
	}
	for i := 9; i < 12; i++ {
		if math.Abs(m[i]) > 1e-6 {
			return false
		}
	}
	return true
}
