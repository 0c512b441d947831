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

// gridCell locates the lower grid index and fractional offset of a
// position in [0, 1] on an axis with the given number of grid points.
// Out-of-range inputs clamp to the grid boundary.
func gridCell(v float64, gridPoints int) (int, float64) {
	pos := v * float64(gridPoints-1)
	idx := int(pos)
	if idx < 0 {
		return 0, 0
	}
	if idx >= gridPoints-1 {
		return max(gridPoints-2, 0), 1
	}
	return idx, clamp(pos-float64(idx), 0, 1)
}

// tetrahedralInterp3D performs tetrahedral interpolation in a 3D CLUT
// and stores the outChannels results in dst. The input r, g, b values
// are in [0, 1]; out-of-range inputs clamp to the grid boundary. The
// clut contains flattened data with outChannels values per grid point;
// gridSize is the number of grid points per dimension.
func tetrahedralInterp3D(dst, clut []float64, gridSize int, outChannels int, r, g, b float64) {
	if gridSize < 2 {
		for i := range outChannels {
			if i < len(clut) {
				dst[i] = clut[i]
			} else {
				dst[i] = 0
			}
		}
		return
	}

	ri, fr := gridCell(r, gridSize)
	gi, fg := gridCell(g, gridSize)
	bi, fb := gridCell(b, gridSize)

	stride := outChannels
	gStride := gridSize * stride
	rStride := gridSize * gStride

	base := ri*rStride + gi*gStride + bi*stride

	// the 8 corners of the enclosing cube
	c000 := base
	c001 := base + stride
	c010 := base + gStride
	c011 := base + gStride + stride
	c100 := base + rStride
	c101 := base + rStride + stride
	c110 := base + rStride + gStride
	c111 := base + rStride + gStride + stride

	// select the tetrahedron based on which fractional component is largest
	if fr > fg {
		if fg > fb {
			// fr > fg > fb
			for i := range outChannels {
				dst[i] = (1-fr)*clut[c000+i] +
					(fr-fg)*clut[c100+i] +
					(fg-fb)*clut[c110+i] +
					fb*clut[c111+i]
			}
		} else if fr > fb {
			// fr > fb >= fg
			for i := range outChannels {
				dst[i] = (1-fr)*clut[c000+i] +
					(fr-fb)*clut[c100+i] +
					(fb-fg)*clut[c101+i] +
					fg*clut[c111+i]
			}
		} else {
			// fb >= fr > fg
			for i := range outChannels {
				dst[i] = (1-fb)*clut[c000+i] +
					(fb-fr)*clut[c001+i] +
					(fr-fg)*clut[c101+i] +
					fg*clut[c111+i]
			}
		}
	} else {
		if fr > fb {
			// fg >= fr > fb
			for i := range outChannels {
				dst[i] = (1-fg)*clut[c000+i] +
					(fg-fr)*clut[c010+i] +
					(fr-fb)*clut[c110+i] +
					fb*clut[c111+i]
			}
		} else if fg > fb {
			// fg > fb >= fr
			for i := range outChannels {
				dst[i] = (1-fg)*clut[c000+i] +
					(fg-fb)*clut[c010+i] +
					(fb-fr)*clut[c011+i] +
					fr*clut[c111+i]
			}
		} else {
			// fb >= fg >= fr
			for i := range outChannels {
				dst[i] = (1-fb)*clut[c000+i] +
					(fb-fg)*clut[c001+i] +
					(fg-fr)*clut[c011+i] +
					fr*clut[c111+i]
			}
		}
	}
}

// trilinearInterp3D performs trilinear interpolation in a 3D CLUT and
// stores the outChannels results in dst. Inputs outside [0, 1] clamp to
// the grid boundary.
func trilinearInterp3D(dst, clut []float64, gridSize int, outChannels int, r, g, b float64) {
	if gridSize < 2 {
		for i := range outChannels {
			if i < len(clut) {
				dst[i] = clut[i]
			} else {
				dst[i] = 0
			}
		}
		return
	}

	ri, fr := gridCell(r, gridSize)
	gi, fg := gridCell(g, gridSize)
	bi, fb := gridCell(b, gridSize)

	stride := outChannels
	gStride := gridSize * stride
	rStride := gridSize * gStride

	base := ri*rStride + gi*gStride + bi*stride

	for i := range outChannels {
		c00 := clut[base+i]*(1-fb) + clut[base+stride+i]*fb
		c01 := clut[base+gStride+i]*(1-fb) + clut[base+gStride+stride+i]*fb
		c10 := clut[base+rStride+i]*(1-fb) + clut[base+rStride+stride+i]*fb
		c11 := clut[base+rStride+gStride+i]*(1-fb) + clut[base+rStride+gStride+stride+i]*fb

		c0 := c00*(1-fg) + c01*fg
		c1 := c10*(1-fg) + c11*fg
		dst[i] = c0*(1-fr) + c1*fr
	}
}

// interpScratch holds the per-dimension work arrays for multilinear
// interpolation, pre-allocated so that lookups do not allocate.
type interpScratch struct {
	strides []int
	indices []int
	fracs   []float64
}

func newInterpScratch(gridPoints []int, outChannels int) *interpScratch {
	nDims := len(gridPoints)
	s := &interpScratch{
		strides: make([]int, nDims),
		indices: make([]int, nDims),
		fracs:   make([]float64, nDims),
	}
	stride := outChannels
	for i := nDims - 1; i >= 0; i-- {
		s.strides[i] = stride
		stride *= gridPoints[i]
	}
	return s
}

// multilinearInterp performs n-dimensional linear interpolation and
// stores the outChannels results in dst. gridPoints contains the grid
// size for each dimension; scratch must have been created for the same
// grid via newInterpScratch.
func multilinearInterp(dst, clut []float64, gridPoints []int, scratch *interpScratch, outChannels int, input []float64) {
	nDims := len(gridPoints)
	for i := range dst[:outChannels] {
		dst[i] = 0
	}
	if nDims == 0 || len(input) != nDims {
		return
	}

	baseOffset := 0
	for i := range nDims {
		idx, frac := gridCell(input[i], gridPoints[i])
		scratch.indices[i] = idx
		scratch.fracs[i] = frac
		baseOffset += idx * scratch.strides[i]
	}

	// accumulate over the 2^nDims corners
	numCorners := 1 << nDims
	for corner := range numCorners {
		offset := 0
		weight := 1.0
		for d := range nDims {
			if corner&(1<<d) != 0 {
				offset += scratch.strides[d]
				weight *= scratch.fracs[d]
			} else {
				weight *= 1 - scratch.fracs[d]
			}
		}

		for i := range outChannels {
			idx := baseOffset + offset + i
			if idx < len(clut) {
				dst[i] += weight * clut[idx]
			}
		}
	}
}
