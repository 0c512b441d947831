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

import (
	"fmt"
	"math"
)

// Primitive is a registered conversion between two colour space kinds.
//
// Convert transforms the channel values in src into dst. It must not
// allocate; all derived constants (matrices, curves) are computed by
// Prepare at converter construction time and stored in the stage data.
// dst and src are distinct slices sized for the To and From kinds.
type Primitive struct {
	// Name identifies the primitive within its (From, To) key.
	Name string

	From, To ColorSpace

	// Prepare, if non-nil, derives per-stage constants from the stage's
	// source and destination spaces. It runs once per converter.
	Prepare func(st *stageData) error

	// Convert executes the conversion.
	Convert func(dst, src []float64, st *stageData)
}

// builtinPrimitives returns the primitive transforms registered by [Init].
func builtinPrimitives() []Primitive {
	return []Primitive{
		{Name: "xyz-lab", From: CIEXYZSpace, To: CIELabSpace, Convert: xyzToLabStage},
		{Name: "lab-xyz", From: CIELabSpace, To: CIEXYZSpace, Convert: labToXYZStage},
		{Name: "lab-lch", From: CIELabSpace, To: LChabSpace, Convert: toPolarStage},
		{Name: "lch-lab", From: LChabSpace, To: CIELabSpace, Convert: fromPolarStage},
		{Name: "xyz-luv", From: CIEXYZSpace, To: CIELuvSpace, Convert: xyzToLuvStage},
		{Name: "luv-xyz", From: CIELuvSpace, To: CIEXYZSpace, Convert: luvToXYZStage},
		{Name: "luv-lchuv", From: CIELuvSpace, To: LChuvSpace, Convert: toPolarStage},
		{Name: "lchuv-luv", From: LChuvSpace, To: CIELuvSpace, Convert: fromPolarStage},
		{Name: "xyz-xyy", From: CIEXYZSpace, To: CIEYxySpace, Convert: xyzToxyYStage},
		{Name: "xyy-xyz", From: CIEYxySpace, To: CIEXYZSpace, Convert: xyYToXYZStage},
		{Name: "rgb-xyz", From: RGBSpace, To: CIEXYZSpace, Prepare: prepareRGBToXYZ, Convert: rgbToXYZStage},
		{Name: "xyz-rgb", From: CIEXYZSpace, To: RGBSpace, Prepare: prepareXYZToRGB, Convert: xyzToRGBStage},
		{Name: "rgb-hsv", From: RGBSpace, To: HSVSpace, Convert: rgbToHSVStage},
		{Name: "hsv-rgb", From: HSVSpace, To: RGBSpace, Convert: hsvToRGBStage},
		{Name: "rgb-hsl", From: RGBSpace, To: HLSSpace, Convert: rgbToHSLStage},
		{Name: "hsl-rgb", From: HLSSpace, To: RGBSpace, Convert: hslToRGBStage},
		{Name: "rgb-ycbcr", From: RGBSpace, To: YCbCrSpace, Convert: rgbToYCbCrStage},
		{Name: "ycbcr-rgb", From: YCbCrSpace, To: RGBSpace, Convert: yCbCrToRGBStage},
		{Name: "rgb-cmy", From: RGBSpace, To: CMYSpace, Convert: rgbToCMYStage},
		{Name: "cmy-rgb", From: CMYSpace, To: RGBSpace, Convert: cmyToRGBStage},
		{Name: "cmy-cmyk", From: CMYSpace, To: CMYKSpace, Convert: cmyToCMYKStage},
		{Name: "cmyk-cmy", From: CMYKSpace, To: CMYSpace, Convert: cmykToCMYStage},
		{Name: "gray-xyz", From: GraySpace, To: CIEXYZSpace, Convert: grayToXYZStage},
		{Name: "xyz-gray", From: CIEXYZSpace, To: GraySpace, Convert: xyzToGrayStage},
	}
}

// CIE 1976 f function and its inverse. The linear-segment constants are
// the exact rationals from the standard: delta = 6/29.
const (
	labEps   = 216.0 / 24389.0 // (6/29)^3
	labKappa = 841.0 / 108.0   // (29/6)^2 / 3
	labOff   = 4.0 / 29.0
)

func labF(t float64) float64 {
	if t > labEps {
		return math.Cbrt(t)
	}
	return t*labKappa + labOff
}

func labFInv(t float64) float64 {
	if t > 6.0/29.0 {
		return t * t * t
	}
	return (t - labOff) / labKappa
}

// xyzToLab converts XYZ to L*a*b* relative to the given white.
// dst and src may alias.
func xyzToLab(dst, src []float64, white [3]float64) {
	fx := labF(src[0] / white[0])
	fy := labF(src[1] / white[1])
	fz := labF(src[2] / white[2])

	dst[0] = 116*fy - 16
	dst[1] = 500 * (fx - fy)
	dst[2] = 200 * (fy - fz)
}

// labToXYZ converts L*a*b* to XYZ relative to the given white.
// dst and src may alias.
func labToXYZ(dst, src []float64, white [3]float64) {
	fy := (src[0] + 16) / 116
	fx := src[1]/500 + fy
	fz := fy - src[2]/200

	dst[0] = labFInv(fx) * white[0]
	dst[1] = labFInv(fy) * white[1]
	dst[2] = labFInv(fz) * white[2]
}

func xyzToLabStage(dst, src []float64, st *stageData) {
	xyzToLab(dst, src, st.to.WhitePoint)
}

func labToXYZStage(dst, src []float64, st *stageData) {
	labToXYZ(dst, src, st.from.WhitePoint)
}

// toPolarStage converts (L, a, b) to (L, C, h) with h in degrees in
// [0, 360). The same maths serves Lab->LCh(ab) and Luv->LCh(uv).
func toPolarStage(dst, src []float64, st *stageData) {
	l, a, b := src[0], src[1], src[2]
	dst[0] = l
	dst[1] = math.Hypot(a, b)
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	dst[2] = h
}

func fromPolarStage(dst, src []float64, st *stageData) {
	l, c, h := src[0], src[1], src[2]
	rad := h * math.Pi / 180
	dst[0] = l
	dst[1] = c * math.Cos(rad)
	dst[2] = c * math.Sin(rad)
}

// uvPrime returns the u', v' chromaticity coordinates of an XYZ triple.
func uvPrime(x, y, z float64) (float64, float64) {
	d := x + 15*y + 3*z
	if d == 0 {
		return 0, 0
	}
	return 4 * x / d, 9 * y / d
}

func xyzToLuvStage(dst, src []float64, st *stageData) {
	white := st.to.WhitePoint
	yr := src[1] / white[1]

	var l float64
	if yr > labEps {
		l = 116*math.Cbrt(yr) - 16
	} else {
		l = 24389.0 / 27.0 * yr
	}

	u, v := uvPrime(src[0], src[1], src[2])
	un, vn := uvPrime(white[0], white[1], white[2])

	dst[0] = l
	dst[1] = 13 * l * (u - un)
	dst[2] = 13 * l * (v - vn)
}

func luvToXYZStage(dst, src []float64, st *stageData) {
	white := st.from.WhitePoint
	l, u, v := src[0], src[1], src[2]
	if l <= 0 {
		dst[0], dst[1], dst[2] = 0, 0, 0
		return
	}

	un, vn := uvPrime(white[0], white[1], white[2])
	up := u/(13*l) + un
	vp := v/(13*l) + vn

	var y float64
	if l > 8 {
		t := (l + 16) / 116
		y = white[1] * t * t * t
	} else {
		y = white[1] * l * 27.0 / 24389.0
	}

	if vp == 0 {
		dst[0], dst[1], dst[2] = 0, y, 0
		return
	}
	dst[0] = y * 9 * up / (4 * vp)
	dst[1] = y
	dst[2] = y * (12 - 3*up - 20*vp) / (4 * vp)
}

func xyzToxyYStage(dst, src []float64, st *stageData) {
	x, y, z := src[0], src[1], src[2]
	sum := x + y + z
	if sum == 0 {
		// black carries the white point's chromaticity
		w := st.from.WhitePoint
		wsum := w[0] + w[1] + w[2]
		dst[0] = w[0] / wsum
		dst[1] = w[1] / wsum
		dst[2] = 0
		return
	}
	dst[0] = x / sum
	dst[1] = y / sum
	dst[2] = y
}

func xyYToXYZStage(dst, src []float64, st *stageData) {
	xc, yc, yy := src[0], src[1], src[2]
	if yc == 0 {
		dst[0], dst[1], dst[2] = 0, 0, 0
		return
	}
	dst[0] = xc * yy / yc
	dst[1] = yy
	dst[2] = (1 - xc - yc) * yy / yc
}

// prepareRGBToXYZ stores the linear-RGB to XYZ matrix for the source
// RGB space.
func prepareRGBToXYZ(st *stageData) error {
	m := rgbToXYZMatrix(st.from)
	if m == nil {
		return fmt.Errorf("%w: degenerate RGB primaries", ErrNoConversion)
	}
	st.matrix = m
	return nil
}

func rgbToXYZStage(dst, src []float64, st *stageData) {
	trc := rgbParamsOrSRGB(st.from).TRC
	dst[0] = trc.Evaluate(src[0])
	dst[1] = trc.Evaluate(src[1])
	dst[2] = trc.Evaluate(src[2])
	transform3(dst, st.matrix, dst)
}

func prepareXYZToRGB(st *stageData) error {
	m := rgbToXYZMatrix(st.to)
	if m != nil {
		m = invertMatrix3x3(m)
	}
	if m == nil {
		return fmt.Errorf("%w: degenerate RGB primaries", ErrNoConversion)
	}
	st.matrix = m
	return nil
}

func xyzToRGBStage(dst, src []float64, st *stageData) {
	transform3(dst, st.matrix, src)
	trc := rgbParamsOrSRGB(st.to).TRC
	dst[0] = trc.Invert(dst[0])
	dst[1] = trc.Invert(dst[1])
	dst[2] = trc.Invert(dst[2])
}

func rgbToHSVStage(dst, src []float64, st *stageData) {
	r, g, b := src[0], src[1], src[2]
	v := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	c := v - mn

	dst[0] = hueOf(r, g, b, v, c)
	if v == 0 {
		dst[1] = 0
	} else {
		dst[1] = c / v
	}
	dst[2] = v
}

func hsvToRGBStage(dst, src []float64, st *stageData) {
	h, s, v := src[0], src[1], src[2]
	c := v * s
	hueToRGB(dst, h, c, v-c)
}

func rgbToHSLStage(dst, src []float64, st *stageData) {
	r, g, b := src[0], src[1], src[2]
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	c := mx - mn
	l := (mx + mn) / 2

	dst[0] = hueOf(r, g, b, mx, c)
	if c == 0 {
		dst[1] = 0
	} else {
		dst[1] = c / (1 - math.Abs(2*l-1))
	}
	dst[2] = l
}

func hslToRGBStage(dst, src []float64, st *stageData) {
	h, s, l := src[0], src[1], src[2]
	c := (1 - math.Abs(2*l-1)) * s
	hueToRGB(dst, h, c, l-c/2)
}

// hueOf computes the hue in degrees from RGB values, their maximum and
// the chroma.
func hueOf(r, g, b, mx, c float64) float64 {
	if c == 0 {
		return 0
	}
	var h float64
	switch mx {
	case r:
		h = math.Mod((g-b)/c, 6)
	case g:
		h = (b-r)/c + 2
	default:
		h = (r-g)/c + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

// hueToRGB reconstructs RGB from hue (degrees), chroma and the additive
// lightness offset.
func hueToRGB(dst []float64, h, c, m float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 60
	x := c * (1 - math.Abs(math.Mod(h, 2)-1))

	var r, g, b float64
	switch {
	case h < 1:
		r, g, b = c, x, 0
	case h < 2:
		r, g, b = x, c, 0
	case h < 3:
		r, g, b = 0, c, x
	case h < 4:
		r, g, b = 0, x, c
	case h < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	dst[0] = r + m
	dst[1] = g + m
	dst[2] = b + m
}

// lumaCoefficients returns the Kr, Kb luma weights for a YCbCr space.
func lumaCoefficients(s *Space) (kr, kb float64) {
	if s != nil && s.YCbCr == YCbCrRec709 {
		return 0.2126, 0.0722
	}
	return 0.299, 0.114 // Rec.601
}

func rgbToYCbCrStage(dst, src []float64, st *stageData) {
	kr, kb := lumaCoefficients(st.to)
	kg := 1 - kr - kb
	r, g, b := src[0], src[1], src[2]

	y := kr*r + kg*g + kb*b
	dst[0] = y
	dst[1] = (b - y) / (2 * (1 - kb))
	dst[2] = (r - y) / (2 * (1 - kr))
}

func yCbCrToRGBStage(dst, src []float64, st *stageData) {
	kr, kb := lumaCoefficients(st.from)
	kg := 1 - kr - kb
	y, cb, cr := src[0], src[1], src[2]

	r := y + 2*(1-kr)*cr
	b := y + 2*(1-kb)*cb
	dst[0] = r
	dst[1] = (y - kr*r - kb*b) / kg
	dst[2] = b
}

func rgbToCMYStage(dst, src []float64, st *stageData) {
	dst[0] = 1 - src[0]
	dst[1] = 1 - src[1]
	dst[2] = 1 - src[2]
}

func cmyToRGBStage(dst, src []float64, st *stageData) {
	dst[0] = 1 - src[0]
	dst[1] = 1 - src[1]
	dst[2] = 1 - src[2]
}

// cmyToCMYKStage extracts the maximum common black component.
func cmyToCMYKStage(dst, src []float64, st *stageData) {
	c, m, y := src[0], src[1], src[2]
	k := math.Min(c, math.Min(m, y))
	if k >= 1 {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 1
		return
	}
	dst[0] = (c - k) / (1 - k)
	dst[1] = (m - k) / (1 - k)
	dst[2] = (y - k) / (1 - k)
	dst[3] = k
}

func cmykToCMYStage(dst, src []float64, st *stageData) {
	c, m, y, k := src[0], src[1], src[2], src[3]
	dst[0] = c*(1-k) + k
	dst[1] = m*(1-k) + k
	dst[2] = y*(1-k) + k
}

// grayToXYZStage treats gray as linear luminance and scales the
// reference white.
func grayToXYZStage(dst, src []float64, st *stageData) {
	white := st.from.WhitePoint
	dst[0] = white[0] * src[0]
	dst[1] = white[1] * src[0]
	dst[2] = white[2] * src[0]
}

func xyzToGrayStage(dst, src []float64, st *stageData) {
	dst[0] = src[1] / st.to.WhitePoint[1]
}
