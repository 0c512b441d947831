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

// Standard reference whites (CIE XYZ, normalised so Y = 1).
var (
	// D50 is the CIE standard illuminant D50.
	D50 = [3]float64{0.96422, 1.0, 0.82521}

	// D65 is the CIE standard illuminant D65.
	D65 = [3]float64{0.95047, 1.0, 1.08883}

	// IlluminantE is the equal-energy illuminant.
	IlluminantE = [3]float64{1.0, 1.0, 1.0}
)

// pcsWhitePoint is the D50 white point as quantised by the ICC
// specification for the profile connection space.
var pcsWhitePoint = [3]float64{0.9642, 1.0, 0.8249}

// YCbCrVariant selects the luma coefficients for YCbCr conversions.
type YCbCrVariant int

const (
	// YCbCrRec601 uses the ITU-R BT.601 luma coefficients.
	YCbCrRec601 YCbCrVariant = iota

	// YCbCrRec709 uses the ITU-R BT.709 luma coefficients.
	YCbCrRec709
)

// RGBParams describes an RGB colour space: the xy chromaticities of its
// primaries and the tone reproduction curve that maps encoded channel
// values to linear light. The curve is shared by all three channels.
type RGBParams struct {
	Red, Green, Blue [2]float64 // xy chromaticities
	TRC              *Curve     // encoded -> linear
}

// Space describes the colour space a [Color] is expressed in.
//
// Kind and WhitePoint are always meaningful. RGB is set for RGBSpace and
// for the RGB-derived kinds (HSV, HLS, YCbCr, CMY, CMYK); Profile is set
// for ICC-backed spaces; YCbCr selects the luma coefficients for
// YCbCrSpace.
//
// Spaces are treated as immutable once a Color uses them; the preset
// variables ([SRGB], [AdobeRGB], ...) must not be modified.
type Space struct {
	Kind       ColorSpace
	WhitePoint [3]float64

	RGB     *RGBParams
	Profile *Profile
	YCbCr   YCbCrVariant

	// Adaptation optionally overrides the process-wide default
	// chromatic adaptation method for conversions involving this space.
	Adaptation AdaptationMethod
}

// RGB colour space presets.
var (
	// SRGB is the IEC 61966-2-1 sRGB colour space (D65).
	SRGB = &Space{
		Kind:       RGBSpace,
		WhitePoint: D65,
		RGB: &RGBParams{
			Red:   [2]float64{0.6400, 0.3300},
			Green: [2]float64{0.3000, 0.6000},
			Blue:  [2]float64{0.1500, 0.0600},
			TRC: &Curve{
				FuncType: 3,
				Params:   []float64{2.4, 1 / 1.055, 0.055 / 1.055, 1 / 12.92, 0.04045},
			},
		},
	}

	// AdobeRGB is the Adobe RGB (1998) colour space (D65). The gamma
	// value 563/256 is the exact one given in the Adobe specification.
	AdobeRGB = &Space{
		Kind:       RGBSpace,
		WhitePoint: D65,
		RGB: &RGBParams{
			Red:   [2]float64{0.6400, 0.3300},
			Green: [2]float64{0.2100, 0.7100},
			Blue:  [2]float64{0.1500, 0.0600},
			TRC:   &Curve{Gamma: 563.0 / 256.0},
		},
	}

	// ProPhotoRGB is the ROMM RGB colour space (D50).
	ProPhotoRGB = &Space{
		Kind:       RGBSpace,
		WhitePoint: D50,
		RGB: &RGBParams{
			Red:   [2]float64{0.7347, 0.2653},
			Green: [2]float64{0.1596, 0.8404},
			Blue:  [2]float64{0.0366, 0.0001},
			TRC: &Curve{
				FuncType: 3,
				Params:   []float64{1.8, 1, 0, 1.0 / 16, 0.031248},
			},
		},
	}

	// Rec709 is the ITU-R BT.709 colour space (D65).
	Rec709 = &Space{
		Kind:       RGBSpace,
		WhitePoint: D65,
		RGB: &RGBParams{
			Red:   [2]float64{0.6400, 0.3300},
			Green: [2]float64{0.3000, 0.6000},
			Blue:  [2]float64{0.1500, 0.0600},
			TRC: &Curve{
				FuncType: 3,
				Params:   []float64{1 / 0.45, 1 / 1.099, 0.099 / 1.099, 1 / 4.5, 0.081},
			},
		},
	}

	// Rec2020 is the ITU-R BT.2020 colour space (D65).
	Rec2020 = &Space{
		Kind:       RGBSpace,
		WhitePoint: D65,
		RGB: &RGBParams{
			Red:   [2]float64{0.7080, 0.2920},
			Green: [2]float64{0.1700, 0.7970},
			Blue:  [2]float64{0.1310, 0.0460},
			TRC: &Curve{
				FuncType: 3,
				Params:   []float64{1 / 0.45, 1 / 1.0993, 0.0993 / 1.0993, 1 / 4.5, 0.08145},
			},
		},
	}
)

// NewXYZSpace returns a CIE XYZ space with the given reference white.
func NewXYZSpace(white [3]float64) *Space {
	return &Space{Kind: CIEXYZSpace, WhitePoint: white}
}

// NewLabSpace returns a CIE L*a*b* space with the given reference white.
func NewLabSpace(white [3]float64) *Space {
	return &Space{Kind: CIELabSpace, WhitePoint: white}
}

// NewLuvSpace returns a CIE L*u*v* space with the given reference white.
func NewLuvSpace(white [3]float64) *Space {
	return &Space{Kind: CIELuvSpace, WhitePoint: white}
}

// NewLChSpace returns the cylindrical form of CIE L*a*b*.
func NewLChSpace(white [3]float64) *Space {
	return &Space{Kind: LChabSpace, WhitePoint: white}
}

// NewLChuvSpace returns the cylindrical form of CIE L*u*v*.
func NewLChuvSpace(white [3]float64) *Space {
	return &Space{Kind: LChuvSpace, WhitePoint: white}
}

// NewxyYSpace returns a CIE xyY space with the given reference white.
func NewxyYSpace(white [3]float64) *Space {
	return &Space{Kind: CIEYxySpace, WhitePoint: white}
}

// NewGraySpace returns a single-channel gray space with the given
// reference white. Gray values are linear luminance in [0, 1].
func NewGraySpace(white [3]float64) *Space {
	return &Space{Kind: GraySpace, WhitePoint: white}
}

// NewRGBSpace returns an RGB space with user-defined primaries,
// reference white and transfer curve.
func NewRGBSpace(white [3]float64, red, green, blue [2]float64, trc *Curve) *Space {
	return &Space{
		Kind:       RGBSpace,
		WhitePoint: white,
		RGB:        &RGBParams{Red: red, Green: green, Blue: blue, TRC: trc},
	}
}

// NewHSVSpace returns an HSV space derived from the given RGB space.
func NewHSVSpace(rgb *Space) *Space {
	return &Space{Kind: HSVSpace, WhitePoint: rgb.WhitePoint, RGB: rgb.RGB}
}

// NewHSLSpace returns an HSL space derived from the given RGB space.
func NewHSLSpace(rgb *Space) *Space {
	return &Space{Kind: HLSSpace, WhitePoint: rgb.WhitePoint, RGB: rgb.RGB}
}

// NewYCbCrSpace returns a YCbCr space derived from the given RGB space.
func NewYCbCrSpace(rgb *Space, variant YCbCrVariant) *Space {
	return &Space{Kind: YCbCrSpace, WhitePoint: rgb.WhitePoint, RGB: rgb.RGB, YCbCr: variant}
}

// NewCMYKSpace returns a naive CMYK space derived from the given RGB space.
func NewCMYKSpace(rgb *Space) *Space {
	return &Space{Kind: CMYKSpace, WhitePoint: rgb.WhitePoint, RGB: rgb.RGB}
}

// rgbToXYZMatrix builds the 3x3 matrix taking linear RGB to CIE XYZ
// under the space's own reference white: the absolute primaries matrix
// is evaluated against the white point to obtain the channel scaling
// coefficients.
func rgbToXYZMatrix(s *Space) []float64 {
	if s.RGB == nil {
		return nil
	}
	xr, yr := s.RGB.Red[0], s.RGB.Red[1]
	xg, yg := s.RGB.Green[0], s.RGB.Green[1]
	xb, yb := s.RGB.Blue[0], s.RGB.Blue[1]

	prim := []float64{
		xr / yr, xg / yg, xb / yb,
		1, 1, 1,
		(1 - xr - yr) / yr, (1 - xg - yg) / yg, (1 - xb - yb) / yb,
	}
	inv := invertMatrix3x3(prim)
	if inv == nil {
		return nil
	}

	w := s.WhitePoint
	var coef [3]float64
	for i := range 3 {
		coef[i] = inv[i*3]*w[0] + inv[i*3+1]*w[1] + inv[i*3+2]*w[2]
	}

	m := make([]float64, 9)
	for i := range 3 {
		for j := range 3 {
			m[i*3+j] = prim[i*3+j] * coef[j]
		}
	}
	return m
}

// sameWhitePoint reports whether two reference whites are equal for
// planning purposes.
func sameWhitePoint(a, b [3]float64) bool {
	const eps = 1e-6
	return math.Abs(a[0]-b[0]) < eps &&
		math.Abs(a[1]-b[1]) < eps &&
		math.Abs(a[2]-b[2]) < eps
}

// equivalentTo reports whether a conversion between the two spaces is
// the identity.
func (s *Space) equivalentTo(o *Space) bool {
	if s == o {
		return true
	}
	if s.Kind != o.Kind || !sameWhitePoint(s.WhitePoint, o.WhitePoint) {
		return false
	}
	if s.Profile != nil || o.Profile != nil {
		return s.Profile == o.Profile
	}
	if (s.RGB == nil) != (o.RGB == nil) {
		return false
	}
	if s.RGB != nil && *s.RGB != *o.RGB {
		return false
	}
	if s.Kind == YCbCrSpace && s.YCbCr != o.YCbCr {
		return false
	}
	return true
}

// rgbParamsOrSRGB returns the space's RGB parameters, falling back to
// sRGB for synthesised intermediate spaces.
func rgbParamsOrSRGB(s *Space) *RGBParams {
	if s != nil && s.RGB != nil {
		return s.RGB
	}
	return SRGB.RGB
}
