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
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
)

func TestXYZLabWhitePoint(t *testing.T) {
	var lab [3]float64
	xyzToLab(lab[:], D50[:], D50)
	assert.InDelta(t, 100, lab[0], 1e-10)
	assert.InDelta(t, 0, lab[1], 1e-10)
	assert.InDelta(t, 0, lab[2], 1e-10)
}

func TestXYZLabRoundTrip(t *testing.T) {
	tests := [][3]float64{
		{0.1, 0.1, 0.1},
		{0.2, 0.4, 0.1},
		{0.9, 1.0, 0.8},
		{0.0001, 0.0002, 0.0001},
		{0.5, 0.3, 0.7},
	}

	var lab, back [3]float64
	for _, xyz := range tests {
		xyzToLab(lab[:], xyz[:], D50)
		labToXYZ(back[:], lab[:], D50)
		for i := range 3 {
			if math.Abs(back[i]-xyz[i]) > 1e-10*math.Max(1, math.Abs(xyz[i])) {
				t.Errorf("XYZ round-trip failed: %v -> %v -> %v", xyz, lab, back)
				break
			}
		}
	}
}

func TestLabToLCh(t *testing.T) {
	src := []float64{50, 20, -30}
	dst := make([]float64, 3)
	st := &stageData{}
	toPolarStage(dst, src, st)

	assert.InDelta(t, 50, dst[0], 1e-10)
	assert.InDelta(t, 36.0555, dst[1], 1e-3)
	assert.InDelta(t, 303.69, dst[2], 1e-2)

	back := make([]float64, 3)
	fromPolarStage(back, dst, st)
	assert.InDelta(t, src[1], back[1], 1e-10)
	assert.InDelta(t, src[2], back[2], 1e-10)
}

func TestLuvRoundTrip(t *testing.T) {
	from := NewXYZSpace(D65)
	to := NewLuvSpace(D65)
	st := &stageData{from: from, to: to}

	tests := [][3]float64{
		{0.2, 0.3, 0.4},
		{0.5, 0.5, 0.5},
		{0.9, 1.0, 0.8},
	}

	var luv, back [3]float64
	for _, xyz := range tests {
		xyzToLuvStage(luv[:], xyz[:], st)
		stBack := &stageData{from: to, to: from}
		luvToXYZStage(back[:], luv[:], stBack)
		for i := range 3 {
			assert.InDelta(t, xyz[i], back[i], 1e-9)
		}
	}
}

func TestXyYRoundTrip(t *testing.T) {
	from := NewXYZSpace(D65)
	to := NewxyYSpace(D65)
	st := &stageData{from: from, to: to}

	var xyy, back [3]float64
	xyz := [3]float64{0.3, 0.4, 0.2}
	xyzToxyYStage(xyy[:], xyz[:], st)
	xyYToXYZStage(back[:], xyy[:], &stageData{from: to, to: from})
	for i := range 3 {
		assert.InDelta(t, xyz[i], back[i], 1e-12)
	}

	// black keeps the white chromaticity
	xyzToxyYStage(xyy[:], []float64{0, 0, 0}, st)
	sum := D65[0] + D65[1] + D65[2]
	assert.InDelta(t, D65[0]/sum, xyy[0], 1e-9)
	assert.InDelta(t, 0, xyy[2], 1e-12)
}

func TestHSVAgainstColorful(t *testing.T) {
	colours := [][3]float64{
		{1, 0, 0},
		{0.2, 0.4, 0.6},
		{0.5, 0.5, 0.5},
		{0.9, 0.1, 0.4},
	}

	st := &stageData{from: SRGB, to: NewHSVSpace(SRGB)}
	var hsv [3]float64
	for _, rgb := range colours {
		rgbToHSVStage(hsv[:], rgb[:], st)

		c := colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
		h, s, v := c.Hsv()
		assert.InDelta(t, h, hsv[0], 1e-8, "hue of %v", rgb)
		assert.InDelta(t, s, hsv[1], 1e-8, "saturation of %v", rgb)
		assert.InDelta(t, v, hsv[2], 1e-8, "value of %v", rgb)

		var back [3]float64
		hsvToRGBStage(back[:], hsv[:], st)
		for i := range 3 {
			assert.InDelta(t, rgb[i], back[i], 1e-9)
		}
	}
}

func TestHSLRoundTrip(t *testing.T) {
	colours := [][3]float64{
		{1, 0, 0},
		{0.2, 0.4, 0.6},
		{0.5, 0.5, 0.5},
		{0, 0, 0},
		{1, 1, 1},
	}

	st := &stageData{from: SRGB, to: NewHSLSpace(SRGB)}
	var hsl, back [3]float64
	for _, rgb := range colours {
		rgbToHSLStage(hsl[:], rgb[:], st)
		hslToRGBStage(back[:], hsl[:], st)
		for i := range 3 {
			assert.InDelta(t, rgb[i], back[i], 1e-9)
		}
	}
}

func TestYCbCrRoundTrip(t *testing.T) {
	for _, variant := range []YCbCrVariant{YCbCrRec601, YCbCrRec709} {
		ycc := NewYCbCrSpace(SRGB, variant)
		fwd := &stageData{from: SRGB, to: ycc}
		bwd := &stageData{from: ycc, to: SRGB}

		var mid, back [3]float64
		for _, rgb := range [][3]float64{{1, 0, 0}, {0.2, 0.4, 0.6}, {1, 1, 1}} {
			rgbToYCbCrStage(mid[:], rgb[:], fwd)
			yCbCrToRGBStage(back[:], mid[:], bwd)
			for i := range 3 {
				assert.InDelta(t, rgb[i], back[i], 1e-9)
			}
		}

		// white is neutral
		rgbToYCbCrStage(mid[:], []float64{1, 1, 1}, fwd)
		assert.InDelta(t, 1, mid[0], 1e-12)
		assert.InDelta(t, 0, mid[1], 1e-12)
		assert.InDelta(t, 0, mid[2], 1e-12)
	}
}

func TestCMYKRoundTrip(t *testing.T) {
	st := &stageData{}
	var cmy, cmyk, backCMY [3 + 1]float64

	for _, rgb := range [][3]float64{{1, 0, 0}, {0.2, 0.4, 0.6}, {0, 0, 0}, {1, 1, 1}} {
		rgbToCMYStage(cmy[:3], rgb[:], st)
		cmyToCMYKStage(cmyk[:], cmy[:3], st)
		cmykToCMYStage(backCMY[:3], cmyk[:], st)
		for i := range 3 {
			assert.InDelta(t, cmy[i], backCMY[i], 1e-12)
		}
	}
}

func TestGrayXYZ(t *testing.T) {
	gray := NewGraySpace(D50)
	xyzS := NewXYZSpace(D50)
	fwd := &stageData{from: gray, to: xyzS}
	bwd := &stageData{from: xyzS, to: gray}

	var xyz [3]float64
	var back [1]float64
	for _, g := range []float64{0, 0.18, 0.5, 1} {
		grayToXYZStage(xyz[:], []float64{g}, fwd)
		assert.InDelta(t, D50[1]*g, xyz[1], 1e-12)
		xyzToGrayStage(back[:], xyz[:], bwd)
		assert.InDelta(t, g, back[0], 1e-12)
	}
}

func TestSRGBToLabAgainstColorful(t *testing.T) {
	// go-colorful computes Lab relative to D65 with L scaled to [0,1]
	in := NewColor(SRGB)
	out := NewColor(NewLabSpace(D65))
	conv, err := NewConverter(in, out)
	if err != nil {
		t.Fatal(err)
	}
	defer conv.Close()

	colours := [][3]float64{
		{1, 1, 1},
		{0.5, 0.5, 0.5},
		{0.8, 0.2, 0.3},
		{0.1, 0.9, 0.5},
	}
	for _, rgb := range colours {
		in.Set(rgb[0], rgb[1], rgb[2])
		conv.Convert()

		// go-colorful derives its sRGB matrix from higher-precision
		// chromaticities, so the two libraries agree only to a few
		// hundredths of a Lab unit
		c := colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}
		l, a, b := c.Lab()
		assert.InDelta(t, l*100, out.Values[0], 0.3, "L of %v", rgb)
		assert.InDelta(t, a*100, out.Values[1], 0.3, "a of %v", rgb)
		assert.InDelta(t, b*100, out.Values[2], 0.3, "b of %v", rgb)
	}
}
