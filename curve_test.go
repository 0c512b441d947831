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
)

func TestCurveGamma(t *testing.T) {
	tests := []struct {
		gamma float64
		input float64
		want  float64
	}{
		{1.0, 0.5, 0.5},
		{2.0, 0.5, 0.25},
		{2.2, 0.5, 0.2176},
		{2.2, 0.0, 0.0},
		{2.2, 1.0, 1.0},
	}

	for _, tt := range tests {
		c := &Curve{Gamma: tt.gamma}
		got := c.Evaluate(tt.input)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("Gamma %.1f: Evaluate(%.2f) = %.4f, want %.4f",
				tt.gamma, tt.input, got, tt.want)
		}
	}
}

func TestCurveGammaInvert(t *testing.T) {
	gammas := []float64{1.0, 1.8, 2.2, 2.4}
	inputs := []float64{0.0, 0.1, 0.25, 0.5, 0.75, 0.9, 1.0}

	for _, gamma := range gammas {
		c := &Curve{Gamma: gamma}
		for _, x := range inputs {
			y := c.Evaluate(x)
			xBack := c.Invert(y)
			if math.Abs(xBack-x) > 1e-6 {
				t.Errorf("Gamma %.1f: round-trip failed: %f -> %f -> %f",
					gamma, x, y, xBack)
			}
		}
	}
}

func TestCurveParametricType0(t *testing.T) {
	// type 0: y = x^g (same as gamma curve)
	c := &Curve{
		FuncType: 0,
		Params:   []float64{2.2},
	}

	got := c.Evaluate(0.5)
	want := math.Pow(0.5, 2.2)
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("type 0: Evaluate(0.5) = %f, want %f", got, want)
	}

	// round-trip
	xBack := c.Invert(got)
	if math.Abs(xBack-0.5) > 1e-6 {
		t.Errorf("type 0: round-trip failed: 0.5 -> %f -> %f", got, xBack)
	}
}

func TestCurveParametricType3(t *testing.T) {
	// the sRGB preset curve is a type 3 parametric curve
	c := SRGB.RGB.TRC

	tests := []float64{0.0, 0.01, 0.04, 0.04045, 0.05, 0.1, 0.5, 1.0}
	for _, x := range tests {
		y := c.Evaluate(x)
		xBack := c.Invert(y)
		if math.Abs(xBack-x) > 1e-5 {
			t.Errorf("type 3 sRGB: round-trip failed: %f -> %f -> %f", x, y, xBack)
		}
	}
}

func TestPresetCurvesRoundTrip(t *testing.T) {
	presets := []*Space{SRGB, AdobeRGB, ProPhotoRGB, Rec709, Rec2020}
	inputs := []float64{0, 0.001, 0.01, 0.1, 0.5, 0.9, 1}

	for _, s := range presets {
		c := s.RGB.TRC
		for _, x := range inputs {
			y := c.Evaluate(x)
			xBack := c.Invert(y)
			if math.Abs(xBack-x) > 1e-9 {
				t.Errorf("TRC round-trip failed: %f -> %f -> %f", x, y, xBack)
			}
		}
	}
}

func TestCurveSampled(t *testing.T) {
	// linear curve with 256 entries
	table := make([]uint16, 256)
	for i := range table {
		table[i] = uint16(i) << 8
	}
	c := &Curve{Table: table}

	tests := []float64{0.0, 0.25, 0.5, 0.75, 1.0}
	for _, x := range tests {
		y := c.Evaluate(x)
		if math.Abs(y-x) > 0.01 {
			t.Errorf("sampled linear: Evaluate(%f) = %f, want %f", x, y, x)
		}
	}
}

func TestCurveSampledInvert(t *testing.T) {
	// gamma 2.2 curve with 256 entries
	table := make([]uint16, 256)
	for i := range table {
		x := float64(i) / 255.0
		y := math.Pow(x, 2.2)
		table[i] = uint16(y * 65535)
	}
	c := &Curve{Table: table}

	inputs := []float64{0.0, 0.1, 0.25, 0.5, 0.75, 0.9, 1.0}
	for _, x := range inputs {
		y := c.Evaluate(x)
		xBack := c.Invert(y)
		// sampled curve inversion is less precise
		if math.Abs(xBack-x) > 0.01 {
			t.Errorf("sampled gamma: round-trip failed: %f -> %f -> %f", x, y, xBack)
		}
	}
}

func TestCurveIdentity(t *testing.T) {
	tests := []struct {
		name    string
		curve   *Curve
		isIdent bool
	}{
		{"gamma 1.0", &Curve{Gamma: 1.0}, true},
		{"gamma 2.2", &Curve{Gamma: 2.2}, false},
		{"type 0 gamma 1.0", &Curve{FuncType: 0, Params: []float64{1.0}}, true},
		{"type 0 gamma 2.2", &Curve{FuncType: 0, Params: []float64{2.2}}, false},
	}

	for _, tt := range tests {
		got := tt.curve.IsIdentity()
		if got != tt.isIdent {
			t.Errorf("%s: IsIdentity() = %v, want %v", tt.name, got, tt.isIdent)
		}
	}
}

func TestDecodeCurveType(t *testing.T) {
	// curveType with n=0 (identity)
	data := []byte{'c', 'u', 'r', 'v', 0, 0, 0, 0, 0, 0, 0, 0}
	c, err := DecodeCurve(data)
	if err != nil {
		t.Fatalf("decode identity curve: %v", err)
	}
	if c.Gamma != 1.0 {
		t.Errorf("identity curve gamma = %f, want 1.0", c.Gamma)
	}

	// curveType with n=1 (gamma)
	data = []byte{'c', 'u', 'r', 'v', 0, 0, 0, 0, 0, 0, 0, 1, 0x02, 0x33}
	c, err = DecodeCurve(data)
	if err != nil {
		t.Fatalf("decode gamma curve: %v", err)
	}
	expected := float64(0x0233) / 256.0
	if math.Abs(c.Gamma-expected) > 0.01 {
		t.Errorf("gamma curve = %f, want %f", c.Gamma, expected)
	}
}

func TestCurveEncodeDecode(t *testing.T) {
	curves := []*Curve{
		{Gamma: 1.0},
		{Gamma: 563.0 / 256.0},
		{FuncType: 3, Params: []float64{2.4, 1 / 1.055, 0.055 / 1.055, 1 / 12.92, 0.04045}},
	}

	for _, c := range curves {
		data := c.Encode()
		q, err := DecodeCurve(data)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		for _, x := range []float64{0, 0.2, 0.5, 0.8, 1} {
			if math.Abs(c.Evaluate(x)-q.Evaluate(x)) > 1e-4 {
				t.Errorf("re-decoded curve differs at %f: %f vs %f",
					x, c.Evaluate(x), q.Evaluate(x))
			}
		}
	}
}
