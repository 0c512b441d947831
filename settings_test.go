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

	"github.com/stretchr/testify/assert"
)

func restoreSettings(t *testing.T) {
	t.Cleanup(func() {
		SetDefaultAdaptation(Bradford)
		SetDefaultIntent(RelativeColorimetric)
		SetDefaultInterpolation(Tetrahedral)
	})
}

func TestDefaultSettings(t *testing.T) {
	assert.Equal(t, Bradford, DefaultAdaptation())
	assert.Equal(t, RelativeColorimetric, DefaultIntent())
	assert.Equal(t, Tetrahedral, DefaultInterpolation())
}

func TestLoadSettings(t *testing.T) {
	restoreSettings(t)

	err := LoadSettings([]byte(`
adaptation = "CAT02"
intent = "perceptual"
interpolation = "trilinear"
`))
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, CAT02, DefaultAdaptation())
	assert.Equal(t, Perceptual, DefaultIntent())
	assert.Equal(t, Trilinear, DefaultInterpolation())
}

func TestLoadSettingsPartial(t *testing.T) {
	restoreSettings(t)

	err := LoadSettings([]byte(`intent = "absolute"`))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, AbsoluteColorimetric, DefaultIntent())
	assert.Equal(t, Bradford, DefaultAdaptation())
}

func TestLoadSettingsErrors(t *testing.T) {
	restoreSettings(t)

	if err := LoadSettings([]byte(`intent = "vivid"`)); err == nil {
		t.Error("expected an error for an unknown intent")
	}
	if err := LoadSettings([]byte(`interpolation = "cubic"`)); err == nil {
		t.Error("expected an error for an unknown interpolation")
	}
	if err := LoadSettings([]byte(`= broken`)); err == nil {
		t.Error("expected an error for malformed TOML")
	}
}

func TestDefaultAdaptationUsedInPlans(t *testing.T) {
	restoreSettings(t)

	in := NewColor(NewXYZSpace(D65), 0.3, 0.5, 0.4)
	out := NewColor(NewXYZSpace(D50))

	SetDefaultAdaptation(Bradford)
	convert(t, in, out)
	var bradford [3]float64
	copy(bradford[:], out.Values)

	SetDefaultAdaptation(XYZScaling)
	convert(t, in, out)

	diff := 0.0
	for i := range 3 {
		diff += math.Abs(out.Values[i] - bradford[i])
	}
	if diff < 1e-6 {
		t.Error("changing the default adaptation did not change the result")
	}
}

func TestInterpolationModes(t *testing.T) {
	restoreSettings(t)

	// the sampled sRGB LUT profile gives results within 0.5 across
	// interpolation modes
	p, err := NewRGBLutProfile(SRGB, 17)
	if err != nil {
		t.Fatal(err)
	}

	results := make([][3]float64, 0, 3)
	for _, mode := range []Interpolation{Tetrahedral, Trilinear, NLinear} {
		SetDefaultInterpolation(mode)

		in := NewColor(p.DeviceSpace(), 0.25, 0.5, 0.75)
		out := NewColor(NewLabSpace(pcsWhitePoint))
		convert(t, in, out)

		var r [3]float64
		copy(r[:], out.Values)
		results = append(results, r)
	}

	for i := 1; i < len(results); i++ {
		for c := range 3 {
			if math.Abs(results[i][c]-results[0][c]) > 0.5 {
				t.Errorf("interpolation modes disagree: %v vs %v", results[i], results[0])
			}
		}
	}
}
