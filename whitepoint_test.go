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

func TestColorTemperatureD65(t *testing.T) {
	kelvin, ok := ColorTemperature(D65)
	if !ok {
		t.Fatal("no temperature for D65")
	}
	// D65 corresponds to roughly 6504 K
	if math.Abs(kelvin-6504) > 50 {
		t.Errorf("temperature of D65 = %.0f K, want about 6504 K", kelvin)
	}
}

func TestWhitePointFromTemperature(t *testing.T) {
	for _, kelvin := range []float64{5000, 6500, 9300} {
		white, ok := WhitePointFromTemperature(kelvin)
		if !ok {
			t.Fatalf("no white point for %.0f K", kelvin)
		}
		if white[1] != 1.0 {
			t.Errorf("white point Y = %f, want 1", white[1])
		}

		back, ok := ColorTemperature(white)
		if !ok {
			t.Fatalf("no temperature for %v", white)
		}
		if math.Abs(back-kelvin) > kelvin*0.01 {
			t.Errorf("temperature round trip: %.0f K -> %v -> %.0f K", kelvin, white, back)
		}
	}
}

func TestWhitePointFromTemperatureRange(t *testing.T) {
	if _, ok := WhitePointFromTemperature(1000); ok {
		t.Error("expected failure below 4000 K")
	}
	if _, ok := WhitePointFromTemperature(30000); ok {
		t.Error("expected failure above 25000 K")
	}
}
