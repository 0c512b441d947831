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

func TestBradfordMatrixKnownValues(t *testing.T) {
	Init()

	// the Bradford D65 -> D50 matrix as published in the ICC literature
	want := []float64{
		1.0478112, 0.0228866, -0.0501270,
		0.0295424, 0.9904844, -0.0170491,
		-0.0092345, 0.0150436, 0.7521316,
	}

	got, err := adaptationMatrix(Bradford, D65, D50)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 9 {
		if math.Abs(got[i]-want[i]) > 1e-4 {
			t.Errorf("matrix[%d] = %.7f, want %.7f", i, got[i], want[i])
		}
	}
}

func TestAdaptationRoundTrip(t *testing.T) {
	Init()

	methods := []AdaptationMethod{Bradford, VonKries, XYZScaling, CAT02, Sharp}
	for _, method := range methods {
		fwd, err := adaptationMatrix(method, D65, D50)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		bwd, err := adaptationMatrix(method, D50, D65)
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}

		prod := mulMatrix3x3(bwd, fwd)
		for i := range 9 {
			expected := 0.0
			if i%4 == 0 {
				expected = 1.0
			}
			if math.Abs(prod[i]-expected) > 1e-12 {
				t.Errorf("%s: round trip is not identity at %d: %g", method, i, prod[i])
			}
		}
	}
}

func TestAdaptationWhitePointMapping(t *testing.T) {
	Init()

	// the adaptation must map the source white exactly to the
	// destination white
	for _, method := range []AdaptationMethod{Bradford, CAT02, XYZScaling} {
		m, err := adaptationMatrix(method, D65, D50)
		if err != nil {
			t.Fatal(err)
		}
		var got [3]float64
		transform3(got[:], m, D65[:])
		for i := range 3 {
			if math.Abs(got[i]-D50[i]) > 1e-12 {
				t.Errorf("%s: white maps to %v, want %v", method, got, D50)
				break
			}
		}
	}
}

func TestAdaptationMatrixCache(t *testing.T) {
	Init()

	a, err := adaptationMatrix(Bradford, D65, D50)
	if err != nil {
		t.Fatal(err)
	}
	b, err := adaptationMatrix(Bradford, D65, D50)
	if err != nil {
		t.Fatal(err)
	}
	if &a[0] != &b[0] {
		t.Error("adaptation matrix was not cached")
	}
}

func TestUnknownAdaptationMethod(t *testing.T) {
	Init()

	_, err := adaptationMatrix("NoSuchMethod", D65, D50)
	if err == nil {
		t.Error("expected an error for an unknown method")
	}
}
