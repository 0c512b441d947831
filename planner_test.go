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
	"errors"
	"testing"
)

// identityLut16 builds a grid^n identity CLUT with the given channel
// count.
func identityLut16(channels, grid int) *Lut16 {
	size := 1
	for range channels {
		size *= grid
	}
	clut := make([]float64, size*channels)
	idx := make([]int, channels)
	for i := 0; i < size; i++ {
		for c := range channels {
			clut[i*channels+c] = float64(idx[c]) / float64(grid-1)
		}
		for c := channels - 1; c >= 0; c-- {
			idx[c]++
			if idx[c] < grid {
				break
			}
			idx[c] = 0
		}
	}
	return NewLut16(channels, channels, grid, nil, nil, clut, nil)
}

func planFor(t *testing.T, in, out *Color) plan {
	t.Helper()
	Init()
	p, err := buildPlan(in, out)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func stageKinds(p plan) []stageKind {
	kinds := make([]stageKind, len(p))
	for i := range p {
		kinds[i] = p[i].kind
	}
	return kinds
}

func TestPlanShapes(t *testing.T) {
	tests := []struct {
		name string
		in   *Color
		out  *Color
		want []stageKind
	}{
		{
			"identity",
			NewColor(SRGB), NewColor(SRGB),
			[]stageKind{stageAssign},
		},
		{
			"rgb to xyz, same white",
			NewColor(SRGB), NewColor(NewXYZSpace(D65)),
			[]stageKind{stagePrimitive},
		},
		{
			"rgb to xyz, cross white",
			NewColor(AdobeRGB), NewColor(NewXYZSpace(D50)),
			[]stageKind{stagePrimitive, stageAdapt},
		},
		{
			"rgb reparameterisation",
			NewColor(SRGB), NewColor(Rec2020),
			[]stageKind{stagePrimitive, stagePrimitive},
		},
		{
			"lab to lch",
			NewColor(NewLabSpace(D50)), NewColor(NewLChSpace(D50)),
			[]stageKind{stagePrimitive},
		},
		{
			"cross white lab",
			NewColor(NewLabSpace(D65)), NewColor(NewLabSpace(D50)),
			[]stageKind{stagePrimitive, stageAdapt, stagePrimitive},
		},
		{
			"cmyk to hsv",
			NewColor(NewCMYKSpace(SRGB)), NewColor(NewHSVSpace(SRGB)),
			[]stageKind{stagePrimitive, stagePrimitive, stagePrimitive},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planFor(t, tt.in, tt.out)
			got := stageKinds(p)
			if len(got) != len(tt.want) {
				t.Fatalf("plan has %d stages %v, want %d %v",
					len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("stage %d is %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPlanDeterminism(t *testing.T) {
	in := NewColor(NewCMYKSpace(SRGB))
	out := NewColor(NewLChSpace(D50))

	first := planFor(t, in, out)
	for range 10 {
		p := planFor(t, in, out)
		if len(p) != len(first) {
			t.Fatalf("plan length changed: %d vs %d", len(p), len(first))
		}
		for i := range p {
			if p[i].kind != first[i].kind {
				t.Fatalf("stage %d kind changed", i)
			}
			if p[i].kind == stagePrimitive && p[i].prim.Name != first[i].prim.Name {
				t.Fatalf("stage %d primitive changed: %s vs %s",
					i, p[i].prim.Name, first[i].prim.Name)
			}
		}
	}
}

func TestPlanDeviceLinkOutputFixed(t *testing.T) {
	// a device link's output type is fixed to its PCS field: CMYK input
	// bound to the link with an RGB output colour cannot be planned
	clut := make([]float64, 3*3*3*3*3)
	link, err := NewDeviceLinkProfile(CMYKSpace, CIELabSpace, NewLut16(4, 3, 3, nil, nil, clut, nil))
	if err != nil {
		t.Fatal(err)
	}

	in := NewColor(link.DeviceSpace())
	out := NewColor(SRGB)

	_, err = NewConverter(in, out)
	if !errors.Is(err, ErrNoConversion) {
		t.Errorf("got %v, want ErrNoConversion", err)
	}
}

func TestPlanDeviceLinkRoundTrip(t *testing.T) {
	// an identity CMYK -> CMYK device link converts values unchanged
	link, err := NewDeviceLinkProfile(CMYKSpace, CMYKSpace, identityLut16(4, 3))
	if err != nil {
		t.Fatal(err)
	}

	in := NewColor(link.DeviceSpace(), 0.1, 0.5, 0.25, 0.75)
	out := NewColor(NewCMYKSpace(SRGB))
	convert(t, in, out)

	for i := range 4 {
		if diff := out.Values[i] - in.Values[i]; diff > 1e-4 || diff < -1e-4 {
			t.Errorf("channel %d: %g != %g", i, out.Values[i], in.Values[i])
		}
	}
}

func TestPlanAbstractProfile(t *testing.T) {
	abst := &Profile{
		Class:      AbstractProfile,
		ColorSpace: CIELabSpace,
		PCS:        PCSLabSpace,
		TagData:    make(map[TagType][]byte),
	}
	data, err := identityLut16(3, 2).Encode()
	if err != nil {
		t.Fatal(err)
	}
	abst.TagData[AToB0] = data

	in := NewColor(abst.DeviceSpace(), 50, 20, -30)
	out := NewColor(NewLabSpace(D50))
	convert(t, in, out)

	// the identity table must return the input within the 16-bit
	// encoding quantisation
	if diff := out.Values[0] - 50; diff > 0.01 || diff < -0.01 {
		t.Errorf("L = %g, want 50", out.Values[0])
	}
	if diff := out.Values[1] - 20; diff > 0.01 || diff < -0.01 {
		t.Errorf("a = %g, want 20", out.Values[1])
	}
	if diff := out.Values[2] - (-30); diff > 0.01 || diff < -0.01 {
		t.Errorf("b = %g, want -30", out.Values[2])
	}

	// an abstract profile cannot feed a device-kind colour
	rgbOut := NewColor(SRGB)
	if _, err := NewConverter(in, rgbOut); !errors.Is(err, ErrNoConversion) {
		t.Errorf("got %v, want ErrNoConversion", err)
	}
}

func TestPlanNoPath(t *testing.T) {
	// an unknown kind has no registered conversions
	odd := &Space{Kind: Color7Space, WhitePoint: D50}
	in := NewColor(odd)
	out := NewColor(SRGB)

	if _, err := NewConverter(in, out); !errors.Is(err, ErrNoConversion) {
		t.Errorf("got %v, want ErrNoConversion", err)
	}
}

func TestPlanProfilePair(t *testing.T) {
	// device -> device through two profiles meets in the PCS
	p1, err := NewRGBProfile(SRGB)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := NewRGBProfile(AdobeRGB)
	if err != nil {
		t.Fatal(err)
	}

	in := NewColor(p1.DeviceSpace())
	out := NewColor(p2.DeviceSpace())
	p := planFor(t, in, out)

	want := []stageKind{stageProfile, stageProfile}
	got := stageKinds(p)
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("plan = %v, want %v", got, want)
	}

	// white maps to white through the PCS
	in.Set(1, 1, 1)
	convert(t, in, out)
	for i := range 3 {
		if diff := out.Values[i] - 1; diff > 0.01 || diff < -0.01 {
			t.Errorf("white channel %d = %g, want 1", i, out.Values[i])
		}
	}
}
