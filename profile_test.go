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
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProfileEncodeDecodeRoundTrip(t *testing.T) {
	for _, space := range []*Space{SRGB, AdobeRGB} {
		p, err := NewRGBProfile(space)
		if err != nil {
			t.Fatal(err)
		}

		q, err := DecodeProfile(p.Encode())
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		r, err := DecodeProfile(q.Encode())
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}

		if diff := cmp.Diff(q, r); diff != "" {
			t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
		}

		if q.Class != DisplayDeviceProfile {
			t.Errorf("class = %v, want DisplayDeviceProfile", q.Class)
		}
		if q.ColorSpace != RGBSpace || q.PCS != PCSXYZSpace {
			t.Errorf("spaces = %v/%v, want RGB/PCSXYZ", q.ColorSpace, q.PCS)
		}
		if q.CheckSum != CheckSumValid {
			t.Errorf("checksum = %v, want Valid", q.CheckSum)
		}
	}
}

func TestMatrixProfileWhite(t *testing.T) {
	p, err := NewRGBProfile(SRGB)
	if err != nil {
		t.Fatal(err)
	}

	// device white maps to the D50 PCS illuminant
	in := NewColor(p.DeviceSpace(), 1, 1, 1)
	out := NewColor(NewXYZSpace(pcsWhitePoint))
	convert(t, in, out)

	for i := range 3 {
		if math.Abs(out.Values[i]-pcsWhitePoint[i]) > 1e-3 {
			t.Errorf("white -> XYZ = %v, want %v", out.Values, pcsWhitePoint)
			break
		}
	}

	// black maps to near zero
	in.Set(0, 0, 0)
	convert(t, in, out)
	for i := range 3 {
		if math.Abs(out.Values[i]) > 1e-3 {
			t.Errorf("black -> XYZ = %v, want zero", out.Values)
			break
		}
	}
}

func TestMatrixProfileDeviceRoundTrip(t *testing.T) {
	p, err := NewRGBProfile(SRGB)
	if err != nil {
		t.Fatal(err)
	}
	q, err := DecodeProfile(p.Encode())
	if err != nil {
		t.Fatal(err)
	}

	in := NewColor(q.DeviceSpace(), 0.8, 0.4, 0.2)
	mid := q.NewPCSColor()
	back := NewColor(q.DeviceSpace())

	convert(t, in, mid)
	convert(t, mid, back)

	for i := range 3 {
		if math.Abs(back.Values[i]-in.Values[i]) > 1e-3 {
			t.Errorf("device round trip channel %d: %g != %g",
				i, back.Values[i], in.Values[i])
		}
	}
}

func TestLutProfileNeutralAxis(t *testing.T) {
	p, err := NewRGBLutProfile(SRGB, 17)
	if err != nil {
		t.Fatal(err)
	}
	q, err := DecodeProfile(p.Encode())
	if err != nil {
		t.Fatal(err)
	}

	in := NewColor(q.DeviceSpace())
	out := NewColor(NewLabSpace(D50))
	conv, err := NewConverter(in, out)
	if err != nil {
		t.Fatal(err)
	}
	defer conv.Close()

	in.Set(0.5, 0.5, 0.5)
	conv.Convert()

	// mid gray lies on the neutral axis: a and b vanish and L matches
	// the analytic value within the CLUT quantisation
	if math.Abs(out.Values[0]-53.389) > 0.05 {
		t.Errorf("L = %g, want 53.389", out.Values[0])
	}
	if math.Abs(out.Values[1]) > 0.05 || math.Abs(out.Values[2]) > 0.05 {
		t.Errorf("a, b = %g, %g, want 0, 0", out.Values[1], out.Values[2])
	}
}

func TestLutProfileAgainstMatrixPath(t *testing.T) {
	// the sampled LUT profile must agree with the analytic conversion
	p, err := NewRGBLutProfile(SRGB, 33)
	if err != nil {
		t.Fatal(err)
	}

	in := NewColor(p.DeviceSpace())
	out := NewColor(NewLabSpace(pcsWhitePoint))
	conv, err := NewConverter(in, out)
	if err != nil {
		t.Fatal(err)
	}
	defer conv.Close()

	// analytic path: sRGB -> XYZ(D65) -> Bradford -> Lab(PCS white)
	ref := NewColor(SRGB)
	refOut := NewColor(NewLabSpace(pcsWhitePoint))
	refConv, err := NewConverter(ref, refOut)
	if err != nil {
		t.Fatal(err)
	}
	defer refConv.Close()

	colours := [][3]float64{
		{0.25, 0.5, 0.75},
		{0.9, 0.1, 0.3},
		{0, 0, 0},
		{1, 1, 1},
	}
	for _, rgb := range colours {
		in.Set(rgb[0], rgb[1], rgb[2])
		conv.Convert()
		ref.Set(rgb[0], rgb[1], rgb[2])
		refConv.Convert()

		for i := range 3 {
			if math.Abs(out.Values[i]-refOut.Values[i]) > 0.5 {
				t.Errorf("%v channel %d: LUT %g vs analytic %g",
					rgb, i, out.Values[i], refOut.Values[i])
			}
		}
	}
}

func TestGrayProfile(t *testing.T) {
	p := &Profile{
		Class:      DisplayDeviceProfile,
		ColorSpace: GraySpace,
		PCS:        PCSXYZSpace,
		TagData:    make(map[TagType][]byte),
	}
	p.TagData[GrayTRC] = (&Curve{Gamma: 2.2}).Encode()
	p.TagData[MediaWhitePoint] = encodeXYZTag(pcsWhitePoint)

	in := NewColor(p.DeviceSpace(), 0.5)
	out := NewColor(NewXYZSpace(pcsWhitePoint))
	convert(t, in, out)

	wantY := math.Pow(0.5, 2.2)
	if math.Abs(out.Values[1]-wantY) > 1e-3 {
		t.Errorf("Y = %g, want %g", out.Values[1], wantY)
	}
}

func TestInvalidProfileTags(t *testing.T) {
	// the A2B0 table's geometry contradicts the header colour spaces
	p := &Profile{
		Class:      DisplayDeviceProfile,
		ColorSpace: RGBSpace,
		PCS:        PCSLabSpace,
		TagData:    make(map[TagType][]byte),
	}
	clut := make([]float64, 3*3*3*3*3)
	data, err := NewLut16(4, 3, 3, nil, nil, clut, nil).Encode()
	if err != nil {
		t.Fatal(err)
	}
	p.TagData[AToB0] = data

	in := NewColor(p.DeviceSpace())
	out := NewColor(NewLabSpace(D50))
	if _, err := NewConverter(in, out); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("got %v, want ErrInvalidProfile", err)
	}

	// a profile with no transform tags at all
	empty := &Profile{
		Class:      DisplayDeviceProfile,
		ColorSpace: RGBSpace,
		PCS:        PCSXYZSpace,
		TagData:    make(map[TagType][]byte),
	}
	in2 := NewColor(empty.DeviceSpace())
	out2 := NewColor(NewXYZSpace(D50))
	if _, err := NewConverter(in2, out2); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("got %v, want ErrInvalidProfile", err)
	}
}

func TestDecodeProfileErrors(t *testing.T) {
	if _, err := DecodeProfile([]byte("too short")); err == nil {
		t.Error("expected an error for truncated data")
	}

	data := make([]byte, 200)
	if _, err := DecodeProfile(data); err == nil {
		t.Error("expected an error for a missing signature")
	}

	var ipe *InvalidProfileError
	_, err := DecodeProfile(data)
	if !errors.As(err, &ipe) {
		t.Errorf("error is %T, want *InvalidProfileError", err)
	}
}

func TestLut16EncodeDecodeRoundTrip(t *testing.T) {
	lut := identityLut16(3, 5)
	data, err := lut.Encode()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeLut(data)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.InputChannels() != 3 || decoded.OutputChannels() != 3 {
		t.Fatalf("channels = %d/%d, want 3/3",
			decoded.InputChannels(), decoded.OutputChannels())
	}

	var got, want [3]float64
	inputs := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0.5}, {0.2, 0.7, 0.9}, {1, 1, 1}}
	for _, in := range inputs {
		lut.Apply(want[:], in[:])
		decoded.Apply(got[:], in[:])
		for i := range 3 {
			if math.Abs(got[i]-want[i]) > 1e-3 {
				t.Errorf("decoded LUT differs at %v: %v vs %v", in, got, want)
				break
			}
		}
	}
}
