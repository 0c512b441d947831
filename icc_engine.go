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

import "fmt"

// Direction specifies the direction of an ICC profile transform.
type Direction int

const (
	// DeviceToPCS converts from device colour space to Profile Connection Space.
	DeviceToPCS Direction = iota
	// PCSToDevice converts from Profile Connection Space to device colour space.
	PCSToDevice
)

// PCS value encodings used by LUT-based profiles. XYZ values are stored
// on a fixed scale reaching just below 2.0; legacy 16-bit LUTs encode
// the Lab range with a maximum at 0xFF00 rather than 0xFFFF.
const (
	pcsXYZScale    = 32768.0 / 65535.0
	labLegacyScale = 65280.0 / 65535.0
)

type profileKind int

const (
	profileKindUnknown profileKind = iota
	profileKindMatrixTRC
	profileKindGrayTRC
	profileKindLut
)

// profileTransform applies one profile's tag chain in one direction.
// It is built once per converter stage; apply does not allocate and
// never mutates the profile.
type profileTransform struct {
	profile   *Profile
	direction Direction
	intent    RenderingIntent
	kind      profileKind

	// for matrix/TRC profiles (RGB devices, XYZ PCS)
	matrix    []float64 // 3x3 matrix: linear device RGB to XYZ
	matrixInv []float64 // inverse matrix, PCSToDevice only
	trc       [3]*Curve

	// for gray TRC profiles
	grayTRC *Curve

	// for LUT-based profiles
	lut          Lut
	encodeInput  bool // input side carries PCS values to be encoded
	decodeOutput bool // output side carries encoded PCS values
	labLegacy    bool // 16-bit legacy Lab encoding (lut16Type)

	whitePoint [3]float64 // media white point
	scratch    []float64
}

// newProfileTransform builds the transform for one profile and
// direction. Errors wrap [ErrInvalidProfile].
func newProfileTransform(p *Profile, dir Direction, intent RenderingIntent) (*profileTransform, error) {
	t := &profileTransform{
		profile:    p,
		direction:  dir,
		intent:     intent,
		kind:       detectProfileKind(p),
		whitePoint: p.MediaWhitePoint(),
		scratch:    make([]float64, 16),
	}

	var err error
	switch t.kind {
	case profileKindMatrixTRC:
		err = t.initMatrixTRC()
	case profileKindGrayTRC:
		err = t.initGrayTRC()
	case profileKindLut:
		err = t.initLut()
	default:
		err = fmt.Errorf("no usable transform tags in %v profile", p.Class)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return t, nil
}

func detectProfileKind(p *Profile) profileKind {
	// LUT-based tags take precedence
	for _, tag := range []TagType{AToB0, AToB1, AToB2, BToA0, BToA1, BToA2} {
		if _, ok := p.TagData[tag]; ok {
			return profileKindLut
		}
	}

	_, hasRXYZ := p.TagData[RedMatrixColumn]
	_, hasGXYZ := p.TagData[GreenMatrixColumn]
	_, hasBXYZ := p.TagData[BlueMatrixColumn]
	_, hasRTRC := p.TagData[RedTRC]
	_, hasGTRC := p.TagData[GreenTRC]
	_, hasBTRC := p.TagData[BlueTRC]
	if hasRXYZ && hasGXYZ && hasBXYZ && hasRTRC && hasGTRC && hasBTRC {
		return profileKindMatrixTRC
	}

	if _, ok := p.TagData[GrayTRC]; ok {
		return profileKindGrayTRC
	}

	return profileKindUnknown
}

func (t *profileTransform) initMatrixTRC() error {
	p := t.profile
	if p.ColorSpace != RGBSpace || p.PCS != PCSXYZSpace {
		return fmt.Errorf("matrix/TRC tags require an RGB device space and XYZ PCS")
	}

	rXYZ, err := decodeXYZTag(p.TagData[RedMatrixColumn])
	if err != nil {
		return err
	}
	gXYZ, err := decodeXYZTag(p.TagData[GreenMatrixColumn])
	if err != nil {
		return err
	}
	bXYZ, err := decodeXYZTag(p.TagData[BlueMatrixColumn])
	if err != nil {
		return err
	}

	// the matrix columns are the XYZ values of the primaries
	t.matrix = []float64{
		rXYZ[0], gXYZ[0], bXYZ[0],
		rXYZ[1], gXYZ[1], bXYZ[1],
		rXYZ[2], gXYZ[2], bXYZ[2],
	}

	if t.direction == PCSToDevice {
		t.matrixInv = invertMatrix3x3(t.matrix)
		if t.matrixInv == nil {
			return fmt.Errorf("singular colour matrix")
		}
	}

	for i, tag := range []TagType{RedTRC, GreenTRC, BlueTRC} {
		c, err := DecodeCurve(p.TagData[tag])
		if err != nil {
			return err
		}
		if t.direction == PCSToDevice {
			c.prepareInverse()
		}
		t.trc[i] = c
	}

	return nil
}

func (t *profileTransform) initGrayTRC() error {
	p := t.profile
	if p.ColorSpace != GraySpace {
		return fmt.Errorf("kTRC tag requires a Gray device space")
	}

	c, err := DecodeCurve(p.TagData[GrayTRC])
	if err != nil {
		return err
	}
	if t.direction == PCSToDevice {
		c.prepareInverse()
	}
	t.grayTRC = c
	return nil
}

func (t *profileTransform) initLut() error {
	p := t.profile

	// select the LUT tag for the direction and intent, falling back to
	// the perceptual table
	var tagType TagType
	if t.direction == DeviceToPCS {
		switch t.intent {
		case Perceptual:
			tagType = AToB0
		case RelativeColorimetric, AbsoluteColorimetric:
			tagType = AToB1
		case Saturation:
			tagType = AToB2
		}
		if _, ok := p.TagData[tagType]; !ok {
			tagType = AToB0
		}
	} else {
		switch t.intent {
		case Perceptual:
			tagType = BToA0
		case RelativeColorimetric, AbsoluteColorimetric:
			tagType = BToA1
		case Saturation:
			tagType = BToA2
		}
		if _, ok := p.TagData[tagType]; !ok {
			tagType = BToA0
		}
	}

	data, ok := p.TagData[tagType]
	if !ok {
		return fmt.Errorf("missing %v tag", tagType)
	}

	lut, err := DecodeLut(data)
	if err != nil {
		return err
	}
	t.lut = lut

	// check channel counts against the header
	var inKind, outKind ColorSpace
	if t.direction == DeviceToPCS {
		inKind, outKind = p.ColorSpace, p.PCS
	} else {
		inKind, outKind = p.PCS, p.ColorSpace
	}
	if n := inKind.NumComponents(); n != 0 && n != lut.InputChannels() {
		return fmt.Errorf("%v tag has %d input channels, %v needs %d",
			tagType, lut.InputChannels(), inKind, n)
	}
	if n := outKind.NumComponents(); n != 0 && n != lut.OutputChannels() {
		return fmt.Errorf("%v tag has %d output channels, %v needs %d",
			tagType, lut.OutputChannels(), outKind, n)
	}

	// PCS encoding discipline per profile class: DeviceLink tables map
	// device values end to end; Abstract tables carry PCS values on
	// both sides.
	switch p.Class {
	case DeviceLinkProfile:
		// no PCS side
	case AbstractProfile:
		t.encodeInput = true
		t.decodeOutput = true
	default:
		if t.direction == DeviceToPCS {
			t.decodeOutput = true
		} else {
			t.encodeInput = true
		}
	}

	switch lut.(type) {
	case *Lut16:
		t.labLegacy = true
	}

	return nil
}

// apply runs the transform. For DeviceToPCS, src holds normalised
// device values and dst receives PCS values in their natural ranges
// (XYZ with Y=1 at white, or Lab with L in [0,100]). For PCSToDevice
// the roles are swapped. DeviceLink transforms map device values to
// device values.
func (t *profileTransform) apply(dst, src []float64) {
	switch t.kind {
	case profileKindMatrixTRC:
		t.applyMatrixTRC(dst, src)
	case profileKindGrayTRC:
		t.applyGrayTRC(dst, src)
	case profileKindLut:
		t.applyLut(dst, src)
	}
}

func (t *profileTransform) applyMatrixTRC(dst, src []float64) {
	if t.direction == DeviceToPCS {
		// linearise, then matrix to XYZ
		r := t.trc[0].Evaluate(src[0])
		g := t.trc[1].Evaluate(src[1])
		b := t.trc[2].Evaluate(src[2])

		dst[0] = t.matrix[0]*r + t.matrix[1]*g + t.matrix[2]*b
		dst[1] = t.matrix[3]*r + t.matrix[4]*g + t.matrix[5]*b
		dst[2] = t.matrix[6]*r + t.matrix[7]*g + t.matrix[8]*b
		return
	}

	// PCSToDevice
	transform3(dst, t.matrixInv, src)
	dst[0] = t.trc[0].Invert(clamp(dst[0], 0, 1))
	dst[1] = t.trc[1].Invert(clamp(dst[1], 0, 1))
	dst[2] = t.trc[2].Invert(clamp(dst[2], 0, 1))
}

func (t *profileTransform) applyGrayTRC(dst, src []float64) {
	if t.direction == DeviceToPCS {
		y := t.grayTRC.Evaluate(src[0])
		if t.profile.PCS == PCSLabSpace {
			t.scratch[0] = t.whitePoint[0] * y
			t.scratch[1] = t.whitePoint[1] * y
			t.scratch[2] = t.whitePoint[2] * y
			xyzToLab(dst, t.scratch, pcsWhitePoint)
		} else {
			dst[0] = t.whitePoint[0] * y
			dst[1] = t.whitePoint[1] * y
			dst[2] = t.whitePoint[2] * y
		}
		return
	}

	// PCSToDevice: extract the luminance and invert the TRC
	var y float64
	if t.profile.PCS == PCSLabSpace {
		labToXYZ(t.scratch, src, pcsWhitePoint)
		y = t.scratch[1]
	} else {
		y = src[1]
	}
	if t.whitePoint[1] != 0 {
		y /= t.whitePoint[1]
	}
	dst[0] = t.grayTRC.Invert(clamp(y, 0, 1))
}

func (t *profileTransform) applyLut(dst, src []float64) {
	in := src
	if t.encodeInput {
		t.encodePCS(t.scratch, src)
		in = t.scratch
	}
	t.lut.Apply(dst, in)
	if t.decodeOutput {
		t.decodePCS(dst)
	}
}

// encodePCS converts natural PCS values to the LUT's normalised input
// encoding.
func (t *profileTransform) encodePCS(dst, src []float64) {
	if t.profile.PCS == PCSLabSpace {
		f := 1.0
		if t.labLegacy {
			f = labLegacyScale
		}
		dst[0] = clamp(src[0]/100*f, 0, 1)
		dst[1] = clamp((src[1]+128)/255*f, 0, 1)
		dst[2] = clamp((src[2]+128)/255*f, 0, 1)
		return
	}
	dst[0] = clamp(src[0]*pcsXYZScale, 0, 1)
	dst[1] = clamp(src[1]*pcsXYZScale, 0, 1)
	dst[2] = clamp(src[2]*pcsXYZScale, 0, 1)
}

// decodePCS converts the LUT's normalised output encoding to natural
// PCS values, in place.
func (t *profileTransform) decodePCS(v []float64) {
	if t.profile.PCS == PCSLabSpace {
		f := 1.0
		if t.labLegacy {
			f = labLegacyScale
		}
		v[0] = v[0] / f * 100
		v[1] = v[1]/f*255 - 128
		v[2] = v[2]/f*255 - 128
		return
	}
	v[0] /= pcsXYZScale
	v[1] /= pcsXYZScale
	v[2] /= pcsXYZScale
}
