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

// NewRGBProfile builds a matrix/TRC display profile describing the
// given RGB colour space. The primaries are chromatically adapted to
// the D50 profile connection space using the Bradford transform, as
// real display profiles do.
func NewRGBProfile(space *Space) (*Profile, error) {
	if space.Kind != RGBSpace || space.RGB == nil {
		return nil, fmt.Errorf("%w: not an RGB colour space", ErrNoConversion)
	}

	m := rgbToXYZMatrix(space)
	if m == nil {
		return nil, fmt.Errorf("%w: degenerate RGB primaries", ErrNoConversion)
	}
	adapt, err := adaptationMatrix(Bradford, space.WhitePoint, pcsWhitePoint)
	if err != nil {
		return nil, err
	}
	m = mulMatrix3x3(adapt, m)

	trc := space.RGB.TRC.Encode()

	p := &Profile{
		Class:      DisplayDeviceProfile,
		ColorSpace: RGBSpace,
		PCS:        PCSXYZSpace,
		TagData:    make(map[TagType][]byte),
	}
	p.TagData[RedMatrixColumn] = encodeXYZTag([3]float64{m[0], m[3], m[6]})
	p.TagData[GreenMatrixColumn] = encodeXYZTag([3]float64{m[1], m[4], m[7]})
	p.TagData[BlueMatrixColumn] = encodeXYZTag([3]float64{m[2], m[5], m[8]})
	p.TagData[RedTRC] = trc
	p.TagData[GreenTRC] = trc
	p.TagData[BlueTRC] = trc
	p.TagData[MediaWhitePoint] = encodeXYZTag(space.WhitePoint)
	p.TagData[ProfileDescription] = encodeMLUC("RGB display profile")
	p.TagData[Copyright] = encodeMLUC("no copyright, use freely")

	return p, nil
}

// NewRGBLutProfile builds a LUT-based display profile for the given RGB
// colour space with a Lab profile connection space. The device-to-PCS
// table is sampled on a grid^3 CLUT; the PCS-to-device table is the
// matrix/TRC inverse sampled on the same grid. The tables use the
// 16-bit legacy Lab encoding.
func NewRGBLutProfile(space *Space, grid int) (*Profile, error) {
	if space.Kind != RGBSpace || space.RGB == nil {
		return nil, fmt.Errorf("%w: not an RGB colour space", ErrNoConversion)
	}
	if grid < 2 {
		grid = 17
	}

	m := rgbToXYZMatrix(space)
	if m == nil {
		return nil, fmt.Errorf("%w: degenerate RGB primaries", ErrNoConversion)
	}
	adapt, err := adaptationMatrix(Bradford, space.WhitePoint, pcsWhitePoint)
	if err != nil {
		return nil, err
	}
	m = mulMatrix3x3(adapt, m)
	mInv := invertMatrix3x3(m)
	if mInv == nil {
		return nil, fmt.Errorf("%w: degenerate RGB primaries", ErrNoConversion)
	}
	trc := space.RGB.TRC

	// device -> PCS: sample encoded RGB on the grid, store legacy Lab
	a2bCLUT := make([]float64, grid*grid*grid*3)
	var xyz, lab [3]float64
	idx := 0
	for r := range grid {
		for g := range grid {
			for b := range grid {
				lin := [3]float64{
					trc.Evaluate(float64(r) / float64(grid-1)),
					trc.Evaluate(float64(g) / float64(grid-1)),
					trc.Evaluate(float64(b) / float64(grid-1)),
				}
				transform3(xyz[:], m, lin[:])
				xyzToLab(lab[:], xyz[:], pcsWhitePoint)

				a2bCLUT[idx] = clamp(lab[0]/100*labLegacyScale, 0, 1)
				a2bCLUT[idx+1] = clamp((lab[1]+128)/255*labLegacyScale, 0, 1)
				a2bCLUT[idx+2] = clamp((lab[2]+128)/255*labLegacyScale, 0, 1)
				idx += 3
			}
		}
	}
	a2b := NewLut16(3, 3, grid, nil, nil, a2bCLUT, nil)

	// PCS -> device: sample encoded Lab on the grid, store encoded RGB
	b2aCLUT := make([]float64, grid*grid*grid*3)
	idx = 0
	for l := range grid {
		for ai := range grid {
			for bi := range grid {
				lab[0] = float64(l) / float64(grid-1) / labLegacyScale * 100
				lab[1] = float64(ai)/float64(grid-1)/labLegacyScale*255 - 128
				lab[2] = float64(bi)/float64(grid-1)/labLegacyScale*255 - 128
				labToXYZ(xyz[:], lab[:], pcsWhitePoint)
				transform3(xyz[:], mInv, xyz[:])

				b2aCLUT[idx] = trc.Invert(clamp(xyz[0], 0, 1))
				b2aCLUT[idx+1] = trc.Invert(clamp(xyz[1], 0, 1))
				b2aCLUT[idx+2] = trc.Invert(clamp(xyz[2], 0, 1))
				idx += 3
			}
		}
	}
	b2a := NewLut16(3, 3, grid, nil, nil, b2aCLUT, nil)

	a2bData, err := a2b.Encode()
	if err != nil {
		return nil, err
	}
	b2aData, err := b2a.Encode()
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Class:      DisplayDeviceProfile,
		ColorSpace: RGBSpace,
		PCS:        PCSLabSpace,
		TagData:    make(map[TagType][]byte),
	}
	p.TagData[AToB0] = a2bData
	p.TagData[BToA0] = b2aData
	p.TagData[MediaWhitePoint] = encodeXYZTag(space.WhitePoint)
	p.TagData[ProfileDescription] = encodeMLUC("RGB LUT display profile")
	p.TagData[Copyright] = encodeMLUC("no copyright, use freely")

	return p, nil
}

// NewDeviceLinkProfile builds a device link profile wrapping the given
// LUT. The link maps from the device space in to the device space out;
// its "PCS" header field carries the output space, as the ICC
// specification requires for device links.
func NewDeviceLinkProfile(in, out ColorSpace, lut Lut) (*Profile, error) {
	if lut.InputChannels() != in.NumComponents() || lut.OutputChannels() != out.NumComponents() {
		return nil, fmt.Errorf("%w: LUT geometry does not match the device spaces",
			ErrNoConversion)
	}
	data, err := lut.Encode()
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Class:      DeviceLinkProfile,
		ColorSpace: in,
		PCS:        out,
		TagData:    make(map[TagType][]byte),
	}
	p.TagData[AToB0] = data
	p.TagData[ProfileDescription] = encodeMLUC("device link profile")
	p.TagData[Copyright] = encodeMLUC("no copyright, use freely")

	return p, nil
}
