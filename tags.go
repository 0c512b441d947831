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
	"fmt"
	"unicode/utf16"
)

// The TagType identifies a tag in an ICC profile.
type TagType uint32

func (t TagType) String() string {
	switch t {
	case ProfileDescription:
		return "Profile Description"
	case Copyright:
		return "Copyright"
	case ChromaticAdaption:
		return "Chromatic Adaption"
	case MediaWhitePoint:
		return "Media White Point"
	default:
		bb := []byte{
			byte(t >> 24),
			byte(t >> 16),
			byte(t >> 8),
			byte(t),
		}
		isASCII := true
		for _, c := range bb {
			if c < 0x20 || c > 0x7E {
				isASCII = false
				break
			}
		}
		if isASCII {
			return fmt.Sprintf("%q", string(bb))
		}
		return fmt.Sprintf("0x%08X", uint32(t))
	}
}

// Tag types defined in the ICC specification which the conversion
// machinery understands.
const (
	ProfileDescription TagType = 0x64657363 // "desc"
	Copyright          TagType = 0x63707274 // "cprt"
	ChromaticAdaption  TagType = 0x63686164 // "chad"
	MediaWhitePoint    TagType = 0x77747074 // "wtpt"

	RedMatrixColumn   TagType = 0x7258595A // "rXYZ"
	GreenMatrixColumn TagType = 0x6758595A // "gXYZ"
	BlueMatrixColumn  TagType = 0x6258595A // "bXYZ"
	RedTRC            TagType = 0x72545243 // "rTRC"
	GreenTRC          TagType = 0x67545243 // "gTRC"
	BlueTRC           TagType = 0x62545243 // "bTRC"
	GrayTRC           TagType = 0x6B545243 // "kTRC"

	AToB0 TagType = 0x41324230 // "A2B0"
	AToB1 TagType = 0x41324231 // "A2B1"
	AToB2 TagType = 0x41324232 // "A2B2"
	BToA0 TagType = 0x42324130 // "B2A0"
	BToA1 TagType = 0x42324131 // "B2A1"
	BToA2 TagType = 0x42324132 // "B2A2"
)

// decodeXYZTag decodes an XYZType element into a tristimulus triple.
func decodeXYZTag(data []byte) ([3]float64, error) {
	if len(data) < 20 {
		return [3]float64{}, errInvalidTagData
	}
	if string(data[0:4]) != "XYZ " {
		return [3]float64{}, errUnexpectedType
	}
	return [3]float64{
		getS15Fixed16(data, 8),
		getS15Fixed16(data, 12),
		getS15Fixed16(data, 16),
	}, nil
}

// encodeXYZTag encodes a tristimulus triple as an XYZType element.
func encodeXYZTag(xyz [3]float64) []byte {
	buf := make([]byte, 20)
	copy(buf[0:4], "XYZ ")
	putS15Fixed16(buf, 8, xyz[0])
	putS15Fixed16(buf, 12, xyz[1])
	putS15Fixed16(buf, 16, xyz[2])
	return buf
}

func decodeText(data []byte) (string, error) {
	err := checkType("text", data)
	if err != nil {
		return "", err
	}

	if len(data) < 8 {
		return "", errInvalidTagData
	}
	start := 8
	end := len(data)
	for end-1 > start && data[end-1] == 0 {
		end--
	}
	return string(data[start:end]), nil
}

// MultiLocalizedUnicode represents a localized Unicode string.
type MultiLocalizedUnicode []LocalizedUnicode

// LocalizedUnicode represents a language-country pair.
type LocalizedUnicode struct {
	Language string
	Country  string
	Value    string
}

func decodeMLUC(data []byte) (MultiLocalizedUnicode, error) {
	err := checkType("mluc", data)
	if err != nil {
		return nil, err
	}

	if len(data) < 12 {
		return nil, errInvalidTagData
	}
	n := getUint32(data, 8)

	if n == 0 || uint64(len(data)) < 16+12*uint64(n) {
		return nil, errInvalidTagData
	}
	res := make(MultiLocalizedUnicode, n)
	for i := range res {
		language := string(data[16+12*i : 16+12*i+2])
		country := string(data[16+12*i+2 : 16+12*i+4])
		length := getUint32(data, 16+12*i+4)
		offset := getUint32(data, 16+12*i+8)

		start := uint64(offset)
		end := start + uint64(length)
		if end > uint64(len(data)) || length&1 != 0 {
			return nil, errInvalidTagData
		}

		d16 := make([]uint16, length/2)
		for j := range d16 {
			d16[j] = uint16(data[start+2*uint64(j)])<<8 | uint16(data[start+2*uint64(j)+1])
		}
		res[i] = LocalizedUnicode{
			Language: language,
			Country:  country,
			Value:    string(utf16.Decode(d16)),
		}
	}
	return res, nil
}

// encodeMLUC encodes a single "en"/"US" string as a
// multiLocalizedUnicodeType element.
func encodeMLUC(value string) []byte {
	u16 := utf16.Encode([]rune(value))
	buf := make([]byte, 28+2*len(u16))
	copy(buf[0:4], "mluc")
	putUint32(buf, 8, 1)
	putUint32(buf, 12, 12)
	copy(buf[16:18], "en")
	copy(buf[18:20], "US")
	putUint32(buf, 20, uint32(2*len(u16)))
	putUint32(buf, 24, 28)
	for i, v := range u16 {
		putUint16(buf, 28+2*i, v)
	}
	return buf
}

func checkType(typeID string, data []byte) error {
	bb := []byte(typeID)
	for i, b := range bb {
		if i >= len(data) || data[i] != b {
			return errUnexpectedType
		}
	}
	return nil
}

// Copyright returns the profile's copyright notice, if any.
func (p *Profile) Copyright() (MultiLocalizedUnicode, error) {
	tag, ok := p.TagData[Copyright]
	if !ok {
		return nil, errMissingTag
	}
	val, err := decodeMLUC(tag)
	if err != errUnexpectedType {
		return val, err
	}

	s, err := decodeText(tag)
	if err != nil {
		return nil, err
	}
	val = MultiLocalizedUnicode{
		{
			Language: "en",
			Country:  "US",
			Value:    s,
		},
	}
	return val, nil
}

var (
	errMissingTag     = errors.New("missing tag")
	errUnexpectedType = errors.New("unexpected tag data type")
	errInvalidTagData = errors.New("invalid tag data")
)
