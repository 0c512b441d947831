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

// Package cms converts colours between colour spaces.
//
// The package supports device RGB spaces (sRGB, Adobe RGB, ProPhoto,
// Rec. 709, Rec. 2020, and user-defined primaries), the CIE spaces XYZ,
// Lab, Luv, LCh and xyY, the device-derived spaces HSV, HSL, YCbCr, CMY
// and CMYK, and colour spaces described by ICC profiles. Conversions
// between spaces with different reference whites apply a chromatic
// adaptation transform (Bradford by default).
//
// # Converting Colours
//
// A [Converter] binds an input and an output [Color]. Construction plans
// the conversion once; [Converter.Convert] then runs the assembled
// pipeline and is cheap enough to call in a pixel loop:
//
//	in := cms.NewColor(cms.AdobeRGB, 0.35, 0.17, 0.63)
//	out := cms.NewColor(cms.NewXYZSpace(cms.D50))
//	conv, err := cms.NewConverter(in, out)
//	if err != nil {
//	    // handle error
//	}
//	defer conv.Close()
//
//	conv.Convert() // reads in.Values, writes out.Values
//
// The converter reads in.Values and writes out.Values in place. Callers
// may change in.Values between calls; that is the intended usage. The
// two value slices must not be resized or replaced while the converter
// is open.
//
// # ICC Profiles
//
// Use [DecodeProfile] to read an ICC profile, then bind a colour to its
// device side with [Profile.DeviceSpace] or to its connection space with
// [Profile.PCSSpace]:
//
//	p, err := cms.DecodeProfile(data)
//	in := cms.NewColor(p.DeviceSpace(), 0.5, 0.5, 0.5)
//	out := cms.NewColor(cms.NewLabSpace(cms.D50))
//
// A conversion can traverse up to two profiles (device to device via the
// profile connection space), honouring the ICC profile class rules for
// DeviceLink and Abstract profiles.
package cms

import "errors"

// Errors reported by the package. Planning errors are wrapped around
// [ErrNoConversion]; profile errors around [ErrInvalidProfile]. Use
// [errors.Is] to test for them.
var (
	// ErrMissingColor is returned by NewConverter if either colour is nil.
	ErrMissingColor = errors.New("cms: missing colour")

	// ErrNoConversion is returned by NewConverter if no conversion
	// between the two colour spaces exists.
	ErrNoConversion = errors.New("cms: no conversion between the given colour spaces")

	// ErrInvalidProfile indicates that an ICC profile's tags are
	// inconsistent with its declared header fields.
	ErrInvalidProfile = errors.New("cms: inconsistent ICC profile")

	// ErrClosed is returned by Convert after the converter has been closed.
	ErrClosed = errors.New("cms: converter is closed")
)

// Converter converts colours from one colour space to another.
//
// A Converter is created with [NewConverter] and bound to one input and
// one output [Color] for its whole lifetime. All planning and resource
// allocation happens at construction; [Converter.Convert] only executes
// the assembled pipeline.
//
// A Converter is not safe for concurrent use. Different Converter
// instances are independent and may run concurrently on different
// goroutines, provided they do not share Colors.
type Converter struct {
	in, out *Color

	data   *convData
	stages []boundStage

	closed bool
}

// NewConverter creates a converter from the space of in to the space of out.
//
// The converter borrows in.Values and out.Values until it is closed.
// NewConverter returns an error wrapping [ErrNoConversion] if the two
// spaces cannot be bridged, and [ErrMissingColor] if either colour is nil.
func NewConverter(in, out *Color) (*Converter, error) {
	if in == nil || out == nil {
		return nil, ErrMissingColor
	}
	Init()

	plan, err := buildPlan(in, out)
	if err != nil {
		return nil, err
	}

	data, stages, err := assemble(plan, in, out)
	if err != nil {
		return nil, err
	}

	return &Converter{
		in:     in,
		out:    out,
		data:   data,
		stages: stages,
	}, nil
}

// Convert reads the input colour's values and writes the converted
// values to the output colour. It performs no validation and no
// allocation; the only possible error is [ErrClosed].
func (c *Converter) Convert() error {
	if c.closed {
		return ErrClosed
	}
	bufs := c.data.bufs
	for i := range c.stages {
		s := &c.stages[i]
		s.apply(bufs[s.dst], bufs[s.src], s.st)
	}
	return nil
}

// Close releases the converter's derived tables and scratch buffers and
// ends the borrow of the input and output value slices. Close is
// idempotent; after the first call, Convert returns [ErrClosed].
func (c *Converter) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.stages = nil
	c.data = nil
	c.in = nil
	c.out = nil
	return nil
}
