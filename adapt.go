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
	"fmt"
	"math"
	"sync"
)

// AdaptationMethod names a chromatic adaptation transform. The built-in
// methods are [Bradford], [VonKries], [XYZScaling], [CAT02] and [Sharp];
// further methods can be registered with [AddChromaticAdaption].
type AdaptationMethod string

// Built-in chromatic adaptation methods.
const (
	Bradford   AdaptationMethod = "Bradford"
	VonKries   AdaptationMethod = "VonKries"
	XYZScaling AdaptationMethod = "XYZScaling"
	CAT02      AdaptationMethod = "CAT02"
	Sharp      AdaptationMethod = "Sharp"
)

// Cone response matrices for the built-in methods, XYZ to cone space.
var builtinConeMatrices = map[AdaptationMethod][9]float64{
	Bradford: {
		0.8951, 0.2664, -0.1614,
		-0.7502, 1.7135, 0.0367,
		0.0389, -0.0685, 1.0296,
	},
	VonKries: {
		0.40024, 0.70760, -0.08081,
		-0.22630, 1.16532, 0.04570,
		0.00000, 0.00000, 0.91822,
	},
	XYZScaling: {
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	},
	CAT02: {
		0.7328, 0.4296, -0.1624,
		-0.7036, 1.6975, 0.0061,
		0.0030, 0.0136, 0.9834,
	},
	Sharp: {
		1.2694, -0.0988, -0.1706,
		-0.8364, 1.8006, 0.0357,
		0.0297, -0.0315, 1.0018,
	},
}

type adaptKey struct {
	method   AdaptationMethod
	from, to [3]float64
}

var (
	adaptCacheMu sync.RWMutex
	adaptCache   = make(map[adaptKey][]float64)
)

// adaptationMatrix returns the combined 3x3 matrix mapping XYZ values
// observed under the white point from to XYZ values under to:
//
//	A = M^-1 · diag(M·to / M·from) · M
//
// where M is the method's cone response matrix. Results are cached per
// (method, from, to).
func adaptationMatrix(method AdaptationMethod, from, to [3]float64) ([]float64, error) {
	Init()
	key := adaptKey{method: method, from: from, to: to}

	adaptCacheMu.RLock()
	m, ok := adaptCache[key]
	adaptCacheMu.RUnlock()
	if ok {
		return m, nil
	}

	registryMu.RLock()
	cone, ok := coneMatrices[method]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown adaptation method %q", ErrNoConversion, method)
	}

	coneInv := invertMatrix3x3(cone[:])
	if coneInv == nil {
		return nil, fmt.Errorf("%w: singular cone matrix for %q", ErrNoConversion, method)
	}

	var srcCone, dstCone [3]float64
	transform3(srcCone[:], cone[:], from[:])
	transform3(dstCone[:], cone[:], to[:])
	for i := range 3 {
		if math.Abs(srcCone[i]) < 1e-12 {
			return nil, fmt.Errorf("%w: degenerate white point for %q", ErrNoConversion, method)
		}
	}

	scaled := make([]float64, 9)
	for i := range 3 {
		s := dstCone[i] / srcCone[i]
		scaled[i*3] = cone[i*3] * s
		scaled[i*3+1] = cone[i*3+1] * s
		scaled[i*3+2] = cone[i*3+2] * s
	}
	m = mulMatrix3x3(coneInv, scaled)

	adaptCacheMu.Lock()
	adaptCache[key] = m
	adaptCacheMu.Unlock()

	return m, nil
}

// adaptationFor returns the adaptation method to use for a conversion
// between the two spaces: a per-space override if either side sets one,
// the process-wide default otherwise.
func adaptationFor(in, out *Space) AdaptationMethod {
	if in != nil && in.Adaptation != "" {
		return in.Adaptation
	}
	if out != nil && out.Adaptation != "" {
		return out.Adaptation
	}
	return DefaultAdaptation()
}
