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
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Interpolation selects the CLUT interpolation algorithm.
type Interpolation int

const (
	// Tetrahedral interpolation for 3D tables, multilinear otherwise.
	Tetrahedral Interpolation = iota

	// Trilinear interpolation for 3D tables, multilinear otherwise.
	Trilinear

	// NLinear forces multilinear interpolation for all table dimensions.
	NLinear
)

func (ip Interpolation) String() string {
	switch ip {
	case Tetrahedral:
		return "tetrahedral"
	case Trilinear:
		return "trilinear"
	case NLinear:
		return "nlinear"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(ip))
	}
}

// Process-wide defaults. Changes take effect for converters constructed
// afterwards; assembled pipelines are unaffected.
var (
	settingsMu sync.RWMutex

	defaultAdaptation    = Bradford
	defaultIntent        = RelativeColorimetric
	defaultInterpolation = Tetrahedral
)

// DefaultAdaptation returns the process-wide default chromatic
// adaptation method.
func DefaultAdaptation() AdaptationMethod {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return defaultAdaptation
}

// SetDefaultAdaptation changes the process-wide default chromatic
// adaptation method.
func SetDefaultAdaptation(m AdaptationMethod) {
	settingsMu.Lock()
	defaultAdaptation = m
	settingsMu.Unlock()
}

// DefaultIntent returns the process-wide default rendering intent used
// when selecting ICC lookup tables.
func DefaultIntent() RenderingIntent {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return defaultIntent
}

// SetDefaultIntent changes the process-wide default rendering intent.
func SetDefaultIntent(ri RenderingIntent) {
	settingsMu.Lock()
	defaultIntent = ri
	settingsMu.Unlock()
}

// DefaultInterpolation returns the process-wide CLUT interpolation mode.
func DefaultInterpolation() Interpolation {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return defaultInterpolation
}

// SetDefaultInterpolation changes the process-wide CLUT interpolation
// mode.
func SetDefaultInterpolation(ip Interpolation) {
	settingsMu.Lock()
	defaultInterpolation = ip
	settingsMu.Unlock()
}

// settingsFile is the TOML shape accepted by LoadSettings.
type settingsFile struct {
	Adaptation    string `toml:"adaptation"`
	Intent        string `toml:"intent"`
	Interpolation string `toml:"interpolation"`
}

// LoadSettings applies process-wide defaults from TOML data. All keys
// are optional:
//
//	adaptation = "Bradford"        # or VonKries, XYZScaling, CAT02, Sharp
//	intent = "relative"            # or perceptual, saturation, absolute
//	interpolation = "tetrahedral"  # or trilinear, nlinear
func LoadSettings(data []byte) error {
	var f settingsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("cms: cannot parse settings: %w", err)
	}

	if f.Adaptation != "" {
		SetDefaultAdaptation(AdaptationMethod(f.Adaptation))
	}

	if f.Intent != "" {
		var ri RenderingIntent
		switch f.Intent {
		case "perceptual":
			ri = Perceptual
		case "relative":
			ri = RelativeColorimetric
		case "saturation":
			ri = Saturation
		case "absolute":
			ri = AbsoluteColorimetric
		default:
			return fmt.Errorf("cms: unknown rendering intent %q", f.Intent)
		}
		SetDefaultIntent(ri)
	}

	if f.Interpolation != "" {
		var ip Interpolation
		switch f.Interpolation {
		case "tetrahedral":
			ip = Tetrahedral
		case "trilinear":
			ip = Trilinear
		case "nlinear":
			ip = NLinear
		default:
			return fmt.Errorf("cms: unknown interpolation mode %q", f.Interpolation)
		}
		SetDefaultInterpolation(ip)
	}

	return nil
}
