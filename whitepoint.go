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

import "math"

// WhitePointFromTemperature returns the XYZ white point (Y = 1) of a
// CIE daylight illuminant with the given correlated colour temperature
// in kelvin. The supported range is 4000 K to 25000 K; ok is false
// outside it.
func WhitePointFromTemperature(kelvin float64) (white [3]float64, ok bool) {
	t := kelvin
	t2 := t * t
	t3 := t2 * t

	var x float64
	switch {
	case t >= 4000 && t <= 7000:
		x = -4.6070*(1e9/t3) + 2.9678*(1e6/t2) + 0.09911*(1e3/t) + 0.244063
	case t > 7000 && t <= 25000:
		x = -2.0064*(1e9/t3) + 1.9018*(1e6/t2) + 0.24748*(1e3/t) + 0.237040
	default:
		return [3]float64{}, false
	}

	y := -3.000*(x*x) + 2.870*x - 0.275

	return [3]float64{x / y, 1.0, (1 - x - y) / y}, true
}

// isoTemperature holds one entry of Robertson's isotemperature line
// table: the temperature in microreciprocal kelvin, the u, v
// coordinates of the intersection with the blackbody locus, and the
// line's slope.
type isoTemperature struct {
	mirek float64
	ut    float64
	vt    float64
	tt    float64
}

var isoTempData = []isoTemperature{
	{0, 0.18006, 0.26352, -0.24341},
	{10, 0.18066, 0.26589, -0.25479},
	{20, 0.18133, 0.26846, -0.26876},
	{30, 0.18208, 0.27119, -0.28539},
	{40, 0.18293, 0.27407, -0.30470},
	{50, 0.18388, 0.27709, -0.32675},
	{60, 0.18494, 0.28021, -0.35156},
	{70, 0.18611, 0.28342, -0.37915},
	{80, 0.18740, 0.28668, -0.40955},
	{90, 0.18880, 0.28997, -0.44278},
	{100, 0.19032, 0.29326, -0.47888},
	{125, 0.19462, 0.30141, -0.58204},
	{150, 0.19962, 0.30921, -0.70471},
	{175, 0.20525, 0.31647, -0.84901},
	{200, 0.21142, 0.32312, -1.0182},
	{225, 0.21807, 0.32909, -1.2168},
	{250, 0.22511, 0.33439, -1.4512},
	{275, 0.23247, 0.33904, -1.7298},
	{300, 0.24010, 0.34308, -2.0637},
	{325, 0.24702, 0.34655, -2.4681},
	{350, 0.25591, 0.34951, -2.9641},
	{375, 0.26400, 0.35200, -3.5814},
	{400, 0.27218, 0.35407, -4.3633},
	{425, 0.28039, 0.35577, -5.3762},
	{450, 0.28863, 0.35714, -6.7262},
	{475, 0.29685, 0.35823, -8.5955},
	{500, 0.30505, 0.35907, -11.324},
	{525, 0.31320, 0.35968, -15.628},
	{550, 0.32129, 0.36011, -23.325},
	{575, 0.32931, 0.36038, -40.770},
	{600, 0.33724, 0.36051, -116.45},
}

// ColorTemperature computes the correlated colour temperature of a
// white point using Robertson's method. ok is false if the white point
// lies outside the table's range.
func ColorTemperature(white [3]float64) (kelvin float64, ok bool) {
	sum := white[0] + white[1] + white[2]
	if sum == 0 {
		return 0, false
	}
	xs := white[0] / sum
	ys := white[1] / sum

	us := (2 * xs) / (-xs + 6*ys + 1.5)
	vs := (3 * ys) / (-xs + 6*ys + 1.5)

	var di, mi float64
	for j, iso := range isoTempData {
		dj := ((vs - iso.vt) - iso.tt*(us-iso.ut)) / math.Sqrt(1+iso.tt*iso.tt)

		if j != 0 && di/dj < 0 {
			return 1000000.0 / (mi + (di/(di-dj))*(iso.mirek-mi)), true
		}

		di = dj
		mi = iso.mirek
	}

	return 0, false
}
