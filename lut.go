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

// Lut represents a colour lookup table from an ICC profile.
// The four concrete implementations are [Lut8], [Lut16], [LutAToB], and
// [LutBToA].
//
// Apply writes OutputChannels() values into dst from InputChannels()
// values in src; inputs and outputs are normalised to [0, 1]. Apply
// uses pre-allocated scratch space and does not allocate, so a Lut must
// not be shared between concurrently running converters.
type Lut interface {
	// Apply transforms src through the LUT into dst.
	Apply(dst, src []float64)

	// Encode converts the LUT to ICC tag data in its native format.
	Encode() ([]byte, error)

	// InputChannels returns the number of input channels.
	InputChannels() int

	// OutputChannels returns the number of output channels.
	OutputChannels() int
}

// DecodeLut decodes a Lut from ICC tag data.
// This is used for AToB0, AToB1, AToB2, BToA0, BToA1, and BToA2 tags.
// Supported types: [Lut8] (mft1), [Lut16] (mft2), [LutAToB] (mAB), [LutBToA] (mBA).
func DecodeLut(data []byte) (Lut, error) {
	if len(data) < 8 {
		return nil, errInvalidTagData
	}

	typeID := string(data[0:4])
	switch typeID {
	case "mft1":
		return decodeLut8(data)
	case "mft2":
		return decodeLut16(data)
	case "mAB ":
		return decodeLutAToB(data)
	case "mBA ":
		return decodeLutBToA(data)
	default:
		return nil, errUnexpectedType
	}
}

// lutScratch is the shared work area for in-place LUT application.
type lutScratch struct {
	a      []float64
	interp Interpolation
	nd     *interpScratch // for non-3D or NLinear lookups
}

func newLutScratch(inputChannels, outputChannels int, gridPoints []int) lutScratch {
	n := max(inputChannels, outputChannels, 3)
	s := lutScratch{
		a:      make([]float64, n),
		interp: DefaultInterpolation(),
	}
	if len(gridPoints) > 0 {
		s.nd = newInterpScratch(gridPoints, outputChannels)
	}
	return s
}

// lookupCLUT interpolates the CLUT at the position given by the first
// inChannels entries of src and writes outChannels values to dst.
// dst and src must be distinct.
func (s *lutScratch) lookupCLUT(dst, clut []float64, gridPoints []int, outChannels int, src []float64) {
	uniform3 := len(gridPoints) == 3 &&
		gridPoints[0] == gridPoints[1] && gridPoints[1] == gridPoints[2]
	if uniform3 && s.interp != NLinear {
		if s.interp == Trilinear {
			trilinearInterp3D(dst, clut, gridPoints[0], outChannels, src[0], src[1], src[2])
		} else {
			tetrahedralInterp3D(dst, clut, gridPoints[0], outChannels, src[0], src[1], src[2])
		}
		return
	}
	multilinearInterp(dst, clut, gridPoints, s.nd, outChannels, src[:len(gridPoints)])
}

func applyCurvesInPlace(curves []*Curve, v []float64, n int) {
	for i := 0; i < n; i++ {
		if i < len(curves) && curves[i] != nil {
			v[i] = curves[i].Evaluate(v[i])
		}
	}
}

func applyMatrix3x3InPlace(m []float64, v []float64) {
	if m == nil {
		return
	}
	transform3(v, m, v)
}

func applyMatrix3x4InPlace(m []float64, v []float64) {
	if m == nil {
		return
	}
	x, y, z := v[0], v[1], v[2]
	v[0] = m[0]*x + m[1]*y + m[2]*z + m[9]
	v[1] = m[3]*x + m[4]*y + m[5]*z + m[10]
	v[2] = m[6]*x + m[7]*y + m[8]*z + m[11]
}

func clampInPlace(v []float64, n int) {
	for i := 0; i < n; i++ {
		v[i] = clamp(v[i], 0, 1)
	}
}

// ----------------------------------------------------------------------------
// Lut8 - lut8Type (mft1)
// ----------------------------------------------------------------------------

// Lut8 represents an 8-bit LUT (lut8Type, tag signature "mft1").
// Processing order: Matrix → InputCurves → CLUT → OutputCurves
type Lut8 struct {
	inputChannels  int
	outputChannels int
	gridPoints     []int     // same value for all dimensions
	matrix         []float64 // 3×3, nil if identity
	inputCurves    []*Curve  // one per input channel
	clut           []float64 // flattened n-dimensional table, normalised [0,1]
	outputCurves   []*Curve  // one per output channel

	scratch lutScratch
}

func (l *Lut8) InputChannels() int  { return l.inputChannels }
func (l *Lut8) OutputChannels() int { return l.outputChannels }

// Apply transforms src through the LUT into dst.
// Processing order: Matrix → InputCurves → CLUT → OutputCurves
func (l *Lut8) Apply(dst, src []float64) {
	if len(src) < l.inputChannels || len(dst) < l.outputChannels {
		return
	}
	v := l.scratch.a
	copy(v[:l.inputChannels], src)

	// matrix (applied first for lut8/lut16)
	if l.inputChannels == 3 {
		applyMatrix3x3InPlace(l.matrix, v)
	}
	applyCurvesInPlace(l.inputCurves, v, l.inputChannels)

	if l.clut != nil {
		l.scratch.lookupCLUT(dst, l.clut, l.gridPoints, l.outputChannels, v)
	} else {
		copy(dst[:l.outputChannels], v)
	}

	applyCurvesInPlace(l.outputCurves, dst, l.outputChannels)
	clampInPlace(dst, l.outputChannels)
}

// Encode converts the LUT to lut8Type (mft1) format.
func (l *Lut8) Encode() ([]byte, error) {
	grid := 0
	if len(l.gridPoints) > 0 {
		grid = l.gridPoints[0]
	}
	inputTableSize := 256 * l.inputChannels
	clutSize := computeCLUTSizeUniform(grid, l.inputChannels, l.outputChannels)
	outputTableSize := 256 * l.outputChannels
	totalSize := 48 + inputTableSize + clutSize + outputTableSize

	buf := make([]byte, totalSize)
	copy(buf[0:4], "mft1")
	buf[8] = byte(l.inputChannels)
	buf[9] = byte(l.outputChannels)
	buf[10] = byte(grid)

	// write matrix (identity if nil)
	matrix := l.matrix
	if matrix == nil {
		matrix = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
	for i := range 9 {
		putS15Fixed16(buf, 12+i*4, matrix[i])
	}

	// write input tables (256 entries per channel, 8-bit)
	offset := 48
	for ch := range l.inputChannels {
		var curve *Curve
		if ch < len(l.inputCurves) {
			curve = l.inputCurves[ch]
		}
		for i := range 256 {
			val := float64(i) / 255.0
			if curve != nil {
				val = curve.Evaluate(val)
			}
			buf[offset+ch*256+i] = byte(clamp(val, 0, 1) * 255.0)
		}
	}
	offset += inputTableSize

	// write CLUT (8-bit values)
	for i, v := range l.clut {
		buf[offset+i] = byte(clamp(v, 0, 1) * 255.0)
	}
	offset += clutSize

	// write output tables (256 entries per channel, 8-bit)
	for ch := range l.outputChannels {
		var curve *Curve
		if ch < len(l.outputCurves) {
			curve = l.outputCurves[ch]
		}
		for i := range 256 {
			val := float64(i) / 255.0
			if curve != nil {
				val = curve.Evaluate(val)
			}
			buf[offset+ch*256+i] = byte(clamp(val, 0, 1) * 255.0)
		}
	}

	return buf, nil
}

func decodeLut8(data []byte) (*Lut8, error) {
	if len(data) < 48 {
		return nil, errInvalidTagData
	}

	inputChannels := int(data[8])
	outputChannels := int(data[9])
	clutPoints := int(data[10])

	if inputChannels == 0 || outputChannels == 0 || inputChannels > 15 || outputChannels > 15 {
		return nil, errInvalidTagData
	}

	// matrix at offset 12
	matrix := make([]float64, 9)
	for i := range 9 {
		matrix[i] = getS15Fixed16(data, 12+i*4)
	}
	if isIdentityMatrix3x3(matrix) {
		matrix = nil
	}

	// input tables: 256 entries per channel
	inputTableStart := 48
	inputTableSize := 256 * inputChannels
	if len(data) < inputTableStart+inputTableSize {
		return nil, errInvalidTagData
	}

	inputCurves := make([]*Curve, inputChannels)
	for ch := range inputChannels {
		table := make([]uint16, 256)
		for i := range 256 {
			// scale 8-bit to 16-bit: 0x00->0x0000, 0xFF->0xFFFF
			v := uint16(data[inputTableStart+ch*256+i])
			table[i] = v<<8 | v
		}
		inputCurves[ch] = &Curve{Table: table}
	}

	// CLUT size
	clutSize := computeCLUTSizeUniform(clutPoints, inputChannels, outputChannels)
	if clutSize == 0 {
		return nil, errInvalidTagData
	}

	clutStart := inputTableStart + inputTableSize
	if len(data) < clutStart+clutSize {
		return nil, errInvalidTagData
	}

	clut := make([]float64, clutSize)
	for i := range clutSize {
		clut[i] = float64(data[clutStart+i]) / 255.0
	}

	// output tables: 256 entries per channel
	outputTableStart := clutStart + clutSize
	outputTableSize := 256 * outputChannels
	if len(data) < outputTableStart+outputTableSize {
		return nil, errInvalidTagData
	}

	outputCurves := make([]*Curve, outputChannels)
	for ch := range outputChannels {
		table := make([]uint16, 256)
		for i := range 256 {
			v := uint16(data[outputTableStart+ch*256+i])
			table[i] = v<<8 | v
		}
		outputCurves[ch] = &Curve{Table: table}
	}

	gridPoints := uniformGrid(clutPoints, inputChannels)
	return &Lut8{
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
		gridPoints:     gridPoints,
		matrix:         matrix,
		inputCurves:    inputCurves,
		clut:           clut,
		outputCurves:   outputCurves,
		scratch:        newLutScratch(inputChannels, outputChannels, gridPoints),
	}, nil
}

// ----------------------------------------------------------------------------
// Lut16 - lut16Type (mft2)
// ----------------------------------------------------------------------------

// Lut16 represents a 16-bit LUT (lut16Type, tag signature "mft2").
// Processing order: Matrix → InputCurves → CLUT → OutputCurves
type Lut16 struct {
	inputChannels   int
	outputChannels  int
	gridPoints      []int     // same value for all dimensions
	matrix          []float64 // 3×3, nil if identity
	inputTableSize  int       // entries per input curve
	outputTableSize int       // entries per output curve
	inputCurves     []*Curve  // one per input channel
	clut            []float64 // flattened n-dimensional table, normalised [0,1]
	outputCurves    []*Curve  // one per output channel

	scratch lutScratch
}

// NewLut16 creates a 16-bit LUT from its parts. The clut slice holds
// grid^inputChannels entries of outputChannels normalised values each,
// with the first input channel varying slowest. Nil curves are treated
// as identity; the matrix may be nil.
func NewLut16(inputChannels, outputChannels, grid int, inputCurves []*Curve, matrix []float64, clut []float64, outputCurves []*Curve) *Lut16 {
	gridPoints := uniformGrid(grid, inputChannels)
	return &Lut16{
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
		gridPoints:     gridPoints,
		matrix:         matrix,
		inputCurves:    inputCurves,
		clut:           clut,
		outputCurves:   outputCurves,
		scratch:        newLutScratch(inputChannels, outputChannels, gridPoints),
	}
}

func (l *Lut16) InputChannels() int  { return l.inputChannels }
func (l *Lut16) OutputChannels() int { return l.outputChannels }

// Apply transforms src through the LUT into dst.
// Processing order: Matrix → InputCurves → CLUT → OutputCurves
func (l *Lut16) Apply(dst, src []float64) {
	if len(src) < l.inputChannels || len(dst) < l.outputChannels {
		return
	}
	v := l.scratch.a
	copy(v[:l.inputChannels], src)

	if l.inputChannels == 3 {
		applyMatrix3x3InPlace(l.matrix, v)
	}
	applyCurvesInPlace(l.inputCurves, v, l.inputChannels)

	if l.clut != nil {
		l.scratch.lookupCLUT(dst, l.clut, l.gridPoints, l.outputChannels, v)
	} else {
		copy(dst[:l.outputChannels], v)
	}

	applyCurvesInPlace(l.outputCurves, dst, l.outputChannels)
	clampInPlace(dst, l.outputChannels)
}

// Encode converts the LUT to lut16Type (mft2) format.
func (l *Lut16) Encode() ([]byte, error) {
	grid := 0
	if len(l.gridPoints) > 0 {
		grid = l.gridPoints[0]
	}
	inputTableEntries := l.inputTableSize
	if inputTableEntries == 0 {
		inputTableEntries = 256
	}
	outputTableEntries := l.outputTableSize
	if outputTableEntries == 0 {
		outputTableEntries = 256
	}

	inputTableBytes := inputTableEntries * l.inputChannels * 2
	clutSize := computeCLUTSizeUniform(grid, l.inputChannels, l.outputChannels)
	outputTableBytes := outputTableEntries * l.outputChannels * 2
	totalSize := 52 + inputTableBytes + clutSize*2 + outputTableBytes

	buf := make([]byte, totalSize)
	copy(buf[0:4], "mft2")
	buf[8] = byte(l.inputChannels)
	buf[9] = byte(l.outputChannels)
	buf[10] = byte(grid)
	putUint16(buf, 48, uint16(inputTableEntries))
	putUint16(buf, 50, uint16(outputTableEntries))

	// write matrix (identity if nil)
	matrix := l.matrix
	if matrix == nil {
		matrix = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	}
	for i := range 9 {
		putS15Fixed16(buf, 12+i*4, matrix[i])
	}

	// write input tables (16-bit)
	offset := 52
	for ch := range l.inputChannels {
		var curve *Curve
		if ch < len(l.inputCurves) {
			curve = l.inputCurves[ch]
		}
		for i := range inputTableEntries {
			val := float64(i) / float64(inputTableEntries-1)
			if curve != nil {
				val = curve.Evaluate(val)
			}
			putUint16(buf, offset+(ch*inputTableEntries+i)*2, uint16(clamp(val, 0, 1)*65535.0))
		}
	}
	offset += inputTableBytes

	// write CLUT (16-bit values)
	for i, v := range l.clut {
		putUint16(buf, offset+i*2, uint16(clamp(v, 0, 1)*65535.0))
	}
	offset += clutSize * 2

	// write output tables (16-bit)
	for ch := range l.outputChannels {
		var curve *Curve
		if ch < len(l.outputCurves) {
			curve = l.outputCurves[ch]
		}
		for i := range outputTableEntries {
			val := float64(i) / float64(outputTableEntries-1)
			if curve != nil {
				val = curve.Evaluate(val)
			}
			putUint16(buf, offset+(ch*outputTableEntries+i)*2, uint16(clamp(val, 0, 1)*65535.0))
		}
	}

	return buf, nil
}

func decodeLut16(data []byte) (*Lut16, error) {
	if len(data) < 52 {
		return nil, errInvalidTagData
	}

	inputChannels := int(data[8])
	outputChannels := int(data[9])
	clutPoints := int(data[10])

	if inputChannels == 0 || outputChannels == 0 || inputChannels > 15 || outputChannels > 15 {
		return nil, errInvalidTagData
	}

	// matrix at offset 12
	matrix := make([]float64, 9)
	for i := range 9 {
		matrix[i] = getS15Fixed16(data, 12+i*4)
	}
	if isIdentityMatrix3x3(matrix) {
		matrix = nil
	}

	inputTableEntries := int(getUint16(data, 48))
	outputTableEntries := int(getUint16(data, 50))
	if inputTableEntries < 2 || outputTableEntries < 2 {
		return nil, errInvalidTagData
	}

	// input tables
	inputTableStart := 52
	inputTableBytes := inputTableEntries * inputChannels * 2
	if len(data) < inputTableStart+inputTableBytes {
		return nil, errInvalidTagData
	}

	inputCurves := make([]*Curve, inputChannels)
	for ch := range inputChannels {
		table := make([]uint16, inputTableEntries)
		for i := range inputTableEntries {
			table[i] = getUint16(data, inputTableStart+(ch*inputTableEntries+i)*2)
		}
		inputCurves[ch] = &Curve{Table: table}
	}

	// CLUT
	clutSize := computeCLUTSizeUniform(clutPoints, inputChannels, outputChannels)
	if clutSize == 0 {
		return nil, errInvalidTagData
	}

	clutStart := inputTableStart + inputTableBytes
	if len(data) < clutStart+clutSize*2 {
		return nil, errInvalidTagData
	}

	clut := make([]float64, clutSize)
	for i := range clutSize {
		clut[i] = float64(getUint16(data, clutStart+i*2)) / 65535.0
	}

	// output tables
	outputTableStart := clutStart + clutSize*2
	outputTableBytes := outputTableEntries * outputChannels * 2
	if len(data) < outputTableStart+outputTableBytes {
		return nil, errInvalidTagData
	}

	outputCurves := make([]*Curve, outputChannels)
	for ch := range outputChannels {
		table := make([]uint16, outputTableEntries)
		for i := range outputTableEntries {
			table[i] = getUint16(data, outputTableStart+(ch*outputTableEntries+i)*2)
		}
		outputCurves[ch] = &Curve{Table: table}
	}

	gridPoints := uniformGrid(clutPoints, inputChannels)
	return &Lut16{
		inputChannels:   inputChannels,
		outputChannels:  outputChannels,
		gridPoints:      gridPoints,
		matrix:          matrix,
		inputTableSize:  inputTableEntries,
		outputTableSize: outputTableEntries,
		inputCurves:     inputCurves,
		clut:            clut,
		outputCurves:    outputCurves,
		scratch:         newLutScratch(inputChannels, outputChannels, gridPoints),
	}, nil
}

// ----------------------------------------------------------------------------
// LutAToB - lutAtoBType (mAB)
// ----------------------------------------------------------------------------

// LutAToB represents an A-to-B LUT (lutAtoBType, tag signature "mAB ").
// Processing order: ACurves → CLUT → MCurves → Matrix → BCurves
type LutAToB struct {
	inputChannels  int
	outputChannels int
	aCurves        []*Curve  // input curves (one per input channel)
	gridPoints     []int     // grid size per dimension
	clut           []float64 // flattened n-dimensional table, normalised [0,1]
	clutPrecision  int       // 1 for 8-bit, 2 for 16-bit (default 2)
	mCurves        []*Curve  // curves between CLUT and matrix
	matrix         []float64 // 3×4, nil if identity
	bCurves        []*Curve  // output curves (one per output channel)

	scratch lutScratch
}

func (l *LutAToB) InputChannels() int  { return l.inputChannels }
func (l *LutAToB) OutputChannels() int { return l.outputChannels }

// Apply transforms src through the LUT into dst.
// Processing order: ACurves → CLUT → MCurves → Matrix → BCurves
func (l *LutAToB) Apply(dst, src []float64) {
	if len(src) < l.inputChannels || len(dst) < l.outputChannels {
		return
	}
	v := l.scratch.a
	copy(v[:l.inputChannels], src)

	applyCurvesInPlace(l.aCurves, v, l.inputChannels)

	if l.clut != nil && len(l.gridPoints) == l.inputChannels {
		l.scratch.lookupCLUT(dst, l.clut, l.gridPoints, l.outputChannels, v)
	} else {
		copy(dst[:l.outputChannels], v)
	}

	if l.outputChannels == 3 {
		applyCurvesInPlace(l.mCurves, dst, 3)
		applyMatrix3x4InPlace(l.matrix, dst)
	}
	applyCurvesInPlace(l.bCurves, dst, l.outputChannels)
	clampInPlace(dst, l.outputChannels)
}

// Encode converts the LUT to lutAtoBType (mAB) format.
func (l *LutAToB) Encode() ([]byte, error) {
	return encodeLutAB(l.inputChannels, l.outputChannels, l.aCurves, l.gridPoints, l.clut, l.clutPrecision, l.mCurves, l.matrix, l.bCurves, false)
}

func decodeLutAToB(data []byte) (*LutAToB, error) {
	if len(data) < 32 {
		return nil, errInvalidTagData
	}

	inputChannels := int(data[8])
	outputChannels := int(data[9])

	if inputChannels == 0 || outputChannels == 0 || inputChannels > 15 || outputChannels > 15 {
		return nil, errInvalidTagData
	}

	bCurveOffset := getUint32(data, 12)
	matrixOffset := getUint32(data, 16)
	mCurveOffset := getUint32(data, 20)
	clutOffset := getUint32(data, 24)
	aCurveOffset := getUint32(data, 28)

	lut := &LutAToB{
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
	}

	// decode B curves (output curves for mAB)
	if bCurveOffset != 0 {
		curves, err := decodeCurvesAtOffset(data, int(bCurveOffset), outputChannels)
		if err != nil {
			return nil, err
		}
		lut.bCurves = curves
	}

	// decode A curves (input curves for mAB)
	if aCurveOffset != 0 {
		curves, err := decodeCurvesAtOffset(data, int(aCurveOffset), inputChannels)
		if err != nil {
			return nil, err
		}
		lut.aCurves = curves
	}

	// decode matrix (3x4)
	if matrixOffset != 0 {
		matrix, err := decodeMatrix3x4(data, int(matrixOffset))
		if err != nil {
			return nil, err
		}
		lut.matrix = matrix
	}

	// M curves always operate on the 3 matrix channels
	if mCurveOffset != 0 {
		curves, err := decodeCurvesAtOffset(data, int(mCurveOffset), 3)
		if err != nil {
			return nil, err
		}
		lut.mCurves = curves
	}

	// decode CLUT
	if clutOffset != 0 {
		gridPoints, clut, precision, err := decodeCLUT(data, int(clutOffset), inputChannels, outputChannels)
		if err != nil {
			return nil, err
		}
		lut.gridPoints = gridPoints
		lut.clut = clut
		lut.clutPrecision = precision
	}

	lut.scratch = newLutScratch(inputChannels, outputChannels, lut.gridPoints)
	return lut, nil
}

// ----------------------------------------------------------------------------
// LutBToA - lutBtoAType (mBA)
// ----------------------------------------------------------------------------

// LutBToA represents a B-to-A LUT (lutBtoAType, tag signature "mBA ").
// Processing order: BCurves → Matrix → MCurves → CLUT → ACurves
type LutBToA struct {
	inputChannels  int
	outputChannels int
	bCurves        []*Curve  // input curves (one per input channel)
	matrix         []float64 // 3×4, nil if identity
	mCurves        []*Curve  // curves between matrix and CLUT
	gridPoints     []int     // grid size per dimension
	clut           []float64 // flattened n-dimensional table, normalised [0,1]
	clutPrecision  int       // 1 for 8-bit, 2 for 16-bit (default 2)
	aCurves        []*Curve  // output curves (one per output channel)

	scratch lutScratch
}

func (l *LutBToA) InputChannels() int  { return l.inputChannels }
func (l *LutBToA) OutputChannels() int { return l.outputChannels }

// Apply transforms src through the LUT into dst.
// Processing order: BCurves → Matrix → MCurves → CLUT → ACurves
func (l *LutBToA) Apply(dst, src []float64) {
	if len(src) < l.inputChannels || len(dst) < l.outputChannels {
		return
	}
	v := l.scratch.a
	copy(v[:l.inputChannels], src)

	applyCurvesInPlace(l.bCurves, v, l.inputChannels)
	if l.inputChannels == 3 {
		applyMatrix3x4InPlace(l.matrix, v)
		applyCurvesInPlace(l.mCurves, v, 3)
	}

	if l.clut != nil && len(l.gridPoints) == l.inputChannels {
		l.scratch.lookupCLUT(dst, l.clut, l.gridPoints, l.outputChannels, v)
	} else {
		copy(dst[:l.outputChannels], v)
	}

	applyCurvesInPlace(l.aCurves, dst, l.outputChannels)
	clampInPlace(dst, l.outputChannels)
}

// Encode converts the LUT to lutBtoAType (mBA) format.
func (l *LutBToA) Encode() ([]byte, error) {
	return encodeLutAB(l.inputChannels, l.outputChannels, l.aCurves, l.gridPoints, l.clut, l.clutPrecision, l.mCurves, l.matrix, l.bCurves, true)
}

func decodeLutBToA(data []byte) (*LutBToA, error) {
	if len(data) < 32 {
		return nil, errInvalidTagData
	}

	inputChannels := int(data[8])
	outputChannels := int(data[9])

	if inputChannels == 0 || outputChannels == 0 || inputChannels > 15 || outputChannels > 15 {
		return nil, errInvalidTagData
	}

	bCurveOffset := getUint32(data, 12)
	matrixOffset := getUint32(data, 16)
	mCurveOffset := getUint32(data, 20)
	clutOffset := getUint32(data, 24)
	aCurveOffset := getUint32(data, 28)

	lut := &LutBToA{
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
	}

	// B curves are the input curves for mBA
	if bCurveOffset != 0 {
		curves, err := decodeCurvesAtOffset(data, int(bCurveOffset), inputChannels)
		if err != nil {
			return nil, err
		}
		lut.bCurves = curves
	}

	// A curves are the output curves for mBA
	if aCurveOffset != 0 {
		curves, err := decodeCurvesAtOffset(data, int(aCurveOffset), outputChannels)
		if err != nil {
			return nil, err
		}
		lut.aCurves = curves
	}

	if matrixOffset != 0 {
		matrix, err := decodeMatrix3x4(data, int(matrixOffset))
		if err != nil {
			return nil, err
		}
		lut.matrix = matrix
	}

	if mCurveOffset != 0 {
		curves, err := decodeCurvesAtOffset(data, int(mCurveOffset), 3)
		if err != nil {
			return nil, err
		}
		lut.mCurves = curves
	}

	if clutOffset != 0 {
		gridPoints, clut, precision, err := decodeCLUT(data, int(clutOffset), inputChannels, outputChannels)
		if err != nil {
			return nil, err
		}
		lut.gridPoints = gridPoints
		lut.clut = clut
		lut.clutPrecision = precision
	}

	lut.scratch = newLutScratch(inputChannels, outputChannels, lut.gridPoints)
	return lut, nil
}

// ----------------------------------------------------------------------------
// helpers
// ----------------------------------------------------------------------------

func uniformGrid(points, dims int) []int {
	if points == 0 || dims == 0 {
		return nil
	}
	g := make([]int, dims)
	for i := range g {
		g[i] = points
	}
	return g
}

func computeCLUTSize(gridPoints []int, outputChannels int) int {
	if len(gridPoints) == 0 {
		return 0
	}
	size := outputChannels
	for _, g := range gridPoints {
		if g < 2 {
			return 0
		}
		size *= g
	}
	return size
}

func computeCLUTSizeUniform(gridPoints, inputChannels, outputChannels int) int {
	if gridPoints < 2 {
		return 0
	}
	size := outputChannels
	for range inputChannels {
		size *= gridPoints
	}
	return size
}

func decodeCurvesAtOffset(data []byte, offset int, numCurves int) ([]*Curve, error) {
	curves := make([]*Curve, numCurves)
	pos := offset
	for i := range numCurves {
		if pos+8 > len(data) {
			return nil, errInvalidTagData
		}

		curve, err := DecodeCurve(data[pos:])
		if err != nil {
			return nil, err
		}
		curves[i] = curve

		// advance past this curve element, with 4-byte alignment
		var curveSize int
		typeID := string(data[pos : pos+4])
		switch typeID {
		case "curv":
			n := int(getUint32(data, pos+8))
			curveSize = 12 + n*2
		case "para":
			funcType := int(getUint16(data, pos+8))
			curveSize = 12 + parametricParamCount(funcType)*4
		default:
			return nil, errUnexpectedType
		}
		pos += int(align4(uint32(curveSize)))
	}
	return curves, nil
}

func decodeMatrix3x4(data []byte, offset int) ([]float64, error) {
	if offset+48 > len(data) {
		return nil, errInvalidTagData
	}
	matrix := make([]float64, 12)
	for i := range 12 {
		matrix[i] = getS15Fixed16(data, offset+i*4)
	}
	if isIdentityMatrix3x4(matrix) {
		return nil, nil
	}
	return matrix, nil
}

func decodeCLUT(data []byte, offset int, inputChannels, outputChannels int) ([]int, []float64, int, error) {
	if offset+20 > len(data) {
		return nil, nil, 0, errInvalidTagData
	}

	gridPoints := make([]int, inputChannels)
	for i := range inputChannels {
		gridPoints[i] = int(data[offset+i])
	}

	precision := int(data[offset+16])
	if precision != 1 && precision != 2 {
		return nil, nil, 0, errInvalidTagData
	}

	size := computeCLUTSize(gridPoints, outputChannels)
	if size == 0 {
		return nil, nil, 0, errInvalidTagData
	}

	dataStart := offset + 20
	if len(data) < dataStart+size*precision {
		return nil, nil, 0, errInvalidTagData
	}

	clut := make([]float64, size)
	if precision == 1 {
		for i := range size {
			clut[i] = float64(data[dataStart+i]) / 255.0
		}
	} else {
		for i := range size {
			clut[i] = float64(getUint16(data, dataStart+i*2)) / 65535.0
		}
	}

	return gridPoints, clut, precision, nil
}

func encodeLutAB(inputChannels, outputChannels int, aCurves []*Curve, gridPoints []int, clut []float64, clutPrecision int, mCurves []*Curve, matrix []float64, bCurves []*Curve, isBToA bool) ([]byte, error) {
	var buf []byte
	if isBToA {
		buf = append(buf, "mBA "...)
	} else {
		buf = append(buf, "mAB "...)
	}
	buf = append(buf, 0, 0, 0, 0) // reserved
	buf = append(buf, byte(inputChannels), byte(outputChannels), 0, 0)

	// offsets are filled in later
	offsetTable := len(buf)
	buf = append(buf, make([]byte, 20)...)

	setOffset := func(idx int, pos int) {
		putUint32(buf, offsetTable+idx*4, uint32(pos))
	}

	// B curves
	if bCurves != nil {
		setOffset(0, len(buf))
		n := outputChannels
		if isBToA {
			n = inputChannels
		}
		buf = append(buf, encodeCurves(bCurves, n)...)
	}

	// matrix
	if matrix != nil {
		setOffset(1, len(buf))
		for i := range 12 {
			var tmp [4]byte
			putS15Fixed16(tmp[:], 0, matrix[i])
			buf = append(buf, tmp[:]...)
		}
	}

	// M curves
	if mCurves != nil {
		setOffset(2, len(buf))
		buf = append(buf, encodeCurves(mCurves, 3)...)
	}

	// CLUT
	if clut != nil {
		setOffset(3, len(buf))
		buf = append(buf, encodeCLUT(gridPoints, outputChannels, clut, clutPrecision)...)
	}

	// A curves
	if aCurves != nil {
		setOffset(4, len(buf))
		n := inputChannels
		if isBToA {
			n = outputChannels
		}
		buf = append(buf, encodeCurves(aCurves, n)...)
	}

	return buf, nil
}

func encodeCLUT(gridPoints []int, outputChannels int, clut []float64, precision int) []byte {
	if precision != 1 {
		precision = 2
	}

	size := computeCLUTSize(gridPoints, outputChannels)
	buf := make([]byte, 20+((size*precision+3)&^3))
	for i, g := range gridPoints {
		buf[i] = byte(g)
	}
	buf[16] = byte(precision)

	if precision == 1 {
		for i, v := range clut {
			buf[20+i] = byte(clamp(v, 0, 1) * 255.0)
		}
	} else {
		for i, v := range clut {
			putUint16(buf, 20+i*2, uint16(clamp(v, 0, 1)*65535.0))
		}
	}
	return buf
}

func encodeCurves(curves []*Curve, count int) []byte {
	var buf []byte
	for i := range count {
		var c *Curve
		if i < len(curves) {
			c = curves[i]
		}
		if c == nil {
			c = &Curve{Gamma: 1.0}
		}
		enc := c.Encode()
		buf = append(buf, enc...)
		for len(buf)%4 != 0 {
			buf = append(buf, 0)
		}
	}
	return buf
}

func align4(n uint32) uint32 {
	return (n + 3) &^ 3
}
