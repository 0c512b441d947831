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

// stageData holds the immutable per-stage assets derived at assembly
// time: the source and destination spaces, a 3x3 matrix (primaries
// matrix or adaptation matrix), or a built profile transform. Stage
// bodies read from here and never from global state.
type stageData struct {
	from, to *Space
	matrix   []float64
	xform    *profileTransform
}

// boundStage is one assembled pipeline step: a stage body bound to its
// data and to the indices of the buffers it reads and writes.
type boundStage struct {
	apply    func(dst, src []float64, st *stageData)
	st       *stageData
	src, dst int
}

// convData is the converter's side table: buffer 0 aliases the input
// colour's values, buffer 1 the output colour's values, and any further
// buffers are scratch temporaries between stages.
type convData struct {
	bufs [][]float64
}

// assemble materialises a plan as bound stages: it allocates the
// temporary buffers the plan needs, derives each stage's numeric assets
// and links the stages' read and write buffers. After assembly a
// Convert call does no planning work and no allocation.
func assemble(p plan, in, out *Color) (*convData, []boundStage, error) {
	if len(in.Values) != in.Space.Kind.NumComponents() ||
		len(out.Values) != out.Space.Kind.NumComponents() {
		return nil, nil, fmt.Errorf("%w: colour value count does not match its space",
			ErrNoConversion)
	}

	data := &convData{bufs: make([][]float64, 2, len(p)+1)}
	data.bufs[0] = in.Values
	data.bufs[1] = out.Values

	stages := make([]boundStage, len(p))
	src := 0
	for i := range p {
		ps := &p[i]

		dst := 1
		if i < len(p)-1 {
			data.bufs = append(data.bufs, make([]float64, ps.width()))
			dst = len(data.bufs) - 1
		}

		st := &stageData{from: ps.from, to: ps.to}
		var apply func(dst, src []float64, st *stageData)

		switch ps.kind {
		case stageAssign:
			apply = assignApply

		case stagePrimitive:
			if ps.prim.Prepare != nil {
				if err := ps.prim.Prepare(st); err != nil {
					return nil, nil, err
				}
			}
			prepareTransferCurves(st)
			apply = ps.prim.Convert

		case stageAdapt:
			m, err := adaptationMatrix(ps.method, ps.fromWhite, ps.toWhite)
			if err != nil {
				return nil, nil, err
			}
			st.matrix = m
			apply = adaptApply

		case stageProfile:
			xf, err := newProfileTransform(ps.profile, ps.direction, DefaultIntent())
			if err != nil {
				return nil, nil, err
			}
			st.xform = xf
			apply = profileApply
		}

		stages[i] = boundStage{apply: apply, st: st, src: src, dst: dst}
		src = dst
	}

	return data, stages, nil
}

// prepareTransferCurves builds any cached inverse tables of sampled
// transfer curves the stage may invert, so that Convert never
// allocates.
func prepareTransferCurves(st *stageData) {
	if st.to != nil && st.to.RGB != nil && st.to.RGB.TRC != nil {
		st.to.RGB.TRC.prepareInverse()
	}
}

func assignApply(dst, src []float64, st *stageData) {
	copy(dst, src[:min(len(dst), len(src))])
}

func adaptApply(dst, src []float64, st *stageData) {
	transform3(dst, st.matrix, src)
}

func profileApply(dst, src []float64, st *stageData) {
	st.xform.apply(dst, src)
}
