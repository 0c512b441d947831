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
	"sort"
)

// stageKind enumerates the kinds of pipeline stages a plan can contain.
type stageKind int

const (
	stageAssign stageKind = iota
	stagePrimitive
	stageAdapt
	stageProfile
)

// planStage is one step of a conversion plan. The assembler turns each
// stage into a bound closure reading from one buffer and writing to the
// next.
type planStage struct {
	kind stageKind

	// for stagePrimitive
	prim     Primitive
	from, to *Space

	// for stageAdapt
	method             AdaptationMethod
	fromWhite, toWhite [3]float64

	// for stageProfile
	profile   *Profile
	direction Direction
}

// width returns the channel count of the stage's output.
func (s *planStage) width() int {
	switch s.kind {
	case stagePrimitive:
		return s.to.Kind.NumComponents()
	case stageProfile:
		if s.direction == DeviceToPCS {
			return s.profile.PCS.NumComponents()
		}
		return s.profile.ColorSpace.NumComponents()
	default:
		return 3
	}
}

// plan is an ordered, non-empty list of stages bridging the input space
// to the output space.
type plan []planStage

func assignStage() planStage {
	return planStage{kind: stageAssign}
}

func primStage(p Primitive, from, to *Space) planStage {
	return planStage{kind: stagePrimitive, prim: p, from: from, to: to}
}

func adaptStage(method AdaptationMethod, from, to [3]float64) planStage {
	return planStage{kind: stageAdapt, method: method, fromWhite: from, toWhite: to}
}

func profileStage(p *Profile, dir Direction) planStage {
	return planStage{kind: stageProfile, profile: p, direction: dir}
}

// buildPlan decides the ordered sequence of primitives, profile stages
// and adaptation steps needed to bridge the two colours' spaces.
func buildPlan(in, out *Color) (plan, error) {
	inS, outS := in.Space, out.Space

	switch {
	case inS.Profile == nil && outS.Profile == nil:
		return primitiveChain(inS, outS)
	case inS.Profile != nil && outS.Profile != nil:
		return profilePairPlan(inS, outS)
	default:
		return profilePlan(inS, outS)
	}
}

// profilePlan handles the case where exactly one side is ICC-backed.
func profilePlan(inS, outS *Space) (plan, error) {
	iccIsInput := inS.Profile != nil
	var p *Profile
	var otherS *Space
	if iccIsInput {
		p, otherS = inS.Profile, outS
	} else {
		p, otherS = outS.Profile, inS
	}

	switch p.Class {
	case AbstractProfile:
		// abstract profiles transform PCS to PCS
		if inS.Kind != p.PCS || outS.Kind != p.PCS {
			return nil, fmt.Errorf("%w: abstract profile requires %v on both sides",
				ErrNoConversion, p.PCS)
		}
		return plan{profileStage(p, DeviceToPCS)}, nil

	case DeviceLinkProfile:
		// a device link's output space is fixed to its PCS field
		if inS.Kind != p.ColorSpace || outS.Kind != p.PCS {
			return nil, fmt.Errorf("%w: device link maps %v to %v",
				ErrNoConversion, p.ColorSpace, p.PCS)
		}
		return plan{profileStage(p, DeviceToPCS)}, nil

	case NamedColorProfile:
		return nil, fmt.Errorf("%w: named colour profiles have no continuous transform",
			ErrNoConversion)
	}

	iccS := inS
	if !iccIsInput {
		iccS = outS
	}

	switch iccS.Kind {
	case p.ColorSpace:
		// the bound colour carries device values
		pcs := p.PCSSpace()
		if iccIsInput {
			stages := plan{profileStage(p, DeviceToPCS)}
			if otherS.Kind == p.PCS {
				return stages, nil
			}
			rest, err := primitiveChain(pcs, otherS)
			if err != nil {
				return nil, err
			}
			return append(stages, dropLeadingAssign(rest)...), nil
		}
		if otherS.Kind == p.PCS {
			return plan{profileStage(p, PCSToDevice)}, nil
		}
		stages, err := primitiveChain(otherS, pcs)
		if err != nil {
			return nil, err
		}
		return append(dropTrailingAssign(stages), profileStage(p, PCSToDevice)), nil

	case p.PCS:
		// the bound colour carries PCS values
		pcs := p.PCSSpace()
		if otherS.Kind == p.ColorSpace {
			if iccIsInput {
				return plan{profileStage(p, PCSToDevice)}, nil
			}
			return plan{profileStage(p, DeviceToPCS)}, nil
		}
		// the profile contributes nothing; convert in or out of the PCS
		if iccIsInput {
			return primitiveChain(pcs, otherS)
		}
		return primitiveChain(otherS, pcs)

	default:
		return nil, fmt.Errorf("%w: colour kind %v matches neither side of its profile",
			ErrNoConversion, iccS.Kind)
	}
}

// profilePairPlan handles the case where both sides are ICC-backed.
func profilePairPlan(inS, outS *Space) (plan, error) {
	p1, p2 := inS.Profile, outS.Profile

	if p1.Class == AbstractProfile || p2.Class == AbstractProfile {
		if p1.Class != AbstractProfile || p2.Class != AbstractProfile || p1.PCS != p2.PCS {
			return nil, fmt.Errorf("%w: abstract profiles can only pair with abstract profiles of the same PCS",
				ErrNoConversion)
		}
		if inS.Kind != p1.PCS || outS.Kind != p1.PCS {
			return nil, fmt.Errorf("%w: abstract profile requires %v on both sides",
				ErrNoConversion, p1.PCS)
		}
		return plan{profileStage(p1, DeviceToPCS)}, nil
	}

	if p1.Class == DeviceLinkProfile || p2.Class == DeviceLinkProfile {
		if p1.Class != DeviceLinkProfile || p2.Class != DeviceLinkProfile ||
			p1.PCS != p2.PCS || p1.ColorSpace != p2.ColorSpace {
			return nil, fmt.Errorf("%w: device links can only pair with matching device links",
				ErrNoConversion)
		}
		if inS.Kind != p1.ColorSpace || outS.Kind != p1.PCS {
			return nil, fmt.Errorf("%w: device link maps %v to %v",
				ErrNoConversion, p1.ColorSpace, p1.PCS)
		}
		return plan{profileStage(p1, DeviceToPCS)}, nil
	}

	inIsData := inS.Kind == p1.ColorSpace
	outIsData := outS.Kind == p2.ColorSpace
	if !inIsData && inS.Kind != p1.PCS {
		return nil, fmt.Errorf("%w: colour kind %v matches neither side of its profile",
			ErrNoConversion, inS.Kind)
	}
	if !outIsData && outS.Kind != p2.PCS {
		return nil, fmt.Errorf("%w: colour kind %v matches neither side of its profile",
			ErrNoConversion, outS.Kind)
	}

	switch {
	case inIsData && outIsData:
		stages := plan{profileStage(p1, DeviceToPCS)}
		if p1.PCS != p2.PCS {
			bridge, err := pcsBridge(p1, p2)
			if err != nil {
				return nil, err
			}
			stages = append(stages, bridge...)
		}
		return append(stages, profileStage(p2, PCSToDevice)), nil

	case inIsData && !outIsData:
		stages := plan{profileStage(p1, DeviceToPCS)}
		if p1.PCS != p2.PCS {
			bridge, err := pcsBridge(p1, p2)
			if err != nil {
				return nil, err
			}
			stages = append(stages, bridge...)
		}
		return stages, nil

	case !inIsData && outIsData:
		var stages plan
		if p1.PCS != p2.PCS {
			bridge, err := pcsBridge(p1, p2)
			if err != nil {
				return nil, err
			}
			stages = append(stages, bridge...)
		}
		return append(stages, profileStage(p2, PCSToDevice)), nil

	default: // PCS -> PCS
		if p1.PCS == p2.PCS {
			return plan{assignStage()}, nil
		}
		return pcsBridge(p1, p2)
	}
}

// pcsBridge converts between the two possible profile connection
// spaces, both under the D50 PCS illuminant.
func pcsBridge(p1, p2 *Profile) (plan, error) {
	prim, ok := lookupPath(p1.PCS, p2.PCS)
	if !ok {
		return nil, fmt.Errorf("%w: no conversion from %v to %v",
			ErrNoConversion, p1.PCS, p2.PCS)
	}
	return plan{primStage(prim, p1.PCSSpace(), p2.PCSSpace())}, nil
}

// primitiveChain plans a conversion between two non-ICC spaces using
// registered primitives, inserting a chromatic adaptation step iff the
// white points differ.
func primitiveChain(from, to *Space) (plan, error) {
	if from.equivalentTo(to) {
		return plan{assignStage()}, nil
	}

	if sameWhitePoint(from.WhitePoint, to.WhitePoint) {
		if from.Kind == to.Kind {
			// same kind, different parameters: re-parameterise via XYZ
			return hubChain(from, to, from.WhitePoint)
		}
		if path := shortestPath(from.Kind, to.Kind); path != nil {
			return chainStages(path, from, to)
		}
		return nil, fmt.Errorf("%w: no conversion from %v to %v",
			ErrNoConversion, from.Kind, to.Kind)
	}

	// differing whites: route through XYZ and adapt
	method := adaptationFor(from, to)
	xyzIn := &Space{Kind: CIEXYZSpace, WhitePoint: from.WhitePoint}
	xyzOut := &Space{Kind: CIEXYZSpace, WhitePoint: to.WhitePoint}

	var stages plan
	if from.Kind != CIEXYZSpace {
		path := shortestPath(from.Kind, CIEXYZSpace)
		if path == nil {
			return nil, fmt.Errorf("%w: no conversion from %v to CIEXYZ",
				ErrNoConversion, from.Kind)
		}
		part, err := chainStages(path, from, xyzIn)
		if err != nil {
			return nil, err
		}
		stages = append(stages, part...)
	}
	stages = append(stages, adaptStage(method, from.WhitePoint, to.WhitePoint))
	if to.Kind != CIEXYZSpace {
		path := shortestPath(CIEXYZSpace, to.Kind)
		if path == nil {
			return nil, fmt.Errorf("%w: no conversion from CIEXYZ to %v",
				ErrNoConversion, to.Kind)
		}
		part, err := chainStages(path, xyzOut, to)
		if err != nil {
			return nil, err
		}
		stages = append(stages, part...)
	}
	return stages, nil
}

// hubChain re-parameterises between two spaces of the same kind (e.g.
// two RGB presets under the same white) by a round trip through XYZ.
func hubChain(from, to *Space, white [3]float64) (plan, error) {
	pathIn := shortestPath(from.Kind, CIEXYZSpace)
	pathOut := shortestPath(CIEXYZSpace, to.Kind)
	if pathIn == nil || pathOut == nil {
		return nil, fmt.Errorf("%w: no conversion from %v to %v",
			ErrNoConversion, from.Kind, to.Kind)
	}
	xyz := &Space{Kind: CIEXYZSpace, WhitePoint: white}

	stages, err := chainStages(pathIn, from, xyz)
	if err != nil {
		return nil, err
	}
	part, err := chainStages(pathOut, xyz, to)
	if err != nil {
		return nil, err
	}
	return append(stages, part...), nil
}

// chainStages converts a kind path into primitive stages, synthesising
// the intermediate spaces.
func chainStages(path []ColorSpace, from, to *Space) (plan, error) {
	spaces := make([]*Space, len(path))
	spaces[0] = from
	spaces[len(path)-1] = to
	for i := 1; i < len(path)-1; i++ {
		spaces[i] = deriveSpace(path[i], from, to)
	}

	stages := make(plan, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		prim, ok := lookupPath(path[i], path[i+1])
		if !ok {
			return nil, fmt.Errorf("%w: no conversion from %v to %v",
				ErrNoConversion, path[i], path[i+1])
		}
		stages = append(stages, primStage(prim, spaces[i], spaces[i+1]))
	}
	return stages, nil
}

// deriveSpace synthesises an intermediate space of the given kind,
// inheriting parameters from whichever endpoint carries them.
func deriveSpace(kind ColorSpace, from, to *Space) *Space {
	s := &Space{Kind: kind, WhitePoint: from.WhitePoint}
	switch kind {
	case RGBSpace, HSVSpace, HLSSpace, YCbCrSpace, CMYSpace, CMYKSpace:
		if from.RGB != nil {
			s.RGB = from.RGB
			s.YCbCr = from.YCbCr
		} else if to.RGB != nil {
			s.RGB = to.RGB
			s.YCbCr = to.YCbCr
		} else {
			s.RGB = SRGB.RGB
		}
	}
	return s
}

// shortestPath finds the shortest sequence of registered primitives
// from one kind to another, inclusive of both endpoints. The search
// explores neighbours in sorted order so that plans are deterministic
// for a given registry state. Returns nil if no path exists.
func shortestPath(from, to ColorSpace) []ColorSpace {
	if from == to {
		return []ColorSpace{from}
	}

	const maxDepth = 5
	prev := map[ColorSpace]ColorSpace{from: from}
	frontier := []ColorSpace{from}

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []ColorSpace
		for _, k := range frontier {
			var succ []ColorSpace
			neighbours(k, func(n ColorSpace) {
				succ = append(succ, n)
			})
			sort.Slice(succ, func(i, j int) bool { return succ[i] < succ[j] })
			for _, n := range succ {
				if _, seen := prev[n]; seen {
					continue
				}
				prev[n] = k
				if n == to {
					// reconstruct
					path := []ColorSpace{to}
					for cur := k; cur != from; cur = prev[cur] {
						path = append(path, cur)
					}
					path = append(path, from)
					for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
						path[i], path[j] = path[j], path[i]
					}
					return path
				}
				next = append(next, n)
			}
		}
		frontier = next
	}
	return nil
}

func dropLeadingAssign(p plan) plan {
	if len(p) > 1 && p[0].kind == stageAssign {
		return p[1:]
	}
	return p
}

func dropTrailingAssign(p plan) plan {
	if len(p) > 1 && p[len(p)-1].kind == stageAssign {
		return p[:len(p)-1]
	}
	return p
}
