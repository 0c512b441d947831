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
	"sort"
	"sync"

	"golang.org/x/exp/maps"
)

// PathKey identifies a registered conversion between two colour space kinds.
type PathKey struct {
	From, To ColorSpace
}

var (
	registryOnce sync.Once
	registryMu   sync.RWMutex

	// conversionPaths maps (from, to) to the registered primitives, in
	// registration order. The first entry wins during planning.
	conversionPaths map[PathKey][]Primitive

	// coneMatrices holds the chromatic adaptation methods.
	coneMatrices map[AdaptationMethod][9]float64
)

// Init initialises the process-wide registries of conversion primitives
// and chromatic adaptation methods. It is called implicitly by
// [NewConverter]; calling it again has no effect. Init is safe for
// concurrent use.
func Init() {
	registryOnce.Do(func() {
		registryMu.Lock()
		defer registryMu.Unlock()

		conversionPaths = make(map[PathKey][]Primitive)
		for _, p := range builtinPrimitives() {
			addPathLocked(p)
		}

		coneMatrices = make(map[AdaptationMethod][9]float64, len(builtinConeMatrices))
		maps.Copy(coneMatrices, builtinConeMatrices)
	})
}

func addPathLocked(p Primitive) {
	key := PathKey{From: p.From, To: p.To}
	list := conversionPaths[key]
	for _, q := range list {
		if q.Name == p.Name {
			return // duplicate registration
		}
	}
	conversionPaths[key] = append(list, p)
}

// ConversionPaths returns the keys of all registered conversion
// primitives, sorted by source and destination kind.
func ConversionPaths() []PathKey {
	Init()
	registryMu.RLock()
	keys := maps.Keys(conversionPaths)
	registryMu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		return keys[i].To < keys[j].To
	})
	return keys
}

// ChromaticAdaptions returns the names of all registered chromatic
// adaptation methods, sorted.
func ChromaticAdaptions() []AdaptationMethod {
	Init()
	registryMu.RLock()
	names := maps.Keys(coneMatrices)
	registryMu.RUnlock()

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// AddConversionPath registers a conversion primitive. Registering a
// primitive with the same name and key as an existing one has no
// effect. The new path is used by converters constructed afterwards;
// existing converters are unaffected.
func AddConversionPath(p Primitive) {
	Init()
	registryMu.Lock()
	addPathLocked(p)
	registryMu.Unlock()
}

// RemoveConversionPath removes all primitives registered for the given
// pair of colour space kinds. Existing converters are unaffected.
func RemoveConversionPath(from, to ColorSpace) {
	Init()
	registryMu.Lock()
	delete(conversionPaths, PathKey{From: from, To: to})
	registryMu.Unlock()
}

// AddChromaticAdaption registers a chromatic adaptation method given by
// its cone response matrix (row-major, XYZ to cone space). Registering
// an existing name replaces the method. Converters constructed
// afterwards can select the method by name.
func AddChromaticAdaption(name AdaptationMethod, cone [9]float64) {
	Init()
	registryMu.Lock()
	coneMatrices[name] = cone
	registryMu.Unlock()

	// drop cached combined matrices derived from a replaced method
	adaptCacheMu.Lock()
	for key := range adaptCache {
		if key.method == name {
			delete(adaptCache, key)
		}
	}
	adaptCacheMu.Unlock()
}

// RemoveChromaticAdaption removes a chromatic adaptation method.
// Existing converters are unaffected.
func RemoveChromaticAdaption(name AdaptationMethod) {
	Init()
	registryMu.Lock()
	delete(coneMatrices, name)
	registryMu.Unlock()

	// drop cached combined matrices derived from the removed method
	adaptCacheMu.Lock()
	for key := range adaptCache {
		if key.method == name {
			delete(adaptCache, key)
		}
	}
	adaptCacheMu.Unlock()
}

// lookupPath returns the first primitive registered for the given pair,
// under a read lock.
func lookupPath(from, to ColorSpace) (Primitive, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	list := conversionPaths[PathKey{From: from, To: to}]
	if len(list) == 0 {
		return Primitive{}, false
	}
	return list[0], true
}

// neighbours calls fn for every kind directly reachable from the given
// kind, under a read lock.
func neighbours(from ColorSpace, fn func(to ColorSpace)) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for key := range conversionPaths {
		if key.From == from {
			fn(key.To)
		}
	}
}
