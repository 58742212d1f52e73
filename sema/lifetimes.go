/*
 * Ferrite - verifier for the Ferrite typestate intermediate representation
 *
 * Copyright Ferrite contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sema

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/ferrite-lang/ferrite/ir"
)

// lifetimeInterner assigns a dense index to every lifetime mentioned in
// one function, so active-lifetime sets and the outlives relation can be
// represented as bit sets.
//
// An interner is scoped to a single checker and is not safe for
// concurrent use.
type lifetimeInterner struct {
	indices   map[ir.Lifetime]uint
	lifetimes []ir.Lifetime
}

func newLifetimeInterner() *lifetimeInterner {
	return &lifetimeInterner{
		indices: map[ir.Lifetime]uint{},
	}
}

func (interner *lifetimeInterner) index(lifetime ir.Lifetime) uint {
	index, ok := interner.indices[lifetime]
	if ok {
		return index
	}
	index = uint(len(interner.lifetimes))
	interner.indices[lifetime] = index
	interner.lifetimes = append(interner.lifetimes, lifetime)
	return index
}

func (interner *lifetimeInterner) lifetime(index uint) ir.Lifetime {
	return interner.lifetimes[index]
}

// set interns the lifetimes of the given context into a bit set.
func (interner *lifetimeInterner) set(ctx *ir.LifetimeContext) *bitset.BitSet {
	result := bitset.New(uint(len(interner.lifetimes)))
	for _, lifetime := range ctx.Lifetimes() {
		result.Set(interner.index(lifetime))
	}
	return result
}

// withInserted returns the given active set plus the given lifetime.
func (interner *lifetimeInterner) withInserted(
	active *bitset.BitSet,
	lifetime ir.Lifetime,
) *bitset.BitSet {
	result := active.Clone()
	result.Set(interner.index(lifetime))
	return result
}

// withRemoved returns the given active set minus the given lifetime.
func (interner *lifetimeInterner) withRemoved(
	active *bitset.BitSet,
	lifetime ir.Lifetime,
) *bitset.BitSet {
	result := active.Clone()
	result.Clear(interner.index(lifetime))
	return result
}

func (interner *lifetimeInterner) contains(
	active *bitset.BitSet,
	lifetime ir.Lifetime,
) bool {
	index, ok := interner.indices[lifetime]
	return ok && active.Test(index)
}

// sameLifetimes reports whether the two sets contain the same lifetimes.
// Bit sets allocated at different lengths compare as their contents.
func sameLifetimes(a, b *bitset.BitSet) bool {
	return a.SymmetricDifference(b).None()
}

// activeLifetimes returns the lifetimes of the given set,
// in interning order.
func (interner *lifetimeInterner) activeLifetimes(active *bitset.BitSet) []ir.Lifetime {
	var result []ir.Lifetime
	for index, ok := active.NextSet(0); ok; index, ok = active.NextSet(index + 1) {
		result = append(result, interner.lifetime(index))
	}
	return result
}
