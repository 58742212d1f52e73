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

// obligationSolver decides entailment of outlives facts from a bound
// context, under reflexivity and transitivity of the outlives relation.
//
// Lifetimes are interned; the outlives facts form edges of a graph over
// lifetime indices, and derivability of `l: l'` is reachability.
type obligationSolver struct {
	interner *lifetimeInterner
	// edges[i] holds the direct outlives successors of lifetime i
	edges map[uint]*bitset.BitSet
	// typeFacts holds the declared type-outlives facts
	typeFacts []ir.TypeOutlives
}

func newObligationSolver(
	interner *lifetimeInterner,
	bounds *ir.BoundContext,
) *obligationSolver {

	solver := &obligationSolver{
		interner: interner,
		edges:    map[uint]*bitset.BitSet{},
	}

	for _, fact := range bounds.Facts() {
		switch fact := fact.(type) {
		case ir.LifetimeOutlives:
			solver.addEdge(
				interner.index(fact.Subject),
				interner.index(fact.Bound),
			)
		case ir.TypeOutlives:
			solver.typeFacts = append(solver.typeFacts, fact)
		}
	}

	return solver
}

func (solver *obligationSolver) addEdge(from, to uint) {
	successors, ok := solver.edges[from]
	if !ok {
		successors = bitset.New(uint(len(solver.interner.lifetimes)))
		solver.edges[from] = successors
	}
	successors.Set(to)
}

// outlives reports whether `subject: bound` is derivable
// under reflexivity and transitivity.
func (solver *obligationSolver) outlives(subject, bound ir.Lifetime) bool {
	from := solver.interner.index(subject)
	to := solver.interner.index(bound)

	if from == to {
		return true
	}

	// reachability over the declared edges
	visited := bitset.New(uint(len(solver.interner.lifetimes)))
	worklist := []uint{from}
	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if visited.Test(current) {
			continue
		}
		visited.Set(current)

		successors, ok := solver.edges[current]
		if !ok {
			continue
		}
		for index, more := successors.NextSet(0); more; index, more = successors.NextSet(index + 1) {
			if index == to {
				return true
			}
			worklist = append(worklist, index)
		}
	}

	return false
}

// entails reports whether the given fact is derivable from the solver's
// bound context.
//
// A type-outlives fact is never decomposed structurally: it is derivable
// only from a declared type-outlives fact, possibly extended through the
// transitivity of the lifetime relation.
func (solver *obligationSolver) entails(fact ir.OutlivesFact) bool {
	switch fact := fact.(type) {
	case ir.LifetimeOutlives:
		return solver.outlives(fact.Subject, fact.Bound)

	case ir.TypeOutlives:
		for _, declared := range solver.typeFacts {
			if declared.Subject.Equal(fact.Subject) &&
				solver.outlives(declared.Bound, fact.Bound) {

				return true
			}
		}
		return false
	}

	return false
}

// firstUnentailed returns the first fact of the required set that is not
// derivable, if any.
func (solver *obligationSolver) firstUnentailed(required []ir.OutlivesFact) (ir.OutlivesFact, bool) {
	for _, fact := range required {
		if !solver.entails(fact) {
			return fact, true
		}
	}
	return nil, false
}
