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

// checkLifetimeBegin checks the opening of a lifetime: the lifetime must
// not already be active, and the successor's required active set must be
// exactly the current one plus the opened lifetime.
// The node itself is not yet within the lifetime's scope.
func (checker *Checker) checkLifetimeBegin(
	pos Pos,
	incoming ir.NodeType,
	active *bitset.BitSet,
	solver *obligationSolver,
	node ir.LifetimeBeginNode,
) error {

	if checker.interner.contains(active, node.Lifetime) {
		return &LifetimeAlreadyActiveError{
			Lifetime: node.Lifetime,
			Pos:      pos,
		}
	}

	out := checker.interner.withInserted(active, node.Lifetime)

	return checker.checkTransfer(pos, incoming.Locations, out, solver, nil, node.Next)
}

// checkLifetimeEnd checks the closing of a lifetime: the lifetime must be
// active, no location's current type may still mention it, and for every
// lifetime still active the derived outlives-at obligation, together with
// the successor's own obligations, must be entailed by what the node can
// currently prove.
func (checker *Checker) checkLifetimeEnd(
	pos Pos,
	incoming ir.NodeType,
	active *bitset.BitSet,
	solver *obligationSolver,
	node ir.LifetimeEndNode,
) error {

	if !checker.interner.contains(active, node.Lifetime) {
		return &NotDeclaredLifetimeError{
			Lifetime: node.Lifetime,
			Pos:      pos,
		}
	}

	var dangling *DanglingLifetimeError
	incoming.Locations.Foreach(func(location ir.Location, typ ir.Type) {
		if dangling != nil {
			return
		}
		if typ.MentionsLifetime(node.Lifetime) {
			dangling = &DanglingLifetimeError{
				Lifetime: node.Lifetime,
				Location: location,
				Type:     typ,
				Pos:      pos,
			}
		}
	})
	if dangling != nil {
		return dangling
	}

	out := checker.interner.withRemoved(active, node.Lifetime)

	// The derived obligations record, at the point the shorter lifetime
	// ends, how it relates to every lifetime still active
	var derived []ir.OutlivesFact
	for _, still := range checker.interner.activeLifetimes(out) {
		derived = append(derived, ir.LifetimeOutlives{
			Subject: node.Lifetime,
			Bound:   still,
		})
	}

	return checker.checkTransfer(pos, incoming.Locations, out, solver, derived, node.Next)
}
