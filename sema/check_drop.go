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

// checkDrop checks an explicit drop: forgetting a value is legal only for
// a Copy value, and leaves the location uninitialized.
func (checker *Checker) checkDrop(
	pos Pos,
	incoming ir.NodeType,
	active *bitset.BitSet,
	solver *obligationSolver,
	node ir.DropNode,
) error {

	out, err := dropLocation(checker.store, incoming.Locations, node.Target, pos)
	if err != nil {
		return err
	}

	return checker.checkTransfer(pos, out, active, solver, nil, node.Next)
}
