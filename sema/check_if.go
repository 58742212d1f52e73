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

// checkIf checks a conditional branch: the condition operand is evaluated,
// and both successors are checked against the same outgoing contexts.
// There is no join: divergent branch typings must be reconciled by the
// lowering stage before the merge label.
func (checker *Checker) checkIf(
	pos Pos,
	incoming ir.NodeType,
	active *bitset.BitSet,
	solver *obligationSolver,
	node ir.IfNode,
) error {

	conditionType, out, err := checker.checkOperand(pos, incoming.Locations, node.Condition)
	if err != nil {
		return err
	}

	boolType, err := checker.boolType(pos)
	if err != nil {
		return err
	}
	if !IsSubType(checker.store, conditionType, boolType) {
		var location ir.Location
		if use, ok := node.Condition.(ir.UseOperand); ok {
			location = use.Location
		}
		return &TypeMismatchError{
			ExpectedType: boolType,
			ActualType:   conditionType,
			Location:     location,
			Pos:          pos,
		}
	}

	for _, successor := range []ir.Label{node.Then, node.Else} {
		err = checker.checkTransfer(pos, out, active, solver, nil, successor)
		if err != nil {
			return err
		}
	}

	return nil
}
