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

// checkSwitch checks a variant dispatch: the union of the declared branch
// variants must cover the scrutinee's static sum type, and each branch
// receives the scrutinee narrowed to its own variant type.
func (checker *Checker) checkSwitch(
	pos Pos,
	incoming ir.NodeType,
	active *bitset.BitSet,
	solver *obligationSolver,
	node ir.SwitchNode,
) error {

	err := checker.store.checkTypeInScope(node.Subject, pos)
	if err != nil {
		return err
	}

	current, ok := incoming.Locations.Get(node.Scrutinee)
	if !ok {
		return &MalformedContextError{
			Location: node.Scrutinee,
			Message:  "switched location is not mentioned",
			Pos:      pos,
		}
	}
	if !IsSubType(checker.store, current, node.Subject) {
		return &TypeMismatchError{
			ExpectedType: node.Subject,
			ActualType:   current,
			Location:     node.Scrutinee,
			Pos:          pos,
		}
	}

	variants := Variants(checker.store, node.Subject)

	// Every branch must narrow to one of the subject's variants
	for _, branch := range node.Branches {
		isVariant := false
		for _, variant := range variants {
			if branch.Variant.Equal(variant) {
				isVariant = true
				break
			}
		}
		if !isVariant {
			return &TypeMismatchError{
				ExpectedType: node.Subject,
				ActualType:   branch.Variant,
				Location:     node.Scrutinee,
				Pos:          pos,
			}
		}
	}

	// The union of the branch variants must cover the subject
	var missing []ir.Type
	for _, variant := range variants {
		covered := false
		for _, branch := range node.Branches {
			if branch.Variant.Equal(variant) {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, variant)
		}
	}
	if len(missing) > 0 {
		return &NonExhaustiveSwitchError{
			Subject:         node.Subject,
			MissingVariants: missing,
			Pos:             pos,
		}
	}

	for _, branch := range node.Branches {
		narrowed := incoming.Locations.WithType(node.Scrutinee, branch.Variant)
		err = checker.checkTransfer(pos, narrowed, active, solver, nil, branch.Target)
		if err != nil {
			return err
		}
	}

	return nil
}
