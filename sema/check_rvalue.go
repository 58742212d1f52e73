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
	"github.com/ferrite-lang/ferrite/errors"
	"github.com/ferrite-lang/ferrite/ir"
)

// checkOperand evaluates one operand, threading the location context:
// using a location consumes it, a literal produces a fresh value.
func (checker *Checker) checkOperand(
	pos Pos,
	ctx *ir.LocationContext,
	operand ir.Operand,
) (ir.Type, *ir.LocationContext, error) {

	switch operand := operand.(type) {
	case ir.UseOperand:
		return consumeLocation(checker.store, ctx, operand.Location, pos)

	case ir.LiteralOperand:
		err := checker.store.checkTypeInScope(operand.Type, pos)
		if err != nil {
			return nil, nil, err
		}
		return operand.Type, ctx, nil
	}

	panic(errors.NewUnreachableError())
}

// checkRvalue evaluates the right-hand side of an assignment.
// Multi-operand forms thread the location context left to right.
func (checker *Checker) checkRvalue(
	pos Pos,
	ctx *ir.LocationContext,
	rvalue ir.Rvalue,
) (ir.Type, *ir.LocationContext, error) {

	switch rvalue := rvalue.(type) {
	case ir.OperandRvalue:
		return checker.checkOperand(pos, ctx, rvalue.Operand)

	case ir.UnaryRvalue:
		operandType, out, err := checker.checkOperand(pos, ctx, rvalue.Operand)
		if err != nil {
			return nil, nil, err
		}
		// Primitive operations require the Copy capability
		if !checker.store.IsCopy(operandType) {
			return nil, nil, &UnresolvedTraitBoundError{
				Type:  operandType,
				Trait: CopyTrait,
				Pos:   pos,
			}
		}
		return operandType, out, nil

	case ir.BinaryRvalue:
		leftType, afterLeft, err := checker.checkOperand(pos, ctx, rvalue.Left)
		if err != nil {
			return nil, nil, err
		}
		rightType, out, err := checker.checkOperand(pos, afterLeft, rvalue.Right)
		if err != nil {
			return nil, nil, err
		}

		if !leftType.Equal(rightType) {
			var location ir.Location
			if use, ok := rvalue.Right.(ir.UseOperand); ok {
				location = use.Location
			}
			return nil, nil, &TypeMismatchError{
				ExpectedType: leftType,
				ActualType:   rightType,
				Location:     location,
				Pos:          pos,
			}
		}

		if !checker.store.IsCopy(leftType) {
			return nil, nil, &UnresolvedTraitBoundError{
				Type:  leftType,
				Trait: CopyTrait,
				Pos:   pos,
			}
		}

		if rvalue.Operation.IsComparison() {
			boolType, err := checker.boolType(pos)
			if err != nil {
				return nil, nil, err
			}
			return boolType, out, nil
		}

		return leftType, out, nil
	}

	panic(errors.NewUnreachableError())
}
