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
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/ferrite-lang/ferrite/errors"
	"github.com/ferrite-lang/ferrite/ir"
)

// checkCall checks a call node: the callee's signature is instantiated
// with the supplied type and lifetime arguments, the argument operands are
// evaluated against the instantiated parameter types threading the
// location context left to right, every instantiated where-clause bound
// must be entailed by the ambient bound context, and the instantiated
// return type is written into the target location.
func (checker *Checker) checkCall(
	pos Pos,
	incoming ir.NodeType,
	active *bitset.BitSet,
	solver *obligationSolver,
	node ir.CallNode,
) error {

	signature, err := checker.resolveSignature(node.Callee)
	if err != nil {
		return err
	}
	if signature == nil {
		return &NotDeclaredFunctionError{
			Name: node.Callee,
			Pos:  pos,
		}
	}

	if len(node.TypeArgs) != len(signature.TypeParams) {
		return &ArityError{
			What:          "type arguments",
			ExpectedCount: len(signature.TypeParams),
			ActualCount:   len(node.TypeArgs),
			Pos:           pos,
		}
	}
	if len(node.LifetimeArgs) != len(signature.LifetimeParams) {
		return &ArityError{
			What:          "lifetime arguments",
			ExpectedCount: len(signature.LifetimeParams),
			ActualCount:   len(node.LifetimeArgs),
			Pos:           pos,
		}
	}
	if len(node.Arguments) != len(signature.Parameters) {
		return &ArityError{
			What:          "arguments",
			ExpectedCount: len(signature.Parameters),
			ActualCount:   len(node.Arguments),
			Pos:           pos,
		}
	}

	// Every supplied lifetime argument must be active at the call site
	for _, lifetimeArg := range node.LifetimeArgs {
		if !checker.interner.contains(active, lifetimeArg) {
			return &NotDeclaredLifetimeError{
				Lifetime: lifetimeArg,
				Pos:      pos,
			}
		}
	}

	// Every type argument must be in scope, sized like its parameter,
	// and must carry the parameter's capability bounds
	for i, typeArg := range node.TypeArgs {
		typeParam := signature.TypeParams[i]

		err := checker.store.checkTypeInScope(typeArg, pos)
		if err != nil {
			return err
		}

		argSize, sized := checker.store.SizeOf(typeArg)
		if !sized || argSize != typeParam.Size {
			return &InstantiationError{
				Message: fmt.Sprintf(
					"type argument `%s` does not occupy the %d bytes parameter `%s` requires",
					typeArg,
					typeParam.Size,
					typeParam.Name,
				),
				Pos: pos,
			}
		}

		for _, trait := range typeParam.Bounds {
			if !checker.store.Holds(typeArg, trait) {
				return &UnresolvedTraitBoundError{
					Type:  typeArg,
					Trait: trait,
					Pos:   pos,
				}
			}
		}
	}

	typeSubst, lifetimeSubst := signature.Instantiation(node.TypeArgs, node.LifetimeArgs)

	// Each instantiated where-clause bound must be entailed
	// by the ambient bound context
	for _, fact := range signature.Where {
		instantiated := fact.SubstituteFact(typeSubst, lifetimeSubst)
		if !solver.entails(instantiated) {
			return &ObligationUnprovedError{
				Fact: instantiated,
				Pos:  pos,
			}
		}
	}

	ctx := incoming.Locations
	for i, argument := range node.Arguments {
		parameter := signature.Parameters[i]
		parameterType := parameter.Type.Substitute(typeSubst, lifetimeSubst)

		argumentType, afterArgument, err := checker.checkOperand(pos, ctx, argument)
		if err != nil {
			return err
		}
		if !IsSubType(checker.store, argumentType, parameterType) {
			var location ir.Location
			if use, ok := argument.(ir.UseOperand); ok {
				location = use.Location
			}
			return &TypeMismatchError{
				ExpectedType: parameterType,
				ActualType:   argumentType,
				Location:     location,
				Pos:          pos,
			}
		}
		ctx = afterArgument
	}

	returnType := signature.Return.Substitute(typeSubst, lifetimeSubst)

	out, err := assignLocation(checker.store, ctx, node.Target, returnType, pos)
	if err != nil {
		return err
	}

	return checker.checkTransfer(pos, out, active, solver, nil, node.Next)
}

// resolveSignature resolves a callee signature: the embedder's handler is
// the one-shot external lookup for functions from other modules.
// A panic in the handler is recovered and reported as an external error,
// so embedder bugs fail the one check instead of tearing down the caller.
func (checker *Checker) resolveSignature(name string) (signature *ir.FunctionSignature, err error) {
	if checker.config == nil || checker.config.SignatureHandler == nil {
		return nil, nil
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			signature = nil
			err = errors.NewExternalError(recovered)
		}
	}()

	return checker.config.SignatureHandler(name), nil
}
