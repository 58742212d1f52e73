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
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/ferrite-lang/ferrite/errors"
	"github.com/ferrite-lang/ferrite/ir"
)

// Pos identifies the node a diagnostic refers to.
type Pos struct {
	Function string
	Label    ir.Label
}

func (p Pos) Position() Pos {
	return p
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%s", p.Function, p.Label)
}

// HasPosition is implemented by errors that refer to a node.
type HasPosition interface {
	Position() Pos
}

// SemanticError is a verification failure in the checked program.
type SemanticError interface {
	errors.UserError
	HasPosition
	isSemanticError()
	// RuleName names the checking rule that failed
	RuleName() string
}

// CheckerError

// CheckerError wraps all failures of one function.
// One function's rejection never halts checking of others.
type CheckerError struct {
	FunctionName string
	Errors       []error
}

var _ errors.UserError = CheckerError{}
var _ errors.ParentError = CheckerError{}

func (e CheckerError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "checking of function `%s` failed", e.FunctionName)
	for _, err := range e.Errors {
		sb.WriteString("\n- ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func (e CheckerError) ChildErrors() []error {
	return e.Errors
}

func (e CheckerError) Unwrap() []error {
	return e.Errors
}

func (CheckerError) IsUserError() {}

// TypeMismatchError

// TypeMismatchError reports that the context derived at a node does not
// satisfy the context declared for a successor.
type TypeMismatchError struct {
	ExpectedType ir.Type
	ActualType   ir.Type
	Location     ir.Location
	Successor    ir.Label
	Pos
}

var _ SemanticError = &TypeMismatchError{}

func (e *TypeMismatchError) Error() string {
	if e.Location == nil {
		return "mismatched types"
	}
	return fmt.Sprintf(
		"mismatched types at `%s`",
		e.Location,
	)
}

func (*TypeMismatchError) isSemanticError() {}

func (*TypeMismatchError) IsUserError() {}

func (*TypeMismatchError) RuleName() string {
	return "SubCont"
}

func (e *TypeMismatchError) SecondaryError() string {
	if e.Successor == "" {
		return fmt.Sprintf(
			"expected `%s`, got `%s`",
			e.ExpectedType,
			e.ActualType,
		)
	}
	return fmt.Sprintf(
		"successor `%s` requires `%s`, got `%s`",
		e.Successor,
		e.ExpectedType,
		e.ActualType,
	)
}

// UseAfterMoveError

// UseAfterMoveError reports consumption of a location that is already
// uninitialized at the point of use.
type UseAfterMoveError struct {
	Location ir.Location
	Pos
}

var _ SemanticError = &UseAfterMoveError{}

func (e *UseAfterMoveError) Error() string {
	return fmt.Sprintf(
		"use of moved or uninitialized location `%s`",
		e.Location,
	)
}

func (*UseAfterMoveError) isSemanticError() {}

func (*UseAfterMoveError) IsUserError() {}

func (*UseAfterMoveError) RuleName() string {
	return "Consume"
}

// DoubleInitError

// DoubleInitError reports assignment into a location that is not
// currently uninitialized.
type DoubleInitError struct {
	Location    ir.Location
	CurrentType ir.Type
	Pos
}

var _ SemanticError = &DoubleInitError{}

func (e *DoubleInitError) Error() string {
	return fmt.Sprintf(
		"assignment into initialized location `%s`",
		e.Location,
	)
}

func (*DoubleInitError) isSemanticError() {}

func (*DoubleInitError) IsUserError() {}

func (*DoubleInitError) RuleName() string {
	return "Assign"
}

func (e *DoubleInitError) SecondaryError() string {
	return fmt.Sprintf(
		"location currently holds `%s`; it must be consumed or dropped first",
		e.CurrentType,
	)
}

// DanglingLifetimeError

// DanglingLifetimeError reports ending a lifetime that is still mentioned
// by the current type of some location.
type DanglingLifetimeError struct {
	Lifetime ir.Lifetime
	Location ir.Location
	Type     ir.Type
	Pos
}

var _ SemanticError = &DanglingLifetimeError{}

func (e *DanglingLifetimeError) Error() string {
	return fmt.Sprintf(
		"lifetime %s ends while still referenced",
		e.Lifetime,
	)
}

func (*DanglingLifetimeError) isSemanticError() {}

func (*DanglingLifetimeError) IsUserError() {}

func (*DanglingLifetimeError) RuleName() string {
	return "LifetimeEnd"
}

func (e *DanglingLifetimeError) SecondaryError() string {
	return fmt.Sprintf(
		"location `%s` still holds `%s`",
		e.Location,
		e.Type,
	)
}

// ObligationUnprovedError

// ObligationUnprovedError reports an outlives obligation that is not
// entailed by the ambient bound context.
type ObligationUnprovedError struct {
	Fact ir.OutlivesFact
	Pos
}

var _ SemanticError = &ObligationUnprovedError{}

func (e *ObligationUnprovedError) Error() string {
	return fmt.Sprintf(
		"outlives obligation `%s` is not proved",
		e.Fact,
	)
}

func (*ObligationUnprovedError) isSemanticError() {}

func (*ObligationUnprovedError) IsUserError() {}

func (*ObligationUnprovedError) RuleName() string {
	return "SubContOblig"
}

// NonExhaustiveSwitchError

// NonExhaustiveSwitchError reports a switch whose branches fail to cover
// the scrutinee's static type.
type NonExhaustiveSwitchError struct {
	Subject         ir.NamedType
	MissingVariants []ir.Type
	Pos
}

var _ SemanticError = &NonExhaustiveSwitchError{}

func (e *NonExhaustiveSwitchError) Error() string {
	return fmt.Sprintf(
		"switch over `%s` is not exhaustive",
		e.Subject.String(),
	)
}

func (*NonExhaustiveSwitchError) isSemanticError() {}

func (*NonExhaustiveSwitchError) IsUserError() {}

func (*NonExhaustiveSwitchError) RuleName() string {
	return "Switch"
}

func (e *NonExhaustiveSwitchError) SecondaryError() string {
	var variants []string
	for _, variant := range e.MissingVariants {
		variants = append(variants, fmt.Sprintf("`%s`", variant))
	}
	return fmt.Sprintf(
		"missing variants: %s",
		strings.Join(variants, ", "),
	)
}

// UnresolvedTraitBoundError

// UnresolvedTraitBoundError reports a required trait bound with neither a
// concrete impl fact nor a where-clause postulate.
type UnresolvedTraitBoundError struct {
	Type  ir.Type
	Trait string
	Pos
}

var _ SemanticError = &UnresolvedTraitBoundError{}

func (e *UnresolvedTraitBoundError) Error() string {
	return fmt.Sprintf(
		"no impl or postulate for `%s: %s`",
		e.Type,
		e.Trait,
	)
}

func (*UnresolvedTraitBoundError) isSemanticError() {}

func (*UnresolvedTraitBoundError) IsUserError() {}

func (*UnresolvedTraitBoundError) RuleName() string {
	return "TraitBound"
}

// MalformedContextError

// MalformedContextError reports a totality violation: a location listed
// twice, or a location that exists in the function but is missing from a
// declared context.
type MalformedContextError struct {
	Location ir.Location
	Message  string
	Pos
}

var _ SemanticError = &MalformedContextError{}

func (e *MalformedContextError) Error() string {
	if e.Location != nil {
		return fmt.Sprintf(
			"malformed context: %s: `%s`",
			e.Message,
			e.Location,
		)
	}
	return fmt.Sprintf("malformed context: %s", e.Message)
}

func (*MalformedContextError) isSemanticError() {}

func (*MalformedContextError) IsUserError() {}

func (*MalformedContextError) RuleName() string {
	return "Context"
}

// NotDeclaredLabelError

// NotDeclaredLabelError reports a reference to a label that the function's
// label table does not define.
type NotDeclaredLabelError struct {
	Label          ir.Label
	DeclaredLabels []ir.Label
	Pos
}

var _ SemanticError = &NotDeclaredLabelError{}

func (e *NotDeclaredLabelError) Error() string {
	return fmt.Sprintf(
		"reference to undefined label `%s`",
		e.Label,
	)
}

func (*NotDeclaredLabelError) isSemanticError() {}

func (*NotDeclaredLabelError) IsUserError() {}

func (*NotDeclaredLabelError) RuleName() string {
	return "Label"
}

func (e *NotDeclaredLabelError) SecondaryError() string {
	suggestion := e.findClosestLabel()
	if suggestion == "" {
		return "not defined in this function"
	}
	return fmt.Sprintf("did you mean `%s`?", suggestion)
}

// findClosestLabel searches the function's defined labels and finds the
// name with the smallest edit distance from the referenced label.
// In cases of typos, this should provide a helpful hint.
func (e *NotDeclaredLabelError) findClosestLabel() (closestLabel string) {
	nameRunes := []rune(string(e.Label))

	closestDistance := len(nameRunes)

	sortedLabels := make([]string, 0, len(e.DeclaredLabels))
	for _, label := range e.DeclaredLabels {
		sortedLabels = append(sortedLabels, string(label))
	}
	sort.Strings(sortedLabels)

	for _, label := range sortedLabels {
		distance := levenshtein.DistanceForStrings(
			nameRunes,
			[]rune(label),
			levenshtein.DefaultOptions,
		)

		// Don't update the closest label if the distance is greater than one
		// already found, or if the edits required would involve a complete
		// replacement of the label's text
		if distance < closestDistance && distance < len(label) {
			closestLabel = label
			closestDistance = distance
		}
	}

	return
}

// RedeclarationError

// RedeclarationError reports two declarations sharing a name.
type RedeclarationError struct {
	Name string
	Pos
}

var _ SemanticError = &RedeclarationError{}

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf(
		"`%s` is declared twice",
		e.Name,
	)
}

func (*RedeclarationError) isSemanticError() {}

func (*RedeclarationError) IsUserError() {}

func (*RedeclarationError) RuleName() string {
	return "TypeLookup"
}

// VariantSizeError

// VariantSizeError reports a sum type declaration with a variant whose
// size differs from the sum's own.
type VariantSizeError struct {
	SumName     string
	Variant     ir.Type
	SumSize     uint64
	VariantSize uint64
	Pos
}

var _ SemanticError = &VariantSizeError{}

func (e *VariantSizeError) Error() string {
	return fmt.Sprintf(
		"variant `%s` of sum `%s` occupies %d bytes, not the sum's %d",
		e.Variant,
		e.SumName,
		e.VariantSize,
		e.SumSize,
	)
}

func (*VariantSizeError) isSemanticError() {}

func (*VariantSizeError) IsUserError() {}

func (*VariantSizeError) RuleName() string {
	return "TypeLookup"
}

// NotDeclaredTypeError

// NotDeclaredTypeError reports a reference to a type with no declaration
// in the context store.
type NotDeclaredTypeError struct {
	Name string
	Pos
}

var _ SemanticError = &NotDeclaredTypeError{}

func (e *NotDeclaredTypeError) Error() string {
	return fmt.Sprintf(
		"reference to undeclared type `%s`",
		e.Name,
	)
}

func (*NotDeclaredTypeError) isSemanticError() {}

func (*NotDeclaredTypeError) IsUserError() {}

func (*NotDeclaredTypeError) RuleName() string {
	return "TypeLookup"
}

// NotDeclaredLifetimeError

// NotDeclaredLifetimeError reports a lifetime used while not active.
type NotDeclaredLifetimeError struct {
	Lifetime ir.Lifetime
	Pos
}

var _ SemanticError = &NotDeclaredLifetimeError{}

func (e *NotDeclaredLifetimeError) Error() string {
	return fmt.Sprintf(
		"lifetime %s is not active",
		e.Lifetime,
	)
}

func (*NotDeclaredLifetimeError) isSemanticError() {}

func (*NotDeclaredLifetimeError) IsUserError() {}

func (*NotDeclaredLifetimeError) RuleName() string {
	return "Lifetime"
}

// NotDeclaredFunctionError

// NotDeclaredFunctionError reports a call to a function whose signature
// could not be resolved, neither in the program nor by the embedder.
type NotDeclaredFunctionError struct {
	Name string
	Pos
}

var _ SemanticError = &NotDeclaredFunctionError{}

func (e *NotDeclaredFunctionError) Error() string {
	return fmt.Sprintf(
		"call to unresolved function `%s`",
		e.Name,
	)
}

func (*NotDeclaredFunctionError) isSemanticError() {}

func (*NotDeclaredFunctionError) IsUserError() {}

func (*NotDeclaredFunctionError) RuleName() string {
	return "Call"
}

// ArityError

// ArityError reports a generic instantiation or call with the wrong
// number of arguments.
type ArityError struct {
	What          string
	ExpectedCount int
	ActualCount   int
	Pos
}

var _ SemanticError = &ArityError{}

func (e *ArityError) Error() string {
	return fmt.Sprintf(
		"wrong number of %s: expected %d, got %d",
		e.What,
		e.ExpectedCount,
		e.ActualCount,
	)
}

func (*ArityError) isSemanticError() {}

func (*ArityError) IsUserError() {}

func (*ArityError) RuleName() string {
	return "Arity"
}

// LifetimeAlreadyActiveError

// LifetimeAlreadyActiveError reports beginning a lifetime that is already
// in the active set.
type LifetimeAlreadyActiveError struct {
	Lifetime ir.Lifetime
	Pos
}

var _ SemanticError = &LifetimeAlreadyActiveError{}

func (e *LifetimeAlreadyActiveError) Error() string {
	return fmt.Sprintf(
		"lifetime %s is already active",
		e.Lifetime,
	)
}

func (*LifetimeAlreadyActiveError) isSemanticError() {}

func (*LifetimeAlreadyActiveError) IsUserError() {}

func (*LifetimeAlreadyActiveError) RuleName() string {
	return "LifetimeBegin"
}

// LifetimeContextMismatchError

// LifetimeContextMismatchError reports that the active-lifetime set derived
// at a node differs from the set a successor requires.
type LifetimeContextMismatchError struct {
	Expected  *ir.LifetimeContext
	Actual    []ir.Lifetime
	Successor ir.Label
	Pos
}

var _ SemanticError = &LifetimeContextMismatchError{}

func (e *LifetimeContextMismatchError) Error() string {
	return fmt.Sprintf(
		"active lifetimes do not match successor `%s`",
		e.Successor,
	)
}

func (*LifetimeContextMismatchError) isSemanticError() {}

func (*LifetimeContextMismatchError) IsUserError() {}

func (*LifetimeContextMismatchError) RuleName() string {
	return "SubCont"
}

func (e *LifetimeContextMismatchError) SecondaryError() string {
	var actual []string
	for _, lifetime := range e.Actual {
		actual = append(actual, lifetime.String())
	}
	return fmt.Sprintf(
		"successor requires %s, got {%s}",
		e.Expected,
		strings.Join(actual, ", "),
	)
}

// DeadCodeError

// DeadCodeError reports a dead-code node whose incoming context has no
// location of the absurd type, i.e. no witness of unreachability.
type DeadCodeError struct {
	Pos
}

var _ SemanticError = &DeadCodeError{}

func (e *DeadCodeError) Error() string {
	return "dead code without a witness of unreachability"
}

func (*DeadCodeError) isSemanticError() {}

func (*DeadCodeError) IsUserError() {}

func (*DeadCodeError) RuleName() string {
	return "DeadCode"
}

func (e *DeadCodeError) SecondaryError() string {
	return "no location has the absurd type in the incoming context"
}

// InstantiationError

// InstantiationError reports an invalid generic instantiation,
// e.g. a type argument whose size differs from the parameter's.
type InstantiationError struct {
	Message string
	Pos
}

var _ SemanticError = &InstantiationError{}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("invalid instantiation: %s", e.Message)
}

func (*InstantiationError) isSemanticError() {}

func (*InstantiationError) IsUserError() {}

func (*InstantiationError) RuleName() string {
	return "Instantiate"
}

// InvalidEntryError

// InvalidEntryError reports an entry typing that does not match the
// function's signature.
type InvalidEntryError struct {
	Message string
	Pos
}

var _ SemanticError = &InvalidEntryError{}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid entry typing: %s", e.Message)
}

func (*InvalidEntryError) isSemanticError() {}

func (*InvalidEntryError) IsUserError() {}

func (*InvalidEntryError) RuleName() string {
	return "Entry"
}

// InvalidExitError

// InvalidExitError reports an exit typing that does not match the
// function's signature.
type InvalidExitError struct {
	Message string
	Pos
}

var _ SemanticError = &InvalidExitError{}

func (e *InvalidExitError) Error() string {
	return fmt.Sprintf("invalid exit typing: %s", e.Message)
}

func (*InvalidExitError) isSemanticError() {}

func (*InvalidExitError) IsUserError() {}

func (*InvalidExitError) RuleName() string {
	return "Exit"
}
