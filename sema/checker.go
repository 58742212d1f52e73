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
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/ferrite-lang/ferrite/errors"
	"github.com/ferrite-lang/ferrite/ir"
)

// BoolTypeName is the declared type the condition of an if node and the
// result of a comparison must have.
const BoolTypeName = "Bool"

// Checker verifies one function against its declared label table.
//
// Every label's required typing is supplied data, not an unknown to solve
// for, so each node is checked exactly once, independently, against its
// own declared incoming typing and its successors' declared typings.
// Cyclic control flow needs no fixpoint iteration.
type Checker struct {
	function *ir.Function
	store    *ContextStore
	statics  []ir.StaticDecl
	config   *Config
	// allLocations is every location that exists in the function;
	// every declared context must mention exactly this set
	allLocations []ir.Location
	locationSet  map[ir.Location]struct{}
	interner     *lifetimeInterner
	// exitType is the synthesized typing of the exit label,
	// which is only ever referenced, never defined
	exitType  ir.NodeType
	isChecked bool
}

// NewChecker prepares verification of the given function.
//
// The store is the program-wide context store; for a generic function it
// is extended with the function's type and lifetime parameters for the
// duration of checking the body. The store itself is never mutated.
func NewChecker(
	function *ir.Function,
	store *ContextStore,
	statics []ir.StaticDecl,
	config *Config,
) (*Checker, error) {

	if function == nil {
		return nil, errors.NewDefaultUserError("missing function")
	}
	if store == nil {
		return nil, errors.NewDefaultUserError("missing context store")
	}
	if function.Labels == nil {
		return nil, errors.NewDefaultUserError("missing label table")
	}

	entryPos := Pos{
		Function: function.Name,
		Label:    ir.EntryLabel,
	}

	extended, err := store.Extend(
		function.TypeParams,
		function.LifetimeParams,
		nil,
		entryPos,
	)
	if err != nil {
		return nil, err
	}

	// The signature's where-clause may only mention lifetimes
	// that are in scope for the whole body
	declaredLifetimes := map[ir.Lifetime]struct{}{
		ir.StaticLifetime: {},
	}
	for _, lifetimeParam := range function.LifetimeParams {
		declaredLifetimes[lifetimeParam] = struct{}{}
	}
	for _, fact := range function.Where {
		var mentioned []ir.Lifetime
		switch fact := fact.(type) {
		case ir.LifetimeOutlives:
			mentioned = []ir.Lifetime{fact.Subject, fact.Bound}

		case ir.TypeOutlives:
			err := extended.checkTypeInScope(fact.Subject, entryPos)
			if err != nil {
				return nil, err
			}
			mentioned = append(
				mentionedLifetimes(fact.Subject, nil),
				fact.Bound,
			)
		}
		for _, lifetime := range mentioned {
			if _, declared := declaredLifetimes[lifetime]; !declared {
				return nil, &NotDeclaredLifetimeError{
					Lifetime: lifetime,
					Pos:      entryPos,
				}
			}
		}
	}

	allLocations := function.AllLocations(statics)
	locationSet := make(map[ir.Location]struct{}, len(allLocations))
	for _, location := range allLocations {
		locationSet[location] = struct{}{}
	}

	checker := &Checker{
		function:     function,
		store:        extended,
		statics:      statics,
		config:       config,
		allLocations: allLocations,
		locationSet:  locationSet,
		interner:     newLifetimeInterner(),
	}

	checker.internFunctionLifetimes()

	return checker, nil
}

// internFunctionLifetimes assigns an index to every lifetime the function
// mentions, in a deterministic order: static first, then the lifetime
// parameters, then the signature's where-clause, then each label's
// declared contexts and node in table order. Interning everything up
// front keeps the index assignment independent of checking order.
func (checker *Checker) internFunctionLifetimes() {
	interner := checker.interner

	internFacts := func(facts []ir.OutlivesFact) {
		for _, fact := range facts {
			switch fact := fact.(type) {
			case ir.LifetimeOutlives:
				interner.index(fact.Subject)
				interner.index(fact.Bound)
			case ir.TypeOutlives:
				interner.index(fact.Bound)
			}
		}
	}

	interner.index(ir.StaticLifetime)
	for _, lifetimeParam := range checker.function.LifetimeParams {
		interner.index(lifetimeParam)
	}
	internFacts(checker.function.Where)

	checker.function.Labels.Foreach(func(_ ir.Label, labeled *ir.LabeledNode) {
		for _, lifetime := range labeled.Type.Lifetimes.Lifetimes() {
			interner.index(lifetime)
		}
		internFacts(labeled.Type.Bounds.Facts())

		switch node := labeled.Node.(type) {
		case ir.LifetimeBeginNode:
			interner.index(node.Lifetime)
		case ir.LifetimeEndNode:
			interner.index(node.Lifetime)
		case ir.CallNode:
			for _, lifetimeArg := range node.LifetimeArgs {
				interner.index(lifetimeArg)
			}
		}
	})
}

// mentionedLifetimes collects every lifetime the type refers to, directly
// or through a type or lifetime argument.
func mentionedLifetimes(typ ir.Type, result []ir.Lifetime) []ir.Lifetime {
	switch typ := typ.(type) {
	case ir.RefType:
		result = append(result, typ.Lifetime)
		result = mentionedLifetimes(typ.Referent, result)

	case ir.NamedType:
		result = append(result, typ.LifetimeArgs...)
		for _, typeArg := range typ.TypeArgs {
			result = mentionedLifetimes(typeArg, result)
		}
	}
	return result
}

// Check verifies the function. The result is a single pass/fail judgment:
// nil, or a CheckerError wrapping every collected failure.
func (checker *Checker) Check() error {
	if checker.isChecked {
		panic(errors.NewUnexpectedError("checker may only be used once"))
	}
	checker.isChecked = true

	var checkStart time.Time
	if checker.config != nil && checker.config.TracingEnabled {
		checkStart = time.Now()
	}

	errs := checker.validateStructure()

	if len(errs) == 0 {
		err := checker.checkEntry()
		if err != nil {
			errs = append(errs, err)
		} else {
			checker.exitType = checker.buildExitType()
			err = checker.checkNodes()
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	if checker.config != nil && checker.config.TracingEnabled {
		checker.reportFunctionCheckTrace(time.Since(checkStart))
	}

	if len(errs) > 0 {
		return CheckerError{
			FunctionName: checker.function.Name,
			Errors:       errs,
		}
	}
	return nil
}

// checkNodes checks every label of the table.
// The first failing node aborts verification of the function.
func (checker *Checker) checkNodes() error {
	return checker.function.Labels.ForeachWithError(
		func(label ir.Label, labeled *ir.LabeledNode) error {
			var nodeStart time.Time
			tracing := checker.config != nil && checker.config.TracingEnabled
			if tracing {
				nodeStart = time.Now()
			}

			err := checker.checkNode(label, labeled)

			if tracing {
				checker.reportNodeCheckTrace(label, labeled.Node, time.Since(nodeStart))
			}

			return err
		},
	)
}

// validateStructure checks the shape of the label table before any typing
// rule runs: the entry label is defined, the exit label is not, every
// successor is defined, and every declared location context is total.
func (checker *Checker) validateStructure() []error {
	var errs []error

	function := checker.function

	if _, ok := function.Labels.Get(ir.EntryLabel); !ok {
		errs = append(errs, &InvalidEntryError{
			Message: "entry label is not defined",
			Pos:     checker.pos(ir.EntryLabel),
		})
	}
	if _, ok := function.Labels.Get(ir.ExitLabel); ok {
		errs = append(errs, &InvalidExitError{
			Message: "exit label must only be referenced, never defined",
			Pos:     checker.pos(ir.ExitLabel),
		})
	}

	declaredLabels := function.Labels.Keys()

	function.Labels.Foreach(func(label ir.Label, labeled *ir.LabeledNode) {
		pos := checker.pos(label)

		errs = append(errs, checker.validateContextTotality(labeled.Type.Locations, pos)...)

		for _, successor := range labeled.Node.Successors() {
			if successor == ir.ExitLabel {
				continue
			}
			if !function.Labels.Contains(successor) {
				errs = append(errs, &NotDeclaredLabelError{
					Label:          successor,
					DeclaredLabels: declaredLabels,
					Pos:            pos,
				})
			}
		}
	})

	return errs
}

// validateContextTotality checks that a declared location context mentions
// exactly the locations that exist in the function: no width subtyping,
// a linear value can never be silently forgotten by omission.
func (checker *Checker) validateContextTotality(
	ctx *ir.LocationContext,
	pos Pos,
) []error {
	var errs []error

	ctx.Foreach(func(location ir.Location, _ ir.Type) {
		if _, exists := checker.locationSet[location]; !exists {
			errs = append(errs, &MalformedContextError{
				Location: location,
				Message:  "mentioned location does not exist in the function",
				Pos:      pos,
			})
		}
	})

	for _, location := range checker.allLocations {
		if !ctx.Contains(location) {
			errs = append(errs, &MalformedContextError{
				Location: location,
				Message:  "location exists in the function but is missing from the context",
				Pos:      pos,
			})
		}
	}

	return errs
}

// checkEntry checks the declared entry typing against the signature:
// parameters initialized at their declared types, locals and the return
// slot uninitialized, statics at their declared types, the active
// lifetimes exactly the static lifetime plus the lifetime parameters,
// and the bound context exactly the signature's where-clause.
func (checker *Checker) checkEntry() error {
	function := checker.function
	pos := checker.pos(ir.EntryLabel)

	labeled, ok := function.Labels.Get(ir.EntryLabel)
	if !ok {
		return &InvalidEntryError{
			Message: "entry label is not defined",
			Pos:     pos,
		}
	}
	declared := labeled.Type

	returnType, ok := declared.Locations.Get(ir.ReturnLocation{})
	if !ok {
		return &InvalidEntryError{
			Message: "return slot is not mentioned",
			Pos:     pos,
		}
	}
	returnUninit, isUninit := returnType.(ir.UninitType)
	if !isUninit {
		return &InvalidEntryError{
			Message: fmt.Sprintf(
				"return slot must be uninitialized, got `%s`",
				returnType,
			),
			Pos: pos,
		}
	}
	if returnSize, sized := checker.store.SizeOf(function.Return); sized &&
		returnSize != returnUninit.Size {

		return &InvalidEntryError{
			Message: fmt.Sprintf(
				"return slot occupies %d bytes, return type `%s` occupies %d",
				returnUninit.Size,
				function.Return,
				returnSize,
			),
			Pos: pos,
		}
	}

	for _, parameter := range function.Parameters {
		location := ir.ParameterLocation{Name: parameter.Name}
		actual, ok := declared.Locations.Get(location)
		if !ok {
			return &InvalidEntryError{
				Message: fmt.Sprintf("parameter `%s` is not mentioned", parameter.Name),
				Pos:     pos,
			}
		}
		if !actual.Equal(parameter.Type) {
			return &InvalidEntryError{
				Message: fmt.Sprintf(
					"parameter `%s` must have its declared type `%s`, got `%s`",
					parameter.Name,
					parameter.Type,
					actual,
				),
				Pos: pos,
			}
		}
	}

	for _, local := range function.Locals {
		location := ir.LocalLocation{Name: local}
		actual, ok := declared.Locations.Get(location)
		if !ok {
			return &InvalidEntryError{
				Message: fmt.Sprintf("local `%s` is not mentioned", local),
				Pos:     pos,
			}
		}
		if _, isUninit := actual.(ir.UninitType); !isUninit {
			return &InvalidEntryError{
				Message: fmt.Sprintf(
					"local `%s` must be uninitialized, got `%s`",
					local,
					actual,
				),
				Pos: pos,
			}
		}
	}

	for _, static := range checker.statics {
		location := ir.StaticLocation{Name: static.Name}
		actual, ok := declared.Locations.Get(location)
		if !ok {
			return &InvalidEntryError{
				Message: fmt.Sprintf("static `%s` is not mentioned", static.Name),
				Pos:     pos,
			}
		}
		if !actual.Equal(static.Type) {
			return &InvalidEntryError{
				Message: fmt.Sprintf(
					"static `%s` must have its declared type `%s`, got `%s`",
					static.Name,
					static.Type,
					actual,
				),
				Pos: pos,
			}
		}
	}

	expectedActive := checker.signatureLifetimes()
	declaredActive := checker.interner.set(declared.Lifetimes)
	if !sameLifetimes(declaredActive, expectedActive) {
		return &InvalidEntryError{
			Message: fmt.Sprintf(
				"active lifetimes must be the static lifetime plus the lifetime parameters, got %s",
				declared.Lifetimes,
			),
			Pos: pos,
		}
	}

	if err := checker.checkBoundSetEqualsWhere(declared.Bounds, pos, "entry"); err != nil {
		return err
	}

	return nil
}

// checkBoundSetEqualsWhere checks that a declared bound context is exactly
// the signature's where-clause obligation set.
func (checker *Checker) checkBoundSetEqualsWhere(
	bounds *ir.BoundContext,
	pos Pos,
	where string,
) error {
	function := checker.function

	whereSet := ir.NewBoundContext(function.Where...)
	for _, fact := range bounds.Facts() {
		if !whereSet.ContainsFact(fact) {
			return &InvalidEntryError{
				Message: fmt.Sprintf(
					"%s bound context contains `%s`, which is not a where-clause obligation",
					where,
					fact,
				),
				Pos: pos,
			}
		}
	}
	for _, fact := range function.Where {
		if !bounds.ContainsFact(fact) {
			return &InvalidEntryError{
				Message: fmt.Sprintf(
					"%s bound context is missing the where-clause obligation `%s`",
					where,
					fact,
				),
				Pos: pos,
			}
		}
	}
	return nil
}

// signatureLifetimes is the active set at both entry and exit:
// the static lifetime plus the declared lifetime parameters.
func (checker *Checker) signatureLifetimes() *bitset.BitSet {
	active := bitset.New(uint(len(checker.interner.lifetimes)))
	active.Set(checker.interner.index(ir.StaticLifetime))
	for _, lifetimeParam := range checker.function.LifetimeParams {
		active.Set(checker.interner.index(lifetimeParam))
	}
	return active
}

// buildExitType synthesizes the typing of the exit label from the
// signature: locals and parameters uninitialized, the return slot at the
// declared return type, statics at their declared types, and the bound
// context the full where-clause obligation set.
//
// Local slot sizes are taken from the declared entry typing,
// which checkEntry has already validated.
func (checker *Checker) buildExitType() ir.NodeType {
	function := checker.function

	entryLabeled, _ := function.Labels.Get(ir.EntryLabel)
	entryLocations := entryLabeled.Type.Locations

	locations := &ir.LocationContext{}
	locations = locations.WithType(ir.ReturnLocation{}, function.Return)

	for _, parameter := range function.Parameters {
		location := ir.ParameterLocation{Name: parameter.Name}
		size, _ := checker.store.SizeOf(parameter.Type)
		locations = locations.WithType(location, ir.UninitType{Size: size})
	}

	for _, local := range function.Locals {
		location := ir.LocalLocation{Name: local}
		entryType, _ := entryLocations.Get(location)
		uninit, ok := entryType.(ir.UninitType)
		if !ok {
			uninit = ir.UninitType{}
		}
		locations = locations.WithType(location, uninit)
	}

	for _, static := range checker.statics {
		locations = locations.WithType(
			ir.StaticLocation{Name: static.Name},
			static.Type,
		)
	}

	lifetimes, err := ir.NewLifetimeContext(
		checker.interner.activeLifetimes(checker.signatureLifetimes())...,
	)
	if err != nil {
		panic(errors.NewUnreachableError())
	}

	return ir.NodeType{
		Locations: locations,
		Lifetimes: lifetimes,
		Bounds:    ir.NewBoundContext(function.Where...),
	}
}

// successorType returns the declared typing of the given label.
// The exit label has no definition; its typing is the synthesized one.
func (checker *Checker) successorType(successor ir.Label, pos Pos) (ir.NodeType, error) {
	if successor == ir.ExitLabel {
		return checker.exitType, nil
	}
	labeled, ok := checker.function.Labels.Get(successor)
	if !ok {
		return ir.NodeType{}, &NotDeclaredLabelError{
			Label:          successor,
			DeclaredLabels: checker.function.Labels.Keys(),
			Pos:            pos,
		}
	}
	return labeled.Type, nil
}

// checkTransfer checks a transfer of control to a successor label:
// the derived location context must satisfy the successor's declared one
// location by location under depth subtyping, the derived active-lifetime
// set must equal the declared one, and the successor's obligations,
// plus any derived obligations, must be entailed by what the node can
// currently prove.
func (checker *Checker) checkTransfer(
	pos Pos,
	out *ir.LocationContext,
	active *bitset.BitSet,
	solver *obligationSolver,
	derived []ir.OutlivesFact,
	successor ir.Label,
) error {

	required, err := checker.successorType(successor, pos)
	if err != nil {
		return err
	}

	if violation, violated := requiredLocationViolation(checker.store, out, required.Locations); violated {
		if violation.actualType == nil {
			// totality was validated up front; the declared incoming
			// context mentions every location the function has
			panic(errors.NewUnreachableError())
		}
		return &TypeMismatchError{
			ExpectedType: violation.requiredType,
			ActualType:   violation.actualType,
			Location:     violation.location,
			Successor:    successor,
			Pos:          pos,
		}
	}

	requiredActive := checker.interner.set(required.Lifetimes)
	if !sameLifetimes(requiredActive, active) {
		return &LifetimeContextMismatchError{
			Expected:  required.Lifetimes,
			Actual:    checker.interner.activeLifetimes(active),
			Successor: successor,
			Pos:       pos,
		}
	}

	obligations := make([]ir.OutlivesFact, 0, required.Bounds.Len()+len(derived))
	obligations = append(obligations, required.Bounds.Facts()...)
	obligations = append(obligations, derived...)
	if fact, unproved := solver.firstUnentailed(obligations); unproved {
		return &ObligationUnprovedError{
			Fact: fact,
			Pos:  pos,
		}
	}

	return nil
}

// checkNode dispatches the checking rule for one label.
//
// If any location of the incoming context has the absurd type, the node is
// unreachable and any declared successor typing is accepted unconditionally.
func (checker *Checker) checkNode(label ir.Label, labeled *ir.LabeledNode) error {
	pos := checker.pos(label)

	incoming := labeled.Type

	if incoming.Locations.ContainsAbsurd() {
		return nil
	}

	active := checker.interner.set(incoming.Lifetimes)
	solver := newObligationSolver(checker.interner, incoming.Bounds)

	switch node := labeled.Node.(type) {
	case ir.AssignNode:
		return checker.checkAssign(pos, incoming, active, solver, node)

	case ir.CallNode:
		return checker.checkCall(pos, incoming, active, solver, node)

	case ir.IfNode:
		return checker.checkIf(pos, incoming, active, solver, node)

	case ir.SwitchNode:
		return checker.checkSwitch(pos, incoming, active, solver, node)

	case ir.DropNode:
		return checker.checkDrop(pos, incoming, active, solver, node)

	case ir.LifetimeBeginNode:
		return checker.checkLifetimeBegin(pos, incoming, active, solver, node)

	case ir.LifetimeEndNode:
		return checker.checkLifetimeEnd(pos, incoming, active, solver, node)

	case ir.DeadCodeNode:
		return checker.checkDeadCode(pos, incoming)
	}

	panic(errors.NewUnreachableError())
}

func (checker *Checker) pos(label ir.Label) Pos {
	return Pos{
		Function: checker.function.Name,
		Label:    label,
	}
}

// boolType resolves the declared Bool type,
// required by if conditions and comparisons.
func (checker *Checker) boolType(pos Pos) (ir.NamedType, error) {
	boolType := ir.NamedType{Name: BoolTypeName}
	if _, ok := checker.store.TypeDecl(BoolTypeName); !ok {
		return boolType, &NotDeclaredTypeError{
			Name: BoolTypeName,
			Pos:  pos,
		}
	}
	return boolType, nil
}
