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

	"github.com/ferrite-lang/ferrite/ir"
)

// consumeLocation looks up the current type of the given location and
// consumes it: a Copy value leaves the context unchanged, a linear value
// leaves the location uninitialized at its size.
func consumeLocation(
	store *ContextStore,
	ctx *ir.LocationContext,
	location ir.Location,
	pos Pos,
) (ir.Type, *ir.LocationContext, error) {

	current, ok := ctx.Get(location)
	if !ok {
		return nil, nil, &MalformedContextError{
			Location: location,
			Message:  "consumed location is not mentioned",
			Pos:      pos,
		}
	}

	if _, uninit := current.(ir.UninitType); uninit {
		return nil, nil, &UseAfterMoveError{
			Location: location,
			Pos:      pos,
		}
	}

	if store.IsCopy(current) {
		return current, ctx, nil
	}

	size, ok := store.SizeOf(current)
	if !ok {
		return nil, nil, &MalformedContextError{
			Location: location,
			Message:  fmt.Sprintf("type `%s` has no size", current),
			Pos:      pos,
		}
	}

	return current, ctx.WithType(location, ir.UninitType{Size: size}), nil
}

// assignLocation writes the given type into the given location.
// The location must currently be uninitialized at the type's size.
func assignLocation(
	store *ContextStore,
	ctx *ir.LocationContext,
	location ir.Location,
	typ ir.Type,
	pos Pos,
) (*ir.LocationContext, error) {

	current, ok := ctx.Get(location)
	if !ok {
		return nil, &MalformedContextError{
			Location: location,
			Message:  "assigned location is not mentioned",
			Pos:      pos,
		}
	}

	currentUninit, uninit := current.(ir.UninitType)
	if !uninit {
		return nil, &DoubleInitError{
			Location:    location,
			CurrentType: current,
			Pos:         pos,
		}
	}

	// The absurd type is valid at any size
	if _, absurd := typ.(ir.AbsurdType); !absurd {
		size, sized := store.SizeOf(typ)
		if !sized {
			return nil, &MalformedContextError{
				Location: location,
				Message:  fmt.Sprintf("type `%s` has no size", typ),
				Pos:      pos,
			}
		}
		if size != currentUninit.Size {
			return nil, &MalformedContextError{
				Location: location,
				Message: fmt.Sprintf(
					"size mismatch: location occupies %d bytes, type `%s` occupies %d",
					currentUninit.Size,
					typ,
					size,
				),
				Pos: pos,
			}
		}
	}

	return ctx.WithType(location, typ), nil
}

// dropLocation explicitly forgets the value of the given location.
// Dropping is legal only for a Copy value; a linear value must be
// consumed instead.
func dropLocation(
	store *ContextStore,
	ctx *ir.LocationContext,
	location ir.Location,
	pos Pos,
) (*ir.LocationContext, error) {

	current, ok := ctx.Get(location)
	if !ok {
		return nil, &MalformedContextError{
			Location: location,
			Message:  "dropped location is not mentioned",
			Pos:      pos,
		}
	}

	if !store.IsCopy(current) {
		return nil, &UnresolvedTraitBoundError{
			Type:  current,
			Trait: CopyTrait,
			Pos:   pos,
		}
	}

	size, ok := store.SizeOf(current)
	if !ok {
		return nil, &MalformedContextError{
			Location: location,
			Message:  fmt.Sprintf("type `%s` has no size", current),
			Pos:      pos,
		}
	}

	return ctx.WithType(location, ir.UninitType{Size: size}), nil
}

// contextViolation identifies a required-context entry the derived
// context does not satisfy. An unmentioned location has a nil actualType.
type contextViolation struct {
	location     ir.Location
	requiredType ir.Type
	actualType   ir.Type
}

// requiredLocationViolation checks a derived location context against a
// required one, location by location in the required context's insertion
// order: every location the required context mentions must be mentioned
// in the derived context, with a type that is a depth subtype of the
// required one. The first failing entry is reported.
func requiredLocationViolation(
	store *ContextStore,
	actual *ir.LocationContext,
	required *ir.LocationContext,
) (violation contextViolation, violated bool) {

	required.Foreach(func(location ir.Location, requiredType ir.Type) {
		if violated {
			return
		}
		actualType, ok := actual.Get(location)
		if !ok || !IsSubType(store, actualType, requiredType) {
			violation = contextViolation{
				location:     location,
				requiredType: requiredType,
				actualType:   actualType,
			}
			violated = true
		}
	})
	return
}
