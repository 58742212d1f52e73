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
	"github.com/ferrite-lang/ferrite/ir"
)

// IsSubType reports whether subType is a subtype of superType.
//
// The lattice is depth-only:
//   - the absurd type is a subtype of every type
//   - a sum type's variant is a subtype of the sum
//   - references are covariant in their referent
//   - uninitialized placeholders are subtypes only at equal size
//
// There is no width subtyping anywhere: contexts lift this relation
// location by location, over the same location set.
func IsSubType(store *ContextStore, subType, superType ir.Type) bool {
	return isSubType(store, subType, superType, nil)
}

func isSubType(
	store *ContextStore,
	subType, superType ir.Type,
	visitedSums map[string]struct{},
) bool {

	if _, ok := subType.(ir.AbsurdType); ok {
		return true
	}

	if subType.Equal(superType) {
		return true
	}

	switch superType := superType.(type) {
	case ir.RefType:
		subRef, ok := subType.(ir.RefType)
		return ok &&
			subRef.Lifetime == superType.Lifetime &&
			isSubType(store, subRef.Referent, superType.Referent, visitedSums)

	case ir.NamedType:
		decl, ok := store.TypeDecl(superType.Name)
		if !ok || !decl.IsSum() {
			return false
		}
		// guard against cyclic sum declarations
		if _, visited := visitedSums[superType.Name]; visited {
			return false
		}
		if visitedSums == nil {
			visitedSums = map[string]struct{}{}
		}
		visitedSums[superType.Name] = struct{}{}
		for _, variant := range decl.Variants {
			if isSubType(store, subType, variant, visitedSums) {
				return true
			}
		}
		return false
	}

	return false
}

// Variants returns the variant types of the given sum type,
// or nil if the type is not a declared sum.
func Variants(store *ContextStore, typ ir.NamedType) []ir.Type {
	decl, ok := store.TypeDecl(typ.Name)
	if !ok {
		return nil
	}
	return decl.Variants
}
