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
	"github.com/ferrite-lang/ferrite/common/orderedmap"
	"github.com/ferrite-lang/ferrite/ir"
)

// CopyTrait is the capability permitting a value to be duplicated on use
// without uninitializing its source.
const CopyTrait = "Copy"

// ContextStore is the immutable record of declared types, type and
// lifetime parameters, and trait-bound postulates.
//
// A store is constructed once, before any verification begins, and is
// never mutated afterwards, so concurrent readers never race.
// Generic functions check their bodies against a child store
// created with Extend; the parent is shared and untouched.
type ContextStore struct {
	parent         *ContextStore
	types          *orderedmap.OrderedMap[string, *ir.TypeDecl]
	typeParams     map[string]ir.TypeParam
	lifetimeParams map[string]ir.Lifetime
	bounds         []ir.TraitBound
}

// NewContextStore builds the program-wide store from type declarations and
// impl facts. Declarations are processed in order: a declaration may only
// reference names declared before it.
func NewContextStore(types []*ir.TypeDecl, impls []ir.TraitBound) (*ContextStore, error) {
	store := &ContextStore{
		types: orderedmap.New[string, *ir.TypeDecl](len(types)),
	}

	for _, decl := range types {
		if store.types.Contains(decl.Name) {
			return nil, &RedeclarationError{
				Name: decl.Name,
				Pos:  Pos{},
			}
		}
		store.types.Set(decl.Name, decl)
	}

	// Sum variants may only reference declared types, and must occupy
	// the sum's own size: switch narrowing retypes the scrutinee location
	// in place, which must never change the location's size
	for _, decl := range types {
		for _, variant := range decl.Variants {
			err := store.checkTypeInScope(variant, Pos{})
			if err != nil {
				return nil, err
			}
			variantSize, sized := store.SizeOf(variant)
			if sized && variantSize != decl.Size {
				return nil, &VariantSizeError{
					SumName:     decl.Name,
					Variant:     variant,
					SumSize:     decl.Size,
					VariantSize: variantSize,
					Pos:         Pos{},
				}
			}
		}
	}

	for _, impl := range impls {
		err := store.checkTypeInScope(impl.Type, Pos{})
		if err != nil {
			return nil, err
		}
		store.bounds = append(store.bounds, impl)
	}

	return store, nil
}

// Extend returns a child store with the given parameters and where-clause
// postulates in scope. Parameters are brought into scope before the bounds
// are validated, so a bound may only reference a parameter declared with it
// or earlier.
func (s *ContextStore) Extend(
	typeParams []ir.TypeParam,
	lifetimeParams []ir.Lifetime,
	bounds []ir.TraitBound,
	pos Pos,
) (*ContextStore, error) {

	child := &ContextStore{
		parent:         s,
		typeParams:     make(map[string]ir.TypeParam, len(typeParams)),
		lifetimeParams: make(map[string]ir.Lifetime, len(lifetimeParams)),
	}

	for _, typeParam := range typeParams {
		child.typeParams[typeParam.Name] = typeParam
	}
	for _, lifetimeParam := range lifetimeParams {
		child.lifetimeParams[lifetimeParam.Name] = lifetimeParam
	}

	for _, bound := range bounds {
		err := child.checkTypeInScope(bound.Type, pos)
		if err != nil {
			return nil, err
		}
		child.bounds = append(child.bounds, bound)
	}

	return child, nil
}

// TypeDecl resolves a type declaration by name.
func (s *ContextStore) TypeDecl(name string) (*ir.TypeDecl, bool) {
	for store := s; store != nil; store = store.parent {
		if store.types == nil {
			continue
		}
		decl, ok := store.types.Get(name)
		if ok {
			return decl, true
		}
	}
	return nil, false
}

// TypeParam resolves a type parameter by name.
func (s *ContextStore) TypeParam(name string) (ir.TypeParam, bool) {
	for store := s; store != nil; store = store.parent {
		typeParam, ok := store.typeParams[name]
		if ok {
			return typeParam, true
		}
	}
	return ir.TypeParam{}, false
}

// LifetimeParam resolves a lifetime parameter by name.
func (s *ContextStore) LifetimeParam(name string) (ir.Lifetime, bool) {
	for store := s; store != nil; store = store.parent {
		lifetimeParam, ok := store.lifetimeParams[name]
		if ok {
			return lifetimeParam, true
		}
	}
	return ir.Lifetime{}, false
}

// Holds reports whether the given type satisfies the given trait.
//
// This is a pure lookup: a bound holds only if a matching concrete impl
// fact or declared where-clause postulate is present. No bound is ever
// derived by search over user code.
func (s *ContextStore) Holds(typ ir.Type, trait string) bool {
	if typeParam, ok := typ.(ir.TypeParamType); ok {
		declared, found := s.TypeParam(typeParam.Name)
		if found {
			for _, bound := range declared.Bounds {
				if bound == trait {
					return true
				}
			}
		}
	}

	for store := s; store != nil; store = store.parent {
		for _, bound := range store.bounds {
			if bound.Trait != trait {
				continue
			}
			if bound.Type.Equal(typ) {
				return true
			}
			// An uninstantiated impl fact covers every instantiation
			// of the declared type
			implNamed, implOk := bound.Type.(ir.NamedType)
			named, ok := typ.(ir.NamedType)
			if implOk && ok &&
				implNamed.Name == named.Name &&
				len(implNamed.TypeArgs) == 0 &&
				len(implNamed.LifetimeArgs) == 0 {

				return true
			}
		}
	}
	return false
}

// IsCopy reports whether the given type has the Copy capability.
// References are linear in this IR: a reference is consumed on use
// unless its type is explicitly declared Copy.
func (s *ContextStore) IsCopy(typ ir.Type) bool {
	switch typ.(type) {
	case ir.UninitType, ir.AbsurdType:
		return false
	}
	return s.Holds(typ, CopyTrait)
}

// SizeOf returns the byte size of the given type.
// The absurd type is valid at any size, and reports no size.
func (s *ContextStore) SizeOf(typ ir.Type) (uint64, bool) {
	switch typ := typ.(type) {
	case ir.UninitType:
		return typ.Size, true
	case ir.AbsurdType:
		return 0, false
	case ir.TypeParamType:
		typeParam, ok := s.TypeParam(typ.Name)
		if !ok {
			return 0, false
		}
		return typeParam.Size, true
	case ir.NamedType:
		decl, ok := s.TypeDecl(typ.Name)
		if !ok {
			return 0, false
		}
		return decl.Size, true
	case ir.RefType:
		return ir.ReferenceSize, true
	}
	return 0, false
}

// checkTypeInScope validates that every name the type references is
// declared in this store or one of its parents.
func (s *ContextStore) checkTypeInScope(typ ir.Type, pos Pos) error {
	switch typ := typ.(type) {
	case ir.UninitType, ir.AbsurdType:
		return nil

	case ir.TypeParamType:
		if _, ok := s.TypeParam(typ.Name); !ok {
			return &NotDeclaredTypeError{
				Name: typ.Name,
				Pos:  pos,
			}
		}
		return nil

	case ir.NamedType:
		decl, ok := s.TypeDecl(typ.Name)
		if !ok {
			return &NotDeclaredTypeError{
				Name: typ.Name,
				Pos:  pos,
			}
		}
		if len(typ.TypeArgs) != len(decl.TypeParams) {
			return &ArityError{
				What:          "type arguments",
				ExpectedCount: len(decl.TypeParams),
				ActualCount:   len(typ.TypeArgs),
				Pos:           pos,
			}
		}
		if len(typ.LifetimeArgs) != len(decl.LifetimeParams) {
			return &ArityError{
				What:          "lifetime arguments",
				ExpectedCount: len(decl.LifetimeParams),
				ActualCount:   len(typ.LifetimeArgs),
				Pos:           pos,
			}
		}
		for _, typeArg := range typ.TypeArgs {
			err := s.checkTypeInScope(typeArg, pos)
			if err != nil {
				return err
			}
		}
		return nil

	case ir.RefType:
		return s.checkTypeInScope(typ.Referent, pos)
	}

	return nil
}
