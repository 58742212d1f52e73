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

package ir

import (
	"fmt"
)

// TypeDecl declares a user type: its byte size, its generic arity, and,
// for sum types, its variants.
type TypeDecl struct {
	Name           string
	TypeParams     []string
	LifetimeParams []string
	Size           uint64
	// Variants is non-empty for sum types.
	// Each variant is itself a declared type
	Variants []Type
}

// IsSum returns true if the declared type is a sum type.
func (d *TypeDecl) IsSum() bool {
	return len(d.Variants) > 0
}

// TypeParam declares a type parameter of a function.
//
// Layout is monomorphic in this IR: the lowering stage fixes the byte size
// of every type parameter, so polymorphism ranges over capabilities and
// lifetimes, not over layout.
type TypeParam struct {
	Name string
	Size uint64
	// Bounds are the traits the parameter is assumed to satisfy
	Bounds []string
}

// TraitBound is a trait-bound postulate: a concrete impl fact, or a
// where-clause assumption over a parameter in scope.
type TraitBound struct {
	Type  Type
	Trait string
}

func (b TraitBound) String() string {
	return fmt.Sprintf("%s: %s", b.Type, b.Trait)
}

// StaticDecl declares a program-wide slot and its type.
type StaticDecl struct {
	Name string
	Type Type
}

// Parameter is one function parameter: a name and its declared type.
type Parameter struct {
	Name string
	Type Type
}

// FunctionSignature is the externally visible part of a function:
// what a call site needs to instantiate and check an invocation.
type FunctionSignature struct {
	Name           string
	TypeParams     []TypeParam
	LifetimeParams []Lifetime
	// Where holds the signature's outlives obligations
	Where      []OutlivesFact
	Parameters []Parameter
	Return     Type
}

// Instantiation returns the substitution maps for the given arguments.
// The caller must have checked arity.
func (s *FunctionSignature) Instantiation(
	typeArgs []Type,
	lifetimeArgs []Lifetime,
) (map[string]Type, map[string]Lifetime) {

	typeSubst := make(map[string]Type, len(s.TypeParams))
	for i, typeParam := range s.TypeParams {
		typeSubst[typeParam.Name] = typeArgs[i]
	}

	lifetimeSubst := make(map[string]Lifetime, len(s.LifetimeParams))
	for i, lifetimeParam := range s.LifetimeParams {
		lifetimeSubst[lifetimeParam.Name] = lifetimeArgs[i]
	}

	return typeSubst, lifetimeSubst
}
