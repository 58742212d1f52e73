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
	"strings"

	"github.com/turbolent/prettier"
)

// ReferenceSize is the byte size of every reference type.
const ReferenceSize uint64 = 8

// Type is the type of a location at one point of the control-flow graph.
//
// The variant set is closed: the verifier dispatches over it exhaustively.
type Type interface {
	isType()
	// Equal reports structural equality
	Equal(other Type) bool
	// MentionsLifetime reports whether the type refers to the given lifetime,
	// directly or in a type or lifetime argument
	MentionsLifetime(lifetime Lifetime) bool
	// Substitute replaces type parameters and lifetime parameters.
	// Missing entries are left as-is
	Substitute(typeArgs map[string]Type, lifetimeArgs map[string]Lifetime) Type
	Doc() prettier.Doc
	String() string
}

// UninitType

// UninitType is the type of an uninitialized location.
// It is indexed only by the byte size the location occupies.
type UninitType struct {
	Size uint64
}

var _ Type = UninitType{}

func (UninitType) isType() {}

func (t UninitType) Equal(other Type) bool {
	otherUninit, ok := other.(UninitType)
	return ok && otherUninit.Size == t.Size
}

func (UninitType) MentionsLifetime(_ Lifetime) bool {
	return false
}

func (t UninitType) Substitute(_ map[string]Type, _ map[string]Lifetime) Type {
	return t
}

func (t UninitType) Doc() prettier.Doc {
	return prettier.Text(t.String())
}

func (t UninitType) String() string {
	return fmt.Sprintf("uninit<%d>", t.Size)
}

// AbsurdType

// AbsurdType is the uninhabited type. It is valid at any size and at any
// location, and is a witness that control cannot reach the program point
// where it occurs.
type AbsurdType struct{}

var _ Type = AbsurdType{}

func (AbsurdType) isType() {}

func (AbsurdType) Equal(other Type) bool {
	_, ok := other.(AbsurdType)
	return ok
}

func (AbsurdType) MentionsLifetime(_ Lifetime) bool {
	return false
}

func (t AbsurdType) Substitute(_ map[string]Type, _ map[string]Lifetime) Type {
	return t
}

var absurdTypeDoc prettier.Doc = prettier.Text("absurd")

func (AbsurdType) Doc() prettier.Doc {
	return absurdTypeDoc
}

func (AbsurdType) String() string {
	return "absurd"
}

// TypeParamType

// TypeParamType refers to a type parameter in scope.
type TypeParamType struct {
	Name string
}

var _ Type = TypeParamType{}

func (TypeParamType) isType() {}

func (t TypeParamType) Equal(other Type) bool {
	otherParam, ok := other.(TypeParamType)
	return ok && otherParam.Name == t.Name
}

func (TypeParamType) MentionsLifetime(_ Lifetime) bool {
	return false
}

func (t TypeParamType) Substitute(typeArgs map[string]Type, _ map[string]Lifetime) Type {
	if replacement, ok := typeArgs[t.Name]; ok {
		return replacement
	}
	return t
}

func (t TypeParamType) Doc() prettier.Doc {
	return prettier.Text(t.Name)
}

func (t TypeParamType) String() string {
	return t.Name
}

// NamedType

// NamedType is a user-declared type, possibly instantiated with type and
// lifetime arguments. Its size, variants, and capabilities are resolved
// against the declaration in the context store.
type NamedType struct {
	Name         string
	TypeArgs     []Type
	LifetimeArgs []Lifetime
}

var _ Type = NamedType{}

func (NamedType) isType() {}

func (t NamedType) Equal(other Type) bool {
	otherNamed, ok := other.(NamedType)
	if !ok ||
		otherNamed.Name != t.Name ||
		len(otherNamed.TypeArgs) != len(t.TypeArgs) ||
		len(otherNamed.LifetimeArgs) != len(t.LifetimeArgs) {

		return false
	}
	for i, typeArg := range t.TypeArgs {
		if !typeArg.Equal(otherNamed.TypeArgs[i]) {
			return false
		}
	}
	for i, lifetimeArg := range t.LifetimeArgs {
		if lifetimeArg != otherNamed.LifetimeArgs[i] {
			return false
		}
	}
	return true
}

func (t NamedType) MentionsLifetime(lifetime Lifetime) bool {
	for _, lifetimeArg := range t.LifetimeArgs {
		if lifetimeArg == lifetime {
			return true
		}
	}
	for _, typeArg := range t.TypeArgs {
		if typeArg.MentionsLifetime(lifetime) {
			return true
		}
	}
	return false
}

func (t NamedType) Substitute(typeArgs map[string]Type, lifetimeArgs map[string]Lifetime) Type {
	if len(t.TypeArgs) == 0 && len(t.LifetimeArgs) == 0 {
		return t
	}

	newTypeArgs := make([]Type, len(t.TypeArgs))
	for i, typeArg := range t.TypeArgs {
		newTypeArgs[i] = typeArg.Substitute(typeArgs, lifetimeArgs)
	}

	newLifetimeArgs := make([]Lifetime, len(t.LifetimeArgs))
	for i, lifetimeArg := range t.LifetimeArgs {
		if replacement, ok := lifetimeArgs[lifetimeArg.Name]; ok {
			newLifetimeArgs[i] = replacement
		} else {
			newLifetimeArgs[i] = lifetimeArg
		}
	}

	return NamedType{
		Name:         t.Name,
		TypeArgs:     newTypeArgs,
		LifetimeArgs: newLifetimeArgs,
	}
}

func (t NamedType) Doc() prettier.Doc {
	if len(t.TypeArgs) == 0 && len(t.LifetimeArgs) == 0 {
		return prettier.Text(t.Name)
	}

	var argDocs []prettier.Doc
	for _, lifetimeArg := range t.LifetimeArgs {
		argDocs = append(argDocs, lifetimeArg.Doc())
	}
	for _, typeArg := range t.TypeArgs {
		argDocs = append(argDocs, typeArg.Doc())
	}

	argumentsDoc := prettier.Concat{
		prettier.SoftLine{},
		argDocs[0],
	}
	for _, argDoc := range argDocs[1:] {
		argumentsDoc = append(
			argumentsDoc,
			prettier.Text(","),
			prettier.Line{},
			argDoc,
		)
	}

	return prettier.Concat{
		prettier.Text(t.Name),
		prettier.Group{
			Doc: prettier.Concat{
				prettier.Text("<"),
				prettier.Indent{
					Doc: argumentsDoc,
				},
				prettier.SoftLine{},
				prettier.Text(">"),
			},
		},
	}
}

func (t NamedType) String() string {
	if len(t.TypeArgs) == 0 && len(t.LifetimeArgs) == 0 {
		return t.Name
	}
	var sb strings.Builder
	sb.WriteString(t.Name)
	sb.WriteByte('<')
	for i, lifetimeArg := range t.LifetimeArgs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(lifetimeArg.String())
	}
	for i, typeArg := range t.TypeArgs {
		if i > 0 || len(t.LifetimeArgs) > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(typeArg.String())
	}
	sb.WriteByte('>')
	return sb.String()
}

// RefType

// RefType is a reference into a region: it is valid only while its
// lifetime is active. References share a single fixed byte size.
type RefType struct {
	Lifetime Lifetime
	Referent Type
}

var _ Type = RefType{}

func (RefType) isType() {}

func (t RefType) Equal(other Type) bool {
	otherRef, ok := other.(RefType)
	return ok &&
		otherRef.Lifetime == t.Lifetime &&
		otherRef.Referent.Equal(t.Referent)
}

func (t RefType) MentionsLifetime(lifetime Lifetime) bool {
	return t.Lifetime == lifetime ||
		t.Referent.MentionsLifetime(lifetime)
}

func (t RefType) Substitute(typeArgs map[string]Type, lifetimeArgs map[string]Lifetime) Type {
	lifetime := t.Lifetime
	if replacement, ok := lifetimeArgs[lifetime.Name]; ok {
		lifetime = replacement
	}
	return RefType{
		Lifetime: lifetime,
		Referent: t.Referent.Substitute(typeArgs, lifetimeArgs),
	}
}

func (t RefType) Doc() prettier.Doc {
	return prettier.Concat{
		prettier.Text("&"),
		t.Lifetime.Doc(),
		prettier.Text(" "),
		t.Referent.Doc(),
	}
}

func (t RefType) String() string {
	return fmt.Sprintf("&%s %s", t.Lifetime, t.Referent)
}
