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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferrite-lang/ferrite/ir"
)

func TestNewContextStore(t *testing.T) {

	t.Parallel()

	t.Run("duplicate declaration", func(t *testing.T) {
		t.Parallel()

		_, err := NewContextStore(
			[]*ir.TypeDecl{
				{Name: "Int", Size: 8},
				{Name: "Int", Size: 4},
			},
			nil,
		)

		var redeclarationErr *RedeclarationError
		require.ErrorAs(t, err, &redeclarationErr)
		require.Equal(t, "Int", redeclarationErr.Name)
	})

	t.Run("undeclared variant", func(t *testing.T) {
		t.Parallel()

		_, err := NewContextStore(
			[]*ir.TypeDecl{
				{
					Name: "Option",
					Size: 8,
					Variants: []ir.Type{
						ir.NamedType{Name: "None"},
					},
				},
			},
			nil,
		)

		var typeErr *NotDeclaredTypeError
		require.ErrorAs(t, err, &typeErr)
		require.Equal(t, "None", typeErr.Name)
	})

	t.Run("variant size mismatch", func(t *testing.T) {
		t.Parallel()

		// A variant occupying fewer bytes than its sum would shrink
		// the scrutinee location when a switch narrows to it
		_, err := NewContextStore(
			[]*ir.TypeDecl{
				{Name: "Small", Size: 4},
				{
					Name: "Sum",
					Size: 8,
					Variants: []ir.Type{
						ir.NamedType{Name: "Small"},
					},
				},
			},
			nil,
		)

		var sizeErr *VariantSizeError
		require.ErrorAs(t, err, &sizeErr)
		require.Equal(t, "Sum", sizeErr.SumName)
		require.Equal(t, ir.NamedType{Name: "Small"}, sizeErr.Variant)
		require.Equal(t, uint64(8), sizeErr.SumSize)
		require.Equal(t, uint64(4), sizeErr.VariantSize)
	})

	t.Run("absurd variant", func(t *testing.T) {
		t.Parallel()

		// The absurd type has no size; a sum may still carry it
		// as an uninhabited variant
		_, err := NewContextStore(
			[]*ir.TypeDecl{
				{
					Name:     "Never",
					Size:     8,
					Variants: []ir.Type{ir.AbsurdType{}},
				},
			},
			nil,
		)

		require.NoError(t, err)
	})

	t.Run("undeclared impl subject", func(t *testing.T) {
		t.Parallel()

		_, err := NewContextStore(
			nil,
			[]ir.TraitBound{
				{Type: ir.NamedType{Name: "Ghost"}, Trait: CopyTrait},
			},
		)

		var typeErr *NotDeclaredTypeError
		require.ErrorAs(t, err, &typeErr)
	})
}

func TestContextStoreHolds(t *testing.T) {

	t.Parallel()

	store := newTestStore(t)

	require.True(t, store.Holds(intType, CopyTrait))
	require.False(t, store.Holds(tokenType, CopyTrait))
	require.False(t, store.Holds(intType, "Send"))

	t.Run("type parameter bounds", func(t *testing.T) {
		t.Parallel()

		extended, err := store.Extend(
			[]ir.TypeParam{
				{Name: "T", Size: 8, Bounds: []string{CopyTrait}},
				{Name: "U", Size: 8},
			},
			nil,
			nil,
			Pos{},
		)
		require.NoError(t, err)

		require.True(t, extended.Holds(ir.TypeParamType{Name: "T"}, CopyTrait))
		require.False(t, extended.Holds(ir.TypeParamType{Name: "U"}, CopyTrait))

		// the parent's declarations stay visible
		require.True(t, extended.Holds(intType, CopyTrait))
	})
}

func TestContextStoreIsCopy(t *testing.T) {

	t.Parallel()

	store := newTestStore(t)

	require.True(t, store.IsCopy(intType))
	require.False(t, store.IsCopy(tokenType))

	// placeholders are never Copy
	require.False(t, store.IsCopy(uninit8))
	require.False(t, store.IsCopy(ir.AbsurdType{}))

	// references are linear unless declared otherwise
	require.False(t, store.IsCopy(ir.RefType{
		Lifetime: lifetimeA,
		Referent: intType,
	}))
}

func TestContextStoreSizeOf(t *testing.T) {

	t.Parallel()

	store := newTestStore(t)

	size, ok := store.SizeOf(intType)
	require.True(t, ok)
	require.Equal(t, uint64(8), size)

	size, ok = store.SizeOf(testBool)
	require.True(t, ok)
	require.Equal(t, uint64(1), size)

	size, ok = store.SizeOf(uninit1)
	require.True(t, ok)
	require.Equal(t, uint64(1), size)

	size, ok = store.SizeOf(ir.RefType{Lifetime: lifetimeA, Referent: intType})
	require.True(t, ok)
	require.Equal(t, ir.ReferenceSize, size)

	// the absurd type is valid at any size, and reports none
	_, ok = store.SizeOf(ir.AbsurdType{})
	require.False(t, ok)

	t.Run("type parameter", func(t *testing.T) {
		t.Parallel()

		extended, err := store.Extend(
			[]ir.TypeParam{
				{Name: "T", Size: 16},
			},
			nil,
			nil,
			Pos{},
		)
		require.NoError(t, err)

		size, ok := extended.SizeOf(ir.TypeParamType{Name: "T"})
		require.True(t, ok)
		require.Equal(t, uint64(16), size)
	})
}

func TestContextStoreTypeScope(t *testing.T) {

	t.Parallel()

	store := newTestStore(t)

	require.NoError(t, store.checkTypeInScope(intType, Pos{}))
	require.NoError(t, store.checkTypeInScope(ir.AbsurdType{}, Pos{}))

	var typeErr *NotDeclaredTypeError
	err := store.checkTypeInScope(ir.NamedType{Name: "Ghost"}, Pos{})
	require.ErrorAs(t, err, &typeErr)

	var arityErr *ArityError
	err = store.checkTypeInScope(
		ir.NamedType{
			Name:     "Int",
			TypeArgs: []ir.Type{testBool},
		},
		Pos{},
	)
	require.ErrorAs(t, err, &arityErr)
}
