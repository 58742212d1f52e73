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

func TestConsumeLocation(t *testing.T) {

	t.Parallel()

	pos := Pos{Function: "test", Label: ir.EntryLabel}

	t.Run("linear", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("tok"), tokenType),
		)
		require.NoError(t, err)

		typ, out, err := consumeLocation(store, ctx, local("tok"), pos)
		require.NoError(t, err)
		require.Equal(t, tokenType, typ)

		// the value moved out, the location is uninitialized at its size
		after, ok := out.Get(local("tok"))
		require.True(t, ok)
		require.Equal(t, uninit8, after)

		// the input context is unchanged
		before, ok := ctx.Get(local("tok"))
		require.True(t, ok)
		require.Equal(t, tokenType, before)
	})

	t.Run("copy", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("x"), intType),
		)
		require.NoError(t, err)

		typ, out, err := consumeLocation(store, ctx, local("x"), pos)
		require.NoError(t, err)
		require.Equal(t, intType, typ)

		after, ok := out.Get(local("x"))
		require.True(t, ok)
		require.Equal(t, intType, after)
	})

	t.Run("uninitialized", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("tok"), uninit8),
		)
		require.NoError(t, err)

		_, _, err = consumeLocation(store, ctx, local("tok"), pos)

		var moveErr *UseAfterMoveError
		require.ErrorAs(t, err, &moveErr)
		require.Equal(t, local("tok"), moveErr.Location)
	})

	t.Run("unmentioned", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext()
		require.NoError(t, err)

		_, _, err = consumeLocation(store, ctx, local("ghost"), pos)

		var contextErr *MalformedContextError
		require.ErrorAs(t, err, &contextErr)
	})
}

func TestAssignLocation(t *testing.T) {

	t.Parallel()

	pos := Pos{Function: "test", Label: ir.EntryLabel}

	t.Run("into uninitialized", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("x"), uninit8),
		)
		require.NoError(t, err)

		out, err := assignLocation(store, ctx, local("x"), intType, pos)
		require.NoError(t, err)

		after, ok := out.Get(local("x"))
		require.True(t, ok)
		require.Equal(t, intType, after)
	})

	t.Run("into initialized", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("tok"), tokenType),
		)
		require.NoError(t, err)

		_, err = assignLocation(store, ctx, local("tok"), tokenType, pos)

		var initErr *DoubleInitError
		require.ErrorAs(t, err, &initErr)
		require.Equal(t, tokenType, initErr.CurrentType)
	})

	t.Run("size mismatch", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("b"), uninit1),
		)
		require.NoError(t, err)

		_, err = assignLocation(store, ctx, local("b"), intType, pos)

		var contextErr *MalformedContextError
		require.ErrorAs(t, err, &contextErr)
	})

	t.Run("absurd fits any size", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("b"), uninit1),
		)
		require.NoError(t, err)

		out, err := assignLocation(store, ctx, local("b"), ir.AbsurdType{}, pos)
		require.NoError(t, err)

		after, ok := out.Get(local("b"))
		require.True(t, ok)
		require.Equal(t, ir.AbsurdType{}, after)
	})
}

func TestDropLocation(t *testing.T) {

	t.Parallel()

	pos := Pos{Function: "test", Label: ir.EntryLabel}

	t.Run("copy", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("x"), intType),
		)
		require.NoError(t, err)

		out, err := dropLocation(store, ctx, local("x"), pos)
		require.NoError(t, err)

		after, ok := out.Get(local("x"))
		require.True(t, ok)
		require.Equal(t, uninit8, after)
	})

	t.Run("linear", func(t *testing.T) {
		t.Parallel()

		// A linear value must be consumed, never silently discarded
		store := newTestStore(t)
		ctx, err := ir.NewLocationContext(
			entry(local("tok"), tokenType),
		)
		require.NoError(t, err)

		_, err = dropLocation(store, ctx, local("tok"), pos)

		var boundErr *UnresolvedTraitBoundError
		require.ErrorAs(t, err, &boundErr)
		require.Equal(t, tokenType, boundErr.Type)
		require.Equal(t, CopyTrait, boundErr.Trait)
	})
}
