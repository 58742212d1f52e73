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

func newTestSolver(t *testing.T, facts ...ir.OutlivesFact) *obligationSolver {
	t.Helper()
	return newObligationSolver(
		newLifetimeInterner(),
		ir.NewBoundContext(facts...),
	)
}

func TestObligationSolver(t *testing.T) {

	t.Parallel()

	a := ir.Lifetime{Name: "a"}
	b := ir.Lifetime{Name: "b"}
	c := ir.Lifetime{Name: "c"}

	t.Run("reflexive", func(t *testing.T) {
		t.Parallel()

		solver := newTestSolver(t)
		require.True(t, solver.outlives(a, a))
	})

	t.Run("declared", func(t *testing.T) {
		t.Parallel()

		solver := newTestSolver(t,
			ir.LifetimeOutlives{Subject: a, Bound: b},
		)
		require.True(t, solver.outlives(a, b))
		require.False(t, solver.outlives(b, a))
	})

	t.Run("transitive", func(t *testing.T) {
		t.Parallel()

		solver := newTestSolver(t,
			ir.LifetimeOutlives{Subject: a, Bound: b},
			ir.LifetimeOutlives{Subject: b, Bound: c},
		)
		require.True(t, solver.outlives(a, c))
		require.False(t, solver.outlives(c, a))
	})

	t.Run("type outlives", func(t *testing.T) {
		t.Parallel()

		refType := ir.RefType{Lifetime: a, Referent: ir.NamedType{Name: "Int"}}

		solver := newTestSolver(t,
			ir.TypeOutlives{Subject: refType, Bound: b},
			ir.LifetimeOutlives{Subject: b, Bound: c},
		)

		// declared directly
		require.True(t, solver.entails(ir.TypeOutlives{Subject: refType, Bound: b}))
		// extended through the transitivity of the lifetime relation
		require.True(t, solver.entails(ir.TypeOutlives{Subject: refType, Bound: c}))

		// never decomposed structurally: the fact about &'a Int
		// says nothing about other types mentioning 'a
		otherRef := ir.RefType{Lifetime: a, Referent: ir.NamedType{Name: "Bool"}}
		require.False(t, solver.entails(ir.TypeOutlives{Subject: otherRef, Bound: b}))
	})

	t.Run("first unentailed", func(t *testing.T) {
		t.Parallel()

		solver := newTestSolver(t,
			ir.LifetimeOutlives{Subject: a, Bound: b},
		)

		fact, unproved := solver.firstUnentailed([]ir.OutlivesFact{
			ir.LifetimeOutlives{Subject: a, Bound: b},
			ir.LifetimeOutlives{Subject: b, Bound: b},
			ir.LifetimeOutlives{Subject: b, Bound: c},
		})
		require.True(t, unproved)
		require.Equal(t, ir.LifetimeOutlives{Subject: b, Bound: c}, fact)

		_, unproved = solver.firstUnentailed([]ir.OutlivesFact{
			ir.LifetimeOutlives{Subject: a, Bound: b},
		})
		require.False(t, unproved)
	})
}

func TestLifetimeInterner(t *testing.T) {

	t.Parallel()

	a := ir.Lifetime{Name: "a"}
	b := ir.Lifetime{Name: "b"}

	interner := newLifetimeInterner()

	indexA := interner.index(a)
	indexB := interner.index(b)
	require.NotEqual(t, indexA, indexB)
	require.Equal(t, indexA, interner.index(a))
	require.Equal(t, a, interner.lifetime(indexA))

	ctx, err := ir.NewLifetimeContext(ir.StaticLifetime, a)
	require.NoError(t, err)

	active := interner.set(ctx)
	require.True(t, interner.contains(active, ir.StaticLifetime))
	require.True(t, interner.contains(active, a))
	require.False(t, interner.contains(active, b))

	inserted := interner.withInserted(active, b)
	require.True(t, interner.contains(inserted, b))
	// the input set is unchanged
	require.False(t, interner.contains(active, b))

	removed := interner.withRemoved(inserted, a)
	require.False(t, interner.contains(removed, a))
	require.True(t, interner.contains(removed, b))

	require.Equal(t,
		[]ir.Lifetime{b, ir.StaticLifetime},
		interner.activeLifetimes(removed),
	)
}
