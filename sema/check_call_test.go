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

	"github.com/ferrite-lang/ferrite/errors"
	"github.com/ferrite-lang/ferrite/ir"
)

func testSignatures(signatures ...*ir.FunctionSignature) *Config {
	return &Config{
		SignatureHandler: func(name string) *ir.FunctionSignature {
			for _, signature := range signatures {
				if signature.Name == name {
					return signature
				}
			}
			return nil
		},
	}
}

// pickSignature is fn pick<T: Copy>(v: T, w: T) -> T
var pickSignature = &ir.FunctionSignature{
	Name: "pick",
	TypeParams: []ir.TypeParam{
		{Name: "T", Size: 8, Bounds: []string{CopyTrait}},
	},
	Parameters: []ir.Parameter{
		{Name: "v", Type: ir.TypeParamType{Name: "T"}},
		{Name: "w", Type: ir.TypeParamType{Name: "T"}},
	},
	Return: ir.TypeParamType{Name: "T"},
}

// pickCaller builds
//
//	fn choose(x: Int) -> Int
//	  entry: ret = pick<typeArgs>(x, 1); goto l1
//	  l1:    drop x; goto exit
func pickCaller(t *testing.T, typeArgs []ir.Type) *ir.Function {
	t.Helper()

	return &ir.Function{
		Name: "choose",
		Parameters: []ir.Parameter{
			{Name: "x", Type: intType},
		},
		Return: intType,
		Labels: makeLabels(t,
			labelDecl{
				label: ir.EntryLabel,
				node: ir.CallNode{
					Target:   retLoc,
					Callee:   "pick",
					TypeArgs: typeArgs,
					Arguments: []ir.Operand{
						ir.UseOperand{Location: param("x")},
						ir.LiteralOperand{Type: intType, Value: "1"},
					},
					Next: "l1",
				},
				locations: []ir.LocationEntry{
					entry(retLoc, uninit8),
					entry(param("x"), intType),
				},
			},
			labelDecl{
				label: "l1",
				node: ir.DropNode{
					Target: param("x"),
					Next:   ir.ExitLabel,
				},
				locations: []ir.LocationEntry{
					entry(retLoc, intType),
					entry(param("x"), intType),
				},
			},
		),
	}
}

func TestCheckCall(t *testing.T) {

	t.Parallel()

	t.Run("instantiated", func(t *testing.T) {
		t.Parallel()

		function := pickCaller(t, []ir.Type{intType})

		require.NoError(t, testCheckWith(t, function, nil, testSignatures(pickSignature)))
	})

	t.Run("unsatisfied capability bound", func(t *testing.T) {
		t.Parallel()

		// Token is linear: it does not satisfy T's Copy bound
		function := pickCaller(t, []ir.Type{tokenType})

		err := testCheckWith(t, function, nil, testSignatures(pickSignature))
		errs := requireCheckerErrors(t, err, 1)

		var boundErr *UnresolvedTraitBoundError
		require.ErrorAs(t, errs[0], &boundErr)
		require.Equal(t, tokenType, boundErr.Type)
		require.Equal(t, CopyTrait, boundErr.Trait)
	})

	t.Run("size mismatch", func(t *testing.T) {
		t.Parallel()

		// Bool occupies 1 byte, T requires 8
		function := pickCaller(t, []ir.Type{testBool})

		err := testCheckWith(t, function, nil, testSignatures(pickSignature))
		errs := requireCheckerErrors(t, err, 1)

		var instErr *InstantiationError
		require.ErrorAs(t, errs[0], &instErr)
	})

	t.Run("missing type arguments", func(t *testing.T) {
		t.Parallel()

		function := pickCaller(t, nil)

		err := testCheckWith(t, function, nil, testSignatures(pickSignature))
		errs := requireCheckerErrors(t, err, 1)

		var arityErr *ArityError
		require.ErrorAs(t, errs[0], &arityErr)
	})

	t.Run("unknown callee", func(t *testing.T) {
		t.Parallel()

		function := pickCaller(t, []ir.Type{intType})

		err := testCheckWith(t, function, nil, testSignatures())
		errs := requireCheckerErrors(t, err, 1)

		var calleeErr *NotDeclaredFunctionError
		require.ErrorAs(t, errs[0], &calleeErr)
		require.Equal(t, "pick", calleeErr.Name)
	})

	t.Run("panicking handler", func(t *testing.T) {
		t.Parallel()

		function := pickCaller(t, []ir.Type{intType})

		config := &Config{
			SignatureHandler: func(name string) *ir.FunctionSignature {
				panic("broken resolver")
			},
		}

		err := testCheckWith(t, function, nil, config)
		errs := requireCheckerErrors(t, err, 1)

		externalErr, ok := errors.GetExternalError(errs[0])
		require.True(t, ok)
		require.Equal(t, "broken resolver", externalErr.Error())
	})
}

// storeRefSignature is fn keep<'r>(r: &'r Int) -> Int where 'r: 'static
var storeRefSignature = &ir.FunctionSignature{
	Name: "keep",
	LifetimeParams: []ir.Lifetime{
		{Name: "r"},
	},
	Where: []ir.OutlivesFact{
		ir.LifetimeOutlives{
			Subject: ir.Lifetime{Name: "r"},
			Bound:   ir.StaticLifetime,
		},
	},
	Parameters: []ir.Parameter{
		{
			Name: "r",
			Type: ir.RefType{
				Lifetime: ir.Lifetime{Name: "r"},
				Referent: ir.NamedType{Name: "Int"},
			},
		},
	},
	Return: ir.NamedType{Name: "Int"},
}

// refCaller builds
//
//	fn forward<'a>(x: &'a Int) -> Int [where 'a: 'static]
//	  entry: ret = keep<'a>(x); goto exit
func refCaller(t *testing.T, where []ir.OutlivesFact) *ir.Function {
	t.Helper()

	lifetimeA := ir.Lifetime{Name: "a"}
	refType := ir.RefType{
		Lifetime: lifetimeA,
		Referent: intType,
	}

	return &ir.Function{
		Name:           "forward",
		LifetimeParams: []ir.Lifetime{lifetimeA},
		Where:          where,
		Parameters: []ir.Parameter{
			{Name: "x", Type: refType},
		},
		Return: intType,
		Labels: makeLabels(t,
			labelDecl{
				label: ir.EntryLabel,
				node: ir.CallNode{
					Target:       retLoc,
					Callee:       "keep",
					LifetimeArgs: []ir.Lifetime{lifetimeA},
					Arguments: []ir.Operand{
						ir.UseOperand{Location: param("x")},
					},
					Next: ir.ExitLabel,
				},
				locations: []ir.LocationEntry{
					entry(retLoc, uninit8),
					entry(param("x"), refType),
				},
				lifetimes: []ir.Lifetime{ir.StaticLifetime, lifetimeA},
				bounds:    where,
			},
		),
	}
}

func TestCheckCallWhereClause(t *testing.T) {

	t.Parallel()

	callerWhere := []ir.OutlivesFact{
		ir.LifetimeOutlives{
			Subject: ir.Lifetime{Name: "a"},
			Bound:   ir.StaticLifetime,
		},
	}

	t.Run("entailed", func(t *testing.T) {
		t.Parallel()

		function := refCaller(t, callerWhere)

		require.NoError(t, testCheckWith(t, function, nil, testSignatures(storeRefSignature)))
	})

	t.Run("unproved", func(t *testing.T) {
		t.Parallel()

		// Without the caller's own where-clause, the callee's
		// instantiated obligation `'a: 'static` has no proof
		function := refCaller(t, nil)

		err := testCheckWith(t, function, nil, testSignatures(storeRefSignature))
		errs := requireCheckerErrors(t, err, 1)

		var obligationErr *ObligationUnprovedError
		require.ErrorAs(t, errs[0], &obligationErr)
		require.Equal(t,
			ir.LifetimeOutlives{
				Subject: ir.Lifetime{Name: "a"},
				Bound:   ir.StaticLifetime,
			},
			obligationErr.Fact,
		)
	})

	t.Run("inactive lifetime argument", func(t *testing.T) {
		t.Parallel()

		function := refCaller(t, callerWhere)
		labeled, ok := function.Labels.Get(ir.EntryLabel)
		require.True(t, ok)
		call := labeled.Node.(ir.CallNode)
		call.LifetimeArgs = []ir.Lifetime{{Name: "b"}}
		labeled.Node = call

		err := testCheckWith(t, function, nil, testSignatures(storeRefSignature))
		errs := requireCheckerErrors(t, err, 1)

		var lifetimeErr *NotDeclaredLifetimeError
		require.ErrorAs(t, errs[0], &lifetimeErr)
		require.Equal(t, ir.Lifetime{Name: "b"}, lifetimeErr.Lifetime)
	})
}
