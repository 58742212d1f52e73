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
	"go.uber.org/goleak"

	"github.com/ferrite-lang/ferrite/ir"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// passthroughFunction returns fn passthrough(x: Int) -> Int,
// which copies its parameter into the return slot and drops it.
func passthroughFunction(t *testing.T) *ir.Function {
	t.Helper()

	return &ir.Function{
		Name: "passthrough",
		Parameters: []ir.Parameter{
			{Name: "x", Type: intType},
		},
		Return: intType,
		Labels: makeLabels(t,
			labelDecl{
				label: ir.EntryLabel,
				node: ir.AssignNode{
					Target: retLoc,
					Value:  use(param("x")),
					Next:   "l1",
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

// duplicateFunction returns fn duplicate(tok: Token) -> Token,
// which moves its linear parameter twice and must be rejected.
func duplicateFunction(t *testing.T) *ir.Function {
	t.Helper()

	return &ir.Function{
		Name: "duplicate",
		Parameters: []ir.Parameter{
			{Name: "tok", Type: tokenType},
		},
		Locals: []string{"tmp"},
		Return: tokenType,
		Labels: makeLabels(t,
			labelDecl{
				label: ir.EntryLabel,
				node: ir.AssignNode{
					Target: local("tmp"),
					Value:  use(param("tok")),
					Next:   "l1",
				},
				locations: []ir.LocationEntry{
					entry(retLoc, uninit8),
					entry(param("tok"), tokenType),
					entry(local("tmp"), uninit8),
				},
			},
			labelDecl{
				label: "l1",
				node: ir.AssignNode{
					Target: retLoc,
					Value:  use(param("tok")),
					Next:   ir.ExitLabel,
				},
				locations: []ir.LocationEntry{
					entry(retLoc, uninit8),
					entry(param("tok"), uninit8),
					entry(local("tmp"), tokenType),
				},
			},
		),
	}
}

func TestVerifyProgram(t *testing.T) {

	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		// relay resolves passthrough's signature within the program,
		// without an embedder-provided handler
		relay := &ir.Function{
			Name: "relay",
			Parameters: []ir.Parameter{
				{Name: "x", Type: intType},
			},
			Return: intType,
			Labels: makeLabels(t,
				labelDecl{
					label: ir.EntryLabel,
					node: ir.CallNode{
						Target: retLoc,
						Callee: "passthrough",
						Arguments: []ir.Operand{
							ir.UseOperand{Location: param("x")},
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

		program := &ir.Program{
			Types: testTypeDecls(),
			Impls: testImpls(),
			Functions: []*ir.Function{
				passthroughFunction(t),
				relay,
			},
		}

		require.NoError(t, VerifyProgram(program, nil))
	})

	t.Run("rejections are aggregated in order", func(t *testing.T) {
		t.Parallel()

		second := duplicateFunction(t)
		second.Name = "duplicate2"

		program := &ir.Program{
			Types: testTypeDecls(),
			Impls: testImpls(),
			Functions: []*ir.Function{
				duplicateFunction(t),
				passthroughFunction(t),
				second,
			},
		}

		err := VerifyProgram(program, nil)

		var programErr ProgramError
		require.ErrorAs(t, err, &programErr)
		require.Len(t, programErr.Errors, 2)

		var checkerErr CheckerError
		require.ErrorAs(t, programErr.Errors[0], &checkerErr)
		require.Equal(t, "duplicate", checkerErr.FunctionName)

		require.ErrorAs(t, programErr.Errors[1], &checkerErr)
		require.Equal(t, "duplicate2", checkerErr.FunctionName)

		var moveErr *UseAfterMoveError
		require.ErrorAs(t, checkerErr.Errors[0], &moveErr)
	})

	t.Run("invalid declarations", func(t *testing.T) {
		t.Parallel()

		program := &ir.Program{
			Types: []*ir.TypeDecl{
				{Name: "Int", Size: 8},
				{Name: "Int", Size: 8},
			},
		}

		err := VerifyProgram(program, nil)

		var programErr ProgramError
		require.ErrorAs(t, err, &programErr)
		require.Len(t, programErr.Errors, 1)

		var redeclarationErr *RedeclarationError
		require.ErrorAs(t, programErr.Errors[0], &redeclarationErr)
	})

	t.Run("external handler", func(t *testing.T) {
		t.Parallel()

		// The callee lives outside the program and is resolved
		// by the embedder's handler
		relay := &ir.Function{
			Name: "relay",
			Parameters: []ir.Parameter{
				{Name: "x", Type: intType},
			},
			Return: intType,
			Labels: makeLabels(t,
				labelDecl{
					label: ir.EntryLabel,
					node: ir.CallNode{
						Target: retLoc,
						Callee: "host_identity",
						Arguments: []ir.Operand{
							ir.UseOperand{Location: param("x")},
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

		program := &ir.Program{
			Types: testTypeDecls(),
			Impls: testImpls(),
			Functions: []*ir.Function{
				relay,
			},
		}

		config := &Config{
			SignatureHandler: func(name string) *ir.FunctionSignature {
				if name != "host_identity" {
					return nil
				}
				return &ir.FunctionSignature{
					Name: "host_identity",
					Parameters: []ir.Parameter{
						{Name: "v", Type: intType},
					},
					Return: intType,
				}
			},
		}

		require.NoError(t, VerifyProgram(program, config))

		// without the handler, the callee is unresolved
		err := VerifyProgram(program, nil)

		var programErr ProgramError
		require.ErrorAs(t, err, &programErr)

		var notDeclaredErr *NotDeclaredFunctionError
		require.ErrorAs(t, err, &notDeclaredErr)
		require.Equal(t, "host_identity", notDeclaredErr.Name)
	})

	t.Run("serial", func(t *testing.T) {
		t.Parallel()

		program := &ir.Program{
			Types: testTypeDecls(),
			Impls: testImpls(),
			Functions: []*ir.Function{
				passthroughFunction(t),
				duplicateFunction(t),
			},
		}

		err := VerifyProgram(program, &Config{Concurrency: 1})

		var programErr ProgramError
		require.ErrorAs(t, err, &programErr)
		require.Len(t, programErr.Errors, 1)
	})

	t.Run("empty program", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, VerifyProgram(&ir.Program{}, nil))
	})
}
