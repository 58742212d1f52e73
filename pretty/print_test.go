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

package pretty

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ferrite-lang/ferrite/ir"
	"github.com/ferrite-lang/ferrite/sema"
)

func TestPrintSemanticError(t *testing.T) {

	t.Parallel()

	var sb strings.Builder
	printer := NewErrorPrettyPrinter(&sb, false)
	err := printer.PrettyPrintError(
		&sema.UseAfterMoveError{
			Location: ir.LocalLocation{Name: "x"},
			Pos: sema.Pos{
				Function: "main",
				Label:    "l2",
			},
		},
	)
	require.NoError(t, err)
	require.Equal(t,
		"error: use of moved or uninitialized location `x`\n"+
			" --> main:l2\n"+
			" rule: Consume\n",
		sb.String(),
	)
}

func TestPrintAggregateError(t *testing.T) {

	t.Parallel()

	var sb strings.Builder
	printer := NewErrorPrettyPrinter(&sb, false)
	err := printer.PrettyPrintError(
		sema.CheckerError{
			FunctionName: "main",
			Errors: []error{
				&sema.UseAfterMoveError{
					Location: ir.LocalLocation{Name: "x"},
					Pos: sema.Pos{
						Function: "main",
						Label:    "l2",
					},
				},
				&sema.DeadCodeError{
					Pos: sema.Pos{
						Function: "main",
						Label:    "l3",
					},
				},
			},
		},
	)
	require.NoError(t, err)

	output := sb.String()
	require.Contains(t, output, " --> main:l2\n")
	require.Contains(t, output, " --> main:l3\n")
	// errors are separated by a blank line
	require.Contains(t, output, "\n\nerror: ")
}

func TestPrintSecondaryError(t *testing.T) {

	t.Parallel()

	var sb strings.Builder
	printer := NewErrorPrettyPrinter(&sb, false)
	err := printer.PrettyPrintError(
		&sema.DoubleInitError{
			Location:    ir.LocalLocation{Name: "x"},
			CurrentType: ir.NamedType{Name: "Int"},
			Pos: sema.Pos{
				Function: "main",
				Label:    "l1",
			},
		},
	)
	require.NoError(t, err)

	output := sb.String()
	require.True(t, strings.HasPrefix(output, "error: "))
	require.Contains(t, output, " --> main:l1\n")
	require.Contains(t, output, " = ")
}
