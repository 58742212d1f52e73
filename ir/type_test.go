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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lifetimeA = Lifetime{Name: "a"}
	lifetimeB = Lifetime{Name: "b"}

	intType = NamedType{Name: "Int"}
)

func TestTypeEqual(t *testing.T) {

	t.Parallel()

	tests := []struct {
		name     string
		left     Type
		right    Type
		expected bool
	}{
		{
			name:     "uninit same size",
			left:     UninitType{Size: 8},
			right:    UninitType{Size: 8},
			expected: true,
		},
		{
			name:     "uninit different size",
			left:     UninitType{Size: 8},
			right:    UninitType{Size: 4},
			expected: false,
		},
		{
			name:     "absurd",
			left:     AbsurdType{},
			right:    AbsurdType{},
			expected: true,
		},
		{
			name:     "absurd vs uninit",
			left:     AbsurdType{},
			right:    UninitType{Size: 0},
			expected: false,
		},
		{
			name:     "named same",
			left:     intType,
			right:    NamedType{Name: "Int"},
			expected: true,
		},
		{
			name:     "named different",
			left:     intType,
			right:    NamedType{Name: "Bool"},
			expected: false,
		},
		{
			name: "named same arguments",
			left: NamedType{
				Name:         "Box",
				TypeArgs:     []Type{intType},
				LifetimeArgs: []Lifetime{lifetimeA},
			},
			right: NamedType{
				Name:         "Box",
				TypeArgs:     []Type{intType},
				LifetimeArgs: []Lifetime{lifetimeA},
			},
			expected: true,
		},
		{
			name: "named different lifetime arguments",
			left: NamedType{
				Name:         "Box",
				LifetimeArgs: []Lifetime{lifetimeA},
			},
			right: NamedType{
				Name:         "Box",
				LifetimeArgs: []Lifetime{lifetimeB},
			},
			expected: false,
		},
		{
			name:     "named vs instantiated",
			left:     NamedType{Name: "Box"},
			right:    NamedType{Name: "Box", TypeArgs: []Type{intType}},
			expected: false,
		},
		{
			name:     "type parameter same",
			left:     TypeParamType{Name: "T"},
			right:    TypeParamType{Name: "T"},
			expected: true,
		},
		{
			name:     "type parameter different",
			left:     TypeParamType{Name: "T"},
			right:    TypeParamType{Name: "U"},
			expected: false,
		},
		{
			name:     "reference same",
			left:     RefType{Lifetime: lifetimeA, Referent: intType},
			right:    RefType{Lifetime: lifetimeA, Referent: intType},
			expected: true,
		},
		{
			name:     "reference different lifetime",
			left:     RefType{Lifetime: lifetimeA, Referent: intType},
			right:    RefType{Lifetime: lifetimeB, Referent: intType},
			expected: false,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, test.left.Equal(test.right))
			assert.Equal(t, test.expected, test.right.Equal(test.left))
		})
	}
}

func TestTypeMentionsLifetime(t *testing.T) {

	t.Parallel()

	assert.False(t, UninitType{Size: 8}.MentionsLifetime(lifetimeA))
	assert.False(t, AbsurdType{}.MentionsLifetime(lifetimeA))
	assert.False(t, TypeParamType{Name: "T"}.MentionsLifetime(lifetimeA))
	assert.False(t, intType.MentionsLifetime(lifetimeA))

	ref := RefType{Lifetime: lifetimeA, Referent: intType}
	assert.True(t, ref.MentionsLifetime(lifetimeA))
	assert.False(t, ref.MentionsLifetime(lifetimeB))

	// mention through a referent
	nested := RefType{
		Lifetime: lifetimeB,
		Referent: ref,
	}
	assert.True(t, nested.MentionsLifetime(lifetimeA))

	// mention through type and lifetime arguments
	box := NamedType{
		Name:         "Box",
		TypeArgs:     []Type{ref},
		LifetimeArgs: []Lifetime{lifetimeB},
	}
	assert.True(t, box.MentionsLifetime(lifetimeA))
	assert.True(t, box.MentionsLifetime(lifetimeB))
	assert.False(t, box.MentionsLifetime(Lifetime{Name: "c"}))
}

func TestTypeSubstitute(t *testing.T) {

	t.Parallel()

	typeArgs := map[string]Type{
		"T": intType,
	}
	lifetimeArgs := map[string]Lifetime{
		"a": lifetimeB,
	}

	t.Run("type parameter", func(t *testing.T) {
		t.Parallel()

		require.Equal(t,
			Type(intType),
			TypeParamType{Name: "T"}.Substitute(typeArgs, lifetimeArgs),
		)

		// a missing entry is left as-is
		require.Equal(t,
			Type(TypeParamType{Name: "U"}),
			TypeParamType{Name: "U"}.Substitute(typeArgs, lifetimeArgs),
		)
	})

	t.Run("reference", func(t *testing.T) {
		t.Parallel()

		require.Equal(t,
			Type(RefType{
				Lifetime: lifetimeB,
				Referent: intType,
			}),
			RefType{
				Lifetime: lifetimeA,
				Referent: TypeParamType{Name: "T"},
			}.Substitute(typeArgs, lifetimeArgs),
		)
	})

	t.Run("named", func(t *testing.T) {
		t.Parallel()

		// an uninstantiated named type is returned unchanged
		require.Equal(t,
			Type(intType),
			intType.Substitute(typeArgs, lifetimeArgs),
		)

		require.Equal(t,
			Type(NamedType{
				Name:         "Box",
				TypeArgs:     []Type{intType},
				LifetimeArgs: []Lifetime{lifetimeB},
			}),
			NamedType{
				Name:         "Box",
				TypeArgs:     []Type{TypeParamType{Name: "T"}},
				LifetimeArgs: []Lifetime{lifetimeA},
			}.Substitute(typeArgs, lifetimeArgs),
		)
	})

	t.Run("placeholders", func(t *testing.T) {
		t.Parallel()

		require.Equal(t,
			Type(UninitType{Size: 8}),
			UninitType{Size: 8}.Substitute(typeArgs, lifetimeArgs),
		)
		require.Equal(t,
			Type(AbsurdType{}),
			AbsurdType{}.Substitute(typeArgs, lifetimeArgs),
		)
	})
}

func TestTypeString(t *testing.T) {

	t.Parallel()

	assert.Equal(t, "uninit<8>", UninitType{Size: 8}.String())
	assert.Equal(t, "absurd", AbsurdType{}.String())
	assert.Equal(t, "T", TypeParamType{Name: "T"}.String())
	assert.Equal(t, "Int", intType.String())
	assert.Equal(t,
		"&'a Int",
		RefType{Lifetime: lifetimeA, Referent: intType}.String(),
	)
	assert.Equal(t,
		"Box<'a, Int>",
		NamedType{
			Name:         "Box",
			TypeArgs:     []Type{intType},
			LifetimeArgs: []Lifetime{lifetimeA},
		}.String(),
	)
}
