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

// Package firf implements FIRF, the Ferrite IR format:
// a binary CBOR encoding of programs, plus a YAML form for
// human-authored fixtures. Both use the same schema.
package firf

import (
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/ferrite-lang/ferrite/ir"
)

// CBOREncMode
//
// See https://github.com/fxamacker/cbor:
// "For best performance, reuse EncMode and DecMode after creating them."
var CBOREncMode = func() cbor.EncMode {
	options := cbor.CoreDetEncOptions()
	encMode, err := options.EncMode()
	if err != nil {
		panic(err)
	}
	return encMode
}()

// CBORDecMode
//
// Input is untrusted, so the decoder caps sizes and nesting depth.
var CBORDecMode = func() cbor.DecMode {
	decMode, err := cbor.DecOptions{
		IndefLength:      cbor.IndefLengthForbidden,
		MaxArrayElements: 1_000_000,
		MaxMapPairs:      1_000_000,
		MaxNestedLevels:  math.MaxInt16,
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return decMode
}()

// Encode returns the FIRF-encoded representation of the given program.
func Encode(program *ir.Program) ([]byte, error) {
	return CBOREncMode.Marshal(programToDTO(program))
}

// MustEncode returns the FIRF-encoded representation of the given program,
// or panics if the program cannot be encoded.
func MustEncode(program *ir.Program) []byte {
	b, err := Encode(program)
	if err != nil {
		panic(err)
	}
	return b
}

// Decode returns a program decoded from its FIRF-encoded representation.
func Decode(b []byte) (*ir.Program, error) {
	var dto programDTO
	err := CBORDecMode.Unmarshal(b, &dto)
	if err != nil {
		return nil, err
	}
	return programFromDTO(dto)
}
