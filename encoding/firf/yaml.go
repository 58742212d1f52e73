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

package firf

import (
	"github.com/goccy/go-yaml"

	"github.com/ferrite-lang/ferrite/ir"
)

// EncodeYAML returns the YAML representation of the given program.
// The YAML form is meant for human-authored fixtures; the schema is the
// same as the binary form's.
func EncodeYAML(program *ir.Program) ([]byte, error) {
	return yaml.Marshal(programToDTO(program))
}

// DecodeYAML returns a program decoded from its YAML representation.
func DecodeYAML(b []byte) (*ir.Program, error) {
	var dto programDTO
	err := yaml.Unmarshal(b, &dto)
	if err != nil {
		return nil, err
	}
	return programFromDTO(dto)
}
