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
	"github.com/turbolent/prettier"
)

// Location is an addressable slot whose type can change over the
// control-flow graph: the return slot, a static, a local, or a parameter.
//
// Locations are comparable values and are used as map keys.
type Location interface {
	isLocation()
	Doc() prettier.Doc
	String() string
}

// ReturnLocation is the function's return slot.
type ReturnLocation struct{}

var _ Location = ReturnLocation{}

func (ReturnLocation) isLocation() {}

var returnLocationDoc prettier.Doc = prettier.Text("ret")

func (ReturnLocation) Doc() prettier.Doc {
	return returnLocationDoc
}

func (ReturnLocation) String() string {
	return "ret"
}

// StaticLocation is a program-wide slot, visible in every function.
type StaticLocation struct {
	Name string
}

var _ Location = StaticLocation{}

func (StaticLocation) isLocation() {}

func (l StaticLocation) Doc() prettier.Doc {
	return prettier.Text(l.String())
}

func (l StaticLocation) String() string {
	return "static " + l.Name
}

// LocalLocation is a function-scoped slot.
type LocalLocation struct {
	Name string
}

var _ Location = LocalLocation{}

func (LocalLocation) isLocation() {}

func (l LocalLocation) Doc() prettier.Doc {
	return prettier.Text(l.Name)
}

func (l LocalLocation) String() string {
	return l.Name
}

// ParameterLocation is a slot holding one of the function's parameters.
type ParameterLocation struct {
	Name string
}

var _ Location = ParameterLocation{}

func (ParameterLocation) isLocation() {}

func (l ParameterLocation) Doc() prettier.Doc {
	return prettier.Text(l.Name)
}

func (l ParameterLocation) String() string {
	return l.Name
}
