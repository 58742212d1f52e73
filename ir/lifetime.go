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

// Lifetime is an abstract, function-scoped region name bounding how long
// a reference may remain valid. The static lifetime spans the whole program.
type Lifetime struct {
	Name string
}

const staticLifetimeName = "static"

// StaticLifetime is the single program-wide lifetime.
var StaticLifetime = Lifetime{Name: staticLifetimeName}

func (l Lifetime) IsStatic() bool {
	return l.Name == staticLifetimeName
}

func (l Lifetime) Doc() prettier.Doc {
	return prettier.Text(l.String())
}

func (l Lifetime) String() string {
	return "'" + l.Name
}
