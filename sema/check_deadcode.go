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
	"github.com/ferrite-lang/ferrite/ir"
)

// checkDeadCode checks an unreachable node. It is trivially valid whenever
// the incoming context contains a location of the absurd type; that case
// is handled before dispatch, so reaching this rule is a failure.
func (checker *Checker) checkDeadCode(pos Pos, _ ir.NodeType) error {
	return &DeadCodeError{
		Pos: pos,
	}
}
