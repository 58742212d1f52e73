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

// SignatureHandlerFunc resolves the signature of a function defined in
// another module. The lookup is one-shot: an unresolved signature is an
// immediate failure of the call-site check, never a retry.
type SignatureHandlerFunc func(name string) *ir.FunctionSignature

// Config carries the external collaborators and options of a checker.
type Config struct {
	// SignatureHandler, if any, resolves callee signatures
	// that are not defined in the checked program
	SignatureHandler SignatureHandlerFunc
	// OnRecordTrace is triggered when a trace is recorded
	OnRecordTrace OnRecordTraceFunc
	// TracingEnabled determines if tracing is enabled.
	// Tracing reports the duration of function and node checks
	TracingEnabled bool
	// Concurrency bounds the number of functions verified in parallel
	// by VerifyProgram. Zero means one worker per CPU
	Concurrency int
}
