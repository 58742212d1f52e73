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
	"runtime"
	"strings"
	"sync"

	"github.com/ferrite-lang/ferrite/errors"
	"github.com/ferrite-lang/ferrite/ir"
)

// ProgramError wraps the failures of every rejected function of a program.
type ProgramError struct {
	Errors []error
}

var _ errors.UserError = ProgramError{}
var _ errors.ParentError = ProgramError{}

func (e ProgramError) Error() string {
	var sb strings.Builder
	sb.WriteString("program verification failed")
	for _, err := range e.Errors {
		sb.WriteString("\n")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func (e ProgramError) ChildErrors() []error {
	return e.Errors
}

func (e ProgramError) Unwrap() []error {
	return e.Errors
}

func (ProgramError) IsUserError() {}

// VerifyProgram verifies every function of the program.
//
// Functions are embarrassingly parallel: they share only the read-only
// context store, which is fully constructed before any verification
// begins. Function checks are dispatched to a bounded pool of workers.
//
// One function's rejection never halts checking of others; all failures
// are collected into a single ProgramError.
func VerifyProgram(program *ir.Program, config *Config) error {
	store, err := NewContextStore(program.Types, program.Impls)
	if err != nil {
		return ProgramError{
			Errors: []error{err},
		}
	}

	// Callees are resolved in the program first;
	// the embedder's handler covers other modules
	var external SignatureHandlerFunc
	if config != nil {
		external = config.SignatureHandler
	}
	resolved := &Config{
		SignatureHandler: func(name string) *ir.FunctionSignature {
			if function := program.Function(name); function != nil {
				return function.Signature()
			}
			if external != nil {
				return external(name)
			}
			return nil
		},
	}
	if config != nil {
		resolved.OnRecordTrace = config.OnRecordTrace
		resolved.TracingEnabled = config.TracingEnabled
		resolved.Concurrency = config.Concurrency
	}

	concurrency := resolved.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if concurrency > len(program.Functions) {
		concurrency = len(program.Functions)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	// Failures are collected per function index,
	// so the report order is deterministic
	results := make([]error, len(program.Functions))

	var wg sync.WaitGroup
	work := make(chan int)

	for worker := 0; worker < concurrency; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range work {
				results[index] = verifyFunction(
					program.Functions[index],
					store,
					program.Statics,
					resolved,
				)
			}
		}()
	}

	for index := range program.Functions {
		work <- index
	}
	close(work)
	wg.Wait()

	var errs []error
	for _, result := range results {
		if result != nil {
			errs = append(errs, result)
		}
	}
	if len(errs) > 0 {
		return ProgramError{
			Errors: errs,
		}
	}
	return nil
}

func verifyFunction(
	function *ir.Function,
	store *ContextStore,
	statics []ir.StaticDecl,
	config *Config,
) error {
	checker, err := NewChecker(function, store, statics, config)
	if err != nil {
		return CheckerError{
			FunctionName: function.Name,
			Errors:       []error{err},
		}
	}
	return checker.Check()
}
