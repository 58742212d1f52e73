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
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ferrite-lang/ferrite/ir"
)

const (
	tracingFunctionPrefix = "function."
	tracingNodePrefix     = "node."

	tracingCheckPostfix = "check"
)

// OnRecordTraceFunc is a function that records a trace.
type OnRecordTraceFunc func(
	functionName string,
	operationName string,
	duration time.Duration,
	attrs []attribute.KeyValue,
)

func (checker *Checker) reportFunctionCheckTrace(duration time.Duration) {
	config := checker.config
	if config == nil || !config.TracingEnabled || config.OnRecordTrace == nil {
		return
	}
	config.OnRecordTrace(
		checker.function.Name,
		tracingFunctionPrefix+tracingCheckPostfix,
		duration,
		[]attribute.KeyValue{
			attribute.Int("labels", checker.function.Labels.Len()),
		},
	)
}

func (checker *Checker) reportNodeCheckTrace(
	label ir.Label,
	node ir.Node,
	duration time.Duration,
) {
	config := checker.config
	if config == nil || !config.TracingEnabled || config.OnRecordTrace == nil {
		return
	}
	config.OnRecordTrace(
		checker.function.Name,
		tracingNodePrefix+tracingCheckPostfix,
		duration,
		[]attribute.KeyValue{
			attribute.String("label", string(label)),
			attribute.String("node", node.String()),
		},
	)
}
