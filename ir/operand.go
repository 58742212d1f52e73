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
	"fmt"

	"github.com/turbolent/prettier"
)

// Operand is an argument position of an rvalue or call:
// either the use of a location, or a literal of a named type.
type Operand interface {
	isOperand()
	Doc() prettier.Doc
	String() string
}

// UseOperand consumes the current value of a location.
type UseOperand struct {
	Location Location
}

var _ Operand = UseOperand{}

func (UseOperand) isOperand() {}

func (o UseOperand) Doc() prettier.Doc {
	return o.Location.Doc()
}

func (o UseOperand) String() string {
	return o.Location.String()
}

// LiteralOperand produces a fresh value of a named type.
type LiteralOperand struct {
	Type  NamedType
	Value string
}

var _ Operand = LiteralOperand{}

func (LiteralOperand) isOperand() {}

func (o LiteralOperand) Doc() prettier.Doc {
	return prettier.Text(o.String())
}

func (o LiteralOperand) String() string {
	return fmt.Sprintf("%s: %s", o.Value, o.Type)
}

// UnaryOperation

type UnaryOperation uint

const (
	UnaryOperationUnknown UnaryOperation = iota
	UnaryOperationNegate
	UnaryOperationNot
)

func (op UnaryOperation) Symbol() string {
	switch op {
	case UnaryOperationNegate:
		return "-"
	case UnaryOperationNot:
		return "!"
	}
	return "?"
}

// BinaryOperation

type BinaryOperation uint

const (
	BinaryOperationUnknown BinaryOperation = iota
	BinaryOperationAdd
	BinaryOperationSub
	BinaryOperationMul
	BinaryOperationDiv
	BinaryOperationEqual
	BinaryOperationLess
)

func (op BinaryOperation) Symbol() string {
	switch op {
	case BinaryOperationAdd:
		return "+"
	case BinaryOperationSub:
		return "-"
	case BinaryOperationMul:
		return "*"
	case BinaryOperationDiv:
		return "/"
	case BinaryOperationEqual:
		return "=="
	case BinaryOperationLess:
		return "<"
	}
	return "?"
}

// IsComparison reports whether the operation produces a boolean,
// rather than a value of its operand type.
func (op BinaryOperation) IsComparison() bool {
	switch op {
	case BinaryOperationEqual, BinaryOperationLess:
		return true
	}
	return false
}

// Rvalue is the right-hand side of an assignment:
// a plain operand, or a unary or binary primitive operation.
// Multi-operand forms thread the location context left to right.
type Rvalue interface {
	isRvalue()
	Doc() prettier.Doc
	String() string
}

// OperandRvalue

type OperandRvalue struct {
	Operand Operand
}

var _ Rvalue = OperandRvalue{}

func (OperandRvalue) isRvalue() {}

func (r OperandRvalue) Doc() prettier.Doc {
	return r.Operand.Doc()
}

func (r OperandRvalue) String() string {
	return r.Operand.String()
}

// UnaryRvalue

type UnaryRvalue struct {
	Operation UnaryOperation
	Operand   Operand
}

var _ Rvalue = UnaryRvalue{}

func (UnaryRvalue) isRvalue() {}

func (r UnaryRvalue) Doc() prettier.Doc {
	return prettier.Concat{
		prettier.Text(r.Operation.Symbol()),
		r.Operand.Doc(),
	}
}

func (r UnaryRvalue) String() string {
	return r.Operation.Symbol() + r.Operand.String()
}

// BinaryRvalue

type BinaryRvalue struct {
	Operation BinaryOperation
	Left      Operand
	Right     Operand
}

var _ Rvalue = BinaryRvalue{}

func (BinaryRvalue) isRvalue() {}

func (r BinaryRvalue) Doc() prettier.Doc {
	return prettier.Concat{
		r.Left.Doc(),
		prettier.Text(" "),
		prettier.Text(r.Operation.Symbol()),
		prettier.Text(" "),
		r.Right.Doc(),
	}
}

func (r BinaryRvalue) String() string {
	return fmt.Sprintf(
		"%s %s %s",
		r.Left,
		r.Operation.Symbol(),
		r.Right,
	)
}
