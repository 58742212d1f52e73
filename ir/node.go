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
	"strings"

	"github.com/turbolent/prettier"
)

// Label identifies a node in a function's control-flow graph.
type Label string

const (
	// EntryLabel is where control enters the function.
	// It is defined like any other node.
	EntryLabel Label = "entry"
	// ExitLabel is where control leaves the function.
	// It is only ever referenced, never defined.
	ExitLabel Label = "exit"
)

// Node is one instruction of the control-flow graph.
//
// The variant set is closed: the verifier has one total checking rule per
// kind, and a new kind must force a compile-time-visible gap there.
type Node interface {
	isNode()
	// Successors returns the labels the node can transfer control to
	Successors() []Label
	Doc() prettier.Doc
	String() string
}

// AssignNode evaluates its rvalue and writes the result into the target
// location, which must be uninitialized at the matching size.
type AssignNode struct {
	Target Location
	Value  Rvalue
	Next   Label
}

var _ Node = AssignNode{}

func (AssignNode) isNode() {}

func (n AssignNode) Successors() []Label {
	return []Label{n.Next}
}

func (n AssignNode) Doc() prettier.Doc {
	return prettier.Concat{
		n.Target.Doc(),
		prettier.Text(" = "),
		n.Value.Doc(),
		gotoDoc(n.Next),
	}
}

func (n AssignNode) String() string {
	return fmt.Sprintf("%s = %s; goto %s", n.Target, n.Value, n.Next)
}

// CallNode invokes a named function, instantiated with the given type and
// lifetime arguments, and writes the returned value into the target.
type CallNode struct {
	Target       Location
	Callee       string
	TypeArgs     []Type
	LifetimeArgs []Lifetime
	Arguments    []Operand
	Next         Label
}

var _ Node = CallNode{}

func (CallNode) isNode() {}

func (n CallNode) Successors() []Label {
	return []Label{n.Next}
}

func (n CallNode) Doc() prettier.Doc {
	var argDocs []prettier.Doc
	for _, argument := range n.Arguments {
		argDocs = append(argDocs, argument.Doc())
	}
	argumentsDoc := prettier.Concat{}
	for i, argDoc := range argDocs {
		if i > 0 {
			argumentsDoc = append(argumentsDoc, prettier.Text(", "))
		}
		argumentsDoc = append(argumentsDoc, argDoc)
	}
	return prettier.Concat{
		n.Target.Doc(),
		prettier.Text(" = "),
		prettier.Text(n.Callee),
		prettier.Text("("),
		argumentsDoc,
		prettier.Text(")"),
		gotoDoc(n.Next),
	}
}

func (n CallNode) String() string {
	var args []string
	for _, argument := range n.Arguments {
		args = append(args, argument.String())
	}
	return fmt.Sprintf(
		"%s = %s(%s); goto %s",
		n.Target,
		n.Callee,
		strings.Join(args, ", "),
		n.Next,
	)
}

// IfNode evaluates its condition operand and branches.
// Both successors are checked against the same outgoing contexts.
type IfNode struct {
	Condition Operand
	Then      Label
	Else      Label
}

var _ Node = IfNode{}

func (IfNode) isNode() {}

func (n IfNode) Successors() []Label {
	return []Label{n.Then, n.Else}
}

func (n IfNode) Doc() prettier.Doc {
	return prettier.Concat{
		prettier.Text("if "),
		n.Condition.Doc(),
		prettier.Text(" then "),
		prettier.Text(string(n.Then)),
		prettier.Text(" else "),
		prettier.Text(string(n.Else)),
	}
}

func (n IfNode) String() string {
	return fmt.Sprintf("if %s then %s else %s", n.Condition, n.Then, n.Else)
}

// SwitchBranch is one arm of a switch: the variant type the scrutinee is
// narrowed to, and the label that receives control.
type SwitchBranch struct {
	Variant Type
	Target  Label
}

// SwitchNode dispatches on the variant of a sum-typed location.
// The union of branch variants must cover the scrutinee's static type.
type SwitchNode struct {
	Scrutinee Location
	// Subject is the static sum type being dispatched on
	Subject  NamedType
	Branches []SwitchBranch
}

var _ Node = SwitchNode{}

func (SwitchNode) isNode() {}

func (n SwitchNode) Successors() []Label {
	labels := make([]Label, len(n.Branches))
	for i, branch := range n.Branches {
		labels[i] = branch.Target
	}
	return labels
}

func (n SwitchNode) Doc() prettier.Doc {
	doc := prettier.Concat{
		prettier.Text("switch "),
		n.Scrutinee.Doc(),
		prettier.Text(": "),
		n.Subject.Doc(),
	}
	for _, branch := range n.Branches {
		doc = append(
			doc,
			prettier.HardLine{},
			prettier.Text("case "),
			branch.Variant.Doc(),
			prettier.Text(" => "),
			prettier.Text(string(branch.Target)),
		)
	}
	return doc
}

func (n SwitchNode) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "switch %s: %s", n.Scrutinee, n.Subject.String())
	for _, branch := range n.Branches {
		fmt.Fprintf(&sb, " case %s => %s", branch.Variant, branch.Target)
	}
	return sb.String()
}

// DropNode explicitly forgets a Copy value.
// It exists purely to make discarding a value visible in the type history.
type DropNode struct {
	Target Location
	Next   Label
}

var _ Node = DropNode{}

func (DropNode) isNode() {}

func (n DropNode) Successors() []Label {
	return []Label{n.Next}
}

func (n DropNode) Doc() prettier.Doc {
	return prettier.Concat{
		prettier.Text("drop "),
		n.Target.Doc(),
		gotoDoc(n.Next),
	}
}

func (n DropNode) String() string {
	return fmt.Sprintf("drop %s; goto %s", n.Target, n.Next)
}

// LifetimeBeginNode opens a lifetime.
// The node itself is not yet within the lifetime's scope.
type LifetimeBeginNode struct {
	Lifetime Lifetime
	Next     Label
}

var _ Node = LifetimeBeginNode{}

func (LifetimeBeginNode) isNode() {}

func (n LifetimeBeginNode) Successors() []Label {
	return []Label{n.Next}
}

func (n LifetimeBeginNode) Doc() prettier.Doc {
	return prettier.Concat{
		prettier.Text("begin "),
		n.Lifetime.Doc(),
		gotoDoc(n.Next),
	}
}

func (n LifetimeBeginNode) String() string {
	return fmt.Sprintf("begin %s; goto %s", n.Lifetime, n.Next)
}

// LifetimeEndNode closes a lifetime.
// No location may still mention the lifetime in its current type.
type LifetimeEndNode struct {
	Lifetime Lifetime
	Next     Label
}

var _ Node = LifetimeEndNode{}

func (LifetimeEndNode) isNode() {}

func (n LifetimeEndNode) Successors() []Label {
	return []Label{n.Next}
}

func (n LifetimeEndNode) Doc() prettier.Doc {
	return prettier.Concat{
		prettier.Text("end "),
		n.Lifetime.Doc(),
		gotoDoc(n.Next),
	}
}

func (n LifetimeEndNode) String() string {
	return fmt.Sprintf("end %s; goto %s", n.Lifetime, n.Next)
}

// DeadCodeNode is an unreachable program point, witnessed by a location of
// the absurd type in its incoming context.
type DeadCodeNode struct{}

var _ Node = DeadCodeNode{}

func (DeadCodeNode) isNode() {}

func (DeadCodeNode) Successors() []Label {
	return nil
}

var deadCodeDoc prettier.Doc = prettier.Text("unreachable")

func (DeadCodeNode) Doc() prettier.Doc {
	return deadCodeDoc
}

func (DeadCodeNode) String() string {
	return "unreachable"
}

func gotoDoc(label Label) prettier.Doc {
	return prettier.Concat{
		prettier.Text("; goto "),
		prettier.Text(string(label)),
	}
}
