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
	"strings"

	"github.com/turbolent/prettier"

	"github.com/ferrite-lang/ferrite/common/orderedmap"
)

// LabeledNode is one entry of a function's label table:
// the typing required to transfer control to the label,
// and the instruction at the label.
type LabeledNode struct {
	Type NodeType
	Node Node
}

// Function is the unit of verification: a fully annotated control-flow
// graph, plus the function's signature.
//
// The label table is declared data supplied by the lowering stage.
// The entry label is defined like any other node; the exit label is only
// ever referenced.
type Function struct {
	Name           string
	TypeParams     []TypeParam
	LifetimeParams []Lifetime
	Where          []OutlivesFact
	Parameters     []Parameter
	// Locals are names only; a local has no fixed type,
	// its type history lives in the per-label location contexts
	Locals []string
	Return Type
	Labels *orderedmap.OrderedMap[Label, *LabeledNode]
}

// Signature returns the externally visible part of the function.
func (f *Function) Signature() *FunctionSignature {
	return &FunctionSignature{
		Name:           f.Name,
		TypeParams:     f.TypeParams,
		LifetimeParams: f.LifetimeParams,
		Where:          f.Where,
		Parameters:     f.Parameters,
		Return:         f.Return,
	}
}

// AllLocations returns every location that exists in the function:
// the return slot, the parameters, the locals, and the given statics.
func (f *Function) AllLocations(statics []StaticDecl) []Location {
	locations := make([]Location, 0, 1+len(f.Parameters)+len(f.Locals)+len(statics))
	locations = append(locations, ReturnLocation{})
	for _, parameter := range f.Parameters {
		locations = append(locations, ParameterLocation{Name: parameter.Name})
	}
	for _, local := range f.Locals {
		locations = append(locations, LocalLocation{Name: local})
	}
	for _, static := range statics {
		locations = append(locations, StaticLocation{Name: static.Name})
	}
	return locations
}

func (f *Function) Doc() prettier.Doc {
	doc := prettier.Concat{
		prettier.Text("fn "),
		prettier.Text(f.Name),
	}

	var paramDocs []prettier.Doc
	for _, lifetimeParam := range f.LifetimeParams {
		paramDocs = append(paramDocs, lifetimeParam.Doc())
	}
	for _, typeParam := range f.TypeParams {
		paramDocs = append(paramDocs, prettier.Text(typeParam.Name))
	}
	if len(paramDocs) > 0 {
		doc = append(doc, prettier.Text("<"))
		for i, paramDoc := range paramDocs {
			if i > 0 {
				doc = append(doc, prettier.Text(", "))
			}
			doc = append(doc, paramDoc)
		}
		doc = append(doc, prettier.Text(">"))
	}

	doc = append(doc, prettier.Text("("))
	for i, parameter := range f.Parameters {
		if i > 0 {
			doc = append(doc, prettier.Text(", "))
		}
		doc = append(
			doc,
			prettier.Text(parameter.Name),
			prettier.Text(": "),
			parameter.Type.Doc(),
		)
	}
	doc = append(
		doc,
		prettier.Text(") -> "),
		f.Return.Doc(),
	)

	for _, fact := range f.Where {
		doc = append(
			doc,
			prettier.HardLine{},
			prettier.Text("  where "),
			prettier.Text(fact.String()),
		)
	}

	f.Labels.Foreach(func(label Label, labeled *LabeledNode) {
		doc = append(
			doc,
			prettier.HardLine{},
			prettier.Text(string(label)),
			prettier.Text(": "),
			prettier.Indent{
				Doc: labeled.Node.Doc(),
			},
		)
	})

	return doc
}

// Program is the unit the codecs and the command line tool handle:
// type declarations, impl facts, statics, and functions.
type Program struct {
	Types     []*TypeDecl
	Impls     []TraitBound
	Statics   []StaticDecl
	Functions []*Function
}

// Function returns the function with the given name, if any.
func (p *Program) Function(name string) *Function {
	for _, function := range p.Functions {
		if function.Name == name {
			return function
		}
	}
	return nil
}

const prettierMaxLineWidth = 80
const prettierIndent = "    "

// Render pretty-prints the given document.
func Render(doc prettier.Doc) string {
	var sb strings.Builder
	prettier.Prettier(&sb, doc, prettierMaxLineWidth, prettierIndent)
	return sb.String()
}
