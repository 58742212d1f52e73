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

	"github.com/ferrite-lang/ferrite/common/orderedmap"
)

// LocationContext

// LocationContext maps every mentioned location to exactly one type at one
// point of the control-flow graph. An unmentioned location is unconstrained.
//
// Entries iterate in insertion order, so diagnostics are deterministic.
type LocationContext struct {
	entries orderedmap.OrderedMap[Location, Type]
}

// LocationEntry is one location:type pair of a location context.
type LocationEntry struct {
	Location Location
	Type     Type
}

// NewLocationContext builds a context from the given entries.
// A location listed twice violates totality-as-function,
// and is reported as an error.
func NewLocationContext(entries ...LocationEntry) (*LocationContext, error) {
	ctx := &LocationContext{}
	for _, entry := range entries {
		if ctx.entries.Contains(entry.Location) {
			return nil, fmt.Errorf(
				"location mentioned twice: %s",
				entry.Location,
			)
		}
		ctx.entries.Set(entry.Location, entry.Type)
	}
	return ctx, nil
}

// Get returns the current type of the given location.
func (c *LocationContext) Get(location Location) (Type, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(location)
}

// Contains returns true if the location is mentioned in the context.
func (c *LocationContext) Contains(location Location) bool {
	return c != nil && c.entries.Contains(location)
}

// Len returns the number of mentioned locations.
func (c *LocationContext) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

// Foreach iterates over the entries in insertion order.
func (c *LocationContext) Foreach(f func(location Location, typ Type)) {
	if c == nil {
		return
	}
	c.entries.Foreach(f)
}

// WithType returns a copy of the context in which the given location
// has the given type. The receiver is unchanged.
func (c *LocationContext) WithType(location Location, typ Type) *LocationContext {
	result := &LocationContext{}
	if c != nil {
		c.entries.Foreach(func(existing Location, existingType Type) {
			result.entries.Set(existing, existingType)
		})
	}
	result.entries.Set(location, typ)
	return result
}

// ContainsAbsurd returns true if any mentioned location currently has the
// absurd type, i.e. the program point is unreachable.
func (c *LocationContext) ContainsAbsurd() bool {
	if c == nil {
		return false
	}
	found := false
	c.entries.Foreach(func(_ Location, typ Type) {
		if _, ok := typ.(AbsurdType); ok {
			found = true
		}
	})
	return found
}

func (c *LocationContext) Doc() prettier.Doc {
	if c.Len() == 0 {
		return prettier.Text("{}")
	}

	var entryDocs []prettier.Doc
	c.Foreach(func(location Location, typ Type) {
		entryDocs = append(
			entryDocs,
			prettier.Concat{
				location.Doc(),
				prettier.Text(": "),
				typ.Doc(),
			},
		)
	})

	entriesDoc := prettier.Concat{
		prettier.SoftLine{},
		entryDocs[0],
	}
	for _, entryDoc := range entryDocs[1:] {
		entriesDoc = append(
			entriesDoc,
			prettier.Text(","),
			prettier.Line{},
			entryDoc,
		)
	}

	return prettier.Group{
		Doc: prettier.Concat{
			prettier.Text("{"),
			prettier.Indent{
				Doc: entriesDoc,
			},
			prettier.SoftLine{},
			prettier.Text("}"),
		},
	}
}

func (c *LocationContext) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	c.Foreach(func(location Location, typ Type) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%s: %s", location, typ)
	})
	sb.WriteByte('}')
	return sb.String()
}

// LifetimeContext

// LifetimeContext is the duplicate-free set of lifetimes active at one
// point of the control-flow graph.
type LifetimeContext struct {
	lifetimes []Lifetime
}

// NewLifetimeContext builds a lifetime context from the given lifetimes.
// A lifetime listed twice is reported as an error.
func NewLifetimeContext(lifetimes ...Lifetime) (*LifetimeContext, error) {
	ctx := &LifetimeContext{}
	for _, lifetime := range lifetimes {
		if ctx.Contains(lifetime) {
			return nil, fmt.Errorf(
				"lifetime mentioned twice: %s",
				lifetime,
			)
		}
		ctx.lifetimes = append(ctx.lifetimes, lifetime)
	}
	return ctx, nil
}

func (c *LifetimeContext) Contains(lifetime Lifetime) bool {
	if c == nil {
		return false
	}
	for _, existing := range c.lifetimes {
		if existing == lifetime {
			return true
		}
	}
	return false
}

func (c *LifetimeContext) Len() int {
	if c == nil {
		return 0
	}
	return len(c.lifetimes)
}

// Lifetimes returns the active lifetimes in insertion order.
// The returned slice must not be modified.
func (c *LifetimeContext) Lifetimes() []Lifetime {
	if c == nil {
		return nil
	}
	return c.lifetimes
}

func (c *LifetimeContext) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, lifetime := range c.Lifetimes() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(lifetime.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// OutlivesFact

// OutlivesFact is a single outlives obligation:
// either lifetime-outlives-lifetime, or type-outlives-lifetime.
type OutlivesFact interface {
	isOutlivesFact()
	// SubstituteFact replaces lifetime parameters with lifetime arguments
	SubstituteFact(typeArgs map[string]Type, lifetimeArgs map[string]Lifetime) OutlivesFact
	String() string
}

// LifetimeOutlives records that Subject outlives-at Bound.
type LifetimeOutlives struct {
	Subject Lifetime
	Bound   Lifetime
}

var _ OutlivesFact = LifetimeOutlives{}

func (LifetimeOutlives) isOutlivesFact() {}

func (f LifetimeOutlives) SubstituteFact(
	_ map[string]Type,
	lifetimeArgs map[string]Lifetime,
) OutlivesFact {
	if replacement, ok := lifetimeArgs[f.Subject.Name]; ok {
		f.Subject = replacement
	}
	if replacement, ok := lifetimeArgs[f.Bound.Name]; ok {
		f.Bound = replacement
	}
	return f
}

func (f LifetimeOutlives) String() string {
	return fmt.Sprintf("%s: %s", f.Subject, f.Bound)
}

// TypeOutlives records that every lifetime mentioned by Subject
// outlives-at Bound.
type TypeOutlives struct {
	Subject Type
	Bound   Lifetime
}

var _ OutlivesFact = TypeOutlives{}

func (TypeOutlives) isOutlivesFact() {}

func (f TypeOutlives) SubstituteFact(
	typeArgs map[string]Type,
	lifetimeArgs map[string]Lifetime,
) OutlivesFact {
	f.Subject = f.Subject.Substitute(typeArgs, lifetimeArgs)
	if replacement, ok := lifetimeArgs[f.Bound.Name]; ok {
		f.Bound = replacement
	}
	return f
}

func (f TypeOutlives) String() string {
	return fmt.Sprintf("%s: %s", f.Subject, f.Bound)
}

// BoundContext

// BoundContext is the set of outlives facts a node can assume,
// and must prove to its successors.
type BoundContext struct {
	facts []OutlivesFact
}

func NewBoundContext(facts ...OutlivesFact) *BoundContext {
	ctx := &BoundContext{}
	for _, fact := range facts {
		ctx.add(fact)
	}
	return ctx
}

func (c *BoundContext) add(fact OutlivesFact) {
	if c.ContainsFact(fact) {
		return
	}
	c.facts = append(c.facts, fact)
}

func (c *BoundContext) ContainsFact(fact OutlivesFact) bool {
	if c == nil {
		return false
	}
	for _, existing := range c.facts {
		if factsEqual(existing, fact) {
			return true
		}
	}
	return false
}

func factsEqual(a, b OutlivesFact) bool {
	switch a := a.(type) {
	case LifetimeOutlives:
		b, ok := b.(LifetimeOutlives)
		return ok && a == b
	case TypeOutlives:
		b, ok := b.(TypeOutlives)
		return ok && a.Bound == b.Bound && a.Subject.Equal(b.Subject)
	}
	return false
}

// Facts returns the facts in insertion order.
// The returned slice must not be modified.
func (c *BoundContext) Facts() []OutlivesFact {
	if c == nil {
		return nil
	}
	return c.facts
}

func (c *BoundContext) Len() int {
	if c == nil {
		return 0
	}
	return len(c.facts)
}

func (c *BoundContext) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, fact := range c.Facts() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fact.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// NodeType

// NodeType is the typing required of whoever transfers control to a label:
// the location context, the active lifetimes, and the outlives obligations.
type NodeType struct {
	Locations *LocationContext
	Lifetimes *LifetimeContext
	Bounds    *BoundContext
}

func (nt NodeType) String() string {
	return fmt.Sprintf(
		"(%s; %s; %s)",
		nt.Locations,
		nt.Lifetimes,
		nt.Bounds,
	)
}
