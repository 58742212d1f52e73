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

package firf

import (
	"fmt"

	"github.com/ferrite-lang/ferrite/common/orderedmap"
	"github.com/ferrite-lang/ferrite/ir"
)

// The wire schema is a kind-discriminated tree. The same DTOs back both
// the YAML fixture format and the binary CBOR format, so the two always
// agree on the schema.

const (
	typeKindUninit = "uninit"
	typeKindAbsurd = "absurd"
	typeKindParam  = "param"
	typeKindNamed  = "named"
	typeKindRef    = "ref"

	locationKindReturn = "ret"
	locationKindStatic = "static"
	locationKindLocal  = "local"
	locationKindParam  = "param"

	operandKindUse     = "use"
	operandKindLiteral = "literal"

	rvalueKindOperand = "operand"
	rvalueKindUnary   = "unary"
	rvalueKindBinary  = "binary"

	nodeKindAssign        = "assign"
	nodeKindCall          = "call"
	nodeKindIf            = "if"
	nodeKindSwitch        = "switch"
	nodeKindDrop          = "drop"
	nodeKindLifetimeBegin = "lifetime_begin"
	nodeKindLifetimeEnd   = "lifetime_end"
	nodeKindDeadCode      = "dead_code"

	factKindLifetime = "lifetime"
	factKindType     = "type"
)

type programDTO struct {
	Types     []typeDeclDTO `yaml:"types,omitempty" cbor:"types,omitempty"`
	Impls     []implDTO     `yaml:"impls,omitempty" cbor:"impls,omitempty"`
	Statics   []staticDTO   `yaml:"statics,omitempty" cbor:"statics,omitempty"`
	Functions []functionDTO `yaml:"functions" cbor:"functions"`
}

type typeDeclDTO struct {
	Name           string    `yaml:"name" cbor:"name"`
	TypeParams     []string  `yaml:"type_params,omitempty" cbor:"type_params,omitempty"`
	LifetimeParams []string  `yaml:"lifetime_params,omitempty" cbor:"lifetime_params,omitempty"`
	Size           uint64    `yaml:"size" cbor:"size"`
	Variants       []typeDTO `yaml:"variants,omitempty" cbor:"variants,omitempty"`
}

type implDTO struct {
	Type  typeDTO `yaml:"type" cbor:"type"`
	Trait string  `yaml:"trait" cbor:"trait"`
}

type staticDTO struct {
	Name string  `yaml:"name" cbor:"name"`
	Type typeDTO `yaml:"type" cbor:"type"`
}

type typeDTO struct {
	Kind         string    `yaml:"kind" cbor:"kind"`
	Size         uint64    `yaml:"size,omitempty" cbor:"size,omitempty"`
	Name         string    `yaml:"name,omitempty" cbor:"name,omitempty"`
	TypeArgs     []typeDTO `yaml:"type_args,omitempty" cbor:"type_args,omitempty"`
	LifetimeArgs []string  `yaml:"lifetime_args,omitempty" cbor:"lifetime_args,omitempty"`
	Lifetime     string    `yaml:"lifetime,omitempty" cbor:"lifetime,omitempty"`
	Referent     *typeDTO  `yaml:"referent,omitempty" cbor:"referent,omitempty"`
}

type locationDTO struct {
	Kind string `yaml:"kind" cbor:"kind"`
	Name string `yaml:"name,omitempty" cbor:"name,omitempty"`
}

type operandDTO struct {
	Kind     string       `yaml:"kind" cbor:"kind"`
	Location *locationDTO `yaml:"location,omitempty" cbor:"location,omitempty"`
	Type     *typeDTO     `yaml:"type,omitempty" cbor:"type,omitempty"`
	Value    string       `yaml:"value,omitempty" cbor:"value,omitempty"`
}

type rvalueDTO struct {
	Kind      string      `yaml:"kind" cbor:"kind"`
	Operation string      `yaml:"operation,omitempty" cbor:"operation,omitempty"`
	Operand   *operandDTO `yaml:"operand,omitempty" cbor:"operand,omitempty"`
	Left      *operandDTO `yaml:"left,omitempty" cbor:"left,omitempty"`
	Right     *operandDTO `yaml:"right,omitempty" cbor:"right,omitempty"`
}

type branchDTO struct {
	Variant typeDTO `yaml:"variant" cbor:"variant"`
	Target  string  `yaml:"target" cbor:"target"`
}

type nodeDTO struct {
	Kind         string       `yaml:"kind" cbor:"kind"`
	Target       *locationDTO `yaml:"target,omitempty" cbor:"target,omitempty"`
	Value        *rvalueDTO   `yaml:"value,omitempty" cbor:"value,omitempty"`
	Callee       string       `yaml:"callee,omitempty" cbor:"callee,omitempty"`
	TypeArgs     []typeDTO    `yaml:"type_args,omitempty" cbor:"type_args,omitempty"`
	LifetimeArgs []string     `yaml:"lifetime_args,omitempty" cbor:"lifetime_args,omitempty"`
	Arguments    []operandDTO `yaml:"arguments,omitempty" cbor:"arguments,omitempty"`
	Condition    *operandDTO  `yaml:"condition,omitempty" cbor:"condition,omitempty"`
	Then         string       `yaml:"then,omitempty" cbor:"then,omitempty"`
	Else         string       `yaml:"else,omitempty" cbor:"else,omitempty"`
	Scrutinee    *locationDTO `yaml:"scrutinee,omitempty" cbor:"scrutinee,omitempty"`
	Subject      *typeDTO     `yaml:"subject,omitempty" cbor:"subject,omitempty"`
	Branches     []branchDTO  `yaml:"branches,omitempty" cbor:"branches,omitempty"`
	Lifetime     string       `yaml:"lifetime,omitempty" cbor:"lifetime,omitempty"`
	Next         string       `yaml:"next,omitempty" cbor:"next,omitempty"`
}

type factDTO struct {
	Kind        string   `yaml:"kind" cbor:"kind"`
	Subject     string   `yaml:"subject,omitempty" cbor:"subject,omitempty"`
	SubjectType *typeDTO `yaml:"subject_type,omitempty" cbor:"subject_type,omitempty"`
	Bound       string   `yaml:"bound" cbor:"bound"`
}

type locationEntryDTO struct {
	Location locationDTO `yaml:"location" cbor:"location"`
	Type     typeDTO     `yaml:"type" cbor:"type"`
}

type nodeTypeDTO struct {
	Locations []locationEntryDTO `yaml:"locations,omitempty" cbor:"locations,omitempty"`
	Lifetimes []string           `yaml:"lifetimes,omitempty" cbor:"lifetimes,omitempty"`
	Bounds    []factDTO          `yaml:"bounds,omitempty" cbor:"bounds,omitempty"`
}

type labeledNodeDTO struct {
	Label string      `yaml:"label" cbor:"label"`
	Type  nodeTypeDTO `yaml:"type" cbor:"type"`
	Node  nodeDTO     `yaml:"node" cbor:"node"`
}

type typeParamDTO struct {
	Name   string   `yaml:"name" cbor:"name"`
	Size   uint64   `yaml:"size" cbor:"size"`
	Bounds []string `yaml:"bounds,omitempty" cbor:"bounds,omitempty"`
}

type parameterDTO struct {
	Name string  `yaml:"name" cbor:"name"`
	Type typeDTO `yaml:"type" cbor:"type"`
}

type functionDTO struct {
	Name           string           `yaml:"name" cbor:"name"`
	TypeParams     []typeParamDTO   `yaml:"type_params,omitempty" cbor:"type_params,omitempty"`
	LifetimeParams []string         `yaml:"lifetime_params,omitempty" cbor:"lifetime_params,omitempty"`
	Where          []factDTO        `yaml:"where,omitempty" cbor:"where,omitempty"`
	Parameters     []parameterDTO   `yaml:"parameters,omitempty" cbor:"parameters,omitempty"`
	Locals         []string         `yaml:"locals,omitempty" cbor:"locals,omitempty"`
	Return         typeDTO          `yaml:"return" cbor:"return"`
	Labels         []labeledNodeDTO `yaml:"labels" cbor:"labels"`
}

var unaryOperationNames = map[ir.UnaryOperation]string{
	ir.UnaryOperationNegate: "negate",
	ir.UnaryOperationNot:    "not",
}

var binaryOperationNames = map[ir.BinaryOperation]string{
	ir.BinaryOperationAdd:   "add",
	ir.BinaryOperationSub:   "sub",
	ir.BinaryOperationMul:   "mul",
	ir.BinaryOperationDiv:   "div",
	ir.BinaryOperationEqual: "equal",
	ir.BinaryOperationLess:  "less",
}

var unaryOperationsByName = func() map[string]ir.UnaryOperation {
	m := make(map[string]ir.UnaryOperation, len(unaryOperationNames))
	for op, name := range unaryOperationNames {
		m[name] = op
	}
	return m
}()

var binaryOperationsByName = func() map[string]ir.BinaryOperation {
	m := make(map[string]ir.BinaryOperation, len(binaryOperationNames))
	for op, name := range binaryOperationNames {
		m[name] = op
	}
	return m
}()

// Encoding (IR to DTO)

func programToDTO(program *ir.Program) programDTO {
	dto := programDTO{}
	for _, decl := range program.Types {
		dto.Types = append(dto.Types, typeDeclToDTO(decl))
	}
	for _, impl := range program.Impls {
		dto.Impls = append(dto.Impls, implDTO{
			Type:  typeToDTO(impl.Type),
			Trait: impl.Trait,
		})
	}
	for _, static := range program.Statics {
		dto.Statics = append(dto.Statics, staticDTO{
			Name: static.Name,
			Type: typeToDTO(static.Type),
		})
	}
	for _, function := range program.Functions {
		dto.Functions = append(dto.Functions, functionToDTO(function))
	}
	return dto
}

func typeDeclToDTO(decl *ir.TypeDecl) typeDeclDTO {
	dto := typeDeclDTO{
		Name:           decl.Name,
		TypeParams:     decl.TypeParams,
		LifetimeParams: decl.LifetimeParams,
		Size:           decl.Size,
	}
	for _, variant := range decl.Variants {
		dto.Variants = append(dto.Variants, typeToDTO(variant))
	}
	return dto
}

func typeToDTO(typ ir.Type) typeDTO {
	switch typ := typ.(type) {
	case ir.UninitType:
		return typeDTO{
			Kind: typeKindUninit,
			Size: typ.Size,
		}

	case ir.AbsurdType:
		return typeDTO{
			Kind: typeKindAbsurd,
		}

	case ir.TypeParamType:
		return typeDTO{
			Kind: typeKindParam,
			Name: typ.Name,
		}

	case ir.NamedType:
		dto := typeDTO{
			Kind: typeKindNamed,
			Name: typ.Name,
		}
		for _, typeArg := range typ.TypeArgs {
			dto.TypeArgs = append(dto.TypeArgs, typeToDTO(typeArg))
		}
		for _, lifetimeArg := range typ.LifetimeArgs {
			dto.LifetimeArgs = append(dto.LifetimeArgs, lifetimeArg.Name)
		}
		return dto

	case ir.RefType:
		referent := typeToDTO(typ.Referent)
		return typeDTO{
			Kind:     typeKindRef,
			Lifetime: typ.Lifetime.Name,
			Referent: &referent,
		}
	}

	panic(fmt.Errorf("unsupported type: %T", typ))
}

func locationToDTO(location ir.Location) locationDTO {
	switch location := location.(type) {
	case ir.ReturnLocation:
		return locationDTO{Kind: locationKindReturn}
	case ir.StaticLocation:
		return locationDTO{Kind: locationKindStatic, Name: location.Name}
	case ir.LocalLocation:
		return locationDTO{Kind: locationKindLocal, Name: location.Name}
	case ir.ParameterLocation:
		return locationDTO{Kind: locationKindParam, Name: location.Name}
	}

	panic(fmt.Errorf("unsupported location: %T", location))
}

func operandToDTO(operand ir.Operand) operandDTO {
	switch operand := operand.(type) {
	case ir.UseOperand:
		location := locationToDTO(operand.Location)
		return operandDTO{
			Kind:     operandKindUse,
			Location: &location,
		}

	case ir.LiteralOperand:
		typ := typeToDTO(operand.Type)
		return operandDTO{
			Kind:  operandKindLiteral,
			Type:  &typ,
			Value: operand.Value,
		}
	}

	panic(fmt.Errorf("unsupported operand: %T", operand))
}

func rvalueToDTO(rvalue ir.Rvalue) rvalueDTO {
	switch rvalue := rvalue.(type) {
	case ir.OperandRvalue:
		operand := operandToDTO(rvalue.Operand)
		return rvalueDTO{
			Kind:    rvalueKindOperand,
			Operand: &operand,
		}

	case ir.UnaryRvalue:
		operand := operandToDTO(rvalue.Operand)
		return rvalueDTO{
			Kind:      rvalueKindUnary,
			Operation: unaryOperationNames[rvalue.Operation],
			Operand:   &operand,
		}

	case ir.BinaryRvalue:
		left := operandToDTO(rvalue.Left)
		right := operandToDTO(rvalue.Right)
		return rvalueDTO{
			Kind:      rvalueKindBinary,
			Operation: binaryOperationNames[rvalue.Operation],
			Left:      &left,
			Right:     &right,
		}
	}

	panic(fmt.Errorf("unsupported rvalue: %T", rvalue))
}

func nodeToDTO(node ir.Node) nodeDTO {
	switch node := node.(type) {
	case ir.AssignNode:
		target := locationToDTO(node.Target)
		value := rvalueToDTO(node.Value)
		return nodeDTO{
			Kind:   nodeKindAssign,
			Target: &target,
			Value:  &value,
			Next:   string(node.Next),
		}

	case ir.CallNode:
		target := locationToDTO(node.Target)
		dto := nodeDTO{
			Kind:   nodeKindCall,
			Target: &target,
			Callee: node.Callee,
			Next:   string(node.Next),
		}
		for _, typeArg := range node.TypeArgs {
			dto.TypeArgs = append(dto.TypeArgs, typeToDTO(typeArg))
		}
		for _, lifetimeArg := range node.LifetimeArgs {
			dto.LifetimeArgs = append(dto.LifetimeArgs, lifetimeArg.Name)
		}
		for _, argument := range node.Arguments {
			dto.Arguments = append(dto.Arguments, operandToDTO(argument))
		}
		return dto

	case ir.IfNode:
		condition := operandToDTO(node.Condition)
		return nodeDTO{
			Kind:      nodeKindIf,
			Condition: &condition,
			Then:      string(node.Then),
			Else:      string(node.Else),
		}

	case ir.SwitchNode:
		scrutinee := locationToDTO(node.Scrutinee)
		subject := typeToDTO(node.Subject)
		dto := nodeDTO{
			Kind:      nodeKindSwitch,
			Scrutinee: &scrutinee,
			Subject:   &subject,
		}
		for _, branch := range node.Branches {
			dto.Branches = append(dto.Branches, branchDTO{
				Variant: typeToDTO(branch.Variant),
				Target:  string(branch.Target),
			})
		}
		return dto

	case ir.DropNode:
		target := locationToDTO(node.Target)
		return nodeDTO{
			Kind:   nodeKindDrop,
			Target: &target,
			Next:   string(node.Next),
		}

	case ir.LifetimeBeginNode:
		return nodeDTO{
			Kind:     nodeKindLifetimeBegin,
			Lifetime: node.Lifetime.Name,
			Next:     string(node.Next),
		}

	case ir.LifetimeEndNode:
		return nodeDTO{
			Kind:     nodeKindLifetimeEnd,
			Lifetime: node.Lifetime.Name,
			Next:     string(node.Next),
		}

	case ir.DeadCodeNode:
		return nodeDTO{
			Kind: nodeKindDeadCode,
		}
	}

	panic(fmt.Errorf("unsupported node: %T", node))
}

func factToDTO(fact ir.OutlivesFact) factDTO {
	switch fact := fact.(type) {
	case ir.LifetimeOutlives:
		return factDTO{
			Kind:    factKindLifetime,
			Subject: fact.Subject.Name,
			Bound:   fact.Bound.Name,
		}

	case ir.TypeOutlives:
		subject := typeToDTO(fact.Subject)
		return factDTO{
			Kind:        factKindType,
			SubjectType: &subject,
			Bound:       fact.Bound.Name,
		}
	}

	panic(fmt.Errorf("unsupported outlives fact: %T", fact))
}

func nodeTypeToDTO(nodeType ir.NodeType) nodeTypeDTO {
	dto := nodeTypeDTO{}
	nodeType.Locations.Foreach(func(location ir.Location, typ ir.Type) {
		dto.Locations = append(dto.Locations, locationEntryDTO{
			Location: locationToDTO(location),
			Type:     typeToDTO(typ),
		})
	})
	for _, lifetime := range nodeType.Lifetimes.Lifetimes() {
		dto.Lifetimes = append(dto.Lifetimes, lifetime.Name)
	}
	for _, fact := range nodeType.Bounds.Facts() {
		dto.Bounds = append(dto.Bounds, factToDTO(fact))
	}
	return dto
}

func functionToDTO(function *ir.Function) functionDTO {
	dto := functionDTO{
		Name:   function.Name,
		Locals: function.Locals,
		Return: typeToDTO(function.Return),
	}
	for _, typeParam := range function.TypeParams {
		dto.TypeParams = append(dto.TypeParams, typeParamDTO{
			Name:   typeParam.Name,
			Size:   typeParam.Size,
			Bounds: typeParam.Bounds,
		})
	}
	for _, lifetimeParam := range function.LifetimeParams {
		dto.LifetimeParams = append(dto.LifetimeParams, lifetimeParam.Name)
	}
	for _, fact := range function.Where {
		dto.Where = append(dto.Where, factToDTO(fact))
	}
	for _, parameter := range function.Parameters {
		dto.Parameters = append(dto.Parameters, parameterDTO{
			Name: parameter.Name,
			Type: typeToDTO(parameter.Type),
		})
	}
	function.Labels.Foreach(func(label ir.Label, labeled *ir.LabeledNode) {
		dto.Labels = append(dto.Labels, labeledNodeDTO{
			Label: string(label),
			Type:  nodeTypeToDTO(labeled.Type),
			Node:  nodeToDTO(labeled.Node),
		})
	})
	return dto
}

// Decoding (DTO to IR)

func programFromDTO(dto programDTO) (*ir.Program, error) {
	program := &ir.Program{}
	for _, declDTO := range dto.Types {
		decl, err := typeDeclFromDTO(declDTO)
		if err != nil {
			return nil, err
		}
		program.Types = append(program.Types, decl)
	}
	for _, implDTO := range dto.Impls {
		typ, err := typeFromDTO(implDTO.Type)
		if err != nil {
			return nil, err
		}
		program.Impls = append(program.Impls, ir.TraitBound{
			Type:  typ,
			Trait: implDTO.Trait,
		})
	}
	for _, staticDTO := range dto.Statics {
		typ, err := typeFromDTO(staticDTO.Type)
		if err != nil {
			return nil, err
		}
		program.Statics = append(program.Statics, ir.StaticDecl{
			Name: staticDTO.Name,
			Type: typ,
		})
	}
	for _, functionDTO := range dto.Functions {
		function, err := functionFromDTO(functionDTO)
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", functionDTO.Name, err)
		}
		program.Functions = append(program.Functions, function)
	}
	return program, nil
}

func typeDeclFromDTO(dto typeDeclDTO) (*ir.TypeDecl, error) {
	decl := &ir.TypeDecl{
		Name:           dto.Name,
		TypeParams:     dto.TypeParams,
		LifetimeParams: dto.LifetimeParams,
		Size:           dto.Size,
	}
	for _, variantDTO := range dto.Variants {
		variant, err := typeFromDTO(variantDTO)
		if err != nil {
			return nil, err
		}
		decl.Variants = append(decl.Variants, variant)
	}
	return decl, nil
}

func typeFromDTO(dto typeDTO) (ir.Type, error) {
	switch dto.Kind {
	case typeKindUninit:
		return ir.UninitType{Size: dto.Size}, nil

	case typeKindAbsurd:
		return ir.AbsurdType{}, nil

	case typeKindParam:
		return ir.TypeParamType{Name: dto.Name}, nil

	case typeKindNamed:
		typ := ir.NamedType{Name: dto.Name}
		for _, typeArgDTO := range dto.TypeArgs {
			typeArg, err := typeFromDTO(typeArgDTO)
			if err != nil {
				return nil, err
			}
			typ.TypeArgs = append(typ.TypeArgs, typeArg)
		}
		for _, lifetimeArg := range dto.LifetimeArgs {
			typ.LifetimeArgs = append(typ.LifetimeArgs, ir.Lifetime{Name: lifetimeArg})
		}
		return typ, nil

	case typeKindRef:
		if dto.Referent == nil {
			return nil, fmt.Errorf("reference type without referent")
		}
		referent, err := typeFromDTO(*dto.Referent)
		if err != nil {
			return nil, err
		}
		return ir.RefType{
			Lifetime: ir.Lifetime{Name: dto.Lifetime},
			Referent: referent,
		}, nil
	}

	return nil, fmt.Errorf("unknown type kind: %q", dto.Kind)
}

func namedTypeFromDTO(dto typeDTO) (ir.NamedType, error) {
	typ, err := typeFromDTO(dto)
	if err != nil {
		return ir.NamedType{}, err
	}
	named, ok := typ.(ir.NamedType)
	if !ok {
		return ir.NamedType{}, fmt.Errorf("expected a named type, got kind %q", dto.Kind)
	}
	return named, nil
}

func locationFromDTO(dto locationDTO) (ir.Location, error) {
	switch dto.Kind {
	case locationKindReturn:
		return ir.ReturnLocation{}, nil
	case locationKindStatic:
		return ir.StaticLocation{Name: dto.Name}, nil
	case locationKindLocal:
		return ir.LocalLocation{Name: dto.Name}, nil
	case locationKindParam:
		return ir.ParameterLocation{Name: dto.Name}, nil
	}

	return nil, fmt.Errorf("unknown location kind: %q", dto.Kind)
}

func operandFromDTO(dto operandDTO) (ir.Operand, error) {
	switch dto.Kind {
	case operandKindUse:
		if dto.Location == nil {
			return nil, fmt.Errorf("use operand without location")
		}
		location, err := locationFromDTO(*dto.Location)
		if err != nil {
			return nil, err
		}
		return ir.UseOperand{Location: location}, nil

	case operandKindLiteral:
		if dto.Type == nil {
			return nil, fmt.Errorf("literal operand without type")
		}
		typ, err := namedTypeFromDTO(*dto.Type)
		if err != nil {
			return nil, err
		}
		return ir.LiteralOperand{
			Type:  typ,
			Value: dto.Value,
		}, nil
	}

	return nil, fmt.Errorf("unknown operand kind: %q", dto.Kind)
}

func requiredOperandFromDTO(dto *operandDTO, role string) (ir.Operand, error) {
	if dto == nil {
		return nil, fmt.Errorf("missing %s operand", role)
	}
	return operandFromDTO(*dto)
}

func rvalueFromDTO(dto rvalueDTO) (ir.Rvalue, error) {
	switch dto.Kind {
	case rvalueKindOperand:
		operand, err := requiredOperandFromDTO(dto.Operand, "rvalue")
		if err != nil {
			return nil, err
		}
		return ir.OperandRvalue{Operand: operand}, nil

	case rvalueKindUnary:
		operation, ok := unaryOperationsByName[dto.Operation]
		if !ok {
			return nil, fmt.Errorf("unknown unary operation: %q", dto.Operation)
		}
		operand, err := requiredOperandFromDTO(dto.Operand, "unary")
		if err != nil {
			return nil, err
		}
		return ir.UnaryRvalue{
			Operation: operation,
			Operand:   operand,
		}, nil

	case rvalueKindBinary:
		operation, ok := binaryOperationsByName[dto.Operation]
		if !ok {
			return nil, fmt.Errorf("unknown binary operation: %q", dto.Operation)
		}
		left, err := requiredOperandFromDTO(dto.Left, "left")
		if err != nil {
			return nil, err
		}
		right, err := requiredOperandFromDTO(dto.Right, "right")
		if err != nil {
			return nil, err
		}
		return ir.BinaryRvalue{
			Operation: operation,
			Left:      left,
			Right:     right,
		}, nil
	}

	return nil, fmt.Errorf("unknown rvalue kind: %q", dto.Kind)
}

func requiredLocationFromDTO(dto *locationDTO, role string) (ir.Location, error) {
	if dto == nil {
		return nil, fmt.Errorf("missing %s location", role)
	}
	return locationFromDTO(*dto)
}

func nodeFromDTO(dto nodeDTO) (ir.Node, error) {
	switch dto.Kind {
	case nodeKindAssign:
		target, err := requiredLocationFromDTO(dto.Target, "target")
		if err != nil {
			return nil, err
		}
		if dto.Value == nil {
			return nil, fmt.Errorf("assign node without value")
		}
		value, err := rvalueFromDTO(*dto.Value)
		if err != nil {
			return nil, err
		}
		return ir.AssignNode{
			Target: target,
			Value:  value,
			Next:   ir.Label(dto.Next),
		}, nil

	case nodeKindCall:
		target, err := requiredLocationFromDTO(dto.Target, "target")
		if err != nil {
			return nil, err
		}
		node := ir.CallNode{
			Target: target,
			Callee: dto.Callee,
			Next:   ir.Label(dto.Next),
		}
		for _, typeArgDTO := range dto.TypeArgs {
			typeArg, err := typeFromDTO(typeArgDTO)
			if err != nil {
				return nil, err
			}
			node.TypeArgs = append(node.TypeArgs, typeArg)
		}
		for _, lifetimeArg := range dto.LifetimeArgs {
			node.LifetimeArgs = append(node.LifetimeArgs, ir.Lifetime{Name: lifetimeArg})
		}
		for _, argumentDTO := range dto.Arguments {
			argument, err := operandFromDTO(argumentDTO)
			if err != nil {
				return nil, err
			}
			node.Arguments = append(node.Arguments, argument)
		}
		return node, nil

	case nodeKindIf:
		condition, err := requiredOperandFromDTO(dto.Condition, "condition")
		if err != nil {
			return nil, err
		}
		return ir.IfNode{
			Condition: condition,
			Then:      ir.Label(dto.Then),
			Else:      ir.Label(dto.Else),
		}, nil

	case nodeKindSwitch:
		scrutinee, err := requiredLocationFromDTO(dto.Scrutinee, "scrutinee")
		if err != nil {
			return nil, err
		}
		if dto.Subject == nil {
			return nil, fmt.Errorf("switch node without subject")
		}
		subject, err := namedTypeFromDTO(*dto.Subject)
		if err != nil {
			return nil, err
		}
		node := ir.SwitchNode{
			Scrutinee: scrutinee,
			Subject:   subject,
		}
		for _, branchDTO := range dto.Branches {
			variant, err := typeFromDTO(branchDTO.Variant)
			if err != nil {
				return nil, err
			}
			node.Branches = append(node.Branches, ir.SwitchBranch{
				Variant: variant,
				Target:  ir.Label(branchDTO.Target),
			})
		}
		return node, nil

	case nodeKindDrop:
		target, err := requiredLocationFromDTO(dto.Target, "target")
		if err != nil {
			return nil, err
		}
		return ir.DropNode{
			Target: target,
			Next:   ir.Label(dto.Next),
		}, nil

	case nodeKindLifetimeBegin:
		return ir.LifetimeBeginNode{
			Lifetime: ir.Lifetime{Name: dto.Lifetime},
			Next:     ir.Label(dto.Next),
		}, nil

	case nodeKindLifetimeEnd:
		return ir.LifetimeEndNode{
			Lifetime: ir.Lifetime{Name: dto.Lifetime},
			Next:     ir.Label(dto.Next),
		}, nil

	case nodeKindDeadCode:
		return ir.DeadCodeNode{}, nil
	}

	return nil, fmt.Errorf("unknown node kind: %q", dto.Kind)
}

func factFromDTO(dto factDTO) (ir.OutlivesFact, error) {
	switch dto.Kind {
	case factKindLifetime:
		return ir.LifetimeOutlives{
			Subject: ir.Lifetime{Name: dto.Subject},
			Bound:   ir.Lifetime{Name: dto.Bound},
		}, nil

	case factKindType:
		if dto.SubjectType == nil {
			return nil, fmt.Errorf("type outlives fact without subject type")
		}
		subject, err := typeFromDTO(*dto.SubjectType)
		if err != nil {
			return nil, err
		}
		return ir.TypeOutlives{
			Subject: subject,
			Bound:   ir.Lifetime{Name: dto.Bound},
		}, nil
	}

	return nil, fmt.Errorf("unknown outlives fact kind: %q", dto.Kind)
}

func nodeTypeFromDTO(dto nodeTypeDTO) (ir.NodeType, error) {
	entries := make([]ir.LocationEntry, 0, len(dto.Locations))
	for _, entryDTO := range dto.Locations {
		location, err := locationFromDTO(entryDTO.Location)
		if err != nil {
			return ir.NodeType{}, err
		}
		typ, err := typeFromDTO(entryDTO.Type)
		if err != nil {
			return ir.NodeType{}, err
		}
		entries = append(entries, ir.LocationEntry{
			Location: location,
			Type:     typ,
		})
	}
	locations, err := ir.NewLocationContext(entries...)
	if err != nil {
		return ir.NodeType{}, err
	}

	lifetimes := make([]ir.Lifetime, 0, len(dto.Lifetimes))
	for _, lifetime := range dto.Lifetimes {
		lifetimes = append(lifetimes, ir.Lifetime{Name: lifetime})
	}
	lifetimeContext, err := ir.NewLifetimeContext(lifetimes...)
	if err != nil {
		return ir.NodeType{}, err
	}

	facts := make([]ir.OutlivesFact, 0, len(dto.Bounds))
	for _, factDTO := range dto.Bounds {
		fact, err := factFromDTO(factDTO)
		if err != nil {
			return ir.NodeType{}, err
		}
		facts = append(facts, fact)
	}

	return ir.NodeType{
		Locations: locations,
		Lifetimes: lifetimeContext,
		Bounds:    ir.NewBoundContext(facts...),
	}, nil
}

func functionFromDTO(dto functionDTO) (*ir.Function, error) {
	function := &ir.Function{
		Name:   dto.Name,
		Locals: dto.Locals,
	}
	for _, typeParamDTO := range dto.TypeParams {
		function.TypeParams = append(function.TypeParams, ir.TypeParam{
			Name:   typeParamDTO.Name,
			Size:   typeParamDTO.Size,
			Bounds: typeParamDTO.Bounds,
		})
	}
	for _, lifetimeParam := range dto.LifetimeParams {
		function.LifetimeParams = append(function.LifetimeParams, ir.Lifetime{Name: lifetimeParam})
	}
	for _, factDTO := range dto.Where {
		fact, err := factFromDTO(factDTO)
		if err != nil {
			return nil, err
		}
		function.Where = append(function.Where, fact)
	}
	for _, parameterDTO := range dto.Parameters {
		typ, err := typeFromDTO(parameterDTO.Type)
		if err != nil {
			return nil, err
		}
		function.Parameters = append(function.Parameters, ir.Parameter{
			Name: parameterDTO.Name,
			Type: typ,
		})
	}

	returnType, err := typeFromDTO(dto.Return)
	if err != nil {
		return nil, err
	}
	function.Return = returnType

	labels := orderedmap.New[ir.Label, *ir.LabeledNode](len(dto.Labels))
	for _, labeledDTO := range dto.Labels {
		label := ir.Label(labeledDTO.Label)
		if labels.Contains(label) {
			return nil, fmt.Errorf("label defined twice: %s", label)
		}
		nodeType, err := nodeTypeFromDTO(labeledDTO.Type)
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", label, err)
		}
		node, err := nodeFromDTO(labeledDTO.Node)
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", label, err)
		}
		labels.Set(label, &ir.LabeledNode{
			Type: nodeType,
			Node: node,
		})
	}
	function.Labels = labels

	return function, nil
}
