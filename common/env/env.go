// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package env provides a YAML-serializable representation of a CEL
// environment: its container, standard library subsetting, extension
// set, and variable/function declarations (spec §4). It is the config
// surface a host loads from disk; decls.VariableDecl/decls.FunctionDecl
// remain the in-memory representation evaluation actually runs against.
package env

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// NewConfig returns an empty, serializable environment configuration.
func NewConfig() *Config {
	return &Config{
		Imports:    []*Import{},
		Extensions: []*Extension{},
		Variables:  []*Variable{},
		Functions:  []*Function{},
	}
}

// Config is the serializable form of a CEL environment: everything
// needed to reconstruct its container, declarations, and library
// subsetting from a YAML document.
type Config struct {
	Name            string           `yaml:"name,omitempty"`
	Description     string           `yaml:"description,omitempty"`
	Container       string           `yaml:"container,omitempty"`
	Imports         []*Import        `yaml:"imports,omitempty"`
	StdLib          *LibrarySubset   `yaml:"stdlib,omitempty"`
	Extensions      []*Extension     `yaml:"extensions,omitempty"`
	ContextVariable *ContextVariable `yaml:"context_variable,omitempty"`
	Variables       []*Variable      `yaml:"variables,omitempty"`
	Functions       []*Function      `yaml:"functions,omitempty"`
}

// AddVariableDecls serializes vars and appends them to the config.
func (c *Config) AddVariableDecls(vars ...*decls.VariableDecl) *Config {
	conv := make([]*Variable, 0, len(vars))
	for _, v := range vars {
		if v == nil {
			continue
		}
		conv = append(conv, NewVariable(v.Name(), serializeTypeDesc(v.Type())))
	}
	return c.AddVariables(conv...)
}

// AddVariables appends already-serialized variables to the config.
func (c *Config) AddVariables(vars ...*Variable) *Config {
	c.Variables = append(c.Variables, vars...)
	return c
}

// AddFunctionDecls serializes funcs and appends them to the config.
func (c *Config) AddFunctionDecls(funcs ...*decls.FunctionDecl) *Config {
	conv := make([]*Function, 0, len(funcs))
	for _, fn := range funcs {
		if fn == nil {
			continue
		}
		overloads := make([]*Overload, 0, len(fn.OverloadDecls()))
		for _, o := range fn.OverloadDecls() {
			args := make([]*TypeDesc, 0, len(o.ArgTypes()))
			for _, a := range o.ArgTypes() {
				args = append(args, serializeTypeDesc(a))
			}
			ret := serializeTypeDesc(o.ResultType())
			if o.IsMemberFunction() {
				overloads = append(overloads, NewMemberOverload(o.ID(), args[0], args[1:], ret))
			} else {
				overloads = append(overloads, NewOverload(o.ID(), args, ret))
			}
		}
		conv = append(conv, NewFunction(fn.Name(), overloads))
	}
	return c.AddFunctions(conv...)
}

// AddFunctions appends already-serialized functions to the config.
func (c *Config) AddFunctions(funcs ...*Function) *Config {
	c.Functions = append(c.Functions, funcs...)
	return c
}

// NewImport returns an import naming the qualified type to abbreviate.
func NewImport(name string) *Import {
	return &Import{Name: name}
}

// Import names a qualified type abbreviated to its simple name within
// the environment's expressions.
type Import struct {
	Name string `yaml:"name"`
}

// NewVariable returns a serializable variable declaration.
func NewVariable(name string, t *TypeDesc) *Variable {
	return &Variable{Name: name, TypeDesc: t}
}

// Variable is the serializable form of a top-level variable binding.
type Variable struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	*TypeDesc `yaml:",inline"`
}

// AsCELVariable resolves the variable's type against tp and returns the
// corresponding decls.VariableDecl.
func (vd *Variable) AsCELVariable(tp ref.TypeProvider) (*decls.VariableDecl, error) {
	if vd == nil {
		return nil, errors.New("nil Variable cannot be converted to a VariableDecl")
	}
	if vd.Name == "" {
		return nil, errors.New("invalid variable, must declare a name")
	}
	if vd.TypeDesc == nil {
		return nil, fmt.Errorf("invalid variable '%s', no type specified", vd.Name)
	}
	t, err := vd.TypeDesc.AsCELType(tp)
	if err != nil {
		return nil, fmt.Errorf("invalid variable type for '%s': %w", vd.Name, err)
	}
	return decls.NewVariable(vd.Name, t)
}

// NewContextVariable names a struct type whose fields are promoted to
// top-level identifiers in the environment, rather than requiring a
// single variable to hold the whole message.
func NewContextVariable(typeName string) *ContextVariable {
	return &ContextVariable{TypeName: typeName}
}

// ContextVariable is the serializable form of a context-variable
// declaration: TypeName must resolve via the type provider to a struct.
type ContextVariable struct {
	TypeName string `yaml:"type_name"`
}

// NewFunction returns a serializable function with the given overloads.
func NewFunction(name string, overloads []*Overload) *Function {
	return &Function{Name: name, Overloads: overloads}
}

// Function is the serializable form of a function and its overload set.
type Function struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Overloads   []*Overload `yaml:"overloads,omitempty"`
}

// AsCELFunction resolves every overload's signature against tp and
// returns the corresponding decls.FunctionDecl.
func (fn *Function) AsCELFunction(tp ref.TypeProvider) (*decls.FunctionDecl, error) {
	if fn == nil {
		return nil, errors.New("nil Function cannot be converted to a FunctionDecl")
	}
	if fn.Name == "" {
		return nil, errors.New("invalid function, must declare a name")
	}
	if len(fn.Overloads) == 0 {
		return nil, fmt.Errorf("invalid function %s, must declare an overload", fn.Name)
	}
	opts := make([]decls.FunctionOpt, len(fn.Overloads))
	var err error
	for i, o := range fn.Overloads {
		opts[i], err = o.AsFunctionOption(tp)
		if err != nil {
			return nil, err
		}
	}
	return decls.NewFunction(fn.Name, opts...)
}

// NewOverload returns a serializable global (non-member) overload.
func NewOverload(id string, args []*TypeDesc, ret *TypeDesc) *Overload {
	return &Overload{ID: id, Args: args, Return: ret}
}

// NewMemberOverload returns a serializable receiver-style overload.
func NewMemberOverload(id string, target *TypeDesc, args []*TypeDesc, ret *TypeDesc) *Overload {
	return &Overload{ID: id, Target: target, Args: args, Return: ret}
}

// Overload is the serializable form of a single function overload.
type Overload struct {
	ID          string      `yaml:"id"`
	Description string      `yaml:"description,omitempty"`
	Target      *TypeDesc   `yaml:"target,omitempty"`
	Args        []*TypeDesc `yaml:"args,omitempty"`
	Return      *TypeDesc   `yaml:"return,omitempty"`
}

// AsFunctionOption resolves the overload's signature against tp and
// returns the decls.FunctionOpt that registers it.
func (od *Overload) AsFunctionOption(tp ref.TypeProvider) (decls.FunctionOpt, error) {
	if od == nil {
		return nil, errors.New("nil Overload cannot be converted to a FunctionOpt")
	}
	args := make([]*types.Type, len(od.Args))
	var err error
	for i, a := range od.Args {
		args[i], err = a.AsCELType(tp)
		if err != nil {
			return nil, err
		}
	}
	if od.Return == nil {
		return nil, fmt.Errorf("missing return type on overload: %v", od.ID)
	}
	result, err := od.Return.AsCELType(tp)
	if err != nil {
		return nil, err
	}
	if od.Target != nil {
		target, err := od.Target.AsCELType(tp)
		if err != nil {
			return nil, err
		}
		args = append([]*types.Type{target}, args...)
		return decls.MemberOverload(od.ID, args, result), nil
	}
	return decls.Overload(od.ID, args, result), nil
}

// NewExtension names a versioned extension library.
func NewExtension(name string, version uint32) *Extension {
	versionString := "latest"
	if version < math.MaxUint32 {
		versionString = strconv.FormatUint(uint64(version), 10)
	}
	return &Extension{Name: name, Version: versionString}
}

// Extension is the serializable form of an extension library reference.
type Extension struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// GetVersion parses the extension's version string, treating "latest"
// as math.MaxUint32 and an empty string as version 0.
func (e *Extension) GetVersion() (uint32, error) {
	if e == nil {
		return 0, errors.New("nil Extension cannot produce a version")
	}
	if e.Version == "latest" {
		return math.MaxUint32, nil
	}
	if e.Version == "" {
		return 0, nil
	}
	ver, err := strconv.ParseUint(e.Version, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("error parsing uint version: %w", err)
	}
	return uint32(ver), nil
}

// NewLibrarySubset returns a subset config that permits everything.
func NewLibrarySubset() *LibrarySubset {
	return &LibrarySubset{
		IncludeMacros:    []string{},
		ExcludeMacros:    []string{},
		IncludeFunctions: []*Function{},
		ExcludeFunctions: []*Function{},
	}
}

// LibrarySubset narrows a subsettable library's macros and functions,
// backing spec §4's stdlib configuration (disabled/disable_macros,
// include/exclude macros and functions).
type LibrarySubset struct {
	Disabled bool `yaml:"disabled,omitempty"`

	DisableMacros bool `yaml:"disable_macros,omitempty"`

	IncludeMacros []string `yaml:"include_macros,omitempty"`
	ExcludeMacros []string `yaml:"exclude_macros,omitempty"`

	// Overloads named within IncludeFunctions/ExcludeFunctions entries
	// need only specify their ID; the rest of the Function/Overload
	// fields are ignored for subsetting purposes.
	IncludeFunctions []*Function `yaml:"include_functions,omitempty"`
	ExcludeFunctions []*Function `yaml:"exclude_functions,omitempty"`
}

// SubsetFunction returns the function declaration narrowed to the
// permitted overload set, or (nil, false) if fn is excluded entirely.
//
// A nil receiver permits everything, matching an environment with no
// stdlib subsetting configured. If IncludeFunctions is non-empty it
// takes precedence over ExcludeFunctions, per spec §4.
func (lib *LibrarySubset) SubsetFunction(fn *decls.FunctionDecl) (*decls.FunctionDecl, bool) {
	if lib == nil {
		return fn, true
	}
	if lib.Disabled {
		return nil, false
	}
	if len(lib.IncludeFunctions) != 0 {
		for _, include := range lib.IncludeFunctions {
			if include.Name != fn.Name() {
				continue
			}
			if len(include.Overloads) == 0 {
				return fn, true
			}
			return fn.Subset(decls.IncludeOverloads(overloadIDs(include.Overloads)...)), true
		}
		return nil, false
	}
	if len(lib.ExcludeFunctions) != 0 {
		for _, exclude := range lib.ExcludeFunctions {
			if exclude.Name != fn.Name() {
				continue
			}
			if len(exclude.Overloads) == 0 {
				return nil, false
			}
			return fn.Subset(decls.ExcludeOverloads(overloadIDs(exclude.Overloads)...)), true
		}
		return fn, true
	}
	return fn, true
}

func overloadIDs(overloads []*Overload) []string {
	ids := make([]string, len(overloads))
	for i, o := range overloads {
		ids[i] = o.ID
	}
	return ids
}

// SubsetMacro reports whether macroFunction should be included, per the
// same disabled/include/exclude precedence as SubsetFunction.
func (lib *LibrarySubset) SubsetMacro(macroFunction string) bool {
	if lib == nil {
		return true
	}
	if lib.Disabled || lib.DisableMacros {
		return false
	}
	if len(lib.IncludeMacros) != 0 {
		for _, name := range lib.IncludeMacros {
			if name == macroFunction {
				return true
			}
		}
		return false
	}
	if len(lib.ExcludeMacros) != 0 {
		for _, name := range lib.ExcludeMacros {
			if name == macroFunction {
				return false
			}
		}
		return true
	}
	return true
}

// NewTypeDesc describes a simple or parameterized type by name.
func NewTypeDesc(typeName string, params ...*TypeDesc) *TypeDesc {
	return &TypeDesc{TypeName: typeName, Params: params}
}

// NewTypeParam describes an unbound type parameter.
func NewTypeParam(paramName string) *TypeDesc {
	return &TypeDesc{TypeName: paramName, IsTypeParam: true}
}

// TypeDesc is the serializable form of a *types.Type value.
type TypeDesc struct {
	TypeName    string      `yaml:"type_name"`
	Params      []*TypeDesc `yaml:"params,omitempty"`
	IsTypeParam bool        `yaml:"is_type_param,omitempty"`
}

func (td *TypeDesc) String() string {
	if len(td.Params) == 0 {
		return td.TypeName
	}
	ps := make([]string, len(td.Params))
	for i, p := range td.Params {
		ps[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", td.TypeName, strings.Join(ps, ","))
}

// primitiveTypeDescs resolves the built-in type names that AsCELType's
// default case would otherwise have to ask the type provider about.
var primitiveTypeDescs = map[string]*types.Type{
	"bool":                      types.BoolType,
	"bytes":                     types.BytesType,
	"double":                    types.DoubleType,
	"int":                       types.IntType,
	"string":                    types.StringType,
	"uint":                      types.UintType,
	"null_type":                 types.NullType,
	"google.protobuf.Duration":  types.DurationType,
	"google.protobuf.Timestamp": types.TimestampType,
	"any":                       types.AnyType,
	"error":                     types.ErrorType,
	"type":                      types.TypeTypeMeta,
}

// AsCELType resolves the description to a *types.Type, consulting tp
// for struct types and treating any other unrecognized name as either a
// type parameter or an extension library's opaque parameterized type.
func (td *TypeDesc) AsCELType(tp ref.TypeProvider) (*types.Type, error) {
	if td == nil {
		return nil, errors.New("nil TypeDesc cannot be converted to a Type instance")
	}
	if td.TypeName == "" {
		return nil, errors.New("invalid type description, declare a type name")
	}
	switch td.TypeName {
	case "dyn":
		return types.DynType, nil
	case "map":
		if len(td.Params) != 2 {
			return nil, fmt.Errorf("map type has unexpected param count: %d", len(td.Params))
		}
		kt, err := td.Params[0].AsCELType(tp)
		if err != nil {
			return nil, err
		}
		vt, err := td.Params[1].AsCELType(tp)
		if err != nil {
			return nil, err
		}
		return types.NewMapType(kt, vt), nil
	case "list":
		if len(td.Params) != 1 {
			return nil, fmt.Errorf("list type has unexpected param count: %d", len(td.Params))
		}
		et, err := td.Params[0].AsCELType(tp)
		if err != nil {
			return nil, err
		}
		return types.NewListType(et), nil
	case "optional_type":
		if len(td.Params) != 1 {
			return nil, fmt.Errorf("optional_type has unexpected param count: %d", len(td.Params))
		}
		et, err := td.Params[0].AsCELType(tp)
		if err != nil {
			return nil, err
		}
		return types.NewOptionalType(et), nil
	}
	if td.IsTypeParam {
		return types.NewTypeParamType(td.TypeName), nil
	}
	if t, found := primitiveTypeDescs[td.TypeName]; found && len(td.Params) == 0 {
		return t, nil
	}
	if tp != nil {
		if msgType, found := tp.FindStructType(td.TypeName); found {
			if t, ok := msgType.(*types.Type); ok {
				return t, nil
			}
		}
	}
	params := make([]*types.Type, len(td.Params))
	var err error
	for i, p := range td.Params {
		params[i], err = p.AsCELType(tp)
		if err != nil {
			return nil, err
		}
	}
	return types.NewOpaqueType(td.TypeName, params...), nil
}

// serializeTypeDesc renders t back to its serializable form. Unlike a
// protobuf-backed implementation this module carries no well-known
// wrapper-type table: primitive kinds round-trip through their plain
// CEL type name (see DESIGN.md).
func serializeTypeDesc(t *types.Type) *TypeDesc {
	if t.Kind() == types.TypeParamKind {
		return NewTypeParam(t.TypeName())
	}
	var params []*TypeDesc
	for _, p := range t.Parameters() {
		params = append(params, serializeTypeDesc(p))
	}
	return NewTypeDesc(t.TypeName(), params...)
}
