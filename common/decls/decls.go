// Copyright 2023 Google LLC
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

// Package decls holds the declaration structs an Environment is built
// from: variables and functions with their overload sets, independent
// of how those declarations were authored (Go options, a serialized
// config, or a library extension).
package decls

import (
	"fmt"
	"strings"

	"github.com/exprcel/cel/common/functions"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// NewFunction builds a function declaration by applying opts in order.
// A function must declare at least one overload.
func NewFunction(name string, opts ...FunctionOpt) (*FunctionDecl, error) {
	fn := &FunctionDecl{
		name:      name,
		overloads: map[string]*OverloadDecl{},
	}
	var err error
	for _, opt := range opts {
		fn, err = opt(fn)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
	}
	if len(fn.overloads) == 0 {
		return nil, fmt.Errorf("function %s must have at least one overload", name)
	}
	return fn, nil
}

// FunctionDecl names a function and its overload set, optionally with a
// singleton implementation shared by every overload.
type FunctionDecl struct {
	name      string
	overloads map[string]*OverloadDecl

	singleton *functions.Overload

	disableTypeGuards   bool
	declarationDisabled bool
}

// Name returns the function's declared name.
func (f *FunctionDecl) Name() string { return f.name }

// OverloadDecls returns the full overload set, in no particular order.
func (f *FunctionDecl) OverloadDecls() []*OverloadDecl {
	out := make([]*OverloadDecl, 0, len(f.overloads))
	for _, o := range f.overloads {
		out = append(out, o)
	}
	return out
}

// IsDeclarationDisabled reports that this function's bindings should be
// registered with the dispatcher but the name withheld from the
// checker's symbol table (spec §4's `exclude_functions` library
// subsetting).
func (f *FunctionDecl) IsDeclarationDisabled() bool { return f.declarationDisabled }

// Merge combines two declarations of the same function name, failing if
// their overload sets collide or both specify a singleton binding.
func (f *FunctionDecl) Merge(other *FunctionDecl) (*FunctionDecl, error) {
	if f == other {
		return f, nil
	}
	if f.name != other.name {
		return nil, fmt.Errorf("cannot merge unrelated functions: %s and %s", f.name, other.name)
	}
	merged := &FunctionDecl{
		name:      f.name,
		overloads: make(map[string]*OverloadDecl, len(f.overloads)),
		singleton: f.singleton,
	}
	for id, o := range f.overloads {
		merged.overloads[id] = o
	}
	for _, o := range other.overloads {
		if err := merged.AddOverload(o); err != nil {
			return nil, fmt.Errorf("function declaration merge failed: %w", err)
		}
	}
	if other.singleton != nil {
		if merged.singleton != nil {
			return nil, fmt.Errorf("function already has a singleton binding: %s", f.name)
		}
		merged.singleton = other.singleton
	}
	return merged, nil
}

// AddOverload registers overload, failing if its signature collides
// with an existing distinct overload, and allowing redefinition only
// when the signature of a same-id overload is unchanged.
func (f *FunctionDecl) AddOverload(overload *OverloadDecl) error {
	for id, o := range f.overloads {
		if o.id != overload.id && o.signatureOverlaps(overload) {
			return fmt.Errorf("overload signature collision in function %s: %s collides with %s", f.name, o.id, overload.id)
		}
		if o.id == overload.id {
			if o.signatureEquals(overload) && o.nonStrict == overload.nonStrict {
				f.overloads[id] = overload
				return nil
			}
			return fmt.Errorf("overload redefinition in function %s: %s has multiple definitions", f.name, o.id)
		}
	}
	f.overloads[overload.id] = overload
	return nil
}

// Bindings produces the set of runtime function bindings for this
// declaration: one per overload with a binding, plus a name-level
// dynamic-dispatch entry when more than one overload is bound (spec
// §4.2's overload resolution falling back to runtime type matching for
// unchecked expressions).
func (f *FunctionDecl) Bindings() ([]*functions.Overload, error) {
	var overloads []*functions.Overload
	nonStrict := false
	for _, o := range f.overloads {
		if !o.hasBinding() {
			continue
		}
		overloads = append(overloads, &functions.Overload{
			Operator:     o.id,
			Unary:        o.guardedUnaryOp(f.name, f.disableTypeGuards),
			Binary:       o.guardedBinaryOp(f.name, f.disableTypeGuards),
			Function:     o.guardedFunctionOp(f.name, f.disableTypeGuards),
			OperandTrait: o.operandTrait,
			NonStrict:    o.nonStrict,
		})
		nonStrict = nonStrict || o.nonStrict
	}
	if f.singleton != nil {
		if len(overloads) != 0 {
			return nil, fmt.Errorf("singleton function incompatible with specialized overloads: %s", f.name)
		}
		return []*functions.Overload{{
			Operator:     f.name,
			Unary:        f.singleton.Unary,
			Binary:       f.singleton.Binary,
			Function:     f.singleton.Function,
			OperandTrait: f.singleton.OperandTrait,
		}}, nil
	}
	if len(overloads) == 0 {
		return overloads, nil
	}
	if len(overloads) == 1 {
		if overloads[0].Operator == f.name {
			return overloads, nil
		}
		return append(overloads, &functions.Overload{
			Operator:     f.name,
			Unary:        overloads[0].Unary,
			Binary:       overloads[0].Binary,
			Function:     overloads[0].Function,
			NonStrict:    overloads[0].NonStrict,
			OperandTrait: overloads[0].OperandTrait,
		}), nil
	}
	dispatch := func(args ...ref.Val) ref.Val {
		for _, o := range f.overloads {
			switch len(args) {
			case 1:
				if o.unaryOp != nil && o.matchesRuntimeSignature(false, args...) {
					return o.unaryOp(args[0])
				}
			case 2:
				if o.binaryOp != nil && o.matchesRuntimeSignature(false, args...) {
					return o.binaryOp(args[0], args[1])
				}
			}
			if o.functionOp != nil && o.matchesRuntimeSignature(false, args...) {
				return o.functionOp(args...)
			}
		}
		return MaybeNoSuchOverload(f.name, args...)
	}
	return append(overloads, &functions.Overload{
		Operator:  f.name,
		Function:  dispatch,
		NonStrict: nonStrict,
	}), nil
}

// MaybeNoSuchOverload propagates the first error argument, collapses
// any unknown arguments into a single Unknown, or else reports that no
// overload matched funcName's call signature.
func MaybeNoSuchOverload(funcName string, args ...ref.Val) ref.Val {
	argTypes := make([]string, len(args))
	var unk *types.Unknown
	for i, arg := range args {
		if types.IsError(arg) {
			return arg
		}
		if u, ok := arg.(*types.Unknown); ok {
			if unk == nil {
				unk = u
			} else {
				unk = types.MergeUnknowns(unk, u)
			}
		}
		argTypes[i] = arg.Type().TypeName()
	}
	if unk != nil {
		return unk
	}
	return types.NewErr("no matching overload for %s(%s)", funcName, strings.Join(argTypes, ", "))
}

// FunctionOpt configures a FunctionDecl during NewFunction.
type FunctionOpt func(*FunctionDecl) (*FunctionDecl, error)

// DisableTypeGuards turns off the generated runtime type checks guarding
// direct overload invocation; error and argument-count checks remain.
func DisableTypeGuards(value bool) FunctionOpt {
	return func(fn *FunctionDecl) (*FunctionDecl, error) {
		fn.disableTypeGuards = value
		return fn, nil
	}
}

// DisableDeclaration withholds the function name from the checker's
// symbol table while still registering its runtime binding.
func DisableDeclaration(value bool) FunctionOpt {
	return func(fn *FunctionDecl) (*FunctionDecl, error) {
		fn.declarationDisabled = value
		return fn, nil
	}
}

// SingletonUnaryBinding installs a single unary binding shared by every
// overload of the function.
func SingletonUnaryBinding(fn functions.UnaryOp) FunctionOpt {
	return func(f *FunctionDecl) (*FunctionDecl, error) {
		if f.singleton != nil {
			return nil, fmt.Errorf("function already has a singleton binding: %s", f.name)
		}
		f.singleton = &functions.Overload{Operator: f.name, Unary: fn}
		return f, nil
	}
}

// SingletonBinaryBinding installs a single binary binding shared by
// every overload of the function.
func SingletonBinaryBinding(fn functions.BinaryOp) FunctionOpt {
	return func(f *FunctionDecl) (*FunctionDecl, error) {
		if f.singleton != nil {
			return nil, fmt.Errorf("function already has a singleton binding: %s", f.name)
		}
		f.singleton = &functions.Overload{Operator: f.name, Binary: fn}
		return f, nil
	}
}

// SingletonFunctionBinding installs a single variadic binding shared by
// every overload of the function.
func SingletonFunctionBinding(fn functions.FunctionOp) FunctionOpt {
	return func(f *FunctionDecl) (*FunctionDecl, error) {
		if f.singleton != nil {
			return nil, fmt.Errorf("function already has a singleton binding: %s", f.name)
		}
		f.singleton = &functions.Overload{Operator: f.name, Function: fn}
		return f, nil
	}
}

// Overload declares a new global (non-member) function overload.
func Overload(overloadID string, args []*types.Type, resultType *types.Type, opts ...OverloadOpt) FunctionOpt {
	return newOverload(overloadID, false, args, resultType, opts...)
}

// MemberOverload declares a new receiver-style overload whose first
// argument type is the receiver/operand type.
func MemberOverload(overloadID string, args []*types.Type, resultType *types.Type, opts ...OverloadOpt) FunctionOpt {
	return newOverload(overloadID, true, args, resultType, opts...)
}

func newOverload(overloadID string, isMember bool, args []*types.Type, resultType *types.Type, opts ...OverloadOpt) FunctionOpt {
	return func(f *FunctionDecl) (*FunctionDecl, error) {
		o := &OverloadDecl{id: overloadID, argTypes: args, resultType: resultType, isMemberFunction: isMember}
		var err error
		for _, opt := range opts {
			o, err = opt(o)
			if err != nil {
				return nil, err
			}
		}
		if err := f.AddOverload(o); err != nil {
			return nil, err
		}
		return f, nil
	}
}

// OverloadDecl is a single overload id, its argument/result signature,
// and an optional binding. The id format follows spec §4's convention:
// `<targetType>_<func>_<argType1>_<argType2>…`.
type OverloadDecl struct {
	id         string
	argTypes   []*types.Type
	resultType *types.Type

	isMemberFunction bool
	nonStrict        bool
	operandTrait     functions.OperandTrait

	unaryOp    functions.UnaryOp
	binaryOp   functions.BinaryOp
	functionOp functions.FunctionOp
}

// ID returns the overload's unique identifier.
func (o *OverloadDecl) ID() string { return o.id }

// ArgTypes returns the overload's declared argument types. For a member
// overload, ArgTypes()[0] is the receiver type.
func (o *OverloadDecl) ArgTypes() []*types.Type { return o.argTypes }

// ResultType returns the overload's declared result type.
func (o *OverloadDecl) ResultType() *types.Type { return o.resultType }

// IsMemberFunction reports whether this overload is invoked as `x.f(...)`.
func (o *OverloadDecl) IsMemberFunction() bool { return o.isMemberFunction }

func (o *OverloadDecl) signatureEquals(other *OverloadDecl) bool {
	if o.id != other.id || o.isMemberFunction != other.isMemberFunction || len(o.argTypes) != len(other.argTypes) {
		return false
	}
	for i, at := range o.argTypes {
		if !typesEqual(at, other.argTypes[i]) {
			return false
		}
	}
	return typesEqual(o.resultType, other.resultType)
}

func typesEqual(a, b *types.Type) bool {
	return types.IsExactMatch(a, b)
}

// signatureOverlaps reports whether two distinctly-id'd overloads could
// both match the same runtime call (e.g. list(dyn) and list(string)),
// which the checker must reject as ambiguous.
func (o *OverloadDecl) signatureOverlaps(other *OverloadDecl) bool {
	if o.isMemberFunction != other.isMemberFunction || len(o.argTypes) != len(other.argTypes) {
		return false
	}
	for i, at := range o.argTypes {
		oat := other.argTypes[i]
		if !(types.Assignable(at, oat, nil) || types.Assignable(oat, at, nil)) {
			return false
		}
	}
	return true
}

func (o *OverloadDecl) hasBinding() bool {
	return o.unaryOp != nil || o.binaryOp != nil || o.functionOp != nil
}

func (o *OverloadDecl) guardedUnaryOp(funcName string, disableTypeGuards bool) functions.UnaryOp {
	if o.unaryOp == nil {
		return nil
	}
	return func(arg ref.Val) ref.Val {
		if !o.matchesRuntimeUnarySignature(disableTypeGuards, arg) {
			return MaybeNoSuchOverload(funcName, arg)
		}
		return o.unaryOp(arg)
	}
}

func (o *OverloadDecl) guardedBinaryOp(funcName string, disableTypeGuards bool) functions.BinaryOp {
	if o.binaryOp == nil {
		return nil
	}
	return func(lhs, rhs ref.Val) ref.Val {
		if !o.matchesRuntimeBinarySignature(disableTypeGuards, lhs, rhs) {
			return MaybeNoSuchOverload(funcName, lhs, rhs)
		}
		return o.binaryOp(lhs, rhs)
	}
}

func (o *OverloadDecl) guardedFunctionOp(funcName string, disableTypeGuards bool) functions.FunctionOp {
	if o.functionOp == nil {
		return nil
	}
	return func(args ...ref.Val) ref.Val {
		if !o.matchesRuntimeSignature(disableTypeGuards, args...) {
			return MaybeNoSuchOverload(funcName, args...)
		}
		return o.functionOp(args...)
	}
}

func (o *OverloadDecl) matchesRuntimeUnarySignature(disableTypeGuards bool, arg ref.Val) bool {
	return matchRuntimeArgType(o.nonStrict, disableTypeGuards, o.argTypes[0], arg) &&
		matchOperandTrait(o.operandTrait, arg)
}

func (o *OverloadDecl) matchesRuntimeBinarySignature(disableTypeGuards bool, arg1, arg2 ref.Val) bool {
	return matchRuntimeArgType(o.nonStrict, disableTypeGuards, o.argTypes[0], arg1) &&
		matchRuntimeArgType(o.nonStrict, disableTypeGuards, o.argTypes[1], arg2) &&
		matchOperandTrait(o.operandTrait, arg1)
}

func (o *OverloadDecl) matchesRuntimeSignature(disableTypeGuards bool, args ...ref.Val) bool {
	if len(args) != len(o.argTypes) {
		return false
	}
	if len(args) == 0 {
		return true
	}
	for i, arg := range args {
		if !matchRuntimeArgType(o.nonStrict, disableTypeGuards, o.argTypes[i], arg) {
			return false
		}
	}
	return matchOperandTrait(o.operandTrait, args[0])
}

func matchRuntimeArgType(nonStrict, disableTypeGuards bool, argType *types.Type, arg ref.Val) bool {
	isErrOrUnknown := types.IsError(arg) || types.IsUnknown(arg)
	if nonStrict && (disableTypeGuards || isErrOrUnknown) {
		return true
	}
	if isErrOrUnknown {
		return false
	}
	return disableTypeGuards || types.Assignable(arg.Type().(*types.Type), argType, nil)
}

func matchOperandTrait(trait functions.OperandTrait, arg ref.Val) bool {
	return trait == nil || trait(arg) || types.IsError(arg) || types.IsUnknown(arg)
}

// OverloadOpt configures an OverloadDecl during Overload/MemberOverload.
type OverloadOpt func(*OverloadDecl) (*OverloadDecl, error)

// UnaryBinding attaches a unary runtime implementation to a one-argument
// overload.
func UnaryBinding(fn functions.UnaryOp) OverloadOpt {
	return func(o *OverloadDecl) (*OverloadDecl, error) {
		if o.hasBinding() {
			return nil, fmt.Errorf("overload already has a binding: %s", o.id)
		}
		if len(o.argTypes) != 1 {
			return nil, fmt.Errorf("unary binding on non-unary overload: %s", o.id)
		}
		o.unaryOp = fn
		return o, nil
	}
}

// BinaryBinding attaches a binary runtime implementation to a
// two-argument overload.
func BinaryBinding(fn functions.BinaryOp) OverloadOpt {
	return func(o *OverloadDecl) (*OverloadDecl, error) {
		if o.hasBinding() {
			return nil, fmt.Errorf("overload already has a binding: %s", o.id)
		}
		if len(o.argTypes) != 2 {
			return nil, fmt.Errorf("binary binding on non-binary overload: %s", o.id)
		}
		o.binaryOp = fn
		return o, nil
	}
}

// FunctionBinding attaches a variadic runtime implementation, valid for
// any arity.
func FunctionBinding(fn functions.FunctionOp) OverloadOpt {
	return func(o *OverloadDecl) (*OverloadDecl, error) {
		if o.hasBinding() {
			return nil, fmt.Errorf("overload already has a binding: %s", o.id)
		}
		o.functionOp = fn
		return o, nil
	}
}

// OverloadIsNonStrict lets the overload be called with *types.Err and
// *types.Unknown argument values instead of those short-circuiting the
// call before it runs.
func OverloadIsNonStrict() OverloadOpt {
	return func(o *OverloadDecl) (*OverloadDecl, error) {
		o.nonStrict = true
		return o, nil
	}
}

// OverloadOperandTrait requires the first argument to satisfy trait
// (typically a type assertion against a common/types/traits interface)
// for the overload to be invoked.
func OverloadOperandTrait(trait functions.OperandTrait) OverloadOpt {
	return func(o *OverloadDecl) (*OverloadDecl, error) {
		o.operandTrait = trait
		return o, nil
	}
}
