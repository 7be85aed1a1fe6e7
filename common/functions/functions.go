// Copyright 2018 Google LLC
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

// Package functions defines the binding shapes a FunctionDecl's
// overloads are implemented with at evaluation time.
package functions

import (
	"context"

	"github.com/exprcel/cel/common/types/ref"
)

// Overloader is the common shape shared by Overload and ContextOverload,
// letting the dispatcher treat context-aware and context-free bindings
// uniformly.
type Overloader interface {
	GetOperator() string
	GetOperandTrait() OperandTrait
	GetUnary() ContextUnaryOp
	GetBinary() ContextBinaryOp
	GetFunction() ContextFunctionOp
	IsNonStrict() bool
}

// Overload defines a named overload binding with a context-free unary,
// binary, or variadic implementation. One of Unary, Binary, or Function
// must be set.
type Overload struct {
	// Operator is the overload id under which this binding is registered.
	Operator string

	// OperandTrait, if non-nil, must accept the first argument for the
	// overload to be invoked.
	OperandTrait OperandTrait

	Unary    UnaryOp
	Binary   BinaryOp
	Function FunctionOp

	// NonStrict allows the overload to receive *types.Err and
	// *types.Unknown arguments instead of having them short-circuit the
	// call (spec §4.2's operator strictness rules).
	NonStrict bool
}

// OperandTrait is a capability predicate checked against an overload's
// first runtime argument before dispatch, e.g. a check that the
// argument implements traits.Sizer. This module's capability traits
// (common/types/traits) are plain Go interfaces rather than an integer
// bitmask, so membership is a type assertion, not a flag check.
type OperandTrait func(ref.Val) bool

func (o *Overload) GetOperator() string          { return o.Operator }
func (o *Overload) GetOperandTrait() OperandTrait { return o.OperandTrait }

func (o *Overload) GetUnary() ContextUnaryOp {
	if o.Unary == nil {
		return nil
	}
	return func(_ context.Context, value ref.Val) ref.Val { return o.Unary(value) }
}

func (o *Overload) GetBinary() ContextBinaryOp {
	if o.Binary == nil {
		return nil
	}
	return func(_ context.Context, lhs, rhs ref.Val) ref.Val { return o.Binary(lhs, rhs) }
}

func (o *Overload) GetFunction() ContextFunctionOp {
	if o.Function == nil {
		return nil
	}
	return func(_ context.Context, values ...ref.Val) ref.Val { return o.Function(values...) }
}

func (o *Overload) IsNonStrict() bool { return o.NonStrict }

// ContextOverload is an Overload whose bindings receive the evaluation
// context.Context, letting a host-supplied function observe a
// cancellation or deadline set on the running Activation (spec §5's
// evaluation budget hook).
type ContextOverload struct {
	Operator     string
	OperandTrait OperandTrait
	Unary        ContextUnaryOp
	Binary       ContextBinaryOp
	Function     ContextFunctionOp
	NonStrict    bool
}

func (o *ContextOverload) GetOperator() string          { return o.Operator }
func (o *ContextOverload) GetOperandTrait() OperandTrait { return o.OperandTrait }
func (o *ContextOverload) GetUnary() ContextUnaryOp       { return o.Unary }
func (o *ContextOverload) GetBinary() ContextBinaryOp     { return o.Binary }
func (o *ContextOverload) GetFunction() ContextFunctionOp { return o.Function }
func (o *ContextOverload) IsNonStrict() bool              { return o.NonStrict }

// UnaryOp takes a single value and produces an output.
type UnaryOp func(value ref.Val) ref.Val

// ContextUnaryOp is a UnaryOp that observes the evaluation context.
type ContextUnaryOp func(ctx context.Context, value ref.Val) ref.Val

// BinaryOp takes two values and produces an output.
type BinaryOp func(lhs, rhs ref.Val) ref.Val

// ContextBinaryOp is a BinaryOp that observes the evaluation context.
type ContextBinaryOp func(ctx context.Context, lhs, rhs ref.Val) ref.Val

// FunctionOp accepts zero or more arguments and produces a result,
// covering the zero-arity and three-plus-arity overloads Unary/Binary
// cannot express.
type FunctionOp func(values ...ref.Val) ref.Val

// ContextFunctionOp is a FunctionOp that observes the evaluation context.
type ContextFunctionOp func(ctx context.Context, values ...ref.Val) ref.Val
