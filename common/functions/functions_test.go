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

package functions_test

import (
	"context"
	"testing"

	"github.com/exprcel/cel/common/functions"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

func TestOverloadGetUnaryWrapsContext(t *testing.T) {
	o := &functions.Overload{
		Operator: "neg",
		Unary:    func(v ref.Val) ref.Val { return v },
	}
	got := o.GetUnary()(context.Background(), types.Int(1))
	if got != types.Int(1) {
		t.Fatalf("GetUnary() round-trip = %v", got)
	}
}

func TestOverloadGetUnaryNilWhenUnset(t *testing.T) {
	o := &functions.Overload{Operator: "noop"}
	if o.GetUnary() != nil {
		t.Fatal("GetUnary() should be nil when Unary is unset")
	}
}

func TestOverloadOperandTraitPredicate(t *testing.T) {
	trait := functions.OperandTrait(func(v ref.Val) bool {
		_, ok := v.(types.Int)
		return ok
	})
	o := &functions.Overload{Operator: "f", OperandTrait: trait}
	if !o.GetOperandTrait()(types.Int(1)) {
		t.Error("OperandTrait predicate rejected a matching value")
	}
	if o.GetOperandTrait()(types.String("x")) {
		t.Error("OperandTrait predicate accepted a non-matching value")
	}
}

func TestContextOverloadPassesThroughContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	o := &functions.ContextOverload{
		Operator: "f",
		Binary: func(c context.Context, lhs, rhs ref.Val) ref.Val {
			if c.Value(key{}) != "v" {
				t.Error("context value did not propagate")
			}
			return lhs
		},
	}
	o.GetBinary()(ctx, types.Int(1), types.Int(2))
}
