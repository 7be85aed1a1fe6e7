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

package decls_test

import (
	"testing"

	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

func TestNewFunctionRequiresOverload(t *testing.T) {
	if _, err := decls.NewFunction("empty"); err == nil {
		t.Fatal("expected error for a function with no overloads")
	}
}

func TestOverloadBindingDispatchesByRuntimeType(t *testing.T) {
	fn, err := decls.NewFunction("add",
		decls.Overload("add_int_int", []*types.Type{types.IntType, types.IntType}, types.IntType,
			decls.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				return lhs.(types.Int) + rhs.(types.Int)
			})),
		decls.Overload("add_string_string", []*types.Type{types.StringType, types.StringType}, types.StringType,
			decls.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
				return lhs.(types.String) + rhs.(types.String)
			})),
	)
	if err != nil {
		t.Fatal(err)
	}
	bindings, err := fn.Bindings()
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, b := range bindings {
		if b.Operator == "add" && b.Function != nil {
			found = true
			got := b.Function(types.Int(1), types.Int(2))
			if got != types.Int(3) {
				t.Errorf("dispatch(1, 2) = %v, want 3", got)
			}
			got2 := b.Function(types.String("a"), types.String("b"))
			if got2 != types.String("ab") {
				t.Errorf("dispatch(a, b) = %v, want ab", got2)
			}
		}
	}
	if !found {
		t.Fatal("Bindings() did not produce a name-level dispatch entry for 2+ overloads")
	}
}

func TestAddOverloadRejectsSignatureCollision(t *testing.T) {
	fn, err := decls.NewFunction("f",
		decls.Overload("f_int", []*types.Type{types.IntType}, types.IntType,
			decls.UnaryBinding(func(v ref.Val) ref.Val { return v })))
	if err != nil {
		t.Fatal(err)
	}
	other, err := decls.NewFunction("f",
		decls.Overload("f_dyn", []*types.Type{types.DynType}, types.DynType,
			decls.UnaryBinding(func(v ref.Val) ref.Val { return v })))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fn.Merge(other); err == nil {
		t.Fatal("expected a signature collision error merging int and dyn unary overloads")
	}
}

func TestMaybeNoSuchOverloadPropagatesError(t *testing.T) {
	e := types.NewErr("boom")
	if got := decls.MaybeNoSuchOverload("f", e); got != e {
		t.Fatalf("MaybeNoSuchOverload() = %v, want the original error", got)
	}
}

func TestMaybeNoSuchOverloadMergesUnknowns(t *testing.T) {
	u1 := types.NewUnknown("a")
	u2 := types.NewUnknown("b")
	got := decls.MaybeNoSuchOverload("f", u1, u2)
	u, ok := got.(*types.Unknown)
	if !ok {
		t.Fatalf("MaybeNoSuchOverload() = %v, want *types.Unknown", got)
	}
	if len(u.Attributes) != 2 {
		t.Fatalf("merged unknown attributes = %v, want 2 entries", u.Attributes)
	}
}

func TestFunctionSubsetIncludeOverloads(t *testing.T) {
	fn, err := decls.NewFunction("f",
		decls.Overload("f_int", []*types.Type{types.IntType}, types.IntType, decls.UnaryBinding(func(v ref.Val) ref.Val { return v })),
		decls.Overload("f_string", []*types.Type{types.StringType}, types.StringType, decls.UnaryBinding(func(v ref.Val) ref.Val { return v })),
	)
	if err != nil {
		t.Fatal(err)
	}
	sub := fn.Subset(decls.IncludeOverloads("f_int"))
	if len(sub.OverloadDecls()) != 1 || sub.OverloadDecls()[0].ID() != "f_int" {
		t.Fatalf("Subset(IncludeOverloads) kept %v", sub.OverloadDecls())
	}
	if len(fn.OverloadDecls()) != 2 {
		t.Fatal("Subset() mutated the original function declaration")
	}
}

func TestFunctionSubsetExcludeOverloads(t *testing.T) {
	fn, err := decls.NewFunction("f",
		decls.Overload("f_int", []*types.Type{types.IntType}, types.IntType, decls.UnaryBinding(func(v ref.Val) ref.Val { return v })),
		decls.Overload("f_string", []*types.Type{types.StringType}, types.StringType, decls.UnaryBinding(func(v ref.Val) ref.Val { return v })),
	)
	if err != nil {
		t.Fatal(err)
	}
	sub := fn.Subset(decls.ExcludeOverloads("f_string"))
	if len(sub.OverloadDecls()) != 1 || sub.OverloadDecls()[0].ID() != "f_int" {
		t.Fatalf("Subset(ExcludeOverloads) kept %v", sub.OverloadDecls())
	}
}

func TestNewVariableAndDeclarationEquals(t *testing.T) {
	v1, err := decls.NewVariable("x", types.IntType)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := decls.NewVariable("x", types.IntType)
	if err != nil {
		t.Fatal(err)
	}
	if !v1.DeclarationEquals(v2) {
		t.Fatal("two variables with the same name and type should be declaration-equal")
	}
	v3, err := decls.NewVariable("x", types.StringType)
	if err != nil {
		t.Fatal(err)
	}
	if v1.DeclarationEquals(v3) {
		t.Fatal("variables with differing types should not be declaration-equal")
	}
}

func TestOverloadOperandTraitGatesDispatch(t *testing.T) {
	stringOnly := func(v ref.Val) bool {
		_, ok := v.(types.String)
		return ok
	}
	fn, err := decls.NewFunction("size",
		decls.Overload("size_string", []*types.Type{types.StringType}, types.IntType,
			decls.UnaryBinding(func(v ref.Val) ref.Val { return types.Int(len(v.(types.String))) }),
			decls.OverloadOperandTrait(stringOnly)),
	)
	if err != nil {
		t.Fatal(err)
	}
	bindings, err := fn.Bindings()
	if err != nil {
		t.Fatal(err)
	}
	got := bindings[0].Unary(types.String("abc"))
	if got != types.Int(3) {
		t.Fatalf("guarded unary op = %v, want 3", got)
	}
}
