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

package stdlib

import (
	"testing"

	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/functions"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/operators"
)

func findFunction(t *testing.T, name string) *decls.FunctionDecl {
	t.Helper()
	for _, fn := range Functions() {
		if fn.Name() == name {
			return fn
		}
	}
	t.Fatalf("function %q not found in standard library", name)
	return nil
}

func findBinding(t *testing.T, name string) *functions.Overload {
	t.Helper()
	fn := findFunction(t, name)
	bindings, err := fn.Bindings()
	if err != nil {
		t.Fatalf("Bindings() failed for %q: %v", name, err)
	}
	for _, b := range bindings {
		if b.Operator == name {
			return b
		}
	}
	t.Fatalf("no name-level binding for %q", name)
	return nil
}

func TestAddDispatchesByRuntimeType(t *testing.T) {
	add := findBinding(t, operators.Add)
	got := add.Binary(types.Int(1), types.Int(2))
	if got != types.Int(3) {
		t.Fatalf("1 + 2 = %v, want 3", got)
	}
	got = add.Binary(types.String("a"), types.String("b"))
	if got != types.String("ab") {
		t.Fatalf(`"a" + "b" = %v, want "ab"`, got)
	}
}

func TestAddRejectsMismatchedOperands(t *testing.T) {
	add := findBinding(t, operators.Add)
	got := add.Binary(types.Int(1), types.String("b"))
	if !types.IsError(got) {
		t.Fatalf("1 + \"b\" = %v, want error", got)
	}
}

func TestLessEqualsOrdersAcrossNumericTypes(t *testing.T) {
	le := findBinding(t, operators.LessEquals)
	if le.Binary(types.Int(1), types.Double(1.5)) != types.True {
		t.Fatalf("expected 1 <= 1.5")
	}
	if le.Binary(types.Int(2), types.Double(1.5)) != types.False {
		t.Fatalf("expected 2 <= 1.5 to be false")
	}
}

func TestSizeDispatchesOnString(t *testing.T) {
	size := findBinding(t, overloadsSizeName)
	str := types.String("hello")
	if got := size.Unary(str); got != types.Int(5) {
		t.Fatalf("size(\"hello\") = %v, want 5", got)
	}
}

func TestStringContains(t *testing.T) {
	contains := findBinding(t, overloadsContainsName)
	if got := contains.Binary(types.String("hello world"), types.String("wor")); got != types.True {
		t.Fatalf("contains = %v, want true", got)
	}
}

func TestLogicalNotNegatesBool(t *testing.T) {
	not := findBinding(t, operators.LogicalNot)
	if got := not.Unary(types.True); got != types.False {
		t.Fatalf("!true = %v, want false", got)
	}
}

func TestTypesIncludesWellKnownPrimitives(t *testing.T) {
	names := map[string]bool{}
	for _, v := range Types() {
		names[v.Name()] = true
	}
	for _, want := range []string{"int", "string", "bool", "list", "map"} {
		if !names[want] {
			t.Errorf("stdlib type variables missing %q", want)
		}
	}
}

// overloadsSizeName/overloadsContainsName avoid importing the overloads
// package just for these two string literals in the test.
const (
	overloadsSizeName     = "size"
	overloadsContainsName = "contains"
)
