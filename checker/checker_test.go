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

package checker

import (
	"strings"
	"testing"

	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/stdlib"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

var fac = ast.NewExprFactory()

func newTestAST(e ast.Expr) *ast.AST {
	return ast.NewAST(e, ast.NewSourceInfo(""))
}

func newTestEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()
	cont, err := containers.NewContainer()
	if err != nil {
		t.Fatalf("containers.NewContainer() failed: %v", err)
	}
	reg := types.NewRegistry()
	env, err := NewEnv(cont, reg, opts...)
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	if err := env.AddFunctions(stdlib.Functions()...); err != nil {
		t.Fatalf("AddFunctions() failed: %v", err)
	}
	if err := env.AddIdents(stdlib.Types()...); err != nil {
		t.Fatalf("AddIdents() failed: %v", err)
	}
	return env
}

func mustCheck(t *testing.T, e ast.Expr, env *Env) (*ast.AST, *common.Errors) {
	t.Helper()
	parsed := newTestAST(e)
	return Check(parsed, common.NewTextSource("<input>", ""), env)
}

func TestCheckLiterals(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		lit  ref.Val
		want *types.Type
	}{
		{types.String("A"), types.StringType},
		{types.Int(12), types.IntType},
		{types.Uint(12), types.UintType},
		{types.Bool(true), types.BoolType},
		{types.Double(12.23), types.DoubleType},
		{types.NullValue, types.NullType},
	}
	for _, tc := range tests {
		e := fac.NewLiteral(1, tc.lit)
		checked, errs := mustCheck(t, e, env)
		if !errs.Empty() {
			t.Fatalf("Check(%v) produced errors: %v", tc.lit, errs.ToDisplayString())
		}
		if got := checked.GetType(1); !types.IsExactMatch(got, tc.want) {
			t.Errorf("GetType() = %v, want %v", got, tc.want)
		}
	}
}

func TestCheckIdentDeclared(t *testing.T) {
	env := newTestEnv(t)
	x, err := decls.NewVariable("x", types.StringType)
	if err != nil {
		t.Fatalf("NewVariable() failed: %v", err)
	}
	if err := env.AddIdents(x); err != nil {
		t.Fatalf("AddIdents() failed: %v", err)
	}
	e := fac.NewIdent(1, "x")
	checked, errs := mustCheck(t, e, env)
	if !errs.Empty() {
		t.Fatalf("Check() produced errors: %v", errs.ToDisplayString())
	}
	if got := checked.GetType(1); !types.IsExactMatch(got, types.StringType) {
		t.Errorf("GetType() = %v, want string", got)
	}
	info, found := checked.GetRef(1)
	if !found || info.Kind != ast.IdentReference || info.Name != "x" {
		t.Errorf("GetRef() = %+v, found=%v, want an ident reference to 'x'", info, found)
	}
}

func TestCheckIdentUndeclared(t *testing.T) {
	env := newTestEnv(t)
	e := fac.NewIdent(1, "unknown")
	checked, errs := mustCheck(t, e, env)
	if errs.Empty() {
		t.Fatal("Check() did not report an error for an undeclared identifier")
	}
	if got := checked.GetType(1); !types.IsExactMatch(got, types.DynType) {
		t.Errorf("GetType() = %v, want dyn on error recovery", got)
	}
}

func TestCheckCallArithmeticOverload(t *testing.T) {
	env := newTestEnv(t)
	e := fac.NewCall(1, "_+_", fac.NewLiteral(2, types.Int(1)), fac.NewLiteral(3, types.Int(2)))
	checked, errs := mustCheck(t, e, env)
	if !errs.Empty() {
		t.Fatalf("Check() produced errors: %v", errs.ToDisplayString())
	}
	if got := checked.GetType(1); !types.IsExactMatch(got, types.IntType) {
		t.Errorf("GetType() = %v, want int", got)
	}
	out := Print(e, checked)
	want := "_+_(1~int, 2~int)~int^add_int64_int64"
	if out != want {
		t.Errorf("Print() = %q, want %q", out, want)
	}
}

func TestCheckCallNoMatchingOverload(t *testing.T) {
	env := newTestEnv(t)
	e := fac.NewCall(1, "_+_", fac.NewLiteral(2, types.Int(1)), fac.NewLiteral(3, types.String("x")))
	_, errs := mustCheck(t, e, env)
	if errs.Empty() {
		t.Fatal("Check() did not report an error for a mismatched overload")
	}
	if !strings.Contains(errs.ToDisplayString(), "no matching overload") {
		t.Errorf("errors = %q, want a 'no matching overload' message", errs.ToDisplayString())
	}
}

func TestCheckLogicalAnd(t *testing.T) {
	env := newTestEnv(t)
	e := fac.NewCall(1, "_&&_", fac.NewLiteral(2, types.Bool(true)), fac.NewLiteral(3, types.Bool(false)))
	checked, errs := mustCheck(t, e, env)
	if !errs.Empty() {
		t.Fatalf("Check() produced errors: %v", errs.ToDisplayString())
	}
	if got := checked.GetType(1); !types.IsExactMatch(got, types.BoolType) {
		t.Errorf("GetType() = %v, want bool", got)
	}
}

func TestCheckIndexList(t *testing.T) {
	env := newTestEnv(t)
	list := fac.NewList(2, []ast.Expr{fac.NewLiteral(3, types.Int(1)), fac.NewLiteral(4, types.Int(2))}, nil)
	e := fac.NewCall(1, "_[_]", list, fac.NewLiteral(5, types.Int(0)))
	checked, errs := mustCheck(t, e, env)
	if !errs.Empty() {
		t.Fatalf("Check() produced errors: %v", errs.ToDisplayString())
	}
	if got := checked.GetType(1); !types.IsExactMatch(got, types.IntType) {
		t.Errorf("GetType() = %v, want int", got)
	}
}

func TestCheckCreateMap(t *testing.T) {
	env := newTestEnv(t)
	entry := fac.NewMapEntry(2, fac.NewLiteral(3, types.String("k")), fac.NewLiteral(4, types.Int(1)), false)
	e := fac.NewMap(1, []ast.EntryExpr{entry})
	checked, errs := mustCheck(t, e, env)
	if !errs.Empty() {
		t.Fatalf("Check() produced errors: %v", errs.ToDisplayString())
	}
	want := types.NewMapType(types.StringType, types.IntType)
	if got := checked.GetType(1); !types.IsExactMatch(got, want) {
		t.Errorf("GetType() = %v, want %v", got, want)
	}
}

func TestCheckCreateListAggregateMismatch(t *testing.T) {
	env := newTestEnv(t)
	e := fac.NewList(1, []ast.Expr{fac.NewLiteral(2, types.Int(1)), fac.NewLiteral(3, types.String("x"))}, nil)
	_, errs := mustCheck(t, e, env)
	if errs.Empty() {
		t.Fatal("Check() did not report an error for a heterogeneous list literal")
	}
}

func TestCheckCreateListCrossNumericComparisons(t *testing.T) {
	env := newTestEnv(t, CrossTypeNumericComparisons(true))
	e := fac.NewList(1, []ast.Expr{fac.NewLiteral(2, types.Int(1)), fac.NewLiteral(3, types.Uint(2))}, nil)
	checked, errs := mustCheck(t, e, env)
	if !errs.Empty() {
		t.Fatalf("Check() produced errors: %v", errs.ToDisplayString())
	}
	want := types.NewListType(types.DynType)
	if got := checked.GetType(1); !types.IsExactMatch(got, want) {
		t.Errorf("GetType() = %v, want %v", got, want)
	}
}

func TestCheckCreateStruct(t *testing.T) {
	reg := types.NewRegistry()
	if err := reg.RegisterStructType("my.Msg", map[string]ref.FieldType{
		"name": {Type: types.StringType},
	}); err != nil {
		t.Fatalf("RegisterStructType() failed: %v", err)
	}
	cont, err := containers.NewContainer()
	if err != nil {
		t.Fatalf("containers.NewContainer() failed: %v", err)
	}
	env, err := NewEnv(cont, reg)
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	field := fac.NewStructField(2, "name", fac.NewLiteral(3, types.String("x")), false)
	e := fac.NewStruct(1, "my.Msg", []ast.EntryExpr{field})
	checked, errs := mustCheck(t, e, env)
	if !errs.Empty() {
		t.Fatalf("Check() produced errors: %v", errs.ToDisplayString())
	}
	want := types.NewStructType("my.Msg")
	if got := checked.GetType(1); !types.IsExactMatch(got, want) {
		t.Errorf("GetType() = %v, want %v", got, want)
	}
}

func TestCheckCreateStructUndefinedField(t *testing.T) {
	reg := types.NewRegistry()
	if err := reg.RegisterStructType("my.Msg", map[string]ref.FieldType{
		"name": {Type: types.StringType},
	}); err != nil {
		t.Fatalf("RegisterStructType() failed: %v", err)
	}
	cont, err := containers.NewContainer()
	if err != nil {
		t.Fatalf("containers.NewContainer() failed: %v", err)
	}
	env, err := NewEnv(cont, reg)
	if err != nil {
		t.Fatalf("NewEnv() failed: %v", err)
	}
	field := fac.NewStructField(2, "bogus", fac.NewLiteral(3, types.String("x")), false)
	e := fac.NewStruct(1, "my.Msg", []ast.EntryExpr{field})
	_, errs := mustCheck(t, e, env)
	if errs.Empty() {
		t.Fatal("Check() did not report an error for an undefined field")
	}
}

// [1, 2].all(x, x != 2) shaped comprehension: the accumulator starts
// true, stays `__result__ && !(x == 2)`, stops once an element equals 2,
// and is returned as a boolean.
func TestCheckComprehension(t *testing.T) {
	env := newTestEnv(t)
	list := fac.NewList(2, []ast.Expr{
		fac.NewLiteral(3, types.Int(1)),
		fac.NewLiteral(4, types.Int(2)),
	}, nil)
	loopCond := fac.NewCall(5, "_&&_",
		fac.NewAccuIdent(6),
		fac.NewCall(7, "!_", fac.NewCall(8, "_==_", fac.NewIdent(9, "x"), fac.NewLiteral(10, types.Int(2)))))
	loopStep := fac.NewCall(11, "_&&_",
		fac.NewAccuIdent(12),
		fac.NewCall(13, "!_", fac.NewCall(14, "_==_", fac.NewIdent(15, "x"), fac.NewLiteral(16, types.Int(2)))))
	e := fac.NewComprehension(1, list, "x", "__result__",
		fac.NewLiteral(17, types.Bool(true)), loopCond, loopStep, fac.NewAccuIdent(18))

	checked, errs := mustCheck(t, e, env)
	if !errs.Empty() {
		t.Fatalf("Check() produced errors: %v", errs.ToDisplayString())
	}
	if got := checked.GetType(1); !types.IsExactMatch(got, types.BoolType) {
		t.Errorf("GetType() = %v, want bool", got)
	}
}

func TestCheckComprehensionNonIterableRange(t *testing.T) {
	env := newTestEnv(t)
	e := fac.NewComprehension(1, fac.NewLiteral(2, types.Int(1)), "x", "__result__",
		fac.NewLiteral(3, types.Bool(true)),
		fac.NewLiteral(4, types.Bool(true)),
		fac.NewAccuIdent(5),
		fac.NewAccuIdent(6))
	_, errs := mustCheck(t, e, env)
	if errs.Empty() {
		t.Fatal("Check() did not report an error for a non-iterable comprehension range")
	}
}
