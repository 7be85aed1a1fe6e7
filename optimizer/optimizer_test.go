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

package optimizer

import (
	"testing"

	"github.com/exprcel/cel/checker"
	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/stdlib"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/interpreter"
)

var fac = ast.NewExprFactory()

type testFixture struct {
	env  *checker.Env
	disp interpreter.Dispatcher
}

func newFixture(t *testing.T, vars ...*decls.VariableDecl) *testFixture {
	t.Helper()
	cont, err := containers.NewContainer()
	if err != nil {
		t.Fatalf("containers.NewContainer() failed: %v", err)
	}
	reg := types.NewRegistry()
	env, err := checker.NewEnv(cont, reg)
	if err != nil {
		t.Fatalf("checker.NewEnv() failed: %v", err)
	}
	if err := env.AddFunctions(stdlib.Functions()...); err != nil {
		t.Fatalf("AddFunctions() failed: %v", err)
	}
	if err := env.AddIdents(stdlib.Types()...); err != nil {
		t.Fatalf("AddIdents() failed: %v", err)
	}
	if err := env.AddIdents(vars...); err != nil {
		t.Fatalf("AddIdents(vars) failed: %v", err)
	}
	disp, err := interpreter.StandardDispatcher(stdlib.Functions())
	if err != nil {
		t.Fatalf("StandardDispatcher() failed: %v", err)
	}
	return &testFixture{env: env, disp: disp}
}

func (f *testFixture) check(t *testing.T, e ast.Expr) *ast.AST {
	t.Helper()
	parsed := ast.NewAST(e, ast.NewSourceInfo(""))
	checked, errs := checker.Check(parsed, common.NewTextSource("<input>", ""), f.env)
	if !errs.Empty() {
		t.Fatalf("Check() failed: %v", errs.ToDisplayString())
	}
	return checked
}

func TestStaticOptimizerConstantFold(t *testing.T) {
	f := newFixture(t)
	e := fac.NewCall(1, "_+_", fac.NewLiteral(2, types.Int(1)), fac.NewLiteral(3, types.Int(2)))
	checked := f.check(t, e)

	opt := NewStaticOptimizer(f.env, NewConstantFoldOptimizer(f.disp))
	out, err := opt.Optimize(common.NewTextSource("<input>", ""), checked)
	if err != nil {
		t.Fatalf("Optimize() failed: %v", err)
	}
	if out.Expr().Kind() != ast.LiteralKind {
		t.Fatalf("got kind %v, want LiteralKind", out.Expr().Kind())
	}
	if out.Expr().AsLiteral() != types.Int(3) {
		t.Errorf("got %v, want 3", out.Expr().AsLiteral())
	}
}

func TestStaticOptimizerChainsPasses(t *testing.T) {
	xDecl, err := decls.NewVariable("x", types.IntType)
	if err != nil {
		t.Fatalf("NewVariable() failed: %v", err)
	}
	f := newFixture(t, xDecl)
	// x + (1 + 2)
	e := fac.NewCall(1, "_+_",
		fac.NewIdent(2, "x"),
		fac.NewCall(3, "_+_", fac.NewLiteral(4, types.Int(1)), fac.NewLiteral(5, types.Int(2))))
	checked := f.check(t, e)

	iv := NewInlineVariable("x", fac.NewLiteral(10, types.Int(100)))
	opt := NewStaticOptimizer(f.env,
		NewConstantFoldOptimizer(f.disp),
		NewInlineVariableOptimizer(iv),
		NewConstantFoldOptimizer(f.disp),
	)
	out, err := opt.Optimize(common.NewTextSource("<input>", ""), checked)
	if err != nil {
		t.Fatalf("Optimize() failed: %v", err)
	}
	if out.Expr().Kind() != ast.LiteralKind || out.Expr().AsLiteral() != types.Int(103) {
		t.Errorf("got %v (%v), want literal 103", out.Expr().AsLiteral(), out.Expr().Kind())
	}
}
