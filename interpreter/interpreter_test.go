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

package interpreter

import (
	"testing"

	"github.com/exprcel/cel/checker"
	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/stdlib"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

var fac = ast.NewExprFactory()

type testFixture struct {
	env  *checker.Env
	disp Dispatcher
	cont *containers.Container
	reg  *types.Registry
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
	disp, err := StandardDispatcher(stdlib.Functions())
	if err != nil {
		t.Fatalf("StandardDispatcher() failed: %v", err)
	}
	return &testFixture{env: env, disp: disp, cont: cont, reg: reg}
}

func (f *testFixture) eval(t *testing.T, e ast.Expr, vars Activation) ref.Val {
	t.Helper()
	parsed := ast.NewAST(e, ast.NewSourceInfo(""))
	checked, errs := checker.Check(parsed, common.NewTextSource("<input>", ""), f.env)
	if !errs.Empty() {
		t.Fatalf("Check() failed: %v", errs.ToDisplayString())
	}
	interp := NewInterpreter(f.disp, f.cont, f.reg)
	prg, err := interp.NewProgram(checked)
	if err != nil {
		t.Fatalf("NewProgram() failed: %v", err)
	}
	if vars == nil {
		vars = NewActivation(map[string]interface{}{})
	}
	return prg.Eval(vars)
}

func TestEvalLiteral(t *testing.T) {
	f := newFixture(t)
	got := f.eval(t, fac.NewLiteral(1, types.Int(42)), nil)
	if got != types.Int(42) {
		t.Errorf("got %v, want 42", got)
	}
}

func TestEvalArithmetic(t *testing.T) {
	f := newFixture(t)
	e := fac.NewCall(1, "_+_", fac.NewLiteral(2, types.Int(1)), fac.NewLiteral(3, types.Int(2)))
	got := f.eval(t, e, nil)
	if got != types.Int(3) {
		t.Errorf("got %v, want 3", got)
	}
}

func TestEvalLogicalAndShortCircuits(t *testing.T) {
	f := newFixture(t)
	missing := fac.NewIdent(2, "nope")
	e := fac.NewCall(1, "_&&_", fac.NewLiteral(3, types.False), missing)
	got := f.eval(t, e, nil)
	if got != types.False {
		t.Errorf("got %v, want false", got)
	}
}

func TestEvalLogicalOrShortCircuits(t *testing.T) {
	f := newFixture(t)
	missing := fac.NewIdent(2, "nope")
	e := fac.NewCall(1, "_||_", fac.NewLiteral(3, types.True), missing)
	got := f.eval(t, e, nil)
	if got != types.True {
		t.Errorf("got %v, want true", got)
	}
}

func TestEvalConditional(t *testing.T) {
	f := newFixture(t)
	e := fac.NewCall(1, "_?_:_",
		fac.NewLiteral(2, types.True),
		fac.NewLiteral(3, types.String("yes")),
		fac.NewLiteral(4, types.String("no")))
	got := f.eval(t, e, nil)
	if got != types.String("yes") {
		t.Errorf("got %v, want yes", got)
	}
}

func TestEvalEqualsStrings(t *testing.T) {
	f := newFixture(t)
	e := fac.NewCall(1, "_==_", fac.NewLiteral(2, types.String("a")), fac.NewLiteral(3, types.String("a")))
	got := f.eval(t, e, nil)
	if got != types.True {
		t.Errorf("got %v, want true", got)
	}
}

func TestEvalIdentVariable(t *testing.T) {
	xDecl, err := decls.NewVariable("x", types.IntType)
	if err != nil {
		t.Fatalf("NewVariable() failed: %v", err)
	}
	f := newFixture(t, xDecl)
	e := fac.NewIdent(1, "x")
	vars := NewActivation(map[string]interface{}{"x": types.Int(7)})
	got := f.eval(t, e, vars)
	if got != types.Int(7) {
		t.Errorf("got %v, want 7", got)
	}
}

func TestEvalSelectOnMap(t *testing.T) {
	mDecl, err := decls.NewVariable("m", types.NewMapType(types.StringType, types.IntType))
	if err != nil {
		t.Fatalf("NewVariable() failed: %v", err)
	}
	f := newFixture(t, mDecl)
	e := fac.NewSelect(1, fac.NewIdent(2, "m"), "a")
	m := types.NewMap()
	if err := m.Insert(types.String("a"), types.Int(5)); err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	vars := NewActivation(map[string]interface{}{"m": m})
	got := f.eval(t, e, vars)
	if got != types.Int(5) {
		t.Errorf("got %v, want 5", got)
	}
}

func TestEvalHasOnMap(t *testing.T) {
	mDecl, err := decls.NewVariable("m", types.NewMapType(types.StringType, types.IntType))
	if err != nil {
		t.Fatalf("NewVariable() failed: %v", err)
	}
	f := newFixture(t, mDecl)
	e := fac.NewPresenceTest(1, fac.NewIdent(2, "m"), "missing")
	m := types.NewMap()
	vars := NewActivation(map[string]interface{}{"m": m})
	got := f.eval(t, e, vars)
	if got != types.False {
		t.Errorf("got %v, want false", got)
	}
}

func TestEvalIndexOnList(t *testing.T) {
	f := newFixture(t)
	list := fac.NewList(1, []ast.Expr{
		fac.NewLiteral(2, types.Int(10)),
		fac.NewLiteral(3, types.Int(20)),
	}, nil)
	e := fac.NewCall(4, "_[_]", list, fac.NewLiteral(5, types.Int(1)))
	got := f.eval(t, e, nil)
	if got != types.Int(20) {
		t.Errorf("got %v, want 20", got)
	}
}

func TestEvalListLiteral(t *testing.T) {
	f := newFixture(t)
	e := fac.NewList(1, []ast.Expr{
		fac.NewLiteral(2, types.Int(1)),
		fac.NewLiteral(3, types.Int(2)),
	}, nil)
	got := f.eval(t, e, nil)
	lst, ok := got.(*types.List)
	if !ok {
		t.Fatalf("got %T, want *types.List", got)
	}
	if lst.Size() != types.Int(2) {
		t.Errorf("Size() = %v, want 2", lst.Size())
	}
}

func TestEvalComprehensionExistsOne(t *testing.T) {
	f := newFixture(t)
	list := fac.NewList(1, []ast.Expr{
		fac.NewLiteral(2, types.Int(1)),
		fac.NewLiteral(3, types.Int(2)),
		fac.NewLiteral(4, types.Int(3)),
	}, nil)
	accuInit := fac.NewLiteral(5, types.False)
	iterVar := "i"
	accuVar := ast.AccumulatorName
	cond := fac.NewLiteral(6, types.True)
	step := fac.NewCall(7, "_||_",
		fac.NewIdent(8, accuVar),
		fac.NewCall(9, "_==_", fac.NewIdent(10, iterVar), fac.NewLiteral(11, types.Int(2))))
	result := fac.NewIdent(12, accuVar)
	e := fac.NewComprehension(13, list, iterVar, accuVar, accuInit, cond, step, result)
	got := f.eval(t, e, nil)
	if got != types.True {
		t.Errorf("got %v, want true", got)
	}
}

func TestEvalComprehensionIterationLimit(t *testing.T) {
	f := newFixture(t)
	elems := make([]ast.Expr, 0, 3)
	for i := int64(0); i < 3; i++ {
		elems = append(elems, fac.NewLiteral(i+2, types.Int(i)))
	}
	list := fac.NewList(1, elems, nil)
	accuInit := fac.NewLiteral(20, types.Int(0))
	accuVar := ast.AccumulatorName
	iterVar := "i"
	cond := fac.NewLiteral(21, types.True)
	step := fac.NewCall(22, "_+_", fac.NewIdent(23, accuVar), fac.NewLiteral(24, types.Int(1)))
	result := fac.NewIdent(25, accuVar)
	e := fac.NewComprehension(26, list, iterVar, accuVar, accuInit, cond, step, result)

	parsed := ast.NewAST(e, ast.NewSourceInfo(""))
	checked, errs := checker.Check(parsed, common.NewTextSource("<input>", ""), f.env)
	if !errs.Empty() {
		t.Fatalf("Check() failed: %v", errs.ToDisplayString())
	}
	root, err := Plan(f.disp, f.cont, f.reg, checked)
	if err != nil {
		t.Fatalf("Plan() failed: %v", err)
	}
	frame := NewExecutionFrame(NewActivation(map[string]interface{}{}), 2)
	got := root.Eval(frame)
	if !types.IsError(got) {
		t.Fatalf("got %v, want iteration limit error", got)
	}
}
