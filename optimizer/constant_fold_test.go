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

	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
)

func optimizeOnce(t *testing.T, f *testFixture, checked *ast.AST, pass ASTOptimizer) *ast.AST {
	t.Helper()
	opt := NewStaticOptimizer(f.env, pass)
	out, err := opt.Optimize(common.NewTextSource("<input>", ""), checked)
	if err != nil {
		t.Fatalf("Optimize() failed: %v", err)
	}
	return out
}

func TestConstantFoldLogicalAndShortCircuitsOnFalse(t *testing.T) {
	xDecl, err := decls.NewVariable("x", types.BoolType)
	if err != nil {
		t.Fatalf("NewVariable() failed: %v", err)
	}
	f := newFixture(t, xDecl)
	e := fac.NewCall(1, "_&&_", fac.NewLiteral(2, types.False), fac.NewIdent(3, "x"))
	checked := f.check(t, e)

	out := optimizeOnce(t, f, checked, NewConstantFoldOptimizer(f.disp))
	if out.Expr().Kind() != ast.LiteralKind || out.Expr().AsLiteral() != types.False {
		t.Errorf("got %v, want literal false", out.Expr())
	}
}

func TestConstantFoldLogicalOrDropsDecisiveTrue(t *testing.T) {
	xDecl, err := decls.NewVariable("x", types.BoolType)
	if err != nil {
		t.Fatalf("NewVariable() failed: %v", err)
	}
	f := newFixture(t, xDecl)
	e := fac.NewCall(1, "_||_", fac.NewIdent(2, "x"), fac.NewLiteral(3, types.False))
	checked := f.check(t, e)

	out := optimizeOnce(t, f, checked, NewConstantFoldOptimizer(f.disp))
	if out.Expr().Kind() != ast.IdentKind || out.Expr().AsIdent() != "x" {
		t.Errorf("got %v, want bare ident x", out.Expr())
	}
}

func TestConstantFoldConditional(t *testing.T) {
	f := newFixture(t)
	e := fac.NewCall(1, "_?_:_",
		fac.NewLiteral(2, types.False),
		fac.NewLiteral(3, types.String("yes")),
		fac.NewLiteral(4, types.String("no")))
	checked := f.check(t, e)

	out := optimizeOnce(t, f, checked, NewConstantFoldOptimizer(f.disp))
	if out.Expr().Kind() != ast.LiteralKind || out.Expr().AsLiteral() != types.String("no") {
		t.Errorf("got %v, want literal \"no\"", out.Expr())
	}
}

func TestConstantFoldSkipsImpureFunction(t *testing.T) {
	f := newFixture(t)
	e := fac.NewCall(1, "_+_", fac.NewLiteral(2, types.Int(1)), fac.NewLiteral(3, types.Int(2)))
	checked := f.check(t, e)

	out := optimizeOnce(t, f, checked, NewConstantFoldOptimizer(f.disp, "_+_"))
	if out.Expr().Kind() != ast.CallKind {
		t.Errorf("got %v, want unfolded call (function marked impure)", out.Expr().Kind())
	}
}
