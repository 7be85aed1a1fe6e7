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

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/types"
)

// sizeOfZeroList builds `size([0])`.
func sizeOfZeroList(id int64, elemID, innerID int64) ast.Expr {
	return fac.NewCall(id, "size", fac.NewList(elemID, []ast.Expr{fac.NewLiteral(innerID, types.Int(0))}, nil))
}

// sizeOfTwoList builds `size([1, 2])`.
func sizeOfTwoList(id, elemID, a, b int64) ast.Expr {
	return fac.NewCall(id, "size", fac.NewList(elemID, []ast.Expr{
		fac.NewLiteral(a, types.Int(1)),
		fac.NewLiteral(b, types.Int(2)),
	}, nil))
}

func buildRepeatedSizeExpr() ast.Expr {
	// size([0]) + size([0]) + size([1, 2]) + size([1, 2])
	lhs := fac.NewCall(100, "_+_", sizeOfZeroList(1, 2, 3), sizeOfZeroList(4, 5, 6))
	rhs := fac.NewCall(101, "_+_", sizeOfTwoList(7, 8, 9, 10), sizeOfTwoList(11, 12, 13, 14))
	return fac.NewCall(102, "_+_", lhs, rhs)
}

func TestCSEBindStyleNestsInnermostFirst(t *testing.T) {
	f := newFixture(t)
	checked := f.check(t, buildRepeatedSizeExpr())

	out := optimizeOnce(t, f, checked, NewCSEOptimizer(false))
	root := out.Expr()
	if root.Kind() != ast.CallKind || root.AsCall().FunctionName() != bindFunction {
		t.Fatalf("got %v, want outer cel.bind", root)
	}
	outerArgs := root.AsCall().Args()
	outerName := outerArgs[0].AsIdent()
	if outerName != "@r1" {
		t.Errorf("outer bind name got %s, want @r1 (bound after the inner group)", outerName)
	}
	inner := outerArgs[2]
	if inner.Kind() != ast.CallKind || inner.AsCall().FunctionName() != bindFunction {
		t.Fatalf("got %v, want nested cel.bind as the outer bind's body", inner)
	}
	if inner.AsCall().Args()[0].AsIdent() != "@r0" {
		t.Errorf("inner bind name got %s, want @r0", inner.AsCall().Args()[0].AsIdent())
	}
}

func TestCSEBlockStyleCapturesBothGroups(t *testing.T) {
	f := newFixture(t)
	checked := f.check(t, buildRepeatedSizeExpr())

	out := optimizeOnce(t, f, checked, NewCSEOptimizer(true))
	root := out.Expr()
	if root.Kind() != ast.CallKind || root.AsCall().FunctionName() != blockFunction {
		t.Fatalf("got %v, want cel.@block", root)
	}
	args := root.AsCall().Args()
	elems := args[0].AsList().Elements()
	if len(elems) != 2 {
		t.Fatalf("got %d block elements, want 2", len(elems))
	}
}

func TestCSELeavesSingleOccurrenceUntouched(t *testing.T) {
	f := newFixture(t)
	checked := f.check(t, sizeOfZeroList(1, 2, 3))

	out := optimizeOnce(t, f, checked, NewCSEOptimizer(false))
	if out.Expr().Kind() != ast.CallKind || out.Expr().AsCall().FunctionName() != "size" {
		t.Errorf("got %v, want the original untouched call (no repeated subexpression)", out.Expr())
	}
}
