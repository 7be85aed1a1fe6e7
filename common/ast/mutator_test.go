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

package ast_test

import (
	"testing"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/types"
)

func TestCopyIsDeep(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewCall(1, "_+_", fac.NewIdent(2, "a"), fac.NewLiteral(3, types.Int(1)))
	a := ast.NewAST(root, ast.NewSourceInfo("copy_test"))

	dup := ast.Copy(a)
	if dup == a {
		t.Fatal("Copy() returned the same *AST value")
	}
	if dup.Expr() == a.Expr() {
		t.Fatal("Copy() aliased the root expression")
	}
	if !ast.ReplaceSubtree(dup.Expr(), 2, fac.NewIdent(2, "b")) {
		t.Fatal("ReplaceSubtree() did not find id 2 in the copy")
	}
	if a.Expr().AsCall().Args()[0].AsIdent() != "a" {
		t.Error("mutating the copy affected the original AST")
	}
	if dup.Expr().AsCall().Args()[0].AsIdent() != "b" {
		t.Error("ReplaceSubtree() did not update the copy")
	}
}

func TestMaxID(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewComprehension(9,
		fac.NewList(1, []ast.Expr{fac.NewIdent(2, "x")}, []int32{}),
		"i", "__result__",
		fac.NewLiteral(3, types.False),
		fac.NewCall(4, "@not_strictly_false", fac.NewCall(5, "!_", fac.NewAccuIdent(6))),
		fac.NewCall(7, "_||_", fac.NewAccuIdent(8), fac.NewIdent(20, "i")),
		fac.NewAccuIdent(21))
	a := ast.NewAST(root, ast.NewSourceInfo(""))
	if got := ast.MaxID(a); got != 21 {
		t.Errorf("MaxID() = %d, want 21", got)
	}
}

func TestMaxIDIncludesMacroCalls(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewLiteral(1, types.True)
	info := ast.NewSourceInfo("")
	info.SetMacroCall(1, fac.NewCall(100, "exists", fac.NewIdent(101, "i")))
	a := ast.NewAST(root, info)
	if got := ast.MaxID(a); got != 101 {
		t.Errorf("MaxID() = %d, want 101", got)
	}
}

func TestPreOrderVisitOrder(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewCall(1, "_+_", fac.NewIdent(2, "a"), fac.NewIdent(3, "b"))
	var order []int64
	ast.PreOrderVisit(root, ast.NewExprVisitor(func(e ast.Expr) {
		order = append(order, e.ID())
	}))
	want := []int64{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("PreOrderVisit() visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("PreOrderVisit() visited %v, want %v", order, want)
		}
	}
}

func TestPostOrderVisitOrder(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewCall(1, "_+_", fac.NewIdent(2, "a"), fac.NewIdent(3, "b"))
	var order []int64
	ast.PostOrderVisit(root, ast.NewExprVisitor(func(e ast.Expr) {
		order = append(order, e.ID())
	}))
	want := []int64{2, 3, 1}
	if len(order) != len(want) {
		t.Fatalf("PostOrderVisit() visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("PostOrderVisit() visited %v, want %v", order, want)
		}
	}
}

func TestReplaceSubtreeNotFound(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewIdent(1, "a")
	if ast.ReplaceSubtree(root, 99, fac.NewIdent(99, "b")) {
		t.Error("ReplaceSubtree() reported success for an id that is not present")
	}
}

func TestClearMacroCallInvalidatesTransitiveSnapshots(t *testing.T) {
	fac := ast.NewExprFactory()
	// Two macro-call snapshots, keyed at unrelated ids (1 and 5), both
	// of which happen to embed the same shared subnode (id 2) — the
	// shape ReplaceSubtree's in-place mutation produces when two macro
	// sites capture a common subexpression.
	shared := fac.NewIdent(2, "i")
	outer := fac.NewCall(10, "exists", shared)
	inner := fac.NewCall(11, "exists", shared)
	info := ast.NewSourceInfo("")
	info.SetMacroCall(1, outer)
	info.SetMacroCall(5, inner)

	info.ClearMacroCall(2)

	if _, found := info.GetMacroCall(1); found {
		t.Error("ClearMacroCall() left a snapshot that still embeds the replaced id's shared node")
	}
	if _, found := info.GetMacroCall(5); found {
		t.Error("ClearMacroCall() left a snapshot that still embeds the replaced id's shared node")
	}
}

func TestClearMacroCallLeavesUnrelatedSnapshots(t *testing.T) {
	fac := ast.NewExprFactory()
	info := ast.NewSourceInfo("")
	info.SetMacroCall(1, fac.NewCall(10, "exists", fac.NewIdent(2, "i")))
	info.SetMacroCall(5, fac.NewCall(11, "exists", fac.NewIdent(6, "j")))

	info.ClearMacroCall(1)

	if _, found := info.GetMacroCall(5); !found {
		t.Error("ClearMacroCall() removed a snapshot that never referenced the replaced id")
	}
}

func TestNewIDGenerator(t *testing.T) {
	next := ast.NewIDGenerator(10)
	if got := next(); got != 11 {
		t.Errorf("first call = %d, want 11", got)
	}
	if got := next(); got != 12 {
		t.Errorf("second call = %d, want 12", got)
	}
}
