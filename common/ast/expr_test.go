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
	"fmt"
	"testing"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/types"
)

func TestSetKindCase(t *testing.T) {
	fac := ast.NewExprFactory()
	tests := []ast.Expr{
		fac.NewCall(1, "_==_", fac.NewLiteral(2, types.True), fac.NewLiteral(3, types.False)),
		fac.NewMemberCall(1, "startsWith", fac.NewIdent(2, "s"), fac.NewLiteral(3, types.String("x"))),
		fac.NewComprehension(12,
			fac.NewList(1, []ast.Expr{}, []int32{}),
			"i",
			ast.AccumulatorName,
			fac.NewLiteral(5, types.False),
			fac.NewCall(8, "@not_strictly_false", fac.NewCall(7, "!_", fac.NewAccuIdent(6))),
			fac.NewCall(10, "_||_", fac.NewAccuIdent(9), fac.NewIdent(4, "i")),
			fac.NewAccuIdent(11),
		),
		fac.NewIdent(1, "a"),
		fac.NewLiteral(1, types.Bytes("hello")),
		fac.NewList(1, []ast.Expr{fac.NewIdent(2, "a"), fac.NewIdent(3, "b")}, []int32{}),
		fac.NewMap(1, []ast.EntryExpr{
			fac.NewMapEntry(2,
				fac.NewLiteral(3, types.String("string")),
				fac.NewCall(6, "_?._", fac.NewIdent(4, "a"), fac.NewLiteral(5, types.String("b"))),
				true),
		}),
		fac.NewSelect(2, fac.NewIdent(1, "a"), "b"),
		fac.NewPresenceTest(2, fac.NewIdent(1, "a"), "b"),
		fac.NewStruct(1,
			"custom.StructType",
			[]ast.EntryExpr{
				fac.NewStructField(2, "uint_field", fac.NewLiteral(3, types.Uint(42)), false),
			}),
	}
	for i, tst := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			target := fac.NewUnspecifiedExpr(tst.ID())
			target.SetKindCase(tst)
			if target.Kind() != tst.Kind() {
				t.Fatalf("SetKindCase() got kind %v, wanted %v", target.Kind(), tst.Kind())
			}
			if tst.Kind() == ast.CallKind {
				if target.AsCall().IsMemberFunction() != tst.AsCall().IsMemberFunction() {
					t.Error("SetKindCase() lost the member/non-member call distinction")
				}
			}
		})
	}
}

func TestSetKindCaseClearsPriorKind(t *testing.T) {
	fac := ast.NewExprFactory()
	e := fac.NewIdent(1, "a")
	e.SetKindCase(fac.NewLiteral(1, types.Int(42)))
	if e.Kind() != ast.LiteralKind {
		t.Fatalf("SetKindCase() got kind %v, want LiteralKind", e.Kind())
	}
	if e.AsIdent() != "" {
		t.Error("SetKindCase() left the prior IdentKind payload reachable")
	}
}

func TestRenumberIDs(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewCall(1, "_+_", fac.NewIdent(1, "a"), fac.NewLiteral(1, types.Int(1)))
	next := ast.NewIDGenerator(100)
	root.RenumberIDs(ast.IDGenerator(next))
	seen := map[int64]bool{}
	ast.PreOrderVisit(root, ast.NewExprVisitor(func(e ast.Expr) {
		if e.ID() <= 100 {
			t.Errorf("RenumberIDs() left id %d at or below the seed", e.ID())
		}
		if seen[e.ID()] {
			t.Errorf("RenumberIDs() assigned duplicate id %d", e.ID())
		}
		seen[e.ID()] = true
	}))
	if len(seen) != 3 {
		t.Errorf("RenumberIDs() visited %d nodes, want 3", len(seen))
	}
}

func TestFactoryCopyExprIsIndependent(t *testing.T) {
	fac := ast.NewExprFactory()
	orig := fac.NewMemberCall(1, "size", fac.NewIdent(2, "s"))
	dup := fac.CopyExpr(orig)
	if dup == orig {
		t.Fatal("CopyExpr() returned the same value")
	}
	dup.SetKindCase(fac.NewIdent(1, "replaced"))
	if orig.Kind() != ast.CallKind {
		t.Error("mutating the copy mutated the original")
	}
}

func TestAccumulatorNameReserved(t *testing.T) {
	if ast.AccumulatorName == "" {
		t.Fatal("AccumulatorName must not be empty")
	}
	fac := ast.NewExprFactory()
	accu := fac.NewAccuIdent(1)
	if accu.AsIdent() != ast.AccumulatorName {
		t.Errorf("NewAccuIdent() = %q, want %q", accu.AsIdent(), ast.AccumulatorName)
	}
}
