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

func TestASTUncheckedDefaultsToDyn(t *testing.T) {
	fac := ast.NewExprFactory()
	a := ast.NewAST(fac.NewIdent(1, "x"), ast.NewSourceInfo("unchecked_test"))
	if a.IsChecked() {
		t.Fatal("a freshly parsed AST reported itself as checked")
	}
	if got := a.GetType(1); got != types.DynType {
		t.Errorf("GetType() on an unchecked AST = %v, want DynType", got)
	}
}

func TestNewCheckedASTPopulatesOverlays(t *testing.T) {
	fac := ast.NewExprFactory()
	parsed := ast.NewAST(fac.NewIdent(1, "x"), ast.NewSourceInfo(""))
	typeMap := map[int64]*types.Type{1: types.StringType}
	refMap := map[int64]*ast.ReferenceInfo{1: ast.NewIdentReference("x", nil)}

	checked := ast.NewCheckedAST(parsed, typeMap, refMap)
	if !checked.IsChecked() {
		t.Fatal("NewCheckedAST() did not produce a checked AST")
	}
	if got := checked.GetType(1); got != types.StringType {
		t.Errorf("GetType() = %v, want StringType", got)
	}
	ref, found := checked.GetRef(1)
	if !found || ref.Name != "x" {
		t.Fatal("GetRef() did not return the resolved identifier reference")
	}
}

func TestFunctionReferenceAddOverload(t *testing.T) {
	ref := ast.NewFunctionReference("add_int64_int64")
	ref.AddOverload("add_int64_int64")
	ref.AddOverload("add_uint64_uint64")
	if len(ref.OverloadIDs) != 2 {
		t.Fatalf("AddOverload() produced %v, want 2 unique overload ids", ref.OverloadIDs)
	}
}

func TestSourceInfoMacroCallOverlay(t *testing.T) {
	fac := ast.NewExprFactory()
	info := ast.NewSourceInfo("macro_test")
	call := fac.NewCall(10, "exists", fac.NewIdent(11, "i"))
	info.SetMacroCall(1, call)

	got, found := info.GetMacroCall(1)
	if !found || got.ID() != 10 {
		t.Fatal("GetMacroCall() did not return the recorded macro call")
	}
	info.ClearMacroCall(1)
	if _, found := info.GetMacroCall(1); found {
		t.Error("ClearMacroCall() left the macro call reachable")
	}
}

func TestSourceInfoOffsetRange(t *testing.T) {
	info := ast.NewSourceInfo("")
	info.SetOffsetRange(1, ast.OffsetRange{Start: 3, Stop: 8})
	r, found := info.GetOffsetRange(1)
	if !found || r.Start != 3 || r.Stop != 8 {
		t.Fatalf("GetOffsetRange() = %+v, found=%v", r, found)
	}
}
