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

func TestNavigateASTChildren(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewCall(1, "_+_", fac.NewIdent(2, "a"), fac.NewLiteral(3, types.Int(1)))
	a := ast.NewAST(root, ast.NewSourceInfo(""))

	nav := ast.NavigateAST(a)
	if nav.ID() != 1 {
		t.Fatalf("NavigateAST() root id = %d, want 1", nav.ID())
	}
	children := nav.Children()
	if len(children) != 2 {
		t.Fatalf("Children() returned %d nodes, want 2", len(children))
	}
	if children[0].Depth() != 1 || children[1].Depth() != 1 {
		t.Error("Children() did not report depth one below the root")
	}
	parent, found := children[0].Parent()
	if !found || parent.ID() != nav.ID() {
		t.Error("Parent() of a child did not point back to the root")
	}
}

func TestNavigateASTMatchKind(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewCall(1, "_+_",
		fac.NewIdent(2, "a"),
		fac.NewCall(3, "_*_", fac.NewIdent(4, "b"), fac.NewLiteral(5, types.Int(2))))
	a := ast.NewAST(root, ast.NewSourceInfo(""))

	matches := ast.MatchDescendants(ast.NavigateAST(a), ast.KindMatcher(ast.IdentKind))
	if len(matches) != 2 {
		t.Fatalf("MatchDescendants(KindMatcher(IdentKind)) returned %d matches, want 2", len(matches))
	}
	for _, m := range matches {
		if m.Kind() != ast.IdentKind {
			t.Errorf("match kind = %v, want IdentKind", m.Kind())
		}
	}
}

func TestNavigateASTFunctionMatcher(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewCall(1, "_+_",
		fac.NewIdent(2, "a"),
		fac.NewCall(3, "_*_", fac.NewIdent(4, "b"), fac.NewLiteral(5, types.Int(2))))
	a := ast.NewAST(root, ast.NewSourceInfo(""))

	matches := ast.MatchDescendants(ast.NavigateAST(a), ast.FunctionMatcher("_*_"))
	if len(matches) != 1 {
		t.Fatalf("MatchDescendants(FunctionMatcher(_*_)) returned %d matches, want 1", len(matches))
	}
	if matches[0].ID() != 3 {
		t.Errorf("match id = %d, want 3", matches[0].ID())
	}
}

func TestNavigateASTTypeOverlay(t *testing.T) {
	fac := ast.NewExprFactory()
	root := fac.NewIdent(1, "a")
	a := ast.NewAST(root, ast.NewSourceInfo(""))
	a.SetType(1, types.IntType)

	nav := ast.NavigateAST(a)
	if got := nav.Type(); got != types.IntType {
		t.Errorf("Type() = %v, want IntType", got)
	}
}
