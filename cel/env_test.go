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

package cel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
)

// buildAST hand-assembles a parse-only tree, standing in for the
// external parser collaborator (spec §1/§6).
func buildAST(build func(fac ast.ExprFactory, idGen ast.IDGenerator) ast.Expr) *ast.AST {
	fac := ast.NewExprFactory()
	var nextID int64
	idGen := func() int64 {
		nextID++
		return nextID
	}
	return ast.NewAST(build(fac, idGen), ast.NewSourceInfo(""))
}

func TestEnvCheckAndEvalSimpleArithmetic(t *testing.T) {
	env, err := NewEnv(Variable("x", IntType))
	require.NoError(t, err)

	parsed := buildAST(func(fac ast.ExprFactory, idGen ast.IDGenerator) ast.Expr {
		return fac.NewCall(idGen(), "_+_",
			fac.NewIdent(idGen(), "x"),
			fac.NewLiteral(idGen(), types.Int(1)),
		)
	})

	checked, iss := env.Check(common.NewTextSource("test", "x + 1"), parsed)
	require.Nil(t, iss, "unexpected check issues: %v", iss)

	prg, err := env.Program(checked)
	require.NoError(t, err)

	out, err := prg.Eval(map[string]interface{}{"x": int64(41)})
	require.NoError(t, err)
	assert.Equal(t, types.Int(42), out)
}

func TestEnvCheckRejectsTypeMismatch(t *testing.T) {
	env, err := NewEnv(Variable("x", StringType))
	require.NoError(t, err)

	parsed := buildAST(func(fac ast.ExprFactory, idGen ast.IDGenerator) ast.Expr {
		return fac.NewCall(idGen(), "_+_",
			fac.NewIdent(idGen(), "x"),
			fac.NewLiteral(idGen(), types.Int(1)),
		)
	})

	_, iss := env.Check(common.NewTextSource("test", "x + 1"), parsed)
	require.NotNil(t, iss)
	assert.NotEmpty(t, iss.Errors())
}

func TestExtendLeavesParentEnvUntouched(t *testing.T) {
	base, err := NewEnv()
	require.NoError(t, err)

	child, err := base.Extend(Variable("y", BoolType))
	require.NoError(t, err)

	assert.Empty(t, base.CustomVariables())
	require.Len(t, child.CustomVariables(), 1)
	assert.Equal(t, "y", child.CustomVariables()[0].Name())
}

// TestExtendClonesDeclarationSliceByValue pins down that Extend's clone
// does not alias the parent's backing arrays: appending to the child's
// custom declarations must never retroactively resize or corrupt the
// parent's own slice, compared field-by-field since *decls.VariableDecl
// carries unexported internal state go-cmp can't walk generically.
func TestExtendClonesDeclarationSliceByValue(t *testing.T) {
	base, err := NewEnv(Variable("a", IntType))
	require.NoError(t, err)

	child, err := base.Extend(Variable("b", IntType))
	require.NoError(t, err)

	baseNames := declNames(base.CustomVariables())
	childNames := declNames(child.CustomVariables())
	if diff := cmp.Diff([]string{"a"}, baseNames); diff != "" {
		t.Errorf("base.CustomVariables() names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, childNames); diff != "" {
		t.Errorf("child.CustomVariables() names mismatch (-want +got):\n%s", diff)
	}
}

func declNames(vars []*decls.VariableDecl) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name()
	}
	return out
}
