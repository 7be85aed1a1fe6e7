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

package ext

import (
	"testing"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/types"
	"github.com/stretchr/testify/assert"
)

func TestNewTransformList(t *testing.T) {
	fac := ast.NewExprFactory()
	var nextID int64
	idGen := func() int64 {
		nextID++
		return nextID
	}

	rangeExpr := fac.NewIdent(idGen(), "nums")
	transformExpr := fac.NewIdent(idGen(), "x")
	result := NewTransformList(fac, idGen, rangeExpr, "x", nil, transformExpr)

	assert.Equal(t, ast.ComprehensionKind, result.Kind())
	comp := result.AsComprehension()
	assert.Equal(t, "x", comp.IterVar())
	assert.Equal(t, ast.AccumulatorName, comp.AccuVar())
	assert.Equal(t, ast.ListKind, comp.AccuInit().Kind())
}

func TestNewTransformMap(t *testing.T) {
	fac := ast.NewExprFactory()
	var nextID int64
	idGen := func() int64 {
		nextID++
		return nextID
	}

	rangeExpr := fac.NewIdent(idGen(), "nums")
	transformExpr := fac.NewLiteral(idGen(), types.Int(1))
	filterExpr := fac.NewLiteral(idGen(), types.True)
	result := NewTransformMap(fac, idGen, rangeExpr, "x", filterExpr, transformExpr)

	assert.Equal(t, ast.ComprehensionKind, result.Kind())
	comp := result.AsComprehension()
	assert.Equal(t, ast.MapKind, comp.AccuInit().Kind())
	step := comp.LoopStep().AsCall()
	assert.Equal(t, "_?_:_", step.FunctionName())
}
