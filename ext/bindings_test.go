// Copyright 2022 Google LLC
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

func TestNewBind(t *testing.T) {
	fac := ast.NewExprFactory()
	var nextID int64
	idGen := func() int64 {
		nextID++
		return nextID
	}

	varExpr := fac.NewLiteral(idGen(), types.Int(1))
	resultExpr := fac.NewIdent(idGen(), "x")
	bound := NewBind(fac, idGen, "x", varExpr, resultExpr)

	call := bound.AsCall()
	assert.Equal(t, celBindFunction, call.FunctionName())
	assert.False(t, call.IsMemberFunction())
	assert.Len(t, call.Args(), 3)
	assert.Equal(t, ast.IdentKind, call.Args()[0].Kind())
	assert.Equal(t, "x", call.Args()[0].AsIdent())
}
