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
	"math"
	"testing"

	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/stretchr/testify/assert"
)

func intList(elems ...int64) *types.List {
	vals := make([]ref.Val, len(elems))
	for i, e := range elems {
		vals[i] = types.Int(e)
	}
	return types.NewList(vals)
}

func TestAbsInt(t *testing.T) {
	assert.Equal(t, types.Int(5), absInt(types.Int(-5)))
	assert.Equal(t, types.Int(5), absInt(types.Int(5)))
	assert.True(t, types.IsError(absInt(types.Int(math.MinInt64))))
}

func TestSign(t *testing.T) {
	assert.Equal(t, int64(1), sign(5))
	assert.Equal(t, int64(-1), sign(-5))
	assert.Equal(t, int64(0), sign(0))
}

func TestExtremeOf(t *testing.T) {
	greatest := extremeOf(true)
	least := extremeOf(false)
	lst := intList(3, 1, 4, 1, 5)
	assert.Equal(t, types.Int(5), greatest(lst))
	assert.Equal(t, types.Int(1), least(lst))
	assert.True(t, types.IsError(greatest(intList())))
}

func TestMathLibraryName(t *testing.T) {
	assert.Equal(t, "cel.lib.ext.math", mathLib{}.LibraryName())
}
