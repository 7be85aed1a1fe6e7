// Copyright 2020 Google LLC
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

	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/stretchr/testify/assert"
)

func stringList(elems ...string) *types.List {
	vals := make([]ref.Val, len(elems))
	for i, e := range elems {
		vals[i] = types.String(e)
	}
	return types.NewList(vals)
}

func TestStrCharAt(t *testing.T) {
	assert.Equal(t, types.String("e"), strCharAt(types.String("hello"), types.Int(1)))
	assert.Equal(t, types.String(""), strCharAt(types.String("hello"), types.Int(5)))
	assert.True(t, types.IsError(strCharAt(types.String("hello"), types.Int(-1))))
}

func TestStrIndexOf(t *testing.T) {
	assert.Equal(t, types.Int(2), strIndexOf(types.String("hello"), types.String("l"), types.Int(0)))
	assert.Equal(t, types.Int(-1), strIndexOf(types.String("hello"), types.String("z"), types.Int(0)))
	assert.Equal(t, types.Int(3), strIndexOf(types.String("hello"), types.String("l"), types.Int(3)))
}

func TestStrLastIndexOf(t *testing.T) {
	assert.Equal(t, types.Int(3), strLastIndexOf(types.String("hello"), types.String("l")))
	assert.Equal(t, types.Int(-1), strLastIndexOf(types.String("hello"), types.String("z")))
}

func TestStrJoin(t *testing.T) {
	assert.Equal(t, types.String(""), strJoin(stringList(), ","))
	assert.Equal(t, types.String("a,b,c"), strJoin(stringList("a", "b", "c"), ","))
}

func TestStrSubstring(t *testing.T) {
	assert.Equal(t, types.String("ell"), strSubstring(types.String("hello"), types.Int(1), types.Int(4)))
	assert.True(t, types.IsError(strSubstring(types.String("hello"), types.Int(3), types.Int(1))))
}

func TestStringsLibraryName(t *testing.T) {
	assert.Equal(t, "cel.lib.ext.strings", stringsLib{}.LibraryName())
}
