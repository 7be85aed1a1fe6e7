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

	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/stretchr/testify/assert"
)

func TestListSlice(t *testing.T) {
	lst := intList(1, 2, 3, 4)
	result := listSlice(lst, types.Int(1), types.Int(3))
	assert.Equal(t, intList(2, 3), result)
	assert.True(t, types.IsError(listSlice(lst, types.Int(3), types.Int(1))))
}

func TestListFlatten(t *testing.T) {
	nested := types.NewList([]ref.Val{
		types.Int(1),
		types.NewList([]ref.Val{types.Int(2), types.Int(3)}),
		types.NewList([]ref.Val{types.Int(4)}),
	})
	flat := listFlatten(nested, 1)
	assert.Equal(t, intList(1, 2, 3, 4), flat)
}

func TestListDistinct(t *testing.T) {
	lst := intList(1, 2, 2, 3, 1)
	assert.Equal(t, intList(1, 2, 3), listDistinct(lst))
}

func TestListReverse(t *testing.T) {
	assert.Equal(t, intList(3, 2, 1), listReverse(intList(1, 2, 3)))
}

func TestListSort(t *testing.T) {
	assert.Equal(t, intList(1, 2, 3), listSort(intList(3, 1, 2)))
}

func TestListsLibraryName(t *testing.T) {
	assert.Equal(t, "cel.lib.ext.lists", listsLib{}.LibraryName())
}
