// Copyright 2025 Google LLC
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
	"github.com/stretchr/testify/assert"
)

func TestMapMerge(t *testing.T) {
	left := types.NewMap()
	_ = left.Insert(types.String("a"), types.Int(1))
	right := types.NewMap()
	_ = right.Insert(types.String("a"), types.Int(2))
	_ = right.Insert(types.String("b"), types.Int(2))

	merged := mapMerge(left, right).(*types.Map)
	assert.Equal(t, types.Int(2), merged.Get(types.String("a")))
	assert.Equal(t, types.Int(2), merged.Get(types.String("b")))
	assert.Equal(t, types.Int(2), merged.Size())
}

func TestMapsLibraryName(t *testing.T) {
	assert.Equal(t, "cel.lib.ext.maps", mapsLib{}.LibraryName())
}
