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

	"github.com/exprcel/cel/common/types"
	"github.com/stretchr/testify/assert"
)

func TestOfNonZeroValue(t *testing.T) {
	zero := ofNonZeroValue(types.Int(0))
	assert.Equal(t, types.OptionalNone, zero)

	nonZero := ofNonZeroValue(types.String("hi"))
	opt, ok := nonZero.(*types.Optional)
	assert.True(t, ok)
	assert.Equal(t, types.String("hi"), opt.GetValue())
}

func TestIsZeroValue(t *testing.T) {
	assert.True(t, isZeroValue(types.Int(0)))
	assert.True(t, isZeroValue(types.String("")))
	assert.True(t, isZeroValue(types.Bool(false)))
	assert.False(t, isZeroValue(types.String("x")))
	assert.False(t, isZeroValue(types.Int(1)))
}

func TestOptionalLibraryName(t *testing.T) {
	assert.Equal(t, "cel.lib.ext.optional", optionalLib{}.LibraryName())
	assert.Len(t, optionalLib{}.CompileOptions(), 3)
}
