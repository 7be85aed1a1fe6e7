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

func TestRegexCaptureFirst(t *testing.T) {
	result := regexCaptureFirst(types.String("hello world"), types.String("hello(.*)"))
	opt, ok := result.(*types.Optional)
	assert.True(t, ok)
	assert.Equal(t, types.String(" world"), opt.GetValue())
}

func TestRegexCaptureAll(t *testing.T) {
	result := regexCaptureAll(types.String("id:123, id:456"), types.String(`id:\d+`))
	lst, ok := result.(*types.List)
	assert.True(t, ok)
	assert.Equal(t, types.Int(2), lst.Size())
}

func TestRegexReplace(t *testing.T) {
	result := regexReplace("banana", "a", "x", -1)
	assert.Equal(t, types.String("bxnxnx"), result)

	limited := regexReplace("banana", "a", "x", 1)
	assert.Equal(t, types.String("bxnana"), limited)
}

func TestRegexLibraryName(t *testing.T) {
	assert.Equal(t, "cel.lib.ext.regex", regexLib{}.LibraryName())
}
