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

	"github.com/stretchr/testify/assert"
)

func TestSetContains(t *testing.T) {
	assert.True(t, setContains(intList(), intList()))
	assert.True(t, setContains(intList(1), intList()))
	assert.True(t, setContains(intList(1, 2, 3, 4), intList(2, 3)))
	assert.False(t, setContains(intList(1), intList(2)))
}

func TestSetIntersects(t *testing.T) {
	assert.True(t, setIntersects(intList(1), intList(1, 2)))
	assert.False(t, setIntersects(intList(1), intList(2)))
}

func TestSetsLibraryName(t *testing.T) {
	assert.Equal(t, "cel.lib.ext.sets", setsLib{}.LibraryName())
}
