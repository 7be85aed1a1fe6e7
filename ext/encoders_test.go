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
	"github.com/stretchr/testify/assert"
)

func TestBase64Decode(t *testing.T) {
	encoded := base64Decode(types.String("aGVsbG8="))
	assert.Equal(t, types.String("hello"), encoded)
	assert.True(t, types.IsError(base64Decode(types.String("aGVsbG8"))))
}

func TestBase16Decode(t *testing.T) {
	decoded := base16Decode(types.String("68656c6c6f"))
	assert.Equal(t, types.Bytes("hello"), decoded)
}

func TestJSONRoundTrip(t *testing.T) {
	encoded := jsonEncode(types.String("hi"))
	assert.Equal(t, types.String(`"hi"`), encoded)

	decoded := jsonDecode(types.String(`{"a":1}`))
	assert.False(t, types.IsError(decoded))
}

func TestEncoderLibraryName(t *testing.T) {
	assert.Equal(t, "cel.lib.ext.encoders", encoderLib{}.LibraryName())
}
