// Copyright 2018 Google LLC
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

package types

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/exprcel/cel/common/types/ref"
)

// Bytes implements ref.Val over a raw byte string.
type Bytes []byte

var _ ref.Val = Bytes(nil)

func (b Bytes) Type() ref.Type { return BytesType }

func (b Bytes) Value() interface{} { return []byte(b) }

func (b Bytes) Add(other ref.Val) ref.Val {
	o, ok := other.(Bytes)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: bytes.add(%T)", other)
	}
	out := make(Bytes, 0, len(b)+len(o))
	out = append(out, b...)
	out = append(out, o...)
	return out
}

func (b Bytes) Compare(other ref.Val) ref.Val {
	o, ok := other.(Bytes)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: bytes.compare(%T)", other)
	}
	return Int(bytes.Compare(b, o))
}

func (b Bytes) Equal(other ref.Val) ref.Val {
	o, ok := other.(Bytes)
	if !ok {
		return False
	}
	return Bool(bytes.Equal(b, o))
}

func (b Bytes) Size() ref.Val { return Int(len(b)) }

func (b Bytes) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case BytesType, DynType, AnyType:
		return b
	case StringType:
		return String(string(b))
	case TypeTypeMeta:
		return BytesType
	}
	return NewErr("type conversion error from 'bytes' to '%s'", typeVal.TypeName())
}

func (b Bytes) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.Slice:
		if typeDesc.Elem().Kind() == reflect.Uint8 {
			return []byte(b), nil
		}
	case reflect.String:
		return string(b), nil
	case reflect.Interface:
		return []byte(b), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'bytes' to %v", typeDesc)
}

func (b Bytes) String() string { return string(b) }
