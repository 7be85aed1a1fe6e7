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
	"reflect"

	"github.com/exprcel/cel/common/types/ref"
	structpb "google.golang.org/protobuf/types/known/structpb"
)

// Null is the singleton CEL `null` value.
type Null struct{}

// NullValue is the sole instance of Null.
var NullValue = Null{}

var _ ref.Val = Null{}

func (n Null) Type() ref.Type { return NullType }

func (n Null) Value() interface{} { return nil }

func (n Null) Equal(other ref.Val) ref.Val {
	return Bool(other.Type() == NullType)
}

func (n Null) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case NullType, DynType, AnyType:
		return n
	case StringType:
		return String("null")
	case TypeTypeMeta:
		return NullType
	}
	return NewErr("type conversion error from 'null_type' to '%s'", typeVal.TypeName())
}

func (n Null) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.Ptr:
		return (*structpb.Value)(nil), nil
	case reflect.Interface:
		return nil, nil
	}
	return nil, NewErr("unsupported native conversion from 'null_type' to %v", typeDesc).(*Err)
}

func (n Null) String() string { return "null" }
