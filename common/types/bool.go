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
	"fmt"
	"reflect"

	"github.com/exprcel/cel/common/types/ref"
)

// Bool implements ref.Val over a native Go bool.
type Bool bool

const (
	True  = Bool(true)
	False = Bool(false)
)

var _ ref.Val = Bool(false)

func (b Bool) Type() ref.Type { return BoolType }

func (b Bool) Value() interface{} { return bool(b) }

func (b Bool) Equal(other ref.Val) ref.Val {
	o, ok := other.(Bool)
	if !ok {
		return NewErr("no such overload: bool.equal(%T)", other)
	}
	return Bool(b == o)
}

func (b Bool) Compare(other ref.Val) ref.Val {
	o, ok := other.(Bool)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: bool.compare(%T)", other)
	}
	if b == o {
		return IntZero
	}
	if !bool(b) && bool(o) {
		return IntNegOne
	}
	return IntOne
}

func (b Bool) Negate() ref.Val { return !b }

func (b Bool) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case BoolType, DynType, AnyType:
		return b
	case StringType:
		return String(fmt.Sprintf("%t", bool(b)))
	case TypeTypeMeta:
		return BoolType
	}
	return NewErr("type conversion error from 'bool' to '%s'", typeVal.TypeName())
}

func (b Bool) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	switch typeDesc.Kind() {
	case reflect.Bool:
		return bool(b), nil
	case reflect.Interface:
		return bool(b), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from 'bool' to %v", typeDesc)
}
