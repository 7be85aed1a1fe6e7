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

package types

import (
	"fmt"
	"reflect"

	"github.com/exprcel/cel/common/types/ref"
)

// Optional implements ref.Val over an optional(T) value: either present
// with a wrapped value, or absent. Optional participates in the
// presence-test/select qualification path used by the `?.` and
// `optMap`/`optFlatMap` extension functions (spec GLOSSARY: optional
// indexing, optional field selection).
type Optional struct {
	hasValue bool
	value    ref.Val
}

var _ ref.Val = &Optional{}

// OptionalNone is the canonical absent optional.
var OptionalNone = &Optional{hasValue: false}

// NewOptional wraps a present value.
func NewOptional(value ref.Val) *Optional {
	return &Optional{hasValue: true, value: value}
}

func (o *Optional) Type() ref.Type { return NewOptionalType(DynType) }

func (o *Optional) Value() interface{} {
	if !o.hasValue {
		return nil
	}
	return o.value.Value()
}

// HasValue reports presence.
func (o *Optional) HasValue() ref.Val { return Bool(o.hasValue) }

// GetValue returns the wrapped value, or an error if absent.
func (o *Optional) GetValue() ref.Val {
	if !o.hasValue {
		return NewErrKind(ErrInvalidArgument, "optional.None() dereferenced")
	}
	return o.value
}

// OrValue returns the wrapped value, or a default if absent.
func (o *Optional) OrValue(def ref.Val) ref.Val {
	if o.hasValue {
		return o.value
	}
	return def
}

// Or returns this optional if present, otherwise the alternate.
func (o *Optional) Or(alt *Optional) *Optional {
	if o.hasValue {
		return o
	}
	return alt
}

func (o *Optional) Equal(other ref.Val) ref.Val {
	oo, ok := other.(*Optional)
	if !ok {
		return False
	}
	if o.hasValue != oo.hasValue {
		return False
	}
	if !o.hasValue {
		return True
	}
	return o.value.Equal(oo.value)
}

func (o *Optional) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case DynType, AnyType:
		return o
	case TypeTypeMeta:
		return NewOptionalType(DynType)
	}
	return NewErr("type conversion error from 'optional_type' to '%s'", typeVal.TypeName())
}

func (o *Optional) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	if !o.hasValue {
		return nil, fmt.Errorf("optional.None() has no native representation")
	}
	return o.value.ConvertToNative(typeDesc)
}

func (o *Optional) String() string {
	if !o.hasValue {
		return "optional.none()"
	}
	return fmt.Sprintf("optional.of(%v)", o.value.Value())
}
