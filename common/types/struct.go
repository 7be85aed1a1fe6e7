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
	"sort"
	"strings"

	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/common/types/traits"
)

// Struct implements ref.Val and traits.Indexable over a named message
// type's field set. It backs both CEL's map(string, dyn)-like field
// access syntax (`msg.field`) and the `has(msg.field)` presence test,
// without requiring a generated protobuf Go type: field storage and
// typing come from the TypeRegistry the Struct was built against.
type Struct struct {
	typeName string
	fields   map[string]ref.Val
	provider ref.TypeProvider
}

var (
	_ ref.Val           = &Struct{}
	_ traits.Indexable   = &Struct{}
	_ traits.FieldTester = &Struct{}
)

// NewStruct returns a Struct of the named type with the given field
// values. provider resolves field declarations so that Get on a
// declared field that was never set returns the field type's zero
// value rather than an error; IsSet reports false for any unset field.
func NewStruct(typeName string, fields map[string]ref.Val, provider ref.TypeProvider) *Struct {
	return &Struct{typeName: typeName, fields: fields, provider: provider}
}

func (s *Struct) Type() ref.Type { return NewStructType(s.typeName) }

func (s *Struct) Value() interface{} {
	native := make(map[string]interface{}, len(s.fields))
	for k, v := range s.fields {
		native[k] = v.Value()
	}
	return native
}

func (s *Struct) Get(index ref.Val) ref.Val {
	name, ok := index.(String)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: struct.get(%T)", index)
	}
	if v, found := s.fields[string(name)]; found {
		return v
	}
	if s.provider != nil {
		if ft, found := s.provider.FindStructFieldType(s.typeName, string(name)); found {
			if t, ok := ft.Type.(*Type); ok {
				return zeroValueOf(t)
			}
		}
	}
	return NewErrKind(ErrNoSuchField, "no such field: %s", string(name))
}

func (s *Struct) IsSet(field ref.Val) ref.Val {
	name, ok := field.(String)
	if !ok {
		return NewErrKind(ErrNoMatchingOverload, "no such overload: struct.isSet(%T)", field)
	}
	_, found := s.fields[string(name)]
	return Bool(found)
}

func (s *Struct) Equal(other ref.Val) ref.Val {
	o, ok := other.(*Struct)
	if !ok || o.typeName != s.typeName {
		return False
	}
	if len(s.fields) != len(o.fields) {
		return False
	}
	for k, v := range s.fields {
		ov, found := o.fields[k]
		if !found {
			return False
		}
		eq, ok := v.Equal(ov).(Bool)
		if !ok || !bool(eq) {
			return False
		}
	}
	return True
}

func (s *Struct) ConvertToType(typeVal ref.Type) ref.Val {
	switch typeVal {
	case DynType, AnyType:
		return s
	case TypeTypeMeta:
		return NewStructType(s.typeName)
	}
	if typeVal.TypeName() == s.typeName {
		return s
	}
	return NewErr("type conversion error from '%s' to '%s'", s.typeName, typeVal.TypeName())
}

func (s *Struct) ConvertToNative(typeDesc reflect.Type) (interface{}, error) {
	if typeDesc.Kind() == reflect.Map {
		return s.Value(), nil
	}
	if typeDesc.Kind() == reflect.Interface {
		return s.Value(), nil
	}
	return nil, fmt.Errorf("unsupported native conversion from '%s' to %v", s.typeName, typeDesc)
}

func (s *Struct) String() string {
	names := make([]string, 0, len(s.fields))
	for k := range s.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = fmt.Sprintf("%s:%v", k, s.fields[k].Value())
	}
	return s.typeName + "{" + strings.Join(parts, ", ") + "}"
}

// zeroValueOf returns the CEL zero value for a declared field type,
// used when a struct field was never set but is a known message field
// (protobuf field semantics: unset scalar fields read as their zero
// value, not as an error).
func zeroValueOf(t *Type) ref.Val {
	switch t.Kind() {
	case BoolKind:
		return False
	case IntKind:
		return IntZero
	case UintKind:
		return UintZero
	case DoubleKind:
		return DoubleZero
	case StringKind:
		return String("")
	case BytesKind:
		return Bytes(nil)
	case ListKind:
		return NewList(nil)
	case MapKind:
		return NewMap()
	case NullKind:
		return NullValue
	default:
		return NullValue
	}
}
