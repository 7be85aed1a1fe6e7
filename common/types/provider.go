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
	"time"

	"github.com/exprcel/cel/common/types/ref"
	"github.com/stoewer/go-strcase"
	durationpb "google.golang.org/protobuf/types/known/durationpb"
	structpb "google.golang.org/protobuf/types/known/structpb"
	timestamppb "google.golang.org/protobuf/types/known/timestamppb"
)

// Registry is the default ref.TypeRegistry: a host-populated catalog of
// struct field layouts and enum constants, plus the dynamic-to-CEL
// value adapter every evaluation uses to lift host-language values.
//
// Field names registered here may be supplied to RegisterStructType in
// either camelCase or snake_case; lookups normalize through
// go-strcase so a struct built from a protobuf-style snake_case
// descriptor and one built from a hand-authored camelCase map agree on
// field access.
type Registry struct {
	structs map[string]map[string]ref.FieldType
	enums   map[string]map[string]int64
}

var (
	_ ref.TypeProvider = (*Registry)(nil)
	_ ref.TypeAdapter  = (*Registry)(nil)
	_ ref.TypeRegistry = (*Registry)(nil)
)

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		structs: make(map[string]map[string]ref.FieldType),
		enums:   make(map[string]map[string]int64),
	}
}

func normalizeField(name string) string {
	return strcase.LowerCamelCase(name)
}

// RegisterStructType declares a struct type's field layout.
func (r *Registry) RegisterStructType(typeName string, fields map[string]ref.FieldType) error {
	if _, exists := r.structs[typeName]; exists {
		return fmt.Errorf("struct type already registered: %s", typeName)
	}
	normalized := make(map[string]ref.FieldType, len(fields))
	for name, ft := range fields {
		normalized[normalizeField(name)] = ft
	}
	r.structs[typeName] = normalized
	return nil
}

// RegisterEnum declares an enum type's name-to-value table.
func (r *Registry) RegisterEnum(typeName string, values map[string]int64) {
	r.enums[typeName] = values
}

func (r *Registry) FindStructType(typeName string) (ref.Type, bool) {
	if _, found := r.structs[typeName]; found {
		return NewStructType(typeName), true
	}
	return nil, false
}

func (r *Registry) FindStructFieldType(typeName, fieldName string) (ref.FieldType, bool) {
	fields, found := r.structs[typeName]
	if !found {
		return ref.FieldType{}, false
	}
	ft, found := fields[normalizeField(fieldName)]
	return ft, found
}

func (r *Registry) FindStructFieldNames(typeName string) ([]string, bool) {
	fields, found := r.structs[typeName]
	if !found {
		return nil, false
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	return names, true
}

func (r *Registry) EnumValue(enumName string) (ref.Val, bool) {
	// enumName is "<type>.<constant>"; split on the final dot.
	for i := len(enumName) - 1; i >= 0; i-- {
		if enumName[i] == '.' {
			typeName, constName := enumName[:i], enumName[i+1:]
			if values, found := r.enums[typeName]; found {
				if v, found := values[constName]; found {
					return Int(v), true
				}
			}
			return nil, false
		}
	}
	return nil, false
}

// NativeToValue adapts a Go-native value into the corresponding CEL
// ref.Val, recursing into slices/maps/pointers. This is the boundary
// every host binding crosses to hand variables and function arguments
// into evaluation.
func (r *Registry) NativeToValue(value interface{}) ref.Val {
	if value == nil {
		return NullValue
	}
	switch v := value.(type) {
	case ref.Val:
		return v
	case bool:
		return Bool(v)
	case int:
		return Int(v)
	case int32:
		return Int(v)
	case int64:
		return Int(v)
	case uint:
		return Uint(v)
	case uint32:
		return Uint(v)
	case uint64:
		return Uint(v)
	case float32:
		return Double(v)
	case float64:
		return Double(v)
	case string:
		return String(v)
	case []byte:
		return Bytes(v)
	case time.Duration:
		return durationOf(v)
	case time.Time:
		return timestampOf(v)
	case *durationpb.Duration:
		return durationOf(v.AsDuration())
	case *timestamppb.Timestamp:
		return timestampOf(v.AsTime())
	case *structpb.Value:
		return r.nativeStructpbValue(v)
	case error:
		return NewErr("%s", v.Error())
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return NullValue
		}
		return r.NativeToValue(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		elems := make([]ref.Val, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elems[i] = r.NativeToValue(rv.Index(i).Interface())
		}
		return NewList(elems)
	case reflect.Map:
		m := NewMap()
		for _, key := range rv.MapKeys() {
			_ = m.Insert(r.NativeToValue(key.Interface()), r.NativeToValue(rv.MapIndex(key).Interface()))
		}
		return m
	case reflect.Struct:
		return r.nativeReflectStruct(rv)
	}
	return NewErrKind(ErrUnsupportedType, "unsupported native type: %T", value)
}

func (r *Registry) nativeStructpbValue(v *structpb.Value) ref.Val {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return NullValue
	case *structpb.Value_BoolValue:
		return Bool(k.BoolValue)
	case *structpb.Value_NumberValue:
		return Double(k.NumberValue)
	case *structpb.Value_StringValue:
		return String(k.StringValue)
	case *structpb.Value_ListValue:
		elems := make([]ref.Val, len(k.ListValue.Values))
		for i, e := range k.ListValue.Values {
			elems[i] = r.nativeStructpbValue(e)
		}
		return NewList(elems)
	case *structpb.Value_StructValue:
		m := NewMap()
		for name, val := range k.StructValue.Fields {
			_ = m.Insert(String(name), r.nativeStructpbValue(val))
		}
		return m
	}
	return NullValue
}

func (r *Registry) nativeReflectStruct(rv reflect.Value) ref.Val {
	typeName := rv.Type().Name()
	fields := make(map[string]ref.Val, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		sf := rv.Type().Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}
		fields[normalizeField(sf.Name)] = r.NativeToValue(rv.Field(i).Interface())
	}
	return NewStruct(typeName, fields, r)
}
