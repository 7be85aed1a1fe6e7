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

// Package ref declares the runtime Val and Type interfaces every CEL
// value and type variant implements, plus the TypeProvider/TypeAdapter
// boundary a host application supplies for struct-typed values.
package ref

import "reflect"

// Val is the tagged-union contract implemented by every runtime value
// variant (null, bool, int, uint, double, string, bytes, duration,
// timestamp, list, map, optional, struct, type-as-value, error, unknown).
type Val interface {
	// Type returns the value's CelType.
	Type() Type

	// Value returns the raw Go representation backing the value.
	Value() interface{}

	// Equal reports structural equality against other, returning an
	// error value if the two operands are not comparable.
	Equal(other Val) Val

	// ConvertToType attempts the standard CEL conversion to typeVal,
	// returning an error value on failure.
	ConvertToType(typeVal Type) Val

	// ConvertToNative attempts to adapt the value to the requested Go
	// reflect.Type, used at the host-application boundary.
	ConvertToNative(typeDesc reflect.Type) (interface{}, error)
}

// Type is the runtime representation of a CelType, itself a Val so that
// `type(x)` expressions can produce and compare type values.
type Type interface {
	Val

	// TypeName returns the fully qualified type name, e.g. "int",
	// "list", "google.type.Expr".
	TypeName() string
}

// TypeProvider resolves struct types, enum values and field types on
// behalf of the checker and the runtime. It is the narrow interface a
// host's descriptor registry (e.g. a protobuf FileDescriptorSet) must
// satisfy; descriptor *loading* itself is out of scope for this module.
type TypeProvider interface {
	// FindStructType returns the Type for a fully qualified struct name.
	FindStructType(typeName string) (Type, bool)

	// FindStructFieldType returns the field's Type and whether the
	// field supports presence testing.
	FindStructFieldType(typeName, fieldName string) (FieldType, bool)

	// FindStructFieldNames lists the declared fields of a struct type,
	// used to validate Struct construction expressions.
	FindStructFieldNames(typeName string) ([]string, bool)

	// EnumValue returns the numeric value of a qualified enum value name.
	EnumValue(enumName string) (Val, bool)
}

// TypeAdapter converts host-native Go values into CEL Vals.
type TypeAdapter interface {
	NativeToValue(value interface{}) Val
}

// TypeRegistry combines TypeProvider and TypeAdapter with the ability
// to register new struct types at runtime.
type TypeRegistry interface {
	TypeProvider
	TypeAdapter

	// RegisterStructType adds a struct type with named, typed fields to
	// the registry's struct catalog.
	RegisterStructType(typeName string, fields map[string]FieldType) error
}

// FieldType describes a single field of a registered struct type.
type FieldType struct {
	Type             Type
	SupportsPresence bool
}
