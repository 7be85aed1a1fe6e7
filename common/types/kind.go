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

// Kind identifies which variant of the CelType sum type a Type value is.
type Kind int

const (
	// UnspecifiedKind is the zero value; never produced by NewType.
	UnspecifiedKind Kind = iota
	NullKind
	BoolKind
	IntKind
	UintKind
	DoubleKind
	StringKind
	BytesKind
	DurationKind
	TimestampKind
	ListKind
	MapKind
	StructKind
	EnumKind
	TypeKind
	OptionalKind
	TypeParamKind
	DynKind
	AnyKind
	ErrorKind
	UnknownKind
	OpaqueKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null_type"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case UintKind:
		return "uint"
	case DoubleKind:
		return "double"
	case StringKind:
		return "string"
	case BytesKind:
		return "bytes"
	case DurationKind:
		return "google.protobuf.Duration"
	case TimestampKind:
		return "google.protobuf.Timestamp"
	case ListKind:
		return "list"
	case MapKind:
		return "map"
	case StructKind:
		return "struct"
	case EnumKind:
		return "enum"
	case TypeKind:
		return "type"
	case OptionalKind:
		return "optional_type"
	case TypeParamKind:
		return "type_param"
	case DynKind:
		return "dyn"
	case AnyKind:
		return "any"
	case ErrorKind:
		return "error"
	case UnknownKind:
		return "unknown"
	case OpaqueKind:
		return "opaque"
	}
	return "unspecified"
}
