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

package cel

import (
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
)

// Re-exported so a host application configuring an Env never has to
// import common/types or common/decls directly: the facade is the one
// supported entry point, matching the teacher's own cel/decls.go
// re-export surface.
var (
	DynType       = types.DynType
	AnyType       = types.AnyType
	BoolType      = types.BoolType
	BytesType     = types.BytesType
	DoubleType    = types.DoubleType
	DurationType  = types.DurationType
	IntType       = types.IntType
	NullType      = types.NullType
	StringType    = types.StringType
	TimestampType = types.TimestampType
	TypeType      = types.TypeTypeMeta
	UintType      = types.UintType

	ListType       = types.NewListType
	MapType        = types.NewMapType
	OptionalType   = types.NewOptionalType
	OpaqueType     = types.NewOpaqueType
	TypeParamType  = types.NewTypeParamType
)

// Overload, MemberOverload, and the binding/option helpers below are
// re-exported for the same reason: an extension library or host
// Function(...) call site only ever needs the cel package.
var (
	Overload             = decls.Overload
	MemberOverload       = decls.MemberOverload
	UnaryBinding         = decls.UnaryBinding
	BinaryBinding        = decls.BinaryBinding
	FunctionBinding      = decls.FunctionBinding
	OverloadIsNonStrict  = decls.OverloadIsNonStrict
	OverloadOperandTrait = decls.OverloadOperandTrait
)

// FunctionOpt and OverloadOpt are re-exported for extension library
// signatures that build decls.FunctionDecl/OverloadDecl values through
// the facade rather than importing common/decls.
type (
	FunctionOpt  = decls.FunctionOpt
	OverloadOpt  = decls.OverloadOpt
)
