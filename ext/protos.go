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

package ext

import (
	"strings"

	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// Protos returns a cel.EnvOption configuring proto.getExt/proto.hasExt.
// The teacher's versions resolve a fully-qualified extension field name
// against a proto2 message's protoreflect.ExtensionType registry; this
// module's struct value model (common/types.Struct, built by C1/C2's
// reflection-based registry rather than a protoreflect descriptor
// index) has no notion of extension fields distinct from ordinary ones,
// so these operate on the extension name's final dotted segment as an
// ordinary struct field name instead — a reduced-fidelity stand-in
// documented rather than silently passed off as the genuine mechanism.
//
//	proto.getExt(<dyn>, <string>) -> <dyn>
//	proto.hasExt(<dyn>, <string>) -> <bool>
func Protos() cel.EnvOption {
	return cel.Lib(protosLib{})
}

type protosLib struct{}

func (protosLib) LibraryName() string { return "cel.lib.ext.protos" }

func (protosLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("proto.getExt",
			cel.Overload("proto_get_ext_dyn_string", []*types.Type{cel.DynType, cel.StringType}, cel.DynType,
				cel.BinaryBinding(func(msg, name ref.Val) ref.Val {
					s, ok := msg.(*types.Struct)
					if !ok {
						return types.NewErrKind(types.ErrUnsupportedType, "proto.getExt: not a message: %v", msg.Type().TypeName())
					}
					field := extensionFieldName(string(name.(types.String)))
					return s.Get(types.String(field))
				}))),
		cel.Function("proto.hasExt",
			cel.Overload("proto_has_ext_dyn_string", []*types.Type{cel.DynType, cel.StringType}, cel.BoolType,
				cel.BinaryBinding(func(msg, name ref.Val) ref.Val {
					s, ok := msg.(*types.Struct)
					if !ok {
						return types.NewErrKind(types.ErrUnsupportedType, "proto.hasExt: not a message: %v", msg.Type().TypeName())
					}
					field := extensionFieldName(string(name.(types.String)))
					return s.IsSet(types.String(field))
				}))),
	}
}

func (protosLib) ProgramOptions() []cel.ProgramOption { return nil }

func extensionFieldName(qualifiedName string) string {
	if i := strings.LastIndex(qualifiedName, "."); i >= 0 {
		return qualifiedName[i+1:]
	}
	return qualifiedName
}
