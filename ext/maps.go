// Copyright 2025 Google LLC
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
	"github.com/exprcel/cel/cel"
	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
)

// Maps returns a cel.EnvOption configuring a map-merge function. Keys from
// the right-hand map overwrite already-present keys in the left-hand map.
//
//	map(K, V).merge(map(K, V)) -> map(K, V)
func Maps() cel.EnvOption {
	return cel.Lib(mapsLib{})
}

type mapsLib struct{}

func (mapsLib) LibraryName() string { return "cel.lib.ext.maps" }

func (mapsLib) CompileOptions() []cel.EnvOption {
	mapType := cel.MapType(cel.TypeParamType("K"), cel.TypeParamType("V"))
	return []cel.EnvOption{
		cel.Function("merge",
			cel.MemberOverload("map_merge", []*types.Type{mapType, mapType}, mapType,
				cel.BinaryBinding(mapMerge))),
	}
}

func (mapsLib) ProgramOptions() []cel.ProgramOption { return nil }

func mapMerge(lhs, rhs ref.Val) ref.Val {
	left := lhs.(*types.Map)
	right := rhs.(*types.Map)
	result := types.NewMap()
	for it := left.Iterator(); it.HasNext() == types.True; {
		k := it.Next()
		if err := result.Insert(k, left.Get(k)); err != nil {
			return types.NewErrKind(types.ErrInvalidArgument, "%s", err.Error())
		}
	}
	for it := right.Iterator(); it.HasNext() == types.True; {
		k := it.Next()
		if err := result.Insert(k, right.Get(k)); err != nil {
			return types.NewErrKind(types.ErrInvalidArgument, "%s", err.Error())
		}
	}
	return result
}
