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

package checker

import "github.com/exprcel/cel/common/types"

// substituteType walks t, replacing any bound type parameter with its
// binding in subst and leaving unbound parameters as dyn. Overload
// result types carry the generic parameter names declared on their
// argument types (e.g. list(T) -> T for `_[_]`); once an overload's
// argument types have unified against the call site's argument types,
// the bindings collected in subst let the checker report the concrete
// result type instead of the bare parameter.
func substituteType(subst types.Substitution, t *types.Type) *types.Type {
	if t == nil {
		return types.DynType
	}
	if t.Kind() == types.TypeParamKind {
		if bound, found := subst[t.TypeName()]; found {
			return substituteType(subst, bound)
		}
		return types.DynType
	}
	params := t.Parameters()
	if len(params) == 0 {
		return t
	}
	newParams := make([]*types.Type, len(params))
	changed := false
	for i, p := range params {
		newParams[i] = substituteType(subst, p)
		changed = changed || newParams[i] != p
	}
	if !changed {
		return t
	}
	switch t.Kind() {
	case types.ListKind:
		return types.NewListType(newParams[0])
	case types.MapKind:
		return types.NewMapType(newParams[0], newParams[1])
	case types.OptionalKind:
		return types.NewOptionalType(newParams[0])
	case types.TypeKind:
		return types.NewTypeType(newParams[0])
	case types.OpaqueKind:
		return types.NewOpaqueType(t.TypeName(), newParams...)
	default:
		return t
	}
}
