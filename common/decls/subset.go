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

package decls

// Subset returns a copy of f restricted by opts, letting a library
// subsetting configuration narrow a standard-library function down to
// a chosen set of overloads (spec §4's `include_functions` /
// `exclude_functions` serialization fields) without mutating f.
func (f *FunctionDecl) Subset(opts ...SubsetOpt) *FunctionDecl {
	out := &FunctionDecl{
		name:                f.name,
		overloads:           make(map[string]*OverloadDecl, len(f.overloads)),
		singleton:           f.singleton,
		disableTypeGuards:   f.disableTypeGuards,
		declarationDisabled: f.declarationDisabled,
	}
	for id, o := range f.overloads {
		out.overloads[id] = o
	}
	for _, opt := range opts {
		out = opt(out)
	}
	return out
}

// SubsetOpt narrows a FunctionDecl.Subset() call to a restricted
// overload set.
type SubsetOpt func(*FunctionDecl) *FunctionDecl

// IncludeOverloads keeps only the named overload ids.
func IncludeOverloads(overloadIDs ...string) SubsetOpt {
	keep := toSet(overloadIDs)
	return func(f *FunctionDecl) *FunctionDecl {
		for id := range f.overloads {
			if !keep[id] {
				delete(f.overloads, id)
			}
		}
		return f
	}
}

// ExcludeOverloads removes the named overload ids, keeping the rest.
func ExcludeOverloads(overloadIDs ...string) SubsetOpt {
	drop := toSet(overloadIDs)
	return func(f *FunctionDecl) *FunctionDecl {
		for id := range drop {
			delete(f.overloads, id)
		}
		return f
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
