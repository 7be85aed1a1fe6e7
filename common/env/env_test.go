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

package env

import (
	"testing"

	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
)

func TestTypeDescPrimitivesRoundTrip(t *testing.T) {
	for name, want := range primitiveTypeDescs {
		td := NewTypeDesc(name)
		got, err := td.AsCELType(nil)
		if err != nil {
			t.Fatalf("AsCELType(%q) failed: %v", name, err)
		}
		if !types.IsExactMatch(got, want) {
			t.Errorf("AsCELType(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestTypeDescListMapOptional(t *testing.T) {
	listTd := NewTypeDesc("list", NewTypeDesc("string"))
	got, err := listTd.AsCELType(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !types.IsExactMatch(got, types.NewListType(types.StringType)) {
		t.Errorf("list(string) = %v", got)
	}

	mapTd := NewTypeDesc("map", NewTypeDesc("string"), NewTypeDesc("int"))
	got, err = mapTd.AsCELType(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !types.IsExactMatch(got, types.NewMapType(types.StringType, types.IntType)) {
		t.Errorf("map(string, int) = %v", got)
	}

	optTd := NewTypeDesc("optional_type", NewTypeDesc("int"))
	got, err = optTd.AsCELType(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !types.IsExactMatch(got, types.NewOptionalType(types.IntType)) {
		t.Errorf("optional_type(int) = %v", got)
	}
}

func TestTypeDescTypeParam(t *testing.T) {
	td := NewTypeParam("A")
	got, err := td.AsCELType(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind() != types.TypeParamKind || got.TypeName() != "A" {
		t.Errorf("NewTypeParam(A) = %v", got)
	}
}

func TestTypeDescOpaqueFallsBackToOpaqueType(t *testing.T) {
	td := NewTypeDesc("vector", NewTypeDesc("int"))
	got, err := td.AsCELType(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind() != types.OpaqueKind || got.TypeName() != "vector" {
		t.Errorf("vector(int) = %v", got)
	}
}

func TestAsCELVariableResolvesType(t *testing.T) {
	v := NewVariable("x", NewTypeDesc("int"))
	vd, err := v.AsCELVariable(nil)
	if err != nil {
		t.Fatal(err)
	}
	if vd.Name() != "x" || !types.IsExactMatch(vd.Type(), types.IntType) {
		t.Errorf("AsCELVariable = %+v", vd)
	}
}

func TestAsCELVariableRejectsMissingType(t *testing.T) {
	v := &Variable{Name: "x"}
	if _, err := v.AsCELVariable(nil); err == nil {
		t.Fatal("expected error for variable with no type")
	}
}

func TestOverloadAsFunctionOptionGlobalAndMember(t *testing.T) {
	global := NewOverload("add_int_int", []*TypeDesc{NewTypeDesc("int"), NewTypeDesc("int")}, NewTypeDesc("int"))
	opt, err := global.AsFunctionOption(nil)
	if err != nil {
		t.Fatal(err)
	}
	fn, err := decls.NewFunction("add", opt)
	if err != nil {
		t.Fatal(err)
	}
	if len(fn.OverloadDecls()) != 1 || fn.OverloadDecls()[0].IsMemberFunction() {
		t.Errorf("expected one non-member overload")
	}

	member := NewMemberOverload("string_size", NewTypeDesc("string"), nil, NewTypeDesc("int"))
	opt, err = member.AsFunctionOption(nil)
	if err != nil {
		t.Fatal(err)
	}
	fn, err = decls.NewFunction("size", opt)
	if err != nil {
		t.Fatal(err)
	}
	if !fn.OverloadDecls()[0].IsMemberFunction() {
		t.Errorf("expected a member overload")
	}
}

func TestConfigAddVariableAndFunctionDeclsRoundTrip(t *testing.T) {
	v, err := decls.NewVariable("x", types.IntType)
	if err != nil {
		t.Fatal(err)
	}
	fn, err := decls.NewFunction("double", decls.Overload("double_int", []*types.Type{types.IntType}, types.IntType))
	if err != nil {
		t.Fatal(err)
	}
	cfg := NewConfig().AddVariableDecls(v).AddFunctionDecls(fn)
	if len(cfg.Variables) != 1 || cfg.Variables[0].Name != "x" {
		t.Fatalf("AddVariableDecls produced %+v", cfg.Variables)
	}
	if len(cfg.Functions) != 1 || cfg.Functions[0].Name != "double" {
		t.Fatalf("AddFunctionDecls produced %+v", cfg.Functions)
	}
	if cfg.Functions[0].Overloads[0].ID != "double_int" {
		t.Fatalf("serialized overload id = %q", cfg.Functions[0].Overloads[0].ID)
	}
}

func TestLibrarySubsetNilPermitsEverything(t *testing.T) {
	var lib *LibrarySubset
	fn, err := decls.NewFunction("f", decls.Overload("f_int", []*types.Type{types.IntType}, types.IntType))
	if err != nil {
		t.Fatal(err)
	}
	got, ok := lib.SubsetFunction(fn)
	if !ok || got != fn {
		t.Fatalf("nil LibrarySubset should pass fn through unchanged")
	}
	if !lib.SubsetMacro("has") {
		t.Fatal("nil LibrarySubset should permit every macro")
	}
}

func TestLibrarySubsetIncludeFunctionsFiltersOverloads(t *testing.T) {
	fn, err := decls.NewFunction("f",
		decls.Overload("f_int", []*types.Type{types.IntType}, types.IntType),
		decls.Overload("f_string", []*types.Type{types.StringType}, types.IntType))
	if err != nil {
		t.Fatal(err)
	}
	lib := &LibrarySubset{
		IncludeFunctions: []*Function{{Name: "f", Overloads: []*Overload{{ID: "f_int"}}}},
	}
	got, ok := lib.SubsetFunction(fn)
	if !ok {
		t.Fatal("expected f to be included")
	}
	if len(got.OverloadDecls()) != 1 || got.OverloadDecls()[0].ID() != "f_int" {
		t.Fatalf("expected only f_int to survive subsetting, got %+v", got.OverloadDecls())
	}

	other, err := decls.NewFunction("g", decls.Overload("g_int", []*types.Type{types.IntType}, types.IntType))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lib.SubsetFunction(other); ok {
		t.Fatal("g should be excluded when IncludeFunctions names only f")
	}
}

func TestLibrarySubsetDisableMacros(t *testing.T) {
	lib := &LibrarySubset{DisableMacros: true}
	if lib.SubsetMacro("has") {
		t.Fatal("expected macros to be disabled")
	}
}

func TestExtensionGetVersion(t *testing.T) {
	latest := NewExtension("strings", 4294967295)
	v, err := latest.GetVersion()
	if err != nil || v != 4294967295 {
		t.Fatalf("GetVersion() = %d, %v", v, err)
	}
	pinned := NewExtension("strings", 2)
	v, err = pinned.GetVersion()
	if err != nil || v != 2 {
		t.Fatalf("GetVersion() = %d, %v", v, err)
	}
}
