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
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/exprcel/cel/common/containers"
	"github.com/exprcel/cel/common/decls"
	"github.com/exprcel/cel/common/types"
)

// EnvConfig is the textual, YAML-equivalent form of an Env's declared
// surface (spec §6's "Environment serialization"): name, description,
// container, the opt-in extension libraries, the variables and
// functions declared beyond the standard library, and stdlib
// subsetting directives.
type EnvConfig struct {
	Name        string           `yaml:"name,omitempty"`
	Description string           `yaml:"description,omitempty"`
	Container   *ContainerConfig `yaml:"container,omitempty"`
	Extensions  []ExtensionConfig `yaml:"extensions,omitempty"`
	Variables   []VariableConfig `yaml:"variables,omitempty"`
	Functions   []FunctionConfig `yaml:"functions,omitempty"`
	Stdlib      *StdlibConfig    `yaml:"stdlib,omitempty"`
}

// ContainerConfig is the exported form of a containers.Container.
type ContainerConfig struct {
	Name          string        `yaml:"name,omitempty"`
	Abbreviations []string      `yaml:"abbreviations,omitempty"`
	Aliases       []AliasConfig `yaml:"aliases,omitempty"`
}

// AliasConfig names one simple-name alias for a fully qualified name.
// Abbreviations (the Aliases ContainerOption, which derives the alias
// from the qualified name's last segment) are not written as
// AliasConfig entries; they round-trip through
// ContainerConfig.Abbreviations instead.
type AliasConfig struct {
	Alias         string `yaml:"alias,omitempty"`
	QualifiedName string `yaml:"qualified_name"`
}

// ExtensionConfig selects a named, opt-in extension library (spec
// §4.4's "canonical extension libraries"), e.g. {name: strings,
// version: 2}.
type ExtensionConfig struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version,omitempty"`
}

// VariableConfig declares one global-scope variable by name and type
// string (Type.String()'s format: a primitive keyword, or
// list(T)/map(K,V)/optional(T)/type(T)/opaque(T1, T2, ...)).
type VariableConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// FunctionConfig names a function and its overload set. A function
// selector for stdlib subsetting uses the same shape with Overloads
// restricted to the `id` field.
type FunctionConfig struct {
	Name      string           `yaml:"name"`
	Overloads []OverloadConfig `yaml:"overloads,omitempty"`
}

// OverloadConfig is the exported form of one decls.OverloadDecl.
type OverloadConfig struct {
	ID       string   `yaml:"id"`
	Member   bool     `yaml:"member,omitempty"`
	Args     []string `yaml:"args,omitempty"`
	Result   string   `yaml:"result,omitempty"`
}

// StdlibConfig selects a subset of the standard library's macros and
// functions. disabled names the whole standard library; disable_macros
// names only the comprehension macros. The section is carried through
// LoadEnvConfig and Marshal only: Export does not fill it and
// ToEnvOptions does not apply it.
type StdlibConfig struct {
	Disabled         bool     `yaml:"disabled,omitempty"`
	DisableMacros    bool     `yaml:"disable_macros,omitempty"`
	IncludeMacros    []string `yaml:"include_macros,omitempty"`
	ExcludeMacros    []string `yaml:"exclude_macros,omitempty"`
	IncludeFunctions []string `yaml:"include_functions,omitempty"`
	ExcludeFunctions []string `yaml:"exclude_functions,omitempty"`
}

// Export renders e's custom declarations (the surface beyond the
// stdlib seed) into the textual environment form. Rebuilding an Env
// from the result and exporting again reproduces the same EnvConfig
// up to declared ordering, which Export itself normalizes by sorting
// names (spec §8's `env_export(env_build(env_export(E))) =
// env_export(E)`).
func Export(e *Env, name, description string) *EnvConfig {
	cfg := &EnvConfig{Name: name, Description: description}
	if e.container.Name() != "" || len(e.container.Aliases()) > 0 {
		cfg.Container = exportContainer(e.container)
	}
	for _, libName := range e.Libraries() {
		cfg.Extensions = append(cfg.Extensions, ExtensionConfig{Name: libName})
	}
	sort.Slice(cfg.Extensions, func(i, j int) bool { return cfg.Extensions[i].Name < cfg.Extensions[j].Name })

	for _, v := range e.CustomVariables() {
		cfg.Variables = append(cfg.Variables, VariableConfig{Name: v.Name(), Type: v.Type().String()})
	}
	sort.Slice(cfg.Variables, func(i, j int) bool { return cfg.Variables[i].Name < cfg.Variables[j].Name })

	for name, fn := range e.CustomFunctions() {
		cfg.Functions = append(cfg.Functions, exportFunction(name, fn))
	}
	sort.Slice(cfg.Functions, func(i, j int) bool { return cfg.Functions[i].Name < cfg.Functions[j].Name })

	return cfg
}

func exportContainer(c *containers.Container) *ContainerConfig {
	cc := &ContainerConfig{Name: c.Name()}
	aliases := c.Aliases()
	simpleNames := make([]string, 0, len(aliases))
	for alias := range aliases {
		simpleNames = append(simpleNames, alias)
	}
	sort.Strings(simpleNames)
	for _, alias := range simpleNames {
		qn := aliases[alias]
		derived := qn[strings.LastIndex(qn, ".")+1:]
		if derived == alias {
			cc.Abbreviations = append(cc.Abbreviations, qn)
			continue
		}
		cc.Aliases = append(cc.Aliases, AliasConfig{Alias: alias, QualifiedName: qn})
	}
	sort.Strings(cc.Abbreviations)
	return cc
}

func exportFunction(name string, fn *decls.FunctionDecl) FunctionConfig {
	fc := FunctionConfig{Name: name}
	for _, o := range fn.OverloadDecls() {
		oc := OverloadConfig{ID: o.ID(), Member: o.IsMemberFunction(), Result: o.ResultType().String()}
		for _, a := range o.ArgTypes() {
			oc.Args = append(oc.Args, a.String())
		}
		fc.Overloads = append(fc.Overloads, oc)
	}
	sort.Slice(fc.Overloads, func(i, j int) bool { return fc.Overloads[i].ID < fc.Overloads[j].ID })
	return fc
}

// Marshal renders cfg as YAML bytes.
func (cfg *EnvConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}

// LoadEnvConfig parses the YAML-equivalent textual environment form
// spec §6 describes.
func LoadEnvConfig(data []byte) (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cel: parsing environment config: %w", err)
	}
	return cfg, nil
}

// LibraryFactory resolves an ExtensionConfig's name to the Library it
// selects; a host registers the extension libraries it links in (see
// package ext) under the names it wants EnvConfig.Extensions to
// select by.
type LibraryFactory func(version int) (Library, error)

// ToEnvOptions converts cfg into the EnvOptions that reconstruct the
// environment it describes, resolving each Extensions[] entry through
// libs. cfg.Stdlib is not read: none of its directives, `disabled`
// included, is applied, and the returned options always build on the
// full standard library.
func (cfg *EnvConfig) ToEnvOptions(libs map[string]LibraryFactory) ([]EnvOption, error) {
	var opts []EnvOption
	if cfg.Container != nil {
		copts, err := containerOptions(cfg.Container)
		if err != nil {
			return nil, err
		}
		opts = append(opts, Container(cfg.Container.Name, copts...))
	}
	for _, ext := range cfg.Extensions {
		factory, found := libs[ext.Name]
		if !found {
			return nil, fmt.Errorf("cel: unresolved extension library %q", ext.Name)
		}
		lib, err := factory(ext.Version)
		if err != nil {
			return nil, fmt.Errorf("cel: extension library %q: %w", ext.Name, err)
		}
		opts = append(opts, Lib(lib))
	}
	for _, v := range cfg.Variables {
		t, err := parseTypeName(v.Type)
		if err != nil {
			return nil, fmt.Errorf("cel: variable %q: %w", v.Name, err)
		}
		opts = append(opts, Variable(v.Name, t))
	}
	for _, fn := range cfg.Functions {
		fopts, err := functionOptions(fn)
		if err != nil {
			return nil, fmt.Errorf("cel: function %q: %w", fn.Name, err)
		}
		opts = append(opts, Function(fn.Name, fopts...))
	}
	return opts, nil
}

func containerOptions(cc *ContainerConfig) ([]containers.ContainerOption, error) {
	var opts []containers.ContainerOption
	if len(cc.Abbreviations) > 0 {
		opts = append(opts, containers.Aliases(cc.Abbreviations...))
	}
	for _, a := range cc.Aliases {
		opts = append(opts, containers.AliasAs(a.QualifiedName, a.Alias))
	}
	return opts, nil
}

func functionOptions(fn FunctionConfig) ([]decls.FunctionOpt, error) {
	opts := make([]decls.FunctionOpt, 0, len(fn.Overloads))
	for _, o := range fn.Overloads {
		args := make([]*types.Type, len(o.Args))
		for i, a := range o.Args {
			t, err := parseTypeName(a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		result, err := parseTypeName(o.Result)
		if err != nil {
			return nil, err
		}
		if o.Member {
			opts = append(opts, decls.MemberOverload(o.ID, args, result))
		} else {
			opts = append(opts, decls.Overload(o.ID, args, result))
		}
	}
	return opts, nil
}

var primitiveTypeNames = map[string]*types.Type{
	"null_type":                types.NullType,
	"bool":                     types.BoolType,
	"int":                      types.IntType,
	"uint":                     types.UintType,
	"double":                   types.DoubleType,
	"string":                   types.StringType,
	"bytes":                    types.BytesType,
	"google.protobuf.Duration":  types.DurationType,
	"google.protobuf.Timestamp": types.TimestampType,
	"dyn":                      types.DynType,
	"any":                      types.AnyType,
	"type":                     types.TypeTypeMeta,
}

// parseTypeName reverses Type.String(): a primitive keyword, or one of
// list(T), map(K, V), optional(T), type(T), name(T1, T2, ...) for an
// opaque type. A bare name outside that set is treated as a struct
// type reference, since struct/enum/type-param names are otherwise
// indistinguishable from an opaque type with no parameters in the
// string form.
func parseTypeName(s string) (*types.Type, error) {
	s = strings.TrimSpace(s)
	if t, found := primitiveTypeNames[s]; found {
		return t, nil
	}
	open := strings.Index(s, "(")
	if open < 0 {
		return types.NewStructType(s), nil
	}
	if !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("unbalanced type parameters in %q", s)
	}
	name := strings.TrimSpace(s[:open])
	params, err := splitTopLevelParams(s[open+1 : len(s)-1])
	if err != nil {
		return nil, err
	}
	parsed := make([]*types.Type, len(params))
	for i, p := range params {
		parsed[i], err = parseTypeName(p)
		if err != nil {
			return nil, err
		}
	}
	switch name {
	case "list":
		if len(parsed) != 1 {
			return nil, fmt.Errorf("list type wants 1 parameter, got %d in %q", len(parsed), s)
		}
		return types.NewListType(parsed[0]), nil
	case "map":
		if len(parsed) != 2 {
			return nil, fmt.Errorf("map type wants 2 parameters, got %d in %q", len(parsed), s)
		}
		return types.NewMapType(parsed[0], parsed[1]), nil
	case "optional":
		if len(parsed) != 1 {
			return nil, fmt.Errorf("optional type wants 1 parameter, got %d in %q", len(parsed), s)
		}
		return types.NewOptionalType(parsed[0]), nil
	case "type":
		if len(parsed) != 1 {
			return nil, fmt.Errorf("type(T) wants 1 parameter, got %d in %q", len(parsed), s)
		}
		return types.NewTypeType(parsed[0]), nil
	default:
		return types.NewOpaqueType(name, parsed...), nil
	}
}

// splitTopLevelParams splits s on commas that are not nested inside
// another type's parameter list, e.g. "map(string, int), int" stays
// intact as a single element when s itself is one level deeper.
func splitTopLevelParams(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in %q", s)
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced parentheses in %q", s)
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts, nil
}
