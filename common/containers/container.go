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

// Package containers resolves qualified names within the namespace
// configured for a CEL environment.
package containers

import (
	"fmt"
	"strings"

	"github.com/exprcel/cel/common/ast"
)

var (
	// DefaultContainer has an empty container name.
	DefaultContainer *Container = nil

	noAliases = make(map[string]string)
)

// NewContainer creates a new Container by applying opts in order.
func NewContainer(opts ...ContainerOption) (*Container, error) {
	var c *Container
	var err error
	for _, opt := range opts {
		c, err = opt(c)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Container holds an optional qualified namespace name and a set of
// simple-name aliases, and implements the unqualified-name resolution
// order spec §4 requires for variables, functions, and type names.
type Container struct {
	name    string
	aliases map[string]string
}

// Extend creates a new Container carrying c's settings plus opts.
func (c *Container) Extend(opts ...ContainerOption) (*Container, error) {
	if c == nil {
		return NewContainer(opts...)
	}
	ext := &Container{name: c.Name()}
	if len(c.aliasSet()) > 0 {
		aliasSet := make(map[string]string, len(c.aliasSet()))
		for k, v := range c.aliasSet() {
			aliasSet[k] = v
		}
		ext.aliases = aliasSet
	}
	var err error
	for _, opt := range opts {
		ext, err = opt(ext)
		if err != nil {
			return nil, err
		}
	}
	return ext, nil
}

// Name returns the fully-qualified namespace name of the container.
func (c *Container) Name() string {
	if c == nil {
		return ""
	}
	return c.name
}

// ResolveCandidateNames returns the candidate fully-qualified names for
// an identifier in C++-style resolution order: most-qualified (deepest
// nesting within the container) to least-qualified, with any configured
// alias appended last. A name with a leading '.' is treated as already
// absolute and cannot be shadowed by the container.
//
// Given container "a.b.c.M.N" and name "R.s", in order:
//
//	a.b.c.M.N.R.s
//	a.b.c.M.R.s
//	a.b.c.R.s
//	a.b.R.s
//	a.R.s
//	R.s
func (c *Container) ResolveCandidateNames(name string) []string {
	if strings.HasPrefix(name, ".") {
		qn := name[1:]
		return c.candidatesWithAlias([]string{qn}, qn)
	}
	if c.Name() == "" {
		return c.candidatesWithAlias([]string{name}, name)
	}

	nextCont := c.name
	candidates := []string{nextCont + "." + name}
	for i := strings.LastIndex(nextCont, "."); i >= 0; i = strings.LastIndex(nextCont, ".") {
		nextCont = nextCont[:i]
		candidates = append(candidates, nextCont+"."+name)
	}
	candidates = append(candidates, name)
	return c.candidatesWithAlias(candidates, name)
}

// Aliases returns the container's simple-name-to-qualified-name alias
// table, keyed by the alias exported for environment serialization
// (spec §6's `container (name, abbreviations, aliases)` field).
func (c *Container) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliasSet()))
	for k, v := range c.aliasSet() {
		out[k] = v
	}
	return out
}

func (c *Container) aliasSet() map[string]string {
	if c == nil || c.aliases == nil {
		return noAliases
	}
	return c.aliases
}

func (c *Container) candidatesWithAlias(candidates []string, name string) []string {
	if len(c.aliasSet()) == 0 {
		return candidates
	}
	alias, found := c.aliasSet()[name]
	if found {
		return append(candidates, alias)
	}
	return candidates
}

// ContainerOption configures a Container.
type ContainerOption func(*Container) (*Container, error)

// Aliases derives a simple-name alias from the last dot-delimited
// segment of each qualified name given.
//
// Aliases let programs referring to several deeply-nested namespaces
// avoid repeating the full path:
//
//	Aliases("qual.pkg.version.ObjTypeName", "alt.container.ver.FieldTypeName")
//	// lets the program write ObjTypeName{field: FieldTypeName{value: ...}}
//
// Resolved aliases are searched after all container-qualified
// candidates, and the container's own name always wins a collision
// with an alias.
func Aliases(qualifiedNames ...string) ContainerOption {
	return func(c *Container) (*Container, error) {
		for _, qn := range qualifiedNames {
			ind := strings.LastIndex(qn, ".")
			if ind <= 0 || ind >= len(qn)-1 {
				return nil, fmt.Errorf(
					"invalid qualified name: %s, wanted name of the form 'qualified.name'", qn)
			}
			alias := qn[ind+1:]
			var err error
			c, err = AliasAs(qn, alias)(c)
			if err != nil {
				return nil, err
			}
		}
		return c, nil
	}
}

// AliasAs associates a fully-qualified name with an explicit alias.
func AliasAs(qualifiedName, alias string) ContainerOption {
	return func(c *Container) (*Container, error) {
		if len(alias) <= 0 || strings.Contains(alias, ".") {
			return nil, fmt.Errorf(
				"alias names must be non-empty and simple (not qualified): alias=%s", alias)
		}
		ind := strings.LastIndex(qualifiedName, ".")
		if ind <= 0 || ind == len(qualifiedName)-1 {
			return nil, fmt.Errorf("aliases must refer to qualified names: %s", qualifiedName)
		}
		aliasRef, found := c.aliasSet()[alias]
		if found {
			return nil, fmt.Errorf(
				"alias collides with existing reference: name=%s, alias=%s, existing=%s",
				qualifiedName, alias, aliasRef)
		}
		if strings.HasPrefix(c.Name(), alias+".") || c.Name() == alias {
			return nil, fmt.Errorf(
				"alias collides with container name: name=%s, alias=%s, container=%s",
				qualifiedName, alias, c.Name())
		}
		if c == nil {
			c = &Container{}
		}
		if c.aliases == nil {
			c.aliases = make(map[string]string)
		}
		c.aliases[alias] = qualifiedName
		return c, nil
	}
}

// Name sets the fully-qualified namespace name of the Container.
func Name(name string) ContainerOption {
	return func(c *Container) (*Container, error) {
		if c.Name() == name {
			return c, nil
		}
		if c == nil {
			return &Container{name: name}, nil
		}
		c.name = name
		return c, nil
	}
}

// ToQualifiedName converts a chain of Ident/Select nodes into a
// dotted name, reporting false if e contains anything else (a call, an
// index expression, and so on are not valid type-name syntax).
func ToQualifiedName(e ast.Expr) (string, bool) {
	switch e.Kind() {
	case ast.IdentKind:
		return e.AsIdent(), true
	case ast.SelectKind:
		sel := e.AsSelect()
		if sel.IsTestOnly() {
			return "", false
		}
		if qual, found := ToQualifiedName(sel.Operand()); found {
			return qual + "." + sel.FieldName(), true
		}
	}
	return "", false
}
