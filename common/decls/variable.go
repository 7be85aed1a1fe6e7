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

import (
	"fmt"

	"github.com/exprcel/cel/common/types"
)

// NewVariable builds a variable declaration of the given name and type,
// applying opts in order.
func NewVariable(name string, t *types.Type, opts ...VariableOpt) (*VariableDecl, error) {
	v := &VariableDecl{name: name, varType: t}
	var err error
	for _, opt := range opts {
		v, err = opt(v)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
	}
	return v, nil
}

// VariableDecl names a single identifier and its declared type.
type VariableDecl struct {
	name    string
	varType *types.Type

	declarationDisabled bool
}

// Name returns the variable's declared name.
func (v *VariableDecl) Name() string { return v.name }

// Type returns the variable's declared type.
func (v *VariableDecl) Type() *types.Type { return v.varType }

// IsDeclarationDisabled reports that the variable's name should be
// withheld from the checker's symbol table (spec §4's `exclude_vars`
// library subsetting), though this module's standard library declares
// no variables and so never sets this.
func (v *VariableDecl) IsDeclarationDisabled() bool { return v.declarationDisabled }

// DeclarationEquals reports whether v and other declare the same name
// and type, ignoring any constant value.
func (v *VariableDecl) DeclarationEquals(other *VariableDecl) bool {
	return v.Name() == other.Name() && types.IsExactMatch(v.Type(), other.Type())
}

// VariableOpt configures a VariableDecl during NewVariable.
type VariableOpt func(*VariableDecl) (*VariableDecl, error)

// DisableVariableDeclaration withholds the variable's name from the
// checker's symbol table.
func DisableVariableDeclaration(value bool) VariableOpt {
	return func(v *VariableDecl) (*VariableDecl, error) {
		v.declarationDisabled = value
		return v, nil
	}
}
