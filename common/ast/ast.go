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

package ast

import (
	"github.com/exprcel/cel/common/types"
)

// AST bundles the root Expr together with its checked-type overlay, its
// resolved-reference overlay, and the source-level metadata needed to
// unparse macro-call syntax back out of its desugared comprehension
// form (spec §3: "typed overlay" and "macro_calls source overlay").
//
// An AST produced by the parser alone has empty type/reference maps; a
// checked AST (produced by running the checker) has both populated for
// every sub-expression id the checker visited.
type AST struct {
	expr       Expr
	sourceInfo *SourceInfo
	typeMap    map[int64]*types.Type
	refMap     map[int64]*ReferenceInfo
}

// NewAST returns a parsed (not yet checked) AST wrapping expr and info.
func NewAST(expr Expr, info *SourceInfo) *AST {
	return &AST{
		expr:       expr,
		sourceInfo: info,
		typeMap:    make(map[int64]*types.Type),
		refMap:     make(map[int64]*ReferenceInfo),
	}
}

// NewCheckedAST returns a copy of parsed carrying the given type and
// reference overlays, as produced by the checker (spec §4.4).
func NewCheckedAST(parsed *AST, typeMap map[int64]*types.Type, refMap map[int64]*ReferenceInfo) *AST {
	return &AST{
		expr:       parsed.expr,
		sourceInfo: parsed.sourceInfo,
		typeMap:    typeMap,
		refMap:     refMap,
	}
}

// Expr returns the root expression node.
func (a *AST) Expr() Expr {
	if a == nil {
		return nil
	}
	return a.expr
}

// SourceInfo returns the macro-call and source-position metadata.
func (a *AST) SourceInfo() *SourceInfo {
	if a == nil {
		return nil
	}
	return a.sourceInfo
}

// IsChecked reports whether the checker has populated the type overlay.
func (a *AST) IsChecked() bool {
	return a != nil && len(a.typeMap) > 0
}

// TypeMap returns the expression-id to checked-Type overlay.
func (a *AST) TypeMap() map[int64]*types.Type {
	if a == nil {
		return nil
	}
	return a.typeMap
}

// ReferenceMap returns the expression-id to ReferenceInfo overlay.
func (a *AST) ReferenceMap() map[int64]*ReferenceInfo {
	if a == nil {
		return nil
	}
	return a.refMap
}

// GetType returns the checked type of the expression with the given id,
// or types.DynType if the AST is unchecked or the id was never visited.
func (a *AST) GetType(id int64) *types.Type {
	if a == nil {
		return types.DynType
	}
	if t, found := a.typeMap[id]; found {
		return t
	}
	return types.DynType
}

// SetType records the checked type of the expression with the given id.
func (a *AST) SetType(id int64, t *types.Type) {
	a.typeMap[id] = t
}

// GetRef returns the resolved reference for the expression with the
// given id, if the checker recorded one.
func (a *AST) GetRef(id int64) (*ReferenceInfo, bool) {
	if a == nil {
		return nil, false
	}
	r, found := a.refMap[id]
	return r, found
}

// SetReference records the resolved reference for the expression with
// the given id.
func (a *AST) SetReference(id int64, r *ReferenceInfo) {
	a.refMap[id] = r
}

// ReferenceKind distinguishes the two things an identifier or call site
// can resolve to once the checker/container-resolution pass has run.
type ReferenceKind int

const (
	// IdentReference indicates the expression resolved to a variable
	// or enum-constant name (possibly with a constant Value attached).
	IdentReference ReferenceKind = iota
	// FunctionReference indicates the expression resolved to one or
	// more function overload ids.
	FunctionReference
)

// ReferenceInfo is the checker's resolution record for an identifier or
// function call expression: the fully qualified name that container
// resolution settled on, and either a constant value (for enum
// constants) or the set of matching overload ids (spec §4.4, §4.7).
type ReferenceInfo struct {
	Kind      ReferenceKind
	Name      string
	OverloadIDs []string
	Value     interface{}
}

// NewIdentReference returns a ReferenceInfo for a resolved identifier,
// optionally carrying a constant value (non-nil only for enum constants
// that the checker inlines at resolution time).
func NewIdentReference(name string, value interface{}) *ReferenceInfo {
	return &ReferenceInfo{Kind: IdentReference, Name: name, Value: value}
}

// NewFunctionReference returns a ReferenceInfo for a resolved function
// call carrying the candidate overload ids the checker considered
// applicable.
func NewFunctionReference(overloadIDs ...string) *ReferenceInfo {
	return &ReferenceInfo{Kind: FunctionReference, OverloadIDs: overloadIDs}
}

// AddOverload appends an overload id to a function reference, used when
// the checker widens a call's candidate set (e.g. after macro expansion
// reveals additional applicable overloads).
func (r *ReferenceInfo) AddOverload(overloadID string) {
	for _, id := range r.OverloadIDs {
		if id == overloadID {
			return
		}
	}
	r.OverloadIDs = append(r.OverloadIDs, overloadID)
}
