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

import "github.com/exprcel/cel/common/types"

// Copy returns a deep copy of an AST, including its source info and
// macro-call overlay. Every optimizer pass (spec §4.8) takes ownership
// of a Copy rather than mutating its input AST in place.
func Copy(a *AST) *AST {
	fac := NewExprFactory()
	out := &AST{
		expr:       fac.CopyExpr(a.Expr()),
		sourceInfo: CopySourceInfo(a.SourceInfo()),
		typeMap:    make(map[int64]*types.Type, len(a.typeMap)),
		refMap:     make(map[int64]*ReferenceInfo, len(a.refMap)),
	}
	for id, t := range a.typeMap {
		out.typeMap[id] = t
	}
	for id, r := range a.refMap {
		ref := *r
		ref.OverloadIDs = append([]string(nil), r.OverloadIDs...)
		out.refMap[id] = &ref
	}
	return out
}

// CopySourceInfo returns a deep copy of a SourceInfo's offset and
// macro-call overlays.
func CopySourceInfo(info *SourceInfo) *SourceInfo {
	if info == nil {
		return NewSourceInfo("")
	}
	fac := NewExprFactory()
	out := NewSourceInfo(info.description)
	out.syntax = info.syntax
	out.lineOffsets = append([]int32(nil), info.lineOffsets...)
	for id, r := range info.offsetRanges {
		out.offsetRanges[id] = r
	}
	for id, call := range info.macroCalls {
		out.macroCalls[id] = fac.CopyExpr(call)
	}
	return out
}

// MaxID returns the largest expression id present anywhere in the AST,
// including macro-call bodies, so a subsequent id generator can be
// seeded past every existing id and never collide.
func MaxID(a *AST) int64 {
	var max int64
	visit := NewExprVisitor(func(e Expr) {
		if e.ID() > max {
			max = e.ID()
		}
	})
	PostOrderVisit(a.Expr(), visit)
	for id, call := range a.SourceInfo().MacroCalls() {
		if id > max {
			max = id
		}
		PostOrderVisit(call, visit)
	}
	return max
}

// ExprVisitor is called once per visited Expr node.
type ExprVisitor func(Expr)

// NewExprVisitor wraps a plain visitor function for use with
// PreOrderVisit/PostOrderVisit.
func NewExprVisitor(v func(Expr)) ExprVisitor {
	return ExprVisitor(v)
}

// PreOrderVisit walks expr and its descendants, invoking visitor on
// each node before its children.
func PreOrderVisit(expr Expr, visitor ExprVisitor) {
	if expr == nil {
		return
	}
	visitor(expr)
	visitChildren(expr, func(e Expr) { PreOrderVisit(e, visitor) })
}

// PostOrderVisit walks expr and its descendants, invoking visitor on
// each node after its children. Expr.RenumberIDs hands out ids in this
// same order (spec §4.8: "dense, monotonic, post-order").
func PostOrderVisit(expr Expr, visitor ExprVisitor) {
	if expr == nil {
		return
	}
	visitChildren(expr, func(e Expr) { PostOrderVisit(e, visitor) })
	visitor(expr)
}

func visitChildren(expr Expr, visit func(Expr)) {
	switch expr.Kind() {
	case CallKind:
		c := expr.AsCall()
		if c.IsMemberFunction() {
			visit(c.Target())
		}
		for _, a := range c.Args() {
			visit(a)
		}
	case ComprehensionKind:
		c := expr.AsComprehension()
		visit(c.IterRange())
		visit(c.AccuInit())
		visit(c.LoopCondition())
		visit(c.LoopStep())
		visit(c.Result())
	case ListKind:
		for _, e := range expr.AsList().Elements() {
			visit(e)
		}
	case MapKind:
		for _, entry := range expr.AsMap().Entries() {
			me := entry.AsMapEntry()
			visit(me.Key())
			visit(me.Value())
		}
	case SelectKind:
		visit(expr.AsSelect().Operand())
	case StructKind:
		for _, f := range expr.AsStruct().Fields() {
			visit(f.AsStructField().Value())
		}
	}
}

// NewIDGenerator returns an IDGenerator that hands out ids starting
// just past seed, each call incrementing by one. The optimizer driver
// seeds this with MaxID(ast) before renumbering a rewritten subtree so
// freshly synthesized nodes never collide with surviving ones.
func NewIDGenerator(seed int64) func() int64 {
	next := seed
	return func() int64 {
		next++
		return next
	}
}

// ReplaceSubtree overwrites the node at id within root with
// replacement, returning true if a node with that id was found. This
// is the AST mutator's primitive rewrite operation (spec §4.8); callers
// are responsible for invalidating any SourceInfo macro-call entries
// the replaced subtree made stale (see SourceInfo.ClearMacroCall).
func ReplaceSubtree(root Expr, id int64, replacement Expr) bool {
	if root == nil {
		return false
	}
	if root.ID() == id {
		root.SetKindCase(replacement)
		return true
	}
	found := false
	visitChildren(root, func(e Expr) {
		if !found && e != nil {
			found = ReplaceSubtree(e, id, replacement)
		}
	})
	return found
}
