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

// OffsetRange captures the [Start, Stop) byte offsets of an expression
// within its source text.
type OffsetRange struct {
	Start int32
	Stop  int32
}

// SourceInfo carries the source-level metadata the parser records
// alongside the desugared Expr tree: per-id byte offsets (for error
// location rendering) and the macro-call overlay (spec §3's
// "macro_calls source overlay") that lets the unparser print
// `[1].exists(i, i > 0)` instead of the desugared comprehension form.
type SourceInfo struct {
	syntax      string
	description string
	lineOffsets []int32
	offsetRanges map[int64]OffsetRange
	macroCalls  map[int64]Expr
}

// NewSourceInfo returns an empty SourceInfo tagged with a description
// (typically the source's Name()) for error messages.
func NewSourceInfo(description string) *SourceInfo {
	return &SourceInfo{
		description:  description,
		offsetRanges: make(map[int64]OffsetRange),
		macroCalls:   make(map[int64]Expr),
	}
}

// Description returns the human-readable source name.
func (s *SourceInfo) Description() string {
	if s == nil {
		return ""
	}
	return s.description
}

// SetLineOffsets records the byte offset each source line begins at,
// indexed from the second line (LineOffsets()[0] is where line 2 starts).
// The parser computes this once per source text; common.LocationByOffset
// uses it to translate an expression's recorded byte offset into a
// diagnostic line/column.
func (s *SourceInfo) SetLineOffsets(offsets []int32) {
	s.lineOffsets = offsets
}

// LineOffsets returns the per-line byte offset table set by
// SetLineOffsets, or nil if none was recorded.
func (s *SourceInfo) LineOffsets() []int32 {
	if s == nil {
		return nil
	}
	return s.lineOffsets
}

// SetOffsetRange records the byte range an expression id occupied in
// the original source text.
func (s *SourceInfo) SetOffsetRange(id int64, r OffsetRange) {
	s.offsetRanges[id] = r
}

// GetOffsetRange returns the byte range recorded for an expression id.
func (s *SourceInfo) GetOffsetRange(id int64) (OffsetRange, bool) {
	if s == nil {
		return OffsetRange{}, false
	}
	r, found := s.offsetRanges[id]
	return r, found
}

// SetMacroCall records that the expression rooted at id was produced by
// expanding a macro invocation, preserving call as the pre-expansion
// AST for the unparser to render instead of the desugared form.
func (s *SourceInfo) SetMacroCall(id int64, call Expr) {
	s.macroCalls[id] = call
}

// GetMacroCall returns the recorded pre-expansion macro call for id, if
// any.
func (s *SourceInfo) GetMacroCall(id int64) (Expr, bool) {
	if s == nil {
		return nil, false
	}
	call, found := s.macroCalls[id]
	return call, found
}

// ClearMacroCall removes the macro-call record for id, along with every
// other recorded snapshot that transitively embeds a node with id: a
// rewrite overwrites the live node in place rather than copying it, so
// any macro-call snapshot sharing that node by id is left pointing at
// stale syntax unless it is invalidated too. Optimizer passes call this
// whenever a rewrite invalidates a macro-call's desugared subtree, so
// the unparser falls back to printing the rewritten form rather than
// stale syntax.
func (s *SourceInfo) ClearMacroCall(id int64) {
	delete(s.macroCalls, id)
	for callID, call := range s.macroCalls {
		if referencesID(call, id) {
			delete(s.macroCalls, callID)
		}
	}
}

// referencesID reports whether expr or any of its descendants (in its
// current, possibly-rewritten shape) carries id.
func referencesID(expr Expr, id int64) bool {
	found := false
	PreOrderVisit(expr, NewExprVisitor(func(e Expr) {
		if e.ID() == id {
			found = true
		}
	}))
	return found
}

// MacroCalls returns the full id-to-call overlay.
func (s *SourceInfo) MacroCalls() map[int64]Expr {
	if s == nil {
		return nil
	}
	return s.macroCalls
}
