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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/types/ref"
)

// Print renders e as a debug string annotated with the type and
// reference information recorded on checked, one of CEL's standard
// diagnostic forms: each subexpression is followed by "~type" and,
// for identifiers and calls that resolved to a declaration, "^name"
// (or "^id1|id2" for a call matching more than one overload).
func Print(e ast.Expr, checked *ast.AST) string {
	p := &debugPrinter{checked: checked}
	var buf strings.Builder
	p.print(&buf, e)
	return buf.String()
}

type debugPrinter struct {
	checked *ast.AST
}

func (p *debugPrinter) print(buf *strings.Builder, e ast.Expr) {
	if e == nil || e.Kind() == ast.UnspecifiedExprKind {
		return
	}
	switch e.Kind() {
	case ast.LiteralKind:
		buf.WriteString(formatLiteral(e.AsLiteral()))
	case ast.IdentKind:
		buf.WriteString(e.AsIdent())
	case ast.SelectKind:
		s := e.AsSelect()
		p.print(buf, s.Operand())
		if s.IsTestOnly() {
			buf.WriteString(".@has(")
			buf.WriteString(s.FieldName())
			buf.WriteString(")")
		} else {
			buf.WriteString(".")
			buf.WriteString(s.FieldName())
		}
	case ast.CallKind:
		c := e.AsCall()
		if c.IsMemberFunction() {
			p.print(buf, c.Target())
			buf.WriteString(".")
			buf.WriteString(c.FunctionName())
		} else {
			buf.WriteString(c.FunctionName())
		}
		buf.WriteString("(")
		for i, arg := range c.Args() {
			if i > 0 {
				buf.WriteString(", ")
			}
			p.print(buf, arg)
		}
		buf.WriteString(")")
	case ast.ListKind:
		l := e.AsList()
		opt := map[int]bool{}
		for _, idx := range l.OptionalIndices() {
			opt[int(idx)] = true
		}
		buf.WriteString("[")
		for i, elem := range l.Elements() {
			if i > 0 {
				buf.WriteString(", ")
			}
			if opt[i] {
				buf.WriteString("?")
			}
			p.print(buf, elem)
		}
		buf.WriteString("]")
	case ast.MapKind:
		buf.WriteString("{")
		for i, entry := range e.AsMap().Entries() {
			if i > 0 {
				buf.WriteString(", ")
			}
			me := entry.AsMapEntry()
			if me.IsOptional() {
				buf.WriteString("?")
			}
			p.print(buf, me.Key())
			buf.WriteString(": ")
			p.print(buf, me.Value())
		}
		buf.WriteString("}")
	case ast.StructKind:
		s := e.AsStruct()
		buf.WriteString(s.TypeName())
		buf.WriteString("{")
		for i, field := range s.Fields() {
			if i > 0 {
				buf.WriteString(", ")
			}
			sf := field.AsStructField()
			if sf.IsOptional() {
				buf.WriteString("?")
			}
			buf.WriteString(sf.Name())
			buf.WriteString(": ")
			p.print(buf, sf.Value())
		}
		buf.WriteString("}")
	case ast.ComprehensionKind:
		c := e.AsComprehension()
		buf.WriteString("__comprehension__(")
		buf.WriteString(c.IterVar())
		buf.WriteString(", ")
		p.print(buf, c.IterRange())
		buf.WriteString(", ")
		buf.WriteString(c.AccuVar())
		buf.WriteString(", ")
		p.print(buf, c.AccuInit())
		buf.WriteString(", ")
		p.print(buf, c.LoopCondition())
		buf.WriteString(", ")
		p.print(buf, c.LoopStep())
		buf.WriteString(", ")
		p.print(buf, c.Result())
		buf.WriteString(")")
	}
	p.adorn(buf, e.ID())
}

// adorn appends the type/reference annotations recorded for id, if any.
func (p *debugPrinter) adorn(buf *strings.Builder, id int64) {
	if p.checked == nil {
		return
	}
	if t := p.checked.GetType(id); t != nil {
		buf.WriteString("~")
		buf.WriteString(t.String())
	}
	info, found := p.checked.GetRef(id)
	if !found {
		return
	}
	switch info.Kind {
	case ast.IdentReference:
		buf.WriteString("^")
		buf.WriteString(info.Name)
	case ast.FunctionReference:
		for i, id := range info.OverloadIDs {
			if i == 0 {
				buf.WriteString("^")
			} else {
				buf.WriteString("|")
			}
			buf.WriteString(id)
		}
	}
}

// formatLiteral renders a literal's native Go value the way CEL source
// would spell it: quoted strings, a b"..." prefix for byte strings, and
// a trailing u suffix for unsigned integers.
func formatLiteral(v ref.Val) string {
	switch val := v.Value().(type) {
	case string:
		return strconv.Quote(val)
	case []byte:
		return fmt.Sprintf("b%s", strconv.Quote(string(val)))
	case uint64:
		return fmt.Sprintf("%du", val)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", val)
	}
}
