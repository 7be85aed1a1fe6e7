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

package interpreter

import (
	"strings"

	"github.com/exprcel/cel/common/types"
	"github.com/exprcel/cel/common/types/ref"
	"github.com/exprcel/cel/common/types/traits"
)

// Qualifier narrows an already-resolved value by one field name, map
// key, list index, or presence test. A qualifier chain is how a
// NamespacedAttribute or RelativeAttribute represents a Select/Index
// suffix without re-walking the AST at evaluation time.
type Qualifier interface {
	// ID is the expression id that produced this qualifier, used to
	// localize a fault raised while applying it.
	ID() int64

	// Qualify narrows obj, returning the narrowed value or a *types.Err
	// (no-such-field/no-such-key) or *types.Unknown.
	Qualify(vars Activation, obj ref.Val) ref.Val
}

// valueQualifier implements the String/Int/Uint/Bool qualifier variants
// uniformly: every runtime aggregate that supports qualification (list,
// map, struct) does so through traits.Indexer, so a single Get call
// serves field lookup, map indexing, and list indexing alike.
type valueQualifier struct {
	id    int64
	value ref.Val
}

// NewStringQualifier builds a field-name or string-map-key qualifier.
func NewStringQualifier(id int64, name string) Qualifier {
	return &valueQualifier{id: id, value: types.String(name)}
}

// NewIntQualifier builds a list-index or int-map-key qualifier.
func NewIntQualifier(id int64, i int64) Qualifier {
	return &valueQualifier{id: id, value: types.Int(i)}
}

// NewUintQualifier builds a uint-map-key qualifier.
func NewUintQualifier(id int64, u uint64) Qualifier {
	return &valueQualifier{id: id, value: types.Uint(u)}
}

// NewBoolQualifier builds a bool-map-key qualifier.
func NewBoolQualifier(id int64, b bool) Qualifier {
	return &valueQualifier{id: id, value: types.Bool(b)}
}

func (q *valueQualifier) ID() int64 { return q.id }

func (q *valueQualifier) Qualify(vars Activation, obj ref.Val) ref.Val {
	if types.IsError(obj) || types.IsUnknown(obj) {
		return obj
	}
	if opt, ok := obj.(*types.Optional); ok {
		if !bool(opt.HasValue().(types.Bool)) {
			return types.OptionalNone
		}
		inner := q.Qualify(vars, opt.GetValue())
		if types.IsError(inner) || types.IsUnknown(inner) {
			return inner
		}
		return types.NewOptional(inner)
	}
	indexer, ok := obj.(traits.Indexer)
	if !ok {
		return withNodeID(types.NewErrKind(types.ErrNoMatchingOverload, "no such overload: qualify %s", obj.Type().TypeName()), q.id)
	}
	return withNodeID(indexer.Get(q.value), q.id)
}

// presenceTestQualifier wraps a field/key qualifier to test for presence
// rather than retrieve the value: `has(a.b)` and `a.?b` both resolve the
// attribute up to the operand, then apply this qualifier instead of the
// inner one.
type presenceTestQualifier struct {
	id    int64
	inner *valueQualifier
}

// NewPresenceTestQualifier wraps inner as a presence test.
func NewPresenceTestQualifier(id int64, inner Qualifier) Qualifier {
	vq, _ := inner.(*valueQualifier)
	return &presenceTestQualifier{id: id, inner: vq}
}

func (q *presenceTestQualifier) ID() int64 { return q.id }

func (q *presenceTestQualifier) Qualify(vars Activation, obj ref.Val) ref.Val {
	if types.IsError(obj) || types.IsUnknown(obj) {
		return obj
	}
	if tester, ok := obj.(traits.FieldTester); ok {
		return tester.IsSet(q.inner.value)
	}
	if container, ok := obj.(traits.Container); ok {
		return container.Contains(q.inner.value)
	}
	return types.NewErrKind(types.ErrNoMatchingOverload, "no such overload: has(%s)", obj.Type().TypeName())
}

// Attribute is a plan-time description of a variable reference plus the
// chain of qualifiers (Select/Index) applied to it, resolved lazily
// against an Activation at evaluation time (spec §4.5).
type Attribute interface {
	ID() int64

	// AddQualifier returns a new Attribute with q appended to the
	// qualifier chain.
	AddQualifier(q Qualifier) Attribute

	// Resolve evaluates the attribute against vars, returning the
	// qualified value or a fault value (*types.Err/*types.Unknown).
	Resolve(vars Activation) ref.Val
}

// namespacedAttribute is a variable reference whose root name the
// checker (or container resolution, for a parse-only AST) has already
// settled to an ordered list of fully-qualified candidates: the first
// one bound in the Activation wins.
type namespacedAttribute struct {
	id         int64
	candidates []string
	qualifiers []Qualifier
}

// NewNamespacedAttribute builds an Attribute over candidateNames, tried
// in order against the Activation.
func NewNamespacedAttribute(id int64, candidateNames []string) Attribute {
	return &namespacedAttribute{id: id, candidates: candidateNames}
}

func (a *namespacedAttribute) ID() int64 { return a.id }

func (a *namespacedAttribute) AddQualifier(q Qualifier) Attribute {
	return &namespacedAttribute{id: a.id, candidates: a.candidates, qualifiers: append(append([]Qualifier{}, a.qualifiers...), q)}
}

func (a *namespacedAttribute) Resolve(vars Activation) ref.Val {
	for _, name := range a.candidates {
		if raw, found := resolveActivation(vars, name); found {
			return applyQualifiers(vars, raw, a.qualifiers)
		}
	}
	return missingAttributeErr(a.id, a.candidates)
}

// maybeAttribute represents an unchecked reference whose root identifier
// could resolve to any of several namespace-qualified variables: each
// candidate is tried as an alternative NamespacedAttribute, in the order
// the checker's container-resolution rules would prefer.
type maybeAttribute struct {
	id    int64
	attrs []Attribute
}

// NewMaybeAttribute builds an Attribute trying each of name's
// container-qualified candidates, in order, as the root variable.
func NewMaybeAttribute(id int64, candidateNames []string) Attribute {
	attrs := make([]Attribute, len(candidateNames))
	for i, name := range candidateNames {
		attrs[i] = &namespacedAttribute{id: id, candidates: []string{name}}
	}
	return &maybeAttribute{id: id, attrs: attrs}
}

func (a *maybeAttribute) ID() int64 { return a.id }

func (a *maybeAttribute) AddQualifier(q Qualifier) Attribute {
	next := make([]Attribute, len(a.attrs))
	for i, attr := range a.attrs {
		next[i] = attr.AddQualifier(q)
	}
	return &maybeAttribute{id: a.id, attrs: next}
}

func (a *maybeAttribute) Resolve(vars Activation) ref.Val {
	var last ref.Val
	for _, attr := range a.attrs {
		v := attr.Resolve(vars)
		if !types.IsError(v) {
			return v
		}
		last = v
	}
	if last == nil {
		return missingAttributeErr(a.id, nil)
	}
	return last
}

// relativeAttribute qualifies the result of evaluating an arbitrary
// Interpretable (a select or index whose operand is itself not a plain
// variable reference, e.g. `f(x).field`).
type relativeAttribute struct {
	id         int64
	operand    Interpretable
	qualifiers []Qualifier
}

// NewRelativeAttribute builds an Attribute over operand's evaluated
// result.
func NewRelativeAttribute(id int64, operand Interpretable) Attribute {
	return &relativeAttribute{id: id, operand: operand}
}

func (a *relativeAttribute) ID() int64 { return a.id }

func (a *relativeAttribute) AddQualifier(q Qualifier) Attribute {
	return &relativeAttribute{id: a.id, operand: a.operand, qualifiers: append(append([]Qualifier{}, a.qualifiers...), q)}
}

func (a *relativeAttribute) Resolve(vars Activation) ref.Val {
	base := a.operand.Eval(vars)
	if types.IsError(base) || types.IsUnknown(base) {
		return base
	}
	return applyQualifiers(vars, base, a.qualifiers)
}

// missingAttribute always raises AttributeNotFound: it marks a
// reference the planner could not resolve to any real variable or
// relative expression, deferring the fault to evaluation time so that a
// non-strict operator (e.g. `false && missing.field`) still has a
// chance to absorb it.
type missingAttribute struct {
	id    int64
	names []string
}

// NewMissingAttribute builds an Attribute that always resolves to an
// AttributeNotFound fault naming the candidates that were considered.
func NewMissingAttribute(id int64, names []string) Attribute {
	return &missingAttribute{id: id, names: names}
}

func (a *missingAttribute) ID() int64 { return a.id }

func (a *missingAttribute) AddQualifier(q Qualifier) Attribute { return a }

func (a *missingAttribute) Resolve(vars Activation) ref.Val {
	return missingAttributeErr(a.id, a.names)
}

func missingAttributeErr(id int64, names []string) ref.Val {
	if len(names) == 0 {
		return withNodeID(types.NewErrKind(types.ErrAttributeNotFound, "no such attribute"), id)
	}
	return withNodeID(types.NewErrKind(types.ErrAttributeNotFound, "no such attribute(s): %s", strings.Join(names, ", ")), id)
}

// withNodeID tags an Err with the expression id that raised it, leaving
// any other value (including Unknown, which has no id field) unchanged.
func withNodeID(val ref.Val, id int64) ref.Val {
	if e, ok := val.(*types.Err); ok {
		return e.WithID(id)
	}
	return val
}

// resolveActivation looks up name in vars. Only a ref.Val binding is
// returned: a binding holding any other Go value is reported as not
// found, and neither this package nor the cel package converts
// host-native values into ref.Val.
func resolveActivation(vars Activation, name string) (ref.Val, bool) {
	raw, found := vars.ResolveName(name)
	if !found {
		return nil, false
	}
	if v, ok := raw.(ref.Val); ok {
		return v, true
	}
	return nil, false
}

func applyQualifiers(vars Activation, obj ref.Val, qualifiers []Qualifier) ref.Val {
	cur := obj
	for _, q := range qualifiers {
		cur = q.Qualify(vars, cur)
		if types.IsError(cur) || types.IsUnknown(cur) {
			return cur
		}
	}
	return cur
}
