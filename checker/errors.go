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
	"strings"

	"github.com/exprcel/cel/common"
	"github.com/exprcel/cel/common/types"
)

// typeErrors adds the checker's diagnostic vocabulary to a shared
// common.Errors accumulator.
type typeErrors struct {
	*common.Errors
}

func (e *typeErrors) undeclaredReference(l common.Location, container, name string) {
	e.ReportError(l, "undeclared reference to '%s' (in container '%s')", name, container)
}

func (e *typeErrors) expressionDoesNotSelectField(l common.Location) {
	e.ReportError(l, "expression does not select a field")
}

func (e *typeErrors) typeDoesNotSupportFieldSelection(l common.Location, t *types.Type) {
	e.ReportError(l, "type '%s' does not support field selection", t)
}

func (e *typeErrors) undefinedField(l common.Location, field string) {
	e.ReportError(l, "undefined field '%s'", field)
}

func (e *typeErrors) fieldDoesNotSupportPresenceCheck(l common.Location, field string) {
	e.ReportError(l, "field '%s' does not support presence check", field)
}

func (e *typeErrors) noMatchingOverload(l common.Location, name string, argTypes []*types.Type) {
	e.ReportError(l, "found no matching overload for '%s' applied to '(%s)'", name, formatTypes(argTypes))
}

func (e *typeErrors) notAComprehensionRange(l common.Location, t *types.Type) {
	e.ReportError(l, "expression of type '%s' cannot be range of a comprehension (must be list, map, or dynamic)", t)
}

func (e *typeErrors) typeMismatch(l common.Location, expected, actual *types.Type) {
	e.ReportError(l, "expected type '%s' but found '%s'", expected, actual)
}

func (e *typeErrors) aggregateTypeMismatch(l common.Location, aggregate, member *types.Type) {
	e.ReportError(l,
		"type '%s' does not match previous type '%s' in aggregate. Use 'dyn(x)' to make the aggregate dynamic.",
		member, aggregate)
}

func (e *typeErrors) notAType(l common.Location, typeName string) {
	e.ReportError(l, "'%s' is not a type", typeName)
}

func (e *typeErrors) fieldTypeMismatch(l common.Location, name string, field, value *types.Type) {
	e.ReportError(l, "expected type of field '%s' is '%s' but provided type is '%s'", name, field, value)
}

func (e *typeErrors) unexpectedFailedResolution(l common.Location, name string) {
	e.ReportError(l, "[internal] unexpected failed resolution of '%s'", name)
}

func formatTypes(argTypes []*types.Type) string {
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
