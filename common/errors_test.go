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

package common

import (
	"strings"
	"testing"
)

func TestErrorsReporting(t *testing.T) {
	source := NewStringSource("a.b\n&&arg(missing, paren", "errors-test")
	errs := NewErrors(source)
	errs.ReportError(NewLocation(1, 1), "no such field")
	if len(errs.GetErrors()) != 1 {
		t.Fatalf("first error not recorded")
	}
	errs.ReportError(NewLocation(2, 20), "syntax error, missing paren")
	if len(errs.GetErrors()) != 2 {
		t.Fatalf("second error not recorded")
	}
	want := "ERROR: errors-test:1:1: no such field\n" +
		" | a.b\n" +
		" | .^\n" +
		"ERROR: errors-test:2:20: syntax error, missing paren\n" +
		" | &&arg(missing, paren\n" +
		" | ....................^"
	if got := errs.ToDisplayString(); got != want {
		t.Errorf("got %q, wanted %q", got, want)
	}
}

func TestErrorsReportingLimit(t *testing.T) {
	errs := NewErrors(NewTextSource("limit-test", "hello world"))
	for i := 0; i < 2*maxErrorsToReport; i++ {
		errs.ReportError(NoLocation, "error %d", i)
	}
	if !strings.HasSuffix(errs.ToDisplayString(), "100 more errors were truncated") {
		t.Errorf("truncation did not occur, got %s", errs.ToDisplayString())
	}
}

func TestErrorsAppendReportingLimit(t *testing.T) {
	errs := NewErrors(NewTextSource("append-test", "hello world"))
	for i := 0; i < 75; i++ {
		errs.ReportError(NoLocation, "error %d", i)
	}
	other := NewErrors(NewTextSource("append-test", "hello world"))
	for i := 0; i < 75; i++ {
		other.ReportError(NoLocation, "error %d", i+75)
	}
	errs = errs.Append(other.GetErrors())
	if !strings.HasSuffix(errs.ToDisplayString(), "50 more errors were truncated") {
		t.Errorf("truncation did not occur on append, got %s", errs.ToDisplayString())
	}
}
