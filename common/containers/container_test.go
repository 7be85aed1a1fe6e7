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

package containers_test

import (
	"reflect"
	"testing"

	"github.com/exprcel/cel/common/ast"
	"github.com/exprcel/cel/common/containers"
)

func TestResolveCandidateNamesNested(t *testing.T) {
	c, err := containers.NewContainer(containers.Name("a.b.c.M.N"))
	if err != nil {
		t.Fatal(err)
	}
	got := c.ResolveCandidateNames("R.s")
	want := []string{
		"a.b.c.M.N.R.s",
		"a.b.c.M.R.s",
		"a.b.c.R.s",
		"a.b.R.s",
		"a.R.s",
		"R.s",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveCandidateNames() = %v, want %v", got, want)
	}
}

func TestResolveCandidateNamesAbsolute(t *testing.T) {
	c, err := containers.NewContainer(containers.Name("a.b.c"))
	if err != nil {
		t.Fatal(err)
	}
	got := c.ResolveCandidateNames(".pkg.Type")
	if len(got) != 1 || got[0] != "pkg.Type" {
		t.Fatalf("ResolveCandidateNames(absolute) = %v", got)
	}
}

func TestAliasResolvedLast(t *testing.T) {
	c, err := containers.NewContainer(containers.Name("a.b"), containers.Aliases("qual.pkg.Type"))
	if err != nil {
		t.Fatal(err)
	}
	got := c.ResolveCandidateNames("Type")
	want := []string{"a.b.Type", "a.Type", "Type", "qual.pkg.Type"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveCandidateNames() = %v, want %v", got, want)
	}
}

func TestAliasCollisionWithContainer(t *testing.T) {
	_, err := containers.NewContainer(containers.Name("a.b"), containers.AliasAs("x.y.a", "a"))
	if err == nil {
		t.Fatal("expected alias collision error")
	}
}

func TestToQualifiedName(t *testing.T) {
	fac := ast.NewExprFactory()
	sel := fac.NewSelect(1, fac.NewSelect(2, fac.NewIdent(3, "a"), "b"), "c")
	name, found := containers.ToQualifiedName(sel)
	if !found || name != "a.b.c" {
		t.Fatalf("ToQualifiedName() = %q, %v, want a.b.c, true", name, found)
	}
}

func TestToQualifiedNameTestOnlyRejected(t *testing.T) {
	fac := ast.NewExprFactory()
	sel := fac.NewPresenceTest(1, fac.NewIdent(2, "a"), "b")
	if _, found := containers.ToQualifiedName(sel); found {
		t.Fatal("ToQualifiedName() accepted a presence-test select")
	}
}
