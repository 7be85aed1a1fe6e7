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

package cel

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestExportRoundTripsThroughYAML pins down spec §8's
// env_export(env_build(env_export(E))) = env_export(E) property:
// exporting an Env, marshaling to YAML, reloading, and rebuilding must
// reproduce byte-for-byte the same EnvConfig on a second export.
func TestExportRoundTripsThroughYAML(t *testing.T) {
	env, err := NewEnv(
		Container("acme.corp"),
		Variable("age", IntType),
		Variable("name", StringType),
	)
	require.NoError(t, err)

	first := Export(env, "acme-env", "example environment")
	data, err := first.Marshal()
	require.NoError(t, err)

	reloaded, err := LoadEnvConfig(data)
	require.NoError(t, err)

	opts, err := reloaded.ToEnvOptions(nil)
	require.NoError(t, err)

	rebuilt, err := NewEnv(opts...)
	require.NoError(t, err)

	second := Export(rebuilt, "acme-env", "example environment")
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Export round-trip mismatch (-first +second):\n%s", diff)
	}
}

func TestExportSortsVariables(t *testing.T) {
	env, err := NewEnv(
		Variable("zebra", IntType),
		Variable("apple", IntType),
	)
	require.NoError(t, err)

	cfg := Export(env, "sorted", "")
	require.Len(t, cfg.Variables, 2)
	if diff := cmp.Diff("apple", cfg.Variables[0].Name); diff != "" {
		t.Errorf("first variable mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff("zebra", cfg.Variables[1].Name); diff != "" {
		t.Errorf("second variable mismatch (-want +got):\n%s", diff)
	}
}

func TestToEnvOptionsRejectsUnresolvedExtension(t *testing.T) {
	cfg := &EnvConfig{
		Extensions: []ExtensionConfig{{Name: "strings"}},
	}
	_, err := cfg.ToEnvOptions(map[string]LibraryFactory{})
	require.Error(t, err)
}
