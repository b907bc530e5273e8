// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package filemanager

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, opts Options) *Manager {
	t.Helper()
	root, err := OpenRoot(filepath.Join(t.TempDir(), "root"))
	require.NoError(t, err)
	if opts.TempDir == "" {
		opts.TempDir = t.TempDir()
	}
	m, err := New(root, opts)
	require.NoError(t, err)
	return m
}

// writeFile creates rel below the manager root with its parents.
func writeFile(t *testing.T, m *Manager, rel, content string) string {
	t.Helper()
	abs := filepath.Join(m.Root().Path(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return abs
}

func mkdir(t *testing.T, m *Manager, rel string) string {
	t.Helper()
	abs := filepath.Join(m.Root().Path(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(abs, 0o755))
	return abs
}

func readFile(t *testing.T, m *Manager, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(m.Root().Path(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func symlinkOrSkip(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
}

func stringPart(name, content string) UploadPart {
	return UploadPart{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func itemNames(items []Item) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}
