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
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteFileAndDirectory(t *testing.T) {
	m := newTestManager(t, Options{})
	file := writeFile(t, m, "a.txt", "a")
	dir := mkdir(t, m, "tree")
	writeFile(t, m, "tree/nested/deep.txt", "d")
	ctx := context.Background()

	require.NoError(t, m.Delete(ctx, "a.txt"))
	assert.NoFileExists(t, file)

	require.NoError(t, m.Delete(ctx, "/tree"))
	assert.NoDirExists(t, dir)
}

func TestDeleteErrors(t *testing.T) {
	m := newTestManager(t, Options{})
	ctx := context.Background()

	err := m.Delete(ctx, "missing.txt")
	assert.Equal(t, KindNotFound, KindOf(err))

	for _, in := range []string{"", "/", "."} {
		err = m.Delete(ctx, in)
		assert.Equal(t, KindInvalidPath, KindOf(err), "input %q", in)
	}
	assert.DirExists(t, m.Root().Path())

	err = m.Delete(ctx, "../outside")
	assert.Equal(t, KindInvalidPath, KindOf(err))
}

func TestMoveFileCreatesParents(t *testing.T) {
	m := newTestManager(t, Options{})
	src := writeFile(t, m, "a.txt", "payload")

	got, err := m.Move(context.Background(), "a.txt", "x/y/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "x/y/b.txt", got)
	assert.NoFileExists(t, src)
	assert.Equal(t, "payload", readFile(t, m, "x/y/b.txt"))
}

func TestMoveDirectoryDeep(t *testing.T) {
	m := newTestManager(t, Options{})
	writeFile(t, m, "proj/src/main.go", "package main")
	writeFile(t, m, "proj/README", "readme")
	mkdir(t, m, "proj/empty")

	got, err := m.Move(context.Background(), "proj", "archive/proj")
	require.NoError(t, err)
	assert.Equal(t, "archive/proj", got)
	assert.NoDirExists(t, filepath.Join(m.Root().Path(), "proj"))
	assert.Equal(t, "package main", readFile(t, m, "archive/proj/src/main.go"))
	assert.Equal(t, "readme", readFile(t, m, "archive/proj/README"))
	assert.DirExists(t, filepath.Join(m.Root().Path(), "archive", "proj", "empty"))
}

func TestMoveErrors(t *testing.T) {
	m := newTestManager(t, Options{})
	writeFile(t, m, "a.txt", "a")
	writeFile(t, m, "b.txt", "b")
	mkdir(t, m, "dir/child")
	ctx := context.Background()

	_, err := m.Move(ctx, "missing", "new")
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = m.Move(ctx, "a.txt", "b.txt")
	assert.Equal(t, KindAlreadyExists, KindOf(err))
	assert.Equal(t, "a", readFile(t, m, "a.txt"))
	assert.Equal(t, "b", readFile(t, m, "b.txt"))

	_, err = m.Move(ctx, "dir", "dir/child/dir")
	assert.Equal(t, KindInvalidPath, KindOf(err))

	_, err = m.Move(ctx, "", "elsewhere")
	assert.Equal(t, KindInvalidPath, KindOf(err))

	_, err = m.Move(ctx, "a.txt", "../a.txt")
	assert.Equal(t, KindInvalidPath, KindOf(err))
	assert.Equal(t, "a", readFile(t, m, "a.txt"))
}

func TestCopyFileAutoRename(t *testing.T) {
	m := newTestManager(t, Options{})
	writeFile(t, m, "src/report.txt", "new")
	writeFile(t, m, "dst/report.txt", "old")
	ctx := context.Background()

	got, err := m.Copy(ctx, "src/report.txt", "dst/report.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "dst/report-Copy.txt", got)
	assert.Equal(t, "old", readFile(t, m, "dst/report.txt"))
	assert.Equal(t, "new", readFile(t, m, "dst/report-Copy.txt"))

	got, err = m.Copy(ctx, "src/report.txt", "dst/report.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "dst/report-Copy2.txt", got)

	got, err = m.Copy(ctx, "src/report.txt", "dst/report.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "dst/report.txt", got)
	assert.Equal(t, "new", readFile(t, m, "dst/report.txt"))
}

func TestCopyOntoItself(t *testing.T) {
	m := newTestManager(t, Options{})
	writeFile(t, m, "a.txt", "same")
	ctx := context.Background()

	got, err := m.Copy(ctx, "a.txt", "a.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", got)
	assert.Equal(t, "same", readFile(t, m, "a.txt"))

	got, err = m.Copy(ctx, "a.txt", "a.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "a-Copy.txt", got)
}

func TestCopyDirectoryDeepAndMerge(t *testing.T) {
	m := newTestManager(t, Options{})
	writeFile(t, m, "proj/src/main.go", "v2")
	writeFile(t, m, "proj/top.txt", "top")
	mkdir(t, m, "proj/empty")
	writeFile(t, m, "backup/src/main.go", "v1")
	writeFile(t, m, "backup/keep.txt", "keep")
	ctx := context.Background()

	got, err := m.Copy(ctx, "proj", "clone", false)
	require.NoError(t, err)
	assert.Equal(t, "clone", got)
	assert.Equal(t, "v2", readFile(t, m, "clone/src/main.go"))
	assert.DirExists(t, filepath.Join(m.Root().Path(), "clone", "empty"))
	assert.Equal(t, "v2", readFile(t, m, "proj/src/main.go"))

	got, err = m.Copy(ctx, "proj", "backup", false)
	require.NoError(t, err)
	assert.Equal(t, "backup", got)
	assert.Equal(t, "v2", readFile(t, m, "backup/src/main.go"))
	assert.Equal(t, "keep", readFile(t, m, "backup/keep.txt"))
	assert.Equal(t, "top", readFile(t, m, "backup/top.txt"))
}

func TestCopyErrors(t *testing.T) {
	m := newTestManager(t, Options{})
	writeFile(t, m, "a.txt", "a")
	mkdir(t, m, "dir/sub")
	ctx := context.Background()

	_, err := m.Copy(ctx, "missing", "x", false)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = m.Copy(ctx, "a.txt", "dir", false)
	assert.Equal(t, KindAlreadyExists, KindOf(err))

	_, err = m.Copy(ctx, "dir", "a.txt", true)
	assert.Equal(t, KindAlreadyExists, KindOf(err))

	_, err = m.Copy(ctx, "dir", "dir/sub/again", false)
	assert.Equal(t, KindInvalidPath, KindOf(err))
	assert.NoDirExists(t, filepath.Join(m.Root().Path(), "dir", "sub", "again"))

	_, err = m.Copy(ctx, "a.txt", "../../a.txt", false)
	assert.Equal(t, KindInvalidPath, KindOf(err))
}

func TestCopyCancelledRemovesDestination(t *testing.T) {
	m := newTestManager(t, Options{})
	writeFile(t, m, "proj/a.txt", "a")
	writeFile(t, m, "big.bin", "0123456789")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Copy(ctx, "proj", "clone", false)
	require.Error(t, err)
	assert.NoDirExists(t, filepath.Join(m.Root().Path(), "clone"))

	_, err = m.Copy(ctx, "big.bin", "big-copy.bin", false)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(m.Root().Path(), "big-copy.bin"))
}

func TestNextCopyName(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"report.txt":     "report-Copy.txt",
		"archive.tar.gz": "archive.tar-Copy.gz",
		"Makefile":       "Makefile-Copy",
		".bashrc":        "-Copy.bashrc",
	}
	for in, want := range cases {
		got, err := nextCopyName(filepath.Join(dir, in))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, want), got)
	}
}

func TestCreateFolder(t *testing.T) {
	m := newTestManager(t, Options{})
	writeFile(t, m, "file", "x")
	ctx := context.Background()

	got, err := m.CreateFolder(ctx, "", "photos")
	require.NoError(t, err)
	assert.Equal(t, "photos", got)
	assert.DirExists(t, filepath.Join(m.Root().Path(), "photos"))

	got, err = m.CreateFolder(ctx, "photos", "2024/summer")
	require.NoError(t, err)
	assert.Equal(t, "photos/2024/summer", got)

	_, err = m.CreateFolder(ctx, "", "photos")
	assert.Equal(t, KindAlreadyExists, KindOf(err))

	_, err = m.CreateFolder(ctx, "", "file")
	assert.Equal(t, KindAlreadyExists, KindOf(err))

	_, err = m.CreateFolder(ctx, "photos", "  ")
	assert.Equal(t, KindInvalidPath, KindOf(err))

	_, err = m.CreateFolder(ctx, "photos", "../../escape")
	assert.Equal(t, KindInvalidPath, KindOf(err))
	assert.NoDirExists(t, filepath.Join(filepath.Dir(m.Root().Path()), "escape"))
}

func TestDeleteSymlinkKeepsTarget(t *testing.T) {
	m := newTestManager(t, Options{})
	keep := writeFile(t, m, "real/keep.txt", "keep")
	link := filepath.Join(m.Root().Path(), "link")
	symlinkOrSkip(t, filepath.Dir(keep), link)
	ctx := context.Background()

	require.NoError(t, m.Delete(ctx, "link"))
	assert.FileExists(t, keep)
	_, err := os.Lstat(link)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	stale := filepath.Join(m.Root().Path(), "stale")
	symlinkOrSkip(t, filepath.Join(m.Root().Path(), "gone"), stale)
	require.NoError(t, m.Delete(ctx, "stale"))
	_, err = os.Lstat(stale)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMoveSymlinkMovesLink(t *testing.T) {
	m := newTestManager(t, Options{})
	realFile := writeFile(t, m, "real.txt", "payload")
	symlinkOrSkip(t, realFile, filepath.Join(m.Root().Path(), "alias.txt"))
	ctx := context.Background()

	got, err := m.Move(ctx, "alias.txt", "moved.txt")
	require.NoError(t, err)
	assert.Equal(t, "moved.txt", got)
	assert.Equal(t, "payload", readFile(t, m, "real.txt"))
	assert.Equal(t, "payload", readFile(t, m, "moved.txt"))

	info, err := os.Lstat(filepath.Join(m.Root().Path(), "moved.txt"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&fs.ModeSymlink)
	_, err = os.Lstat(filepath.Join(m.Root().Path(), "alias.txt"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	symlinkOrSkip(t, filepath.Join(m.Root().Path(), "gone"), filepath.Join(m.Root().Path(), "stale"))
	_, err = m.Move(ctx, "real.txt", "stale")
	assert.Equal(t, KindAlreadyExists, KindOf(err))
	assert.Equal(t, "payload", readFile(t, m, "real.txt"))
}
