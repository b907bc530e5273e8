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
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alibaba/opensandbox/filed/pkg/log"
)

// ErrNoFiles is returned by Upload for an existing target directory when
// there is nothing to store.
var ErrNoFiles = errors.New("no files to upload")

var errInvalidName = errors.New("invalid file name")

// UploadPart is one named byte stream of an upload request.
type UploadPart struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// Upload writes every part into the existing directory dirRel and returns
// the stored items in part order. Names are reduced to their base name and
// all of them are validated before anything is written. Each part goes to a
// hidden temp file first, so a failed part never leaves a file under its
// final name; parts stored before the failure are kept and returned.
func (m *Manager) Upload(ctx context.Context, dirRel string, parts []UploadPart) ([]Item, error) {
	const op = "upload"

	dir, err := m.root.Resolve(dirRel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, wrap(op, dirRel, err)
	}
	if !info.IsDir() {
		return nil, newError(KindInvalidPath, op, dirRel, errNotDirectory)
	}
	if len(parts) == 0 {
		return nil, newError(KindInvalidPath, op, dirRel, ErrNoFiles)
	}

	targets := make([]string, len(parts))
	for i, part := range parts {
		name, err := uploadName(part.Name)
		if err != nil {
			return nil, newError(KindInvalidPath, op, part.Name, err)
		}
		target, err := m.root.Resolve(path.Join(m.root.Rel(dir), name))
		if err != nil {
			return nil, err
		}
		if ti, err := os.Stat(target); err == nil && ti.IsDir() {
			return nil, newError(KindAlreadyExists, op, m.root.Rel(target), errIsDirectory)
		}
		targets[i] = target
	}

	stored := make([]Item, 0, len(parts))
	for i, part := range parts {
		if err := receive(ctx, part, targets[i]); err != nil {
			return stored, wrap(op, part.Name, err)
		}
		fi, err := os.Stat(targets[i])
		if err != nil {
			return stored, wrap(op, part.Name, err)
		}
		stored = append(stored, newItem(filepath.Base(targets[i]), m.root.Rel(targets[i]), fi))
	}
	return stored, nil
}

// uploadName keeps only the last element of a client supplied file name.
// Browsers may send full paths, with either separator.
func uploadName(raw string) (string, error) {
	if strings.ContainsRune(raw, 0) {
		return "", errNulByte
	}
	name := path.Base(strings.ReplaceAll(raw, `\`, "/"))
	switch name {
	case "", ".", "..", "/":
		return "", errInvalidName
	}
	if strings.TrimSpace(name) == "" {
		return "", errInvalidName
	}
	return name, nil
}

func receive(ctx context.Context, part UploadPart, target string) (err error) {
	src, err := part.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*.part")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				log.Error("failed to remove upload temp file %s: %v", tmp.Name(), rmErr)
			}
		}
	}()

	if _, err = copyContext(ctx, tmp, src); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), filePerm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// Open returns the regular file at rel for streaming. Directories are
// reported as NotFound. The returned info is named after the last element of
// rel, even when rel is a symlink.
func (m *Manager) Open(ctx context.Context, rel string) (*os.File, fs.FileInfo, error) {
	const op = "download"

	target, err := m.root.Resolve(rel)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, wrap(op, rel, err)
	}
	name := m.entryName(rel, target)

	f, err := os.Open(target)
	if err != nil {
		return nil, nil, wrap(op, rel, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, wrap(op, rel, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, nil, newError(KindNotFound, op, rel, errIsDirectory)
	}
	return f, namedInfo{FileInfo: info, name: name}, nil
}

// namedInfo reports the name the client asked for instead of the name of a
// symlink target.
type namedInfo struct {
	fs.FileInfo
	name string
}

func (n namedInfo) Name() string {
	return n.name
}
