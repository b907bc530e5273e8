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
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"

	"github.com/alibaba/opensandbox/filed/pkg/log"
)

// Archive is a finished zip file waiting to be streamed. Close removes it.
type Archive struct {
	file    *os.File
	path    string
	size    int64
	entries int

	closeOnce sync.Once
	closeErr  error
}

func (a *Archive) Read(p []byte) (int, error) {
	return a.file.Read(p)
}

// Size is the archive length in bytes.
func (a *Archive) Size() int64 {
	return a.size
}

// Entries counts the files and directories written.
func (a *Archive) Entries() int {
	return a.entries
}

// Close closes and deletes the backing temp file. It is safe to call twice.
func (a *Archive) Close() error {
	a.closeOnce.Do(func() {
		closeErr := a.file.Close()
		removeErr := os.Remove(a.path)
		if errors.Is(removeErr, fs.ErrNotExist) {
			removeErr = nil
		}
		a.closeErr = errors.Join(closeErr, removeErr)
	})
	return a.closeErr
}

// BuildArchive zips the selected paths into a temp file. Each path becomes a
// top-level entry named after its base name. Paths that fail to resolve or
// no longer exist are skipped, as are duplicate top-level names and
// unreadable subtrees. The temp file is removed on any failure.
func (m *Manager) BuildArchive(ctx context.Context, rels []string) (_ *Archive, err error) {
	const op = "archive"

	if err := os.MkdirAll(m.tempDir, 0o700); err != nil {
		return nil, wrap(op, "", err)
	}
	tmpPath := filepath.Join(m.tempDir, "download_"+uuid.NewString()+".zip")
	f, err := os.OpenFile(tmpPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				log.Error("failed to remove archive %s: %v", tmpPath, rmErr)
			}
		}
	}()

	b := &zipBuilder{
		ctx:     ctx,
		m:       m,
		zw:      zip.NewWriter(f),
		tmpPath: tmpPath,
	}
	seen := make(map[string]struct{}, len(rels))
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, wrap(op, "", err)
		}

		abs, rerr := m.root.Resolve(rel)
		if rerr != nil {
			log.Warn("archive skipping %q: %v", rel, rerr)
			continue
		}
		if m.exclude.Match(m.root.Rel(abs)) {
			continue
		}
		info, serr := os.Stat(abs)
		if serr != nil {
			log.Warn("archive skipping %q: %v", rel, serr)
			continue
		}

		name := m.entryName(rel, abs)
		if _, dup := seen[name]; dup {
			log.Warn("archive skipping %q: duplicate entry name %s", rel, name)
			continue
		}
		seen[name] = struct{}{}

		if info.IsDir() {
			err = b.addDir(abs, name, info)
		} else if info.Mode().IsRegular() {
			err = b.addFile(abs, name, info)
		}
		if err != nil {
			return nil, wrap(op, rel, err)
		}
	}

	if err := b.zw.Close(); err != nil {
		return nil, wrap(op, "", err)
	}
	size, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, wrap(op, "", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, wrap(op, "", err)
	}

	return &Archive{file: f, path: tmpPath, size: size, entries: b.entries}, nil
}

type zipBuilder struct {
	ctx     context.Context
	m       *Manager
	zw      *zip.Writer
	tmpPath string
	entries int
}

func (b *zipBuilder) addDir(dir, name string, info fs.FileInfo) error {
	if err := b.addDirEntry(name+"/", info); err != nil {
		return err
	}
	return walkTree(b.ctx, dir, SkipOnError, func(p string, d fs.DirEntry) error {
		if p == b.tmpPath || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if b.m.exclude.Match(b.m.root.Rel(p)) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		entry := name + "/" + filepath.ToSlash(rel)

		fi, err := d.Info()
		if err != nil {
			// vanished since the directory was read
			return nil
		}
		switch {
		case fi.IsDir():
			return b.addDirEntry(entry+"/", fi)
		case fi.Mode().IsRegular():
			return b.addFile(p, entry, fi)
		default:
			return nil
		}
	})
}

func (b *zipBuilder) addDirEntry(entry string, info fs.FileInfo) error {
	hdr := &zip.FileHeader{
		Name:     entry,
		Method:   zip.Store,
		Modified: info.ModTime(),
	}
	hdr.SetMode(info.Mode())
	if _, err := b.zw.CreateHeader(hdr); err != nil {
		return err
	}
	b.entries++
	return nil
}

// addFile skips files that cannot be opened. Once the entry header is
// written any failure is fatal, the archive would be corrupt otherwise.
func (b *zipBuilder) addFile(p, entry string, info fs.FileInfo) error {
	src, err := os.Open(p)
	if err != nil {
		log.Warn("archive skipping unreadable file %s: %v", p, err)
		return nil
	}
	defer src.Close()

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = entry
	hdr.Method = zip.Deflate

	w, err := b.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if _, err := copyContext(b.ctx, w, src); err != nil {
		return err
	}
	b.entries++
	return nil
}
