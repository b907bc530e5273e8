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
	"strconv"
	"strings"

	"github.com/alibaba/opensandbox/filed/pkg/log"
)

const (
	copyBufferSize  = 128 << 10
	maxCopySuffixes = 10000
)

// Delete removes the file or directory tree at rel. A symlink is removed
// itself, never its target.
func (m *Manager) Delete(ctx context.Context, rel string) error {
	const op = "delete"

	target, err := m.root.ResolveEntry(rel)
	if err != nil {
		return err
	}
	if m.root.IsRoot(target) {
		return newError(KindInvalidPath, op, rel, errRootOperation)
	}
	if err := ctx.Err(); err != nil {
		return wrap(op, rel, err)
	}

	info, err := os.Lstat(target)
	if err != nil {
		return wrap(op, rel, err)
	}
	if info.IsDir() {
		err = os.RemoveAll(target)
	} else {
		err = os.Remove(target)
	}
	return wrap(op, rel, err)
}

// Move relocates src to dst, which must not exist yet, and returns the new
// relative path. A symlink source is moved as a link. Moves across devices
// fall back to copy then delete.
func (m *Manager) Move(ctx context.Context, srcRel, dstRel string) (string, error) {
	const op = "move"

	src, err := m.root.ResolveEntry(srcRel)
	if err != nil {
		return "", err
	}
	dst, err := m.root.ResolveEntry(dstRel)
	if err != nil {
		return "", err
	}
	if m.root.IsRoot(src) || m.root.IsRoot(dst) {
		return "", newError(KindInvalidPath, op, srcRel, errRootOperation)
	}

	srcInfo, err := os.Lstat(src)
	if err != nil {
		return "", wrap(op, srcRel, err)
	}
	if srcInfo.IsDir() && isWithin(src, dst, m.root.foldCase) {
		return "", newError(KindInvalidPath, op, dstRel, errIntoItself)
	}
	if _, err := os.Lstat(dst); err == nil {
		return "", newError(KindAlreadyExists, op, dstRel, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", wrap(op, dstRel, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return "", wrap(op, dstRel, err)
	}

	err = os.Rename(src, dst)
	if err == nil {
		return m.root.Rel(dst), nil
	}
	if !isCrossDevice(err) {
		return "", wrap(op, srcRel, err)
	}

	log.Debug("rename %s -> %s crosses devices, copying instead", src, dst)
	switch {
	case srcInfo.Mode()&fs.ModeSymlink != 0:
		err = copyLink(src, dst)
	case srcInfo.IsDir():
		err = copyTree(ctx, src, dst, srcInfo)
	default:
		err = copyFile(ctx, src, dst, srcInfo.Mode().Perm())
	}
	if err != nil {
		removePartial(dst)
		return "", wrap(op, srcRel, err)
	}
	if err := os.RemoveAll(src); err != nil {
		return "", wrap(op, srcRel, err)
	}
	return m.root.Rel(dst), nil
}

// Copy duplicates src at dst and returns the destination actually written.
// An existing destination file is kept unless overwrite is set; the copy
// then lands next to it as "name-Copy.ext", "name-Copy2.ext" and so on.
// Copying a directory onto an existing directory merges the two.
func (m *Manager) Copy(ctx context.Context, srcRel, dstRel string, overwrite bool) (string, error) {
	const op = "copy"

	src, err := m.root.Resolve(srcRel)
	if err != nil {
		return "", err
	}
	dst, err := m.root.Resolve(dstRel)
	if err != nil {
		return "", err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", wrap(op, srcRel, err)
	}
	if srcInfo.IsDir() && isWithin(src, dst, m.root.foldCase) {
		return "", newError(KindInvalidPath, op, dstRel, errIntoItself)
	}
	if !srcInfo.IsDir() && !srcInfo.Mode().IsRegular() {
		return "", newError(KindInvalidPath, op, srcRel, fs.ErrInvalid)
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return "", wrap(op, dstRel, err)
	}

	created := true
	dstInfo, err := os.Stat(dst)
	switch {
	case err == nil && dstInfo.IsDir() != srcInfo.IsDir():
		return "", newError(KindAlreadyExists, op, dstRel, fs.ErrExist)
	case err == nil && dstInfo.IsDir():
		created = false
	case err == nil && os.SameFile(srcInfo, dstInfo):
		if overwrite {
			return m.root.Rel(dst), nil
		}
		if dst, err = nextCopyName(dst); err != nil {
			return "", wrap(op, dstRel, err)
		}
	case err == nil && !overwrite:
		if dst, err = nextCopyName(dst); err != nil {
			return "", wrap(op, dstRel, err)
		}
	case err == nil:
		created = false
	case !errors.Is(err, fs.ErrNotExist):
		return "", wrap(op, dstRel, err)
	}

	if srcInfo.IsDir() {
		err = copyTree(ctx, src, dst, srcInfo)
	} else {
		err = copyFile(ctx, src, dst, srcInfo.Mode().Perm())
	}
	if err != nil {
		if created {
			removePartial(dst)
		}
		return "", wrap(op, srcRel, err)
	}
	return m.root.Rel(dst), nil
}

// CreateFolder creates parent/name, including missing intermediate
// directories, and returns its relative path.
func (m *Manager) CreateFolder(ctx context.Context, parentRel, name string) (string, error) {
	const op = "createfolder"

	if strings.TrimSpace(name) == "" {
		return "", newError(KindInvalidPath, op, parentRel, errEmptyName)
	}
	joined := path.Join(strings.ReplaceAll(parentRel, `\`, "/"), strings.ReplaceAll(name, `\`, "/"))
	target, err := m.root.Resolve(joined)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", wrap(op, joined, err)
	}

	if _, err := os.Lstat(target); err == nil {
		return "", newError(KindAlreadyExists, op, joined, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", wrap(op, joined, err)
	}
	if err := os.MkdirAll(target, dirPerm); err != nil {
		return "", wrap(op, joined, err)
	}
	return m.root.Rel(target), nil
}

// nextCopyName finds the first free "-Copy" sibling of dst.
func nextCopyName(dst string) (string, error) {
	dir, base := filepath.Split(dst)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 1; i <= maxCopySuffixes; i++ {
		suffix := "-Copy"
		if i > 1 {
			suffix += strconv.Itoa(i)
		}
		candidate := filepath.Join(dir, stem+suffix+ext)
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fs.ErrExist
}

// copyTree copies the directory src into dst, creating dst if needed and
// overwriting files that already exist there. Symlinks and special files
// are skipped.
func copyTree(ctx context.Context, src, dst string, info fs.FileInfo) error {
	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return err
	}
	return walkTree(ctx, src, AbortOnError, func(p string, d fs.DirEntry) error {
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			log.Debug("copy skipping symlink %s", p)
			return nil
		case d.IsDir():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, fi.Mode().Perm()|0o700)
		case d.Type().IsRegular():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(ctx, p, target, fi.Mode().Perm())
		default:
			return nil
		}
	})
}

func copyLink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

func copyFile(ctx context.Context, src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := copyContext(ctx, out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// contextReader fails the next Read once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// copyContext is io.Copy with a fixed buffer that stops on cancellation.
func copyContext(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	buf := make([]byte, copyBufferSize)
	return io.CopyBuffer(w, contextReader{ctx: ctx, r: r}, buf)
}

func removePartial(p string) {
	if err := os.RemoveAll(p); err != nil {
		log.Error("failed to remove partial destination %s: %v", p, err)
	}
}
