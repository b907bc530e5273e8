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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	errNulByte      = errors.New("path contains a NUL byte")
	errVolumeName   = errors.New("path must not carry a volume name")
	errDanglingLink = errors.New("path crosses a dangling symbolic link")
)

// Root is the directory boundary every client path is resolved against.
// It is canonical (absolute, symlink-free) and never changes after OpenRoot.
type Root struct {
	path     string
	foldCase bool
}

// OpenRoot canonicalizes dir, creating it when absent.
func OpenRoot(dir string) (*Root, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("root directory is not configured")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid root %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create root %s: %w", abs, err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize root %s: %w", abs, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root %s: %w", canonical, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", canonical)
	}

	return &Root{
		path:     canonical,
		foldCase: runtime.GOOS == "windows" || runtime.GOOS == "darwin",
	}, nil
}

// Path returns the canonical root directory.
func (r *Root) Path() string {
	return r.path
}

// Resolve turns a client relative path into a canonical absolute path inside
// the root. Any failure is reported as KindInvalidPath.
func (r *Root) Resolve(rel string) (string, error) {
	const op = "resolve"

	cleaned, err := normalizeRel(rel)
	if err != nil {
		return "", newError(KindInvalidPath, op, rel, err)
	}

	joined := filepath.Join(r.path, filepath.FromSlash(cleaned))
	canonical, err := canonicalize(joined)
	if err != nil {
		return "", newError(KindInvalidPath, op, rel, err)
	}
	if !r.Contains(canonical) {
		return "", newError(KindInvalidPath, op, rel, errOutsideRoot)
	}
	return canonical, nil
}

// ResolveEntry is Resolve without following the final element, so a
// symlink names the link itself. The parent is canonicalized and must lie
// inside the root. Operations that remove or rename an entry use this form.
func (r *Root) ResolveEntry(rel string) (string, error) {
	const op = "resolve"

	cleaned, err := normalizeRel(rel)
	if err != nil {
		return "", newError(KindInvalidPath, op, rel, err)
	}

	joined := filepath.Join(r.path, filepath.FromSlash(cleaned))
	if !isWithin(r.path, joined, r.foldCase) {
		return "", newError(KindInvalidPath, op, rel, errOutsideRoot)
	}
	if joined == r.path {
		return r.path, nil
	}

	parent, err := canonicalize(filepath.Dir(joined))
	if err != nil {
		return "", newError(KindInvalidPath, op, rel, err)
	}
	if !r.Contains(parent) {
		return "", newError(KindInvalidPath, op, rel, errOutsideRoot)
	}
	return filepath.Join(parent, filepath.Base(joined)), nil
}

// entryName is the base name of rel as the client sees it. resolved is used
// when rel names the root.
func (m *Manager) entryName(rel, resolved string) string {
	if entry, err := m.root.ResolveEntry(rel); err == nil && !m.root.IsRoot(entry) {
		return filepath.Base(entry)
	}
	return filepath.Base(resolved)
}

// Contains reports whether abs is the root or one of its descendants.
func (r *Root) Contains(abs string) bool {
	return isWithin(r.path, abs, r.foldCase)
}

// IsRoot reports whether abs names the root itself.
func (r *Root) IsRoot(abs string) bool {
	if r.foldCase {
		return strings.EqualFold(r.path, abs)
	}
	return r.path == abs
}

// Rel maps an absolute path inside the root to its slash separated relative
// form. The root itself maps to "".
func (r *Root) Rel(abs string) string {
	rel, err := filepath.Rel(r.path, abs)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// normalizeRel strips what a client may legitimately send around a relative
// path. It does not clean ".." so that escapes are caught by the containment
// check instead of being silently clamped to the root.
func normalizeRel(rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if strings.ContainsRune(rel, 0) {
		return "", errNulByte
	}
	rel = strings.ReplaceAll(rel, `\`, "/")
	rel = strings.TrimLeft(rel, "/")
	if filepath.VolumeName(filepath.FromSlash(rel)) != "" {
		return "", errVolumeName
	}
	return rel, nil
}

// canonicalize resolves symlinks along p. The longest existing prefix is
// evaluated and the missing tail re-appended, so paths that are about to be
// created still resolve.
func canonicalize(p string) (string, error) {
	var missing []string
	current := p
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		// The entry exists but its target does not: following it could
		// create files anywhere.
		if _, lerr := os.Lstat(current); lerr == nil {
			return "", errDanglingLink
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}

// isWithin reports whether p equals base or lies below it. A bare prefix test
// would accept "/database" for base "/data", hence the separator check.
func isWithin(base, p string, foldCase bool) bool {
	if foldCase {
		base = strings.ToLower(base)
		p = strings.ToLower(p)
	}
	if p == base {
		return true
	}
	prefix := base
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}
