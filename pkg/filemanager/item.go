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
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Item describes one directory entry as returned by List and Search.
type Item struct {
	Name    string
	Path    string // relative to the root, slash separated
	IsDir   bool
	Size    int64 // zero for directories
	ModTime time.Time
	// Extension includes the leading dot and is empty when the name has none.
	// Always empty for directories.
	Extension string
}

func newItem(name, rel string, info fs.FileInfo) Item {
	it := Item{
		Name:    name,
		Path:    rel,
		IsDir:   info.IsDir(),
		ModTime: info.ModTime().UTC(),
	}
	if !it.IsDir {
		it.Size = info.Size()
		it.Extension = filepath.Ext(name)
	}
	return it
}

// sortItems orders directories first, then names case-insensitively. Names
// differing only in case fall back to byte order so the result is stable.
func sortItems(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}

// entryInfo returns the info an entry is described with. Symlinks are
// described by their target and hidden when the target leaves the root or
// cannot be resolved.
func (m *Manager) entryInfo(abs string, d fs.DirEntry) (fs.FileInfo, bool) {
	if d.Type()&fs.ModeSymlink == 0 {
		info, err := d.Info()
		if err != nil {
			return nil, false
		}
		return info, true
	}

	target, err := filepath.EvalSymlinks(abs)
	if err != nil || !m.root.Contains(target) {
		return nil, false
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, false
	}
	return info, true
}
