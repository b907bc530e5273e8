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

	"github.com/gabriel-vasile/mimetype"
)

// List returns the immediate children of the directory at rel, directories
// first.
func (m *Manager) List(ctx context.Context, rel string) ([]Item, error) {
	const op = "list"

	dir, err := m.root.Resolve(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, wrap(op, rel, err)
	}
	if !info.IsDir() {
		return nil, newError(KindInvalidPath, op, rel, errNotDirectory)
	}

	items := make([]Item, 0, 32)
	err = eachEntry(ctx, dir, func(d fs.DirEntry) error {
		abs := filepath.Join(dir, d.Name())
		entryRel := m.root.Rel(abs)
		if m.exclude.Match(entryRel) {
			return nil
		}
		info, ok := m.entryInfo(abs, d)
		if !ok {
			return nil
		}
		items = append(items, newItem(d.Name(), entryRel, info))
		return nil
	})
	if err != nil {
		return nil, wrap(op, rel, err)
	}

	sortItems(items)
	return items, nil
}

// Paginate slices items to the 1-based page. A non-positive pageSize
// returns everything.
func Paginate(items []Item, page, pageSize int) []Item {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	pages := len(items) / pageSize
	if len(items)%pageSize != 0 {
		pages++
	}
	if page > pages {
		return []Item{}
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	return items[start:end]
}

// Info describes a single entry together with its sniffed content type.
type Info struct {
	Item
	MimeType string
}

// Stat returns the entry at rel. The root itself can be described.
func (m *Manager) Stat(rel string) (Info, error) {
	const op = "stat"

	abs, err := m.root.Resolve(rel)
	if err != nil {
		return Info{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Info{}, wrap(op, rel, err)
	}

	out := Info{Item: newItem(info.Name(), m.root.Rel(abs), info)}
	if m.root.IsRoot(abs) {
		out.Name = ""
	}
	if info.Mode().IsRegular() {
		if mtype, err := mimetype.DetectFile(abs); err == nil {
			out.MimeType = mtype.String()
		}
	}
	return out, nil
}
