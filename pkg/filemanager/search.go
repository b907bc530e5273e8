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
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/alibaba/opensandbox/filed/pkg/log"
)

var errEmptyQuery = errors.New("search query is empty")

type SearchOptions struct {
	IncludeFiles       bool
	IncludeDirectories bool
	Policy             WalkPolicy
}

// Search walks the whole root and returns every entry whose base name
// contains query, compared case-insensitively. The root is never a result.
func (m *Manager) Search(ctx context.Context, query string, opts SearchOptions) ([]Item, error) {
	const op = "search"

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newError(KindInvalidPath, op, "", errEmptyQuery)
	}
	if !opts.IncludeFiles && !opts.IncludeDirectories {
		return []Item{}, nil
	}

	needle := strings.ToLower(query)
	root := m.root.Path()

	var mu sync.Mutex
	results := make([]Item, 0, 16)

	// fastwalk runs the callback from several goroutines.
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root || opts.Policy == AbortOnError {
				return err
			}
			log.Warn("search skipping %s: %v", p, err)
			return nil
		}
		if p == root {
			return nil
		}

		rel := m.root.Rel(p)
		if m.exclude.Match(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.Contains(strings.ToLower(d.Name()), needle) {
			return nil
		}

		info, ok := m.entryInfo(p, d)
		if !ok {
			return nil
		}
		if info.IsDir() && !opts.IncludeDirectories || !info.IsDir() && !opts.IncludeFiles {
			return nil
		}

		item := newItem(d.Name(), rel, info)
		mu.Lock()
		results = append(results, item)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, wrap(op, "", err)
	}

	sortItems(results)
	return results, nil
}
