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
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher hides entries from listings, searches and archives. Patterns
// without a slash match the entry's base name at any depth; patterns with a
// slash match the whole root relative path.
//
// Hidden entries stay reachable by explicit path.
type Matcher struct {
	patterns []string
}

// NewMatcher validates every pattern up front.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.TrimPrefix(strings.ReplaceAll(p, `\`, "/"), "/")
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		m.patterns = append(m.patterns, p)
	}
	return m, nil
}

// Match reports whether rel, a root relative slash path, is hidden.
func (m *Matcher) Match(rel string) bool {
	if m == nil || len(m.patterns) == 0 || rel == "" {
		return false
	}
	base := path.Base(rel)
	for _, p := range m.patterns {
		name := base
		if strings.Contains(p, "/") {
			name = rel
		}
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
