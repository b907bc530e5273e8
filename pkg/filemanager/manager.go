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

// Package filemanager implements the sandboxed file operations behind the
// HTTP API. Every client path goes through Root.Resolve before it touches
// the disk.
package filemanager

import (
	"errors"
	"os"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Options tunes a Manager.
type Options struct {
	// TempDir receives archives while they are built. Defaults to os.TempDir().
	TempDir string
	// Exclude lists doublestar patterns hidden from listings, searches and archives.
	Exclude []string
}

// Manager performs file operations confined to a Root. It holds no mutable
// state and is safe for concurrent use.
type Manager struct {
	root    *Root
	tempDir string
	exclude *Matcher
}

func New(root *Root, opts Options) (*Manager, error) {
	if root == nil {
		return nil, errors.New("filemanager: nil root")
	}
	exclude, err := NewMatcher(opts.Exclude)
	if err != nil {
		return nil, err
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Manager{root: root, tempDir: tempDir, exclude: exclude}, nil
}

func (m *Manager) Root() *Root {
	return m.root
}
