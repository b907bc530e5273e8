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

	"github.com/alibaba/opensandbox/filed/pkg/log"
)

// WalkPolicy decides what a tree walk does with a directory it cannot read.
type WalkPolicy int

const (
	// SkipOnError logs the unreadable directory and keeps walking.
	SkipOnError WalkPolicy = iota
	// AbortOnError stops the walk and returns the error.
	AbortOnError
)

func (p WalkPolicy) String() string {
	if p == AbortOnError {
		return "abort"
	}
	return "skip"
}

const readDirBatch = 256

type walkFunc func(path string, d fs.DirEntry) error

// visitError marks an error returned by the walk callback, as opposed to a
// directory read failure that the policy applies to.
type visitError struct {
	err error
}

func (e *visitError) Error() string { return e.err.Error() }

// walkTree visits every entry below root, root excluded, without following
// symlinks. Pending directories are kept on an explicit stack and each one is
// read in batches, so memory stays bounded by the tree's breadth rather than
// its total size. Returning fs.SkipDir from fn on a directory prunes it.
func walkTree(ctx context.Context, root string, policy WalkPolicy, fn walkFunc) error {
	pending := []string{root}
	for len(pending) > 0 {
		dir := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		var subdirs []string
		err := eachEntry(ctx, dir, func(d fs.DirEntry) error {
			p := filepath.Join(dir, d.Name())
			if err := fn(p, d); err != nil {
				if errors.Is(err, fs.SkipDir) {
					return nil
				}
				return &visitError{err: err}
			}
			if d.IsDir() {
				subdirs = append(subdirs, p)
			}
			return nil
		})
		if err != nil {
			var ve *visitError
			switch {
			case errors.As(err, &ve):
				return ve.err
			case ctx.Err() != nil:
				return ctx.Err()
			case policy == AbortOnError:
				return err
			}
			log.Warn("skipping unreadable directory %s: %v", dir, err)
		}

		for i := len(subdirs) - 1; i >= 0; i-- {
			pending = append(pending, subdirs[i])
		}
	}
	return nil
}

// eachEntry streams the entries of dir to visit, checking ctx between batches.
func eachEntry(ctx context.Context, dir string, visit func(fs.DirEntry) error) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := f.ReadDir(readDirBatch)
		for _, d := range entries {
			if err := visit(d); err != nil {
				return err
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
