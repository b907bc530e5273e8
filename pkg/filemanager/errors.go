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
)

// Kind classifies a failed operation.
type Kind int

const (
	// KindUnexpected covers I/O failures, permission errors and anything unclassified.
	KindUnexpected Kind = iota
	// KindInvalidPath is a containment violation or malformed input.
	KindInvalidPath
	// KindNotFound is a missing source or target.
	KindNotFound
	// KindAlreadyExists is a destination conflict.
	KindAlreadyExists
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPath:
		return "invalid path"
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	default:
		return "unexpected"
	}
}

// Error is returned by every Manager operation.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return fmt.Sprintf("%s %q: %s", e.Op, e.Path, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf reports the Kind of err. Errors not produced by this package are
// classified from the wrapped fs sentinel errors.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnexpected
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	case errors.Is(err, fs.ErrInvalid):
		return KindInvalidPath
	default:
		return KindUnexpected
	}
}

// Message describes err for clients. Underlying path errors are reduced to
// their reason so absolute server paths never leave the process.
func Message(err error) string {
	var fe *Error
	if !errors.As(err, &fe) {
		return "internal error"
	}

	reason := fe.Kind.String()
	var pathErr *fs.PathError
	var linkErr *os.LinkError
	switch {
	case errors.As(fe.Err, &pathErr):
		reason = pathErr.Err.Error()
	case errors.As(fe.Err, &linkErr):
		reason = linkErr.Err.Error()
	case fe.Err != nil:
		reason = fe.Err.Error()
	}

	if fe.Path == "" {
		return fmt.Sprintf("%s: %s", fe.Op, reason)
	}
	return fmt.Sprintf("%s %q: %s", fe.Op, fe.Path, reason)
}

// wrap converts a raw filesystem error into an *Error, keeping existing kinds.
func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return newError(KindOf(err), op, path, err)
}

var (
	errOutsideRoot   = errors.New("path escapes the root directory")
	errNotDirectory  = errors.New("not a directory")
	errIsDirectory   = errors.New("is a directory")
	errRootOperation = errors.New("operation not permitted on the root directory")
	errIntoItself    = errors.New("destination is inside the source directory")
	errEmptyName     = errors.New("name is empty")
)
