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

package model

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alibaba/opensandbox/filed/pkg/filemanager"
)

// FileSystemItem is the wire form of a directory entry.
type FileSystemItem struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	IsDirectory  bool      `json:"isDirectory"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	// Extension is null for directories.
	Extension *string `json:"extension"`
}

func NewFileSystemItem(it filemanager.Item) FileSystemItem {
	out := FileSystemItem{
		Name:         it.Name,
		Path:         it.Path,
		IsDirectory:  it.IsDir,
		Size:         it.Size,
		LastModified: it.ModTime,
	}
	if !it.IsDir {
		ext := it.Extension
		out.Extension = &ext
	}
	return out
}

func NewFileSystemItems(items []filemanager.Item) []FileSystemItem {
	out := make([]FileSystemItem, 0, len(items))
	for _, it := range items {
		out = append(out, NewFileSystemItem(it))
	}
	return out
}

type BrowseResponse struct {
	CurrentPath string           `json:"currentPath"`
	Items       []FileSystemItem `json:"items"`
	Total       int              `json:"total"`
}

type SearchResponse struct {
	Query   string           `json:"query"`
	Results []FileSystemItem `json:"results"`
}

// FileDetail is returned by the info endpoint.
type FileDetail struct {
	FileSystemItem `json:",inline"`
	MimeType       string `json:"mimeType,omitempty"`
}

type DeleteRequest struct {
	Path string `json:"path" validate:"required"`
}

func (r *DeleteRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

type MoveRequest struct {
	SourcePath      string `json:"sourcePath" validate:"required"`
	DestinationPath string `json:"destinationPath" validate:"required"`
}

func (r *MoveRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

type CopyRequest struct {
	SourcePath      string `json:"sourcePath" validate:"required"`
	DestinationPath string `json:"destinationPath" validate:"required"`
	Overwrite       bool   `json:"overwrite"`
}

func (r *CopyRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

type CreateFolderRequest struct {
	ParentPath string `json:"parentPath"`
	FolderName string `json:"folderName" validate:"required"`
}

func (r *CreateFolderRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

type DownloadBatchRequest struct {
	Paths []string `json:"paths" validate:"required,min=1"`
}

func (r *DownloadBatchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// OperationResponse acknowledges a mutation with the paths it touched.
type OperationResponse struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

type UploadResponse struct {
	Message string           `json:"message"`
	Files   []FileSystemItem `json:"files"`
}
