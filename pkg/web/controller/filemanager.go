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

package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/filed/pkg/filemanager"
	"github.com/alibaba/opensandbox/filed/pkg/log"
	"github.com/alibaba/opensandbox/filed/pkg/metrics"
	"github.com/alibaba/opensandbox/filed/pkg/web/model"
)

// FileManagerController serves the /api/filemanager routes.
type FileManagerController struct {
	*basicController
	fm *filemanager.Manager
}

func NewFileManagerController(ctx *gin.Context, fm *filemanager.Manager) *FileManagerController {
	return &FileManagerController{
		basicController: newBasicController(ctx),
		fm:              fm,
	}
}

// Browse lists a directory, optionally paginated.
func (c *FileManagerController) Browse() {
	rel := c.ctx.Query("path")
	items, err := c.fm.List(c.ctx.Request.Context(), rel)
	if err != nil {
		c.respondFileError("browse", err)
		return
	}
	metrics.RecordOperation("browse", "ok")

	page := c.QueryInt64(c.ctx.Query("page"), 1)
	pageSize := c.QueryInt64(c.ctx.Query("pageSize"), 0)
	c.RespondSuccess(model.BrowseResponse{
		CurrentPath: rel,
		Items:       model.NewFileSystemItems(filemanager.Paginate(items, int(page), int(pageSize))),
		Total:       len(items),
	})
}

// Search finds entries below the root whose name contains the query.
func (c *FileManagerController) Search() {
	query := c.ctx.Query("query")
	if query == "" {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeMissingQuery, "Search query is required")
		return
	}

	opts := filemanager.SearchOptions{
		IncludeFiles:       c.QueryBool(c.ctx.Query("includeFiles"), true),
		IncludeDirectories: c.QueryBool(c.ctx.Query("includeDirectories"), true),
		Policy:             filemanager.SkipOnError,
	}
	items, err := c.fm.Search(c.ctx.Request.Context(), query, opts)
	if err != nil {
		c.respondFileError("search", err)
		return
	}
	metrics.RecordOperation("search", "ok")

	c.RespondSuccess(model.SearchResponse{
		Query:   query,
		Results: model.NewFileSystemItems(items),
	})
}

// Delete removes a file or a whole directory tree.
func (c *FileManagerController) Delete() {
	var request model.DeleteRequest
	if !c.bindRequest(&request, request.Validate) {
		return
	}

	if err := c.fm.Delete(c.ctx.Request.Context(), request.Path); err != nil {
		c.respondFileError("delete", err)
		return
	}
	metrics.RecordOperation("delete", "ok")
	log.Info("deleted %q", request.Path)

	c.RespondSuccess(model.OperationResponse{
		Message: "Deleted successfully",
		Path:    request.Path,
	})
}

// Move renames an entry, creating missing destination parents.
func (c *FileManagerController) Move() {
	var request model.MoveRequest
	if !c.bindRequest(&request, request.Validate) {
		return
	}

	to, err := c.fm.Move(c.ctx.Request.Context(), request.SourcePath, request.DestinationPath)
	if err != nil {
		c.respondFileError("move", err)
		return
	}
	metrics.RecordOperation("move", "ok")
	log.Info("moved %q to %q", request.SourcePath, to)

	c.RespondSuccess(model.OperationResponse{
		Message: "Moved successfully",
		From:    request.SourcePath,
		To:      to,
	})
}

// Copy duplicates an entry; the response carries the path actually written.
func (c *FileManagerController) Copy() {
	var request model.CopyRequest
	if !c.bindRequest(&request, request.Validate) {
		return
	}

	to, err := c.fm.Copy(c.ctx.Request.Context(), request.SourcePath, request.DestinationPath, request.Overwrite)
	if err != nil {
		c.respondFileError("copy", err)
		return
	}
	metrics.RecordOperation("copy", "ok")
	log.Info("copied %q to %q", request.SourcePath, to)

	c.RespondSuccess(model.OperationResponse{
		Message: "Copied successfully",
		From:    request.SourcePath,
		To:      to,
	})
}

// CreateFolder makes a new directory below parentPath.
func (c *FileManagerController) CreateFolder() {
	var request model.CreateFolderRequest
	if !c.bindRequest(&request, request.Validate) {
		return
	}

	created, err := c.fm.CreateFolder(c.ctx.Request.Context(), request.ParentPath, request.FolderName)
	if err != nil {
		c.respondFileError("createfolder", err)
		return
	}
	metrics.RecordOperation("createfolder", "ok")

	c.RespondSuccess(model.OperationResponse{
		Message: "Folder created successfully",
		Path:    created,
	})
}

// Info describes a single entry including its detected content type.
func (c *FileManagerController) Info() {
	info, err := c.fm.Stat(c.ctx.Query("path"))
	if err != nil {
		c.respondFileError("info", err)
		return
	}
	metrics.RecordOperation("info", "ok")

	c.RespondSuccess(model.FileDetail{
		FileSystemItem: model.NewFileSystemItem(info.Item),
		MimeType:       info.MimeType,
	})
}

// bindRequest decodes the JSON body into target and validates it. It writes
// the 400 response itself and reports whether the handler may continue.
func (c *FileManagerController) bindRequest(target any, validate func() error) bool {
	if err := c.bindJSON(target); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request. %v", err),
		)
		return false
	}
	if err := validate(); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("invalid request. %v", err),
		)
		return false
	}
	return true
}

// respondFileError maps a filemanager error to its HTTP status. Unexpected
// failures are logged with full detail; clients only get the sanitized text.
func (c *FileManagerController) respondFileError(op string, err error) {
	kind := filemanager.KindOf(err)
	metrics.RecordOperation(op, kindLabel(kind))

	switch kind {
	case filemanager.KindInvalidPath:
		c.RespondError(http.StatusBadRequest, model.ErrorCodeInvalidPath, filemanager.Message(err))
	case filemanager.KindNotFound:
		c.RespondError(http.StatusNotFound, model.ErrorCodeNotFound, filemanager.Message(err))
	case filemanager.KindAlreadyExists:
		c.RespondError(http.StatusBadRequest, model.ErrorCodeAlreadyExists, filemanager.Message(err))
	default:
		log.Error("%s failed: %v", op, err)
		c.RespondError(http.StatusInternalServerError, model.ErrorCodeRuntimeError, filemanager.Message(err))
	}
}

func kindLabel(kind filemanager.Kind) string {
	switch kind {
	case filemanager.KindInvalidPath:
		return "invalid_path"
	case filemanager.KindNotFound:
		return "not_found"
	case filemanager.KindAlreadyExists:
		return "already_exists"
	default:
		return "error"
	}
}
