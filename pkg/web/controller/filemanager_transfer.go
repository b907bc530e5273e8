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
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/alibaba/opensandbox/filed/pkg/filemanager"
	"github.com/alibaba/opensandbox/filed/pkg/log"
	"github.com/alibaba/opensandbox/filed/pkg/metrics"
	"github.com/alibaba/opensandbox/filed/pkg/web/model"
)

// uploadFields are the multipart field names carrying files.
var uploadFields = []string{"files", "files[]"}

// Upload stores the multipart files into the directory named by the "path"
// form value. The directory is checked before the file list.
func (c *FileManagerController) Upload() {
	var headers []*multipart.FileHeader
	form, err := c.ctx.MultipartForm()
	switch {
	case err == nil:
		for _, field := range uploadFields {
			headers = append(headers, form.File[field]...)
		}
	case !errors.Is(err, http.ErrNotMultipart):
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing multipart form. %v", err),
		)
		return
	}

	parts := make([]filemanager.UploadPart, 0, len(headers))
	for _, fh := range headers {
		parts = append(parts, filemanager.UploadPart{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	dir := c.ctx.PostForm("path")
	items, err := c.fm.Upload(c.ctx.Request.Context(), dir, parts)
	if errors.Is(err, filemanager.ErrNoFiles) {
		metrics.RecordOperation("upload", kindLabel(filemanager.KindInvalidPath))
		c.RespondError(http.StatusBadRequest, model.ErrorCodeNoFiles, "No files uploaded")
		return
	}
	if err != nil {
		c.respondFileError("upload", err)
		return
	}
	metrics.RecordOperation("upload", "ok")

	var stored int64
	for _, it := range items {
		stored += it.Size
	}
	metrics.AddBytesUploaded(stored)
	log.Info("uploaded %d file(s), %d bytes, into %q", len(items), stored, dir)

	c.RespondSuccess(model.UploadResponse{
		Message: "Upload successful",
		Files:   model.NewFileSystemItems(items),
	})
}

// Download streams one file as an attachment. Range requests are honored.
// An empty path names the root, which is not a file.
func (c *FileManagerController) Download() {
	rel := c.ctx.Query("path")
	file, info, err := c.fm.Open(c.ctx.Request.Context(), rel)
	if err != nil {
		c.respondFileError("download", err)
		return
	}
	defer file.Close()
	metrics.RecordOperation("download", "ok")

	c.ctx.Header("Content-Type", "application/octet-stream")
	c.ctx.Header("Content-Disposition", attachment(info.Name()))

	http.ServeContent(c.ctx.Writer, c.ctx.Request, info.Name(), info.ModTime(), file)
	if n := c.ctx.Writer.Size(); n > 0 {
		metrics.AddBytesDownloaded(int64(n))
	}
}

// DownloadBatch zips the selected paths into a single attachment.
func (c *FileManagerController) DownloadBatch() {
	var request model.DownloadBatchRequest
	if err := c.bindJSON(&request); err != nil {
		c.RespondError(
			http.StatusBadRequest,
			model.ErrorCodeInvalidRequest,
			fmt.Sprintf("error parsing request. %v", err),
		)
		return
	}
	if err := request.Validate(); err != nil {
		c.RespondError(http.StatusBadRequest, model.ErrorCodeNoFiles, "No files selected")
		return
	}

	start := time.Now()
	archive, err := c.fm.BuildArchive(c.ctx.Request.Context(), request.Paths)
	if err != nil {
		c.respondFileError("download-batch", err)
		return
	}
	defer func() {
		if err := archive.Close(); err != nil {
			log.Warn("failed to remove batch archive: %v", err)
		}
	}()
	metrics.RecordOperation("download-batch", "ok")
	metrics.ObserveArchive(archive.Size(), time.Since(start))
	log.Info("built archive of %d entries, %d bytes", archive.Entries(), archive.Size())

	name := fmt.Sprintf("Download_%s.zip", time.Now().Format("20060102_150405"))
	c.ctx.DataFromReader(http.StatusOK, archive.Size(), "application/zip", archive, map[string]string{
		"Content-Disposition": attachment(name),
	})
}

func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
