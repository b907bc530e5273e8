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
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/filed/pkg/filemanager"
	"github.com/alibaba/opensandbox/filed/pkg/web/model"
)

func newTestContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	ctx.Request = req
	return ctx, w
}

func newTestFileManager(t *testing.T) *filemanager.Manager {
	t.Helper()
	root, err := filemanager.OpenRoot(filepath.Join(t.TempDir(), "root"))
	require.NoError(t, err)
	fm, err := filemanager.New(root, filemanager.Options{TempDir: t.TempDir()})
	require.NoError(t, err)
	return fm
}

func setupFileManagerController(t *testing.T, method, path string, body []byte) (*FileManagerController, *filemanager.Manager, *httptest.ResponseRecorder) {
	t.Helper()
	fm := newTestFileManager(t)
	ctx, w := newTestContext(method, path, body)
	return NewFileManagerController(ctx, fm), fm, w
}

func seedFile(t *testing.T, fm *filemanager.Manager, rel, content string) string {
	t.Helper()
	abs := filepath.Join(fm.Root().Path(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return abs
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// multipartBody encodes files under field plus the extra form values.
func multipartBody(t *testing.T, field string, files map[string]string, values map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func newMultipartContext(t *testing.T, fm *filemanager.Manager, body io.Reader, contentType string) (*FileManagerController, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/api/filemanager/upload", body)
	ctx.Request.Header.Set("Content-Type", contentType)
	return NewFileManagerController(ctx, fm), w
}
