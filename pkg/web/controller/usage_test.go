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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/filed/pkg/web/model"
)

func setupUsageController(t *testing.T, method, path string) (*UsageController, *httptest.ResponseRecorder) {
	ctx, w := newTestContext(method, path, nil)
	return NewUsageController(ctx, t.TempDir()), w
}

func TestReadUsage(t *testing.T) {
	ctrl := &UsageController{root: t.TempDir()}

	usage, err := ctrl.readUsage()

	require.NoError(t, err)
	assert.Greater(t, usage.DiskTotal, uint64(0))
	assert.LessOrEqual(t, usage.DiskFree, usage.DiskTotal)
	assert.GreaterOrEqual(t, usage.DiskUsedPct, 0.0)
	assert.Less(t, usage.DiskUsedPct, 100.1)
	assert.Greater(t, usage.CpuCount, 0.0)
	assert.Greater(t, usage.MemTotalMiB, 0.0)
	assert.LessOrEqual(t, usage.MemUsedMiB, usage.MemTotalMiB)

	currentTime := time.Now().UnixMilli()
	assert.GreaterOrEqual(t, usage.Timestamp, currentTime-60*1000)
	assert.LessOrEqual(t, usage.Timestamp, currentTime)
}

func TestReadUsageMissingRoot(t *testing.T) {
	ctrl := &UsageController{root: "/definitely/not/a/real/volume/path"}

	_, err := ctrl.readUsage()

	assert.Error(t, err)
}

func TestGetUsageEndpoint(t *testing.T) {
	ctrl, w := setupUsageController(t, http.MethodGet, "/api/filemanager/usage")

	ctrl.GetUsage()

	require.Equal(t, http.StatusOK, w.Code)
	var usage model.Usage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &usage))
	assert.Greater(t, usage.DiskTotal, uint64(0))
	assert.NotZero(t, usage.Timestamp)
}

func TestWatchUsageStreamsEvents(t *testing.T) {
	ctrl, w := setupUsageController(t, http.MethodGet, "/api/filemanager/usage/watch")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	ctrl.ctx.Request = ctrl.ctx.Request.WithContext(ctx)

	ctrl.WatchUsage()

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))

	frames := strings.Split(strings.TrimSpace(w.Body.String()), "\n\n")
	require.NotEmpty(t, frames)
	require.True(t, strings.HasPrefix(frames[0], "data: "), frames[0])
	var usage model.Usage
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frames[0], "data: ")), &usage))
	assert.Greater(t, usage.DiskTotal, uint64(0))
}
