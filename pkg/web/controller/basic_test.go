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
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alibaba/opensandbox/filed/pkg/web/model"
)

func TestRespondSuccess(t *testing.T) {
	ctx, w := newTestContext(http.MethodGet, "/", nil)
	ctrl := newBasicController(ctx)

	ctrl.RespondSuccess(map[string]string{"status": "ok"})

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
}

func TestRespondSuccessWithoutBody(t *testing.T) {
	ctx, w := newTestContext(http.MethodGet, "/", nil)

	newBasicController(ctx).RespondSuccess(nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRespondErrorFillsBothMessageKeys(t *testing.T) {
	ctx, w := newTestContext(http.MethodGet, "/", nil)

	newBasicController(ctx).RespondError(http.StatusBadRequest, model.ErrorCodeInvalidRequest, "invalid payload")

	require.Equal(t, http.StatusBadRequest, w.Code)
	var got model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, model.ErrorCodeInvalidRequest, got.Code)
	assert.Equal(t, "invalid payload", got.Message)
	assert.Equal(t, "invalid payload", got.Error)
}

func TestBindJSON(t *testing.T) {
	ctx, _ := newTestContext(http.MethodPost, "/", []byte(`{"path":"docs/a.txt"}`))
	var req model.DeleteRequest

	require.NoError(t, newBasicController(ctx).bindJSON(&req))
	assert.Equal(t, "docs/a.txt", req.Path)

	ctx, _ = newTestContext(http.MethodPost, "/", []byte(`{"path":`))
	assert.Error(t, newBasicController(ctx).bindJSON(&req))
}

func TestQueryInt64(t *testing.T) {
	ctrl := &basicController{}

	tests := []struct {
		name     string
		query    string
		def      int64
		expected int64
	}{
		{name: "valid number", query: "42", def: 0, expected: 42},
		{name: "empty uses default", query: "", def: 5, expected: 5},
		{name: "invalid uses default", query: "not-a-number", def: -1, expected: -1},
		{name: "negative number", query: "-10", def: 0, expected: -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ctrl.QueryInt64(tt.query, tt.def))
		})
	}
}

func TestQueryBool(t *testing.T) {
	ctrl := &basicController{}

	tests := []struct {
		name     string
		query    string
		def      bool
		expected bool
	}{
		{name: "true literal", query: "true", def: false, expected: true},
		{name: "false literal", query: "false", def: true, expected: false},
		{name: "numeric", query: "0", def: true, expected: false},
		{name: "padded", query: " TRUE ", def: false, expected: true},
		{name: "empty uses default", query: "", def: true, expected: true},
		{name: "garbage uses default", query: "maybe", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ctrl.QueryBool(tt.query, tt.def))
		})
	}
}

func TestPingHandler(t *testing.T) {
	ctx, w := newTestContext(http.MethodGet, "/ping", nil)

	PingHandler(ctx)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}
