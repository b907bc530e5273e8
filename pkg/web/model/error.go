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

// ErrorCode is the machine readable reason of a failed request.
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeMissingQuery   ErrorCode = "MISSING_QUERY"
	ErrorCodeInvalidPath    ErrorCode = "INVALID_PATH"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrorCodeNoFiles        ErrorCode = "NO_FILES"
	ErrorCodeRateLimited    ErrorCode = "RATE_LIMITED"
	ErrorCodeRuntimeError   ErrorCode = "RUNTIME_ERROR"
	ErrorCodeUnknown        ErrorCode = "UNKNOWN"
)

// ErrorResponse is the body of every non-2xx JSON response. Error repeats
// Message for clients that read the "error" key.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Error   string    `json:"error"`
}

func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{Code: code, Message: message, Error: message}
}
