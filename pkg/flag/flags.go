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

package flag

import "time"

// Config holds every runtime setting of the server. Values come from
// FILED_* environment variables first, command line flags override them.
type Config struct {
	// Port is the HTTP listener port.
	Port int `envconfig:"FILED_PORT" default:"44780"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `envconfig:"FILED_LOG_LEVEL" default:"info"`

	// Root is the only directory the API may touch. Created when missing.
	Root string `envconfig:"FILED_ROOT" default:"./data"`

	// TempDir receives batch archives while they are built.
	TempDir string `envconfig:"FILED_TEMP_DIR"`

	// MaxMultipartMemory bounds the in-memory part of a multipart upload;
	// larger parts spill to disk.
	MaxMultipartMemory int64 `envconfig:"FILED_MAX_MULTIPART_MEMORY" default:"33554432"`

	// Exclude holds doublestar patterns hidden from listings, searches and archives.
	Exclude []string `envconfig:"FILED_EXCLUDE"`

	// CORSOrigins lists allowed browser origins, "*" allows any.
	CORSOrigins []string `envconfig:"FILED_CORS_ORIGINS" default:"*"`

	// RateLimitRPS caps requests per second per client IP, zero disables.
	RateLimitRPS   float64 `envconfig:"FILED_RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `envconfig:"FILED_RATE_LIMIT_BURST" default:"50"`

	// StaticDir optionally serves a browser UI for unmatched routes.
	StaticDir string `envconfig:"FILED_STATIC_DIR"`

	// ShutdownTimeout bounds the graceful drain of in-flight requests.
	ShutdownTimeout time.Duration `envconfig:"FILED_SHUTDOWN_TIMEOUT" default:"10s"`
}
