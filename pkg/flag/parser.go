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

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Keys carry the FILED_ prefix in their tags; an empty prefix keeps
// envconfig from falling back to unprefixed names such as PORT.
const envPrefix = ""

// Load reads the environment, then lets args override it.
func Load(args []string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	fs := flag.NewFlagSet("filed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Server listening port")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Root, "root", cfg.Root, "Directory served by the file manager")
	fs.StringVar(&cfg.TempDir, "temp-dir", cfg.TempDir, "Directory for temporary archives (default: system temp dir)")
	fs.Int64Var(&cfg.MaxMultipartMemory, "max-multipart-memory", cfg.MaxMultipartMemory, "Bytes of a multipart upload kept in memory")
	fs.Var((*listValue)(&cfg.Exclude), "exclude", "Comma separated glob patterns hidden from the API")
	fs.Var((*listValue)(&cfg.CORSOrigins), "cors-origins", "Comma separated allowed CORS origins")
	fs.Float64Var(&cfg.RateLimitRPS, "rate-limit-rps", cfg.RateLimitRPS, "Requests per second per client, 0 disables")
	fs.IntVar(&cfg.RateLimitBurst, "rate-limit-burst", cfg.RateLimitBurst, "Rate limiter burst size")
	fs.StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "Optional directory with browser UI assets")
	fs.DurationVar(&cfg.ShutdownTimeout, "graceful-shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	if c.MaxMultipartMemory <= 0 {
		errs = append(errs, errors.New("max multipart memory must be positive"))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate limit must not be negative"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		errs = append(errs, errors.New("rate limit burst must be positive when rate limiting is enabled"))
	}
	for _, origin := range c.CORSOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			errs = append(errs, fmt.Errorf("cors origin %q must be \"*\" or start with http:// or https://", origin))
		}
	}
	if c.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("shutdown timeout must not be negative"))
	}
	return errors.Join(errs...)
}

// listValue is a comma separated flag that replaces the env value.
type listValue []string

func (l *listValue) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}

func (l *listValue) Set(v string) error {
	*l = (*l)[:0]
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}
