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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/alibaba/opensandbox/filed/pkg/filemanager"
	"github.com/alibaba/opensandbox/filed/pkg/flag"
	"github.com/alibaba/opensandbox/filed/pkg/log"
	"github.com/alibaba/opensandbox/filed/pkg/util/safego"
	"github.com/alibaba/opensandbox/filed/pkg/web"
)

// main initializes and starts the filed server.
func main() {
	if err := run(); err != nil {
		log.Error("filed exited: %v", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func run() error {
	cfg, err := flag.Load(os.Args[1:])
	if err != nil {
		return err
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	safego.InitPanicLogger(ctx)

	root, err := filemanager.OpenRoot(cfg.Root)
	if err != nil {
		return fmt.Errorf("open root %s: %w", cfg.Root, err)
	}
	fm, err := filemanager.New(root, filemanager.Options{
		TempDir: cfg.TempDir,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           web.NewRouter(fm, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("filed listening on %s, serving %s", server.Addr, root.Path())
	serveErr := safego.Run("http server", func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start filed server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down, draining requests for up to %v", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
