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

package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/filed/pkg/filemanager"
	"github.com/alibaba/opensandbox/filed/pkg/flag"
	"github.com/alibaba/opensandbox/filed/pkg/metrics"
	"github.com/alibaba/opensandbox/filed/pkg/web/controller"
	"github.com/alibaba/opensandbox/filed/pkg/web/model"
)

// NewRouter builds a Gin engine with all file manager routes.
func NewRouter(fm *filemanager.Manager, cfg *flag.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxMultipartMemory
	r.Use(gin.Recovery())
	r.Use(logMiddleware(), metrics.Middleware(), corsMiddleware(cfg.CORSOrigins))

	r.GET("/ping", controller.PingHandler)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/filemanager")
	if cfg.RateLimitRPS > 0 {
		api.Use(rateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	{
		api.GET("/browse", withFileManager(fm, func(c *controller.FileManagerController) { c.Browse() }))
		api.GET("/search", withFileManager(fm, func(c *controller.FileManagerController) { c.Search() }))
		api.GET("/info", withFileManager(fm, func(c *controller.FileManagerController) { c.Info() }))
		api.DELETE("/delete", withFileManager(fm, func(c *controller.FileManagerController) { c.Delete() }))
		api.POST("/move", withFileManager(fm, func(c *controller.FileManagerController) { c.Move() }))
		api.POST("/copy", withFileManager(fm, func(c *controller.FileManagerController) { c.Copy() }))
		api.POST("/createfolder", withFileManager(fm, func(c *controller.FileManagerController) { c.CreateFolder() }))
		api.POST("/upload", withFileManager(fm, func(c *controller.FileManagerController) { c.Upload() }))
		api.GET("/download", withFileManager(fm, func(c *controller.FileManagerController) { c.Download() }))
		api.POST("/download-batch", withFileManager(fm, func(c *controller.FileManagerController) { c.DownloadBatch() }))
		api.GET("/usage", withUsage(fm, func(c *controller.UsageController) { c.GetUsage() }))
		api.GET("/usage/watch", withUsage(fm, func(c *controller.UsageController) { c.WatchUsage() }))
	}

	r.NoRoute(staticHandler(cfg.StaticDir))

	return r
}

func withFileManager(fm *filemanager.Manager, fn func(*controller.FileManagerController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewFileManagerController(ctx, fm))
	}
}

func withUsage(fm *filemanager.Manager, fn func(*controller.UsageController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewUsageController(ctx, fm.Root().Path()))
	}
}

// staticHandler serves the browser UI from dir for unmatched GET requests.
// API paths and other methods get a JSON 404.
func staticHandler(dir string) gin.HandlerFunc {
	var files http.Handler
	if dir != "" {
		files = http.FileServer(http.Dir(dir))
	}

	return func(ctx *gin.Context) {
		method := ctx.Request.Method
		isRead := method == http.MethodGet || method == http.MethodHead
		if files == nil || !isRead || strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			ctx.JSON(http.StatusNotFound, model.NewErrorResponse(model.ErrorCodeNotFound, "route not found"))
			return
		}
		files.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
