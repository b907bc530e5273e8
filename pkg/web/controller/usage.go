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
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/mem"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/alibaba/opensandbox/filed/pkg/log"
	"github.com/alibaba/opensandbox/filed/pkg/web/model"
)

// usageInterval is the refresh period of WatchUsage.
const usageInterval = time.Second

// UsageController reports capacity of the served volume.
type UsageController struct {
	*basicController
	root string
}

func NewUsageController(ctx *gin.Context, root string) *UsageController {
	return &UsageController{basicController: newBasicController(ctx), root: root}
}

// GetUsage returns current disk and memory usage.
func (c *UsageController) GetUsage() {
	usage, err := c.readUsage()
	if err != nil {
		log.Error("read usage: %v", err)
		c.RespondError(
			http.StatusInternalServerError,
			model.ErrorCodeRuntimeError,
			"error reading disk usage",
		)
		return
	}

	c.RespondSuccess(usage)
}

// WatchUsage streams usage snapshots as server sent events until the client
// goes away.
func (c *UsageController) WatchUsage() {
	c.setupSSEResponse()

	ctx := c.ctx.Request.Context()
	wait.UntilWithContext(ctx, func(ctx context.Context) {
		var data []byte
		usage, err := c.readUsage()
		if err != nil {
			data, _ = json.Marshal(model.NewErrorResponse(model.ErrorCodeRuntimeError, "error reading disk usage")) //nolint:errchkjson
		} else {
			data, _ = json.Marshal(usage) //nolint:errchkjson
		}
		if err := c.writeEvent(data); err != nil && ctx.Err() == nil {
			log.Error("WatchUsage write data %s error: %v", string(data), err)
		}
	}, usageInterval)
}

// readUsage collects disk usage of the root volume and host memory.
func (c *UsageController) readUsage() (*model.Usage, error) {
	usage := model.NewUsage()

	d, err := disk.Usage(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk usage: %w", err)
	}
	usage.DiskTotal = d.Total
	usage.DiskUsed = d.Used
	usage.DiskFree = d.Free
	usage.DiskUsedPct = d.UsedPercent

	usage.CpuCount = float64(runtime.GOMAXPROCS(-1))

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to get memory info: %w", err)
	}
	usage.MemTotalMiB = float64(vmStat.Total) / 1024 / 1024
	usage.MemUsedMiB = float64(vmStat.Used) / 1024 / 1024

	return usage, nil
}
