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
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/alibaba/opensandbox/filed/pkg/log"
	"github.com/alibaba/opensandbox/filed/pkg/web/model"
)

// limiterIdleTTL is how long a client's limiter survives without requests.
const limiterIdleTTL = 10 * time.Minute

func logMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		log.Info("Requested: %v - %v %d %v",
			ctx.Request.Method, ctx.Request.URL.Path, ctx.Writer.Status(), time.Since(start))
	}
}

// corsMiddleware allows any origin when origins is empty or contains "*".
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Content-Length",
			"Accept",
			"Range",
		},
		ExposeHeaders: []string{"Content-Disposition", "Content-Length", "Content-Range"},
		MaxAge:        12 * time.Hour,
	}

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// rateLimitMiddleware enforces a token bucket per client IP. Idle limiters
// are dropped on the next request after limiterIdleTTL.
func rateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu        sync.Mutex
		clients   = make(map[string]*client)
		lastSweep = time.Now()
	)

	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(lastSweep) > limiterIdleTTL {
			for key, c := range clients {
				if now.Sub(c.lastSeen) > limiterIdleTTL {
					delete(clients, key)
				}
			}
			lastSweep = now
		}
		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[ip] = c
		}
		c.lastSeen = now
		limiter := c.limiter
		mu.Unlock()

		if !limiter.Allow() {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, model.NewErrorResponse(
				model.ErrorCodeRateLimited,
				"rate limit exceeded",
			))
			return
		}

		ctx.Next()
	}
}
