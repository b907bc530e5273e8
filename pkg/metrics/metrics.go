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

// Package metrics exposes Prometheus metrics for the file manager API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filed_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filed_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filed_operations_total",
			Help: "File manager operations by outcome",
		},
		[]string{"op", "result"},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filed_bytes_uploaded_total",
			Help: "Total bytes stored by uploads",
		},
	)

	bytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filed_bytes_downloaded_total",
			Help: "Total bytes served by single file downloads",
		},
	)

	archiveBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filed_archive_size_bytes",
			Help:    "Size of generated batch archives",
			Buckets: prometheus.ExponentialBuckets(1<<10, 4, 10),
		},
	)

	archiveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filed_archive_build_duration_seconds",
			Help:    "Time spent building batch archives",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Middleware records count and latency of every request. Routes are
// labelled by their pattern so client paths never become label values.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordOperation counts op with result "ok" or an error kind.
func RecordOperation(op, result string) {
	operationsTotal.WithLabelValues(op, result).Inc()
}

func AddBytesUploaded(n int64) {
	bytesUploaded.Add(float64(n))
}

func AddBytesDownloaded(n int64) {
	bytesDownloaded.Add(float64(n))
}

func ObserveArchive(size int64, took time.Duration) {
	archiveBytes.Observe(float64(size))
	archiveDuration.Observe(took.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
