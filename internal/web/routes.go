// Package web exposes the resolution engine over HTTP.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/cty"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/entity"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/logging"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/internal/redisclient"
	"github.com/kd4d/Contest-Log-Analyzer-sub002/version"
)

// Lookup is what the routes need from the resolution engine.
type Lookup interface {
	Resolve(callsign string) entity.FullEntityInfo
}

var lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cty_lookups_total",
	Help: "Callsign lookups served, by outcome.",
}, []string{"outcome"})

// SetupRoutes configures all API endpoints. cache may be nil, in which case
// every lookup runs the engine directly.
func SetupRoutes(r *gin.RouterGroup, lookup Lookup, ctyClient *cty.Client,
	cache *redisclient.Client, cacheExpiry time.Duration) {

	// GET /lookup/:callsign - Resolve a callsign to its entity record.
	r.GET("/lookup/:callsign", func(c *gin.Context) {
		callsign := c.Param("callsign")

		if cache != nil {
			key := "lookup:" + callsign
			if raw, err := cache.Get(c.Request.Context(), key).Result(); err == nil {
				var cached entity.FullEntityInfo
				if err := json.Unmarshal([]byte(raw), &cached); err == nil {
					lookupsTotal.WithLabelValues("cached").Inc()
					c.JSON(http.StatusOK, cached)
					return
				}
			}
		}

		info := lookup.Resolve(callsign)
		if info.IsUnknown() {
			lookupsTotal.WithLabelValues("unknown").Inc()
		} else {
			lookupsTotal.WithLabelValues("resolved").Inc()
		}

		if cache != nil {
			if raw, err := json.Marshal(info); err == nil {
				if err := cache.Set(c.Request.Context(), "lookup:"+callsign, raw, cacheExpiry).Err(); err != nil {
					logging.Debug("Failed to cache lookup for %q: %v", callsign, err)
				}
			}
		}

		c.JSON(http.StatusOK, info)
	})

	// GET /stats - Table sizes and reference-data freshness.
	r.GET("/stats", func(c *gin.Context) {
		stats := gin.H{
			"version":           version.ProjectVersion,
			"dxcc_keys":         ctyClient.DxccTable().Len(),
			"wae_keys":          ctyClient.WaeTable().Len(),
			"dxcc_last_updated": nil,
			"wae_last_updated":  nil,
		}
		if t, err := ctyClient.GetLastDownloadTime(context.Background(), cty.EditionDXCC); err == nil && !t.IsZero() {
			stats["dxcc_last_updated"] = t.Format(time.RFC3339)
		}
		if t, err := ctyClient.GetLastDownloadTime(context.Background(), cty.EditionWAE); err == nil && !t.IsZero() {
			stats["wae_last_updated"] = t.Format(time.RFC3339)
		}
		c.JSON(http.StatusOK, stats)
	})

	// GET /metrics - Prometheus metrics.
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// GET /healthz - Liveness probe.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
