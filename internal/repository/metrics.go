package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Metrics stores API usage counters in Redis under the stats: prefix
type Metrics struct {
	client *redis.Client
}

// EndpointStats represents counters for one API path
type EndpointStats struct {
	Path         string  `json:"path"`
	TotalCalls   int64   `json:"total_calls"`
	SuccessCalls int64   `json:"success_calls"`
	ErrorCalls   int64   `json:"error_calls"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
	CacheHits    int64   `json:"cache_hits"`
	CacheMisses  int64   `json:"cache_misses"`
}

// DailyStats represents one day of traffic
type DailyStats struct {
	Date       string  `json:"date"`
	TotalCalls int64   `json:"total_calls"`
	AvgLatency float64 `json:"avg_latency"`
}

// OverallStats is the admin analytics payload
type OverallStats struct {
	TotalAPICalls int64           `json:"total_api_calls"`
	TodayAPICalls int64           `json:"today_api_calls"`
	AvgLatencyMs  float64         `json:"avg_latency_ms"`
	CacheHitRate  float64         `json:"cache_hit_rate"`
	ErrorRate     float64         `json:"error_rate"`
	TopEndpoints  []EndpointStats `json:"top_endpoints"`
	DailyTrend    []DailyStats    `json:"daily_trend"`
	Uptime        int64           `json:"uptime_seconds"`
}

// NewMetrics creates a Metrics instance on an existing Redis connection
func NewMetrics(client *redis.Client) *Metrics {
	return &Metrics{client: client}
}

// RecordAPICall records one request: path counters, daily counters and
// global totals, all in one pipeline.
func (m *Metrics) RecordAPICall(ctx context.Context, path string, statusCode int, latencyMs float64, cacheHit bool) error {
	today := time.Now().Format("2006-01-02")

	pipe := m.client.Pipeline()

	pathKey := "stats:path:" + path
	pipe.HIncrBy(ctx, pathKey, "total", 1)
	pipe.HIncrByFloat(ctx, pathKey, "latency_sum", latencyMs)

	if statusCode >= 200 && statusCode < 400 {
		pipe.HIncrBy(ctx, pathKey, "success", 1)
	} else {
		pipe.HIncrBy(ctx, pathKey, "error", 1)
	}

	if cacheHit {
		pipe.HIncrBy(ctx, pathKey, "cache_hits", 1)
	} else {
		pipe.HIncrBy(ctx, pathKey, "cache_misses", 1)
	}

	dailyKey := "stats:daily:" + today
	pipe.HIncrBy(ctx, dailyKey, "total", 1)
	pipe.HIncrByFloat(ctx, dailyKey, "latency_sum", latencyMs)
	pipe.Expire(ctx, dailyKey, 30*24*time.Hour) // Keep 30 days

	pipe.Incr(ctx, "stats:global:total")
	pipe.IncrByFloat(ctx, "stats:global:latency_sum", latencyMs)
	pipe.SAdd(ctx, "stats:paths", path)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to record metrics")
	}
	return err
}

// GetEndpointStats gets counters for a specific API path
func (m *Metrics) GetEndpointStats(ctx context.Context, path string) (*EndpointStats, error) {
	result, err := m.client.HGetAll(ctx, "stats:path:"+path).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return &EndpointStats{Path: path}, nil
	}

	total, _ := strconv.ParseInt(result["total"], 10, 64)
	success, _ := strconv.ParseInt(result["success"], 10, 64)
	errors, _ := strconv.ParseInt(result["error"], 10, 64)
	latencySum, _ := strconv.ParseFloat(result["latency_sum"], 64)
	cacheHits, _ := strconv.ParseInt(result["cache_hits"], 10, 64)
	cacheMisses, _ := strconv.ParseInt(result["cache_misses"], 10, 64)

	avgLatency := 0.0
	if total > 0 {
		avgLatency = latencySum / float64(total)
	}

	return &EndpointStats{
		Path:         path,
		TotalCalls:   total,
		SuccessCalls: success,
		ErrorCalls:   errors,
		AvgLatencyMs: avgLatency,
		CacheHits:    cacheHits,
		CacheMisses:  cacheMisses,
	}, nil
}

// GetOverallStats builds the admin analytics payload
func (m *Metrics) GetOverallStats(ctx context.Context) (*OverallStats, error) {
	stats := &OverallStats{}

	total, _ := m.client.Get(ctx, "stats:global:total").Int64()
	latencySum, _ := m.client.Get(ctx, "stats:global:latency_sum").Float64()
	stats.TotalAPICalls = total
	if total > 0 {
		stats.AvgLatencyMs = latencySum / float64(total)
	}

	today := time.Now().Format("2006-01-02")
	todayCalls, _ := m.client.HGet(ctx, "stats:daily:"+today, "total").Int64()
	stats.TodayAPICalls = todayCalls

	paths, _ := m.client.SMembers(ctx, "stats:paths").Result()
	var allStats []EndpointStats
	var cacheHits, cacheMisses, errorCalls int64

	for _, path := range paths {
		pathStats, err := m.GetEndpointStats(ctx, path)
		if err == nil && pathStats.TotalCalls > 0 {
			allStats = append(allStats, *pathStats)
			cacheHits += pathStats.CacheHits
			cacheMisses += pathStats.CacheMisses
			errorCalls += pathStats.ErrorCalls
		}
	}

	sort.Slice(allStats, func(i, j int) bool {
		return allStats[i].TotalCalls > allStats[j].TotalCalls
	})
	if len(allStats) > 10 {
		allStats = allStats[:10]
	}
	stats.TopEndpoints = allStats

	if ops := cacheHits + cacheMisses; ops > 0 {
		stats.CacheHitRate = float64(cacheHits) / float64(ops) * 100
	}
	if total > 0 {
		stats.ErrorRate = float64(errorCalls) / float64(total) * 100
	}

	stats.DailyTrend = m.getDailyTrend(ctx, 7)

	if startTime, err := m.client.Get(ctx, "stats:server:start_time").Int64(); err == nil && startTime > 0 {
		stats.Uptime = time.Now().Unix() - startTime
	}

	return stats, nil
}

// getDailyTrend gets daily counters for the last N days
func (m *Metrics) getDailyTrend(ctx context.Context, days int) []DailyStats {
	var trend []DailyStats

	for i := days - 1; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i).Format("2006-01-02")

		result, err := m.client.HGetAll(ctx, "stats:daily:"+date).Result()
		if err != nil {
			continue
		}

		total, _ := strconv.ParseInt(result["total"], 10, 64)
		latencySum, _ := strconv.ParseFloat(result["latency_sum"], 64)

		avgLatency := 0.0
		if total > 0 {
			avgLatency = latencySum / float64(total)
		}

		trend = append(trend, DailyStats{Date: date, TotalCalls: total, AvgLatency: avgLatency})
	}

	return trend
}

// RecordServerStart records server start time
func (m *Metrics) RecordServerStart(ctx context.Context) {
	m.client.Set(ctx, "stats:server:start_time", time.Now().Unix(), 0)
}

// ResetMetrics drops all collected counters
func (m *Metrics) ResetMetrics(ctx context.Context) error {
	keys, err := m.client.Keys(ctx, "stats:*").Result()
	if err != nil {
		return fmt.Errorf("stats keys scan failed: %w", err)
	}

	if len(keys) > 0 {
		return m.client.Del(ctx, keys...).Err()
	}
	return nil
}
