package repository

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"rental-readiness-workers/internal/common/config"
	"rental-readiness-workers/internal/common/errors"
	"rental-readiness-workers/internal/common/logger"
	"rental-readiness-workers/internal/common/metrics"
	"rental-readiness-workers/internal/readiness"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
)

const rentCache = "suburb_rents"

// RentSource hands a handler the suburb median dataset for one job.
type RentSource interface {
	Rents(ctx context.Context) readiness.RentLookup
}

// StaticRents serves a fixed table.
type StaticRents struct {
	Table readiness.RentLookup
}

func (s StaticRents) Rents(context.Context) readiness.RentLookup {
	return s.Table
}

// RentLoader builds the dataset from configured medians overlaid by the
// Elasticsearch rent index. Index results are cached in Redis.
type RentLoader struct {
	es     *elasticsearch.Client
	redis  *redis.Client
	cfg    config.ScoringConfig
	logger logger.Logger
}

// NewRentLoader accepts nil es and redis clients; the config table is then used alone.
func NewRentLoader(es *elasticsearch.Client, redisClient *redis.Client, cfg config.ScoringConfig, log logger.Logger) *RentLoader {
	if cfg.RentIndex == "" {
		cfg.RentIndex = "suburb_rents"
	}
	return &RentLoader{es: es, redis: redisClient, cfg: cfg, logger: log}
}

func (l *RentLoader) cacheKey() string {
	return "rents:" + l.cfg.RentIndex
}

// Rents never fails: index and cache errors are logged and the config table is served.
func (l *RentLoader) Rents(ctx context.Context) readiness.RentLookup {
	table, err := l.Load(ctx)
	if err != nil {
		l.logger.Warn("using configured suburb medians", map[string]interface{}{
			"index": l.cfg.RentIndex,
			"error": err.Error(),
		})
	}
	return table
}

// Load returns the merged table. On error the returned table holds the configured medians.
func (l *RentLoader) Load(ctx context.Context) (*readiness.RentTable, error) {
	base := readiness.NewRentTable(l.cfg.SuburbMedianRent, l.cfg.DefaultMedianRent)

	if cached, ok := l.cached(ctx); ok {
		return base.Merge(cached), nil
	}
	if l.es == nil {
		return base, nil
	}

	indexed, err := l.search(ctx)
	if err != nil {
		return base, err
	}
	l.store(ctx, indexed)
	return base.Merge(indexed), nil
}

func (l *RentLoader) cached(ctx context.Context) (map[string]float64, bool) {
	if l.redis == nil {
		return nil, false
	}
	val, err := l.redis.Get(ctx, l.cacheKey()).Result()
	if err != nil {
		result := "miss"
		if !stderrors.Is(err, redis.Nil) {
			result = "error"
		}
		metrics.CacheLookups.WithLabelValues(rentCache, result).Inc()
		return nil, false
	}

	var medians map[string]float64
	if err := json.Unmarshal([]byte(val), &medians); err != nil {
		metrics.CacheLookups.WithLabelValues(rentCache, "error").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues(rentCache, "hit").Inc()
	return medians, true
}

func (l *RentLoader) store(ctx context.Context, medians map[string]float64) {
	if l.redis == nil {
		return
	}
	data, _ := json.Marshal(medians)
	if err := l.redis.Set(ctx, l.cacheKey(), data, l.cfg.CacheTTL()).Err(); err != nil {
		l.logger.Warn("rent cache write failed", map[string]interface{}{"error": err.Error()})
	}
}

type rentHit struct {
	Source struct {
		Suburb     string  `json:"suburb"`
		MedianRent float64 `json:"median_rent"`
	} `json:"_source"`
}

func (l *RentLoader) search(ctx context.Context) (map[string]float64, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query":   map[string]interface{}{"match_all": map[string]interface{}{}},
		"size":    10000,
		"_source": []string{"suburb", "median_rent"},
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req := esapi.SearchRequest{
		Index: []string{l.cfg.RentIndex},
		Body:  strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, l.es)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(rentCache, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError(rentCache, fmt.Errorf("search failed: %s", res.Status()))
	}

	var r struct {
		Hits struct {
			Hits []rentHit `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, errors.NewSearchQueryFailedError(rentCache, err)
	}

	medians := make(map[string]float64, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if hit.Source.Suburb == "" || hit.Source.MedianRent <= 0 {
			continue
		}
		medians[hit.Source.Suburb] = hit.Source.MedianRent
	}
	return medians, nil
}
