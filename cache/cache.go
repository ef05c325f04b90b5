package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"go-commentary/logger"
	"go-commentary/types"

	"golang.org/x/sync/singleflight"
)

// Key identifies one analysis: the same text, roster and models give the same results.
type Key struct {
	ContentHash   string
	RosterVersion string
	ModelVersion  string
}

func (k Key) String() string {
	return fmt.Sprintf("analysis:%s", types.HashString(k.ContentHash+"|"+k.RosterVersion+"|"+k.ModelVersion))
}

// AnalysisCache runs at most one computation per key at a time.
type AnalysisCache struct {
	store Store
	group singleflight.Group
}

func New(store Store) *AnalysisCache {
	if store == nil {
		store = NewMemoryStore()
	}
	return &AnalysisCache{store: store}
}

// GetOrCompute returns a cached analysis when present, otherwise runs compute
// once for all concurrent callers with the same key. Only complete analyses
// are stored. hit reports whether the analysis came from the store.
func (c *AnalysisCache) GetOrCompute(ctx context.Context, key Key, compute func(ctx context.Context) (types.TranscriptAnalysis, error)) (analysis types.TranscriptAnalysis, hit bool, err error) {
	k := key.String()
	if data, ok := c.lookup(ctx, k); ok {
		if analysis, err := decode(data); err == nil {
			return analysis, true, nil
		}
		logger.Warn("discarding undecodable cache entry", "key", k)
	}

	v, err, _ := c.group.Do(k, func() (interface{}, error) {
		if data, ok := c.lookup(ctx, k); ok {
			if _, err := decode(data); err == nil {
				return data, nil
			}
		}
		computed, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(computed)
		if err != nil {
			return nil, fmt.Errorf("failed to encode analysis: %w", err)
		}
		if computed.Status != types.StatusOK {
			return data, nil
		}
		if err := c.store.Set(ctx, k, data); err != nil {
			logger.Warn("failed to store analysis", "key", k, "err", err)
		}
		return data, nil
	})
	if err != nil {
		return types.TranscriptAnalysis{}, false, err
	}

	// each caller decodes its own copy so results are never shared
	analysis, err = decode(v.([]byte))
	return analysis, false, err
}

func (c *AnalysisCache) lookup(ctx context.Context, k string) ([]byte, bool) {
	data, ok, err := c.store.Get(ctx, k)
	if err != nil {
		logger.Warn("analysis cache lookup failed", "key", k, "err", err)
		return nil, false
	}
	return data, ok
}

func decode(data []byte) (types.TranscriptAnalysis, error) {
	var analysis types.TranscriptAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return types.TranscriptAnalysis{}, err
	}
	return analysis, nil
}
