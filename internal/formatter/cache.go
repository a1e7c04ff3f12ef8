package formatter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/temirov/repo2doc/internal/utils"
)

const (
	errorCacheCapacityFormat = "create format cache with capacity %d: %w"
	debugFormatterDegraded   = "Formatter failed, embedding original content"
)

// Cache memoizes a Formatter by (content, extension). Identical concurrent
// requests share one formatter invocation. A failing formatter degrades to the
// original content, and that result is cached too. Cache is safe for concurrent use.
type Cache struct {
	formatter Formatter
	entries   *lru.Cache[string, string]
	inFlight  singleflight.Group
	logger    *zap.Logger
}

// NewCache wraps formatter with an LRU cache holding up to capacity results.
func NewCache(formatter Formatter, capacity int, logger *zap.Logger) (*Cache, error) {
	entries, creationError := lru.New[string, string](capacity)
	if creationError != nil {
		return nil, fmt.Errorf(errorCacheCapacityFormat, capacity, creationError)
	}
	if formatter == nil {
		formatter = PassThrough{}
	}
	return &Cache{formatter: formatter, entries: entries, logger: utils.LoggerOrNop(logger)}, nil
}

// Format returns the formatted content, never failing. Empty or whitespace-only
// content is returned as is without consulting the formatter.
func (cache *Cache) Format(executionContext context.Context, content string, extension string) string {
	if strings.TrimSpace(content) == "" {
		return content
	}
	key := cacheKey(content, extension)
	if formatted, cached := cache.entries.Get(key); cached {
		return formatted
	}

	sharedResult, _, _ := cache.inFlight.Do(key, func() (any, error) {
		if formatted, cached := cache.entries.Get(key); cached {
			return formatted, nil
		}
		formatted, formatError := cache.formatter.Format(executionContext, content, extension)
		if formatError != nil {
			cache.logger.Debug(debugFormatterDegraded, zap.String("extension", extension), zap.Error(formatError))
			if executionContext.Err() != nil {
				return content, nil
			}
			formatted = content
		}
		cache.entries.Add(key, formatted)
		return formatted, nil
	})
	return sharedResult.(string)
}

// Len returns the number of cached results.
func (cache *Cache) Len() int {
	return cache.entries.Len()
}

func cacheKey(content string, extension string) string {
	digest := sha256.Sum256([]byte(content))
	return extension + ":" + hex.EncodeToString(digest[:])
}
