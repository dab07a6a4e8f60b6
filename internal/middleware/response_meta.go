package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/step-challenge-api/pkg/middleware/requestid"
)

const responseMetaKey = "response_meta"

// Meta keys written into the response envelope.
const (
	cacheHitKey       = "cache_hit"
	persistedKey      = "persisted"
	processingTimeKey = "processing_time_ms"
	requestIDKey      = "request_id"
)

type responseMeta struct {
	start     time.Time
	cacheHit  *bool
	persisted *bool
}

// WithResponseMeta starts the clock used for processing_time_ms and prepares the
// flags handlers report through SetCacheHit and SetPersisted.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(responseMetaKey, &responseMeta{start: time.Now()})
		c.Next()
	}
}

// SetCacheHit reports whether a leaderboard was served from the cache.
func SetCacheHit(c *gin.Context, hit bool) {
	metaFrom(c).cacheHit = &hit
}

// SetPersisted reports whether a mutation reached the record store.
func SetPersisted(c *gin.Context, persisted bool) {
	metaFrom(c).persisted = &persisted
}

// ExtractMeta renders the envelope meta for the current request. Only flags a
// handler set are included.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta := metaFrom(c)
	out := map[string]interface{}{
		processingTimeKey: time.Since(meta.start).Milliseconds(),
	}
	if meta.cacheHit != nil {
		out[cacheHitKey] = *meta.cacheHit
	}
	if meta.persisted != nil {
		out[persistedKey] = *meta.persisted
	}
	if id := requestid.Value(c); id != "" {
		out[requestIDKey] = id
	}
	return out
}

func metaFrom(c *gin.Context) *responseMeta {
	if value, exists := c.Get(responseMetaKey); exists {
		if meta, ok := value.(*responseMeta); ok {
			return meta
		}
	}
	meta := &responseMeta{start: time.Now()}
	c.Set(responseMetaKey, meta)
	return meta
}
