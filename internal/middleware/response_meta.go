package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mru-results-api/pkg/middleware/requestid"
)

const (
	responseMetaKey  = "response_meta"
	requestStartKey  = "response_meta_start"
	processingTimeMs = "processing_time_ms"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta records a single metadata entry for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ExtractMeta returns the metadata collected so far merged with extra entries.
// It returns nil when nothing was recorded and the middleware is not installed.
func ExtractMeta(c *gin.Context, extra ...map[string]interface{}) map[string]interface{} {
	if c == nil {
		return mergeExtra(nil, extra)
	}
	var meta map[string]interface{}
	if stored, exists := c.Get(responseMetaKey); exists {
		if typed, ok := stored.(map[string]interface{}); ok {
			meta = make(map[string]interface{}, len(typed)+2)
			for k, v := range typed {
				meta[k] = v
			}
		}
	}
	if start, ok := c.Get(requestStartKey); ok {
		if ts, ok := start.(time.Time); ok {
			if meta == nil {
				meta = map[string]interface{}{}
			}
			meta[processingTimeMs] = time.Since(ts).Milliseconds()
			if id := requestid.Value(c); id != "" {
				meta["request_id"] = id
			}
		}
	}
	return mergeExtra(meta, extra)
}

func mergeExtra(meta map[string]interface{}, extra []map[string]interface{}) map[string]interface{} {
	for _, m := range extra {
		for k, v := range m {
			if meta == nil {
				meta = map[string]interface{}{}
			}
			meta[k] = v
		}
	}
	return meta
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	newMeta := make(map[string]interface{})
	c.Set(responseMetaKey, newMeta)
	return newMeta
}
