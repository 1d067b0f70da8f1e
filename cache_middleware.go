package blogapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheKeyGenerator derives the cache key from the request.
type CacheKeyGenerator func(c *gin.Context) string

// TagGenerator returns the tags stored with a cached response.
type TagGenerator func(c *gin.Context) []string

type cacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *cacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// DefaultKeyGenerator hashes the host and request URI. The host is part of the
// key because paginated bodies embed absolute links.
func DefaultKeyGenerator(c *gin.Context) string {
	hash := sha256.Sum256([]byte(c.Request.Host + c.Request.URL.RequestURI()))
	return hex.EncodeToString(hash[:])
}

// StaticTags tags every entry with the same values.
func StaticTags(tags ...string) TagGenerator {
	return func(*gin.Context) []string {
		return tags
	}
}

// CacheMiddleware serves GET responses from service and stores 200 responses
// on a miss. Cache failures never fail the request.
func CacheMiddleware(service CacheService, duration time.Duration, tagGen TagGenerator, keyGen CacheKeyGenerator) gin.HandlerFunc {
	if keyGen == nil {
		keyGen = DefaultKeyGenerator
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := keyGen(c)

		cachedData, err := service.Get(c.Request.Context(), key)
		if err != nil {
			log.Printf("[cache] get %s: %v", key, err)
		}
		if err == nil && cachedData != nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cachedData)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")
		writer := &cacheWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() != http.StatusOK {
			return
		}

		var tags []string
		if tagGen != nil {
			tags = tagGen(c)
		}
		if err := service.Set(c.Request.Context(), key, writer.body.Bytes(), tags, duration); err != nil {
			log.Printf("[cache] set %s: %v", key, err)
		}
	}
}
