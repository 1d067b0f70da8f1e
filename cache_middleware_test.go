package blogapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	args := m.Called(ctx, key, data, tags, duration)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheService) Invalidate(ctx context.Context, tags ...string) error {
	args := m.Called(ctx, tags)
	return args.Error(0)
}

func TestCacheMiddleware_Miss(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockCacheService)

	r := gin.New()
	r.Use(CacheMiddleware(mockService, time.Minute, nil, nil))
	r.GET("/categories", func(c *gin.Context) {
		c.String(200, "hello world")
	})

	mockService.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	mockService.On("Set", mock.Anything, mock.Anything, []byte("hello world"), []string(nil), time.Minute).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "hello world", w.Body.String())
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	mockService.AssertExpectations(t)
}

func TestCacheMiddleware_Hit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockCacheService)

	cachedResponse := []byte(`{"count":0}`)

	r := gin.New()
	r.Use(CacheMiddleware(mockService, time.Minute, nil, nil))
	r.GET("/categories", func(c *gin.Context) {
		c.String(200, "should not run")
	})

	mockService.On("Get", mock.Anything, mock.Anything).Return(cachedResponse, nil)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, `{"count":0}`, w.Body.String())
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	mockService.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheMiddleware_Tags(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockCacheService)

	r := gin.New()
	r.Use(CacheMiddleware(mockService, time.Minute, StaticTags("categories"), nil))
	r.GET("/categories", func(c *gin.Context) {
		c.String(200, "hello tags")
	})

	mockService.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	mockService.On("Set", mock.Anything, mock.Anything, []byte("hello tags"), []string{"categories"}, time.Minute).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	mockService.AssertExpectations(t)
}

func TestCacheMiddleware_SkipsNonGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockCacheService)

	r := gin.New()
	r.Use(CacheMiddleware(mockService, time.Minute, nil, nil))
	r.POST("/categories", func(c *gin.Context) {
		c.String(201, "created")
	})

	req := httptest.NewRequest(http.MethodPost, "/categories", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	mockService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestCacheMiddleware_DoesNotStoreErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockCacheService)

	r := gin.New()
	r.Use(CacheMiddleware(mockService, time.Minute, nil, nil))
	r.GET("/categories/:id", func(c *gin.Context) {
		c.JSON(404, gin.H{"error_code": "NOT_FOUND"})
	})

	mockService.On("Get", mock.Anything, mock.Anything).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/categories/missing", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	mockService.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheMiddleware_BackendFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := new(MockCacheService)

	r := gin.New()
	r.Use(CacheMiddleware(mockService, time.Minute, nil, nil))
	r.GET("/categories", func(c *gin.Context) {
		c.String(200, "fresh")
	})

	mockService.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	mockService.On("Set", mock.Anything, mock.Anything, []byte("fresh"), []string(nil), time.Minute).Return(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "fresh", w.Body.String())
	mockService.AssertExpectations(t)
}

func TestDefaultKeyGenerator_IncludesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	keyFor := func(target string) string {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		return DefaultKeyGenerator(c)
	}

	assert.Equal(t, keyFor("/categories?limit=5"), keyFor("/categories?limit=5"))
	assert.NotEqual(t, keyFor("/categories?limit=5"), keyFor("/categories?limit=6"))
}
