package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/middleware"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/internal/service"
	"github.com/klass-lk/blogapi/internal/service/servicetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeTokens map[string]*blogapi.Claims

func (f fakeTokens) ParseAccessToken(token string) (*blogapi.Claims, error) {
	if claims, ok := f[token]; ok {
		return claims, nil
	}
	return nil, errors.New("bad token")
}

func claims(id, username, role string) *blogapi.Claims {
	c := &blogapi.Claims{Username: username, Role: role, TokenType: blogapi.TokenTypeAccess}
	c.Subject = id
	return c
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type fixture struct {
	server     *blogapi.Server
	posts      *servicetest.PostStore
	categories *servicetest.CategoryStore
	comments   *servicetest.CommentStore
	arrays     *servicetest.PostArrayStore
	files      *servicetest.FileService
	cache      *servicetest.CacheService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		posts:      new(servicetest.PostStore),
		categories: new(servicetest.CategoryStore),
		comments:   new(servicetest.CommentStore),
		arrays:     new(servicetest.PostArrayStore),
		files:      new(servicetest.FileService),
		cache:      new(servicetest.CacheService),
	}
	pagination := blogapi.NewLimitOffsetPagination(10, 100)
	posts := service.NewPostService(f.posts, f.categories)
	categories := service.NewCategoryService(f.categories, f.cache)
	arrays := service.NewPostArrayService(f.arrays, f.posts, f.files)

	f.server = blogapi.New()
	f.server.Engine().Use(middleware.Authentication(fakeTokens{
		"alice": claims("u1", "alice", blogapi.RoleUser),
		"bob":   claims("u2", "bob", blogapi.RoleUser),
		"root":  claims("a1", "root", blogapi.RoleAdmin),
	}))
	f.server.SetBasePath("/api")
	f.server.RegisterController("/posts", NewPostController(posts, arrays, pagination))
	f.server.RegisterController("", NewSearchController(posts, pagination))
	f.server.RegisterController("/admin/posts", NewAdminPostController(posts))
	f.server.RegisterController("/categories", NewCategoryController(categories, posts, pagination, f.cache, time.Minute))
	f.server.RegisterController("/admin/categories", NewAdminCategoryController(categories))
	f.server.RegisterController("/comments", NewCommentController(service.NewCommentService(f.comments, f.posts), pagination))
	f.server.RegisterController("/admin/post-arrays", NewAdminPostArrayController(arrays))
	f.server.RegisterController("/admin/cache", NewCacheController(f.cache))
	f.server.RegisterController("/health", NewHealthController(pinger{}))
	return f
}

func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPostList_ReslicesWindow(t *testing.T) {
	f := newFixture(t)
	window := make([]model.Post, 10)
	for i := range window {
		window[i] = model.Post{ID: strconv.Itoa(i), Status: model.StatusPublished}
	}
	f.posts.On("FindPaginated", mock.Anything, blogapi.LimitOffset{Limit: 10}, servicetest.NoSearch, mock.Anything).
		Return(window, int64(25), nil)

	w := f.do(http.MethodGet, "/api/posts", "", map[string]interface{}{"page": "2", "count": 3})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(25), body["count"])
	assert.Equal(t, "http://example.com/api/posts?limit=10&offset=10", body["next"])
	assert.Nil(t, body["previous"])
	results := body["results"].([]interface{})
	require.Len(t, results, 3)
	assert.Equal(t, "3", results[0].(map[string]interface{})["id"])
}

func TestPostList_RejectsNonNumericPage(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/posts", "", map[string]interface{}{"page": "two"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "page")
}

func TestPostDetail(t *testing.T) {
	f := newFixture(t)
	f.posts.On("IncrementViews", mock.Anything, "hello").Return(model.Post{Slug: "hello", Views: 7}, nil)
	f.posts.On("IncrementViews", mock.Anything, "nope").Return(model.Post{}, blogapi.ErrNotFound)

	w := f.do(http.MethodGet, "/api/posts/hello", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), decode(t, w)["views"])

	w = f.do(http.MethodGet, "/api/posts/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostArrays_PlainList(t *testing.T) {
	f := newFixture(t)
	f.arrays.On("FindByPost", mock.Anything, "p1").Return([]model.PostArray{{ID: "a1", PostID: "p1"}}, nil)

	w := f.do(http.MethodGet, "/api/posts/p1/arrays", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0]["id"])
	assert.NotContains(t, items[0], "image_url")
}

func TestAdminPostCreate_Gate(t *testing.T) {
	f := newFixture(t)
	payload := map[string]interface{}{"category": "c1", "title": "Hi", "slug": "hi", "content": "x"}

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/admin/posts", "", payload).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/admin/posts", "alice", payload).Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/admin/posts", "forged", payload).Code)
	f.posts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAdminPostCreate_MissingFields(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/admin/posts", "root", map[string]interface{}{"title": "Hi"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, blogapi.CodeValidationFailed, body["error_code"])
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "category")
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "content")
	f.posts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAdminPostCreate(t *testing.T) {
	f := newFixture(t)
	f.categories.On("ExistsBy", mock.Anything, mock.Anything).Return(true, nil)
	f.posts.On("FindOneBy", mock.Anything, "slug", "hi").Return(model.Post{}, blogapi.ErrNotFound)
	f.posts.On("Save", mock.Anything, mock.Anything).Return(nil)

	payload := map[string]interface{}{"category": "c1", "title": "Hi", "slug": "hi", "content": "x"}
	w := f.do(http.MethodPost, "/api/admin/posts", "root", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "a1", body["author"])
	assert.Equal(t, model.StatusPublished, body["status"])
}

func TestAdminPostDelete_MissingIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.posts.On("FindById", mock.Anything, "nope").Return(model.Post{}, blogapi.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/admin/posts/nope", "bob", nil).Code)
}

func TestAdminPostDelete_Permissions(t *testing.T) {
	f := newFixture(t)
	f.posts.On("FindById", mock.Anything, "p1").Return(model.Post{ID: "p1", Author: "u1"}, nil)
	f.posts.On("Delete", mock.Anything, "p1").Return(nil)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/admin/posts/p1", "bob", nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/admin/posts/p1", "alice", nil).Code)
}

func TestCommentDelete_Permissions(t *testing.T) {
	f := newFixture(t)
	f.comments.On("FindById", mock.Anything, "c1").Return(model.Comment{ID: "c1", Author: "u1"}, nil)
	f.comments.On("Delete", mock.Anything, "c1").Return(nil)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/api/comments/c1", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/comments/c1", "bob", nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/comments/c1", "root", nil).Code)
}

func TestCategoryList_CachesResponse(t *testing.T) {
	f := newFixture(t)
	f.cache.On("Get", mock.Anything, mock.Anything).Return(nil, nil).Once()
	f.categories.On("FindPaginated", mock.Anything, blogapi.LimitOffset{Limit: 10}, servicetest.NoSearch, servicetest.Filters()).
		Return([]model.Category{{ID: "c1", Name: "Go", Slug: "go"}}, int64(1), nil).Once()
	f.cache.On("Set", mock.Anything, mock.Anything, mock.Anything, []string{service.CategoryCacheTag}, time.Minute).Return(nil).Once()

	w := f.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	f.cache.On("Get", mock.Anything, mock.Anything).Return(w.Body.Bytes(), nil).Once()
	hit := f.do(http.MethodGet, "/api/categories", "", nil)
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.Equal(t, w.Body.String(), hit.Body.String())
	f.categories.AssertNumberOfCalls(t, "FindPaginated", 1)
}

func TestAdminCategoryCreate_InvalidatesCache(t *testing.T) {
	f := newFixture(t)
	f.categories.On("FindOneBy", mock.Anything, "slug", "go").Return(model.Category{}, blogapi.ErrNotFound)
	f.categories.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Invalidate", mock.Anything, []string{service.CategoryCacheTag}).Return(nil)

	w := f.do(http.MethodPost, "/api/admin/categories", "root", map[string]string{"name": "Go", "slug": "go"})
	require.Equal(t, http.StatusCreated, w.Code)
	f.cache.AssertExpectations(t)

	w = f.do(http.MethodPost, "/api/admin/categories", "root", map[string]string{"name": "Go", "slug": "not a slug"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "slug")
}

func TestCacheInvalidate(t *testing.T) {
	f := newFixture(t)
	f.cache.On("Invalidate", mock.Anything, []string{"posts"}).Return(nil)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/admin/cache/invalidate?tag=posts", "alice", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/admin/cache/invalidate", "root", nil).Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/admin/cache/invalidate?tag=posts", "root", nil).Code)
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t)
	f.arrays.On("FindById", mock.Anything, "a1").Return(model.PostArray{ID: "a1", PostID: "p1"}, nil)
	f.files.On("Upload", mock.Anything, mock.AnythingOfType("string"), mock.Anything, "image/png").Return(nil)
	f.arrays.On("Update", mock.Anything, mock.Anything).Return(nil)
	f.files.On("GetURL", mock.Anything, mock.Anything).Return("https://cdn/img.png", nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="img.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/post-arrays/a1/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer root")
	w := httptest.NewRecorder()
	f.server.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://cdn/img.png", decode(t, w)["image_url"])
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
