// Package servicetest provides testify mocks of the service store interfaces.
package servicetest

import (
	"context"
	"io"
	"time"

	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/stretchr/testify/mock"
)

// NoSearch matches a nil *blogapi.Search argument.
var NoSearch = (*blogapi.Search)(nil)

// Filters builds the filters argument recorded for variadic store calls.
func Filters(filters ...blogapi.Filter) []blogapi.Filter {
	return filters
}

// Store is a mock of every generic repository method. The per-resource mocks
// embed it.
type Store[T any] struct {
	mock.Mock
}

func (m *Store[T]) FindById(ctx context.Context, id string) (T, error) {
	args := m.MethodCalled("FindById", ctx, id)
	return item[T](args, 0), args.Error(1)
}

func (m *Store[T]) FindOneBy(ctx context.Context, field string, value interface{}) (T, error) {
	args := m.MethodCalled("FindOneBy", ctx, field, value)
	return item[T](args, 0), args.Error(1)
}

func (m *Store[T]) FindPaginated(ctx context.Context, window blogapi.LimitOffset, search *blogapi.Search, filters ...blogapi.Filter) ([]T, int64, error) {
	args := m.MethodCalled("FindPaginated", ctx, window, search, filters)
	var items []T
	if v := args.Get(0); v != nil {
		items = v.([]T)
	}
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *Store[T]) Save(ctx context.Context, v T) error {
	return m.MethodCalled("Save", ctx, v).Error(0)
}

func (m *Store[T]) Update(ctx context.Context, v T) error {
	return m.MethodCalled("Update", ctx, v).Error(0)
}

func (m *Store[T]) Delete(ctx context.Context, id string) error {
	return m.MethodCalled("Delete", ctx, id).Error(0)
}

func (m *Store[T]) ExistsBy(ctx context.Context, filters ...blogapi.Filter) (bool, error) {
	args := m.MethodCalled("ExistsBy", ctx, filters)
	return args.Bool(0), args.Error(1)
}

func item[T any](args mock.Arguments, i int) T {
	var zero T
	if v := args.Get(i); v != nil {
		return v.(T)
	}
	return zero
}

type UserStore struct {
	Store[model.User]
}

func (m *UserStore) FindByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.MethodCalled("FindByUsername", ctx, username)
	return item[model.User](args, 0), args.Error(1)
}

type CategoryStore struct {
	Store[model.Category]
}

type PostStore struct {
	Store[model.Post]
}

func (m *PostStore) IncrementViews(ctx context.Context, slug string) (model.Post, error) {
	args := m.MethodCalled("IncrementViews", ctx, slug)
	return item[model.Post](args, 0), args.Error(1)
}

type CommentStore struct {
	Store[model.Comment]
}

type BookmarkStore struct {
	Store[model.Bookmark]
}

type FavoriteStore struct {
	Store[model.Favorite]
}

type PostArrayStore struct {
	Store[model.PostArray]
}

func (m *PostArrayStore) FindByPost(ctx context.Context, postID string) ([]model.PostArray, error) {
	args := m.MethodCalled("FindByPost", ctx, postID)
	var items []model.PostArray
	if v := args.Get(0); v != nil {
		items = v.([]model.PostArray)
	}
	return items, args.Error(1)
}

type FileService struct {
	mock.Mock
}

func (m *FileService) IsExists(ctx context.Context, path string) (bool, error) {
	args := m.MethodCalled("IsExists", ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *FileService) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.MethodCalled("Download", ctx, path)
	if v := args.Get(0); v != nil {
		return v.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *FileService) Upload(ctx context.Context, path string, body io.Reader, contentType string) error {
	return m.MethodCalled("Upload", ctx, path, body, contentType).Error(0)
}

func (m *FileService) Delete(ctx context.Context, path string) error {
	return m.MethodCalled("Delete", ctx, path).Error(0)
}

func (m *FileService) GetURL(ctx context.Context, path string) (string, error) {
	args := m.MethodCalled("GetURL", ctx, path)
	return args.String(0), args.Error(1)
}

func (m *FileService) GetURLWithExpiry(ctx context.Context, path string, expiry time.Duration) (string, error) {
	args := m.MethodCalled("GetURLWithExpiry", ctx, path, expiry)
	return args.String(0), args.Error(1)
}

func (m *FileService) GetUploadURL(ctx context.Context, fileName, path string) (string, error) {
	args := m.MethodCalled("GetUploadURL", ctx, fileName, path)
	return args.String(0), args.Error(1)
}

type CacheService struct {
	mock.Mock
}

func (m *CacheService) Set(ctx context.Context, key string, data []byte, tags []string, duration time.Duration) error {
	return m.MethodCalled("Set", ctx, key, data, tags, duration).Error(0)
}

func (m *CacheService) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.MethodCalled("Get", ctx, key)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CacheService) Invalidate(ctx context.Context, tags ...string) error {
	return m.MethodCalled("Invalidate", ctx, tags).Error(0)
}
