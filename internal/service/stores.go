package service

import (
	"context"

	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
)

// The store interfaces are satisfied by the repository package.

type UserStore interface {
	FindById(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Save(ctx context.Context, user model.User) error
	ExistsBy(ctx context.Context, filters ...blogapi.Filter) (bool, error)
}

type CategoryStore interface {
	FindById(ctx context.Context, id string) (model.Category, error)
	FindOneBy(ctx context.Context, field string, value interface{}) (model.Category, error)
	FindPaginated(ctx context.Context, window blogapi.LimitOffset, search *blogapi.Search, filters ...blogapi.Filter) ([]model.Category, int64, error)
	Save(ctx context.Context, category model.Category) error
	Update(ctx context.Context, category model.Category) error
	Delete(ctx context.Context, id string) error
	ExistsBy(ctx context.Context, filters ...blogapi.Filter) (bool, error)
}

type PostStore interface {
	FindById(ctx context.Context, id string) (model.Post, error)
	FindOneBy(ctx context.Context, field string, value interface{}) (model.Post, error)
	IncrementViews(ctx context.Context, slug string) (model.Post, error)
	FindPaginated(ctx context.Context, window blogapi.LimitOffset, search *blogapi.Search, filters ...blogapi.Filter) ([]model.Post, int64, error)
	Save(ctx context.Context, post model.Post) error
	Update(ctx context.Context, post model.Post) error
	Delete(ctx context.Context, id string) error
	ExistsBy(ctx context.Context, filters ...blogapi.Filter) (bool, error)
}

type CommentStore interface {
	FindById(ctx context.Context, id string) (model.Comment, error)
	FindPaginated(ctx context.Context, window blogapi.LimitOffset, search *blogapi.Search, filters ...blogapi.Filter) ([]model.Comment, int64, error)
	Save(ctx context.Context, comment model.Comment) error
	Delete(ctx context.Context, id string) error
}

// EngagementStore persists bookmarks and favorites.
type EngagementStore[T any] interface {
	FindById(ctx context.Context, id string) (T, error)
	FindPaginated(ctx context.Context, window blogapi.LimitOffset, search *blogapi.Search, filters ...blogapi.Filter) ([]T, int64, error)
	Save(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	ExistsBy(ctx context.Context, filters ...blogapi.Filter) (bool, error)
}

type PostArrayStore interface {
	FindById(ctx context.Context, id string) (model.PostArray, error)
	FindByPost(ctx context.Context, postID string) ([]model.PostArray, error)
	Save(ctx context.Context, item model.PostArray) error
	Update(ctx context.Context, item model.PostArray) error
	Delete(ctx context.Context, id string) error
}

// Existence is the lookup used to validate references.
type Existence interface {
	ExistsBy(ctx context.Context, filters ...blogapi.Filter) (bool, error)
}
