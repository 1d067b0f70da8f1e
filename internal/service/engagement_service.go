package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/internal/permission"
)

// Owned rows carry the id of the user that created them.
type Owned interface {
	OwnerID() string
}

// EngagementService manages per-user links to posts: bookmarks and
// favorites. Each (author, post) pair exists at most once.
type EngagementService[T Owned] struct {
	store    EngagementStore[T]
	posts    Existence
	resource string
	build    func(id, postID, author string, at time.Time) T
	now      func() time.Time
}

func NewBookmarkService(store EngagementStore[model.Bookmark], posts Existence) *EngagementService[model.Bookmark] {
	return &EngagementService[model.Bookmark]{
		store:    store,
		posts:    posts,
		resource: "Bookmark",
		build: func(id, postID, author string, at time.Time) model.Bookmark {
			return model.Bookmark{ID: id, PostID: postID, Author: author, CreatedAt: at}
		},
		now: time.Now,
	}
}

func NewFavoriteService(store EngagementStore[model.Favorite], posts Existence) *EngagementService[model.Favorite] {
	return &EngagementService[model.Favorite]{
		store:    store,
		posts:    posts,
		resource: "Favorite",
		build: func(id, postID, author string, at time.Time) model.Favorite {
			return model.Favorite{ID: id, PostID: postID, Author: author, CreatedAt: at}
		},
		now: time.Now,
	}
}

var authorSearch = blogapi.ParseSearchField("=author")

// Search lists every row, optionally matching the author exactly.
func (s *EngagementService[T]) Search(ctx context.Context, window blogapi.LimitOffset, raw string) ([]T, int64, error) {
	return s.store.FindPaginated(ctx, window, blogapi.NewSearch(authorSearch, raw))
}

func (s *EngagementService[T]) ListOwn(ctx context.Context, identity blogapi.AuthContext, window blogapi.LimitOffset) ([]T, int64, error) {
	return s.store.FindPaginated(ctx, window, nil, blogapi.Eq("author", identity.UserID))
}

func (s *EngagementService[T]) Create(ctx context.Context, identity blogapi.AuthContext, req EngagementRequest) (T, error) {
	var zero T
	if err := requireExists(ctx, s.posts, "post", req.Post); err != nil {
		return zero, err
	}
	taken, err := s.store.ExistsBy(ctx, blogapi.Eq("author", identity.UserID), blogapi.Eq("post_id", req.Post))
	if err != nil {
		return zero, err
	}
	if taken {
		return zero, blogapi.FieldError(nonFieldErrors, "The fields author, post must make a unique set.")
	}

	item := s.build(uuid.NewString(), req.Post, identity.UserID, s.now().UTC())
	if err := s.store.Save(ctx, item); err != nil {
		return zero, writeError(err)
	}
	return item, nil
}

func (s *EngagementService[T]) Delete(ctx context.Context, identity blogapi.AuthContext, id string) error {
	item, err := s.store.FindById(ctx, id)
	if err != nil {
		return lookupError(err, s.resource)
	}
	if err := permission.CheckObject(permission.AuthorOrAdmin, http.MethodDelete, identity, item.OwnerID()); err != nil {
		return err
	}
	return lookupError(s.store.Delete(ctx, id), s.resource)
}
