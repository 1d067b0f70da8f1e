package controller

import (
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/middleware"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/internal/permission"
	"github.com/klass-lk/blogapi/internal/service"
)

// EngagementController serves bookmarks or favorites. Bookmarks list only the
// caller's rows; favorites list everyone's and accept an author search.
type EngagementController[T service.Owned] struct {
	items      *service.EngagementService[T]
	pagination Paginator
	ownOnly    bool
}

func NewBookmarkController(items *service.EngagementService[model.Bookmark], pagination Paginator) *EngagementController[model.Bookmark] {
	return &EngagementController[model.Bookmark]{items: items, pagination: pagination, ownOnly: true}
}

func NewFavoriteController(items *service.EngagementService[model.Favorite], pagination Paginator) *EngagementController[model.Favorite] {
	return &EngagementController[model.Favorite]{items: items, pagination: pagination}
}

func (c *EngagementController[T]) Register(group *blogapi.ControllerGroup) {
	authenticated := middleware.Require(permission.IsAuthenticated)
	if c.ownOnly {
		group.GET("", c.List, authenticated)
	} else {
		group.GET("", c.List)
	}
	group.POST("", c.Create, authenticated)
	group.DELETE("/:id", c.Delete)
}

func (c *EngagementController[T]) List(ctx *blogapi.Context) (blogapi.Page[T], error) {
	window := c.pagination.Parse(ctx)
	var (
		items []T
		total int64
		err   error
	)
	if c.ownOnly {
		items, total, err = c.items.ListOwn(ctx.Request.Context(), ctx.Identity(), window)
	} else {
		items, total, err = c.items.Search(ctx.Request.Context(), window, ctx.Query("search"))
	}
	return page(ctx, window, items, total, err)
}

func (c *EngagementController[T]) Create(ctx *blogapi.Context, req service.EngagementRequest) (blogapi.Created, error) {
	item, err := c.items.Create(ctx.Request.Context(), ctx.Identity(), req)
	return blogapi.Created{Body: item}, err
}

func (c *EngagementController[T]) Delete(ctx *blogapi.Context) (blogapi.EmptyResponse, error) {
	return blogapi.EmptyResponse{}, c.items.Delete(ctx.Request.Context(), ctx.Identity(), ctx.Param("id"))
}
