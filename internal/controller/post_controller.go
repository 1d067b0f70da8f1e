package controller

import (
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/middleware"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/internal/permission"
	"github.com/klass-lk/blogapi/internal/service"
)

// PostController serves the public post reads.
type PostController struct {
	posts      *service.PostService
	arrays     *service.PostArrayService
	pagination Paginator
}

func NewPostController(posts *service.PostService, arrays *service.PostArrayService, pagination Paginator) *PostController {
	return &PostController{posts: posts, arrays: arrays, pagination: pagination}
}

func (c *PostController) Register(group *blogapi.ControllerGroup) {
	group.GET("", c.List, middleware.Require(permission.IsAuthenticatedOrReadOnly))
	group.GET("/:slug", c.Detail)
	group.GET("/:slug/arrays", c.Arrays)
}

// List narrows the limit/offset window with the page/count body parameters.
func (c *PostController) List(ctx *blogapi.Context) (blogapi.Page[model.Post], error) {
	slice, err := blogapi.ParseResliceRequest(ctx)
	if err != nil {
		return blogapi.Page[model.Post]{}, err
	}
	window := c.pagination.Parse(ctx)
	posts, total, err := c.posts.ListPublished(ctx.Request.Context(), window, slice)
	return page(ctx, window, posts, total, err)
}

func (c *PostController) Detail(ctx *blogapi.Context) (model.Post, error) {
	return c.posts.Detail(ctx.Request.Context(), ctx.Param("slug"))
}

// Arrays lists the arrays of the post whose id is in the path.
func (c *PostController) Arrays(ctx *blogapi.Context) ([]service.PostArrayView, error) {
	return c.arrays.ListByPost(ctx.Request.Context(), ctx.Param("slug"))
}

// SearchController serves the two post search endpoints.
type SearchController struct {
	posts      *service.PostService
	pagination Paginator
}

func NewSearchController(posts *service.PostService, pagination Paginator) *SearchController {
	return &SearchController{posts: posts, pagination: pagination}
}

func (c *SearchController) Register(group *blogapi.ControllerGroup) {
	group.GET("/search", c.Published)
	group.GET("/posts-search", c.Titles)
}

func (c *SearchController) Published(ctx *blogapi.Context) (blogapi.Page[model.Post], error) {
	window := c.pagination.Parse(ctx)
	posts, total, err := c.posts.SearchPublished(ctx.Request.Context(), window, ctx.Query("search"))
	return page(ctx, window, posts, total, err)
}

func (c *SearchController) Titles(ctx *blogapi.Context) (blogapi.Page[model.Post], error) {
	window := c.pagination.Parse(ctx)
	posts, total, err := c.posts.SearchTitles(ctx.Request.Context(), window, ctx.Query("search"))
	return page(ctx, window, posts, total, err)
}

// AdminPostController serves post writes and the id lookup.
type AdminPostController struct {
	posts *service.PostService
}

func NewAdminPostController(posts *service.PostService) *AdminPostController {
	return &AdminPostController{posts: posts}
}

func (c *AdminPostController) Register(group *blogapi.ControllerGroup) {
	admin := middleware.Require(permission.IsAdmin)
	group.POST("", c.Create, admin)
	group.GET("/:id", c.Get, admin)
	group.PUT("/:id", c.Update)
	group.PATCH("/:id", c.Patch)
	group.DELETE("/:id", c.Delete)
}

func (c *AdminPostController) Create(ctx *blogapi.Context, req service.PostRequest) (blogapi.Created, error) {
	post, err := c.posts.Create(ctx.Request.Context(), ctx.Identity(), req)
	return blogapi.Created{Body: post}, err
}

func (c *AdminPostController) Get(ctx *blogapi.Context) (model.Post, error) {
	return c.posts.Get(ctx.Request.Context(), ctx.Param("id"))
}

func (c *AdminPostController) Update(ctx *blogapi.Context, req service.PostRequest) (model.Post, error) {
	return c.posts.Update(ctx.Request.Context(), ctx.Identity(), ctx.Param("id"), req)
}

func (c *AdminPostController) Patch(ctx *blogapi.Context, patch service.PostPatch) (model.Post, error) {
	return c.posts.Patch(ctx.Request.Context(), ctx.Identity(), ctx.Param("id"), patch)
}

func (c *AdminPostController) Delete(ctx *blogapi.Context) (blogapi.EmptyResponse, error) {
	return blogapi.EmptyResponse{}, c.posts.Delete(ctx.Request.Context(), ctx.Identity(), ctx.Param("id"))
}
