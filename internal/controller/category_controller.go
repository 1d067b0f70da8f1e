package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/middleware"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/internal/permission"
	"github.com/klass-lk/blogapi/internal/service"
)

type CategoryController struct {
	categories *service.CategoryService
	posts      *service.PostService
	pagination Paginator
	cached     gin.HandlerFunc
}

// NewCategoryController caches the category reads in cache for ttl under the
// categories tag, which every category write invalidates.
func NewCategoryController(categories *service.CategoryService, posts *service.PostService, pagination Paginator, cache blogapi.CacheService, ttl time.Duration) *CategoryController {
	return &CategoryController{
		categories: categories,
		posts:      posts,
		pagination: pagination,
		cached:     blogapi.CacheMiddleware(cache, ttl, blogapi.StaticTags(service.CategoryCacheTag), nil),
	}
}

func (c *CategoryController) Register(group *blogapi.ControllerGroup) {
	group.GET("", c.List, middleware.Require(permission.IsAuthenticatedOrReadOnly), c.cached)
	group.GET("/:id", c.Get, c.cached)
	group.GET("/:id/posts", c.Posts)
}

func (c *CategoryController) List(ctx *blogapi.Context) (blogapi.Page[model.Category], error) {
	window := c.pagination.Parse(ctx)
	categories, total, err := c.categories.List(ctx.Request.Context(), window)
	return page(ctx, window, categories, total, err)
}

func (c *CategoryController) Get(ctx *blogapi.Context) (model.Category, error) {
	return c.categories.Get(ctx.Request.Context(), ctx.Param("id"))
}

func (c *CategoryController) Posts(ctx *blogapi.Context) (blogapi.Page[model.Post], error) {
	window := c.pagination.Parse(ctx)
	posts, total, err := c.posts.ListByCategory(ctx.Request.Context(), window, ctx.Param("id"))
	return page(ctx, window, posts, total, err)
}

type AdminCategoryController struct {
	categories *service.CategoryService
}

func NewAdminCategoryController(categories *service.CategoryService) *AdminCategoryController {
	return &AdminCategoryController{categories: categories}
}

func (c *AdminCategoryController) Register(group *blogapi.ControllerGroup) {
	group.Use(middleware.Require(permission.IsAdmin))
	group.POST("", c.Create)
	group.PATCH("/:id", c.Patch)
	group.DELETE("/:id", c.Delete)
}

func (c *AdminCategoryController) Create(ctx *blogapi.Context, req service.CategoryRequest) (blogapi.Created, error) {
	category, err := c.categories.Create(ctx.Request.Context(), req)
	return blogapi.Created{Body: category}, err
}

func (c *AdminCategoryController) Patch(ctx *blogapi.Context, patch service.CategoryPatch) (model.Category, error) {
	return c.categories.Patch(ctx.Request.Context(), ctx.Param("id"), patch)
}

func (c *AdminCategoryController) Delete(ctx *blogapi.Context) (blogapi.EmptyResponse, error) {
	return blogapi.EmptyResponse{}, c.categories.Delete(ctx.Request.Context(), ctx.Param("id"))
}
