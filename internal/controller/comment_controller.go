package controller

import (
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/middleware"
	"github.com/klass-lk/blogapi/internal/model"
	"github.com/klass-lk/blogapi/internal/permission"
	"github.com/klass-lk/blogapi/internal/service"
)

type CommentController struct {
	comments   *service.CommentService
	pagination Paginator
}

func NewCommentController(comments *service.CommentService, pagination Paginator) *CommentController {
	return &CommentController{comments: comments, pagination: pagination}
}

func (c *CommentController) Register(group *blogapi.ControllerGroup) {
	group.GET("", c.List)
	group.GET("/:id", c.Get)
	group.POST("", c.Create, middleware.Require(permission.IsAuthenticated))
	group.DELETE("/:id", c.Delete)
}

func (c *CommentController) List(ctx *blogapi.Context) (blogapi.Page[model.Comment], error) {
	window := c.pagination.Parse(ctx)
	comments, total, err := c.comments.List(ctx.Request.Context(), window)
	return page(ctx, window, comments, total, err)
}

func (c *CommentController) Get(ctx *blogapi.Context) (model.Comment, error) {
	return c.comments.Get(ctx.Request.Context(), ctx.Param("id"))
}

func (c *CommentController) Create(ctx *blogapi.Context, req service.CommentRequest) (blogapi.Created, error) {
	comment, err := c.comments.Create(ctx.Request.Context(), ctx.Identity(), req)
	return blogapi.Created{Body: comment}, err
}

func (c *CommentController) Delete(ctx *blogapi.Context) (blogapi.EmptyResponse, error) {
	return blogapi.EmptyResponse{}, c.comments.Delete(ctx.Request.Context(), ctx.Identity(), ctx.Param("id"))
}
