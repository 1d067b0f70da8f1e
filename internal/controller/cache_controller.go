package controller

import (
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/middleware"
	"github.com/klass-lk/blogapi/internal/permission"
)

// CacheController drops cached responses on demand.
type CacheController struct {
	cacheService blogapi.CacheService
}

func NewCacheController(cacheService blogapi.CacheService) *CacheController {
	return &CacheController{cacheService: cacheService}
}

func (c *CacheController) Register(group *blogapi.ControllerGroup) {
	group.POST("/invalidate", c.Invalidate, middleware.Require(permission.IsAdmin))
}

// Invalidate removes every entry tagged with the `tag` query parameter.
func (c *CacheController) Invalidate(ctx *blogapi.Context) (blogapi.EmptyResponse, error) {
	tag := ctx.Query("tag")
	if tag == "" {
		return blogapi.EmptyResponse{}, blogapi.FieldError("tag", "This field is required.")
	}
	return blogapi.EmptyResponse{}, c.cacheService.Invalidate(ctx.Request.Context(), tag)
}
