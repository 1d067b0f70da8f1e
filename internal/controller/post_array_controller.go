package controller

import (
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/middleware"
	"github.com/klass-lk/blogapi/internal/permission"
	"github.com/klass-lk/blogapi/internal/service"
)

type AdminPostArrayController struct {
	arrays *service.PostArrayService
}

func NewAdminPostArrayController(arrays *service.PostArrayService) *AdminPostArrayController {
	return &AdminPostArrayController{arrays: arrays}
}

func (c *AdminPostArrayController) Register(group *blogapi.ControllerGroup) {
	group.Use(middleware.Require(permission.IsAdmin))
	group.POST("", c.Create)
	group.PUT("/:id", c.Update)
	group.PATCH("/:id", c.Patch)
	group.DELETE("/:id", c.Delete)
	group.POST("/:id/image", c.UploadImage)
}

func (c *AdminPostArrayController) Create(ctx *blogapi.Context, req service.PostArrayRequest) (blogapi.Created, error) {
	view, err := c.arrays.Create(ctx.Request.Context(), req)
	return blogapi.Created{Body: view}, err
}

func (c *AdminPostArrayController) Update(ctx *blogapi.Context, req service.PostArrayRequest) (service.PostArrayView, error) {
	return c.arrays.Update(ctx.Request.Context(), ctx.Param("id"), req)
}

func (c *AdminPostArrayController) Patch(ctx *blogapi.Context, patch service.PostArrayPatch) (service.PostArrayView, error) {
	return c.arrays.Patch(ctx.Request.Context(), ctx.Param("id"), patch)
}

func (c *AdminPostArrayController) Delete(ctx *blogapi.Context) (blogapi.EmptyResponse, error) {
	return blogapi.EmptyResponse{}, c.arrays.Delete(ctx.Request.Context(), ctx.Param("id"))
}

// UploadImage reads the multipart `file` field.
func (c *AdminPostArrayController) UploadImage(ctx *blogapi.Context) (service.PostArrayView, error) {
	header, err := ctx.FormFile("file")
	if err != nil {
		return service.PostArrayView{}, blogapi.FieldError("file", "No file was submitted.")
	}
	file, err := header.Open()
	if err != nil {
		return service.PostArrayView{}, err
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.arrays.UploadImage(ctx.Request.Context(), ctx.Param("id"), header.Filename, contentType, file)
}
