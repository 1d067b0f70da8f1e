package controller

import (
	"github.com/klass-lk/blogapi"
	"github.com/klass-lk/blogapi/internal/service"
)

type AuthController struct {
	auth *service.AuthService
}

func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (c *AuthController) Register(group *blogapi.ControllerGroup) {
	group.POST("/user/register", c.SignUp)
	group.POST("/token", c.Token)
	group.POST("/token/refresh", c.Refresh)
}

func (c *AuthController) SignUp(ctx *blogapi.Context, req service.RegisterRequest) (blogapi.Created, error) {
	user, err := c.auth.Register(ctx.Request.Context(), req)
	return blogapi.Created{Body: user}, err
}

func (c *AuthController) Token(ctx *blogapi.Context, req service.TokenRequest) (blogapi.TokenPair, error) {
	return c.auth.Login(ctx.Request.Context(), req)
}

func (c *AuthController) Refresh(ctx *blogapi.Context, req service.RefreshRequest) (blogapi.TokenPair, error) {
	return c.auth.Refresh(ctx.Request.Context(), req)
}
