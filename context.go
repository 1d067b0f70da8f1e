package blogapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
	ContextRole     = "role"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

type AuthContext struct {
	UserID   string
	Username string
	Roles    []string
}

func (a AuthContext) IsAuthenticated() bool {
	return a.UserID != ""
}

func (a AuthContext) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a AuthContext) IsAdmin() bool {
	return a.IsAuthenticated() && a.HasRole(RoleAdmin)
}

type Context struct {
	*gin.Context
	fileService FileService
}

func NewContext(c *gin.Context, fileService FileService) *Context {
	return &Context{
		Context:     c,
		fileService: fileService,
	}
}

func (c *Context) GetFileService() FileService {
	return c.fileService
}

// GetAuthContext returns the authenticated identity or an Unauthorized error.
func (c *Context) GetAuthContext() (AuthContext, error) {
	auth := c.Identity()
	if !auth.IsAuthenticated() {
		return AuthContext{}, Unauthorized()
	}
	return auth, nil
}

// Identity returns the request identity; anonymous requests yield the zero value.
func (c *Context) Identity() AuthContext {
	return IdentityOf(c.Context)
}

func IdentityOf(c *gin.Context) AuthContext {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		return AuthContext{}
	}
	auth := AuthContext{
		UserID:   userID,
		Username: c.GetString(ContextUsername),
	}
	if role := c.GetString(ContextRole); role != "" {
		auth.Roles = []string{role}
	}
	return auth
}

func (c *Context) GetRequest(request interface{}) error {
	if err := c.ShouldBind(request); err != nil {
		return BindingError(err)
	}
	return nil
}

func (c *Context) SendError(err error) {
	SendError(c.Context, err)
}

// AbsoluteURL rebuilds the request URL including scheme and host.
func (c *Context) AbsoluteURL() string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}

func (c *Context) respond(result interface{}) {
	switch v := result.(type) {
	case EmptyResponse:
		c.Status(http.StatusNoContent)
	case Created:
		c.JSON(http.StatusCreated, v.Body)
	case string:
		c.String(http.StatusOK, v)
	default:
		c.JSON(http.StatusOK, v)
	}
}

// EmptyResponse answers 204 No Content.
type EmptyResponse struct{}

// Created answers 201 with Body.
type Created struct {
	Body interface{}
}
