package blogapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type TestRouterRequest struct {
	Name string `json:"name" binding:"required,max=5"`
}

type TestResponse struct {
	Message string `json:"message"`
}

func markingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("middleware", "called")
		c.Next()
	}
}

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("base path prefixes groups", func(t *testing.T) {
		server := &Server{engine: gin.New(), basePath: "/api"}
		group := server.Group("/v1")
		assert.Equal(t, "/api/v1", group.group.BasePath())
	})

	t.Run("controller registration", func(t *testing.T) {
		server := &Server{engine: gin.New()}
		controller := &MockController{}
		server.RegisterController("/test", controller)
		assert.True(t, controller.registerCalled)
	})

	t.Run("handler wrapper", func(t *testing.T) {
		tests := []struct {
			name         string
			handler      interface{}
			method       string
			body         string
			expectedCode int
			expectedBody string
			middleware   []gin.HandlerFunc
		}{
			{
				name: "no args handler",
				handler: func() (*TestResponse, error) {
					return &TestResponse{Message: "success"}, nil
				},
				method:       http.MethodGet,
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"success"}`,
			},
			{
				name: "string response",
				handler: func() (string, error) {
					return "plain text response", nil
				},
				method:       http.MethodGet,
				expectedCode: http.StatusOK,
				expectedBody: "plain text response",
			},
			{
				name: "created response",
				handler: func(req TestRouterRequest) (Created, error) {
					return Created{Body: TestResponse{Message: req.Name}}, nil
				},
				method:       http.MethodPost,
				body:         `{"name":"bob"}`,
				expectedCode: http.StatusCreated,
				expectedBody: `{"message":"bob"}`,
			},
			{
				name: "empty response",
				handler: func(ctx *Context) (EmptyResponse, error) {
					return EmptyResponse{}, nil
				},
				method:       http.MethodDelete,
				expectedCode: http.StatusNoContent,
			},
			{
				name: "pointer request",
				handler: func(ctx *Context, req *TestRouterRequest) (*TestResponse, error) {
					return &TestResponse{Message: "Hello " + req.Name}, nil
				},
				method:       http.MethodPost,
				body:         `{"name":"world"}`,
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"Hello world"}`,
			},
			{
				name: "invalid json",
				handler: func(req TestRouterRequest) (*TestResponse, error) {
					return &TestResponse{}, nil
				},
				method:       http.MethodPost,
				body:         `invalid json`,
				expectedCode: http.StatusBadRequest,
			},
			{
				name: "validation failure",
				handler: func(req TestRouterRequest) (*TestResponse, error) {
					return &TestResponse{}, nil
				},
				method:       http.MethodPost,
				body:         `{"name":"too long"}`,
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"error_code":"VALIDATION_FAILED","message":"Invalid input.","fields":{"name":["Ensure this field has no more than 5 characters."]}}`,
			},
			{
				name: "api error",
				handler: func() (*TestResponse, error) {
					return nil, NotFound("Post")
				},
				method:       http.MethodGet,
				expectedCode: http.StatusNotFound,
				expectedBody: `{"error_code":"NOT_FOUND","message":"Post not found."}`,
			},
			{
				name: "unexpected error",
				handler: func() (*TestResponse, error) {
					return nil, errors.New("boom")
				},
				method:       http.MethodGet,
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"error_code":"INTERNAL_SERVER_ERROR","message":"An unknown error occurred"}`,
			},
			{
				name: "with middleware",
				handler: func(ctx *Context) (*TestResponse, error) {
					if _, exists := ctx.Get("middleware"); !exists {
						t.Error("middleware was not called")
					}
					return &TestResponse{Message: "with middleware"}, nil
				},
				method:       http.MethodGet,
				expectedCode: http.StatusOK,
				expectedBody: `{"message":"with middleware"}`,
				middleware:   []gin.HandlerFunc{markingMiddleware()},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := &Server{engine: gin.New()}
				group := server.Group("/test")

				switch tt.method {
				case http.MethodGet:
					group.GET("", tt.handler, tt.middleware...)
				case http.MethodPost:
					group.POST("", tt.handler, tt.middleware...)
				case http.MethodDelete:
					group.DELETE("", tt.handler, tt.middleware...)
				}

				w := httptest.NewRecorder()
				req := httptest.NewRequest(tt.method, "/test", strings.NewReader(tt.body))
				if tt.body != "" {
					req.Header.Set("Content-Type", "application/json")
				}
				server.engine.ServeHTTP(w, req)

				assert.Equal(t, tt.expectedCode, w.Code)
				if tt.expectedBody == "" {
					return
				}
				if w.Header().Get("Content-Type") == "text/plain; charset=utf-8" {
					assert.Equal(t, tt.expectedBody, w.Body.String())
					return
				}
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			})
		}
	})

	t.Run("invalid handlers panic", func(t *testing.T) {
		group := (&Server{engine: gin.New()}).Group("/test")
		assert.Panics(t, func() { group.GET("/a", "not a func") })
		assert.Panics(t, func() { group.GET("/b", func() string { return "" }) })
		assert.Panics(t, func() { group.GET("/c", func() (string, string) { return "", "" }) })
	})

	t.Run("plain gin handlers pass through", func(t *testing.T) {
		server := &Server{engine: gin.New()}
		server.Group("/raw").GET("", func(c *gin.Context) {
			c.String(http.StatusTeapot, "raw")
		})

		w := httptest.NewRecorder()
		server.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("group methods", func(t *testing.T) {
		server := &Server{engine: gin.New()}
		group := server.Group("/test")

		register := map[string]func(string, interface{}, ...gin.HandlerFunc){
			http.MethodGet:     group.GET,
			http.MethodPost:    group.POST,
			http.MethodPut:     group.PUT,
			http.MethodPatch:   group.PATCH,
			http.MethodDelete:  group.DELETE,
			http.MethodOptions: group.OPTIONS,
			http.MethodHead:    group.HEAD,
		}
		for method, add := range register {
			method := method
			add("/"+method, func(ctx *Context) (*TestResponse, error) {
				return &TestResponse{Message: method}, nil
			})

			w := httptest.NewRecorder()
			server.engine.ServeHTTP(w, httptest.NewRequest(method, "/test/"+method, nil))
			assert.Equal(t, http.StatusOK, w.Code, method)
			if method != http.MethodHead {
				var response TestResponse
				assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
				assert.Equal(t, method, response.Message)
			}
		}
	})

	t.Run("middleware chain", func(t *testing.T) {
		server := &Server{engine: gin.New()}
		group := server.Group("/test")

		var order []string
		group.Use(func(c *gin.Context) {
			order = append(order, "group")
			c.Next()
		})
		group.GET("", func(ctx *Context) (*TestResponse, error) {
			order = append(order, "handler")
			return &TestResponse{Message: "success"}, nil
		}, func(c *gin.Context) {
			order = append(order, "route")
			c.Next()
		})

		w := httptest.NewRecorder()
		server.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"group", "route", "handler"}, order)
	})
}

type MockController struct {
	registerCalled bool
}

func (m *MockController) Register(group *ControllerGroup) {
	m.registerCalled = true
}
