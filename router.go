package blogapi

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	Register(group *ControllerGroup)
}

type ControllerGroup struct {
	group  *gin.RouterGroup
	server *Server
}

var (
	contextType = reflect.TypeOf(&Context{})
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

func (g *ControllerGroup) Use(middleware ...gin.HandlerFunc) {
	g.group.Use(middleware...)
}

func (g *ControllerGroup) Group(path string, middleware ...gin.HandlerFunc) *ControllerGroup {
	return &ControllerGroup{
		group:  g.group.Group(path, middleware...),
		server: g.server,
	}
}

func (g *ControllerGroup) GET(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodGet, path, handler, middleware)
}

func (g *ControllerGroup) POST(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodPost, path, handler, middleware)
}

func (g *ControllerGroup) PUT(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodPut, path, handler, middleware)
}

func (g *ControllerGroup) PATCH(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodPatch, path, handler, middleware)
}

func (g *ControllerGroup) DELETE(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodDelete, path, handler, middleware)
}

func (g *ControllerGroup) OPTIONS(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodOptions, path, handler, middleware)
}

func (g *ControllerGroup) HEAD(path string, handler interface{}, middleware ...gin.HandlerFunc) {
	g.handle(http.MethodHead, path, handler, middleware)
}

func (g *ControllerGroup) handle(method, path string, handler interface{}, middleware []gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	handlers = append(handlers, g.wrap(handler))
	g.group.Handle(method, path, handlers...)
}

// wrap adapts handlers shaped func([*Context], [Request]) (Response, error)
// into gin handlers. Request arguments are bound from the body and validated.
func (g *ControllerGroup) wrap(handler interface{}) gin.HandlerFunc {
	if h, ok := handler.(gin.HandlerFunc); ok {
		return h
	}
	if h, ok := handler.(func(*gin.Context)); ok {
		return h
	}

	hv := reflect.ValueOf(handler)
	ht := hv.Type()
	if ht.Kind() != reflect.Func {
		panic(fmt.Sprintf("blogapi: handler must be a function, got %s", ht))
	}
	if ht.NumOut() != 2 || !ht.Out(1).Implements(errorType) {
		panic(fmt.Sprintf("blogapi: handler %s must return (T, error)", ht))
	}

	return func(c *gin.Context) {
		var fileService FileService
		if g.server != nil {
			fileService = g.server.fileService
		}
		ctx := NewContext(c, fileService)

		args := make([]reflect.Value, ht.NumIn())
		for i := 0; i < ht.NumIn(); i++ {
			in := ht.In(i)
			if in == contextType {
				args[i] = reflect.ValueOf(ctx)
				continue
			}

			target := in
			if in.Kind() == reflect.Ptr {
				target = in.Elem()
			}
			req := reflect.New(target)
			if err := ctx.GetRequest(req.Interface()); err != nil {
				ctx.SendError(err)
				return
			}
			if in.Kind() == reflect.Ptr {
				args[i] = req
			} else {
				args[i] = req.Elem()
			}
		}

		out := hv.Call(args)
		if errValue := out[1]; !errValue.IsNil() {
			ctx.SendError(errValue.Interface().(error))
			return
		}
		ctx.respond(out[0].Interface())
	}
}
