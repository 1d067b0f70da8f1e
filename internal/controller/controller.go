// Package controller maps the HTTP surface onto the services.
package controller

import (
	"github.com/klass-lk/blogapi"
)

// Paginator reads the limit/offset window of a list request.
type Paginator interface {
	Parse(ctx *blogapi.Context) blogapi.LimitOffset
}

func page[T any](ctx *blogapi.Context, window blogapi.LimitOffset, items []T, total int64, err error) (blogapi.Page[T], error) {
	if err != nil {
		return blogapi.Page[T]{}, err
	}
	return blogapi.NewPage(ctx.AbsoluteURL(), window, total, items), nil
}
