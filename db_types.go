package blogapi

import "errors"

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("record not found")

type Document interface {
	GetTableName() string
}

// Ordered documents declare the ORDER BY clause used for list queries.
type Ordered interface {
	DefaultOrdering() string
}

type Filter struct {
	Field string
	Value interface{}
}

func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

type LimitOffset struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Page is the limit/offset response envelope.
type Page[T interface{}] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
