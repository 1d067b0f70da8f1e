package blogapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	defaultResliceCount = 10
)

var errInvalidInteger = errors.New("A valid integer is required.")

// LimitOffsetPagination reads `limit` and `offset` query parameters.
type LimitOffsetPagination struct {
	DefaultLimit int
	MaxLimit     int
}

func NewLimitOffsetPagination(defaultLimit, maxLimit int) LimitOffsetPagination {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	return LimitOffsetPagination{DefaultLimit: defaultLimit, MaxLimit: maxLimit}
}

// Parse never fails: unusable values fall back to the defaults.
func (p LimitOffsetPagination) Parse(ctx *Context) LimitOffset {
	limit := p.DefaultLimit
	if raw := ctx.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}

	offset := 0
	if raw := ctx.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return LimitOffset{Limit: limit, Offset: offset}
}

// NewPage assembles the response envelope with next/previous links derived
// from requestURL.
func NewPage[T interface{}](requestURL string, window LimitOffset, total int64, results []T) Page[T] {
	if results == nil {
		results = []T{}
	}
	page := Page[T]{Count: total, Results: results}

	if int64(window.Offset+window.Limit) < total {
		next := replaceQuery(requestURL, map[string]string{
			"limit":  strconv.Itoa(window.Limit),
			"offset": strconv.Itoa(window.Offset + window.Limit),
		})
		page.Next = &next
	}

	if window.Offset > 0 {
		var previous string
		if window.Offset-window.Limit <= 0 {
			previous = replaceQuery(requestURL, map[string]string{"limit": strconv.Itoa(window.Limit)}, "offset")
		} else {
			previous = replaceQuery(requestURL, map[string]string{
				"limit":  strconv.Itoa(window.Limit),
				"offset": strconv.Itoa(window.Offset - window.Limit),
			})
		}
		page.Previous = &previous
	}
	return page
}

func replaceQuery(rawURL string, set map[string]string, remove ...string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	for k, v := range set {
		q.Set(k, v)
	}
	for _, k := range remove {
		q.Del(k)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ResliceRequest carries the body parameters accepted by the post list.
type ResliceRequest struct {
	Page  int
	Count int
}

// ParseResliceRequest reads `page` (default 0) and `count` (default 10) from a
// JSON request body. A missing or empty body yields the defaults.
func ParseResliceRequest(ctx *Context) (ResliceRequest, error) {
	req := ResliceRequest{Page: 0, Count: defaultResliceCount}
	if ctx.Request.Body == nil {
		return req, nil
	}

	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return req, BadRequest("Unable to read request body.")
	}
	ctx.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}

	var raw map[string]json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return req, BadRequest("JSON parse error - " + err.Error())
	}

	if v, ok := raw["page"]; ok {
		if req.Page, err = parseIntParam(v); err != nil {
			return req, FieldError("page", err.Error())
		}
	}
	if v, ok := raw["count"]; ok {
		if req.Count, err = parseIntParam(v); err != nil {
			return req, FieldError("count", err.Error())
		}
	}
	return req, nil
}

// parseIntParam accepts integers, floats (truncated toward zero) and numeric
// strings with surrounding whitespace.
func parseIntParam(raw json.RawMessage) (int, error) {
	var value interface{}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return 0, err
	}

	switch v := value.(type) {
	case json.Number:
		if i, err := strconv.Atoi(v.String()); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, errInvalidInteger
		}
		return int(f), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errInvalidInteger
		}
		return i, nil
	default:
		return 0, errInvalidInteger
	}
}

// Reslice narrows an already limited result window. A positive page selects
// items[(page-1)*count : page*count]; otherwise items[page:count]. Negative
// bounds count from the end and
// out-of-range values are clamped to the slice.
func Reslice[T interface{}](items []T, req ResliceRequest) []T {
	var start, stop int
	if req.Page > 0 {
		start, stop = (req.Page-1)*req.Count, req.Page*req.Count
	} else {
		start, stop = req.Page, req.Count
	}
	start, stop = sliceBounds(len(items), start, stop)
	return items[start:stop]
}

func sliceBounds(n, start, stop int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				return 0
			}
			return i
		}
		if i > n {
			return n
		}
		return i
	}
	start, stop = clamp(start), clamp(stop)
	if stop < start {
		stop = start
	}
	return start, stop
}
