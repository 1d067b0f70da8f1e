package blogapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(method, target, body string) *Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return NewContext(c, nil)
}

func TestLimitOffsetPagination_Parse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewLimitOffsetPagination(10, 100)

	tests := []struct {
		query    string
		expected LimitOffset
	}{
		{"", LimitOffset{Limit: 10, Offset: 0}},
		{"limit=5&offset=20", LimitOffset{Limit: 5, Offset: 20}},
		{"limit=500", LimitOffset{Limit: 100, Offset: 0}},
		{"limit=-3&offset=-1", LimitOffset{Limit: 10, Offset: 0}},
		{"limit=abc&offset=xyz", LimitOffset{Limit: 10, Offset: 0}},
		{"limit=0", LimitOffset{Limit: 10, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.expected, p.Parse(testContext(http.MethodGet, "/posts?"+tt.query, "")))
		})
	}
}

func TestNewLimitOffsetPagination_Defaults(t *testing.T) {
	assert.Equal(t, LimitOffsetPagination{DefaultLimit: DefaultLimit, MaxLimit: MaxLimit}, NewLimitOffsetPagination(0, -1))
}

func TestNewPage_Links(t *testing.T) {
	base := "http://blog.test/api/posts?search=go"

	first := NewPage(base, LimitOffset{Limit: 10, Offset: 0}, 25, []int{1})
	require.NotNil(t, first.Next)
	assert.Equal(t, "http://blog.test/api/posts?limit=10&offset=10&search=go", *first.Next)
	assert.Nil(t, first.Previous)

	second := NewPage(base+"&offset=10", LimitOffset{Limit: 10, Offset: 10}, 25, []int{1})
	require.NotNil(t, second.Previous)
	assert.Equal(t, "http://blog.test/api/posts?limit=10&search=go", *second.Previous)

	third := NewPage(base, LimitOffset{Limit: 10, Offset: 20}, 25, []int{1})
	assert.Nil(t, third.Next)
	require.NotNil(t, third.Previous)
	assert.Equal(t, "http://blog.test/api/posts?limit=10&offset=10&search=go", *third.Previous)

	empty := NewPage[int](base, LimitOffset{Limit: 10}, 0, nil)
	assert.NotNil(t, empty.Results)
	assert.Empty(t, empty.Results)
}

func TestParseResliceRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		body       string
		expected   ResliceRequest
		errorField string
	}{
		{"no body", "", ResliceRequest{Page: 0, Count: 10}, ""},
		{"integers", `{"page": 2, "count": 3}`, ResliceRequest{Page: 2, Count: 3}, ""},
		{"numeric strings", `{"page": " 4 ", "count": "5"}`, ResliceRequest{Page: 4, Count: 5}, ""},
		{"floats truncate", `{"page": 1.9, "count": 2.2}`, ResliceRequest{Page: 1, Count: 2}, ""},
		{"negative", `{"page": -2}`, ResliceRequest{Page: -2, Count: 10}, ""},
		{"only count", `{"count": 4}`, ResliceRequest{Page: 0, Count: 4}, ""},
		{"bad page", `{"page": "two"}`, ResliceRequest{}, "page"},
		{"bad count", `{"count": true}`, ResliceRequest{}, "count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseResliceRequest(testContext(http.MethodGet, "/posts", tt.body))
			if tt.errorField != "" {
				var apiErr ApiError
				require.ErrorAs(t, err, &apiErr)
				assert.Contains(t, apiErr.Fields, tt.errorField)
				assert.Equal(t, []string{"A valid integer is required."}, apiErr.Fields[tt.errorField])
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, req)
		})
	}
}

func TestParseResliceRequest_Malformed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, err := ParseResliceRequest(testContext(http.MethodGet, "/posts", `{"page":`))
	var apiErr ApiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeBadRequest, apiErr.ErrorCode)
}

func TestReslice(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	tests := []struct {
		name     string
		req      ResliceRequest
		expected []int
	}{
		{"one-based page", ResliceRequest{Page: 2, Count: 3}, []int{3, 4, 5}},
		{"first page", ResliceRequest{Page: 1, Count: 3}, []int{0, 1, 2}},
		{"page zero", ResliceRequest{Page: 0, Count: 3}, []int{0, 1, 2}},
		{"defaults", ResliceRequest{Page: 0, Count: 10}, items},
		{"past the end", ResliceRequest{Page: 5, Count: 3}, []int{}},
		{"partial last page", ResliceRequest{Page: 4, Count: 3}, []int{9}},
		{"negative page counts from the end", ResliceRequest{Page: -3, Count: 10}, []int{7, 8, 9}},
		{"negative count", ResliceRequest{Page: 0, Count: -2}, []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{"start after stop", ResliceRequest{Page: -2, Count: 3}, []int{}},
		{"zero count", ResliceRequest{Page: 0, Count: 0}, []int{}},
		{"huge values clamp", ResliceRequest{Page: -100, Count: 100}, items},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Reslice(items, tt.req))
		})
	}
}
