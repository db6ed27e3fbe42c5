package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		name           string
		queryString    string
		expectedLimit  int
		expectedOffset int
	}{
		{"no params uses defaults", "", DefaultLimit, DefaultOffset},
		{"valid limit and offset", "limit=10&offset=20", 10, 20},
		{"zero limit uses default", "limit=0", DefaultLimit, DefaultOffset},
		{"negative limit uses default", "limit=-10", DefaultLimit, DefaultOffset},
		{"limit exceeds max", "limit=200", MaxLimit, DefaultOffset},
		{"negative offset uses default", "offset=-5", DefaultLimit, DefaultOffset},
		{"non-numeric values", "limit=abc&offset=xyz", DefaultLimit, DefaultOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.queryString, nil)

			params := ParseParams(c)

			assert.Equal(t, tt.expectedLimit, params.Limit)
			assert.Equal(t, tt.expectedOffset, params.Offset)
		})
	}
}

func TestBuildMeta(t *testing.T) {
	tests := []struct {
		name               string
		limit, offset      int
		total              int64
		expectedTotalPages int
	}{
		{"empty", 20, 0, 0, 0},
		{"exact pages", 10, 0, 30, 3},
		{"partial last page", 10, 10, 31, 4},
		{"zero limit", 0, 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := BuildMeta(tt.limit, tt.offset, tt.total)
			assert.Equal(t, tt.limit, meta.Limit)
			assert.Equal(t, tt.offset, meta.Offset)
			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.expectedTotalPages, meta.TotalPages)
		})
	}
}
