package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/fraud-registry/pkg/common"
)

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	DefaultOffset = 0
)

// Params holds limit/offset query parameters
type Params struct {
	Limit  int
	Offset int
}

// ParseParams reads limit and offset from the query string, clamping bad values
func ParseParams(c *gin.Context) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = DefaultOffset
	}

	return Params{Limit: limit, Offset: offset}
}

// BuildMeta builds response metadata for a page of total items
func BuildMeta(limit, offset int, total int64) *common.Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &common.Meta{
		Limit:      limit,
		Offset:     offset,
		Total:      total,
		TotalPages: totalPages,
	}
}
