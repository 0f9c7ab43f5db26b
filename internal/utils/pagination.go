package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/constants"
)

// PaginationParams holds the pagination parameters. Requested is false when
// neither page nor limit was supplied.
type PaginationParams struct {
	Page      int
	Limit     int
	Offset    int
	Requested bool
}

// PaginationQueryKeys are consumed by pagination and never treated as filters.
var PaginationQueryKeys = []string{"page", "limit"}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	_, hasPage := c.GetQuery("page")
	_, hasLimit := c.GetQuery("limit")

	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:      page,
		Limit:     limit,
		Offset:    (page - 1) * limit,
		Requested: hasPage || hasLimit,
	}
}
