package params

import (
	"strconv"

	"go-poll-scheduler/core/constants"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

const maxPageSize = 100

// NewQueryParams reads page_number, page_size and search from the query
// string, falling back to the first page of PollRecentLimit items.
func NewQueryParams(c echo.Context) *QueryParams {
	p := &QueryParams{
		PageNumber: 1,
		PageSize:   constants.PollRecentLimit,
		Search:     c.QueryParam("search"),
	}
	if v, err := strconv.Atoi(c.QueryParam("page_number")); err == nil && v > 0 {
		p.PageNumber = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
		p.PageSize = min(v, maxPageSize)
	}
	return p
}

func (p *QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}
