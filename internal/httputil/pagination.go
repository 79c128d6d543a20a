package httputil

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// ListQuery holds the paging window and optional creation time bounds of a list request.
type ListQuery struct {
	Offset int
	Limit  int
	From   *time.Time
	To     *time.Time
}

// ParseListQuery reads offset (default 0), limit (default 50, at most 100) and the
// RFC 3339 created_at_from / created_at_to bounds.
func ParseListQuery(c *gin.Context) (ListQuery, error) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return ListQuery{}, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		return ListQuery{}, fmt.Errorf("invalid limit parameter: must be between 1 and %d", maxLimit)
	}

	from, err := parseTimeParam(c, "created_at_from")
	if err != nil {
		return ListQuery{}, err
	}
	to, err := parseTimeParam(c, "created_at_to")
	if err != nil {
		return ListQuery{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return ListQuery{}, fmt.Errorf("invalid time range: created_at_from is after created_at_to")
	}

	return ListQuery{Offset: offset, Limit: limit, From: from, To: to}, nil
}

func parseTimeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: must be an RFC 3339 timestamp", name)
	}
	t = t.UTC()
	return &t, nil
}
