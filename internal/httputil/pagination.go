package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"
)

// Lease listings page with offset/limit query parameters.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ParsePagination reads offset and limit from the query string, applying
// DefaultPageLimit when limit is absent. Both values are zero on error.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = queryInt(c, "offset", 0, validation.Min(0))
	if err != nil {
		return 0, 0, err
	}

	limit, err = queryInt(c, "limit", DefaultPageLimit, validation.Min(1), validation.Max(MaxPageLimit))
	if err != nil {
		return 0, 0, err
	}

	return offset, limit, nil
}

func queryInt(c *gin.Context, name string, fallback int, rules ...validation.Rule) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: must be an integer", name)
	}
	if err := validation.Validate(v, rules...); err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %w", name, err)
	}
	return v, nil
}
