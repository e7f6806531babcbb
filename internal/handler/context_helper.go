package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/typemnm/Mornoningo/pkg/clock"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

// dateQuery parses an optional YYYY-MM-DD query parameter. A missing value yields the zero date.
func dateQuery(c *gin.Context, key string) (clock.Date, error) {
	raw := c.Query(key)
	if raw == "" {
		return "", nil
	}
	date, err := clock.ParseDate(raw)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, key+" must be YYYY-MM-DD")
	}
	return date, nil
}
