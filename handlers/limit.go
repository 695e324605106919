package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseLimit reads ?limit=N. Missing, non-numeric or non-positive values
// mean no limit.
func ParseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}
