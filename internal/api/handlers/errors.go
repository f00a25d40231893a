package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/relaydns/sentinel/internal/api/models"
)

const requestStartKey = "request.start"

// StampRequestStart records when a request entered the API, so handlers can
// report the `took` field spec.md §6 puts on every response.
func StampRequestStart(c *gin.Context) {
	c.Set(requestStartKey, time.Now())
}

func took(c *gin.Context) float64 {
	v, ok := c.Get(requestStartKey)
	if !ok {
		return 0
	}
	start, ok := v.(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start).Seconds()
}

// JSONError writes the uniform {error:{key,message,hint?}, took} error shape
// with the given HTTP status.
func JSONError(c *gin.Context, status int, key, message, hint string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Key: key, Message: message, Hint: hint},
		Took:  took(c),
	})
}
