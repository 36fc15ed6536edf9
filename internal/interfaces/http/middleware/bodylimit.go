package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/internal/interfaces/http/dto"
)

// PathLimit overrides the body cap for requests under Prefix
type PathLimit struct {
	Prefix   string
	MaxBytes int64
}

// BodyLimit rejects bodies larger than maxBytes with 413. The first PathLimit
// whose prefix matches the request path replaces maxBytes. A cap <= 0 turns
// the check off.
func BodyLimit(maxBytes int64, overrides ...PathLimit) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		for _, o := range overrides {
			if strings.HasPrefix(c.Request.URL.Path, o.Prefix) {
				limit = o.MaxBytes
				break
			}
		}
		if limit <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				RequestIDOf(c),
			))
			return
		}
		// chunked
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
