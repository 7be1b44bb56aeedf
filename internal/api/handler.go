// Package api serves expression evaluation over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zephyrtronium/mathexpr/internal/memo"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	prec      uint
	maxLength int
	memo      *memo.Cache
}

// NewHTTPHandler creates the evaluation endpoints. Expressions are evaluated
// with prec bits of precision and may be at most maxLength bytes long, or any
// length if maxLength is zero. A nil cache disables memoization. Panics if
// prec is zero.
func NewHTTPHandler(
	prec uint,
	maxLength int,
	cache *memo.Cache,
) *HttpEndpoints {
	if prec == 0 {
		panic("api: zero precision")
	}
	if cache == nil {
		cache = memo.New(0)
	}
	return &HttpEndpoints{
		prec:      prec,
		maxLength: maxLength,
		memo:      cache,
	}
}

func (h *HttpEndpoints) AddRoutes(rg *gin.RouterGroup) {
	v1 := rg.Group("/v1")

	v1.POST("/evaluate",
		RequirePayload(),
		h.evaluate)
	v1.POST("/changed",
		RequirePayload(),
		h.changed)
	v1.GET("/functions", h.functions)
}

// RequirePayload blocks requests that have no payload attached.
func RequirePayload() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "payload missing"})
			return
		}
		c.Next()
	}
}
