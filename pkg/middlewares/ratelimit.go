package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/credit-risk-api/pkg"
	"go.uber.org/zap"
)

// RateLimit rejects requests with 429 once the limiter runs out of tokens.
func RateLimit(logger *zap.Logger, limiter *pkg.AdmissionLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow() {
			c.Next()
			return
		}
		err := pkg.NewAppError(pkg.ErrRateLimitCode, pkg.ErrRateLimitCode.Message, pkg.ErrRateLimitExceeded)
		resp := pkg.ToErrorResponse(logger, c.GetString(pkg.TraceId), err)
		c.AbortWithStatusJSON(resp.Status, resp)
	}
}
