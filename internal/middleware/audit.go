package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs successful mutating requests with the acting role.
func Audit(logger *zap.Logger, action string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if claims := ClaimsFromContext(c); claims != nil {
			fields = append(fields, zap.String("role", string(claims.Role)))
			if claims.StudentID != "" {
				fields = append(fields, zap.String("student_id", string(claims.StudentID)))
			}
		}
		logger.Info("audit", fields...)
	}
}
