package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rustyeddy/optsim/internal/id"
)

const runIDKey = "run_id"

// requestLogger tags every request with a run ID and logs it on completion.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		runID := id.At(start)
		c.Set(runIDKey, runID)
		c.Header("X-Run-ID", runID)

		c.Next()

		log.Info("request",
			"run_id", runID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func runID(c *gin.Context) string {
	return c.GetString(runIDKey)
}
