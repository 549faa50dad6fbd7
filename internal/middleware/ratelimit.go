package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// ReportRateLimitMiddleware throttles report creation per client IP using a
// formatted rate such as "30-M". Polling and downloads are not limited.
func ReportRateLimitMiddleware(formatted string, logger *slog.Logger) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		logger.Error("Invalid rate limit format, rate limiting disabled", slog.String("rate", formatted), slog.String("error", err.Error()))
		return func(c *gin.Context) { c.Next() }
	}
	store := memory.NewStore()
	return mgin.NewMiddleware(limiter.New(store, rate))
}
