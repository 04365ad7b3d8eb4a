package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/activity-report-api/internal/utils"
)

// RateLimit throttles expensive export requests per caller. Anonymous requests fall back to
// the client IP. Rejected exports (4xx/5xx) do not consume the caller's budget. A nil
// storage keeps counters in process memory.
func RateLimit(identifier string, max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	return limiter.New(limiter.Config{
		Max:                max,
		Expiration:         window,
		Storage:            storage,
		SkipFailedRequests: true,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, _ := c.Locals(LocalUserID).(string); userID != "" {
				return identifier + ":user:" + userID
			}
			return identifier + ":ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Fail(c, fiber.StatusTooManyRequests, "export rate limit exceeded, try again later", fiber.Map{
				"retryAfter": c.GetRespHeader(fiber.HeaderRetryAfter),
			})
		},
	})
}
