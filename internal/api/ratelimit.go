package api

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/shoefit/shoefit-server/internal/http/response"
	"github.com/shoefit/shoefit-server/internal/ratelimit"
)

// authPathPrefix is the path prefix guarded by the keyed auth limiter.
const authPathPrefix = "/api/v1/auth/"

// authRateLimit limits auth endpoints per client IP with a token bucket.
// Returns 429 Too Many Requests with Retry-After when the bucket is empty.
func authRateLimit(limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, authPathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			allowed, retryAfter := limiter.Check(key)
			if !allowed {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				writeRateLimited(w, logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter, logger *slog.Logger) {
	response.TooManyRequests(w, "Too many requests. Please try again later.", logger)
}
