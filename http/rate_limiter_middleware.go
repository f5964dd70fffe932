package http

import (
	"net"
	"net/http"

	"go.uber.org/zap"
)

// RateLimitMiddleware rejects callers that exhausted their bucket with 429.
func RateLimitMiddleware(limiter *RateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				logger.Warn("rate limit exceeded",
					zap.String("client_ip", ip),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestID(r.Context())),
				)
				writeError(w, logger, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
