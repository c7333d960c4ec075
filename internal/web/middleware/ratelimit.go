package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/leads/internal/identity"
	"github.com/JonMunkholm/leads/internal/ratelimit"
)

// ErrRateLimited is reported to the ErrorWriter when a caller is over limit.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitRecorder counts rejected requests.
type RateLimitRecorder interface {
	RateLimited(route string)
}

// RateLimit applies l to every request, keyed by the session user id when
// authenticated and by client IP otherwise. Over-limit requests get 429
// with Retry-After; all responses carry X-RateLimit-* headers.
func RateLimit(l *ratelimit.FixedWindow, rec RateLimitRecorder, deny ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := l.Allow(rateKey(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retry := int(res.RetryAfter.Round(time.Second).Seconds())
				h.Set("Retry-After", strconv.Itoa(max(1, retry)))
				if rec != nil {
					rec.RateLimited(routePattern(r))
				}
				deny(w, r, ErrRateLimited, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(r *http.Request) string {
	if sess, ok := identity.SessionFromContext(r.Context()); ok {
		return "user:" + sess.UserID.String()
	}
	return "ip:" + ClientIP(r)
}
