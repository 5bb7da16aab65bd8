package http

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"
	"venue-booking/common/constant"
	"venue-booking/common/errs"
	"venue-booking/common/metrics"
)

func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "request timeout")
	}
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
		w.Header().Set("Access-Control-Expose-Headers", "Idempotent-Replayed, X-Data-Source, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware must wrap the mux directly so r.Pattern is populated after routing.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		metrics.HttpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status), r.Method).Inc()
		metrics.HttpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// RateLimitMiddleware caps POST requests per client and path within a fixed window.
// Requests pass through when redis is unavailable. X-Forwarded-For is only read
// from peers inside trusted.
func RateLimitMiddleware(cache *redis.Client, limit int, window time.Duration, trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf(constant.RateLimitKey, clientIP(r, trusted), r.URL.Path)
			allowed, err := allow(r.Context(), cache, key, limit, window)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable", slog.Any(constant.LogFieldErr, err))
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				metrics.RateLimitExceeded.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeErrorResponse(w, &errs.HttpError{Code: http.StatusTooManyRequests, Message: "Too many requests, please try again later"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func allow(ctx context.Context, cache *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	pipe := cache.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= int64(limit), nil
}

// ParseTrustedProxies accepts CIDR prefixes and bare addresses.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if strings.Contains(value, "/") {
			prefix, err := netip.ParsePrefix(value)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", value, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(value)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", value, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, nil
}

// clientIP is the peer address unless the peer is a trusted proxy. Then the
// X-Forwarded-For chain is walked from the right and the first hop not owned by
// a trusted proxy wins.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if !isTrusted(host, trusted) {
		return host
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
		host = hop
	}

	return host
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
