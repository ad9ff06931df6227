package api

import (
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// coverRateLimit throttles cover lookups per client IP. Each uncached lookup
// can fan out to two remote providers.
func (s *Server) coverRateLimit(ctx huma.Context, next func(huma.Context)) {
	if s.coverLimiter == nil {
		next(ctx)
		return
	}

	key := clientIP(ctx)
	if !s.coverLimiter.Allow(key) {
		s.logger.Warn("rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many cover requests. Please try again later.")
		return
	}
	next(ctx)
}

// clientIP prefers X-Forwarded-For, then X-Real-IP, then the remote address.
func clientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}
	addr := ctx.RemoteAddr()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
