package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/dataingest/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for ingestion logs.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // already resolved by TrustedRealIP
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	ctx = core.ContextWithIPAddress(ctx, ip)
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
