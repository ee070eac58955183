package web

import (
	"net/http"

	"github.com/JonMunkholm/erpdash/internal/core"
	"github.com/JonMunkholm/erpdash/internal/logging"
	mw "github.com/JonMunkholm/erpdash/internal/web/middleware"
)

// requestMetadata records who is calling and installs a request logger,
// so service logs can attribute mutations.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithIPAddress(r.Context(), mw.ClientIP(r)) // RemoteAddr already rewritten by TrustedRealIP
		ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
		ctx = logging.NewContext(ctx, logging.FromContext(ctx).With("method", r.Method, "path", r.URL.Path))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
