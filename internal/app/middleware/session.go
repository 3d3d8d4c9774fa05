package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/access"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/session"
	"github.com/FACorreiaa/smart-harvest/internal/app/observability/metrics"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/kv"
)

// SessionMiddleware builds the device's session store and restores the
// persisted session, the server-side equivalent of a page load.
func SessionMiddleware(backend kv.Backend, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := DeviceID(c)
		store := session.NewStore(backend.ForDevice(id), logger.With(zap.String("device_id", id.String())))
		store.Restore(c.Request.Context())

		c.Set(string(SessionStoreKey), store)
		c.Next()
	}
}

// GuardMiddleware applies the route table to every request. Anonymous users
// are sent to login, users without the required role to their default view.
func GuardMiddleware(table access.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		outcome := table.Resolve(c.Request.URL.RequestURI(), CurrentSession(c))

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.Get().RecordGuard(c.Request.Context(), outcome.Decision.String(), route)

		if !outcome.Redirects() {
			c.Next()
			return
		}

		if outcome.Decision == access.RedirectToLogin {
			handleAuthRedirect(c, outcome.Location)
			return
		}
		handleRedirect(c, outcome.Location)
	}
}
