package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/pkg/device"
)

type DeviceConfig struct {
	Issuer     *device.Issuer
	CookieName string
	Secure     bool
	Logger     *zap.Logger
}

// DeviceMiddleware identifies the browser profile behind the request. A
// missing or invalid cookie gets a freshly minted device.
func DeviceMiddleware(cfg DeviceConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(cfg.CookieName); err == nil && token != "" {
			if id, err := cfg.Issuer.Parse(token); err == nil {
				c.Set(string(DeviceIDKey), id)
				c.Next()
				return
			}
			cfg.Logger.Debug("Replacing invalid device token", zap.String("client_ip", c.ClientIP()))
		}

		id := uuid.New()
		token, err := cfg.Issuer.Issue(id)
		if err != nil {
			cfg.Logger.Error("Failed to issue device token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, token, int(cfg.Issuer.TTL().Seconds()), "/", "", cfg.Secure, true)
		c.Set(string(DeviceIDKey), id)
		c.Next()
	}
}
