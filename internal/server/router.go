package server

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/access"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/weather"
	"github.com/FACorreiaa/smart-harvest/internal/app/middleware"
	"github.com/FACorreiaa/smart-harvest/internal/app/views"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/config"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/device"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/kv"
	"github.com/FACorreiaa/smart-harvest/internal/routes"
)

// RouterDeps are the long-lived collaborators the router is assembled from.
type RouterDeps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Backend kv.Backend
	Weather weather.Provider
	Now     func() time.Time
}

// SetupRouter configures and returns the Gin router with all middleware and routes
func SetupRouter(deps RouterDeps) (*gin.Engine, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.HTMLRender = renderer

	// Setup middleware
	r.Use(ginzap.GinzapWithConfig(deps.Logger, &ginzap.Config{
		UTC:        true,
		TimeFormat: time.RFC3339,
		Context:    zapContextFunc(),
		SkipPaths:  []string{"/healthz"},
	}))
	r.Use(ginzap.RecoveryWithZap(deps.Logger, true))
	r.Use(middleware.OTELGinMiddleware(deps.Config.Observability.ServiceName))
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	if err := SetupAssets(r); err != nil {
		return nil, err
	}

	// Identity, session restore and route guard, in that order.
	r.Use(middleware.DeviceMiddleware(middleware.DeviceConfig{
		Issuer:     device.NewIssuer(deps.Config.Device.Secret, deps.Config.Device.TTL),
		CookieName: deps.Config.Device.CookieName,
		Secure:     deps.Config.Device.Secure,
		Logger:     deps.Logger,
	}))
	r.Use(middleware.SessionMiddleware(deps.Backend, deps.Logger))
	r.Use(middleware.GuardMiddleware(access.DefaultTable))

	routes.Setup(r, routes.Dependencies{
		Backend: deps.Backend,
		Weather: deps.Weather,
		Logger:  deps.Logger,
		Now:     deps.Now,
	})

	return r, nil
}

// zapContextFunc returns the Zap context function for logging
func zapContextFunc() ginzap.Fn {
	return func(c *gin.Context) []zapcore.Field {
		fields := []zapcore.Field{}

		if requestID := c.Writer.Header().Get("X-Request-Id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().IsValid() {
			fields = append(fields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()),
			)
		}

		if id := middleware.DeviceID(c); id != uuid.Nil {
			fields = append(fields, zap.String("device_id", id.String()))
		}

		return fields
	}
}
