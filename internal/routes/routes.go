package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/access"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/auth"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/client"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/farm"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/weather"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/kv"
)

// Dependencies are the collaborators the handlers are built from.
type Dependencies struct {
	Backend kv.Backend
	Weather weather.Provider
	Logger  *zap.Logger
	// Now drives the demo data and overdue flags. Nil means time.Now.
	Now     func() time.Time
}

// AppHandlers holds all handler instances
type AppHandlers struct {
	Base   *domain.BaseHandler
	Auth   *auth.AuthHandlers
	Farm   *farm.Handler
	Client *client.Handler
}

func Setup(r *gin.Engine, deps Dependencies) {
	handlers := setupDependencies(deps)
	setupRouter(r, handlers, deps)
}

func setupDependencies(deps Dependencies) *AppHandlers {
	farmRepo := farm.NewMockRepository(deps.Now)
	farmService := farm.NewService(farmRepo, deps.Weather, deps.Logger, deps.Now)

	clientRepo := client.NewMockRepository(deps.Now)
	clientService := client.NewService(clientRepo, deps.Logger)

	return &AppHandlers{
		Base:   domain.NewBaseHandler(deps.Logger),
		Auth:   auth.NewAuthHandlers(deps.Logger),
		Farm:   farm.NewHandler(farmService, deps.Logger),
		Client: client.NewHandler(clientService, deps.Logger),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, deps Dependencies) {
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, access.DefaultViewPath)
	})
	r.GET("/healthz", healthz(deps.Backend, deps.Logger))
	r.GET("/start", h.Base.ShowStart)

	// Login portals share one handler pair.
	for _, path := range []string{"/login", access.LoginPath, access.ClientLoginPath} {
		r.GET(path, h.Auth.ShowLoginPage)
		r.POST(path, h.Auth.LoginHandler)
	}
	r.POST("/logout", h.Auth.LogoutHandler)
	r.GET("/session", h.Auth.SessionHandler)

	// Role checks happen in the guard middleware.
	r.GET(access.DefaultViewPath, h.Farm.ShowSupervisorDashboard)
	r.GET("/supervisor-dashboard", h.Farm.ShowSupervisorDashboard)
	r.GET(access.OwnerDashboardPath, h.Farm.ShowOwnerDashboard)
	r.GET("/tasks", h.Farm.ShowTasks)
	r.GET("/fertilizer-plans", h.Farm.ShowFertilizerPlans)
	r.GET("/beds/:bedId", h.Farm.ShowBed)
	r.GET("/weather", h.Farm.ShowWeather)

	r.GET("/client-user/register", h.Client.ShowRegister)
	r.POST("/client-user/register", h.Client.Register)
	r.GET(access.ClientDashboardPath, h.Client.ShowDashboard)
	r.GET("/client-user/farms/:id", h.Client.ShowFarm)
	r.GET("/end-user/portal", h.Client.ShowEndUserPortal)

	r.NoRoute(h.Base.NotFound)
}

func healthz(backend kv.Backend, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := backend.Ping(ctx); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
