package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain"
	"github.com/FACorreiaa/smart-harvest/internal/app/domain/access"
	"github.com/FACorreiaa/smart-harvest/internal/app/middleware"
	"github.com/FACorreiaa/smart-harvest/internal/app/models"
	"github.com/FACorreiaa/smart-harvest/internal/app/observability/metrics"
	"github.com/FACorreiaa/smart-harvest/internal/app/views"
)

const (
	missingCredentialsMsg = "Please enter both username and password"
	storageFailureMsg     = "Something went wrong, please try again"
	logoutRedirect        = "/login"
)

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
	From     string `form:"from" json:"from"`
}

// SessionResponse is the body of GET /session.
type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
}

type AuthHandlers struct {
	*domain.BaseHandler
	logger *zap.Logger
}

func NewAuthHandlers(logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		BaseHandler: domain.NewBaseHandler(logger),
		logger:      logger,
	}
}

func isClientPortal(path string) bool {
	return strings.HasPrefix(path, "/client-user")
}

func portalFor(path string) string {
	if isClientPortal(path) {
		return "Client user"
	}
	return "Farm user"
}

// landingFor is where a login on path goes when no return page is given.
func landingFor(path string) string {
	if isClientPortal(path) {
		return access.ClientDashboardPath
	}
	return access.DefaultViewPath
}

// ShowLoginPage renders the login form on every login path, carrying the
// page the user was headed to.
func (h *AuthHandlers) ShowLoginPage(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, models.LoginForm{From: c.Query("from")})
}

func (h *AuthHandlers) renderLogin(c *gin.Context, status int, form models.LoginForm) {
	form.Action = c.Request.URL.Path
	form.Portal = portalFor(form.Action)
	h.RenderPage(c, status, views.PageLogin, "Login", "", form)
}

// LoginHandler accepts username and password as a form or JSON body.
func (h *AuthHandlers) LoginHandler(c *gin.Context) {
	ctx := c.Request.Context()
	m := metrics.Get()

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Failed to bind login request", zap.Error(err))
		m.RecordAuth(ctx, "login", "bad_request")
		h.loginError(c, http.StatusBadRequest, req, "Invalid login request")
		return
	}

	if req.Username == "" || req.Password == "" {
		h.logger.Warn("Missing username or password")
		m.RecordAuth(ctx, "login", "missing_credentials")
		h.loginError(c, http.StatusBadRequest, req, missingCredentialsMsg)
		return
	}

	store := middleware.SessionStore(c)
	if store == nil {
		h.logger.Error("Session store missing from context")
		m.RecordAuth(ctx, "login", "error")
		h.loginError(c, http.StatusInternalServerError, req, storageFailureMsg)
		return
	}

	sess, err := store.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.Error("Failed to persist session", zap.String("username", req.Username), zap.Error(err))
		m.RecordAuth(ctx, "login", "error")
		h.loginError(c, http.StatusInternalServerError, req, storageFailureMsg)
		return
	}

	m.RecordAuth(ctx, "login", "success")
	h.logger.Info("Successful login",
		zap.String("username", sess.Username),
		zap.String("role", string(sess.Role)),
		zap.String("device_id", middleware.DeviceID(c).String()))

	h.Redirect(c, access.SafeReturn(req.From, landingFor(c.Request.URL.Path)))
}

func (h *AuthHandlers) loginError(c *gin.Context, status int, req LoginRequest, message string) {
	if middleware.IsHTMX(c) {
		c.Header("HX-Retarget", "#login-form")
		c.Header("HX-Reswap", "outerHTML")
	}
	h.renderLogin(c, status, models.LoginForm{From: req.From, Username: req.Username, Error: message})
}

func (h *AuthHandlers) LogoutHandler(c *gin.Context) {
	ctx := c.Request.Context()
	m := metrics.Get()

	if store := middleware.SessionStore(c); store != nil {
		if err := store.Logout(ctx); err != nil {
			h.logger.Error("Failed to clear session", zap.Error(err))
			m.RecordAuth(ctx, "logout", "error")
			h.RenderError(c, http.StatusInternalServerError, storageFailureMsg)
			return
		}
	}

	m.RecordAuth(ctx, "logout", "success")
	h.logger.Info("User logged out", zap.String("device_id", middleware.DeviceID(c).String()))
	h.Redirect(c, logoutRedirect)
}

// SessionHandler reports the current session as JSON.
func (h *AuthHandlers) SessionHandler(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		c.JSON(http.StatusOK, SessionResponse{Authenticated: false})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		Authenticated: true,
		User: &models.User{
			Username:  sess.Username,
			Name:      sess.DisplayName,
			Role:      string(sess.Role),
			RoleLabel: sess.Role.Label(),
		},
	})
}
