package client

import (
	"errors"
	"net/http"
	"strconv"

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
	invalidRegistrationMsg = "Please enter your name, a valid email and a password"
	duplicateClientMsg     = "An account with this email already exists"
	registerFailureMsg     = "Something went wrong, please try again"
	unknownProductMsg      = "No product matches that code"
)

type Handler struct {
	*domain.BaseHandler
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	return &Handler{
		BaseHandler: domain.NewBaseHandler(log),
		service:     service,
		log:         log,
	}
}

// ShowDashboard renders the client dashboard. ?tab= switches between
// accessed and not-accessed farms.
func (h *Handler) ShowDashboard(c *gin.Context) {
	var username string
	if sess := middleware.CurrentSession(c); sess != nil {
		username = sess.Username
	}

	dash, err := h.service.Dashboard(c.Request.Context(), username, c.Query("tab"))
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			h.RenderError(c, http.StatusBadRequest, "Unknown farm list")
			return
		}
		h.log.Error("Failed to load client dashboard", zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	h.RenderPage(c, http.StatusOK, views.PageClientDashboard, "Client Dashboard", "", dash)
}

// ShowFarm renders an accessed farm. Unknown ids are 404, farms without
// access are 403.
func (h *Handler) ShowFarm(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.RenderNotFound(c, "Farm "+raw+" does not exist.")
		return
	}

	detail, err := h.service.Farm(c.Request.Context(), id)
	switch {
	case err == nil:
		h.RenderPage(c, http.StatusOK, views.PageClientFarm, detail.Farm.Name, "", detail)
	case errors.Is(err, models.ErrNotFound):
		h.RenderNotFound(c, "Farm "+raw+" does not exist.")
	case errors.Is(err, models.ErrForbidden):
		h.RenderError(c, http.StatusForbidden, "You do not have access to this farm yet.")
	default:
		h.log.Error("Failed to load client farm", zap.Int("farmID", id), zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to load farm")
	}
}

func (h *Handler) ShowRegister(c *gin.Context) {
	h.RenderPage(c, http.StatusOK, views.PageClientRegister, "Register", "", models.RegisterForm{})
}

// Register creates the client account, signs the device in and lands on the
// client dashboard.
func (h *Handler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	m := metrics.Get()

	var req models.ClientRegistration
	if err := c.ShouldBind(&req); err != nil {
		h.log.Warn("Invalid client registration", zap.Error(err))
		m.RecordAuth(ctx, "register", "bad_request")
		h.registerError(c, http.StatusBadRequest, req, invalidRegistrationMsg)
		return
	}

	profile, err := h.service.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrValidation):
			m.RecordAuth(ctx, "register", "bad_request")
			h.registerError(c, http.StatusBadRequest, req, invalidRegistrationMsg)
		case errors.Is(err, models.ErrConflict):
			m.RecordAuth(ctx, "register", "conflict")
			h.registerError(c, http.StatusConflict, req, duplicateClientMsg)
		default:
			h.log.Error("Failed to register client", zap.Error(err))
			m.RecordAuth(ctx, "register", "error")
			h.registerError(c, http.StatusInternalServerError, req, registerFailureMsg)
		}
		return
	}

	store := middleware.SessionStore(c)
	if store == nil {
		h.log.Error("Session store missing from context")
		m.RecordAuth(ctx, "register", "error")
		h.registerError(c, http.StatusInternalServerError, req, registerFailureMsg)
		return
	}
	if _, err := store.Login(ctx, profile.Email, req.Password); err != nil {
		h.log.Error("Failed to persist session after registration", zap.String("email", profile.Email), zap.Error(err))
		m.RecordAuth(ctx, "register", "error")
		h.registerError(c, http.StatusInternalServerError, req, registerFailureMsg)
		return
	}

	m.RecordAuth(ctx, "register", "success")
	h.Redirect(c, access.ClientDashboardPath)
}

func (h *Handler) registerError(c *gin.Context, status int, req models.ClientRegistration, message string) {
	if middleware.IsHTMX(c) {
		c.Header("HX-Retarget", "#register-form")
		c.Header("HX-Reswap", "outerHTML")
	}
	req.Password = ""
	h.RenderPage(c, status, views.PageClientRegister, "Register", "", models.RegisterForm{Input: req, Error: message})
}

// ShowEndUserPortal renders the product lookup. With ?code= it shows the
// matching product, or 404 when nothing matches.
func (h *Handler) ShowEndUserPortal(c *gin.Context) {
	lookup := models.ProductLookup{Code: c.Query("code")}
	if lookup.Code == "" {
		h.RenderPage(c, http.StatusOK, views.PageEndUserPortal, "End User Portal", "", lookup)
		return
	}

	product, err := h.service.LookupProduct(c.Request.Context(), lookup.Code)
	switch {
	case err == nil:
		lookup.Product = product
		h.RenderPage(c, http.StatusOK, views.PageEndUserPortal, "End User Portal", "", lookup)
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrValidation):
		lookup.Error = unknownProductMsg
		h.RenderPage(c, http.StatusNotFound, views.PageEndUserPortal, "End User Portal", "", lookup)
	default:
		h.log.Error("Failed to look up product", zap.String("code", lookup.Code), zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to look up product")
	}
}
