package domain

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/middleware"
	"github.com/FACorreiaa/smart-harvest/internal/app/models"
	"github.com/FACorreiaa/smart-harvest/internal/app/views"
)

const titleSuffix = " - SmartHarvest"

type BaseHandler struct {
	Logger *zap.Logger
}

func NewBaseHandler(logger *zap.Logger) *BaseHandler {
	return &BaseHandler{Logger: logger}
}

func (h *BaseHandler) NewLayoutData(c *gin.Context, title, activeNav string) models.Layout {
	layout := models.Layout{
		Title:     title + titleSuffix,
		Nav:       models.OfflineNav,
		ActiveNav: activeNav,
	}

	if sess := middleware.CurrentSession(c); sess != nil {
		layout.User = &models.User{
			Username:  sess.Username,
			Name:      sess.DisplayName,
			Role:      string(sess.Role),
			RoleLabel: sess.Role.Label(),
		}
		layout.Nav = models.NavFor(sess.IsOwner())
	}
	return layout
}

// RenderPage writes page as HTML, or content as JSON when the client asks
// for it. HTMX requests get the page body without the layout.
func (h *BaseHandler) RenderPage(c *gin.Context, status int, page, title, activeNav string, content any) {
	name := page
	if c.GetHeader("HX-Request") == "true" && c.GetHeader("HX-Boosted") != "true" {
		name = views.Partial(page)
	}

	c.Negotiate(status, gin.Negotiate{
		Offered:  []string{binding.MIMEHTML, binding.MIMEJSON},
		HTMLName: name,
		HTMLData: views.Page{Layout: h.NewLayoutData(c, title, activeNav), Content: content},
		JSONData: content,
	})
}

func (h *BaseHandler) RenderNotFound(c *gin.Context, message string) {
	h.RenderPage(c, http.StatusNotFound, views.PageNotFound, "Not found", "", models.ErrorPage{Message: message})
}

func (h *BaseHandler) RenderError(c *gin.Context, status int, message string) {
	h.RenderPage(c, status, views.PageError, "Error", "", models.ErrorPage{Message: message})
}

// NotFound is the router's NoRoute handler.
func (h *BaseHandler) NotFound(c *gin.Context) {
	h.RenderNotFound(c, "The page you are looking for does not exist.")
}

// Redirect sends HTMX clients an HX-Redirect and everyone else a 303.
func (h *BaseHandler) Redirect(c *gin.Context, location string) {
	if middleware.IsHTMX(c) {
		c.Header("HX-Redirect", location)
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}

// ShowStart renders the portal chooser.
func (h *BaseHandler) ShowStart(c *gin.Context) {
	h.RenderPage(c, http.StatusOK, views.PageStart, "Welcome", "", models.Portals)
}
