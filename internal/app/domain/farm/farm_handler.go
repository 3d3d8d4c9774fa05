package farm

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain"
	"github.com/FACorreiaa/smart-harvest/internal/app/models"
	"github.com/FACorreiaa/smart-harvest/internal/app/views"
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

// ShowSupervisorDashboard renders /dashboard and /supervisor-dashboard.
func (h *Handler) ShowSupervisorDashboard(c *gin.Context) {
	dash, err := h.service.SupervisorDashboard(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load supervisor dashboard", zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	h.RenderPage(c, http.StatusOK, views.PageDashboard, "Dashboard", "Dashboard", dash)
}

func (h *Handler) ShowOwnerDashboard(c *gin.Context) {
	dash, err := h.service.OwnerDashboard(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load owner dashboard", zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}
	h.RenderPage(c, http.StatusOK, views.PageOwnerDashboard, "Owner Dashboard", "Dashboard", dash)
}

// ShowTasks renders the task list, filtered by ?status=&priority=&bed=.
func (h *Handler) ShowTasks(c *gin.Context) {
	var filter models.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.RenderError(c, http.StatusBadRequest, "Invalid filter")
		return
	}

	ctx := c.Request.Context()
	tasks, err := h.service.Tasks(ctx, filter)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			h.RenderError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("Failed to load tasks", zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to load tasks")
		return
	}

	beds, err := h.service.Beds(ctx)
	if err != nil {
		h.log.Error("Failed to load beds", zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to load tasks")
		return
	}

	h.RenderPage(c, http.StatusOK, views.PageTasks, "Task List", "Task List", models.TaskList{
		Tasks:      tasks,
		Filter:     filter,
		Beds:       beds,
		Statuses:   []models.TaskStatus{models.TaskPending, models.TaskInProgress, models.TaskCompleted, models.TaskDelayed},
		Priorities: []models.TaskPriority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent},
	})
}

func (h *Handler) ShowFertilizerPlans(c *gin.Context) {
	plans, err := h.service.FertilizerPlans(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load fertilizer plans", zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to load fertilizer plans")
		return
	}
	h.RenderPage(c, http.StatusOK, views.PageFertilizerPlans, "Fertilizer Plans", "Fertilizer Plans", plans)
}

func (h *Handler) ShowBed(c *gin.Context) {
	bedID := c.Param("bedId")
	detail, err := h.service.Bed(c.Request.Context(), bedID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			h.RenderNotFound(c, "Bed "+bedID+" does not exist.")
			return
		}
		h.log.Error("Failed to load bed", zap.String("bedID", bedID), zap.Error(err))
		h.RenderError(c, http.StatusInternalServerError, "Failed to load bed")
		return
	}
	h.RenderPage(c, http.StatusOK, views.PageBed, detail.Bed.Name, "Dashboard", detail)
}

// ShowWeather renders the forecast page. Upstream failures surface as 502.
func (h *Handler) ShowWeather(c *gin.Context) {
	data, err := h.service.Weather(c.Request.Context())
	if err != nil {
		h.log.Warn("Weather page unavailable", zap.Error(err))
		h.RenderPage(c, http.StatusBadGateway, views.PageWeather, "Weather", "Weather",
			models.WeatherPage{Error: weatherDownMsg})
		return
	}
	h.RenderPage(c, http.StatusOK, views.PageWeather, "Weather", "Weather", models.WeatherPage{Weather: data})
}
