package views

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-harvest/internal/app/models"
)

func render(t *testing.T, r *Renderer, name string, data any) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Instance(name, data).Render(w))
	return w.Body.String()
}

func TestRenderer_AllPagesParse(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	assert.Len(t, r.templates, len(pages))
}

func TestRenderer_LayoutAndPartial(t *testing.T) {
	r := MustRenderer()
	page := Page{
		Layout: models.Layout{
			Title:     "Task List - SmartHarvest",
			User:      &models.User{Name: "alice", RoleLabel: "Supervisor"},
			Nav:       models.NavFor(false),
			ActiveNav: "Task List",
		},
		Content: models.TaskList{
			Tasks: []models.Task{{
				ID: "task-bed-001-1", BedID: "bed-001", Title: "Water plants",
				DueDate: time.Now().Add(3 * time.Hour), Status: models.TaskPending, Priority: models.PriorityHigh,
			}},
			Statuses:   []models.TaskStatus{models.TaskPending},
			Priorities: []models.TaskPriority{models.PriorityHigh},
		},
	}

	full := render(t, r, PageTasks, page)
	assert.Contains(t, full, "<title>Task List - SmartHarvest</title>")
	assert.Contains(t, full, "Fertilizer Plans")
	assert.Contains(t, full, "Water plants")
	assert.Contains(t, full, `class="active">Task List`)

	partial := render(t, r, Partial(PageTasks), page)
	assert.NotContains(t, partial, "<title>")
	assert.Contains(t, partial, "Water plants")
}

func TestRenderer_LoginShowsError(t *testing.T) {
	body := render(t, MustRenderer(), PageLogin, Page{
		Layout:  models.Layout{Title: "Login", Nav: models.OfflineNav},
		Content: models.LoginForm{Portal: "Farm user", Action: "/farm-user/login", Error: "Please enter both username and password"},
	})

	assert.Contains(t, body, `id="login-form"`)
	assert.Contains(t, body, "Please enter both username and password")
	assert.NotContains(t, body, "Logout")
}

func TestRenderer_DashboardWithoutWeather(t *testing.T) {
	body := render(t, MustRenderer(), PageDashboard, Page{
		Layout:  models.Layout{Title: "Dashboard"},
		Content: models.Dashboard{WeatherError: "Weather data is currently unavailable"},
	})
	assert.Contains(t, body, "Weather data is currently unavailable")
	assert.Contains(t, body, "No open tasks.")
}

func TestRenderer_UnknownPageFallsBackToNotFound(t *testing.T) {
	body := render(t, MustRenderer(), "missing", Page{})
	assert.Contains(t, body, "Not found")
}

func TestFuncs(t *testing.T) {
	label := funcs["label"].(func(any) string)
	assert.Equal(t, "Needs Attention", label(models.BedNeedsAttention))
	assert.Equal(t, "In Progress", label(models.TaskInProgress))

	date := funcs["date"].(func(time.Time) string)
	assert.Equal(t, "-", date(time.Time{}))
	assert.Equal(t, "Jun 26, 2025", date(time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC)))
}
