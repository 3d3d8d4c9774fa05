package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/session"
)

func sessionFor(username string) *session.Session {
	s := session.New(username)
	return &s
}

func TestAuthorize(t *testing.T) {
	owner := sessionFor("owner@farm.com")
	supervisor := sessionFor("alice")

	tests := []struct {
		name     string
		required RoleSet
		sess     *session.Session
		want     Decision
	}{
		{"no roles no session", nil, nil, RedirectToLogin},
		{"roles no session", Roles(session.RoleOwner), nil, RedirectToLogin},
		{"supervisor view owner", Roles(session.RoleSupervisor), owner, RedirectToDefaultView},
		{"supervisor view supervisor", Roles(session.RoleSupervisor), supervisor, Allow},
		{"owner view owner", Roles(session.RoleOwner), owner, Allow},
		{"owner view alice", Roles(session.RoleOwner), supervisor, RedirectToDefaultView},
		{"any role owner", nil, owner, Allow},
		{"empty set supervisor", RoleSet{}, supervisor, Allow},
		{"both roles", Roles(session.RoleOwner, session.RoleSupervisor), supervisor, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.required, tt.sess))
		})
	}
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect_login", RedirectToLogin.String())
	assert.Equal(t, "redirect_default", RedirectToDefaultView.String())
	assert.Equal(t, "unknown", Decision(42).String())
}

func TestTable_Match(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		found   bool
	}{
		{"/dashboard", "/dashboard", true},
		{"/dashboard/", "/dashboard", true},
		{"/beds/bed-001", "/beds/:bedId", true},
		{"/beds/", "", false},
		{"/beds/bed-001/extra", "", false},
		{"/farm-user/login", "/farm-user/login", true},
		{"/client-user/farms/3", "/client-user/farms/:id", true},
		{"/end-user/portal", "/end-user/portal", true},
		{"/unknown", "", false},
		{"/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rule, ok := DefaultTable.Match(tt.path)
			require.Equal(t, tt.found, ok)
			assert.Equal(t, tt.pattern, rule.Pattern)
		})
	}
}

func TestTable_FirstMatchWins(t *testing.T) {
	table := Table{
		{Pattern: "/beds/special", Public: true},
		{Pattern: "/beds/:bedId"},
	}

	rule, ok := table.Match("/beds/special")
	require.True(t, ok)
	assert.True(t, rule.Public)

	rule, ok = table.Match("/beds/other")
	require.True(t, ok)
	assert.False(t, rule.Public)
}

func TestTable_Resolve(t *testing.T) {
	owner := sessionFor("owner@farm.com")
	supervisor := sessionFor("alice")

	tests := []struct {
		name     string
		target   string
		sess     *session.Session
		decision Decision
		location string
	}{
		{"public login anonymous", "/login", nil, Allow, ""},
		{"public login owner", "/farm-user/login", owner, Allow, ""},
		{"unknown path anonymous", "/healthz", nil, Allow, ""},
		{"dashboard anonymous", "/dashboard", nil, RedirectToLogin, "/farm-user/login?from=%2Fdashboard"},
		{"tasks anonymous keeps query", "/tasks?status=pending", nil, RedirectToLogin, "/farm-user/login?from=%2Ftasks%3Fstatus%3Dpending"},
		{"dashboard owner swaps", "/dashboard", owner, Allow, "/owner-dashboard"},
		{"dashboard supervisor", "/dashboard", supervisor, Allow, ""},
		{"owner dashboard owner", "/owner-dashboard", owner, Allow, ""},
		{"owner dashboard supervisor", "/owner-dashboard", supervisor, RedirectToDefaultView, "/dashboard"},
		{"fertilizer supervisor", "/fertilizer-plans", supervisor, Allow, ""},
		{"fertilizer owner", "/fertilizer-plans", owner, RedirectToDefaultView, "/owner-dashboard"},
		{"bed owner", "/beds/bed-002", owner, Allow, ""},
		{"supervisor dashboard owner", "/supervisor-dashboard", owner, Allow, ""},
		{"start anonymous", "/start", nil, Allow, ""},
		{"register anonymous", "/client-user/register", nil, Allow, ""},
		{"end user portal anonymous", "/end-user/portal?code=SH-1001", nil, Allow, ""},
		{"client dashboard anonymous", "/client-user/dashboard", nil, RedirectToLogin, "/client-user/login?from=%2Fclient-user%2Fdashboard"},
		{"client farm anonymous", "/client-user/farms/1", nil, RedirectToLogin, "/client-user/login?from=%2Fclient-user%2Ffarms%2F1"},
		{"client dashboard supervisor", "/client-user/dashboard", supervisor, Allow, ""},
		{"client farm owner", "/client-user/farms/2", owner, Allow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultTable.Resolve(tt.target, tt.sess)
			assert.Equal(t, tt.decision, got.Decision)
			assert.Equal(t, tt.location, got.Location)
			assert.Equal(t, tt.location != "", got.Redirects())
		})
	}
}

func TestScenario_OwnerLogsIn(t *testing.T) {
	owner := sessionFor("owner@farm.com")

	assert.Equal(t, session.RoleOwner, owner.Role)
	assert.Equal(t, "owner", owner.DisplayName)
	assert.Equal(t, Allow, Authorize(Roles(session.RoleOwner), owner))
	assert.Equal(t, "/owner-dashboard", DefaultTable.Resolve("/dashboard", owner).Location)
}

func TestScenario_SupervisorDeniedOwnerView(t *testing.T) {
	alice := sessionFor("alice")

	assert.Equal(t, session.RoleSupervisor, alice.Role)
	assert.Equal(t, "alice", alice.DisplayName)
	assert.Equal(t, RedirectToDefaultView, Authorize(Roles(session.RoleOwner), alice))
}

func TestSafeReturn(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"", "/dashboard"},
		{"/tasks?status=pending", "/tasks?status=pending"},
		{"/beds/bed-001", "/beds/bed-001"},
		{"https://evil.example", "/dashboard"},
		{"//evil.example/x", "/dashboard"},
		{"/\\evil.example", "/dashboard"},
		{"tasks", "/dashboard"},
		{"/login", "/dashboard"},
		{"/farm-user/login?from=%2Ftasks", "/dashboard"},
		{"/client-user/register", "/dashboard"},
		{"/client-user/farms/1", "/client-user/farms/1"},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeReturn(tt.from, "/dashboard"))
		})
	}
}

func TestTable_Resolve_RuleLoginOverride(t *testing.T) {
	table := Table{
		{Pattern: "/partners", Login: "/partners/login"},
		{Pattern: "/other"},
	}

	got := table.Resolve("/partners?tab=open", nil)
	assert.Equal(t, RedirectToLogin, got.Decision)
	assert.Equal(t, "/partners/login?from=%2Fpartners%3Ftab%3Dopen", got.Location)

	got = table.Resolve("/other", nil)
	assert.Equal(t, "/farm-user/login?from=%2Fother", got.Location)
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/farm-user/login", LoginRedirect(""))
	assert.Equal(t, "/farm-user/login?from=%2Fweather", LoginRedirect("/weather"))
}
