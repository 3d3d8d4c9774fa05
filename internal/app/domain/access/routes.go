package access

import (
	"net/url"
	"strings"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/session"
)

const (
	LoginPath           = "/farm-user/login"
	DefaultViewPath     = "/dashboard"
	OwnerDashboardPath  = "/owner-dashboard"
	ClientLoginPath     = "/client-user/login"
	ClientDashboardPath = "/client-user/dashboard"
)

// Rule guards every path matching Pattern. Pattern segments starting with
// ':' match any single non-empty segment. Login overrides LoginPath for
// anonymous requests.
type Rule struct {
	Pattern string
	Roles   RoleSet
	Public  bool
	Login   string
}

func (r Rule) matches(path string) bool {
	want := splitPath(r.Pattern)
	got := splitPath(path)
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// Table is evaluated top to bottom; the first matching rule wins.
type Table []Rule

// DefaultTable is the dashboard's route table.
var DefaultTable = Table{
	{Pattern: "/login", Public: true},
	{Pattern: "/farm-user/login", Public: true},
	{Pattern: ClientLoginPath, Public: true},
	{Pattern: "/client-user/register", Public: true},
	{Pattern: "/start", Public: true},
	{Pattern: "/end-user/portal", Public: true},
	{Pattern: ClientDashboardPath, Login: ClientLoginPath},
	{Pattern: "/client-user/farms/:id", Login: ClientLoginPath},
	{Pattern: "/dashboard"},
	{Pattern: "/owner-dashboard", Roles: Roles(session.RoleOwner)},
	{Pattern: "/supervisor-dashboard"},
	{Pattern: "/tasks"},
	{Pattern: "/fertilizer-plans", Roles: Roles(session.RoleSupervisor)},
	{Pattern: "/beds/:bedId"},
	{Pattern: "/weather"},
	{Pattern: "/logout"},
}

func (t Table) Match(path string) (Rule, bool) {
	for _, r := range t {
		if r.matches(path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Outcome is the guard's verdict for one request. Location is empty when the
// request proceeds unchanged.
type Outcome struct {
	Decision Decision
	Location string
}

func (o Outcome) Redirects() bool {
	return o.Location != ""
}

// Resolve decides what happens to a request for target, a request URI that
// may carry a query string. Public and unknown paths always proceed.
func (t Table) Resolve(target string, sess *session.Session) Outcome {
	path, _, _ := strings.Cut(target, "?")

	rule, ok := t.Match(path)
	if !ok || rule.Public {
		return Outcome{Decision: Allow}
	}

	switch d := Authorize(rule.Roles, sess); d {
	case RedirectToLogin:
		if rule.Login != "" {
			return Outcome{Decision: d, Location: loginRedirect(rule.Login, target)}
		}
		return Outcome{Decision: d, Location: LoginRedirect(target)}
	case RedirectToDefaultView:
		return Outcome{Decision: d, Location: DefaultView(sess)}
	default:
		if sess.IsOwner() && strings.TrimSuffix(path, "/") == DefaultViewPath {
			return Outcome{Decision: d, Location: OwnerDashboardPath}
		}
		return Outcome{Decision: d}
	}
}

// DefaultView is the landing view for sess, following the owner swap.
func DefaultView(sess *session.Session) string {
	if sess != nil && sess.IsOwner() {
		return OwnerDashboardPath
	}
	return DefaultViewPath
}

// LoginRedirect is the login location remembering where the user was going.
func LoginRedirect(from string) string {
	return loginRedirect(LoginPath, from)
}

func loginRedirect(login, from string) string {
	if from == "" {
		return login
	}
	return login + "?" + url.Values{"from": {from}}.Encode()
}

// SafeReturn returns from when it is a local path, otherwise fallback.
func SafeReturn(from, fallback string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return fallback
	}
	u, err := url.Parse(from)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	if rule, ok := DefaultTable.Match(u.Path); ok && rule.Public {
		return fallback
	}
	return from
}
