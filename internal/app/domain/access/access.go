// Package access decides whether a request may reach a view, given the
// current session. Decisions are pure functions of the rule table and the
// session; nothing here is cached between requests.
package access

import (
	"slices"

	"github.com/FACorreiaa/smart-harvest/internal/app/domain/session"
)

type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToDefaultView
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToDefaultView:
		return "redirect_default"
	default:
		return "unknown"
	}
}

// RoleSet lists the roles allowed on a view. An empty set admits any
// authenticated user.
type RoleSet []session.Role

func Roles(roles ...session.Role) RoleSet {
	return RoleSet(roles)
}

func (rs RoleSet) Contains(r session.Role) bool {
	return slices.Contains(rs, r)
}

// Authorize applies, in order: no session redirects to login, a role outside
// a non-empty required set redirects to the default view, anything else is
// allowed.
func Authorize(required RoleSet, sess *session.Session) Decision {
	if sess == nil {
		return RedirectToLogin
	}
	if len(required) > 0 && !required.Contains(sess.Role) {
		return RedirectToDefaultView
	}
	return Allow
}
