package session

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Role string

const (
	RoleOwner      Role = "owner"
	RoleSupervisor Role = "supervisor"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleSupervisor
}

// Label is the role as shown in the header, e.g. "Owner".
func (r Role) Label() string {
	return cases.Title(language.English).String(string(r))
}

// DeriveRole maps a username to its role. Any username containing "owner"
// under case folding is an owner, everyone else is a supervisor. This stands
// in for a real identity provider.
func DeriveRole(username string) Role {
	if strings.Contains(cases.Fold().String(username), "owner") {
		return RoleOwner
	}
	return RoleSupervisor
}

// DeriveDisplayName returns the part before the first '@', or the whole
// username when that part is empty or there is no '@'.
func DeriveDisplayName(username string) string {
	if name, _, found := strings.Cut(username, "@"); found && name != "" {
		return name
	}
	return username
}

// Session is the identity of the logged-in user on one device.
type Session struct {
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	DisplayName string `json:"name"`
}

// New builds the session for username. It is the only way to obtain a role.
// Invalid UTF-8 is replaced with U+FFFD so the session survives a JSON round
// trip unchanged.
func New(username string) Session {
	username = strings.ToValidUTF8(username, "\uFFFD")
	return Session{
		Username:    username,
		Role:        DeriveRole(username),
		DisplayName: DeriveDisplayName(username),
	}
}

func (s Session) IsOwner() bool {
	return s.Role == RoleOwner
}
