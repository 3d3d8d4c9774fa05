package models

type User struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	RoleLabel string `json:"roleLabel"`
}

type NavItem struct {
	Name string
	URL  string
}

type Navigation struct {
	Items []NavItem
}

// Layout is the chrome shared by every page.
type Layout struct {
	Title     string
	User      *User
	Nav       Navigation
	ActiveNav string
	Flash     string
}

var MainNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/dashboard"},
		{Name: "Task List", URL: "/tasks"},
		{Name: "Fertilizer Plans", URL: "/fertilizer-plans"},
		{Name: "Weather", URL: "/weather"},
	},
}

var OfflineNav = Navigation{
	Items: []NavItem{
		{Name: "Farm login", URL: "/farm-user/login"},
		{Name: "Client login", URL: "/client-user/login"},
	},
}

// NavFor returns the main navigation, without Fertilizer Plans for owners.
func NavFor(owner bool) Navigation {
	if !owner {
		return MainNav
	}
	items := make([]NavItem, 0, len(MainNav.Items))
	for _, item := range MainNav.Items {
		if item.URL == "/fertilizer-plans" {
			continue
		}
		items = append(items, item)
	}
	return Navigation{Items: items}
}
