package models

// LoginForm backs the login page.
type LoginForm struct {
	Portal   string `json:"portal"`
	Action   string `json:"action"`
	From     string `json:"from,omitempty"`
	Username string `json:"username,omitempty"`
	Error    string `json:"error,omitempty"`
}

type TaskList struct {
	Tasks      []Task         `json:"tasks"`
	Filter     TaskFilter     `json:"filter"`
	Beds       []Bed          `json:"-"`
	Statuses   []TaskStatus   `json:"-"`
	Priorities []TaskPriority `json:"-"`
}

type BedDetail struct {
	Bed      Bed             `json:"bed"`
	Tasks    []Task          `json:"tasks"`
	Timeline []TimelineEvent `json:"timeline"`
}

type WeatherPage struct {
	Weather *WeatherData `json:"weather,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type ErrorPage struct {
	Message string `json:"error"`
}
