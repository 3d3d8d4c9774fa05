package models

import "errors"

// Domain specific errors for farm data and upstream services.
var (
	ErrNotFound           = errors.New("requested item not found")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("already exists")
	ErrForbidden          = errors.New("access not granted")
	ErrWeatherUnavailable = errors.New("weather data unavailable")
)
