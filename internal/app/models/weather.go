package models

import "time"

type CurrentWeather struct {
	Time             string  `json:"time"`
	Temperature      float64 `json:"temperature"`
	RelativeHumidity float64 `json:"relativeHumidity"`
	Precipitation    float64 `json:"precipitation"`
	WindSpeed        float64 `json:"windSpeed"`
	WeatherCode      int     `json:"weatherCode"`
	Label            string  `json:"label"`
	Icon             string  `json:"icon"`
}

type WeatherForecast struct {
	Date                     string  `json:"date"`
	MaxTemp                  float64 `json:"maxTemp"`
	MinTemp                  float64 `json:"minTemp"`
	WeatherCode              int     `json:"weatherCode"`
	PrecipitationProbability float64 `json:"precipitationProbability"`
	Label                    string  `json:"label"`
	Icon                     string  `json:"icon"`
}

type WeatherData struct {
	Current   CurrentWeather    `json:"current"`
	Forecast  []WeatherForecast `json:"forecast"`
	FetchedAt time.Time         `json:"fetchedAt"`
}
