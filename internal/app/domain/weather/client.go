// Package weather fetches current conditions and the daily forecast for the
// farm from the Open-Meteo API.
package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/smart-harvest/internal/app/models"
	"github.com/FACorreiaa/smart-harvest/internal/app/observability/metrics"
	"github.com/FACorreiaa/smart-harvest/internal/pkg/config"
)

const (
	currentFields = "temperature_2m,relative_humidity_2m,precipitation,wind_speed_10m,weather_code"
	dailyFields   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max"
	cacheKey      = "forecast"
)

// Provider is what the dashboards need from a weather source.
type Provider interface {
	Forecast(ctx context.Context) (*models.WeatherData, error)
}

var _ Provider = (*Client)(nil)

type Client struct {
	httpClient *http.Client
	baseURL    string
	latitude   float64
	longitude  float64
	cache      *cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

func NewClient(cfg config.WeatherConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   cfg.BaseURL,
		latitude:  cfg.Latitude,
		longitude: cfg.Longitude,
		cache:     cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		cacheTTL:  cfg.CacheTTL,
		logger:    logger.With(zap.String("component", "weather")),
		tracer:    otel.Tracer("SmartHarvest/Weather"),
		now:       time.Now,
	}
}

// apiResponse is the subset of the Open-Meteo forecast payload we read.
type apiResponse struct {
	Current struct {
		Time             string  `json:"time"`
		Temperature      float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
		Precipitation    float64 `json:"precipitation"`
		WindSpeed        float64 `json:"wind_speed_10m"`
		WeatherCode      int     `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time                        []string  `json:"time"`
		WeatherCode                 []int     `json:"weather_code"`
		Temperature2mMax            []float64 `json:"temperature_2m_max"`
		Temperature2mMin            []float64 `json:"temperature_2m_min"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Forecast returns current conditions and the daily forecast, served from
// cache while fresh.
func (c *Client) Forecast(ctx context.Context) (*models.WeatherData, error) {
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.(*models.WeatherData), nil
	}

	ctx, span := c.tracer.Start(ctx, "weather.Forecast", trace.WithAttributes(
		attribute.Float64("weather.latitude", c.latitude),
		attribute.Float64("weather.longitude", c.longitude),
	))
	defer span.End()

	start := time.Now()
	data, err := c.fetch(ctx)
	m := metrics.Get()
	m.WeatherFetchDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		m.WeatherFetchErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", errorReason(err))))
		span.RecordError(err)
		span.SetStatus(codes.Error, "weather fetch failed")
		c.logger.Warn("Failed to fetch weather", zap.Error(err))
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	c.cache.Set(cacheKey, data, c.cacheTTL)
	return data, nil
}

func (c *Client) fetch(ctx context.Context) (*models.WeatherData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build weather request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "weather request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(models.ErrWeatherUnavailable, "unexpected status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode weather response")
	}

	return c.transform(payload), nil
}

func (c *Client) requestURL() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	q.Set("current", currentFields)
	q.Set("daily", dailyFields)
	q.Set("timezone", "auto")
	return c.baseURL + "?" + q.Encode()
}

func (c *Client) transform(p apiResponse) *models.WeatherData {
	label, icon := Describe(p.Current.WeatherCode)
	data := &models.WeatherData{
		Current: models.CurrentWeather{
			Time:             p.Current.Time,
			Temperature:      p.Current.Temperature,
			RelativeHumidity: p.Current.RelativeHumidity,
			Precipitation:    p.Current.Precipitation,
			WindSpeed:        p.Current.WindSpeed,
			WeatherCode:      p.Current.WeatherCode,
			Label:            label,
			Icon:             icon,
		},
		FetchedAt: c.now(),
	}

	// Open-Meteo returns parallel arrays; stop at the shortest one.
	d := p.Daily
	n := min(len(d.Time), len(d.WeatherCode), len(d.Temperature2mMax), len(d.Temperature2mMin))
	data.Forecast = make([]models.WeatherForecast, 0, n)
	for i := 0; i < n; i++ {
		label, icon := Describe(d.WeatherCode[i])
		f := models.WeatherForecast{
			Date:        d.Time[i],
			MaxTemp:     d.Temperature2mMax[i],
			MinTemp:     d.Temperature2mMin[i],
			WeatherCode: d.WeatherCode[i],
			Label:       label,
			Icon:        icon,
		}
		if i < len(d.PrecipitationProbabilityMax) {
			f.PrecipitationProbability = d.PrecipitationProbabilityMax[i]
		}
		data.Forecast = append(data.Forecast, f)
	}
	return data
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, models.ErrWeatherUnavailable):
		return "status"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "other"
	}
}
