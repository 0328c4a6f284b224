// Package weather fetches forecasts from the open-meteo API for the bot's
// configured location.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const _openmeteo_domain = "https://api.open-meteo.com"

type Client struct {
	client   *http.Client
	endpoint string
	lat      float64
	lon      float64

	mu       sync.Mutex
	cacheTTL time.Duration
	cached   *Report
	fetched  time.Time
}

// New builds a client for a fixed location. A non-zero ttl enables caching
// so the scheduled jobs and the /weather command share one fetch.
func New(endpoint string, lat, lon float64, ttl time.Duration) *Client {
	if endpoint == "" {
		endpoint = _openmeteo_domain
	}
	return &Client{
		client:   http.DefaultClient,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		lat:      lat,
		lon:      lon,
		cacheTTL: ttl,
	}
}

type Report struct {
	Current struct {
		Temp2m      float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		TempMax       []float64 `json:"temperature_2m_max"`
		TempMin       []float64 `json:"temperature_2m_min"`
		PrecipProbMax []int     `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Fetch returns the current report, served from cache while it is fresh.
func (c *Client) Fetch(ctx context.Context) (*Report, error) {
	c.mu.Lock()
	if c.cached != nil && c.cacheTTL > 0 && time.Since(c.fetched) < c.cacheTTL {
		r := c.cached
		c.mu.Unlock()
		return r, nil
	}
	c.mu.Unlock()

	r, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cached = r
	c.fetched = time.Now()
	c.mu.Unlock()
	return r, nil
}

func (c *Client) fetch(ctx context.Context) (*Report, error) {
	endpoint, err := url.Parse(fmt.Sprintf("%s/v1/forecast", c.endpoint))
	if err != nil {
		return nil, err
	}
	query := endpoint.Query()
	query.Set("latitude", strconv.FormatFloat(c.lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(c.lon, 'f', -1, 64))
	query.Set("current", "temperature_2m,weather_code,wind_speed_10m")
	query.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	query.Set("forecast_days", "1")
	query.Set("timezone", "auto")
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather failed do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather response status code: %v", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DescribeRU renders the report as a short Russian line for prompts and the
// /weather command.
func (r *Report) DescribeRU() string {
	var b strings.Builder
	fmt.Fprintf(&b, "сейчас %s, %.0f°C, ветер %.0f км/ч",
		weatherCodeRU(r.Current.WeatherCode), r.Current.Temp2m, r.Current.WindSpeed)
	if len(r.Daily.TempMax) > 0 && len(r.Daily.TempMin) > 0 {
		fmt.Fprintf(&b, "; днём до %.0f°C, ночью до %.0f°C", r.Daily.TempMax[0], r.Daily.TempMin[0])
	}
	if len(r.Daily.PrecipProbMax) > 0 && r.Daily.PrecipProbMax[0] >= 30 {
		fmt.Fprintf(&b, ", вероятность осадков %d%%", r.Daily.PrecipProbMax[0])
	}
	return b.String()
}

// weatherCodeRU maps WMO weather interpretation codes to short Russian
// descriptions.
func weatherCodeRU(code int) string {
	switch {
	case code == 0:
		return "ясно"
	case code <= 2:
		return "переменная облачность"
	case code == 3:
		return "пасмурно"
	case code >= 45 && code <= 48:
		return "туман"
	case code >= 51 && code <= 57:
		return "морось"
	case code >= 61 && code <= 67:
		return "дождь"
	case code >= 71 && code <= 77:
		return "снег"
	case code >= 80 && code <= 82:
		return "ливень"
	case code >= 85 && code <= 86:
		return "снегопад"
	case code >= 95:
		return "гроза"
	default:
		return "облачно"
	}
}
