package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"farmdash/internal/config"
	"farmdash/internal/models"
)

const oneCallURL = "https://api.openweathermap.org/data/3.0/onecall"

// Client fetches current conditions and the daily outlook from the
// OpenWeatherMap One Call API.
type Client struct {
	apiKey  string
	units   string
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.WeatherConfig) *Client {
	units := cfg.Units
	if units == "" {
		units = "metric"
	}
	return &Client{
		apiKey:  cfg.APIKey,
		units:   units,
		baseURL: oneCallURL,
		client:  &http.Client{},
	}
}

type oneCallResponse struct {
	Current struct {
		Temp    float64 `json:"temp"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"current"`
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Day float64 `json:"day"`
		} `json:"temp"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"daily"`
}

// FetchSnapshot builds a dashboard weather snapshot for the given
// coordinates: current conditions plus the next five days.
func (c *Client) FetchSnapshot(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	if c.apiKey == "" {
		log.Println("Weather API key not configured")
		return nil, fmt.Errorf("API key not configured")
	}

	url := fmt.Sprintf("%s?lat=%f&lon=%f&appid=%s&units=%s&exclude=minutely,hourly,alerts",
		c.baseURL, lat, lon, c.apiKey, c.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("Error fetching weather data: %v", err)
		return nil, fmt.Errorf("failed to call weather API")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading weather response body: %v", err)
		return nil, fmt.Errorf("failed to read weather response")
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Weather API returned non-200 status: %d, body: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("weather API error")
	}

	var payload oneCallResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Println("Error unmarshaling weather JSON:", err)
		return nil, fmt.Errorf("failed to parse weather JSON")
	}

	return snapshotFromOneCall(&payload)
}

// The dashboard shows exactly five forecast entries; daily[0] is today,
// so tomorrow onward fills the outlook.
func snapshotFromOneCall(payload *oneCallResponse) (*models.WeatherSnapshot, error) {
	if len(payload.Daily) < 6 {
		return nil, fmt.Errorf("weather API returned %d daily entries, need 6", len(payload.Daily))
	}

	condition := ""
	if len(payload.Current.Weather) > 0 {
		condition = payload.Current.Weather[0].Main
	}
	icon, bgColor := conditionStyle(condition)

	snapshot := &models.WeatherSnapshot{
		Temperature: payload.Current.Temp,
		Condition:   condition,
		IconType:    icon,
		BgColor:     bgColor,
	}

	for _, day := range payload.Daily[1:6] {
		dayCondition := ""
		if len(day.Weather) > 0 {
			dayCondition = day.Weather[0].Main
		}
		dayIcon, _ := conditionStyle(dayCondition)
		snapshot.Forecast = append(snapshot.Forecast, models.ForecastEntry{
			Day:       time.Unix(day.Dt, 0).UTC().Format("Mon"),
			Temp:      day.Temp.Day,
			Condition: dayIcon,
		})
	}
	return snapshot, nil
}

// conditionStyle maps an API condition label onto the dashboard's icon
// category and card background tag.
func conditionStyle(condition string) (icon, bgColor string) {
	switch condition {
	case "Clear":
		return "sunny", "green.100"
	case "Rain", "Drizzle", "Thunderstorm":
		return "rainy", "blue.100"
	case "Snow":
		return "snowy", "gray.100"
	default:
		return "cloudy", "gray.100"
	}
}
