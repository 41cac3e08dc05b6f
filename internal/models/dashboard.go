package models

// CropCard is one dashboard summary tile for a crop's production metric.
// The id is caller-supplied and must be unique within the collection;
// ids sort by creation order (a unix-nano timestamp works).
type CropCard struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Progress    int     `json:"progress"` // 0-100
	ColorScheme string  `json:"color_scheme"`
}

// CropPatch is a partial crop update; nil fields keep their current value.
type CropPatch struct {
	Title       *string  `json:"title,omitempty"`
	Subtitle    *string  `json:"subtitle,omitempty"`
	Value       *float64 `json:"value,omitempty"`
	Unit        *string  `json:"unit,omitempty"`
	Progress    *int     `json:"progress,omitempty"`
	ColorScheme *string  `json:"color_scheme,omitempty"`
}

// Apply merges the patch into dst.
func (p CropPatch) Apply(dst *CropCard) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Subtitle != nil {
		dst.Subtitle = *p.Subtitle
	}
	if p.Value != nil {
		dst.Value = *p.Value
	}
	if p.Unit != nil {
		dst.Unit = *p.Unit
	}
	if p.Progress != nil {
		dst.Progress = *p.Progress
	}
	if p.ColorScheme != nil {
		dst.ColorScheme = *p.ColorScheme
	}
}

// ForecastEntry is one day of the five-day outlook.
type ForecastEntry struct {
	Day       string  `json:"day"`
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
}

// WeatherSnapshot is the current conditions plus a five-entry forecast.
// Snapshots are replaced wholesale on refresh, never partially mutated.
type WeatherSnapshot struct {
	Temperature float64         `json:"temperature"`
	Condition   string          `json:"condition"`
	IconType    string          `json:"icon_type"`
	BgColor     string          `json:"bg_color"`
	Forecast    []ForecastEntry `json:"forecast"`
}

// NutrientReading is a single soil-nutrient gauge.
type NutrientReading struct {
	ID      int    `json:"id"`
	Icon    string `json:"icon"`
	Label   string `json:"label"`
	BgColor string `json:"bg_color"`
	Value   int    `json:"value"` // percent, 0-100
}

// CostItem is one harvesting cost category. Amount is non-negative.
type CostItem struct {
	ID       int     `json:"id"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Color    string  `json:"color"`
}

// ChartPoint is one month's worth of production series for the predictive
// analysis chart. Sequence order is display order.
type ChartPoint struct {
	Month string  `json:"month"`
	Wheat float64 `json:"wheat"`
	Corn  float64 `json:"corn"`
	Rice  float64 `json:"rice"`
}

// MapCenter is the lat/lng the farm map is centered on.
type MapCenter struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
