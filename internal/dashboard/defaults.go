package dashboard

import "farmdash/internal/models"

// Data is everything the dashboard shows for one session scope. A loader
// produces it as a unit; the container owns it afterwards.
type Data struct {
	Crops     []models.CropCard
	Weather   models.WeatherSnapshot
	Nutrients []models.NutrientReading
	Costs     []models.CostItem
	Chart     []models.ChartPoint
	MapCenter models.MapCenter
}

// DefaultData is the seed dataset the container falls back to whenever a
// load fails, so the view is never left with nothing to render.
func DefaultData() *Data {
	return &Data{
		Crops: []models.CropCard{
			{
				ID:          1,
				Title:       "Wheat",
				Subtitle:    "Total Production",
				Value:       125,
				Unit:        "Tons",
				Progress:    5,
				ColorScheme: "green",
			},
		},
		Weather: models.WeatherSnapshot{
			Temperature: 25,
			Condition:   "Sunny",
			IconType:    "sunny",
			BgColor:     "green.100",
			Forecast: []models.ForecastEntry{
				{Day: "Mon", Temp: 24, Condition: "sunny"},
				{Day: "Tue", Temp: 22, Condition: "cloudy"},
				{Day: "Wed", Temp: 19, Condition: "rainy"},
				{Day: "Thu", Temp: 20, Condition: "cloudy"},
				{Day: "Fri", Temp: 23, Condition: "sunny"},
			},
		},
		Nutrients: []models.NutrientReading{
			{ID: 1, Icon: "/assets/potassium.png", Label: "Potassium Levels", BgColor: "yellow.100", Value: 40},
			{ID: 2, Icon: "/assets/calcium.png", Label: "Calcium Levels", BgColor: "pink.100", Value: 40},
			{ID: 3, Icon: "/assets/nitrogen.png", Label: "Nitrogen Levels", BgColor: "purple.100", Value: 40},
		},
		Costs: []models.CostItem{
			{ID: 1, Category: "Irrigation", Amount: 4500, Color: "#67e8f9"},
			{ID: 2, Category: "Fertilizers", Amount: 3500, Color: "#2dd4bf"},
			{ID: 3, Category: "Labor", Amount: 5500, Color: "#c084fc"},
			{ID: 4, Category: "Equipment", Amount: 2800, Color: "#5eead4"},
		},
		Chart: []models.ChartPoint{
			{Month: "January", Wheat: 186, Corn: 80, Rice: 120},
			{Month: "February", Wheat: 165, Corn: 95, Rice: 110},
			{Month: "March", Wheat: 190, Corn: 87, Rice: 125},
			{Month: "May", Wheat: 195, Corn: 88, Rice: 130},
			{Month: "June", Wheat: 182, Corn: 98, Rice: 122},
			{Month: "August", Wheat: 175, Corn: 90, Rice: 115},
			{Month: "October", Wheat: 180, Corn: 86, Rice: 124},
			{Month: "November", Wheat: 185, Corn: 91, Rice: 126},
		},
		MapCenter: models.MapCenter{Lat: 40.7128, Lng: -74.0060},
	}
}
