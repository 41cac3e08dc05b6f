package config

import "os"

type FarmDashConfig struct {
	BackendCfg BackendConfig
	StorageCfg StorageConfig
	WeatherCfg WeatherConfig
	MapCfg     MapConfig
}

type BackendConfig struct {
	URL    string
	APIKey string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Location  string
	Secure    string
}

type WeatherConfig struct {
	APIKey string
	Units  string
}

type MapConfig struct {
	APIKey string
}

func New() *FarmDashConfig {
	return &FarmDashConfig{
		BackendCfg: BackendConfig{
			URL:    os.Getenv("FARMDASH_BACKEND_URL"),
			APIKey: os.Getenv("FARMDASH_BACKEND_API_KEY"),
		},
		StorageCfg: StorageConfig{
			Endpoint:  os.Getenv("MINIO_URL"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnvOrDefault("MINIO_AVATAR_BUCKET", "farmdash-avatars"),
			Location:  getEnvOrDefault("MINIO_LOCATION", "us-east-1"),
			Secure:    os.Getenv("MINIO_SECURE"),
		},
		WeatherCfg: WeatherConfig{
			APIKey: os.Getenv("OPENWEATHER_API_KEY"),
			Units:  getEnvOrDefault("OPENWEATHER_UNITS", "metric"),
		},
		MapCfg: MapConfig{
			APIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		},
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
