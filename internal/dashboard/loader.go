package dashboard

import (
	"context"
	"log"
	"time"

	"farmdash/internal/models"
	"farmdash/internal/weather"
)

// IDashboardLoader produces the full dashboard dataset for the current
// session scope. The container's read/mutate API does not change with the
// loader behind it.
type IDashboardLoader interface {
	Load(ctx context.Context) (*Data, error)
}

// SeedLoader serves the seed dataset after a fixed delay, standing in for
// real per-identity fetches.
type SeedLoader struct {
	Delay time.Duration
}

var _ IDashboardLoader = SeedLoader{}

func (l SeedLoader) Load(ctx context.Context) (*Data, error) {
	if l.Delay > 0 {
		select {
		case <-time.After(l.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return DefaultData(), nil
}

// LiveLoader serves the seed dataset with the weather snapshot replaced
// by live conditions at the map center.
type LiveLoader struct {
	Weather *weather.Client
	Center  models.MapCenter
}

var _ IDashboardLoader = LiveLoader{}

func (l LiveLoader) Load(ctx context.Context) (*Data, error) {
	data := DefaultData()
	if l.Center != (models.MapCenter{}) {
		data.MapCenter = l.Center
	}

	snapshot, err := l.Weather.FetchSnapshot(ctx, data.MapCenter.Lat, data.MapCenter.Lng)
	if err != nil {
		log.Printf("Error fetching live weather: %v", err)
		return nil, err
	}
	data.Weather = *snapshot
	return data, nil
}
