package dashboard

import (
	"context"
	"sync"

	"farmdash/internal/event"
	"farmdash/internal/models"
)

// Container holds every dashboard entity for one authenticated session
// scope and exposes read access plus a small mutation API. It is seeded
// with the default dataset on construction, so a failed load still leaves
// the view something to render.
type Container struct {
	loader   IDashboardLoader
	notifier event.INotifier

	mu        sync.RWMutex
	crops     []models.CropCard
	weather   models.WeatherSnapshot
	nutrients []models.NutrientReading
	costs     []models.CostItem
	chart     []models.ChartPoint
	mapCenter models.MapCenter
	selected  *models.CropCard
	loading   bool
	lastError string
}

func NewContainer(loader IDashboardLoader, notifier event.INotifier) *Container {
	c := &Container{
		loader:   loader,
		notifier: notifier,
		loading:  true,
	}
	c.apply(DefaultData())
	return c
}

// Load runs the initial population. The loading flag is cleared on every
// outcome, and exactly one notification is raised.
func (c *Container) Load(ctx context.Context) {
	c.reload(ctx,
		event.Success("Dashboard loaded", "All data has been successfully retrieved"),
		"Error loading dashboard",
	)
}

// RefreshDashboard re-enters the loading state and reloads every entity
// collection. Two overlapping refreshes race benignly: the loading flag
// ends up false either way and the last load to resolve determines
// visible state.
func (c *Container) RefreshDashboard(ctx context.Context) {
	c.reload(ctx,
		event.Success("Dashboard refreshed", "All data has been updated"),
		"Error refreshing dashboard",
	)
}

func (c *Container) reload(ctx context.Context, onSuccess event.Notification, errorTitle string) {
	c.mu.Lock()
	c.loading = true
	c.lastError = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	data, err := c.loader.Load(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastError = err.Error()
		c.mu.Unlock()
		c.notifier.Publish(event.Error(errorTitle, err.Error()))
		return
	}

	c.apply(data)
	c.notifier.Publish(onSuccess)
}

// apply replaces every entity collection wholesale and points the
// selection at the first crop.
func (c *Container) apply(data *Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crops = data.Crops
	c.weather = data.Weather
	c.nutrients = data.Nutrients
	c.costs = data.Costs
	c.chart = data.Chart
	c.mapCenter = data.MapCenter
	if len(data.Crops) > 0 {
		selected := data.Crops[0]
		c.selected = &selected
	} else {
		c.selected = nil
	}
}

// AddCrop appends a crop card and returns the new collection. Id
// uniqueness is the caller's responsibility; the container does not
// validate it.
func (c *Container) AddCrop(crop models.CropCard) []models.CropCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crops = append(c.crops, crop)
	return snapshotCrops(c.crops)
}

// UpdateCrop shallow-merges the patch into the crop with the given id and
// returns the collection. Unknown ids are a no-op. When the selected crop
// is the one updated, the selection gets the same merge so it stays
// consistent with the collection.
func (c *Container) UpdateCrop(id int64, patch models.CropPatch) []models.CropCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.crops {
		if c.crops[i].ID == id {
			patch.Apply(&c.crops[i])
			break
		}
	}
	if c.selected != nil && c.selected.ID == id {
		patch.Apply(c.selected)
	}
	return snapshotCrops(c.crops)
}

// SetSelectedCrop sets the selection directly. The caller must pass a
// crop currently present in the collection; membership is not verified.
func (c *Container) SetSelectedCrop(crop models.CropCard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &crop
}

// SetMapCenter repositions the farm map.
func (c *Container) SetMapCenter(center models.MapCenter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mapCenter = center
}

// CropByID returns the crop with the given id, or nil.
func (c *Container) CropByID(id int64) *models.CropCard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.crops {
		if c.crops[i].ID == id {
			crop := c.crops[i]
			return &crop
		}
	}
	return nil
}

// Crops returns a snapshot of the crop collection.
func (c *Container) Crops() []models.CropCard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshotCrops(c.crops)
}

// SelectedCrop returns a copy of the current selection, or nil when
// unset.
func (c *Container) SelectedCrop() *models.CropCard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return nil
	}
	selected := *c.selected
	return &selected
}

// Weather returns the current weather snapshot.
func (c *Container) Weather() models.WeatherSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weather
}

// Nutrients returns the soil nutrient readings.
func (c *Container) Nutrients() []models.NutrientReading {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.NutrientReading, len(c.nutrients))
	copy(out, c.nutrients)
	return out
}

// Costs returns the harvesting cost breakdown.
func (c *Container) Costs() []models.CostItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CostItem, len(c.costs))
	copy(out, c.costs)
	return out
}

// CostTotal is the sum of all cost amounts, recomputed on demand.
func (c *Container) CostTotal() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total float64
	for _, item := range c.costs {
		total += item.Amount
	}
	return total
}

// Chart returns the predictive-analysis series in display order.
func (c *Container) Chart() []models.ChartPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ChartPoint, len(c.chart))
	copy(out, c.chart)
	return out
}

// MapCenter returns the current map center.
func (c *Container) MapCenter() models.MapCenter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mapCenter
}

// Loading reports whether a load or refresh is in flight.
func (c *Container) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the message of the last failed load, empty when the last
// load succeeded.
func (c *Container) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func snapshotCrops(crops []models.CropCard) []models.CropCard {
	out := make([]models.CropCard, len(crops))
	copy(out, crops)
	return out
}
