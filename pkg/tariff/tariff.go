// Package tariff prices electricity for each simulated hour.
package tariff

import (
	"github.com/pumpstation/pumpstation/pkg/types"
)

// Schedule returns the electricity price (currency per kWh) for an hour of the
// day in [0, 24).
type Schedule interface {
	PriceAt(hourOfDay int) float64
}

// Flat charges the same price every hour.
type Flat float64

// PriceAt implements Schedule.
func (f Flat) PriceAt(int) float64 {
	return float64(f)
}

// TimeOfUse charges by hour-of-day periods. Hours covered by more than one
// period pay the sum and hours covered by none are free.
type TimeOfUse struct {
	periods []types.TariffPeriod
}

// NewTimeOfUse copies the periods into a new schedule.
func NewTimeOfUse(periods []types.TariffPeriod) *TimeOfUse {
	return &TimeOfUse{periods: append([]types.TariffPeriod(nil), periods...)}
}

// PriceAt implements Schedule.
func (t *TimeOfUse) PriceAt(hourOfDay int) float64 {
	hourOfDay %= types.HoursPerDay
	if hourOfDay < 0 {
		hourOfDay += types.HoursPerDay
	}
	var price float64
	for _, p := range t.periods {
		if p.Contains(hourOfDay) {
			price += p.CostPerKWH
		}
	}
	return price
}

// FromConfig returns the time-of-use schedule when periods are configured and
// the flat electricity cost otherwise.
func FromConfig(cfg types.Config) Schedule {
	if len(cfg.TariffPeriods) > 0 {
		return NewTimeOfUse(cfg.TariffPeriods)
	}
	return Flat(cfg.ElectricityCost)
}

// Hourly returns the price for each of the first hours of the simulation,
// which starts at midnight.
func Hourly(s Schedule, hours int) []float64 {
	prices := make([]float64, hours)
	for h := range prices {
		prices[h] = s.PriceAt(h % types.HoursPerDay)
	}
	return prices
}
