package controller

import (
	"context"
	"log/slog"

	"github.com/pumpstation/pumpstation/pkg/log"
)

// PumpState is the on/off command given to the pumps for one hour.
type PumpState int

const (
	PumpOff PumpState = 0
	PumpOn  PumpState = 1
)

// String returns the human-readable name of the state.
func (s PumpState) String() string {
	switch s {
	case PumpOff:
		return "off"
	case PumpOn:
		return "on"
	default:
		return "unknown"
	}
}

// Decision represents the result of the decision logic.
type Decision struct {
	State       PumpState
	Explanation string
}

// Controller handles the decision-making logic for the pumps.
//
// It is a single-threshold controller: the pumps run whenever the tank is below
// capacity and stop once it is full. There is no hysteresis band, so a tank
// sitting at capacity with a small demand toggles the pumps every hour.
type Controller struct {
}

// NewController creates a new Controller.
func NewController() *Controller {
	return &Controller{}
}

// Decide determines whether the pumps run for the next hour given the stored
// volume at the start of the hour.
func (c *Controller) Decide(ctx context.Context, volume, capacity float64) Decision {
	if volume < capacity {
		return Decision{
			State:       PumpOn,
			Explanation: "Tank Below Capacity",
		}
	}
	log.Ctx(ctx).DebugContext(ctx, "tank full, stopping pumps",
		slog.Float64("volume", volume),
		slog.Float64("capacity", capacity),
	)
	return Decision{
		State:       PumpOff,
		Explanation: "Tank Full",
	}
}
