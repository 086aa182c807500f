package types

import "time"

// PumpCurve is the quadratic approximation H(q) = ShutoffHead - Curvature*q²
// for a single pump at 100% speed.
type PumpCurve struct {
	ShutoffHead float64 `json:"shutoffHead"`
	Curvature   float64 `json:"curvature"`
}

// OperatingPoint is where the pump curve meets the system curve.
type OperatingPoint struct {
	FlowPerPump    float64 `json:"flowPerPump"` // m³/s
	TotalFlow      float64 `json:"totalFlow"`   // m³/s, FlowPerPump * pump count
	Head           float64 `json:"head"`        // m
	Efficiency     float64 `json:"efficiency"`  // 0-1
	PowerPerPumpKW float64 `json:"powerPerPumpKW"`
}

// Reservoir holds the storage tank dimensions.
type Reservoir struct {
	CapacityM3      float64 `json:"capacityM3"`
	ActiveStorageM3 float64 `json:"activeStorageM3"`
	InitialVolumeM3 float64 `json:"initialVolumeM3"`
	// Sized is false when the capacity was fixed by the configuration.
	Sized bool `json:"sized"`
}

// SimHour represents one simulated hour of tank state.
type SimHour struct {
	Hour      int     `json:"hour"`
	HourOfDay int     `json:"hourOfDay"`
	DemandM3s float64 `json:"demandM3s"`
	SupplyM3s float64 `json:"supplyM3s"`
	PumpOn    bool    `json:"pumpOn"`
	// VolumeM3 is the stored volume at the end of the hour.
	VolumeM3 float64 `json:"volumeM3"`
	// Level is VolumeM3 as a fraction of capacity.
	Level    float64 `json:"level"`
	HitEmpty bool    `json:"hitEmpty"`
	HitFull  bool    `json:"hitFull"`
}

// SimulationTrace is the output of one forward pass of the tank simulation.
// Volume has one more sample than Demand and PumpOn (the initial volume).
type SimulationTrace struct {
	Volume []float64 `json:"volume"`
	Demand []float64 `json:"demand"`
	PumpOn []bool    `json:"pumpOn"`
	Hours  []SimHour `json:"hours"`
}

// Clone returns a deep copy so callers can't mutate cached results.
func (t SimulationTrace) Clone() SimulationTrace {
	return SimulationTrace{
		Volume: append([]float64(nil), t.Volume...),
		Demand: append([]float64(nil), t.Demand...),
		PumpOn: append([]bool(nil), t.PumpOn...),
		Hours:  append([]SimHour(nil), t.Hours...),
	}
}

// CostSummary is the energy cost of a simulated duty cycle.
type CostSummary struct {
	HourlyCost          []float64 `json:"hourlyCost"`
	TotalCost           float64   `json:"totalCost"`
	TotalVolumePumpedM3 float64   `json:"totalVolumePumpedM3"`
	CostPerM3           float64   `json:"costPerM3"`
	RunningPowerKW      float64   `json:"runningPowerKW"`
	EnergyKWH           float64   `json:"energyKWH"`
	OnHours             int       `json:"onHours"`
	DutyCycle           float64   `json:"dutyCycle"`  // fraction of hours the pumps ran
	PumpStarts          int       `json:"pumpStarts"` // OFF to ON transitions
}

// Clone returns a deep copy so callers can't mutate cached results.
func (c CostSummary) Clone() CostSummary {
	c.HourlyCost = append([]float64(nil), c.HourlyCost...)
	return c
}

// VFDResult describes running the pumps below (or above) 100% speed to hit a
// target flow.
type VFDResult struct {
	SpeedRatio float64 `json:"speedRatio"`
	SpeedRPM   float64 `json:"speedRPM"`
	// AboveRatedSpeed is set when the ratio exceeds 1.0.
	AboveRatedSpeed bool `json:"aboveRatedSpeed"`

	FlowPerPumpM3s float64 `json:"flowPerPumpM3s"`
	FlowPerPumpLPS float64 `json:"flowPerPumpLPS"`
	FlowPerPumpM3h float64 `json:"flowPerPumpM3h"`
	TotalFlowM3s   float64 `json:"totalFlowM3s"`
	TotalFlowLPS   float64 `json:"totalFlowLPS"`
	TotalFlowM3h   float64 `json:"totalFlowM3h"`
	// HomologousFlow is the per-pump flow at 100% speed on the same affinity
	// parabola (m³/s). Efficiency is evaluated there.
	HomologousFlow float64 `json:"homologousFlow"`

	HeadM          float64 `json:"headM"`
	EfficiencyPct  float64 `json:"efficiencyPct"`
	PowerPerPumpKW float64 `json:"powerPerPumpKW"`
	TotalPowerKW   float64 `json:"totalPowerKW"`
}

// CurvePoint is one sample of the station curves, used for charting.
type CurvePoint struct {
	// Flow is per pump (m³/s). SystemHead is evaluated at the matching total
	// flow of all pumps.
	Flow       float64 `json:"flow"`
	SystemHead float64 `json:"systemHead"`
	PumpHead   float64 `json:"pumpHead"`
	Efficiency float64 `json:"efficiency"`
	PowerKW    float64 `json:"powerKW"`
}

// Report is a snapshot of every output of an evaluated station.
type Report struct {
	Config         Config          `json:"config"`
	PumpCurve      PumpCurve       `json:"pumpCurve"`
	OperatingPoint OperatingPoint  `json:"operatingPoint"`
	Reservoir      Reservoir       `json:"reservoir"`
	Trace          SimulationTrace `json:"trace"`
	Costs          CostSummary     `json:"costs"`
	// TotalCostRounded and CostPerM3Rounded are the currency figures rounded
	// for display.
	TotalCostRounded string `json:"totalCostRounded"`
	CostPerM3Rounded string `json:"costPerM3Rounded"`
}

// Scenario is a named configuration saved for later evaluation.
type Scenario struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Config    Config    `json:"config"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
