package hydraulics

import (
	"math"

	"github.com/pumpstation/pumpstation/pkg/types"
)

// speed ratios below this are treated as a stopped pump
const minSpeedRatio = 1e-9

// AnalyzeVFD returns the speed needed for the pumps to deliver the total flow
// target (m³/s) against the system curve. Using the affinity laws (Q ∝ N,
// H ∝ N²) a pump at speed ratio r follows H = r²·H0 - a·q², so
// r² = (H + a·q²) / H0.
//
// The boolean is false when no speed can reach the target, which is the case
// whenever the system needs more head than the 100% speed shutoff head.
func AnalyzeVFD(cfg types.Config, curve types.PumpCurve, target float64) (types.VFDResult, bool) {
	head := SystemHead(cfg, target)
	if curve.ShutoffHead <= 0 || head > curve.ShutoffHead {
		return types.VFDResult{}, false
	}

	n := float64(cfg.PumpCount)
	perPump := target / n
	r2 := (head + curve.Curvature*perPump*perPump) / curve.ShutoffHead
	if r2 < 0 || math.IsNaN(r2) {
		return types.VFDResult{}, false
	}
	r := math.Sqrt(r2)

	// efficiency is only known on the 100% speed curve so look it up at the
	// flow that maps onto this operating point through the affinity laws
	var homologous float64
	if r >= minSpeedRatio {
		homologous = perPump / r
	}
	efficiency := Efficiency(cfg, homologous)
	powerPerPump := shaftPowerKW(perPump, head, efficiency)

	return types.VFDResult{
		SpeedRatio:      r,
		SpeedRPM:        r * cfg.PumpSpeedRPM,
		AboveRatedSpeed: r > 1,
		FlowPerPumpM3s:  perPump,
		FlowPerPumpLPS:  perPump * 1000,
		FlowPerPumpM3h:  perPump * 3600,
		TotalFlowM3s:    target,
		TotalFlowLPS:    target * 1000,
		TotalFlowM3h:    target * 3600,
		HomologousFlow:  homologous,
		HeadM:           head,
		EfficiencyPct:   efficiency * 100,
		PowerPerPumpKW:  powerPerPump,
		TotalPowerKW:    powerPerPump * n,
	}, true
}
