package scenario

import (
	"time"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
)

// podStatusFlipThreshold is the progress fraction at which a failing pod's
// status tags flip. The flip point is fixed at 83% of the scenario duration
// and is deliberately independent of where the voltage ramp crosses any
// operational limit.
//
//nolint:gochecknoglobals // Addressable so definitions can reference it.
var podStatusFlipThreshold = 0.83

// Builtins returns the scenario definitions shipped with the simulator,
// used to seed the definition store on first start.
func Builtins() []*Definition {
	return []*Definition{
		{
			Name:        "accumulator-decay",
			Description: "Accumulator system pressure bleeds down from 3000 to 1100 psi",
			Duration:    480 * time.Second,
			Modifiers: []ModifierDefinition{
				{
					TagName:    "BOP.ACC.PRESS.SYS",
					StartValue: 3000.0,
					EndValue:   1100.0,
					CurveType:  generator.CurveLinear,
				},
			},
		},
		{
			Name:        "pod-failure",
			Description: "Blue control pod loses supply voltage and fails over to yellow",
			Duration:    300 * time.Second,
			Modifiers: []ModifierDefinition{
				{
					TagName:    "BOP.POD.BLUE.VOLTAGE",
					StartValue: 24.0,
					EndValue:   0.0,
					CurveType:  generator.CurveLinear,
				},
				{
					TagName:    "BOP.POD.BLUE.STATUS",
					StartValue: "Active",
					EndValue:   "Failed",
					CurveType:  generator.CurveStep,
					Threshold:  &podStatusFlipThreshold,
				},
				{
					TagName:    "BOP.POD.YELLOW.STATUS",
					StartValue: "Standby",
					EndValue:   "Active",
					CurveType:  generator.CurveStep,
					Threshold:  &podStatusFlipThreshold,
				},
			},
		},
		{
			Name:        "hydraulic-leak",
			Description: "Hydraulic leak raises fluid demand and bleeds manifold pressure",
			Duration:    600 * time.Second,
			Modifiers: []ModifierDefinition{
				{
					TagName:    "BOP.HYD.FLOW",
					StartValue: 12.0,
					EndValue:   45.0,
					CurveType:  generator.CurveExponential,
				},
				{
					TagName:    "BOP.MANIFOLD.PRESS",
					StartValue: 1500.0,
					EndValue:   900.0,
					CurveType:  generator.CurveLinear,
				},
			},
		},
	}
}
