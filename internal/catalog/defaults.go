package catalog

import (
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/domain/tag"
)

// bound is a shorthand for optional clamp bounds in the default catalogue.
func bound(v float64) *float64 {
	return &v
}

// DefaultDefinitions returns the built-in BOP stack tag catalogue, used to
// seed the definition store on first start.
func DefaultDefinitions() []*tag.Definition {
	return []*tag.Definition{
		{
			Name:    "BOP.ACC.PRESS.SYS",
			Unit:    "psi",
			Profile: tag.Profile{Nominal: 3000, Sigma: 10, Min: bound(0), Max: bound(3500)},
		},
		{
			Name:    "BOP.ACC.PRESS.PRECHARGE",
			Unit:    "psi",
			Profile: tag.Profile{Nominal: 1000, Sigma: 3, Min: bound(0), Max: bound(1200)},
		},
		{
			Name:    "BOP.MANIFOLD.PRESS",
			Unit:    "psi",
			Profile: tag.Profile{Nominal: 1500, Sigma: 8, Min: bound(0), Max: bound(3000)},
		},
		{
			Name:    "BOP.WELLHEAD.PRESS",
			Unit:    "psi",
			Profile: tag.Profile{Nominal: 4200, Sigma: 25, Min: bound(0), Max: bound(15000)},
		},
		{
			Name:    "BOP.ANNULAR.UPPER.POS",
			Unit:    "%",
			Profile: tag.Profile{Nominal: 0, Sigma: 0, Min: bound(0), Max: bound(100), Discrete: true},
		},
		{
			Name:    "BOP.ANNULAR.LOWER.POS",
			Unit:    "%",
			Profile: tag.Profile{Nominal: 0, Sigma: 0, Min: bound(0), Max: bound(100), Discrete: true},
		},
		{
			Name:    "BOP.RAM.BLIND.POS",
			Unit:    "%",
			Profile: tag.Profile{Nominal: 0, Sigma: 0, Min: bound(0), Max: bound(100), Discrete: true},
		},
		{
			Name:    "BOP.RAM.PIPE.UPPER.POS",
			Unit:    "%",
			Profile: tag.Profile{Nominal: 0, Sigma: 0, Min: bound(0), Max: bound(100), Discrete: true},
		},
		{
			Name:    "BOP.HYD.FLOW",
			Unit:    "gpm",
			Profile: tag.Profile{Nominal: 12, Sigma: 0.4, Min: bound(0), Max: bound(60)},
		},
		{
			Name:    "BOP.HYD.FLUID.TEMP",
			Unit:    "degF",
			Profile: tag.Profile{Nominal: 92, Sigma: 0.8, Min: bound(30), Max: bound(180)},
		},
		{
			Name:    "BOP.POD.BLUE.VOLTAGE",
			Unit:    "V",
			Profile: tag.Profile{Nominal: 24, Sigma: 0.15, Min: bound(0), Max: bound(30)},
		},
		{
			Name:    "BOP.POD.YELLOW.VOLTAGE",
			Unit:    "V",
			Profile: tag.Profile{Nominal: 24, Sigma: 0.15, Min: bound(0), Max: bound(30)},
		},
		{
			Name: "BOP.POD.BLUE.STATUS",
			Unit: "state",
			Type: tag.TypeString,
			Profile: tag.Profile{
				StringDefault: "Active",
				StringOptions: []string{"Active", "Standby", "Failed"},
			},
		},
		{
			Name: "BOP.POD.YELLOW.STATUS",
			Unit: "state",
			Type: tag.TypeString,
			Profile: tag.Profile{
				StringDefault: "Standby",
				StringOptions: []string{"Active", "Standby", "Failed"},
			},
		},
		{
			Name:    "BOP.EDS.ARMED",
			Unit:    "bool",
			Type:    tag.TypeBoolean,
			Profile: tag.Profile{BooleanDefault: true},
		},
	}
}
