package plot

import (
	"fmt"

	"github.com/raykavin/sectorview/pkg/core"
)

// Decimal places shown in tooltips
const (
	metricPrecision     = 4
	volatilityPrecision = 3
	betaPrecision       = 2
)

// seriesTooltip returns the hover lines of a series point
func seriesTooltip(metric string, p core.SeriesPoint) []string {
	return []string{
		"Date: " + p.Date.String(),
		fmt.Sprintf("%s: %.*f", metric, metricPrecision, p.Value),
	}
}

// scatterTooltip returns the hover lines of a scatter point
func scatterTooltip(p core.ScatterPoint) []string {
	return []string{
		p.Symbol,
		fmt.Sprintf("Vol: %.*f", volatilityPrecision, p.Volatility),
		fmt.Sprintf("β: %.*f", betaPrecision, p.Beta),
	}
}
