package plot

import (
	"encoding/json"

	"github.com/raykavin/sectorview/pkg/core"
	"github.com/raykavin/sectorview/pkg/pipeline"
	"github.com/samber/lo"
)

// SeriesPoint is a series point ready to be drawn
type SeriesPoint struct {
	core.SeriesPoint
	Tooltip []string `json:"tooltip"`
}

// ScatterPoint is a scatter point ready to be drawn
type ScatterPoint struct {
	core.ScatterPoint
	Tooltip []string `json:"tooltip"`
}

// Domains are the axis input ranges of both charts
type Domains struct {
	Time       []core.Date `json:"time"`
	Value      Domain      `json:"value"`
	Volatility Domain      `json:"volatility"`
	Beta       Domain      `json:"beta"`
}

// ViewModel is everything the browser needs to draw one state
type ViewModel struct {
	State    core.ControlState `json:"state"`
	LastDate *core.Date        `json:"last_date"`
	Series   []SeriesPoint     `json:"series"`
	Scatter  []ScatterPoint    `json:"scatter"`
	Domains  Domains           `json:"domains"`
}

// NewViewModel decorates a derived view with tooltips and axis domains
func NewViewModel(view pipeline.View) ViewModel {
	return ViewModel{
		State:    view.State,
		LastDate: view.LastDate,
		Series: lo.Map(view.Series, func(p core.SeriesPoint, _ int) SeriesPoint {
			return SeriesPoint{SeriesPoint: p, Tooltip: seriesTooltip(view.State.Metric, p)}
		}),
		Scatter: lo.Map(view.Scatter, func(p core.ScatterPoint, _ int) ScatterPoint {
			return ScatterPoint{ScatterPoint: p, Tooltip: scatterTooltip(p)}
		}),
		Domains: Domains{
			Time:       timeDomain(view.Series),
			Value:      linearDomain(view.Series, func(p core.SeriesPoint) float64 { return p.Value }),
			Volatility: linearDomain(view.Scatter, func(p core.ScatterPoint) float64 { return p.Volatility }),
			Beta:       linearDomain(view.Scatter, func(p core.ScatterPoint) float64 { return p.Beta }),
		},
	}
}

// Options lists the control choices offered by the dashboard
type Options struct {
	Sectors  []string          `json:"sectors"`
	Metrics  []string          `json:"metrics"`
	Defaults core.ControlState `json:"defaults"`
}

// Message is the envelope exchanged over the WebSocket
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// inboundMessage is a Message whose payload is decoded by type
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// StateRequest is a partial control state; absent fields take the defaults
type StateRequest struct {
	Sector *string `json:"sector"`
	Metric *string `json:"metric"`
	Range  *int    `json:"range"`
}
