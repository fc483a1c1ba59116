package core

// AllSectors selects every sector
const AllSectors = "All"

// Range percentage bounds
const (
	MinRangePct = 0
	MaxRangePct = 100
)

// ControlState is the current value of the dashboard controls
type ControlState struct {
	Sector   string `json:"sector"`
	Metric   string `json:"metric"`
	RangePct int    `json:"range"`
}

// IsAllSectors reports whether the state selects every sector. Only the
// exact "All" does; any other value names one sector.
func (s ControlState) IsAllSectors() bool {
	return s.Sector == AllSectors
}

// Normalize returns the state with RangePct clamped to [0,100] and an
// empty sector replaced by "All"
func (s ControlState) Normalize() ControlState {
	if s.Sector == "" {
		s.Sector = AllSectors
	}
	s.RangePct = min(max(s.RangePct, MinRangePct), MaxRangePct)
	return s
}
