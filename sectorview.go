// Package sectorview is a sector dashboard: a per-sector time series of a
// chosen metric linked to a volatility/beta scatter of the last visible date.
package sectorview

import "github.com/raykavin/sectorview/pkg/logger"

// DefaultLog is the default logger instance
var DefaultLog logger.Logger
