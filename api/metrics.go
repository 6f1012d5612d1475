package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the two operations that recompute hours from patterns.
// Everything else is cheap CRUD and covered by standard HTTP metrics.
var (
	timesheetResolutions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timesheet_resolutions_total",
		Help: "Number of timesheet detail resolutions served.",
	})
	timesheetExports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timesheet_exports_total",
		Help: "Number of timesheet spreadsheet exports served.",
	})
)
