package imports

import (
	"net/http"

	"github.com/MonkyMars/gecho"
)

type importStatus struct {
	Running     bool `json:"running"`
	LastSummary any  `json:"last_summary,omitempty"`
}

// ImportStatus reports whether a run is active and the last run's summary.
func (ir *ImportRoutesManager) ImportStatus(w http.ResponseWriter, r *http.Request) {
	status := importStatus{
		Running: ir.importService.Running(),
	}

	summary, err := ir.cacheService.GetRunSummary(r.Context())
	if err != nil {
		ir.logger.Warn("Failed to read last run summary", gecho.Field("error", err))
	} else if summary != nil {
		status.LastSummary = summary
	}

	gecho.Success(w,
		gecho.WithData(status),
		gecho.Send(),
	)
}
