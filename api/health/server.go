package health

import (
	"net/http"

	"github.com/MonkyMars/gecho"
)

func (hr *HealthRoutesManager) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := hr.healthService.Check(r.Context())

	if status.Database == "unreachable" {
		gecho.ServiceUnavailable(w,
			gecho.WithData(status),
			gecho.WithMessage("Catalog store unreachable"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(status),
		gecho.Send(),
	)
}
