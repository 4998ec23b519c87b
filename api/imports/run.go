package imports

import (
	"errors"
	"net/http"
	"syntech_importer/lib"

	"github.com/MonkyMars/gecho"
)

// RunImportRequest optionally overrides the run report recipients.
type RunImportRequest struct {
	Notify []string `json:"notify" validate:"omitempty,dive,email"`
}

// RunImport starts a full feed import in the background. Triggering is
// idempotent: a second request while a run is active is rejected, not queued.
func (ir *ImportRoutesManager) RunImport(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[RunImportRequest](r)
	if err != nil {
		ir.logger.Debug("Invalid import trigger body", gecho.Field("error", err))
		gecho.BadRequest(w, gecho.WithMessage("Please check the request body and try again"), gecho.Send())
		return
	}

	if err := ir.importService.Start(body.Notify); err != nil {
		if errors.Is(err, lib.ErrRunInProgress) {
			gecho.Conflict(w, gecho.WithMessage("An import run is already in progress"), gecho.Send())
			return
		}
		ir.logger.Error("Failed to start import run", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to start import run"), gecho.Send())
		return
	}

	ir.logger.Info("Import run triggered")

	gecho.Success(w,
		gecho.WithMessage("Import run started"),
		gecho.Send(),
	)
}
