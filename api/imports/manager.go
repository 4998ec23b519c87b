package imports

import (
	"syntech_importer/api/middleware"
	"syntech_importer/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type ImportRoutesManager struct {
	logger        *gecho.Logger
	importService *services.ImportService
	cacheService  *services.CacheService
	mw            *middleware.Middleware
}

func NewImportRoutesManager(
	logger *gecho.Logger,
	importService *services.ImportService,
	cacheService *services.CacheService,
	mw *middleware.Middleware,
) *ImportRoutesManager {
	return &ImportRoutesManager{
		logger:        logger,
		importService: importService,
		cacheService:  cacheService,
		mw:            mw,
	}
}

func (ir *ImportRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/admin/imports", func(r chi.Router) {
		r.Use(ir.mw.AdminAuthMiddleware)
		r.Post("/run", ir.RunImport)
		r.Get("/status", ir.ImportStatus)
	})
}
