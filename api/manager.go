package api

import (
	"syntech_importer/api/health"
	"syntech_importer/api/imports"

	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	importRoutes *imports.ImportRoutesManager
	healthRoutes *health.HealthRoutesManager
}

func NewRouterManager(
	importRoutes *imports.ImportRoutesManager,
	healthRoutes *health.HealthRoutesManager,
) *routerManager {
	return &routerManager{
		importRoutes: importRoutes,
		healthRoutes: healthRoutes,
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.importRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
}
