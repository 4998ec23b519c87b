package services

import (
	"syntech_importer/database"
	"syntech_importer/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	CacheService   *CacheService
	CatalogService *CatalogService
	FeedService    *FeedService
	MediaService   *MediaService
	EmailService   *EmailService
	HealthService  *HealthService
	ImportService  *ImportService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB) *ServiceManager {
	cacheService := NewCacheService(logger, cfg)
	catalogService := NewCatalogService(logger, db)
	feedService := NewFeedService(logger, cfg)
	mediaService := NewMediaService(logger, cfg, catalogService)
	emailService := NewEmailService(logger, cfg)
	healthService := NewHealthService(logger, db, cacheService)
	importService := NewImportService(logger, cfg, catalogService, mediaService, feedService, cacheService, emailService)

	return &ServiceManager{
		CacheService:   cacheService,
		CatalogService: catalogService,
		FeedService:    feedService,
		MediaService:   mediaService,
		EmailService:   emailService,
		HealthService:  healthService,
		ImportService:  importService,
	}
}
