// Package http exposes the library over three surfaces: a JSON API for
// administration and KOReader progress sync, an OPDS catalog for e-reader
// apps, and a minimal WebDAV endpoint for KOReader's statistics plugin.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/dengxuezhao/kompanion/internal/auth"
)

// NewRouter builds the gin engine with all routes attached.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	deviceAuth := auth.DeviceAuth(cfg.Auth)
	adminAuth := auth.AdminAuth(cfg.Auth)

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	books := NewBooksController(cfg.Shelf, cfg.Logger)
	booksGroup := router.Group("/api/v1/books", adminAuth)
	{
		booksGroup.POST("", books.Upload)
		booksGroup.GET("", books.List)
		booksGroup.GET("/:id", books.Get)
		booksGroup.PUT("/:id", books.Update)
		booksGroup.DELETE("/:id", books.Delete)
		booksGroup.GET("/:id/download", books.Download)
		booksGroup.GET("/:id/cover", books.Cover)
	}

	devices := NewDevicesController(cfg.Auth)
	devicesGroup := router.Group("/api/v1/devices", adminAuth)
	{
		devicesGroup.POST("", devices.Create)
		devicesGroup.GET("", devices.List)
		devicesGroup.DELETE("/:name", devices.Delete)
	}

	sync := NewSyncController(cfg.Progress)
	syncGroup := router.Group("/api/v1", deviceAuth)
	{
		syncGroup.PUT("/syncs/progress", sync.Update)
		syncGroup.GET("/syncs/progress/:document", sync.Fetch)
		syncGroup.GET("/users/auth", sync.AuthCheck)
		syncGroup.GET("/progress/:document/history", sync.History)
	}

	catalog := NewOPDSController(cfg.Shelf)
	opdsGroup := router.Group("/opds", deviceAuth)
	{
		opdsGroup.GET("", catalog.Catalog)
		opdsGroup.GET("/book/:id/download", catalog.Download)
		opdsGroup.GET("/book/:id/cover", catalog.Cover)
	}

	webdav := NewWebDAVController(cfg.Stats)
	webdavGroup := router.Group("/webdav", deviceAuth)
	{
		webdavGroup.Handle("PROPFIND", "/", webdav.Propfind)
		webdavGroup.PUT("/statistics.sqlite3", webdav.PutStatistics)
		webdavGroup.GET("/statistics.sqlite3", webdav.GetStatistics)
	}
	router.GET("/api/v1/stats/summary", deviceAuth, webdav.Summary)

	return router
}
