package http

import (
	"go.uber.org/zap"

	"github.com/dengxuezhao/kompanion/internal/auth"
	"github.com/dengxuezhao/kompanion/internal/bookshelf"
	"github.com/dengxuezhao/kompanion/internal/database"
	"github.com/dengxuezhao/kompanion/internal/progress"
	"github.com/dengxuezhao/kompanion/internal/stats"
)

// RouterConfig carries everything NewRouter needs, so wiring stays in one
// place instead of a long parameter list.
type RouterConfig struct {
	Shelf    *bookshelf.Shelf
	Progress *progress.Service
	Auth     *auth.Service
	Stats    *stats.Service

	// Database backs the health check; nil is tolerated.
	Database *database.Database

	Version string
	Logger  *zap.Logger
}
