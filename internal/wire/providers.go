package wire

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"microblog/internal/common"
	"microblog/internal/config"
	"microblog/internal/dashboard"
	"microblog/internal/dbmysql"
	"microblog/internal/feed"
	"microblog/internal/media"
	"microblog/internal/metrics"
	"microblog/internal/user"
)

// Application bundles everything the HTTP entrypoint needs.
type Application struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *logrus.Logger
	Auth      *common.AuthMiddleware
	Metrics   *metrics.Metrics
	Feed      *feed.FeedHandlers
	Dashboard *dashboard.Handlers
	Users     *user.Handler
	Media     *media.Handler
}

func ProvideLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func ProvideDatabaseConnection(cfg *config.Config, logger *logrus.Logger) (*gorm.DB, error) {
	db, err := dbmysql.NewMySQL(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Server.SeedDemoData {
		if err := dbmysql.Seed(db, cfg.Media.Dir); err != nil {
			return nil, err
		}
		logger.Info("demo data seeded")
	}

	return db, nil
}

func ProvideDiskStore(cfg *config.Config) *media.DiskStore {
	return media.NewDiskStore(cfg.Media.Dir, cfg.Media.BaseURL)
}

func ProvideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}
