package media

import (
	"context"

	"gorm.io/gorm"

	"microblog/internal/dbmysql"
)

type Medias interface {
	CreateMedia(ctx context.Context, media *dbmysql.Media) error
}

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) CreateMedia(ctx context.Context, media *dbmysql.Media) error {
	return r.db.WithContext(ctx).Create(media).Error
}
