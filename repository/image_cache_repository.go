package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/travel-point/api-go/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageCacheRepository stores image lookups in poi_images.
type ImageCacheRepository struct {
	db *gorm.DB
}

func NewImageCacheRepository(db *gorm.DB) *ImageCacheRepository {
	return &ImageCacheRepository{db: db}
}

// Get returns the cached entry for a place, or nil when none exists.
func (r *ImageCacheRepository) Get(ctx context.Context, table string, placeID uint) (*models.PoiImage, error) {
	var img models.PoiImage
	err := r.db.WithContext(ctx).
		Where("place_table = ? AND place_id = ?", table, placeID).
		Take(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get poi image %s/%d: %w", table, placeID, err)
	}
	return &img, nil
}

// Upsert writes the entry, replacing any existing row for the same place.
// Concurrent writers for one place converge on a single row.
func (r *ImageCacheRepository) Upsert(ctx context.Context, img *models.PoiImage) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "place_table"}, {Name: "place_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"image_url", "source", "last_fetched_at"}),
	}).Create(img).Error
	if err != nil {
		return fmt.Errorf("upsert poi image %s/%d: %w", img.PlaceTable, img.PlaceID, err)
	}
	return nil
}
