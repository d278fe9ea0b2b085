package models

import "time"

// PoiImage caches the image lookup result for one place row.
// A nil ImageURL records a lookup that found nothing.
type PoiImage struct {
	ID            uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaceTable    string    `json:"place_table" gorm:"not null;type:varchar(64);uniqueIndex:idx_poi_images_place"`
	PlaceID       uint      `json:"place_id" gorm:"not null;uniqueIndex:idx_poi_images_place"`
	ImageURL      *string   `json:"image_url" gorm:"type:text"`
	Source        string    `json:"source" gorm:"type:varchar(64)"`
	LastFetchedAt time.Time `json:"last_fetched_at" gorm:"not null;index"`
}

func (PoiImage) TableName() string { return "poi_images" }

// Fresh reports whether the cached lookup is younger than ttl.
func (p PoiImage) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(p.LastFetchedAt) < ttl
}
