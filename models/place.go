package models

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// JSONB is a raw jsonb column value.
type JSONB json.RawMessage

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONB) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONB(v)
	default:
		return errors.New("jsonb: unsupported scan type")
	}
	return nil
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

// PlaceBase holds the columns shared by every place table.
// Rows are written by the ingestion pipeline; this service only reads them.
type PlaceBase struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"not null;index"`
	Latitude     *float64  `json:"latitude" gorm:"type:double precision;index"`
	Longitude    *float64  `json:"longitude" gorm:"type:double precision;index"`
	Tags         JSONB     `json:"tags" gorm:"type:jsonb"`
	Website      *string   `json:"website"`
	Description  *string   `json:"description" gorm:"type:text"`
	OpeningHours *string   `json:"opening_hours"`
	OsmType      *string   `json:"osm_type" gorm:"type:varchar(16)"`
	OsmID        *int64    `json:"osm_id" gorm:"index"`
	CityID       *uint     `json:"city_id" gorm:"index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

type Landmark struct {
	PlaceBase
	EntryFee *string `json:"entry_fee"`
}

func (Landmark) TableName() string { return TableLandmarks }

type NaturalWonder struct {
	PlaceBase
	EntryFee *string `json:"entry_fee"`
}

func (NaturalWonder) TableName() string { return TableNaturalWonders }

type RestaurantFood struct {
	PlaceBase
	Cuisine *string `json:"cuisine"`
}

func (RestaurantFood) TableName() string { return TableRestaurantsFood }

// PlaceRow is the uniform read model produced by every candidate query.
// Columns a table does not have are selected as NULL.
type PlaceRow struct {
	ID           uint       `gorm:"column:id"`
	Name         string     `gorm:"column:name"`
	Latitude     *float64   `gorm:"column:latitude"`
	Longitude    *float64   `gorm:"column:longitude"`
	Tags         JSONB      `gorm:"column:tags"`
	Website      *string    `gorm:"column:website"`
	Description  *string    `gorm:"column:description"`
	OpeningHours *string    `gorm:"column:opening_hours"`
	OsmType      *string    `gorm:"column:osm_type"`
	OsmID        *int64     `gorm:"column:osm_id"`
	EntryFee     *string    `gorm:"column:entry_fee"`
	Cuisine      *string    `gorm:"column:cuisine"`
	CreatedAt    *time.Time `gorm:"column:created_at"`
	Category     Category   `gorm:"column:category"`
}
