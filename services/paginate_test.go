package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/types"
)

func TestPageLimitsNormalize(t *testing.T) {
	l := PageLimits{Default: 20, Max: 100}

	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{1, 0, 1, 20},
		{0, 10, 1, 10},
		{3, -5, 3, 1},
		{2, 1000, 2, 100},
	}
	for _, tc := range cases {
		page, size := l.Normalize(tc.page, tc.size)
		assert.Equal(t, tc.wantPage, page)
		assert.Equal(t, tc.wantSize, size)
	}
}

func place(cat models.Category, id uint, name string, dist *float64) types.Place {
	p := types.Place{ID: id, Name: name, DistanceKm: dist}
	switch cat {
	case models.CategoryNaturalWonder:
		p.Details = types.NaturalWonderDetails{}
	case models.CategoryRestaurantFood:
		p.Details = types.RestaurantFoodDetails{}
	default:
		p.Details = types.LandmarkDetails{}
	}
	return p
}

func TestSortPlacesTieBreaks(t *testing.T) {
	items := []types.Place{
		place(models.CategoryRestaurantFood, 1, "Rose", nil),
		place(models.CategoryLandmark, 9, "rose", nil),
		place(models.CategoryLandmark, 4, "Rose", nil),
		place(models.CategoryLandmark, 2, "ash", nil),
	}

	sortPlaces(items, models.SortNameAsc, "", false)
	assert.Equal(t, []uint{2, 4, 9, 1}, ids(items))

	sortPlaces(items, models.SortNameDesc, "", false)
	assert.Equal(t, []uint{4, 9, 1, 2}, ids(items))
}

func TestSortPlacesByDistanceKeepsUnknownLast(t *testing.T) {
	items := []types.Place{
		place(models.CategoryLandmark, 1, "A", nil),
		place(models.CategoryLandmark, 2, "B", ptr(3.0)),
		place(models.CategoryLandmark, 3, "C", ptr(0.4)),
	}
	sortPlaces(items, models.SortDefault, "", true)
	assert.Equal(t, []uint{3, 2, 1}, ids(items))
}

func TestPageOffsetSaturates(t *testing.T) {
	assert.Equal(t, 0, pageOffset(1, 20))
	assert.Equal(t, 40, pageOffset(3, 20))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt/4+2, 4))
	assert.Equal(t, math.MaxInt, pageOffset(math.MaxInt, 100))
	assert.Empty(t, slicePage([]types.Place{{ID: 1}}, math.MaxInt/3+2, 3))
}

func TestSlicePage(t *testing.T) {
	items := []types.Place{place("", 1, "a", nil), place("", 2, "b", nil), place("", 3, "c", nil)}

	assert.Equal(t, []uint{1, 2}, ids(slicePage(items, 1, 2)))
	assert.Equal(t, []uint{3}, ids(slicePage(items, 2, 2)))
	assert.Empty(t, slicePage(items, 3, 2))
	assert.NotNil(t, slicePage(nil, 1, 20))
}
