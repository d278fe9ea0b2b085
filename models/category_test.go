package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCategory(t *testing.T) {
	t.Run("base category", func(t *testing.T) {
		sel, ok := ResolveCategory("landmark")
		require.True(t, ok)
		assert.Equal(t, CategoryLandmark, sel.Category)
		assert.Nil(t, sel.Filter)
	})

	t.Run("table name", func(t *testing.T) {
		sel, ok := ResolveCategory("restaurants_food")
		require.True(t, ok)
		assert.Equal(t, CategoryRestaurantFood, sel.Category)
	})

	t.Run("museum narrows landmarks", func(t *testing.T) {
		sel, ok := ResolveCategory(" Museum ")
		require.True(t, ok)
		assert.Equal(t, CategoryLandmark, sel.Category)
		assert.Equal(t, TableLandmarks, sel.Category.Table())
		require.NotNil(t, sel.Filter)
		assert.Equal(t, TagFilter{Key: "tourism", Value: "museum"}, *sel.Filter)
	})

	t.Run("every conceptual category maps to exactly one table", func(t *testing.T) {
		for _, cc := range ConceptualCategories {
			sel, ok := ResolveCategory(cc.Name)
			require.True(t, ok, cc.Name)
			assert.True(t, sel.Category.Valid(), cc.Name)
			require.NotNil(t, sel.Filter, cc.Name)
			assert.NotEmpty(t, sel.Filter.Key, cc.Name)
		}
	})

	t.Run("filter is a copy", func(t *testing.T) {
		sel, _ := ResolveCategory("park")
		sel.Filter.Value = "mutated"
		again, _ := ResolveCategory("park")
		assert.Equal(t, "park", again.Filter.Value)
	})

	t.Run("unknown", func(t *testing.T) {
		_, ok := ResolveCategory("volcano")
		assert.False(t, ok)
		_, ok = ResolveCategory("")
		assert.False(t, ok)
	})
}

func TestCategoriesForTagKey(t *testing.T) {
	assert.Equal(t, []Category{CategoryNaturalWonder}, CategoriesForTagKey("natural"))
	assert.Equal(t, []Category{CategoryNaturalWonder}, CategoriesForTagKey("leisure"))
	assert.Equal(t, []Category{CategoryLandmark}, CategoriesForTagKey("tourism"))
	assert.Equal(t, []Category{CategoryRestaurantFood, CategoryLandmark}, CategoriesForTagKey("amenity"))
	assert.Nil(t, CategoriesForTagKey("building"))
}

func TestCategoryColumns(t *testing.T) {
	assert.True(t, CategoryLandmark.HasEntryFee())
	assert.True(t, CategoryNaturalWonder.HasEntryFee())
	assert.False(t, CategoryRestaurantFood.HasEntryFee())
	assert.True(t, CategoryRestaurantFood.HasCuisine())
	assert.False(t, CategoryLandmark.HasCuisine())
	assert.False(t, Category("city").Valid())
}

func TestJSONBScan(t *testing.T) {
	var j JSONB
	require.NoError(t, j.Scan([]byte(`{"a":"b"}`)))
	assert.Equal(t, `{"a":"b"}`, string(j))

	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	assert.Error(t, j.Scan(42))

	v, err := JSONB(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPoiImageFresh(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	img := PoiImage{LastFetchedAt: now.Add(-6 * 24 * time.Hour)}
	assert.True(t, img.Fresh(now, 7*24*time.Hour))

	img.LastFetchedAt = now.Add(-8 * 24 * time.Hour)
	assert.False(t, img.Fresh(now, 7*24*time.Hour))
}
