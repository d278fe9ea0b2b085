package models

import "strings"

const (
	TableLandmarks       = "landmarks"
	TableNaturalWonders  = "natural_wonders"
	TableRestaurantsFood = "restaurants_food"
)

// Category is one of the closed set of place kinds, each backed by one table.
type Category string

const (
	CategoryLandmark       Category = "landmark"
	CategoryNaturalWonder  Category = "natural_wonder"
	CategoryRestaurantFood Category = "restaurant_food"
)

// AllCategories lists every category in query order.
var AllCategories = []Category{CategoryLandmark, CategoryNaturalWonder, CategoryRestaurantFood}

func (c Category) Table() string {
	switch c {
	case CategoryLandmark:
		return TableLandmarks
	case CategoryNaturalWonder:
		return TableNaturalWonders
	case CategoryRestaurantFood:
		return TableRestaurantsFood
	default:
		return ""
	}
}

func (c Category) Valid() bool {
	return c.Table() != ""
}

// HasEntryFee reports whether the backing table carries an entry_fee column.
func (c Category) HasEntryFee() bool {
	return c == CategoryLandmark || c == CategoryNaturalWonder
}

// HasCuisine reports whether the backing table carries a cuisine column.
func (c Category) HasCuisine() bool {
	return c == CategoryRestaurantFood
}

func (c Category) DisplayName() string {
	switch c {
	case CategoryLandmark:
		return "landmark"
	case CategoryNaturalWonder:
		return "natural wonder"
	case CategoryRestaurantFood:
		return "restaurant"
	default:
		return string(c)
	}
}

// TagFilter restricts a table to rows whose tags[Key] equals Value.
type TagFilter struct {
	Key   string `json:"osm_key"`
	Value string `json:"osm_value"`
}

// CategorySelection is the result of resolving a requested category name.
// Filter is nil for the base categories.
type CategorySelection struct {
	Category Category
	Filter   *TagFilter
}

// ConceptualCategory is a user-facing category that narrows one table by a tag.
type ConceptualCategory struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Category    Category  `json:"category"`
	Filter      TagFilter `json:"filter"`
}

// ConceptualCategories is the static catalogue exposed by /places/categories.
var ConceptualCategories = []ConceptualCategory{
	{Name: "beach", DisplayName: "Beaches", Category: CategoryNaturalWonder, Filter: TagFilter{Key: "natural", Value: "beach"}},
	{Name: "park", DisplayName: "Parks", Category: CategoryNaturalWonder, Filter: TagFilter{Key: "leisure", Value: "park"}},
	{Name: "museum", DisplayName: "Museums", Category: CategoryLandmark, Filter: TagFilter{Key: "tourism", Value: "museum"}},
	{Name: "restaurant", DisplayName: "Restaurants", Category: CategoryRestaurantFood, Filter: TagFilter{Key: "amenity", Value: "restaurant"}},
	{Name: "cafe", DisplayName: "Cafes", Category: CategoryRestaurantFood, Filter: TagFilter{Key: "amenity", Value: "cafe"}},
	{Name: "castle", DisplayName: "Castles", Category: CategoryLandmark, Filter: TagFilter{Key: "historic", Value: "castle"}},
	{Name: "mountain", DisplayName: "Mountains & Peaks", Category: CategoryNaturalWonder, Filter: TagFilter{Key: "natural", Value: "peak"}},
	{Name: "historic_site", DisplayName: "Historic Sites", Category: CategoryLandmark, Filter: TagFilter{Key: "historic", Value: "archaeological_site"}},
	{Name: "waterfall", DisplayName: "Waterfalls", Category: CategoryNaturalWonder, Filter: TagFilter{Key: "natural", Value: "waterfall"}},
	{Name: "bar", DisplayName: "Bars & Pubs", Category: CategoryRestaurantFood, Filter: TagFilter{Key: "amenity", Value: "bar"}},
}

// ResolveCategory maps a requested category name to its table and optional tag filter.
// Matching is case-insensitive; ok is false for unknown names.
func ResolveCategory(name string) (CategorySelection, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return CategorySelection{}, false
	}

	for _, c := range AllCategories {
		if name == string(c) || name == c.Table() {
			return CategorySelection{Category: c}, true
		}
	}

	for _, cc := range ConceptualCategories {
		if cc.Name == name {
			filter := cc.Filter
			return CategorySelection{Category: cc.Category, Filter: &filter}, true
		}
	}

	return CategorySelection{}, false
}

var tagKeyCategories = map[string][]Category{
	"natural":  {CategoryNaturalWonder},
	"leisure":  {CategoryNaturalWonder},
	"historic": {CategoryLandmark},
	"man_made": {CategoryLandmark},
	"tourism":  {CategoryLandmark},
	"amenity":  {CategoryRestaurantFood, CategoryLandmark},
	"shop":     {CategoryRestaurantFood, CategoryLandmark},
}

// CategoriesForTagKey returns the candidate tables for an OSM tag key, most
// likely first. Unknown keys return nil.
func CategoriesForTagKey(key string) []Category {
	cats, ok := tagKeyCategories[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil
	}
	out := make([]Category, len(cats))
	copy(out, cats)
	return out
}

// ParseCategory converts a stored category literal back into a Category.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}
