package services

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/types"
)

// PageLimits bounds the page size accepted from clients.
type PageLimits struct {
	Default int
	Max     int
}

// Normalize clamps page to >= 1 and size to [1, Max]; a zero size takes Default.
func (l PageLimits) Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size == 0 {
		size = l.Default
	}
	if size < 1 {
		size = 1
	}
	if l.Max > 0 && size > l.Max {
		size = l.Max
	}
	return page, size
}

// pageOffset saturates at math.MaxInt so huge page numbers land past the end.
func pageOffset(page, size int) int {
	if page <= 1 || size <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// slicePage returns the requested window; a page past the end is empty.
func slicePage(items []types.Place, page, size int) []types.Place {
	offset := pageOffset(page, size)
	if offset >= len(items) {
		return []types.Place{}
	}
	end := min(offset+size, len(items))
	return items[offset:end]
}

func compareName(a, b types.Place) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Category()), string(b.Category())); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func compareDistance(a, b types.Place) int {
	switch {
	case a.DistanceKm == nil && b.DistanceKm == nil:
	case a.DistanceKm == nil:
		return 1
	case b.DistanceKm == nil:
		return -1
	default:
		if c := cmp.Compare(*a.DistanceKm, *b.DistanceKm); c != 0 {
			return c
		}
	}
	return compareName(a, b)
}

// textRank is 0 for an exact name match, 1 for a prefix, 2 otherwise.
func textRank(name, text string) int {
	name = strings.ToLower(name)
	switch {
	case name == text:
		return 0
	case strings.HasPrefix(name, text):
		return 1
	default:
		return 2
	}
}

func compareScore(a, b types.Place) int {
	var sa, sb float64
	if a.RelevanceScore != nil {
		sa = *a.RelevanceScore
	}
	if b.RelevanceScore != nil {
		sb = *b.RelevanceScore
	}
	if c := cmp.Compare(sb, sa); c != 0 {
		return c
	}
	return compareName(a, b)
}

// sortPlaces orders items in place. An explicit sort wins; relevance without
// text becomes name_asc; with no sort, nearby results go by distance and
// everything else by name.
func sortPlaces(items []types.Place, sort models.SortKey, text string, byDistance bool) {
	text = strings.ToLower(strings.TrimSpace(text))

	switch sort.Effective(text != "") {
	case models.SortNameAsc:
		slices.SortStableFunc(items, compareName)
	case models.SortNameDesc:
		slices.SortStableFunc(items, func(a, b types.Place) int {
			if c := strings.Compare(strings.ToLower(b.Name), strings.ToLower(a.Name)); c != 0 {
				return c
			}
			return compareName(a, b)
		})
	case models.SortRelevance:
		slices.SortStableFunc(items, func(a, b types.Place) int {
			if c := cmp.Compare(textRank(a.Name, text), textRank(b.Name, text)); c != 0 {
				return c
			}
			if byDistance {
				return compareDistance(a, b)
			}
			return compareName(a, b)
		})
	default:
		if byDistance {
			slices.SortStableFunc(items, compareDistance)
		} else {
			slices.SortStableFunc(items, compareName)
		}
	}
}
