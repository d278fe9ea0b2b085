package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travel-point/api-go/commons"
	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/utils"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*models.PoiImage
	writes  int
}

func cacheKey(table string, id uint) string {
	return table + "/" + imgURL(id)
}

func (c *memoryCache) Get(_ context.Context, table string, id uint) (*models.PoiImage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.entries[cacheKey(table, id)]; ok {
		cp := *img
		return &cp, nil
	}
	return nil, nil
}

func (c *memoryCache) Upsert(_ context.Context, img *models.PoiImage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string]*models.PoiImage{}
	}
	cp := *img
	c.entries[cacheKey(img.PlaceTable, img.PlaceID)] = &cp
	c.writes++
	return nil
}

type stubSource struct {
	files    map[string]string
	searches map[string]string
	err      error
	terms    []string
}

func (s *stubSource) ImageURL(_ context.Context, title string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if u, ok := s.files[title]; ok {
		return u, nil
	}
	return "", commons.ErrNotFound
}

func (s *stubSource) Search(_ context.Context, term string) (string, error) {
	s.terms = append(s.terms, term)
	if s.err != nil {
		return "", s.err
	}
	if u, ok := s.searches[term]; ok {
		return u, nil
	}
	return "", commons.ErrNotFound
}

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newFetcher(cache ImageCache, src ImageSource) *CachedImageFetcher {
	f := NewCachedImageFetcher(cache, src, 7*24*time.Hour)
	f.now = func() time.Time { return fixedNow }
	return f
}

func TestFetchImageStrategies(t *testing.T) {
	src := &stubSource{
		files: map[string]string{"File:Mole.jpg": "https://upload/mole.jpg"},
		searches: map[string]string{
			"Palazzo Madama Palazzo_Madama_(Torino)": "https://upload/madama.jpg",
			"Bran Castle, Bran":                      "https://upload/bran.jpg",
		},
	}

	cases := []struct {
		name       string
		ref        PlaceRef
		wantURL    string
		wantSource string
	}{
		{
			name:       "image tag",
			ref:        PlaceRef{Category: models.CategoryLandmark, ID: 1, Name: "X", Tags: utils.Tags{"image": "https://example.org/x.png"}},
			wantURL:    "https://example.org/x.png",
			wantSource: SourceOSMImageTag,
		},
		{
			name:       "commons file tag",
			ref:        PlaceRef{Category: models.CategoryLandmark, ID: 2, Name: "Mole", Tags: utils.Tags{"wikimedia_commons": "File:Mole.jpg"}},
			wantURL:    "https://upload/mole.jpg",
			wantSource: SourceCommonsFile,
		},
		{
			name:       "commons category tag",
			ref:        PlaceRef{Category: models.CategoryLandmark, ID: 3, Name: "Palazzo Madama", Tags: utils.Tags{"wikimedia_commons": "Category:Palazzo_Madama_(Torino)"}},
			wantURL:    "https://upload/madama.jpg",
			wantSource: SourceCommonsCategory,
		},
		{
			name:       "name and city search",
			ref:        PlaceRef{Category: models.CategoryLandmark, ID: 4, Name: "Bran Castle", Tags: utils.Tags{"addr:city": "Bran", "wikimedia_commons": "File:Gone.jpg"}},
			wantURL:    "https://upload/bran.jpg",
			wantSource: SourceCommonsName,
		},
		{
			name:       "nothing found",
			ref:        PlaceRef{Category: models.CategoryNaturalWonder, ID: 5, Name: "Unnamed Spring"},
			wantURL:    PlaceholderImage,
			wantSource: SourceNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cache := &memoryCache{}
			f := newFetcher(cache, src)

			got, err := f.FetchImage(context.Background(), tc.ref)
			require.NoError(t, err)
			assert.Equal(t, tc.wantURL, got)

			stored, _ := cache.Get(context.Background(), tc.ref.Category.Table(), tc.ref.ID)
			require.NotNil(t, stored)
			assert.Equal(t, tc.wantSource, stored.Source)
			assert.Equal(t, fixedNow, stored.LastFetchedAt)
		})
	}
}

func TestFetchImageServesFreshCache(t *testing.T) {
	url := "https://upload/cached.jpg"
	cache := &memoryCache{entries: map[string]*models.PoiImage{
		cacheKey(models.TableLandmarks, 1): {PlaceTable: models.TableLandmarks, PlaceID: 1, ImageURL: &url, LastFetchedAt: fixedNow.Add(-24 * time.Hour)},
		cacheKey(models.TableLandmarks, 2): {PlaceTable: models.TableLandmarks, PlaceID: 2, Source: SourceNotFound, LastFetchedAt: fixedNow.Add(-time.Hour)},
	}}
	src := &stubSource{err: errors.New("must not be called")}
	f := newFetcher(cache, src)

	got, err := f.FetchImage(context.Background(), PlaceRef{Category: models.CategoryLandmark, ID: 1, Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, url, got)

	got, err = f.FetchImage(context.Background(), PlaceRef{Category: models.CategoryLandmark, ID: 2, Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, PlaceholderImage, got)
	assert.Empty(t, src.terms)
}

func TestFetchImageRefreshesStaleCache(t *testing.T) {
	old := "https://upload/old.jpg"
	cache := &memoryCache{entries: map[string]*models.PoiImage{
		cacheKey(models.TableLandmarks, 1): {PlaceTable: models.TableLandmarks, PlaceID: 1, ImageURL: &old, LastFetchedAt: fixedNow.Add(-8 * 24 * time.Hour)},
	}}
	src := &stubSource{searches: map[string]string{"Fort": "https://upload/new.jpg"}}
	f := newFetcher(cache, src)

	got, err := f.FetchImage(context.Background(), PlaceRef{Category: models.CategoryLandmark, ID: 1, Name: "Fort"})
	require.NoError(t, err)
	assert.Equal(t, "https://upload/new.jpg", got)
	assert.Equal(t, 1, cache.writes)
}

func TestFetchImageTransportErrorIsNotCached(t *testing.T) {
	cache := &memoryCache{}
	f := newFetcher(cache, &stubSource{err: errors.New("connection reset")})

	_, err := f.FetchImage(context.Background(), PlaceRef{Category: models.CategoryLandmark, ID: 1, Name: "Fort"})
	require.Error(t, err)
	assert.Zero(t, cache.writes)
}

func TestRefreshSkipsFreshEntries(t *testing.T) {
	cache := &memoryCache{entries: map[string]*models.PoiImage{
		cacheKey(models.TableLandmarks, 1): {PlaceTable: models.TableLandmarks, PlaceID: 1, Source: SourceNotFound, LastFetchedAt: fixedNow},
	}}
	f := newFetcher(cache, &stubSource{})

	fetched, err := f.Refresh(context.Background(), PlaceRef{Category: models.CategoryLandmark, ID: 1, Name: "Fort"})
	require.NoError(t, err)
	assert.False(t, fetched)

	fetched, err = f.Refresh(context.Background(), PlaceRef{Category: models.CategoryLandmark, ID: 2, Name: "Fort"})
	require.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, 1, cache.writes)
}
