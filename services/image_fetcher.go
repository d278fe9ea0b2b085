package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/travel-point/api-go/commons"
	"github.com/travel-point/api-go/logger"
	"github.com/travel-point/api-go/metrics"
	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/utils"
	"go.uber.org/zap"
)

// PlaceholderImage tells clients to render their default artwork.
const PlaceholderImage = "_use_default_if_null_found"

// Image sources recorded in poi_images.source.
const (
	SourceOSMImageTag     = "osm_image_tag"
	SourceCommonsFile     = "commons_file_tag"
	SourceCommonsCategory = "commons_category_search"
	SourceCommonsTag      = "commons_tag_search"
	SourceCommonsName     = "commons_name_search"
	SourceNotFound        = "not_found"
)

// PlaceRef identifies a place for image lookup.
type PlaceRef struct {
	Category models.Category `json:"category"`
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Tags     utils.Tags      `json:"tags,omitempty"`
}

// ImageFetcher returns an image URL (or PlaceholderImage) for a place.
// An error means the lookup could not be completed and may be retried.
type ImageFetcher interface {
	FetchImage(ctx context.Context, ref PlaceRef) (string, error)
}

// ImageCache is the poi_images store.
type ImageCache interface {
	Get(ctx context.Context, table string, placeID uint) (*models.PoiImage, error)
	Upsert(ctx context.Context, img *models.PoiImage) error
}

// ImageSource resolves Commons titles and searches.
type ImageSource interface {
	ImageURL(ctx context.Context, fileTitle string) (string, error)
	Search(ctx context.Context, term string) (string, error)
}

// CachedImageFetcher serves lookups from poi_images and falls back to
// Commons, caching both hits and definitive misses.
type CachedImageFetcher struct {
	cache  ImageCache
	source ImageSource
	ttl    time.Duration
	now    func() time.Time
}

func NewCachedImageFetcher(cache ImageCache, source ImageSource, ttl time.Duration) *CachedImageFetcher {
	return &CachedImageFetcher{cache: cache, source: source, ttl: ttl, now: time.Now}
}

func (f *CachedImageFetcher) FetchImage(ctx context.Context, ref PlaceRef) (string, error) {
	log := logger.FromContext(ctx)
	table := ref.Category.Table()
	if table == "" {
		log.Warn("image lookup for unknown category", zap.String("category", string(ref.Category)), zap.Uint("id", ref.ID))
		return PlaceholderImage, nil
	}

	cached, err := f.cache.Get(ctx, table, ref.ID)
	if err != nil {
		log.Warn("image cache read failed", zap.String("table", table), zap.Uint("id", ref.ID), zap.Error(err))
	}
	if cached != nil && cached.Fresh(f.now(), f.ttl) {
		metrics.ImageEnrichmentTotal.WithLabelValues("cached").Inc()
		return urlOrPlaceholder(cached.ImageURL), nil
	}

	return f.refresh(ctx, ref, table)
}

// Refresh re-resolves a place unless a fresh cache entry already exists.
// It reports whether a lookup was performed.
func (f *CachedImageFetcher) Refresh(ctx context.Context, ref PlaceRef) (bool, error) {
	table := ref.Category.Table()
	if table == "" {
		return false, nil
	}
	cached, err := f.cache.Get(ctx, table, ref.ID)
	if err == nil && cached != nil && cached.Fresh(f.now(), f.ttl) {
		return false, nil
	}
	_, err = f.refresh(ctx, ref, table)
	return true, err
}

func (f *CachedImageFetcher) refresh(ctx context.Context, ref PlaceRef, table string) (string, error) {
	url, source, err := f.resolve(ctx, ref)
	if err != nil {
		return "", err
	}

	entry := &models.PoiImage{
		PlaceTable:    table,
		PlaceID:       ref.ID,
		Source:        source,
		LastFetchedAt: f.now(),
	}
	if url != "" {
		entry.ImageURL = &url
		metrics.ImageEnrichmentTotal.WithLabelValues("fetched").Inc()
	} else {
		metrics.ImageEnrichmentTotal.WithLabelValues("not_found").Inc()
	}
	if err := f.cache.Upsert(ctx, entry); err != nil {
		logger.FromContext(ctx).Warn("image cache write failed", zap.String("table", table), zap.Uint("id", ref.ID), zap.Error(err))
	}

	return urlOrPlaceholder(entry.ImageURL), nil
}

// resolve tries, in order: the image tag, the wikimedia_commons tag, and a
// Commons search on the name (plus city when known). An empty URL with a nil
// error is a definitive miss.
func (f *CachedImageFetcher) resolve(ctx context.Context, ref PlaceRef) (string, string, error) {
	if img, ok := ref.Tags.Get("image"); ok && strings.HasPrefix(img, "http") {
		return img, SourceOSMImageTag, nil
	}

	name := strings.TrimSpace(ref.Name)

	if tag, ok := ref.Tags.Get("wikimedia_commons"); ok {
		var (
			url    string
			err    error
			source string
		)
		switch {
		case strings.HasPrefix(tag, "File:"):
			url, err = f.source.ImageURL(ctx, tag)
			source = SourceCommonsFile
		case strings.HasPrefix(tag, "Category:"):
			url, err = f.source.Search(ctx, joinTerms(name, strings.TrimPrefix(tag, "Category:")))
			source = SourceCommonsCategory
		default:
			url, err = f.source.Search(ctx, joinTerms(name, tag))
			source = SourceCommonsTag
		}
		if err == nil && url != "" {
			return url, source, nil
		}
		if err != nil && !errors.Is(err, commons.ErrNotFound) {
			return "", "", err
		}
	}

	if name != "" {
		term := name
		if city, ok := ref.Tags.Get("addr:city"); ok {
			term = name + ", " + city
		}
		url, err := f.source.Search(ctx, term)
		if err == nil && url != "" {
			return url, SourceCommonsName, nil
		}
		if err != nil && !errors.Is(err, commons.ErrNotFound) {
			return "", "", err
		}
	}

	return "", SourceNotFound, nil
}

func joinTerms(name, extra string) string {
	if name == "" {
		return extra
	}
	return name + " " + extra
}

func urlOrPlaceholder(url *string) string {
	if url == nil || *url == "" {
		return PlaceholderImage
	}
	return *url
}
