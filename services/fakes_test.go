package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/travel-point/api-go/models"
	"github.com/travel-point/api-go/repository"
	"github.com/travel-point/api-go/utils"
)

func ptr[T any](v T) *T { return &v }

func row(cat models.Category, id uint, name string, lat, lon float64, tags string) models.PlaceRow {
	return models.PlaceRow{
		ID:        id,
		Name:      name,
		Latitude:  &lat,
		Longitude: &lon,
		Tags:      models.JSONB(tags),
		Category:  cat,
	}
}

// fakeStore answers bounding-box queries from an in-memory table and returns
// canned results for everything else.
type fakeStore struct {
	mu sync.Mutex

	rows      []models.PlaceRow
	failTable map[models.Category]error

	tagTotal int64
	tagRows  []models.PlaceRow
	tagErr   error
	tagQuery *repository.TagQuery
	tagCalls int

	recentRows  []models.PlaceRow
	recentQuery *repository.RecentQuery

	recTotal    int64
	recRows     []models.PlaceRow
	recCountErr error
	recFindErr  error
	recQuery    *repository.RecommendationQuery
	recSort     models.SortKey
	recLimit    int
	recOffset   int
	recFindHits int
}

func (f *fakeStore) FindInBoundingBox(_ context.Context, q repository.BoundingBoxQuery) ([]models.PlaceRow, error) {
	if err := f.failTable[q.Category]; err != nil {
		return nil, err
	}
	var out []models.PlaceRow
	for _, r := range f.rows {
		if r.Category != q.Category {
			continue
		}
		if r.Latitude != nil && r.Longitude != nil && q.Box != nil && !q.Box.Contains(*r.Latitude, *r.Longitude) {
			continue
		}
		if q.Filter != nil {
			tags, _ := utils.NormalizeTags([]byte(r.Tags))
			if v, _ := tags.Get(q.Filter.Key); v != q.Filter.Value {
				continue
			}
		}
		if q.Text != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(q.Text)) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) CountByTag(_ context.Context, q repository.TagQuery) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagQuery = &q
	if f.tagErr != nil {
		return 0, f.tagErr
	}
	return f.tagTotal, nil
}

func (f *fakeStore) FindByTag(_ context.Context, q repository.TagQuery, _ models.SortKey, _, _ int) ([]models.PlaceRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagCalls++
	return f.tagRows, nil
}

func (f *fakeStore) FindRecent(_ context.Context, q repository.RecentQuery) ([]models.PlaceRow, error) {
	f.recentQuery = &q
	return f.recentRows, nil
}

func (f *fakeStore) CountRecommendations(_ context.Context, q repository.RecommendationQuery) (int64, error) {
	f.recQuery = &q
	if f.recCountErr != nil {
		return 0, f.recCountErr
	}
	return f.recTotal, nil
}

func (f *fakeStore) FindRecommendations(_ context.Context, _ repository.RecommendationQuery, sort models.SortKey, limit, offset int) ([]models.PlaceRow, error) {
	f.recFindHits++
	f.recSort, f.recLimit, f.recOffset = sort, limit, offset
	if f.recFindErr != nil {
		return nil, f.recFindErr
	}
	return f.recRows, nil
}

// fakeFetcher returns "https://img/<id>" unless the id is configured to fail
// or hang.
type fakeFetcher struct {
	mu    sync.Mutex
	calls []uint
	fail  map[uint]error
	hang  map[uint]bool
}

func (f *fakeFetcher) FetchImage(ctx context.Context, ref PlaceRef) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ref.ID)
	f.mu.Unlock()

	if f.hang[ref.ID] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := f.fail[ref.ID]; err != nil {
		return "", err
	}
	return imgURL(ref.ID), nil
}

func imgURL(id uint) string {
	return "https://img/" + strconv.FormatUint(uint64(id), 10)
}

type recordingQueue struct {
	mu   sync.Mutex
	refs []PlaceRef
}

func (q *recordingQueue) Submit(ref PlaceRef) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.refs = append(q.refs, ref)
}

func (q *recordingQueue) ids() []uint {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]uint, len(q.refs))
	for i, r := range q.refs {
		out[i] = r.ID
	}
	return out
}

func newTestService(store PlaceStore, fetcher ImageFetcher, interests InterestProvider) *PlaceService {
	svc := NewPlaceService(store, interests, NewEnricher(fetcher, time.Second, 100, nil), PageLimits{Default: 20, Max: 100})
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}
