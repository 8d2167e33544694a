package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minwoopark/infomore/internal/database"
	"github.com/minwoopark/infomore/internal/fetch"
	"github.com/minwoopark/infomore/internal/models"
	"github.com/minwoopark/infomore/internal/naver"
)

// memStore is an in-memory reconciler.Store for end-to-end runs. All calls
// arrive from the single pipeline goroutine, so no locking is needed.
type memStore struct {
	nextID     int64
	categories map[string]*memCategory
	products   map[string]*database.ProductRow
	productIDs map[string]int64
	snapshots  []*database.SnapshotRow
}

type memCategory struct {
	id       int64
	name     string
	level    int
	parentID *int64
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[string]*memCategory),
		products:   make(map[string]*database.ProductRow),
		productIDs: make(map[string]int64),
	}
}

func (s *memStore) UpsertCategory(_ context.Context, externalID, name string, level int, parentID *int64) (int64, error) {
	if c, ok := s.categories[externalID]; ok {
		c.name, c.level, c.parentID = name, level, parentID
		return c.id, nil
	}
	s.nextID++
	s.categories[externalID] = &memCategory{id: s.nextID, name: name, level: level, parentID: parentID}
	return s.nextID, nil
}

func (s *memStore) CategoryIDByExternalID(_ context.Context, externalID string) (int64, bool, error) {
	c, ok := s.categories[externalID]
	if !ok {
		return 0, false, nil
	}
	return c.id, true, nil
}

func (s *memStore) UpsertProduct(_ context.Context, p *database.ProductRow) (int64, bool, error) {
	cp := *p
	if id, ok := s.productIDs[p.ExternalID]; ok {
		s.products[p.ExternalID] = &cp
		return id, false, nil
	}
	s.nextID++
	s.productIDs[p.ExternalID] = s.nextID
	s.products[p.ExternalID] = &cp
	return s.nextID, true, nil
}

func (s *memStore) ProductIDByExternalID(_ context.Context, externalID string) (int64, bool, error) {
	id, ok := s.productIDs[externalID]
	if !ok {
		return 0, false, nil
	}
	return id, true, nil
}

func (s *memStore) InsertSnapshot(_ context.Context, snap *database.SnapshotRow) error {
	cp := *snap
	s.snapshots = append(s.snapshots, &cp)
	return nil
}

// capturePublisher records published events.
type capturePublisher struct {
	detected  []models.ProductRecord
	completed []RunSummary
}

func (p *capturePublisher) ProductDetected(_ context.Context, rec models.ProductRecord) {
	p.detected = append(p.detected, rec)
}

func (p *capturePublisher) RunCompleted(_ context.Context, summary RunSummary) {
	p.completed = append(p.completed, summary)
}

const fixtureMajorListing = `{
	"categories": [
		{
			"id": "A1",
			"name": "Elec",
			"children": [
				{"id": "M1", "name": "Phones", "isLeaf": false},
				{"id": "M2", "name": "Cables", "isLeaf": true}
			]
		}
	]
}`

const fixtureSubListing = `{"children": [{"id": "S1", "name": "Cases"}]}`

const fixtureCasesPage = `<ul><div class="basicProductCard_view_type_grid2__vKr1n">
	<a class="basicProductCard_link__urzND" href="/p/P1" aria-labelledby="b1"
	   data-shp-contents-rank="1"
	   data-shp-contents-dtl='[{"key":"prod_nm","value":"Clear Case"},{"key":"chnl_prod_no","value":"P1"},{"key":"price","value":"9,900"}]'></a>
	<div id="b1">
		<div><span class="productCardMallLink_mall_name__5oWPw">CaseShop</span></div>
	</div>
</div></ul>`

func fixtureSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, fixtureMajorListing)
	})
	mux.HandleFunc("/categories/M1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, fixtureSubListing)
	})
	mux.HandleFunc("/category/S1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, fixtureCasesPage)
	})
	// Product pages of the other nodes carry no cards.
	mux.HandleFunc("/category/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<ul></ul>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testRunner(store *memStore, server *httptest.Server, events EventPublisher) *Runner {
	profile := &naver.Profile{
		CategoryListURL: server.URL + "/categories",
		BaseURL:         server.URL + "/category",
	}
	opts := fetch.Options{
		Workers:    4,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRunner(store, profile, opts, events, logger)
}

func TestRunOnceCrawlsFixtureTree(t *testing.T) {
	store := newMemStore()
	server := fixtureSite(t)
	events := &capturePublisher{}
	runner := testRunner(store, server, events)

	summary, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)

	// Category rows with the full parent chain.
	require.Len(t, store.categories, 4)
	major := store.categories["A1"]
	medium := store.categories["M1"]
	leafMedium := store.categories["M2"]
	sub := store.categories["S1"]
	require.NotNil(t, major)
	require.NotNil(t, medium)
	require.NotNil(t, leafMedium)
	require.NotNil(t, sub)

	assert.Equal(t, 1, major.level)
	assert.Nil(t, major.parentID)
	assert.Equal(t, 2, medium.level)
	require.NotNil(t, medium.parentID)
	assert.Equal(t, major.id, *medium.parentID)
	assert.Equal(t, 3, sub.level)
	require.NotNil(t, sub.parentID)
	assert.Equal(t, medium.id, *sub.parentID)

	// One product, filed under the sub category.
	require.Len(t, store.products, 1)
	p1 := store.products["P1"]
	require.NotNil(t, p1)
	assert.Equal(t, "Clear Case", p1.Name)
	assert.Equal(t, 9900, p1.Price)
	assert.Equal(t, sub.id, p1.CategoryID)
	assert.Equal(t, "CaseShop", p1.MallName)
	assert.Equal(t, 9900, p1.OriginalPrice, "original price falls back to price")

	// One snapshot at the run's fixed time.
	require.Len(t, store.snapshots, 1)
	assert.Equal(t, summary.SnapshotTime, store.snapshots[0].SnapshotTime)
	assert.Equal(t, store.productIDs["P1"], store.snapshots[0].ProductID)
	assert.Equal(t, summary.SnapshotTime, summary.SnapshotTime.Truncate(time.Hour))

	// Counters and events.
	assert.Equal(t, 4, summary.Stats.CategoriesUpserted)
	assert.Equal(t, 1, summary.Stats.ProductsUpserted)
	assert.Equal(t, 1, summary.Stats.ProductsInserted)
	assert.Equal(t, 0, summary.Stats.ProductsDropped)
	assert.Equal(t, 1, summary.Stats.SnapshotsWritten)
	assert.Zero(t, summary.FetchFailures)

	require.Len(t, events.detected, 1)
	assert.Equal(t, "P1", events.detected[0].ExternalID)
	require.Len(t, events.completed, 1)

	assert.False(t, runner.Running())
	require.NotNil(t, runner.LastRun())
	assert.Equal(t, *summary, *runner.LastRun())
}

func TestRunOnceIsIdempotentAcrossRuns(t *testing.T) {
	store := newMemStore()
	server := fixtureSite(t)
	runner := testRunner(store, server, nil)

	_, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	summary, err := runner.RunOnce(context.Background())
	require.NoError(t, err)

	// Re-crawl updates in place: same row counts for categories and
	// products, one more snapshot for the second observation.
	assert.Len(t, store.categories, 4)
	assert.Len(t, store.products, 1)
	assert.Len(t, store.snapshots, 2)
	assert.Equal(t, 0, summary.Stats.ProductsInserted, "P1 already known")
	assert.Equal(t, 1, summary.Stats.ProductsUpserted)
}

func TestRunOnceSurvivesFetchFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store := newMemStore()
	runner := testRunner(store, server, nil)

	summary, err := runner.RunOnce(context.Background())
	require.NoError(t, err, "fetch failures never fail the run itself")
	assert.Equal(t, int64(1), summary.FetchFailures)
	assert.Empty(t, store.categories)
}
