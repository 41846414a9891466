package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/vehicle-discovery/internal/auth"
	"github.com/lk2023060901/vehicle-discovery/internal/auth/middleware"
	listingbiz "github.com/lk2023060901/vehicle-discovery/internal/listing/biz"
	listingtypes "github.com/lk2023060901/vehicle-discovery/internal/listing/types"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/database"
	apperrors "github.com/lk2023060901/vehicle-discovery/internal/pkg/errors"
	"github.com/lk2023060901/vehicle-discovery/internal/pkg/logger"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/biz"
	"github.com/lk2023060901/vehicle-discovery/internal/savedsearch/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listingStore struct {
	mu       sync.Mutex
	listings []*listingtypes.Listing
}

func (s *listingStore) Find(_ context.Context, p listingbiz.StorePredicate) ([]*listingtypes.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*listingtypes.Listing
	for _, l := range s.listings {
		if p.Matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *listingStore) add(l *listingtypes.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings = append(s.listings, l)
}

type testEnv struct {
	router   *gin.Engine
	db       *database.DB
	listings *listingStore
	tokens   map[string]string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.New(database.SQLiteConfig(filepath.Join(t.TempDir(), "api.db")), logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(&data.SavedSearchPO{}))

	store := &listingStore{}
	repo := data.NewSavedSearchRepo(db)
	search := listingbiz.NewSearchUseCase(store, nil, nil)
	svc := NewSavedSearchService(
		biz.NewRegistry(repo, nil),
		biz.NewDetector(repo, search, nil, biz.DetectorOptions{}, nil),
		logger.NewNop(),
	)

	jwtManager := auth.NewJWTManager("secret", "test", time.Hour)
	tokens := map[string]string{}
	for _, p := range []string{"alice", "bob"} {
		tokens[p], err = jwtManager.GenerateToken(p)
		require.NoError(t, err)
	}

	r := gin.New()
	noLimit := func(c *gin.Context) { c.Next() }
	svc.RegisterRoutes(r.Group("/api/v1"), middleware.JWTAuth(jwtManager, logger.NewNop()), noLimit)

	return &testEnv{router: r, db: db, listings: store, tokens: tokens}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, principal string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if principal != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[principal])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w.Code, env
}

type view struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Criteria      map[string][]string `json:"criteria"`
	LastCheckedAt time.Time           `json:"last_checked_at"`
	NewMatchCount int                 `json:"new_match_count"`
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestSavedSearches_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/api/v1/saved-searches", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/saved-searches", "", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSavedSearches_CreateAndQuota(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, http.MethodPost, "/api/v1/saved-searches", "alice", map[string]interface{}{
		"name":     "Cheap diesel",
		"criteria": map[string]interface{}{"fuel": "DIESEL", "price_max": 15000, "options": []string{"ABS", "ABS"}, "bogus": "x"},
	})
	require.Equal(t, http.StatusCreated, status)
	created := decode[view](t, body)
	assert.Equal(t, "Cheap diesel", created.Name)
	assert.Equal(t, []string{"diesel"}, created.Criteria["fuel"])
	assert.Equal(t, []string{"15000"}, created.Criteria["price_max"])
	assert.Equal(t, []string{"ABS"}, created.Criteria["options"])
	assert.NotContains(t, created.Criteria, "bogus")

	for i := 0; i < 2; i++ {
		status, _ = env.do(t, http.MethodPost, "/api/v1/saved-searches", "alice", map[string]interface{}{"criteria": map[string]string{}})
		require.Equal(t, http.StatusCreated, status)
	}

	status, body = env.do(t, http.MethodPost, "/api/v1/saved-searches", "alice", map[string]interface{}{"name": "too many"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, apperrors.ErrSavedSearchQuota, body.Code)

	status, body = env.do(t, http.MethodGet, "/api/v1/saved-searches", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]view](t, body)
	require.Len(t, list, 3)
	assert.Equal(t, created.ID, list[0].ID)

	status, body = env.do(t, http.MethodGet, "/api/v1/saved-searches", "bob", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[[]view](t, body))
}

func TestSavedSearches_CreateBadBody(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/api/v1/saved-searches", "alice", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSavedSearches_Rename(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/api/v1/saved-searches", "alice", map[string]interface{}{"name": "old"})
	created := decode[view](t, body)

	status, body := env.do(t, http.MethodPatch, "/api/v1/saved-searches/"+created.ID, "alice", map[string]string{"name": "new"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "new", decode[view](t, body).Name)

	status, body = env.do(t, http.MethodPatch, "/api/v1/saved-searches/"+created.ID, "bob", map[string]string{"name": "stolen"})
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{}`, string(body.Data))

	status, body = env.do(t, http.MethodPatch, "/api/v1/saved-searches/"+created.ID, "alice", map[string]string{"name": " "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, apperrors.ErrSavedSearchInvalidInput, body.Code)
}

func TestSavedSearches_Check(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/api/v1/saved-searches", "alice", map[string]interface{}{
		"criteria": map[string]string{"category": "moto"},
	})
	created := decode[view](t, body)

	env.listings.add(&listingtypes.Listing{ID: 1, Status: listingtypes.StatusActive, Mode: listingtypes.ModeSale,
		Category: listingtypes.CategoryMoto, CreatedAt: created.LastCheckedAt.Add(time.Microsecond)})
	env.listings.add(&listingtypes.Listing{ID: 2, Status: listingtypes.StatusActive, Mode: listingtypes.ModeSale,
		Category: listingtypes.CategoryAuto, CreatedAt: created.LastCheckedAt.Add(time.Microsecond)})

	path := "/api/v1/saved-searches/" + created.ID + "/check"

	status, body := env.do(t, http.MethodPost, path, "alice", nil)
	require.Equal(t, http.StatusOK, status)
	first := decode[map[string]interface{}](t, body)
	assert.EqualValues(t, 1, first["new_count"])
	assert.Contains(t, first, "last_checked_at")

	status, body = env.do(t, http.MethodPost, path, "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, decode[map[string]interface{}](t, body)["new_count"])

	status, body = env.do(t, http.MethodPost, path, "bob", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, apperrors.ErrSavedSearchNotFound, body.Code)
}

func TestSavedSearches_Delete(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.do(t, http.MethodPost, "/api/v1/saved-searches", "alice", map[string]interface{}{"name": "bye"})
	created := decode[view](t, body)

	status, _ := env.do(t, http.MethodDelete, "/api/v1/saved-searches/"+created.ID, "bob", nil)
	assert.Equal(t, http.StatusOK, status)
	_, body = env.do(t, http.MethodGet, "/api/v1/saved-searches", "alice", nil)
	assert.Len(t, decode[[]view](t, body), 1)

	for i := 0; i < 2; i++ {
		status, _ = env.do(t, http.MethodDelete, "/api/v1/saved-searches/"+created.ID, "alice", nil)
		assert.Equal(t, http.StatusOK, status)
	}
	_, body = env.do(t, http.MethodGet, "/api/v1/saved-searches", "alice", nil)
	assert.Empty(t, decode[[]view](t, body))
}

func TestSavedSearches_StoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Close())

	status, body := env.do(t, http.MethodGet, "/api/v1/saved-searches", "alice", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, apperrors.ErrSearchStoreUnavailable, body.Code)
}
