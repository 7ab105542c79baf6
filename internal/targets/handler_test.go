package targets

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	rows map[string]Target
}

func (m *memRepo) Get(_ context.Context, storeID string) (Target, error) {
	t, ok := m.rows[storeID]
	if !ok {
		return Target{}, ErrNotFound
	}
	return t, nil
}

func (m *memRepo) Upsert(_ context.Context, t Target) (Target, error) {
	m.rows[t.StoreID] = t
	return t, nil
}

func newTestRouter(repo *memRepo) http.Handler {
	r := chi.NewRouter()
	NewHandler(slog.Default(), NewService(repo, nil)).MountRoutes(r)
	return r
}

func TestPutTargetsStoresPointers(t *testing.T) {
	repo := &memRepo{rows: map[string]Target{}}
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodPut, "/stores/s1/targets", strings.NewReader(`{"max_labor_rate":30,"min_average_ticket":2500}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	stored := repo.rows["s1"]
	require.NotNil(t, stored.MaxLaborRate)
	assert.Equal(t, 30.0, *stored.MaxLaborRate)
	assert.Nil(t, stored.MonthlySales)
}

func TestPutTargetsRejectsOutOfRangeRate(t *testing.T) {
	router := newTestRouter(&memRepo{rows: map[string]Target{}})

	req := httptest.NewRequest(http.MethodPut, "/stores/s1/targets", strings.NewReader(`{"max_purchase_rate":140}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Contains(t, body.Errors, "max_purchase_rate")
}

func TestGetTargetsNotFound(t *testing.T) {
	router := newTestRouter(&memRepo{rows: map[string]Target{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stores/nope/targets", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLookupWithoutTargets(t *testing.T) {
	svc := NewService(&memRepo{rows: map[string]Target{}}, nil)
	got, err := svc.Lookup(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
