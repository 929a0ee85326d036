package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dedup/internal/dedup"
	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeStore serves a fixed lead set.
type fakeStore struct {
	store.Store

	leads   []model.Lead
	listErr error
}

func (f *fakeStore) ListLeads(_ context.Context, _ store.LeadFilter) ([]model.Lead, error) {
	return f.leads, f.listErr
}

func newTestServer(leads []model.Lead) *Server {
	return New(&fakeStore{leads: leads}, dedup.DefaultConfig())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDuplicates(t *testing.T) {
	srv := newTestServer([]model.Lead{
		{ID: "1", Name: "Maria Silva", Email: "m@x.com"},
		{ID: "2", Name: "Maria S. Silva", Email: "m@x.com"},
		{ID: "3", Name: "Unrelated Person", Email: "u@z.com"},
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/duplicates", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp duplicatesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Groups, 1)
	assert.Equal(t, 1, resp.Stats.ExactMatches)
	assert.ElementsMatch(t, []string{"1", "2"}, resp.Groups[0].MemberIDs())
}

func TestDuplicates_InvalidMin(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/duplicates?min=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/duplicates?min=999", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDuplicates_StoreError(t *testing.T) {
	srv := New(&fakeStore{listErr: assert.AnError}, dedup.DefaultConfig())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/duplicates", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCheck(t *testing.T) {
	srv := newTestServer([]model.Lead{
		{ID: "1", Name: "Maria Silva", Email: "m@x.com"},
	})

	body := `{"fields":{"email":"M@X.COM"}}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		IsDuplicate bool `json:"is_duplicate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.IsDuplicate)
}

func TestCheck_ExcludeSelf(t *testing.T) {
	srv := newTestServer([]model.Lead{
		{ID: "1", Name: "Maria Silva", Email: "m@x.com"},
	})

	body := `{"fields":{"email":"m@x.com"},"exclude_id":"1"}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		IsDuplicate bool `json:"is_duplicate"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.IsDuplicate)
}

func TestCheck_BadRequests(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(`{"fields":{}}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
