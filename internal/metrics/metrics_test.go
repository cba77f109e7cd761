package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFetch_CountsResults(t *testing.T) {
	okBefore := testutil.ToFloat64(FetchTotal.WithLabelValues("test", ResultOK))
	errBefore := testutil.ToFloat64(FetchTotal.WithLabelValues("test", ResultError))

	ObserveFetch("test", 10*time.Millisecond, nil)
	ObserveFetch("test", 20*time.Millisecond, errors.New("boom"))
	ObserveFetch("test", 30*time.Millisecond, errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(FetchTotal.WithLabelValues("test", ResultOK)))
	assert.Equal(t, errBefore+2, testutil.ToFloat64(FetchTotal.WithLabelValues("test", ResultError)))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ActiveViews.Set(3)
	ViewMutations.WithLabelValues("toggle_sort").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "countrytable_views_active 3")
	assert.Contains(t, body, `countrytable_views_mutations_total{op="toggle_sort"}`)
}
