package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentHandler_UsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(InstrumentHandler)
	r.HandleFunc("/api/v1/rentals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/rentals/{id}", "404"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rentals/12", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/v1/rentals/{id}", "404")))
}

func TestRecordCompensationFailure(t *testing.T) {
	before := testutil.ToFloat64(compensationFailures.WithLabelValues("create_rental", "insert_header"))
	RecordCompensationFailure("create_rental", "insert_header")
	assert.Equal(t, before+1, testutil.ToFloat64(compensationFailures.WithLabelValues("create_rental", "insert_header")))
}
