package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/merchants/:id/offers", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	before := counterValue(t, httpRequests.WithLabelValues(http.MethodGet, "/merchants/:id/offers", "200"))

	for _, id := range []string{"1", "2"} {
		req := httptest.NewRequest(http.MethodGet, "/merchants/"+id+"/offers", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	after := counterValue(t, httpRequests.WithLabelValues(http.MethodGet, "/merchants/:id/offers", "200"))
	assert.Equal(t, before+2, after)
}

func TestMiddlewareRecordsHTTPErrorStatus(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusConflict, "taken")
	})

	before := counterValue(t, httpRequests.WithLabelValues(http.MethodGet, "/boom", "409"))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, before+1, counterValue(t, httpRequests.WithLabelValues(http.MethodGet, "/boom", "409")))
}

func TestRecordPurchase(t *testing.T) {
	before := counterValue(t, purchases.WithLabelValues("peer", "ok"))
	RecordPurchase("peer", "ok")
	assert.Equal(t, before+1, counterValue(t, purchases.WithLabelValues("peer", "ok")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
