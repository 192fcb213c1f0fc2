package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/emergent-company/typedgraph/internal/config"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func serve(t *testing.T, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{"database up", nil, http.StatusOK, "healthy"},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandler(fakePinger{err: tt.pingErr}, &config.Config{})
			rec := serve(t, h.Health)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantBody, resp.Status)
			assert.Equal(t, tt.wantBody, resp.Checks["database"].Status)
		})
	}
}

func TestReady(t *testing.T) {
	rec := serve(t, newHandler(fakePinger{}, &config.Config{}).Ready)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready"`)

	rec = serve(t, newHandler(fakePinger{err: errors.New("down")}, &config.Config{}).Ready)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

func TestHealthz(t *testing.T) {
	rec := serve(t, newHandler(fakePinger{err: errors.New("down")}, &config.Config{}).Healthz)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestDebug_HiddenInProduction(t *testing.T) {
	h := newHandler(fakePinger{}, &config.Config{Environment: "production"})
	e := echo.New()
	err := h.Debug(e.NewContext(httptest.NewRequest(http.MethodGet, "/debug", nil), httptest.NewRecorder()))

	var httpErr *echo.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
}

func TestGraphMetrics(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	mock.ExpectQuery(`FROM "vertex" GROUP BY "type"`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("person", int64(2)).
			AddRow("company", int64(1)))
	mock.ExpectQuery(`FROM "edge" GROUP BY "label"`).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).
			AddRow("knows", int64(1)))

	rec := serve(t, NewMetricsHandler(db).GraphMetrics)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp GraphMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Vertices)
	assert.Equal(t, int64(1), resp.Edges)
	assert.Equal(t, "person", resp.VertexTypes[0].Key)
	require.NoError(t, mock.ExpectationsWereMet())
}
