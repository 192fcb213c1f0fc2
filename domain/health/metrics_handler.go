package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"

	"github.com/emergent-company/typedgraph/pkg/apperror"
)

// MetricsHandler reports row counts of the graph tables.
type MetricsHandler struct {
	db bun.IDB
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(db bun.IDB) *MetricsHandler {
	return &MetricsHandler{db: db}
}

// GroupCount is the number of rows sharing one key.
type GroupCount struct {
	Key   string `bun:"key" json:"key"`
	Count int64  `bun:"count" json:"count"`
}

// GraphMetrics summarizes the stored graph.
type GraphMetrics struct {
	Vertices    int64        `json:"vertices"`
	Edges       int64        `json:"edges"`
	VertexTypes []GroupCount `json:"vertex_types"`
	EdgeLabels  []GroupCount `json:"edge_labels"`
	Timestamp   string       `json:"timestamp"`
}

// GraphMetrics returns vertex counts by type and edge counts by label.
// GET /api/metrics/graph
func (h *MetricsHandler) GraphMetrics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	vertexTypes, err := h.countBy(ctx, "vertex", "type")
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}
	edgeLabels, err := h.countBy(ctx, "edge", "label")
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}

	return c.JSON(http.StatusOK, GraphMetrics{
		Vertices:    sum(vertexTypes),
		Edges:       sum(edgeLabels),
		VertexTypes: vertexTypes,
		EdgeLabels:  edgeLabels,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *MetricsHandler) countBy(ctx context.Context, table, column string) ([]GroupCount, error) {
	counts := make([]GroupCount, 0)
	err := h.db.NewSelect().
		TableExpr("?", bun.Ident(table)).
		ColumnExpr("? AS key", bun.Ident(column)).
		ColumnExpr("count(*) AS count").
		GroupExpr("?", bun.Ident(column)).
		OrderExpr("count DESC, key ASC").
		Scan(ctx, &counts)
	return counts, err
}

func sum(counts []GroupCount) int64 {
	var n int64
	for _, c := range counts {
		n += c.Count
	}
	return n
}
