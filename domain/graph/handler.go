package graph

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/emergent-company/typedgraph/pkg/apperror"
)

// Handler handles HTTP requests for graph operations.
type Handler struct {
	svc *Service
}

// NewHandler creates a new graph handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, apperror.NewBadRequest("invalid " + name)
	}
	return id, nil
}

// CreateVertex creates a single vertex.
// POST /api/graph/vertices
func (h *Handler) CreateVertex(c echo.Context) error {
	var req CreateVertexRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	v, err := h.svc.CreateVertex(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

// CreateVertices creates a batch of vertices atomically.
// POST /api/graph/vertices/bulk
func (h *Handler) CreateVertices(c echo.Context) error {
	var req BulkCreateVerticesRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	vs, err := h.svc.CreateVertices(c.Request().Context(), req.Items)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, VerticesResponse{Items: vs})
}

// GetVertex returns a vertex by id.
// GET /api/graph/vertices/:id
func (h *Handler) GetVertex(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	v, err := h.svc.GetVertexByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// DeleteVertex deletes a vertex and its incident edges.
// DELETE /api/graph/vertices/:id
func (h *Handler) DeleteVertex(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	affected, err := h.svc.DeleteVertexByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DeleteResponse{Affected: affected})
}

// ListVertexEdges returns the edges incident to a vertex.
// GET /api/graph/vertices/:id/edges
func (h *Handler) ListVertexEdges(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	edges, err := h.svc.ListEdgesByVertex(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, EdgesResponse{Items: edges})
}

// CreateEdge creates a single edge.
// POST /api/graph/edges
func (h *Handler) CreateEdge(c echo.Context) error {
	var req CreateEdgeRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	e, err := h.svc.CreateEdge(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, e)
}

// CreateEdges creates a batch of edges atomically.
// POST /api/graph/edges/bulk
func (h *Handler) CreateEdges(c echo.Context) error {
	var req BulkCreateEdgesRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	es, err := h.svc.CreateEdges(c.Request().Context(), req.Items)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, EdgesResponse{Items: es})
}

// GetEdge returns an edge by id.
// GET /api/graph/edges/:id
func (h *Handler) GetEdge(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	e, err := h.svc.GetEdgeByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}
