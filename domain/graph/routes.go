package graph

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes registers all graph routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/graph")

	vertices := g.Group("/vertices")
	vertices.POST("", h.CreateVertex)
	vertices.POST("/bulk", h.CreateVertices)
	vertices.GET("/:id", h.GetVertex)
	vertices.DELETE("/:id", h.DeleteVertex)
	vertices.GET("/:id/edges", h.ListVertexEdges)

	edges := g.Group("/edges")
	edges.POST("", h.CreateEdge)
	edges.POST("/bulk", h.CreateEdges)
	edges.GET("/:id", h.GetEdge)
}
