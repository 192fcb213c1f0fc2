package graph

// CreateVertexRequest describes a vertex to create.
type CreateVertexRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedBy string `json:"created_by"`
}

func (r *CreateVertexRequest) toVertex() *Vertex {
	return &Vertex{
		Name:      r.Name,
		Type:      r.Type,
		CreatedBy: r.CreatedBy,
		UpdatedBy: r.CreatedBy,
	}
}

// CreateEdgeRequest describes an edge to create. Endpoint types are not part
// of the request; they are resolved from the referenced vertices.
type CreateEdgeRequest struct {
	FromVertexID int64  `json:"from_vertex_id"`
	ToVertexID   int64  `json:"to_vertex_id"`
	Label        string `json:"label"`
	CreatedBy    string `json:"created_by"`
}

func (r *CreateEdgeRequest) toEdge(fromType, toType string) *Edge {
	return &Edge{
		FromVertexID:   r.FromVertexID,
		FromVertexType: fromType,
		ToVertexID:     r.ToVertexID,
		ToVertexType:   toType,
		Label:          r.Label,
		CreatedBy:      r.CreatedBy,
		UpdatedBy:      r.CreatedBy,
	}
}

// BulkCreateVerticesRequest is the body of POST /api/graph/vertices/bulk.
type BulkCreateVerticesRequest struct {
	Items []CreateVertexRequest `json:"items"`
}

// BulkCreateEdgesRequest is the body of POST /api/graph/edges/bulk.
type BulkCreateEdgesRequest struct {
	Items []CreateEdgeRequest `json:"items"`
}

// VerticesResponse wraps a list of vertices.
type VerticesResponse struct {
	Items []*Vertex `json:"items"`
}

// EdgesResponse wraps a list of edges.
type EdgesResponse struct {
	Items []*Edge `json:"items"`
}

// DeleteResponse reports how many rows a delete removed.
type DeleteResponse struct {
	Affected int64 `json:"affected"`
}
