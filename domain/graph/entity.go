package graph

import (
	"time"

	"github.com/uptrace/bun"
)

// Vertex is a named, typed node of the graph.
// ID and the timestamps are assigned by the database.
type Vertex struct {
	bun.BaseModel `bun:"table:vertex,alias:v"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
	Type string `bun:"type,notnull" json:"type"`

	CreatedBy string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedBy string    `bun:"updated_by,notnull" json:"updated_by"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Edge is a directed, labeled relationship between two vertices.
//
// FromVertexType and ToVertexType are copies of the endpoint types taken when
// the edge was created. They are never refreshed when an endpoint's type changes.
type Edge struct {
	bun.BaseModel `bun:"table:edge,alias:e"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	FromVertexID   int64  `bun:"from_vertex_id,notnull" json:"from_vertex_id"`
	FromVertexType string `bun:"from_vertex_type,notnull" json:"from_vertex_type"`
	ToVertexID     int64  `bun:"to_vertex_id,notnull" json:"to_vertex_id"`
	ToVertexType   string `bun:"to_vertex_type,notnull" json:"to_vertex_type"`
	Label          string `bun:"label,notnull" json:"label"`

	CreatedBy string    `bun:"created_by,notnull" json:"created_by"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedBy string    `bun:"updated_by,notnull" json:"updated_by"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// vertexType is the projection used to resolve endpoint types in bulk.
type vertexType struct {
	ID   int64  `bun:"id"`
	Type string `bun:"type"`
}
