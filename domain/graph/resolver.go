package graph

import (
	"context"
	"fmt"

	"github.com/emergent-company/typedgraph/pkg/apperror"
)

// VertexTypeReader is the part of VertexStore the resolver needs.
type VertexTypeReader interface {
	GetVertexByID(ctx context.Context, id int64) (*Vertex, error)
	GetVertexTypes(ctx context.Context, ids []int64) (map[int64]string, error)
}

// TypeResolver looks up the current type of the vertices an edge refers to.
type TypeResolver struct {
	vertices VertexTypeReader
}

// NewTypeResolver creates a resolver reading through vertices.
func NewTypeResolver(vertices VertexTypeReader) *TypeResolver {
	return &TypeResolver{vertices: vertices}
}

// Resolve returns the type of vertex id with GetVertexByID semantics:
// validation_error for id < 1, not_found when the vertex does not exist.
func (r *TypeResolver) Resolve(ctx context.Context, id int64) (string, error) {
	if err := validateID("id", id); err != nil {
		return "", err
	}
	v, err := r.vertices.GetVertexByID(ctx, id)
	if err != nil {
		return "", err
	}
	return v.Type, nil
}

// ResolveAll resolves every distinct id in ids with a single lookup. If any id
// does not exist the whole call fails with a validation_error listing them all.
func (r *TypeResolver) ResolveAll(ctx context.Context, ids []int64) (map[int64]string, error) {
	unique := uniqueIDs(ids)
	types, err := r.vertices.GetVertexTypes(ctx, unique)
	if err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range unique {
		if _, ok := types[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.ErrValidation.
			WithMessage(fmt.Sprintf("%d referenced vertices do not exist", len(missing))).
			WithDetails(map[string]any{"missing_vertex_ids": missing})
	}
	return types, nil
}

// uniqueIDs drops duplicates from ids, keeping first-seen order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// endpointIDs lists both endpoints of every request, in request order.
func endpointIDs(reqs []CreateEdgeRequest) []int64 {
	ids := make([]int64, 0, 2*len(reqs))
	for _, req := range reqs {
		ids = append(ids, req.FromVertexID, req.ToVertexID)
	}
	return ids
}
