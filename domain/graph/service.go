package graph

import (
	"context"
	"log/slog"
	"time"

	"github.com/emergent-company/typedgraph/internal/config"
	"github.com/emergent-company/typedgraph/pkg/logger"
)

const (
	opCreateVertex      = "create_vertex"
	opCreateVertices    = "create_vertices"
	opGetVertex         = "get_vertex"
	opDeleteVertex      = "delete_vertex"
	opCreateEdge        = "create_edge"
	opCreateEdges       = "create_edges"
	opGetEdge           = "get_edge"
	opListVertexEdges   = "list_vertex_edges"
	defaultMaxBatchSize = 1000
)

// Service implements the graph write and lookup operations.
//
// Every descriptor is validated before the store is touched. Batch operations
// run inside one transaction and either persist every item or none.
type Service struct {
	store        Store
	log          *slog.Logger
	maxBatchSize int
}

// NewService creates a new graph service.
func NewService(store Store, cfg *config.Config, log *slog.Logger) *Service {
	maxBatch := defaultMaxBatchSize
	if cfg != nil && cfg.Graph.MaxBatchSize > 0 {
		maxBatch = cfg.Graph.MaxBatchSize
	}
	return &Service{
		store:        store,
		log:          log.With(logger.Scope("graph.svc")),
		maxBatchSize: maxBatch,
	}
}

// CreateVertex validates and persists a single vertex.
func (s *Service) CreateVertex(ctx context.Context, req *CreateVertexRequest) (_ *Vertex, err error) {
	defer func(start time.Time) { observe(opCreateVertex, start, err) }(time.Now())

	if err := validateVertex(req).Err(); err != nil {
		return nil, err
	}

	v := req.toVertex()
	if err := s.store.InsertVertex(ctx, v); err != nil {
		return nil, err
	}

	s.log.Debug("vertex created", slog.Int64("id", v.ID), slog.String("type", v.Type))
	return v, nil
}

// CreateVertices persists every vertex in reqs or none of them. The result
// has the same order as reqs.
func (s *Service) CreateVertices(ctx context.Context, reqs []CreateVertexRequest) (_ []*Vertex, err error) {
	defer func(start time.Time) { observe(opCreateVertices, start, err) }(time.Now())

	if len(reqs) == 0 {
		return []*Vertex{}, nil
	}
	if err := validateBatchSize(len(reqs), s.maxBatchSize); err != nil {
		return nil, err
	}
	if err := validateVertices(reqs).Err(); err != nil {
		return nil, err
	}
	BatchSize.WithLabelValues(opCreateVertices).Observe(float64(len(reqs)))

	vertices := make([]*Vertex, len(reqs))
	for i := range reqs {
		vertices[i] = reqs[i].toVertex()
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx Store) error {
		return tx.InsertVertices(ctx, vertices)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("vertices created", slog.Int("count", len(vertices)))
	return vertices, nil
}

// GetVertexByID returns the vertex with the given id.
func (s *Service) GetVertexByID(ctx context.Context, id int64) (_ *Vertex, err error) {
	defer func(start time.Time) { observe(opGetVertex, start, err) }(time.Now())

	if err := validateID("id", id); err != nil {
		return nil, err
	}
	return s.store.GetVertexByID(ctx, id)
}

// DeleteVertexByID removes a vertex and every edge incident to it. It returns
// the number of vertices removed, 0 when id did not exist.
func (s *Service) DeleteVertexByID(ctx context.Context, id int64) (_ int64, err error) {
	defer func(start time.Time) { observe(opDeleteVertex, start, err) }(time.Now())

	if err := validateID("id", id); err != nil {
		return 0, err
	}

	affected, err := s.store.DeleteVertexByID(ctx, id)
	if err != nil {
		return 0, err
	}

	s.log.Debug("vertex deleted", slog.Int64("id", id), slog.Int64("affected", affected))
	return affected, nil
}

// CreateEdge resolves both endpoint types and persists the edge with a copy
// of them. Nothing is written if either endpoint cannot be resolved.
func (s *Service) CreateEdge(ctx context.Context, req *CreateEdgeRequest) (_ *Edge, err error) {
	defer func(start time.Time) { observe(opCreateEdge, start, err) }(time.Now())

	if err := validateEdge(req).Err(); err != nil {
		return nil, err
	}

	resolver := NewTypeResolver(s.store)
	fromType, err := resolver.Resolve(ctx, req.FromVertexID)
	if err != nil {
		return nil, err
	}
	toType, err := resolver.Resolve(ctx, req.ToVertexID)
	if err != nil {
		return nil, err
	}

	e := req.toEdge(fromType, toType)
	if err := s.store.InsertEdge(ctx, e); err != nil {
		return nil, err
	}

	s.log.Debug("edge created",
		slog.Int64("id", e.ID),
		slog.Int64("from", e.FromVertexID),
		slog.Int64("to", e.ToVertexID),
		slog.String("label", e.Label),
	)
	return e, nil
}

// CreateEdges persists every edge in reqs or none of them. Endpoint types are
// resolved once per distinct vertex id, in the same transaction as the insert.
func (s *Service) CreateEdges(ctx context.Context, reqs []CreateEdgeRequest) (_ []*Edge, err error) {
	defer func(start time.Time) { observe(opCreateEdges, start, err) }(time.Now())

	if len(reqs) == 0 {
		return []*Edge{}, nil
	}
	if err := validateBatchSize(len(reqs), s.maxBatchSize); err != nil {
		return nil, err
	}
	if err := validateEdges(reqs).Err(); err != nil {
		return nil, err
	}
	BatchSize.WithLabelValues(opCreateEdges).Observe(float64(len(reqs)))

	var edges []*Edge
	err = s.store.InTx(ctx, func(ctx context.Context, tx Store) error {
		types, err := NewTypeResolver(tx).ResolveAll(ctx, endpointIDs(reqs))
		if err != nil {
			return err
		}

		edges = make([]*Edge, len(reqs))
		for i := range reqs {
			edges[i] = reqs[i].toEdge(types[reqs[i].FromVertexID], types[reqs[i].ToVertexID])
		}
		return tx.InsertEdges(ctx, edges)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("edges created", slog.Int("count", len(edges)))
	return edges, nil
}

// GetEdgeByID returns the edge with the given id.
func (s *Service) GetEdgeByID(ctx context.Context, id int64) (_ *Edge, err error) {
	defer func(start time.Time) { observe(opGetEdge, start, err) }(time.Now())

	if err := validateID("id", id); err != nil {
		return nil, err
	}
	return s.store.GetEdgeByID(ctx, id)
}

// ListEdgesByVertex returns the edges leaving or entering vertexID.
func (s *Service) ListEdgesByVertex(ctx context.Context, vertexID int64) (_ []*Edge, err error) {
	defer func(start time.Time) { observe(opListVertexEdges, start, err) }(time.Now())

	if err := validateID("vertex_id", vertexID); err != nil {
		return nil, err
	}
	return s.store.ListEdgesByVertex(ctx, vertexID)
}
