package graph

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/uptrace/bun"

	"github.com/emergent-company/typedgraph/internal/database"
	"github.com/emergent-company/typedgraph/pkg/apperror"
	"github.com/emergent-company/typedgraph/pkg/logger"
)

// VertexStore persists vertices. Every error it returns is an *apperror.Error.
type VertexStore interface {
	InsertVertex(ctx context.Context, v *Vertex) error
	InsertVertices(ctx context.Context, vs []*Vertex) error
	GetVertexByID(ctx context.Context, id int64) (*Vertex, error)
	// GetVertexTypes returns the type of every id that exists. Missing ids
	// are simply absent from the result.
	GetVertexTypes(ctx context.Context, ids []int64) (map[int64]string, error)
	DeleteVertexByID(ctx context.Context, id int64) (int64, error)
}

// EdgeStore persists edges.
type EdgeStore interface {
	InsertEdge(ctx context.Context, e *Edge) error
	InsertEdges(ctx context.Context, es []*Edge) error
	GetEdgeByID(ctx context.Context, id int64) (*Edge, error)
	ListEdgesByVertex(ctx context.Context, vertexID int64) ([]*Edge, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	VertexStore
	EdgeStore

	// InTx runs fn against a store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// Repository is the bun implementation of Store.
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a new graph repository
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("graph.repo")),
	}
}

func (r *Repository) withDB(db bun.IDB) *Repository {
	return &Repository{db: db, log: r.log}
}

// InTx implements Store.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	tx, err := database.BeginSafeTx(ctx, r.db)
	if err != nil {
		return r.fail("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, r.withDB(tx.Tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return r.fail("commit transaction", err)
	}
	return nil
}

// InsertVertex inserts v and fills in the store-assigned columns.
func (r *Repository) InsertVertex(ctx context.Context, v *Vertex) error {
	if _, err := r.db.NewInsert().Model(v).Returning("*").Exec(ctx); err != nil {
		return r.fail("insert vertex", err)
	}
	return nil
}

// InsertVertices inserts all of vs with a single statement. vs keeps its order.
func (r *Repository) InsertVertices(ctx context.Context, vs []*Vertex) error {
	if len(vs) == 0 {
		return nil
	}
	if _, err := r.db.NewInsert().Model(&vs).Returning("*").Exec(ctx); err != nil {
		return r.fail("bulk insert vertices", err, slog.Int("count", len(vs)))
	}
	return nil
}

// GetVertexByID returns the vertex with the given id.
func (r *Repository) GetVertexByID(ctx context.Context, id int64) (*Vertex, error) {
	var v Vertex
	err := r.db.NewSelect().
		Model(&v).
		Where("v.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.failNotFound("vertex", id, err)
	}
	return &v, nil
}

// GetVertexTypes implements VertexStore with one IN query.
func (r *Repository) GetVertexTypes(ctx context.Context, ids []int64) (map[int64]string, error) {
	types := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return types, nil
	}

	var rows []vertexType
	err := r.db.NewSelect().
		Model((*Vertex)(nil)).
		Column("id", "type").
		Where("v.id IN (?)", bun.In(ids)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, r.fail("resolve vertex types", err, slog.Int("count", len(ids)))
	}

	for _, row := range rows {
		types[row.ID] = row.Type
	}
	return types, nil
}

// DeleteVertexByID deletes a vertex and returns the number of rows removed.
// Incident edges go with it through the ON DELETE CASCADE foreign keys.
func (r *Repository) DeleteVertexByID(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*Vertex)(nil)).
		Where("v.id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, r.fail("delete vertex", err, slog.Int64("id", id))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, r.fail("delete vertex", err, slog.Int64("id", id))
	}
	return affected, nil
}

// InsertEdge inserts e and fills in the store-assigned columns.
func (r *Repository) InsertEdge(ctx context.Context, e *Edge) error {
	if _, err := r.db.NewInsert().Model(e).Returning("*").Exec(ctx); err != nil {
		return r.fail("insert edge", err)
	}
	return nil
}

// InsertEdges inserts all of es with a single statement. es keeps its order.
func (r *Repository) InsertEdges(ctx context.Context, es []*Edge) error {
	if len(es) == 0 {
		return nil
	}
	if _, err := r.db.NewInsert().Model(&es).Returning("*").Exec(ctx); err != nil {
		return r.fail("bulk insert edges", err, slog.Int("count", len(es)))
	}
	return nil
}

// GetEdgeByID returns the edge with the given id.
func (r *Repository) GetEdgeByID(ctx context.Context, id int64) (*Edge, error) {
	var e Edge
	err := r.db.NewSelect().
		Model(&e).
		Where("e.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, r.failNotFound("edge", id, err)
	}
	return &e, nil
}

// ListEdgesByVertex returns every edge leaving or entering vertexID, by id.
func (r *Repository) ListEdgesByVertex(ctx context.Context, vertexID int64) ([]*Edge, error) {
	edges := make([]*Edge, 0)
	err := r.db.NewSelect().
		Model(&edges).
		Where("e.from_vertex_id = ?", vertexID).
		WhereOr("e.to_vertex_id = ?", vertexID).
		OrderExpr("e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.fail("list edges", err, slog.Int64("vertex_id", vertexID))
	}
	return edges, nil
}

// fail maps err into the taxonomy and logs anything that is not a caller error.
func (r *Repository) fail(op string, err error, attrs ...any) error {
	mapped := mapStoreError(err)
	if appErr, ok := apperror.As(mapped); ok && appErr.HTTPStatus < 500 {
		return mapped
	}
	args := append([]any{logger.Error(err)}, attrs...)
	r.log.Error("failed to "+op, args...)
	return mapped
}

func (r *Repository) failNotFound(kind string, id int64, err error) error {
	mapped := mapStoreError(err)
	if errors.Is(mapped, apperror.ErrNotFound) {
		return apperror.NewNotFound(kind, strconv.FormatInt(id, 10)).WithInternal(err)
	}
	return r.fail("get "+kind, err, slog.Int64("id", id))
}
