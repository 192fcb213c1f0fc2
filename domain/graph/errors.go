package graph

import (
	"database/sql"
	"errors"

	"github.com/emergent-company/typedgraph/pkg/apperror"
	"github.com/emergent-company/typedgraph/pkg/pgutils"
)

// mapStoreError translates a driver or ORM error into the closed taxonomy.
// Errors that are already *apperror.Error pass through unchanged.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperror.ErrNotFound.WithInternal(err)
	case pgutils.IsConnectionError(err):
		return apperror.ErrIO.WithInternal(err)
	case pgutils.IsUniqueViolation(err):
		return apperror.ErrConflict.WithInternal(err)
	case pgutils.IsForeignKeyViolation(err):
		// An endpoint was deleted between resolution and insert.
		return apperror.ErrNotFound.
			WithMessage("referenced vertex does not exist").
			WithInternal(err)
	case pgutils.IsCheckViolation(err):
		return apperror.ErrValidation.
			WithMessage("from_vertex_id and to_vertex_id must differ").
			WithDetails(map[string]any{"matched": []string{"from_vertex_id and to_vertex_id must differ"}}).
			WithInternal(err)
	default:
		return apperror.ErrDatabase.WithInternal(err)
	}
}
