// Package records persists metadata rows in the t_board table.
package records

import (
	"context"

	"github.com/dmitrijs2005/imagedrive/internal/server/models"
)

type Repository interface {
	// SelectAll returns every row ordered by id.
	SelectAll(ctx context.Context) ([]*models.Record, error)

	// Insert stores a new row. CreatedAt is set by the database.
	Insert(ctx context.Context, r *models.Record) error

	// GetPasswordHashByKey returns the stored password hash for key, or
	// common.ErrNotFound.
	GetPasswordHashByKey(ctx context.Context, key string) (string, error)

	// DeleteByKey removes all rows registered under key.
	DeleteByKey(ctx context.Context, key string) error
}
