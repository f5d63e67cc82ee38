package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagedrive/internal/common"
	"github.com/dmitrijs2005/imagedrive/internal/dbx"
	"github.com/dmitrijs2005/imagedrive/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository works with both *sql.DB and a transaction handle;
// the delete path runs the password check and the removal inside one tx.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.Record, error) {

	query :=
		`SELECT id, title, content, created_dt, updated_dt, created_id, updated_id, password
		 FROM t_board
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec := &models.Record{}
		err := rows.Scan(&rec.ID, &rec.Title, &rec.Content, &rec.CreatedAt,
			&rec.UpdatedAt, &rec.CreatedID, &rec.Key, &rec.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.Record) error {

	query :=
		`INSERT INTO t_board (title, updated_id, created_dt, password)
		 VALUES ($1, $2, CURRENT_TIMESTAMP, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, rec.Title, rec.Key, rec.PasswordHash).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetPasswordHashByKey(ctx context.Context, key string) (string, error) {

	query :=
		`SELECT password FROM t_board
		 WHERE updated_id = $1
		 ORDER BY id
		 LIMIT 1
		 `

	var hash string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return hash, nil
}

func (r *PostgresRepository) DeleteByKey(ctx context.Context, key string) error {

	query := `DELETE FROM t_board WHERE updated_id = $1`

	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
