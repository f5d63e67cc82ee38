// Package api implements the metadata endpoint: a single HTTP POST route
// multiplexed by a request-kind field, answering the envelope format the
// deployed clients expect.
package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagedrive/internal/common"
	"github.com/dmitrijs2005/imagedrive/internal/dbx"
	"github.com/dmitrijs2005/imagedrive/internal/server/hashing"
	"github.com/dmitrijs2005/imagedrive/internal/server/models"
	"github.com/dmitrijs2005/imagedrive/internal/server/repositories/records"
)

const dateLayout = "2006-01-02"

// RepositoryFactory binds a records repository to a DB handle. Passing the
// handle in lets DeleteRecord run its password check and the row removal on
// one transaction.
type RepositoryFactory func(db dbx.DBTX) records.Repository

// BoardService owns the t_board operations behind the endpoint.
type BoardService struct {
	db      *sql.DB
	newRepo RepositoryFactory
}

func NewBoardService(db *sql.DB, newRepo RepositoryFactory) *BoardService {
	return &BoardService{db: db, newRepo: newRepo}
}

// sanitize flattens records into positional rows in table column order with
// the password column stripped. Clients address columns by index, so the
// order is part of the wire contract.
func sanitize(recs []*models.Record) [][]any {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		row := make([]any, 7)
		row[0] = r.ID
		row[1] = r.Title
		if r.Content.Valid {
			row[2] = r.Content.String
		}
		row[3] = r.CreatedAt.Format(dateLayout)
		if r.UpdatedAt.Valid {
			row[4] = r.UpdatedAt.Time.Format(dateLayout)
		}
		if r.CreatedID.Valid {
			row[5] = r.CreatedID.String
		}
		row[6] = r.Key
		rows = append(rows, row)
	}
	return rows
}

// ListRows returns every metadata row, password stripped, ordered by id.
func (s *BoardService) ListRows(ctx context.Context) ([][]any, error) {
	recs, err := s.newRepo(s.db).SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	return sanitize(recs), nil
}

// CreateRecord hashes the delete password, stores the row and returns the
// refreshed listing.
func (s *BoardService) CreateRecord(ctx context.Context, title, key, password string) ([][]any, error) {

	rec := &models.Record{
		Title:        title,
		Key:          key,
		PasswordHash: hashing.Hash(password),
	}

	if err := s.newRepo(s.db).Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("error creating record: %w", err)
	}

	return s.ListRows(ctx)
}

// DeleteRecord verifies the password and removes the rows for key inside one
// transaction. It returns false when the password does not match or no row
// exists for key; only a true result means the row is gone.
func (s *BoardService) DeleteRecord(ctx context.Context, key, password string) (bool, error) {

	var authorized bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)

		stored, err := repo.GetPasswordHashByKey(ctx, key)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			return err
		}

		ok, err := hashing.Verify(stored, password)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		if err := repo.DeleteByKey(ctx, key); err != nil {
			return err
		}

		authorized = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("error deleting record: %w", err)
	}

	return authorized, nil
}
