// Package models defines the persistence models of the metadata endpoint.
package models

import (
	"database/sql"
	"time"
)

// Record is one row of the t_board table. Key (updated_id in the table) is
// the asset key the blob store and the clients join on; PasswordHash is the
// stored delete password and must never leave the server.
type Record struct {
	ID           int64
	Title        string
	Content      sql.NullString
	CreatedAt    time.Time
	UpdatedAt    sql.NullTime
	CreatedID    sql.NullString
	Key          string
	PasswordHash string
}
