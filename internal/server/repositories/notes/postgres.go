package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/dbx"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	query :=
		`INSERT INTO secure_notes (user_id, title, encrypted_content, auto_delete_after_read, expires_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, has_been_read, created_at`

	err := r.db.QueryRowContext(ctx, query,
		note.UserID, note.Title, note.EncryptedContent, note.AutoDeleteAfterRead, note.ExpiresAt).
		Scan(&note.ID, &note.HasBeenRead, &note.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return note, nil
}

// ListByUser omits the content column; callers read content through Read.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Note, error) {
	query :=
		`SELECT id, user_id, title, auto_delete_after_read, has_been_read, expires_at, created_at
		 FROM secure_notes
		 WHERE user_id = $1
		   AND (expires_at IS NULL OR expires_at > now())
		   AND NOT (auto_delete_after_read AND has_been_read)
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	result := []*models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.AutoDeleteAfterRead, &n.HasBeenRead, &n.ExpiresAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Read(ctx context.Context, id, userID string) (*models.Note, error) {
	query :=
		`UPDATE secure_notes SET has_been_read = true
		 WHERE id = $1 AND user_id = $2
		   AND (expires_at IS NULL OR expires_at > now())
		   AND (NOT auto_delete_after_read OR NOT has_been_read)
		 RETURNING id, user_id, title, encrypted_content, auto_delete_after_read, has_been_read, expires_at, created_at`

	var n models.Note
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&n.ID, &n.UserID, &n.Title, &n.EncryptedContent, &n.AutoDeleteAfterRead, &n.HasBeenRead, &n.ExpiresAt, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM secure_notes WHERE id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Purge(ctx context.Context) (int64, error) {
	query :=
		`DELETE FROM secure_notes
		 WHERE (auto_delete_after_read AND has_been_read)
		    OR (expires_at IS NOT NULL AND expires_at <= now())`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
