package mailboxes

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

func (r *PostgresRepository) Create(ctx context.Context, mb *models.Mailbox) (*models.Mailbox, error) {
	query :=
		`INSERT INTO ephemeral_emails (user_id, email_address, alias_name, encrypted_password, nonce, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, is_active, created_at`

	err := r.db.QueryRowContext(ctx, query,
		mb.UserID, mb.Address, mb.AliasName, mb.EncryptedPassword, mb.Nonce, mb.ExpiresAt).
		Scan(&mb.ID, &mb.IsActive, &mb.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return mb, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, userID string) ([]*models.Mailbox, error) {
	query :=
		`SELECT id, user_id, email_address, alias_name, expires_at, is_active, created_at
		 FROM ephemeral_emails
		 WHERE user_id = $1 AND is_active AND expires_at > now()
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailboxes: %w", err)
	}
	defer rows.Close()

	result := []*models.Mailbox{}
	for rows.Next() {
		var mb models.Mailbox
		if err := rows.Scan(&mb.ID, &mb.UserID, &mb.Address, &mb.AliasName, &mb.ExpiresAt, &mb.IsActive, &mb.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &mb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetActive includes the sealed provider password.
func (r *PostgresRepository) GetActive(ctx context.Context, id, userID string) (*models.Mailbox, error) {
	query :=
		`SELECT id, user_id, email_address, alias_name, encrypted_password, nonce, expires_at, is_active, created_at
		 FROM ephemeral_emails
		 WHERE id = $1 AND user_id = $2 AND is_active AND expires_at > now()`

	var mb models.Mailbox
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&mb.ID, &mb.UserID, &mb.Address, &mb.AliasName,
		&mb.EncryptedPassword, &mb.Nonce, &mb.ExpiresAt, &mb.IsActive, &mb.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &mb, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, id, userID string) error {
	query := `UPDATE ephemeral_emails SET is_active = false WHERE id = $1 AND user_id = $2 AND is_active`

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

func (r *PostgresRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	query := `UPDATE ephemeral_emails SET is_active = false WHERE is_active AND expires_at <= now()`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
