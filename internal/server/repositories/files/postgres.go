package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/cocoinbox/cocoinbox/internal/dbx"
	"github.com/cocoinbox/cocoinbox/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, user_id, filename, storage_key, file_size, password_protected, password_hash,
	expires_at, max_downloads, download_count, watermark_enabled, upload_status, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	var f models.File
	err := s.Scan(&f.ID, &f.UserID, &f.Filename, &f.StorageKey, &f.FileSize, &f.PasswordProtected, &f.PasswordHash,
		&f.ExpiresAt, &f.MaxDownloads, &f.DownloadCount, &f.WatermarkEnabled, &f.UploadStatus, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query :=
		`INSERT INTO secure_files (user_id, filename, storage_key, file_size, password_protected, password_hash,
			expires_at, max_downloads, watermark_enabled, upload_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, download_count, created_at`

	err := r.db.QueryRowContext(ctx, query,
		file.UserID, file.Filename, file.StorageKey, file.FileSize, file.PasswordProtected, file.PasswordHash,
		file.ExpiresAt, file.MaxDownloads, file.WatermarkEnabled, file.UploadStatus).
		Scan(&file.ID, &file.DownloadCount, &file.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return file, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM secure_files
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > now())
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := []*models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetForOwner(ctx context.Context, id, userID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM secure_files
		WHERE id = $1 AND user_id = $2 AND (expires_at IS NULL OR expires_at > now())`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// MarkUploaded moves a live pending file to completed. Any other state is
// common.ErrorNotFound.
func (r *PostgresRepository) MarkUploaded(ctx context.Context, id, userID string) error {
	query :=
		`UPDATE secure_files SET upload_status = 'completed'
		 WHERE id = $1 AND user_id = $2
		   AND upload_status = 'pending'
		   AND (expires_at IS NULL OR expires_at > now())`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark uploaded: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ConsumeDownload(ctx context.Context, id, userID string) (string, error) {
	query :=
		`UPDATE secure_files SET download_count = download_count + 1
		 WHERE id = $1 AND user_id = $2
		   AND upload_status = 'completed'
		   AND (expires_at IS NULL OR expires_at > now())
		   AND (max_downloads IS NULL OR download_count < max_downloads)
		 RETURNING storage_key`

	var key string
	if err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return key, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) (string, error) {
	query := `DELETE FROM secure_files WHERE id = $1 AND user_id = $2 RETURNING storage_key`

	var key string
	if err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return key, nil
}

func (r *PostgresRepository) PurgeExpired(ctx context.Context) ([]string, error) {
	query := `DELETE FROM secure_files WHERE expires_at IS NOT NULL AND expires_at <= now() RETURNING storage_key`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to purge files: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
