package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"cadesk/internal/domain"
	"cadesk/internal/port"
)

type fileMetaRepo struct {
	db *sqlx.DB
}

// NewFileMetaRepo creates a new PostgreSQL-backed FileMetaRepository.
func NewFileMetaRepo(db *sqlx.DB) port.FileMetaRepository {
	return &fileMetaRepo{db: db}
}

func (r *fileMetaRepo) Create(ctx context.Context, meta *domain.FileMeta) error {
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO file_metadata
		 (id, client_id, uploaded_by, file_name, original_name, file_type, file_size,
		  s3_bucket, s3_key, content_type, category, starred, note, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		meta.ID, meta.ClientID, meta.UploadedBy, meta.FileName, meta.OriginalName,
		meta.FileType, meta.FileSize, meta.S3Bucket, meta.S3Key, meta.ContentType,
		meta.Category, meta.Starred, meta.Note, meta.Status, meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.Create: %w", err)
	}
	return nil
}

func (r *fileMetaRepo) GetByID(ctx context.Context, fileID uuid.UUID) (*domain.FileMeta, error) {
	var meta domain.FileMeta
	err := r.db.GetContext(ctx, &meta,
		"SELECT * FROM file_metadata WHERE id = $1 AND status != $2",
		fileID, domain.FileStatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("fileMetaRepo.GetByID: %w", err)
	}
	return &meta, nil
}

func (r *fileMetaRepo) GetMany(ctx context.Context, clientID uuid.UUID, fileIDs []uuid.UUID) ([]domain.FileMeta, error) {
	if len(fileIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		"SELECT * FROM file_metadata WHERE client_id = ? AND id IN (?) AND status = ?",
		clientID, fileIDs, domain.FileStatusUploaded)
	if err != nil {
		return nil, fmt.Errorf("fileMetaRepo.GetMany build: %w", err)
	}
	query = r.db.Rebind(query)

	var files []domain.FileMeta
	if err := r.db.SelectContext(ctx, &files, query, args...); err != nil {
		return nil, fmt.Errorf("fileMetaRepo.GetMany: %w", err)
	}
	return files, nil
}

func (r *fileMetaRepo) ListByClient(ctx context.Context, clientID uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM file_metadata WHERE client_id = $1 AND status != $2",
		clientID, domain.FileStatusDeleted)
	if err != nil {
		return nil, 0, fmt.Errorf("fileMetaRepo.ListByClient count: %w", err)
	}

	var files []domain.FileMeta
	err = r.db.SelectContext(ctx, &files,
		`SELECT * FROM file_metadata
		 WHERE client_id = $1 AND status != $2
		 ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		clientID, domain.FileStatusDeleted, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("fileMetaRepo.ListByClient: %w", err)
	}
	return files, total, nil
}

func (r *fileMetaRepo) UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.FileStatus) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE file_metadata SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), fileID)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.UpdateStatus: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateFlags sets the star flag and/or note on a file. Nil fields are left
// untouched.
func (r *fileMetaRepo) UpdateFlags(ctx context.Context, fileID uuid.UUID, starred *bool, note *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE file_metadata SET
		 starred = COALESCE($1, starred),
		 note = COALESCE($2, note),
		 updated_at = $3
		 WHERE id = $4 AND status != $5`,
		starred, note, time.Now().UTC(), fileID, domain.FileStatusDeleted)
	if err != nil {
		return fmt.Errorf("fileMetaRepo.UpdateFlags: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *fileMetaRepo) Delete(ctx context.Context, fileID uuid.UUID) error {
	return r.UpdateStatus(ctx, fileID, domain.FileStatusDeleted)
}
