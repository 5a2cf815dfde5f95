package port

import (
	"context"

	"github.com/google/uuid"

	"cadesk/internal/domain"
)

// ClientRepository persists client records.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository persists portal users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FileMetaRepository persists metadata for uploaded client documents.
type FileMetaRepository interface {
	Create(ctx context.Context, meta *domain.FileMeta) error
	GetByID(ctx context.Context, fileID uuid.UUID) (*domain.FileMeta, error)
	GetMany(ctx context.Context, clientID uuid.UUID, fileIDs []uuid.UUID) ([]domain.FileMeta, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error)
	UpdateStatus(ctx context.Context, fileID uuid.UUID, status domain.FileStatus) error
	UpdateFlags(ctx context.Context, fileID uuid.UUID, starred *bool, note *string) error
	Delete(ctx context.Context, fileID uuid.UUID) error
}
