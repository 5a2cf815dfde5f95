package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"cadesk/internal/config"
	"cadesk/internal/domain"
	"cadesk/internal/port"
)

// FileUploadInput is the DTO for file upload requests.
type FileUploadInput struct {
	ClientID   uuid.UUID
	UploadedBy uuid.UUID
	Category   domain.FileCategory
	File       multipart.File
	Header     *multipart.FileHeader
}

// FileFlagsInput carries the ungated star/note mutations.
type FileFlagsInput struct {
	Starred *bool   `json:"starred"`
	Note    *string `json:"note"`
}

// FileService manages client documents. Read paths scope CLIENT principals to
// their own client; the payment gate itself is applied by middleware before
// these methods run.
type FileService interface {
	Upload(ctx context.Context, input FileUploadInput) (*domain.FileMeta, error)
	Get(ctx context.Context, principal domain.Principal, fileID uuid.UUID) (*domain.FileMeta, error)
	List(ctx context.Context, principal domain.Principal, clientID uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error)
	GetDownloadURL(ctx context.Context, principal domain.Principal, fileID uuid.UUID) (string, error)
	Preview(ctx context.Context, principal domain.Principal, fileID uuid.UUID) (*domain.FileMeta, []byte, error)
	BuildZip(ctx context.Context, principal domain.Principal, clientID uuid.UUID, fileIDs []uuid.UUID, w io.Writer) error
	UpdateFlags(ctx context.Context, principal domain.Principal, fileID uuid.UUID, input FileFlagsInput) (*domain.FileMeta, error)
	Delete(ctx context.Context, fileID uuid.UUID) error
}

type fileService struct {
	fileRepo port.FileMetaRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	fileRepo port.FileMetaRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) FileService {
	return &fileService{
		fileRepo: fileRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func (s *fileService) Upload(ctx context.Context, input FileUploadInput) (*domain.FileMeta, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Magic-byte sniff so a renamed executable cannot slip through.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	category := input.Category
	if category == "" {
		category = domain.FileCategoryOther
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: unknown file category %q", domain.ErrValidation, category)
	}

	fileID := uuid.New()
	s3Key := fmt.Sprintf("clients/%s/files/%s/%s", input.ClientID, fileID, input.Header.Filename)

	meta := &domain.FileMeta{
		ID:           fileID,
		ClientID:     input.ClientID,
		UploadedBy:   input.UploadedBy,
		FileName:     fileID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		FileType:     fileType,
		FileSize:     input.Header.Size,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		ContentType:  domain.AllowedFileTypes[fileType],
		Category:     category,
		Status:       domain.FileStatusPending,
	}

	log.Printf("fileService.Upload: %s (%s, %d bytes) for client %s by user %s",
		input.Header.Filename, meta.ContentType, input.Header.Size, input.ClientID, input.UploadedBy)

	if err := s.fileRepo.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("creating file metadata: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.File,
		ContentType: meta.ContentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("fileService.Upload: storage upload failed for %s: %v", meta.ID, err)
		_ = s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusFailed)
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusUploaded); err != nil {
		return nil, fmt.Errorf("updating file status: %w", err)
	}
	meta.Status = domain.FileStatusUploaded
	return meta, nil
}

func (s *fileService) Get(ctx context.Context, principal domain.Principal, fileID uuid.UUID) (*domain.FileMeta, error) {
	meta, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if principal.Role == domain.RoleClient && meta.ClientID != principal.OwnClient() {
		return nil, domain.ErrForbidden
	}
	return meta, nil
}

// List is force-scoped to the principal's own client for CLIENT roles.
func (s *fileService) List(ctx context.Context, principal domain.Principal, clientID uuid.UUID, offset, limit int) ([]domain.FileMeta, int, error) {
	if principal.Role == domain.RoleClient {
		clientID = principal.OwnClient()
	}
	return s.fileRepo.ListByClient(ctx, clientID, offset, limit)
}

func (s *fileService) GetDownloadURL(ctx context.Context, principal domain.Principal, fileID uuid.UUID) (string, error) {
	meta, err := s.Get(ctx, principal, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.cfg.PresignExpiry)
}

// Preview returns the file bytes for inline rendering.
func (s *fileService) Preview(ctx context.Context, principal domain.Principal, fileID uuid.UUID) (*domain.FileMeta, []byte, error) {
	meta, err := s.Get(ctx, principal, fileID)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
	if err != nil {
		return nil, nil, fmt.Errorf("downloading for preview: %w", err)
	}
	return meta, data, nil
}

// BuildZip streams the selected files (or every uploaded file of the client
// when fileIDs is empty) as a zip archive onto w.
func (s *fileService) BuildZip(ctx context.Context, principal domain.Principal, clientID uuid.UUID, fileIDs []uuid.UUID, w io.Writer) error {
	if principal.Role == domain.RoleClient {
		clientID = principal.OwnClient()
	}

	var files []domain.FileMeta
	var err error
	if len(fileIDs) > 0 {
		files, err = s.fileRepo.GetMany(ctx, clientID, fileIDs)
	} else {
		files, _, err = s.fileRepo.ListByClient(ctx, clientID, 0, 1000)
	}
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return domain.ErrNotFound
	}

	zw := zip.NewWriter(w)
	seen := map[string]int{}
	for _, meta := range files {
		if meta.Status != domain.FileStatusUploaded {
			continue
		}
		data, err := s.storage.Download(ctx, meta.S3Bucket, meta.S3Key)
		if err != nil {
			// A single unreadable object must not abort the whole archive.
			log.Printf("fileService.BuildZip: skipping %s: %v", meta.ID, err)
			continue
		}

		name := meta.OriginalName
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d_%s", n, name)
		}
		seen[meta.OriginalName]++

		entry, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", name, err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("zip write %s: %w", name, err)
		}
	}
	return zw.Close()
}

// UpdateFlags mutates the star flag and note. Deliberately not behind the
// payment gate; clients may organize files they cannot currently download.
func (s *fileService) UpdateFlags(ctx context.Context, principal domain.Principal, fileID uuid.UUID, input FileFlagsInput) (*domain.FileMeta, error) {
	if _, err := s.Get(ctx, principal, fileID); err != nil {
		return nil, err
	}
	if err := s.fileRepo.UpdateFlags(ctx, fileID, input.Starred, input.Note); err != nil {
		return nil, err
	}
	return s.fileRepo.GetByID(ctx, fileID)
}

func (s *fileService) Delete(ctx context.Context, fileID uuid.UUID) error {
	meta, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	log.Printf("fileService.Delete: deleting file %s for client %s", fileID, meta.ClientID)

	if err := s.storage.Delete(ctx, meta.S3Bucket, meta.S3Key); err != nil {
		return fmt.Errorf("deleting from storage: %w", err)
	}
	return s.fileRepo.Delete(ctx, fileID)
}
