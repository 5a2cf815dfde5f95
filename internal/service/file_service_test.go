package service_test

import (
	"archive/zip"
	"bytes"
	"context"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cadesk/internal/config"
	"cadesk/internal/domain"
	"cadesk/internal/port"
	"cadesk/internal/service"
	"cadesk/mocks"
)

// fakeFile adapts a bytes.Reader to multipart.File.
type fakeFile struct {
	*bytes.Reader
}

func (f *fakeFile) Close() error { return nil }

func uploadInput(name string, content []byte, clientID uuid.UUID) service.FileUploadInput {
	return service.FileUploadInput{
		ClientID:   clientID,
		UploadedBy: uuid.New(),
		Category:   domain.FileCategoryITR,
		File:       &fakeFile{bytes.NewReader(content)},
		Header: &multipart.FileHeader{
			Filename: name,
			Size:     int64(len(content)),
		},
	}
}

var pdfBytes = []byte("%PDF-1.4\n%fake pdf body for sniffing")

func newFileService(t *testing.T) (service.FileService, *mocks.MockFileMetaRepo, *mocks.MockObjectStorage) {
	t.Helper()
	fileRepo := new(mocks.MockFileMetaRepo)
	storage := new(mocks.MockObjectStorage)
	cfg := &config.S3Config{Bucket: "cadesk-documents", MaxFileSizeMB: 25, PresignExpiry: 3600}
	return service.NewFileService(fileRepo, storage, cfg), fileRepo, storage
}

func TestFileUpload_Success(t *testing.T) {
	svc, fileRepo, storage := newFileService(t)
	clientID := uuid.New()

	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "s3://cadesk-documents/x"}, nil)
	fileRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusUploaded).Return(nil)

	meta, err := svc.Upload(context.Background(), uploadInput("itr_ack.pdf", pdfBytes, clientID))
	require.NoError(t, err)

	assert.Equal(t, domain.FileTypePDF, meta.FileType)
	assert.Equal(t, domain.FileStatusUploaded, meta.Status)
	assert.Equal(t, domain.FileCategoryITR, meta.Category)
	assert.Equal(t, clientID, meta.ClientID)
	assert.Contains(t, meta.S3Key, "clients/"+clientID.String()+"/files/")
}

func TestFileUpload_RejectsUnknownExtension(t *testing.T) {
	svc, _, _ := newFileService(t)

	_, err := svc.Upload(context.Background(), uploadInput("malware.exe", pdfBytes, uuid.New()))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestFileUpload_RejectsMismatchedMagicBytes(t *testing.T) {
	svc, _, _ := newFileService(t)

	// A renamed binary should not pass just because of its extension.
	binary := []byte{0x4d, 0x5a, 0x90, 0x00, 0x03, 0x00, 0x00, 0x00}
	_, err := svc.Upload(context.Background(), uploadInput("report.pdf", binary, uuid.New()))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestFileUpload_RejectsOversizedFile(t *testing.T) {
	svc, _, _ := newFileService(t)

	input := uploadInput("big.pdf", pdfBytes, uuid.New())
	input.Header.Size = 26 * 1024 * 1024
	_, err := svc.Upload(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestFileUpload_MarksFailedOnStorageError(t *testing.T) {
	svc, fileRepo, storage := newFileService(t)

	fileRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.FileMeta")).Return(nil)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, assert.AnError)
	fileRepo.On("UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusFailed).Return(nil)

	_, err := svc.Upload(context.Background(), uploadInput("itr_ack.pdf", pdfBytes, uuid.New()))
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	fileRepo.AssertCalled(t, "UpdateStatus", mock.Anything, mock.Anything, domain.FileStatusFailed)
}

func TestFileGet_ClientCannotReadOthersFile(t *testing.T) {
	svc, fileRepo, _ := newFileService(t)
	fileID := uuid.New()

	fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{ID: fileID, ClientID: uuid.New()}, nil)

	_, err := svc.Get(context.Background(), clientPrincipal(uuid.New()), fileID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFileList_ClientScopedToOwnClient(t *testing.T) {
	svc, fileRepo, _ := newFileService(t)
	ownClient := uuid.New()
	otherClient := uuid.New()

	fileRepo.On("ListByClient", mock.Anything, ownClient, 0, 20).
		Return([]domain.FileMeta{}, 0, nil)

	_, _, err := svc.List(context.Background(), clientPrincipal(ownClient), otherClient, 0, 20)
	require.NoError(t, err)
	fileRepo.AssertExpectations(t)
}

func TestFileBuildZip_BundlesUploadedFiles(t *testing.T) {
	svc, fileRepo, storage := newFileService(t)
	clientID := uuid.New()

	files := []domain.FileMeta{
		{ID: uuid.New(), ClientID: clientID, OriginalName: "return.pdf", S3Bucket: "b", S3Key: "k1", Status: domain.FileStatusUploaded},
		{ID: uuid.New(), ClientID: clientID, OriginalName: "return.pdf", S3Bucket: "b", S3Key: "k2", Status: domain.FileStatusUploaded},
		{ID: uuid.New(), ClientID: clientID, OriginalName: "pending.pdf", S3Bucket: "b", S3Key: "k3", Status: domain.FileStatusPending},
	}
	fileRepo.On("ListByClient", mock.Anything, clientID, 0, 1000).Return(files, 3, nil)
	storage.On("Download", mock.Anything, "b", "k1").Return([]byte("one"), nil)
	storage.On("Download", mock.Anything, "b", "k2").Return([]byte("two"), nil)

	var buf bytes.Buffer
	err := svc.BuildZip(context.Background(), clientPrincipal(clientID), clientID, nil, &buf)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	// Duplicate original names are disambiguated, pending files are skipped.
	names := []string{zr.File[0].Name, zr.File[1].Name}
	assert.Contains(t, names, "return.pdf")
	assert.Contains(t, names, "1_return.pdf")
	storage.AssertNotCalled(t, "Download", mock.Anything, "b", "k3")
}

func TestFileBuildZip_EmptySelectionIsNotFound(t *testing.T) {
	svc, fileRepo, _ := newFileService(t)
	clientID := uuid.New()

	fileRepo.On("ListByClient", mock.Anything, clientID, 0, 1000).
		Return([]domain.FileMeta{}, 0, nil)

	var buf bytes.Buffer
	err := svc.BuildZip(context.Background(), clientPrincipal(clientID), clientID, nil, &buf)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileDelete_RemovesStorageObjectFirst(t *testing.T) {
	svc, fileRepo, storage := newFileService(t)
	fileID := uuid.New()

	fileRepo.On("GetByID", mock.Anything, fileID).
		Return(&domain.FileMeta{ID: fileID, ClientID: uuid.New(), S3Bucket: "b", S3Key: "k"}, nil)
	storage.On("Delete", mock.Anything, "b", "k").Return(nil)
	fileRepo.On("Delete", mock.Anything, fileID).Return(nil)

	err := svc.Delete(context.Background(), fileID)
	require.NoError(t, err)
	storage.AssertExpectations(t)
	fileRepo.AssertExpectations(t)
}
