package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cadesk/internal/domain"
	"cadesk/internal/export"
	"cadesk/internal/middleware"
	"cadesk/internal/service"
)

// FileHandler handles document upload and read endpoints. The client read
// paths (list, download, preview, zip) sit behind the payment gate middleware;
// the handler itself only enforces ownership.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles POST /api/v1/files/upload
// @Summary Upload a document
// @Description Upload a client document (PDF, JPG, PNG, XLSX) into a category
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param client_id formData string true "Client the document belongs to"
// @Param category formData string false "Category: itr, gst, audit, other" default(other)
// @Success 201 {object} Response{data=domain.FileMeta} "File uploaded successfully"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Security BearerAuth
// @Router /files/upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	clientID, err := uuid.Parse(c.PostForm("client_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "client_id form field is required")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	input := service.FileUploadInput{
		ClientID:   clientID,
		UploadedBy: userID,
		Category:   domain.FileCategory(c.PostForm("category")),
		File:       file,
		Header:     header,
	}

	meta, err := h.fileService.Upload(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, meta)
}

// List handles GET /api/v1/files
// @Summary List documents
// @Description List documents for a client with pagination; client users see only their own
// @Tags files
// @Produce json
// @Param client_id query string false "Client ID (staff only; ignored for client users)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.FileMeta,meta=PagMeta} "List of documents"
// @Failure 402 {object} ErrorResponseBody "Access suspended for overdue invoices"
// @Security BearerAuth
// @Router /files [get]
func (h *FileHandler) List(c *gin.Context) {
	principal, ok := extractPrincipal(c)
	if !ok {
		return
	}

	clientID := principal.OwnClient()
	if s := c.Query("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid client ID")
			return
		}
		clientID = id
	}
	if clientID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "client_id query parameter is required")
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	files, total, err := h.fileService.List(c.Request.Context(), principal, clientID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, files, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/files/:id
// Returns file metadata and a presigned download URL.
func (h *FileHandler) GetByID(c *gin.Context) {
	principal, ok := extractPrincipal(c)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}

	meta, err := h.fileService.Get(c.Request.Context(), principal, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	downloadURL, err := h.fileService.GetDownloadURL(c.Request.Context(), principal, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"file":         meta,
		"download_url": downloadURL,
	})
}

// Preview handles GET /api/v1/files/:id/preview
// Streams the file bytes inline for in-browser rendering.
func (h *FileHandler) Preview(c *gin.Context) {
	principal, ok := extractPrincipal(c)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}

	meta, data, err := h.fileService.Preview(c.Request.Context(), principal, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, export.SanitizeFilename(meta.OriginalName)))
	c.Data(http.StatusOK, meta.ContentType, data)
}

// DownloadZip handles GET /api/v1/files/zip
// Bundles the selected files (ids query param, comma-separated) or all of the
// client's files into a single zip download.
func (h *FileHandler) DownloadZip(c *gin.Context) {
	principal, ok := extractPrincipal(c)
	if !ok {
		return
	}

	clientID := principal.OwnClient()
	if s := c.Query("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid client ID")
			return
		}
		clientID = id
	}
	if clientID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "client_id query parameter is required")
		return
	}

	var fileIDs []uuid.UUID
	if raw := c.Query("ids"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			id, err := uuid.Parse(strings.TrimSpace(s))
			if err != nil {
				RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID in ids")
				return
			}
			fileIDs = append(fileIDs, id)
		}
	}

	var buf bytes.Buffer
	if err := h.fileService.BuildZip(c.Request.Context(), principal, clientID, fileIDs, &buf); err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="documents.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// UpdateFlags handles PATCH /api/v1/files/:id/flags
// Star and note updates are deliberately outside the payment gate.
func (h *FileHandler) UpdateFlags(c *gin.Context) {
	principal, ok := extractPrincipal(c)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}

	var input service.FileFlagsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	meta, err := h.fileService.UpdateFlags(c.Request.Context(), principal, fileID, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, meta)
}

// Delete handles DELETE /api/v1/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), fileID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "file deleted"})
}
