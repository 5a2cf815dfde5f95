package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cadesk/internal/domain"
	"cadesk/internal/export"
	"cadesk/internal/middleware"
	"cadesk/internal/service"
)

// InvoiceHandler handles invoice ledger endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create handles POST /api/v1/invoices
// @Summary Create an invoice
// @Description Create an invoice with line items; totals and status are derived
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body service.CreateInvoiceInput true "Invoice to create"
// @Success 201 {object} Response{data=domain.Invoice} "Created invoice"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 409 {object} ErrorResponseBody "Duplicate invoice number"
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	var input service.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	input.CreatedBy = userID

	inv, err := h.invoiceService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// List handles GET /api/v1/invoices
// @Summary List invoices
// @Description List invoices with pagination; client users see only their own
// @Tags invoices
// @Produce json
// @Param client_id query string false "Filter by client ID (staff only)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Invoice,meta=PagMeta} "List of invoices"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	principal, ok := extractPrincipal(c)
	if !ok {
		return
	}

	var clientID *uuid.UUID
	if s := c.Query("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid client ID")
			return
		}
		clientID = &id
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), principal, clientID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	principal, ok := extractPrincipal(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	inv, err := h.invoiceService.Get(c.Request.Context(), principal, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Update handles PUT /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var input service.UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// SetStatusRequest is the body for explicit status changes.
type SetStatusRequest struct {
	Status domain.InvoiceStatus `json:"status" binding:"required"`
}

// SetStatus handles PATCH /api/v1/invoices/:id/status
// Used to cancel an invoice or lift a cancellation; un-cancelling immediately
// re-derives the status from items and payments.
func (h *InvoiceHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// AddPayment handles POST /api/v1/invoices/:id/payments
// @Summary Record a payment
// @Description Record a payment against an invoice; totals and status are re-derived atomically
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param payment body service.PaymentInput true "Payment to record"
// @Success 200 {object} Response{data=domain.Invoice} "Invoice with updated totals"
// @Failure 400 {object} ErrorResponseBody "Validation error"
// @Failure 404 {object} ErrorResponseBody "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var input service.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	input.RecordedBy = userID

	inv, err := h.invoiceService.AddPayment(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// RemovePayment handles DELETE /api/v1/invoices/:id/payments/:paymentId
func (h *InvoiceHandler) RemovePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid payment ID")
		return
	}

	inv, err := h.invoiceService.RemovePayment(c.Request.Context(), id, paymentID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// ExportRegister handles GET /api/v1/invoices/export
// Returns the full invoice register as an .xlsx workbook. The workbook is
// built in memory before any header is written so a failure still gets a
// proper error response.
func (h *InvoiceHandler) ExportRegister(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.invoiceService.ExportRegister(c.Request.Context(), &buf); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.RegisterFilename("invoice_register")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
