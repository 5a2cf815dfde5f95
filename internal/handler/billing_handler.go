package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cadesk/internal/service"
)

// BillingHandler exposes the file-access gate decision directly so the portal
// can show a client what is blocking their documents.
type BillingHandler struct {
	accessService service.AccessService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(accessService service.AccessService) *BillingHandler {
	return &BillingHandler{accessService: accessService}
}

// PaymentStatus handles GET /api/v1/billing/payment-status/:clientId
// @Summary Get payment gate status
// @Description Returns the access decision for a client: whether document reads are allowed and which invoices are overdue
// @Tags billing
// @Produce json
// @Param clientId path string true "Client ID (UUID)"
// @Success 200 {object} Response{data=domain.AccessDecision} "Access decision with diagnostics"
// @Failure 403 {object} ErrorResponseBody "Client querying another client"
// @Security BearerAuth
// @Router /billing/payment-status/{clientId} [get]
func (h *BillingHandler) PaymentStatus(c *gin.Context) {
	principal, ok := extractPrincipal(c)
	if !ok {
		return
	}

	clientID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid client ID")
		return
	}

	decision, err := h.accessService.CheckAccess(c.Request.Context(), principal, clientID)
	if err != nil {
		HandleError(c, err)
		return
	}

	// A denied decision is still a 200; denial is data, not an error.
	RespondOK(c, decision)
}
