package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cadesk/internal/domain"
	"cadesk/internal/handler"
	"cadesk/internal/middleware"
	"cadesk/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// withPrincipal injects an authenticated principal without running the JWT
// middleware.
func withPrincipal(p domain.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, p.UserID)
		c.Set(middleware.ContextKeyRole, string(p.Role))
		c.Set(middleware.ContextKeyPrincipal, p)
		c.Next()
	}
}

func TestPaymentStatus_DeniedDecisionIsStill200(t *testing.T) {
	clientID := uuid.New()
	principal := domain.Principal{UserID: uuid.New(), Role: domain.RoleClient, ClientID: &clientID}

	accessSvc := new(mocks.MockAccessService)
	accessSvc.On("CheckAccess", mock.Anything, principal, clientID).Return(&domain.AccessDecision{
		Allowed:          false,
		InvoiceCount:     2,
		UnpaidCount:      1,
		OverdueCount:     1,
		TotalOutstanding: decimal.RequireFromString("750"),
	}, nil)

	r := gin.New()
	h := handler.NewBillingHandler(accessSvc)
	r.GET("/billing/payment-status/:clientId", withPrincipal(principal), h.PaymentStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/billing/payment-status/"+clientID.String(), nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                  `json:"success"`
		Data    domain.AccessDecision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.False(t, body.Data.Allowed)
	assert.Equal(t, 1, body.Data.OverdueCount)
}

func TestPaymentStatus_CrossClientIsForbidden(t *testing.T) {
	ownClient := uuid.New()
	otherClient := uuid.New()
	principal := domain.Principal{UserID: uuid.New(), Role: domain.RoleClient, ClientID: &ownClient}

	accessSvc := new(mocks.MockAccessService)
	accessSvc.On("CheckAccess", mock.Anything, principal, otherClient).
		Return(nil, domain.ErrForbidden)

	r := gin.New()
	h := handler.NewBillingHandler(accessSvc)
	r.GET("/billing/payment-status/:clientId", withPrincipal(principal), h.PaymentStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/billing/payment-status/"+otherClient.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPaymentStatus_InvalidIDIs400(t *testing.T) {
	principal := domain.Principal{UserID: uuid.New(), Role: domain.RoleAdmin}

	r := gin.New()
	h := handler.NewBillingHandler(new(mocks.MockAccessService))
	r.GET("/billing/payment-status/:clientId", withPrincipal(principal), h.PaymentStatus)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/billing/payment-status/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
