package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cadesk/internal/service"
)

// PaymentGate blocks CLIENT-role users from reading documents while they have
// at least one overdue unpaid invoice. It sits in front of every client file
// read path (list, download, preview, zip) so the decision is made in exactly
// one place. Staff are never gated. A denial is answered with 402 and the
// decision payload so the portal can show what is owed.
func PaymentGate(accessService service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := GetPrincipal(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing auth context"},
			})
			return
		}
		if principal.Role.IsStaff() {
			c.Next()
			return
		}

		decision, err := accessService.CheckAccess(c.Request.Context(), principal, principal.OwnClient())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   gin.H{"code": "INTERNAL_ERROR", "message": "could not evaluate billing status"},
			})
			return
		}
		if !decision.Allowed {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PAYMENT_REQUIRED",
					"message": "document access is suspended until overdue invoices are settled",
				},
				"data": decision,
			})
			return
		}
		c.Next()
	}
}
