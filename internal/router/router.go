package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"cadesk/internal/config"
	"cadesk/internal/domain"
	"cadesk/internal/handler"
	"cadesk/internal/middleware"
	"cadesk/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
//
// The payment gate sits in front of every client file read path: list,
// download, preview, and zip. Staff-only management routes use RequireStaff;
// destructive routes are further restricted to admin and manager.
func Setup(
	cfg *config.Config,
	authSvc service.AuthService,
	accessSvc service.AccessService,
	authH *handler.AuthHandler,
	invoiceH *handler.InvoiceHandler,
	billingH *handler.BillingHandler,
	fileH *handler.FileHandler,
	clientH *handler.ClientHandler,
	userH *handler.UserHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	destructive := middleware.RequireRole(domain.RoleAdmin, domain.RoleManager)

	// Invoice ledger (staff only; clients read via their scoped list/get)
	invoices := protected.Group("/invoices")
	invoices.POST("", middleware.RequireStaff(), invoiceH.Create)
	invoices.GET("", invoiceH.List)
	invoices.GET("/export", middleware.RequireStaff(), invoiceH.ExportRegister)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.PUT("/:id", middleware.RequireStaff(), invoiceH.Update)
	invoices.PATCH("/:id/status", middleware.RequireStaff(), invoiceH.SetStatus)
	invoices.POST("/:id/payments", middleware.RequireStaff(), invoiceH.AddPayment)
	invoices.DELETE("/:id/payments/:paymentId", destructive, invoiceH.RemovePayment)
	invoices.DELETE("/:id", destructive, invoiceH.Delete)

	// Billing gate status
	billing := protected.Group("/billing")
	billing.GET("/payment-status/:clientId", billingH.PaymentStatus)

	// Documents. Every client read path goes through the payment gate.
	gate := middleware.PaymentGate(accessSvc)
	files := protected.Group("/files")
	files.POST("/upload", middleware.RequireStaff(), fileH.Upload)
	files.GET("", gate, fileH.List)
	files.GET("/zip", gate, fileH.DownloadZip)
	files.GET("/:id", gate, fileH.GetByID)
	files.GET("/:id/preview", gate, fileH.Preview)
	files.PATCH("/:id/flags", fileH.UpdateFlags)
	files.DELETE("/:id", destructive, fileH.Delete)

	// Client management (staff only)
	clients := protected.Group("/clients")
	clients.Use(middleware.RequireStaff())
	clients.POST("", clientH.Create)
	clients.GET("", clientH.List)
	clients.GET("/:id", clientH.GetByID)
	clients.PUT("/:id", clientH.Update)
	clients.DELETE("/:id", destructive, clientH.Delete)

	// User management (admin/manager only)
	users := protected.Group("/users")
	users.Use(destructive)
	users.POST("", userH.Create)
	users.GET("", userH.List)
	users.GET("/:id", userH.GetByID)
	users.PUT("/:id", userH.Update)
	users.DELETE("/:id", userH.Delete)

	return r
}
