package main

import (
	"fmt"
	"log"

	"cadesk/internal/config"
	"cadesk/internal/email/noop"
	"cadesk/internal/email/ses"
	"cadesk/internal/handler"
	"cadesk/internal/port"
	"cadesk/internal/repository/postgres"
	"cadesk/internal/router"
	"cadesk/internal/service"
	s3storage "cadesk/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	clientRepo := postgres.NewClientRepo(db)
	userRepo := postgres.NewUserRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.PortalURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, clientRepo, cfg.JWT)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, clientRepo, emailSender)
	accessSvc := service.NewAccessService(invoiceRepo)
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)
	clientSvc := service.NewClientService(clientRepo)
	userSvc := service.NewUserService(userRepo, clientRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	invoiceH := handler.NewInvoiceHandler(invoiceSvc)
	billingH := handler.NewBillingHandler(accessSvc)
	fileH := handler.NewFileHandler(fileSvc)
	clientH := handler.NewClientHandler(clientSvc)
	userH := handler.NewUserHandler(userSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, authSvc, accessSvc, authH, invoiceH, billingH, fileH, clientH, userH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
