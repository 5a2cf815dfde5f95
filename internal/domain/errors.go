package domain

import "errors"

var (
	ErrNotFound               = errors.New("resource not found")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrClientNotFound         = errors.New("client not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserInactive           = errors.New("user is inactive")
	ErrClientInactive         = errors.New("client is inactive")
	ErrValidation             = errors.New("validation failed")
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")
	ErrDuplicateEmail         = errors.New("email already exists")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed           = errors.New("file upload to storage failed")
)
