package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cadesk/internal/domain"
	"cadesk/internal/port"
)

// CreateClientInput is the DTO for client creation.
type CreateClientInput struct {
	Name         string `json:"name" binding:"required,min=2,max=200"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,max=20"`
	GSTIN        string `json:"gstin" binding:"omitempty,len=15"`
	PAN          string `json:"pan" binding:"omitempty,len=10"`
}

// UpdateClientInput is the DTO for partial client updates.
type UpdateClientInput struct {
	Name         *string `json:"name" binding:"omitempty,min=2,max=200"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" binding:"omitempty,max=20"`
	GSTIN        *string `json:"gstin" binding:"omitempty,len=15"`
	PAN          *string `json:"pan" binding:"omitempty,len=10"`
	IsActive     *bool   `json:"is_active"`
}

// ClientService manages client records.
type ClientService interface {
	Create(ctx context.Context, input CreateClientInput) (*domain.Client, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, offset, limit int) ([]domain.Client, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientService struct {
	clientRepo port.ClientRepository
}

// NewClientService creates a new ClientService implementation.
func NewClientService(clientRepo port.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func (s *clientService) Create(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	client := &domain.Client{
		ID:           uuid.New(),
		Name:         input.Name,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
		GSTIN:        input.GSTIN,
		PAN:          input.PAN,
		IsActive:     true,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("clientService.Create: %w", err)
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

func (s *clientService) List(ctx context.Context, offset, limit int) ([]domain.Client, int, error) {
	return s.clientRepo.List(ctx, offset, limit)
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.ContactEmail != nil {
		client.ContactEmail = *input.ContactEmail
	}
	if input.ContactPhone != nil {
		client.ContactPhone = *input.ContactPhone
	}
	if input.GSTIN != nil {
		client.GSTIN = *input.GSTIN
	}
	if input.PAN != nil {
		client.PAN = *input.PAN
	}
	if input.IsActive != nil {
		client.IsActive = *input.IsActive
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("clientService.Update: %w", err)
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.clientRepo.Delete(ctx, id)
}
