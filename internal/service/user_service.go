package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cadesk/internal/domain"
	"cadesk/internal/port"
)

// CreateUserInput is the DTO for user creation.
type CreateUserInput struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8"`
	FullName string          `json:"full_name" binding:"required,min=2,max=200"`
	Role     domain.UserRole `json:"role" binding:"required"`
	ClientID *uuid.UUID      `json:"client_id"`
}

// UpdateUserInput is the DTO for partial user updates.
type UpdateUserInput struct {
	FullName *string          `json:"full_name" binding:"omitempty,min=2,max=200"`
	Password *string          `json:"password" binding:"omitempty,min=8"`
	Role     *domain.UserRole `json:"role"`
	IsActive *bool            `json:"is_active"`
}

// UserService manages portal users.
type UserService interface {
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]domain.User, int, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userService struct {
	userRepo   port.UserRepository
	clientRepo port.ClientRepository
}

// NewUserService creates a new UserService implementation.
func NewUserService(userRepo port.UserRepository, clientRepo port.ClientRepository) UserService {
	return &userService{userRepo: userRepo, clientRepo: clientRepo}
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
	}

	// Client-role users must be linked to an existing client; staff must not be.
	if input.Role == domain.RoleClient {
		if input.ClientID == nil {
			return nil, fmt.Errorf("%w: client_id is required for client users", domain.ErrValidation)
		}
		if _, err := s.clientRepo.GetByID(ctx, *input.ClientID); err != nil {
			return nil, err
		}
	} else if input.ClientID != nil {
		return nil, fmt.Errorf("%w: client_id is only valid for client users", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("userService.Create: hashing password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		ClientID:     input.ClientID,
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		Role:         input.Role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	return s.userRepo.List(ctx, offset, limit)
}

func (s *userService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("userService.Update: hashing password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
		}
		// Role changes cannot cross the staff/client boundary; the client
		// linkage would become inconsistent.
		if (user.Role == domain.RoleClient) != (*input.Role == domain.RoleClient) {
			return nil, fmt.Errorf("%w: cannot change role between staff and client", domain.ErrValidation)
		}
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}
