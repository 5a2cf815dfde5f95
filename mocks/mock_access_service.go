package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"cadesk/internal/domain"
)

// MockAccessService is a mock implementation of service.AccessService.
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) CheckAccess(ctx context.Context, principal domain.Principal, clientID uuid.UUID) (*domain.AccessDecision, error) {
	args := m.Called(ctx, principal, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessDecision), args.Error(1)
}
