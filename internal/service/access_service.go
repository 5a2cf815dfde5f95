package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"cadesk/internal/domain"
	"cadesk/internal/port"
)

// AccessService is the file-access gate: it decides whether a client may read
// documents based on their outstanding billing state. Staff always pass. The
// same decision function backs every client read path (list, download,
// preview, zip) and the payment-status endpoint.
type AccessService interface {
	CheckAccess(ctx context.Context, principal domain.Principal, clientID uuid.UUID) (*domain.AccessDecision, error)
}

type accessService struct {
	invoiceRepo port.InvoiceRepository
	now         func() time.Time
}

// NewAccessService creates a new AccessService implementation.
func NewAccessService(invoiceRepo port.InvoiceRepository) AccessService {
	return &accessService{invoiceRepo: invoiceRepo, now: time.Now}
}

// NewAccessServiceAt creates an AccessService with an injected clock.
func NewAccessServiceAt(invoiceRepo port.InvoiceRepository, now func() time.Time) AccessService {
	return &accessService{invoiceRepo: invoiceRepo, now: now}
}

// CheckAccess loads the client's full invoice set and computes the decision.
// A CLIENT principal querying another client's billing state is an error
// (forbidden), not a deny decision. Denial itself is a normal negative result.
func (s *accessService) CheckAccess(ctx context.Context, principal domain.Principal, clientID uuid.UUID) (*domain.AccessDecision, error) {
	if principal.Role == domain.RoleClient && principal.OwnClient() != clientID {
		return nil, domain.ErrForbidden
	}

	invoices, err := s.invoiceRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	decision := domain.DecideAccess(invoices, s.now())
	if principal.Role.IsStaff() {
		// Staff pass unconditionally; the diagnostics are still computed so
		// the payment-status endpoint can show them the client's exposure.
		decision.Allowed = true
	}
	return &decision, nil
}
