package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"atelierhub/internal/billing"
	"atelierhub/internal/invoice"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrNoLines         = errors.New("invoice needs at least one line")
	ErrUnknownStatus   = errors.New("unknown invoice status")
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *invoice.Invoice) error
	GetByID(ctx context.Context, userID, id int64) (*invoice.Invoice, error)
	ListByUser(ctx context.Context, userID int64) ([]*invoice.Invoice, error)
	UpdateStatus(ctx context.Context, userID, id int64, status string) error
	NextNumber(ctx context.Context, userID int64) (string, error)
}

type EntitlementChecker interface {
	CheckFeature(ctx context.Context, userID int64, feature string) error
}

type Service struct {
	repo         InvoiceRepository
	entitlements EntitlementChecker
	currency     string
}

func NewService(repo InvoiceRepository, entitlements EntitlementChecker, currency string) *Service {
	return &Service{repo: repo, entitlements: entitlements, currency: currency}
}

type LineInput struct {
	Description string
	Quantity    int
	UnitAmount  int64
}

func (s *Service) Create(ctx context.Context, userID, projectID int64, lines []LineInput) (*invoice.Invoice, error) {
	if err := s.entitlements.CheckFeature(ctx, userID, billing.FeatureInvoicing); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	number, err := s.repo.NextNumber(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice number: %w", err)
	}

	inv := &invoice.Invoice{
		UserID:    userID,
		ProjectID: projectID,
		Number:    number,
		Status:    invoice.StatusDraft,
		Currency:  s.currency,
	}
	for _, in := range lines {
		line := invoice.Line{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitAmount:  in.UnitAmount,
		}
		inv.Lines = append(inv.Lines, line)
		inv.Total += line.Amount()
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*invoice.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*invoice.Invoice, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) UpdateStatus(ctx context.Context, userID, id int64, status string) error {
	switch status {
	case invoice.StatusDraft, invoice.StatusIssued, invoice.StatusPaid, invoice.StatusVoid:
	default:
		return ErrUnknownStatus
	}
	err := s.repo.UpdateStatus(ctx, userID, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvoiceNotFound
	}
	return err
}
