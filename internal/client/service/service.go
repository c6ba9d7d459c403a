package service

import (
	"context"
	"errors"

	"atelierhub/internal/billing"
	"atelierhub/internal/client"
)

var ErrClientNotFound = errors.New("client not found")

type ClientRepository interface {
	Create(ctx context.Context, c *client.Client) error
	GetByID(ctx context.Context, userID, id int64) (*client.Client, error)
	ListByUser(ctx context.Context, userID int64) ([]*client.Client, error)
	Delete(ctx context.Context, userID, id int64) error
	CountForUser(ctx context.Context, userID int64) (int, error)
}

// EntitlementChecker gates plan-limited operations; implemented by the
// billing service.
type EntitlementChecker interface {
	CheckUsageLimit(ctx context.Context, userID int64, resource string) error
}

type Service struct {
	repo         ClientRepository
	entitlements EntitlementChecker
}

func NewService(repo ClientRepository, entitlements EntitlementChecker) *Service {
	return &Service{repo: repo, entitlements: entitlements}
}

func (s *Service) Create(ctx context.Context, c *client.Client) error {
	if err := s.entitlements.CheckUsageLimit(ctx, c.UserID, billing.ResourceClients); err != nil {
		return err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*client.Client, error) {
	c, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrClientNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*client.Client, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}
