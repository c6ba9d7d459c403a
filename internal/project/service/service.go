package service

import (
	"context"
	"errors"

	"atelierhub/internal/billing"
	"atelierhub/internal/project"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrUnknownStatus   = errors.New("unknown project status")
)

type ProjectRepository interface {
	Create(ctx context.Context, p *project.Project) error
	GetByID(ctx context.Context, userID, id int64) (*project.Project, error)
	ListByUser(ctx context.Context, userID int64) ([]*project.Project, error)
	UpdateStatus(ctx context.Context, userID, id int64, status string) error
	CountForUser(ctx context.Context, userID int64) (int, error)
}

type EntitlementChecker interface {
	CheckUsageLimit(ctx context.Context, userID int64, resource string) error
}

type Service struct {
	repo         ProjectRepository
	entitlements EntitlementChecker
}

func NewService(repo ProjectRepository, entitlements EntitlementChecker) *Service {
	return &Service{repo: repo, entitlements: entitlements}
}

func (s *Service) Create(ctx context.Context, p *project.Project) error {
	if err := s.entitlements.CheckUsageLimit(ctx, p.UserID, billing.ResourceProjects); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = project.StatusDraft
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, userID, id int64) (*project.Project, error) {
	p, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*project.Project, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) UpdateStatus(ctx context.Context, userID, id int64, status string) error {
	switch status {
	case project.StatusDraft, project.StatusInProgress, project.StatusFitting, project.StatusDelivered:
	default:
		return ErrUnknownStatus
	}
	return s.repo.UpdateStatus(ctx, userID, id, status)
}
