package service

import (
	"context"
	"errors"
	"fmt"

	"atelierhub/internal/billing"
	"atelierhub/internal/pattern"
)

var ErrGeneratorUnavailable = errors.New("pattern generator unavailable")

type PatternRepository interface {
	Create(ctx context.Context, g *pattern.Generation) error
	ListByUser(ctx context.Context, userID int64) ([]*pattern.Generation, error)
}

type EntitlementChecker interface {
	CheckUsageLimit(ctx context.Context, userID int64, resource string) error
}

// Generator produces a pattern image for a prompt. The concrete backend is
// an external service; see HTTPGenerator.
type Generator interface {
	Generate(ctx context.Context, prompt, style string) (imageURL string, err error)
}

type Service struct {
	repo         PatternRepository
	entitlements EntitlementChecker
	generator    Generator
}

func NewService(repo PatternRepository, entitlements EntitlementChecker, generator Generator) *Service {
	return &Service{repo: repo, entitlements: entitlements, generator: generator}
}

func (s *Service) Generate(ctx context.Context, userID int64, prompt, style string) (*pattern.Generation, error) {
	if err := s.entitlements.CheckUsageLimit(ctx, userID, billing.ResourceAIGenerations); err != nil {
		return nil, err
	}

	imageURL, err := s.generator.Generate(ctx, prompt, style)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneratorUnavailable, err)
	}

	g := &pattern.Generation{
		UserID:   userID,
		Prompt:   prompt,
		Style:    style,
		ImageURL: imageURL,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*pattern.Generation, error) {
	return s.repo.ListByUser(ctx, userID)
}
