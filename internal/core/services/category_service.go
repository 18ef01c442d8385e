package services

import (
	"context"
	"log"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

type CategoryService struct {
	repo  domain.CategoryRepository
	cache DashboardCache
}

func NewCategoryService(repo domain.CategoryRepository, cache DashboardCache) *CategoryService {
	return &CategoryService{repo: repo, cache: cache}
}

func (s *CategoryService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUser(ctx, userID); err != nil {
		log.Printf("categories: dashboard cache invalidation failed for user %s: %v", userID, err)
	}
}

func (s *CategoryService) Create(ctx context.Context, userID, name, color, icon string) (*domain.Category, error) {
	category, err := domain.NewCategory(userID, name, color, icon)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return category, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id, userID string) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (s *CategoryService) ListByUserID(ctx context.Context, userID string) ([]*domain.Category, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *CategoryService) Update(ctx context.Context, id, userID, name, color, icon string) (*domain.Category, error) {
	existing, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := existing.Rename(name, color, icon); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return existing, nil
}

func (s *CategoryService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}
