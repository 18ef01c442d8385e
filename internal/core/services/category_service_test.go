package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/services"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()
	uid := "user-123"

	t.Run("Success: creates category and invalidates dashboards", func(t *testing.T) {
		repo := new(MockCategoryRepo)
		cache := newFakeCache()
		svc := services.NewCategoryService(repo, cache)

		repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Category) bool {
			return c.UserID == uid && c.Name == "Health" && c.Color == "#00FF00"
		})).Return(nil)

		category, err := svc.Create(ctx, uid, "Health", "#00FF00", "heart")

		require.NoError(t, err)
		assert.NotEmpty(t, category.ID)
		assert.Equal(t, 1, cache.invalidations)
	})

	t.Run("Error: malformed color", func(t *testing.T) {
		repo := new(MockCategoryRepo)
		svc := services.NewCategoryService(repo, nil)

		_, err := svc.Create(ctx, uid, "Health", "green", "")

		assert.ErrorIs(t, err, domain.ErrCategoryInvalidColor)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()
	uid := "user-123"

	t.Run("Success: renames in place", func(t *testing.T) {
		repo := new(MockCategoryRepo)
		svc := services.NewCategoryService(repo, nil)

		repo.On("GetByID", ctx, "cat-1").Return(&domain.Category{
			ID: "cat-1", UserID: uid, Name: "Health", Color: "#00FF00",
		}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Category) bool {
			return c.Name == "Wellness"
		})).Return(nil)

		updated, err := svc.Update(ctx, "cat-1", uid, "Wellness", "#00FF00", "")

		require.NoError(t, err)
		assert.Equal(t, "Wellness", updated.Name)
	})

	t.Run("Error: foreign category reads as not found", func(t *testing.T) {
		repo := new(MockCategoryRepo)
		svc := services.NewCategoryService(repo, nil)

		repo.On("GetByID", ctx, "cat-1").Return(&domain.Category{
			ID: "cat-1", UserID: "other",
		}, nil)

		_, err := svc.Update(ctx, "cat-1", uid, "Wellness", "", "")

		assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()
	uid := "user-123"

	t.Run("Success: deleting invalidates dashboards", func(t *testing.T) {
		repo := new(MockCategoryRepo)
		cache := newFakeCache()
		svc := services.NewCategoryService(repo, cache)

		repo.On("GetByID", ctx, "cat-1").Return(&domain.Category{ID: "cat-1", UserID: uid}, nil)
		repo.On("Delete", ctx, "cat-1", uid).Return(nil)

		err := svc.Delete(ctx, "cat-1", uid)

		require.NoError(t, err)
		assert.Equal(t, 1, cache.invalidations)
	})
}
