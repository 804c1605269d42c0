package service

import (
	"context"
	"errors"
	"sort"

	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/internal/app/repository"
	"github.com/trouvetonartisan/backend/pkg/logger"
	"github.com/trouvetonartisan/backend/pkg/util"
	"gorm.io/gorm"
)

var ErrCategoryNotFound = errors.New("category not found")

// CategoryArtisans is a category summary with every artisan under it.
type CategoryArtisans struct {
	Category model.Category
	Artisans []model.Artisan
}

type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	GetArtisansByCategory(ctx context.Context, slug string) (*CategoryArtisans, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *categoryService) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, util.SanitizeText(slug))
	if err != nil {
		return nil, mapCategoryError(err, slug)
	}
	return category, nil
}

// GetArtisansByCategory flattens the artisans of every specialty of the
// category, ordered by rating then name.
func (s *categoryService) GetArtisansByCategory(ctx context.Context, slug string) (*CategoryArtisans, error) {
	category, err := s.categoryRepo.FindBySlugWithArtisans(ctx, util.SanitizeText(slug))
	if err != nil {
		return nil, mapCategoryError(err, slug)
	}

	artisans := []model.Artisan{}
	for _, specialty := range category.Specialties {
		artisans = append(artisans, specialty.Artisans...)
	}
	sort.SliceStable(artisans, func(i, j int) bool {
		if !artisans[i].Rating.Equal(artisans[j].Rating) {
			return artisans[i].Rating.GreaterThan(artisans[j].Rating)
		}
		return artisans[i].Name < artisans[j].Name
	})

	logger.Debug("Artisans flattened for category", map[string]interface{}{
		"slug":  category.Slug,
		"count": len(artisans),
	})

	return &CategoryArtisans{
		Category: model.Category{ID: category.ID, Name: category.Name, Slug: category.Slug},
		Artisans: artisans,
	}, nil
}

func mapCategoryError(err error, slug string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn("Category not found", map[string]interface{}{
			"slug": slug,
		})
		return ErrCategoryNotFound
	}
	return err
}
