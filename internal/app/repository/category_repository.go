package repository

import (
	"context"

	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindAll(ctx context.Context) ([]model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	FindBySlugWithArtisans(ctx context.Context, slug string) (*model.Category, error)
	DeleteBySlug(ctx context.Context, slug string) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}

	logger.Debug("Category created in database", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return nil
}

// specialtyColumns selects categorie_id only so gorm can attach the rows;
// hideSpecialtyParent clears it again before the category is returned.
func specialtyColumns(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "nom", "categorie_id").Order("nom ASC")
}

func hideSpecialtyParent(category *model.Category) {
	for i := range category.Specialties {
		category.Specialties[i].CategoryID = 0
	}
}

// FindAll returns every category with its specialties, without artisans.
func (r *categoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	logger.Debug("Finding all categories", nil)

	var categories []model.Category
	err := r.db.WithContext(ctx).
		Preload("Specialties", specialtyColumns).
		Order("nom ASC").
		Find(&categories).Error
	if err != nil {
		logger.Error("Failed to find categories", err, nil)
		return nil, err
	}
	for i := range categories {
		hideSpecialtyParent(&categories[i])
	}

	logger.Debug("Categories found", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

// FindBySlug loads the category, its specialties and a summary of each artisan.
func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	logger.Debug("Finding category by slug", map[string]interface{}{
		"slug": slug,
	})

	var category model.Category
	err := r.db.WithContext(ctx).
		Preload("Specialties", specialtyColumns).
		Preload("Specialties.Artisans", func(tx *gorm.DB) *gorm.DB {
			return byRating(tx.Select("id", "nom", "note", "localisation", "image", "specialite_id"))
		}).
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	hideSpecialtyParent(&category)

	return &category, nil
}

// FindBySlugWithArtisans loads full artisan rows under each specialty, each
// artisan carrying a reference to its own specialty.
func (r *categoryRepository) FindBySlugWithArtisans(ctx context.Context, slug string) (*model.Category, error) {
	logger.Debug("Finding category with artisans by slug", map[string]interface{}{
		"slug": slug,
	})

	var category model.Category
	err := r.db.WithContext(ctx).
		Preload("Specialties", specialtyColumns).
		Preload("Specialties.Artisans", byRating).
		Preload("Specialties.Artisans.Specialty", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "nom")
		}).
		Where("slug = ?", slug).
		First(&category).Error
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// DeleteBySlug removes a category. Specialties and artisans go with it
// through the ON DELETE CASCADE foreign keys.
func (r *categoryRepository) DeleteBySlug(ctx context.Context, slug string) (int64, error) {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&model.Category{})
	if result.Error != nil {
		logger.Error("Failed to delete category", result.Error, map[string]interface{}{
			"slug": slug,
		})
		return 0, result.Error
	}

	logger.Info("Category deleted", map[string]interface{}{
		"slug":          slug,
		"rows_affected": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
