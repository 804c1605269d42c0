package repository

import (
	"context"
	"strings"

	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/pkg/logger"
	"gorm.io/gorm"
)

// ArtisanFilter narrows an artisan listing. Zero values disable a criterion.
type ArtisanFilter struct {
	CategorySlug string
	Search       string // case-insensitive substring of the name
	Limit        int
	Offset       int
}

type ArtisanRepository interface {
	Create(ctx context.Context, artisan *model.Artisan) error
	FindWithFilter(ctx context.Context, filter ArtisanFilter) ([]model.Artisan, int64, error)
	FindByID(ctx context.Context, id uint) (*model.Artisan, error)
	FindFeatured(ctx context.Context, limit int) ([]model.Artisan, error)
	SearchByName(ctx context.Context, query string, limit int) ([]model.Artisan, error)
}

type artisanRepository struct {
	db *gorm.DB
}

func NewArtisanRepository(db *gorm.DB) ArtisanRepository {
	return &artisanRepository{db: db}
}

func (r *artisanRepository) Create(ctx context.Context, artisan *model.Artisan) error {
	logger.Debug("Creating artisan in database", map[string]interface{}{
		"name":         artisan.Name,
		"specialty_id": artisan.SpecialtyID,
	})

	if err := r.db.WithContext(ctx).Create(artisan).Error; err != nil {
		logger.Error("Failed to create artisan in database", err, map[string]interface{}{
			"name":         artisan.Name,
			"specialty_id": artisan.SpecialtyID,
		})
		return err
	}

	logger.Debug("Artisan created in database", map[string]interface{}{
		"artisan_id": artisan.ID,
	})
	return nil
}

// withSpecialtyAndCategory loads the artisan's specialty and that specialty's
// category, restricted to the columns a listing displays.
func withSpecialtyAndCategory(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Specialty", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "nom", "categorie_id")
		}).
		Preload("Specialty.Category", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "nom", "slug")
		})
}

// byRating orders by rating, best first, breaking ties on the name.
func byRating(query *gorm.DB) *gorm.DB {
	return query.Order("artisans.note DESC").Order("artisans.nom ASC")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func (r *artisanRepository) filtered(ctx context.Context, filter ArtisanFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Artisan{})

	if filter.CategorySlug != "" {
		query = query.
			Joins("INNER JOIN specialites ON specialites.id = artisans.specialite_id").
			Joins("INNER JOIN categories ON categories.id = specialites.categorie_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}

	if filter.Search != "" {
		query = query.Where("LOWER(artisans.nom) LIKE ? ESCAPE '!'", containsPattern(filter.Search))
	}

	return query
}

func (r *artisanRepository) FindWithFilter(ctx context.Context, filter ArtisanFilter) ([]model.Artisan, int64, error) {
	logger.Debug("Finding artisans with filter", map[string]interface{}{
		"category": filter.CategorySlug,
		"search":   filter.Search,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})

	var total int64
	if err := r.filtered(ctx, filter).Distinct("artisans.id").Count(&total).Error; err != nil {
		logger.Error("Failed to count artisans with filter", err, map[string]interface{}{
			"category": filter.CategorySlug,
			"search":   filter.Search,
		})
		return nil, 0, err
	}

	query := byRating(withSpecialtyAndCategory(r.filtered(ctx, filter).Select("artisans.*")))
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var artisans []model.Artisan
	if err := query.Find(&artisans).Error; err != nil {
		logger.Error("Failed to find artisans with filter", err, map[string]interface{}{
			"category": filter.CategorySlug,
			"search":   filter.Search,
		})
		return nil, 0, err
	}

	logger.Debug("Artisans found with filter", map[string]interface{}{
		"count": len(artisans),
		"total": total,
	})
	return artisans, total, nil
}

func (r *artisanRepository) FindByID(ctx context.Context, id uint) (*model.Artisan, error) {
	logger.Debug("Finding artisan by ID in database", map[string]interface{}{
		"artisan_id": id,
	})

	var artisan model.Artisan
	if err := withSpecialtyAndCategory(r.db.WithContext(ctx)).First(&artisan, id).Error; err != nil {
		logger.Debug("Artisan lookup failed", map[string]interface{}{
			"artisan_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	return &artisan, nil
}

func (r *artisanRepository) FindFeatured(ctx context.Context, limit int) ([]model.Artisan, error) {
	var artisans []model.Artisan
	err := byRating(withSpecialtyAndCategory(r.db.WithContext(ctx))).
		Where("artisans.top_artisan = ?", true).
		Limit(limit).
		Find(&artisans).Error
	if err != nil {
		logger.Error("Failed to find featured artisans", err, map[string]interface{}{
			"limit": limit,
		})
		return nil, err
	}

	logger.Debug("Featured artisans found", map[string]interface{}{
		"count": len(artisans),
	})
	return artisans, nil
}

func (r *artisanRepository) SearchByName(ctx context.Context, query string, limit int) ([]model.Artisan, error) {
	var artisans []model.Artisan
	err := byRating(withSpecialtyAndCategory(r.filtered(ctx, ArtisanFilter{Search: query}))).
		Limit(limit).
		Find(&artisans).Error
	if err != nil {
		logger.Error("Failed to search artisans by name", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}

	logger.Debug("Artisans found by name", map[string]interface{}{
		"query": query,
		"count": len(artisans),
	})
	return artisans, nil
}
