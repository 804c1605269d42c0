package repository

import (
	"context"

	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImportStats counts the rows written by an import.
type ImportStats struct {
	Categories  int
	Specialties int
	Artisans    int64
}

type CatalogRepository interface {
	// Import writes a nested catalog in one transaction. Existing categories
	// (by slug) and specialties (by name within the category) are reused and
	// artisans whose email already exists are skipped.
	Import(ctx context.Context, categories []model.Category, batchSize int) (ImportStats, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// findOrCreate loads the first row matching the condition into dest, or
// inserts dest when there is none. It reports whether a row was inserted.
func findOrCreate[T any](tx *gorm.DB, dest *T, query string, args ...interface{}) (bool, error) {
	var found T
	result := tx.Where(query, args...).Limit(1).Find(&found)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		*dest = found
		return false, nil
	}
	if err := tx.Omit(clause.Associations).Create(dest).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *catalogRepository) Import(ctx context.Context, categories []model.Category, batchSize int) (ImportStats, error) {
	var stats ImportStats

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range categories {
			in := &categories[i]
			slug := in.Slug
			if slug == "" {
				slug = model.GenerateSlug(in.Name)
			}

			category := model.Category{Name: in.Name, Slug: slug}
			created, err := findOrCreate(tx, &category, "slug = ?", slug)
			if err != nil {
				return err
			}
			if created {
				stats.Categories++
			}

			for j := range in.Specialties {
				sp := &in.Specialties[j]

				specialty := model.Specialty{Name: sp.Name, CategoryID: category.ID}
				created, err := findOrCreate(tx, &specialty, "nom = ? AND categorie_id = ?", sp.Name, category.ID)
				if err != nil {
					return err
				}
				if created {
					stats.Specialties++
				}

				if len(sp.Artisans) == 0 {
					continue
				}

				artisans := make([]model.Artisan, len(sp.Artisans))
				copy(artisans, sp.Artisans)
				for k := range artisans {
					artisans[k].SpecialtyID = specialty.ID
					artisans[k].Specialty = nil
				}

				result := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Omit(clause.Associations).
					CreateInBatches(&artisans, batchSize)
				if result.Error != nil {
					return result.Error
				}
				stats.Artisans += result.RowsAffected
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Catalog import rolled back", err, nil)
		return ImportStats{}, err
	}

	logger.Info("Catalog imported", map[string]interface{}{
		"categories":  stats.Categories,
		"specialties": stats.Specialties,
		"artisans":    stats.Artisans,
	})
	return stats, nil
}
