package db

import (
	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/trouvetonartisan/backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists the catalog tables in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Category{},
		&model.Specialty{},
		&model.Artisan{},
	}
}

// Migrate creates or updates the catalog tables, including the cascading
// foreign keys and the rating check constraint.
func Migrate(gdb *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := gdb.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// BaseCategories are the four top-level groupings the directory ships with.
var BaseCategories = []model.Category{
	{Name: "Alimentation", Slug: "alimentation"},
	{Name: "Bâtiment", Slug: "batiment"},
	{Name: "Fabrication", Slug: "fabrication"},
	{Name: "Services", Slug: "services"},
}

// Seed inserts the base categories when the table is empty.
func Seed(gdb *gorm.DB) error {
	var count int64
	if err := gdb.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding base categories...")

	categories := make([]model.Category, len(BaseCategories))
	copy(categories, BaseCategories)
	if err := gdb.Create(&categories).Error; err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_categories": len(categories),
	})
	return nil
}
