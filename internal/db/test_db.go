package db

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"github.com/trouvetonartisan/backend/internal/app/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing.
// A single connection keeps every query on the same in-memory database,
// and foreign keys are switched on so cascades behave like MySQL.
func SetupTestDB() (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := gdb.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return gdb, nil
}

// CleanupTestDB closes the test database
func CleanupTestDB(gdb *gorm.DB) {
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}

// TruncateAllTables removes all rows, children first.
func TruncateAllTables(gdb *gorm.DB) error {
	tables := []string{"artisans", "specialites", "categories"}
	for _, table := range tables {
		if err := gdb.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}

// TestCatalog indexes the fixture rows created by SeedTestCatalog.
type TestCatalog struct {
	Categories  map[string]*model.Category  // by slug
	Specialties map[string]*model.Specialty // by name
	Artisans    map[string]*model.Artisan   // by name
}

type testArtisan struct {
	name      string
	specialty string
	rating    string
	location  string
	featured  bool
}

// SeedTestCatalog fills the catalog with a small, deterministic data set:
// four categories (fabrication has no specialties), four specialties and
// eight artisans with a few equal ratings to exercise tie-breaking.
func SeedTestCatalog(gdb *gorm.DB) (*TestCatalog, error) {
	catalog := &TestCatalog{
		Categories:  map[string]*model.Category{},
		Specialties: map[string]*model.Specialty{},
		Artisans:    map[string]*model.Artisan{},
	}

	for _, c := range []struct{ name, slug string }{
		{"Alimentation", "alimentation"},
		{"Bâtiment", "batiment"},
		{"Fabrication", "fabrication"},
		{"Services", "services"},
	} {
		category := &model.Category{Name: c.name, Slug: c.slug}
		if err := gdb.Create(category).Error; err != nil {
			return nil, err
		}
		catalog.Categories[c.slug] = category
	}

	for _, s := range []struct{ name, category string }{
		{"Menuisier", "batiment"},
		{"Plombier", "batiment"},
		{"Coiffeur", "services"},
		{"Boulanger", "alimentation"},
	} {
		specialty := &model.Specialty{Name: s.name, CategoryID: catalog.Categories[s.category].ID}
		if err := gdb.Create(specialty).Error; err != nil {
			return nil, err
		}
		catalog.Specialties[s.name] = specialty
	}

	artisans := []testArtisan{
		{"Vallis Bellemare", "Plombier", "4.0", "Vienne", false},
		{"Durand Menuiserie", "Menuisier", "4.5", "Lyon", true},
		{"Dupont Plomberie", "Plombier", "4.5", "Annecy", false},
		{"Ambiance Dure", "Menuisier", "3.5", "Chambéry", false},
		{"Royden Charbonneau", "Coiffeur", "3.8", "Saint-Priest", true},
		{"Durance Coiffure", "Coiffeur", "4.9", "Valence", true},
		{"Chocolaterie Labbé", "Boulanger", "4.9", "Lyon", true},
		{"Boulangerie Martin", "Boulanger", "4.2", "Grenoble", false},
	}
	for i, a := range artisans {
		artisan := &model.Artisan{
			Name:        a.name,
			Email:       fmt.Sprintf("artisan%d@example.com", i+1),
			Rating:      decimal.RequireFromString(a.rating),
			Location:    a.location,
			Featured:    a.featured,
			SpecialtyID: catalog.Specialties[a.specialty].ID,
		}
		if err := gdb.Create(artisan).Error; err != nil {
			return nil, err
		}
		catalog.Artisans[a.name] = artisan
	}

	return catalog, nil
}
