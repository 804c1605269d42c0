package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/trouvetonartisan/backend/config"
	"github.com/trouvetonartisan/backend/internal/app/repository"
	"github.com/trouvetonartisan/backend/internal/db"
	"github.com/trouvetonartisan/backend/internal/importer"
	"github.com/trouvetonartisan/backend/pkg/logger"
)

func main() {
	batchSize := flag.Int("batch", 500, "artisans inserted per INSERT statement")
	replace := flag.Bool("replace", false, "delete the workbook's categories (and everything under them) before importing")
	assumeYes := flag.Bool("yes", false, "do not ask for confirmation")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed [flags] <catalog.xlsx>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open workbook:", err)
	}
	defer f.Close()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	catalog, err := importer.ReadWorkbook(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Categories: %d\n", len(catalog.Categories))
	fmt.Printf("  Artisans:   %d\n", catalog.ArtisanCount())
	fmt.Printf("  Skipped rows: %d\n", len(catalog.Skipped))
	for _, skipped := range catalog.Skipped {
		fmt.Printf("    - %s\n", skipped.Error())
	}

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	gdb, err := db.Open(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ctx := context.Background()

	if *replace {
		categoryRepo := repository.NewCategoryRepository(gdb)
		for _, category := range catalog.Categories {
			if _, err := categoryRepo.DeleteBySlug(ctx, category.Slug); err != nil {
				log.Fatal("Failed to delete category:", err)
			}
		}
	}

	fmt.Printf("Starting import with batch size: %d\n", *batchSize)
	stats, err := repository.NewCatalogRepository(gdb).Import(ctx, catalog.Categories, *batchSize)
	if err != nil {
		log.Fatal("Failed to import catalog:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("  New categories:  %d\n", stats.Categories)
	fmt.Printf("  New specialties: %d\n", stats.Specialties)
	fmt.Printf("  New artisans:    %d\n", stats.Artisans)
}
