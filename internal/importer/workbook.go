package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names of a catalog workbook. The first row of each sheet holds the
// column headers.
const (
	SheetCategories  = "categories"
	SheetSpecialties = "specialites"
	SheetArtisans    = "artisans"
)

var ErrMissingColumn = errors.New("missing column")

// RowError describes a row that was skipped.
type RowError struct {
	Sheet string
	Row   int // 1-based, as shown by spreadsheet software
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.Sheet, e.Row, e.Err)
}

// Catalog is the nested content of a workbook.
type Catalog struct {
	Categories []model.Category
	Skipped    []RowError
}

// ArtisanCount returns the number of artisans across all specialties.
func (c *Catalog) ArtisanCount() int {
	n := 0
	for _, category := range c.Categories {
		for _, specialty := range category.Specialties {
			n += len(specialty.Artisans)
		}
	}
	return n
}

// sheet maps header names to column indexes.
type sheet struct {
	name    string
	rows    [][]string
	columns map[string]int
}

func readSheet(f *excelize.File, name string, required ...string) (*sheet, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", name)
	}

	s := &sheet{name: name, rows: rows, columns: map[string]int{}}
	for i, header := range rows[0] {
		s.columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range required {
		if _, ok := s.columns[col]; !ok {
			return nil, fmt.Errorf("%w %q in sheet %s", ErrMissingColumn, col, name)
		}
	}
	return s, nil
}

func (s *sheet) cell(row []string, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ReadWorkbook parses a catalog workbook. Invalid rows are reported in
// Catalog.Skipped; a missing sheet or column fails the whole read.
func ReadWorkbook(r io.Reader) (*Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	catalog := &Catalog{}

	categories, err := readSheet(f, SheetCategories, "nom")
	if err != nil {
		return nil, err
	}
	specialties, err := readSheet(f, SheetSpecialties, "nom", "categorie")
	if err != nil {
		return nil, err
	}
	artisans, err := readSheet(f, SheetArtisans, "nom", "specialite", "email", "note", "localisation")
	if err != nil {
		return nil, err
	}

	// category index by lowercased name and by slug
	categoryIndex := map[string]int{}
	for i, row := range categories.rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		category := model.Category{
			Name: categories.cell(row, "nom"),
			Slug: categories.cell(row, "slug"),
		}
		if category.Slug == "" {
			category.Slug = model.GenerateSlug(category.Name)
		}
		if err := category.Validate(); err != nil {
			catalog.skip(SheetCategories, i, err)
			continue
		}
		if _, dup := categoryIndex[category.Slug]; dup {
			catalog.skip(SheetCategories, i, fmt.Errorf("duplicate category %q", category.Name))
			continue
		}

		catalog.Categories = append(catalog.Categories, category)
		idx := len(catalog.Categories) - 1
		categoryIndex[category.Slug] = idx
		categoryIndex[strings.ToLower(category.Name)] = idx
	}

	type specialtyRef struct{ category, specialty int }
	specialtyIndex := map[string]specialtyRef{}
	for i, row := range specialties.rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		name := specialties.cell(row, "nom")
		categoryRef := strings.ToLower(specialties.cell(row, "categorie"))

		ci, ok := categoryIndex[categoryRef]
		if !ok {
			catalog.skip(SheetSpecialties, i, fmt.Errorf("unknown category %q", categoryRef))
			continue
		}
		if name == "" {
			catalog.skip(SheetSpecialties, i, errors.New("empty specialty name"))
			continue
		}
		key := strings.ToLower(name)
		if _, dup := specialtyIndex[key]; dup {
			catalog.skip(SheetSpecialties, i, fmt.Errorf("duplicate specialty %q", name))
			continue
		}

		category := &catalog.Categories[ci]
		category.Specialties = append(category.Specialties, model.Specialty{Name: name})
		specialtyIndex[key] = specialtyRef{category: ci, specialty: len(category.Specialties) - 1}
	}

	for i, row := range artisans.rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		ref, ok := specialtyIndex[strings.ToLower(artisans.cell(row, "specialite"))]
		if !ok {
			catalog.skip(SheetArtisans, i, fmt.Errorf("unknown specialty %q", artisans.cell(row, "specialite")))
			continue
		}

		artisan, err := parseArtisan(artisans, row)
		if err != nil {
			catalog.skip(SheetArtisans, i, err)
			continue
		}

		specialty := &catalog.Categories[ref.category].Specialties[ref.specialty]
		specialty.Artisans = append(specialty.Artisans, *artisan)
	}

	return catalog, nil
}

func parseArtisan(s *sheet, row []string) (*model.Artisan, error) {
	rating, err := decimal.NewFromString(strings.ReplaceAll(s.cell(row, "note"), ",", "."))
	if err != nil {
		return nil, fmt.Errorf("invalid rating %q", s.cell(row, "note"))
	}
	if err := model.ValidateRating(rating); err != nil {
		return nil, err
	}

	artisan := &model.Artisan{
		Name:     s.cell(row, "nom"),
		Email:    strings.ToLower(s.cell(row, "email")),
		Rating:   rating.Round(1),
		Location: s.cell(row, "localisation"),
		Image:    s.cell(row, "image"),
		Featured: parseBool(s.cell(row, "top")),
	}
	if about := s.cell(row, "a_propos"); about != "" {
		artisan.About = &about
	}
	if website := s.cell(row, "site_web"); website != "" {
		artisan.Website = &website
	}

	if err := artisan.Validate(); err != nil {
		return nil, err
	}
	return artisan, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "oui", "yes", "x":
		return true
	}
	return false
}

// skip records row i of the data rows (header excluded).
func (c *Catalog) skip(sheet string, i int, err error) {
	c.Skipped = append(c.Skipped, RowError{Sheet: sheet, Row: i + 2, Err: err})
}
