package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trouvetonartisan/backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func validSheets() map[string][][]interface{} {
	return map[string][][]interface{}{
		SheetCategories: {
			{"nom", "slug"},
			{"Bâtiment", ""},
			{"Services", "services"},
			{"X", ""},
		},
		SheetSpecialties: {
			{"nom", "categorie"},
			{"Menuisier", "batiment"},
			{"Coiffeur", "Services"},
			{"Orphelin", "inconnue"},
		},
		SheetArtisans: {
			{"nom", "specialite", "email", "note", "localisation", "a_propos", "site_web", "image", "top"},
			{"Durand Menuiserie", "Menuisier", "Contact@Durand.fr", "4,5", "Lyon", "Depuis 1990", "https://durand.fr", "durand.jpg", "oui"},
			{"Royden Charbonneau", "coiffeur", "royden@example.com", "3.8", "Saint-Priest", "", "", "", ""},
			{"Trop Noté", "Coiffeur", "trop@example.com", "6", "Lyon", "", "", "", ""},
			{"Sans Spécialité", "Plombier", "sans@example.com", "3", "Lyon", "", "", "", ""},
			{},
		},
	}
}

func TestReadWorkbook(t *testing.T) {
	catalog, err := ReadWorkbook(buildWorkbook(t, validSheets()))
	require.NoError(t, err)

	require.Len(t, catalog.Categories, 2)
	batiment := catalog.Categories[0]
	assert.Equal(t, "Bâtiment", batiment.Name)
	assert.Equal(t, "batiment", batiment.Slug)
	require.Len(t, batiment.Specialties, 1)
	require.Len(t, batiment.Specialties[0].Artisans, 1)

	durand := batiment.Specialties[0].Artisans[0]
	assert.Equal(t, "contact@durand.fr", durand.Email)
	assert.Equal(t, "4.5", durand.Rating.String())
	assert.True(t, durand.Featured)
	require.NotNil(t, durand.About)
	assert.Equal(t, "Depuis 1990", *durand.About)
	require.NotNil(t, durand.Website)
	assert.Equal(t, "durand.jpg", durand.Image)

	royden := catalog.Categories[1].Specialties[0].Artisans[0]
	assert.False(t, royden.Featured)
	assert.Nil(t, royden.About)

	assert.Equal(t, 2, catalog.ArtisanCount())

	skipped := map[string][]int{}
	for _, s := range catalog.Skipped {
		skipped[s.Sheet] = append(skipped[s.Sheet], s.Row)
	}
	assert.Equal(t, []int{4}, skipped[SheetCategories])
	assert.Equal(t, []int{4}, skipped[SheetSpecialties])
	assert.Equal(t, []int{4, 5}, skipped[SheetArtisans])
}

func TestReadWorkbook_MissingColumn(t *testing.T) {
	sheets := validSheets()
	sheets[SheetArtisans] = [][]interface{}{{"nom", "specialite"}}

	_, err := ReadWorkbook(buildWorkbook(t, sheets))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestReadWorkbook_MissingSheet(t *testing.T) {
	sheets := validSheets()
	delete(sheets, SheetSpecialties)

	_, err := ReadWorkbook(buildWorkbook(t, sheets))
	assert.Error(t, err)
}

func TestReadWorkbook_RatingRange(t *testing.T) {
	sheets := validSheets()
	sheets[SheetArtisans] = [][]interface{}{
		{"nom", "specialite", "email", "note", "localisation", "a_propos", "site_web", "image", "top"},
		{"Presque Cinq", "Menuisier", "cinq@example.com", "5,04", "Lyon", "", "", "", ""},
		{"Presque Zéro", "Menuisier", "zero@example.com", "-0.04", "Lyon", "", "", "", ""},
		{"Arrondi", "Menuisier", "arrondi@example.com", "4.46", "Lyon", "", "", "", ""},
	}

	catalog, err := ReadWorkbook(buildWorkbook(t, sheets))
	require.NoError(t, err)

	require.Equal(t, 1, catalog.ArtisanCount())
	assert.Equal(t, "4.5", catalog.Categories[0].Specialties[0].Artisans[0].Rating.String())

	rows := []int{}
	for _, s := range catalog.Skipped {
		if s.Sheet == SheetArtisans {
			rows = append(rows, s.Row)
			assert.ErrorIs(t, s.Err, model.ErrRatingOutOfRange)
		}
	}
	assert.Equal(t, []int{2, 3}, rows)
}
