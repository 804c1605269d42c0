package model

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// Category is a top-level trade grouping (Bâtiment, Services, ...).
// Deleting a category removes its specialties, and through them their artisans.
type Category struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	Name        string      `gorm:"column:nom;type:varchar(100);uniqueIndex;not null" json:"nom" validate:"min=2,max=100"`
	Slug        string      `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Specialties []Specialty `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"specialites,omitempty"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`
}

func (Category) TableName() string {
	return "categories"
}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashes       = regexp.MustCompile(`-+`)
)

// GenerateSlug lowercases the name, strips accents and joins words with dashes:
// "Bâtiment & Travaux" becomes "batiment-travaux".
func GenerateSlug(name string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(name) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	slug := slugInvalidChars.ReplaceAllString(b.String(), "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (c *Category) Validate() error {
	return validate.Struct(c)
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Slug == "" {
		c.Slug = GenerateSlug(c.Name)
	}
	return nil
}
