package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultArtisanImage = "default-artisan.jpg"

var (
	MinRating = decimal.Zero
	MaxRating = decimal.NewFromInt(5)

	ErrRatingOutOfRange = errors.New("rating must be between 0 and 5")
)

var validate = validator.New()

// Artisan is a tradesperson profile. It always belongs to exactly one specialty.
type Artisan struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"column:nom;type:varchar(100);not null;index" json:"nom" validate:"min=2,max=100"`
	Email       string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email,omitempty" validate:"required,email"`
	Rating      decimal.Decimal `gorm:"column:note;type:decimal(2,1);not null;default:0;check:chk_artisans_note,note >= 0 AND note <= 5" json:"note"`
	Location    string          `gorm:"column:localisation;type:varchar(100);not null" json:"localisation" validate:"required"`
	About       *string         `gorm:"column:a_propos;type:text" json:"a_propos,omitempty"`
	Website     *string         `gorm:"column:site_web;type:varchar(255)" json:"site_web,omitempty" validate:"omitempty,url"`
	Image       string          `gorm:"type:varchar(255)" json:"image,omitempty"`
	Featured    bool            `gorm:"column:top_artisan;not null;default:false;index" json:"top_artisan"`
	SpecialtyID uint            `gorm:"column:specialite_id;not null;index" json:"specialite_id,omitempty"`
	Specialty   *Specialty      `gorm:"foreignKey:SpecialtyID" json:"specialite,omitempty"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

func (Artisan) TableName() string {
	return "artisans"
}

// ValidateRating rejects values outside [0,5]; it never clamps.
func ValidateRating(rating decimal.Decimal) error {
	if rating.LessThan(MinRating) || rating.GreaterThan(MaxRating) {
		return fmt.Errorf("%w: got %s", ErrRatingOutOfRange, rating.String())
	}
	return nil
}

// Validate checks the rating range and the field rules.
func (a *Artisan) Validate() error {
	if err := ValidateRating(a.Rating); err != nil {
		return err
	}
	return validate.Struct(a)
}

func (a *Artisan) BeforeSave(tx *gorm.DB) error {
	return a.Validate()
}

func (a *Artisan) BeforeCreate(tx *gorm.DB) error {
	if a.Image == "" {
		a.Image = DefaultArtisanImage
	}
	return nil
}
