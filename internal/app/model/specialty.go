package model

import "time"

// Specialty is a trade inside a category (Menuisier, Boulanger, ...).
type Specialty struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Name       string    `gorm:"column:nom;type:varchar(100);not null" json:"nom"`
	CategoryID uint      `gorm:"column:categorie_id;not null;index" json:"categorie_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"categorie,omitempty"`
	Artisans   []Artisan `gorm:"foreignKey:SpecialtyID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"artisans,omitempty"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

func (Specialty) TableName() string {
	return "specialites"
}
