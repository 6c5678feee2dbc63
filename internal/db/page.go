package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Page represents a publishable content page composed of web sections.
type Page struct {
	ID        string `gorm:"size:36;primaryKey"`
	Title     string `gorm:"size:200;not null"`
	Slug      string `gorm:"size:200;uniqueIndex;not null"`
	Published bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID primary key when none is set.
func (p *Page) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
