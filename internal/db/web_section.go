package db

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SectionHero         = "hero"
	SectionFeatureGrid  = "feature_grid"
	SectionServiceCards = "service_cards"
	SectionCTABand      = "cta_band"
	SectionQuote        = "quote"
	SectionSimpleMD     = "simple_md"
)

// WebSection 是挂在页面上的内容区块；PageID 为空表示站点级区块。
// (PageID, Key) 需要唯一。
type WebSection struct {
	ID          string  `gorm:"size:36;primaryKey"`
	PageID      *string `gorm:"size:36;uniqueIndex:idx_web_sections_page_key"`
	Page        *Page   `gorm:"constraint:OnDelete:CASCADE"`
	Key         string  `gorm:"size:120;not null;uniqueIndex:idx_web_sections_page_key"`
	SectionType string  `gorm:"size:40;not null"`
	Title       string  `gorm:"size:200"`
	BodyMD      string  `gorm:"type:text"`
	DataJSON    string  `gorm:"type:text"`
	Position    int     `gorm:"not null;default:0"`
	Visible     bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定自定义表名。
func (WebSection) TableName() string {
	return "web_sections"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (s *WebSection) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Validate checks the section key and type.
func (s WebSection) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Key, validation.Required, validation.Length(1, 120)),
		validation.Field(&s.SectionType, validation.Required,
			validation.In(SectionHero, SectionFeatureGrid, SectionServiceCards,
				SectionCTABand, SectionQuote, SectionSimpleMD)),
	)
}
