package db

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// MenuKindPage 指向站内页面的菜单项。
	MenuKindPage = "page"
	// MenuKindArticlesIndex 指向文章列表的菜单项。
	MenuKindArticlesIndex = "articles_index"
	// MenuKindExternal 指向外部链接的菜单项。
	MenuKindExternal = "external"
	// MenuKindRoute 指向前端路由的菜单项。
	MenuKindRoute = "route"
)

// MenuItem 定义了站点导航菜单项。
type MenuItem struct {
	ID           string  `gorm:"size:36;primaryKey"`
	Label        string  `gorm:"size:120;not null"`
	Path         string  `gorm:"size:200;not null"`
	Kind         string  `gorm:"size:30;not null;default:page"`
	PageID       *string `gorm:"size:36"`
	Page         *Page   `gorm:"constraint:OnDelete:SET NULL"`
	ExternalURL  string  `gorm:"size:200"`
	RequiresAuth bool    `gorm:"not null;default:false"`
	Visible      bool    `gorm:"not null;default:true"`
	Position     int     `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BeforeCreate assigns a UUID primary key when none is set.
func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Validate enforces the cross-field rules that depend on Kind.
func (m MenuItem) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Label, validation.Required, validation.Length(1, 120)),
		validation.Field(&m.Path, validation.Length(0, 200)),
		validation.Field(&m.Kind, validation.Required,
			validation.In(MenuKindPage, MenuKindArticlesIndex, MenuKindExternal, MenuKindRoute)),
		validation.Field(&m.PageID,
			validation.Required.When(m.Kind == MenuKindPage).Error("page is required when kind is page")),
		validation.Field(&m.ExternalURL,
			validation.Required.When(m.Kind == MenuKindExternal).Error("external URL is required when kind is external"),
			is.URL),
	)
}
