package service

import (
	"errors"
	"strings"

	"github.com/xyence/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrSectionNotFound  = errors.New("web section not found")
	ErrPageSlugRequired = errors.New("page slug is required")
)

// WebService provides access to pages, menu items, sections and the
// site-wide configuration.
type WebService struct {
	db *gorm.DB
}

// NewWebService returns a new WebService instance.
func NewWebService(gdb *gorm.DB) *WebService {
	return &WebService{db: gdb}
}

// ListVisibleMenu returns visible menu items ordered by (position, label)
// with their page references resolved.
func (s *WebService) ListVisibleMenu() ([]db.MenuItem, error) {
	var items []db.MenuItem
	err := s.db.Preload("Page").
		Where("visible = ?", true).
		Order("position asc, label asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListPublishedPages returns published pages ordered by slug.
func (s *WebService) ListPublishedPages() ([]db.Page, error) {
	var pages []db.Page
	err := s.db.Where("published = ?", true).Order("slug asc").Find(&pages).Error
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// GetPublishedPage fetches a published page by slug. Unpublished pages
// look identical to missing ones.
func (s *WebService) GetPublishedPage(slug string) (*db.Page, error) {
	var page db.Page
	err := s.db.Where("slug = ? AND published = ?", slug, true).First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// ListPageSections returns a page's visible sections ordered by (position, key).
func (s *WebService) ListPageSections(pageID string) ([]db.WebSection, error) {
	var sections []db.WebSection
	err := s.db.Where("page_id = ? AND visible = ?", pageID, true).
		Order("position asc, key asc").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

// ListSiteWideSections returns visible sections not attached to any page.
func (s *WebService) ListSiteWideSections() ([]db.WebSection, error) {
	var sections []db.WebSection
	err := s.db.Where("page_id IS NULL AND visible = ?", true).
		Order("position asc, key asc").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

// SiteName resolves the site name from the named site config record.
func (s *WebService) SiteName() (string, error) {
	var cfg db.SiteConfig
	err := s.db.Where("name = ?", db.SiteConfigNameDefault).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotConfigured
		}
		return "", err
	}
	return cfg.SiteName, nil
}

// SaveSiteConfig creates or updates the named site config record.
func (s *WebService) SaveSiteConfig(siteName string) (*db.SiteConfig, error) {
	var cfg db.SiteConfig
	err := s.db.Where("name = ?", db.SiteConfigNameDefault).First(&cfg).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		cfg = db.SiteConfig{Name: db.SiteConfigNameDefault, SiteName: strings.TrimSpace(siteName)}
		if err := s.db.Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	cfg.SiteName = strings.TrimSpace(siteName)
	if err := s.db.Save(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PageInput represents fields accepted when saving a page.
type PageInput struct {
	Title     string
	Slug      string
	Published bool
}

// CreatePage persists a new page.
func (s *WebService) CreatePage(input PageInput) (*db.Page, error) {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = db.Slugify(input.Title, 200)
	}
	if slug == "" {
		return nil, ErrPageSlugRequired
	}

	page := db.Page{
		Title:     strings.TrimSpace(input.Title),
		Slug:      slug,
		Published: input.Published,
	}
	if err := s.db.Create(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage applies changes to an existing page.
func (s *WebService) UpdatePage(id string, input PageInput) (*db.Page, error) {
	var page db.Page
	if err := s.db.First(&page, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	page.Title = strings.TrimSpace(input.Title)
	if slug := strings.TrimSpace(input.Slug); slug != "" {
		page.Slug = slug
	}
	page.Published = input.Published

	if err := s.db.Save(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// DeletePage removes a page. Menu items referencing it are detached,
// its sections are removed with it.
func (s *WebService) DeletePage(id string) error {
	var page db.Page
	if err := s.db.First(&page, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPageNotFound
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.MenuItem{}).Where("page_id = ?", page.ID).
			Update("page_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("page_id = ?", page.ID).Delete(&db.WebSection{}).Error; err != nil {
			return err
		}
		return tx.Delete(&page).Error
	})
}

// SaveMenuItem validates and persists a menu item, creating it when the
// ID is empty.
func (s *WebService) SaveMenuItem(item db.MenuItem) (*db.MenuItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if item.ID == "" {
		if err := s.db.Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}

	var existing db.MenuItem
	if err := s.db.First(&existing, "id = ?", item.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteMenuItem removes a menu item by id.
func (s *WebService) DeleteMenuItem(id string) error {
	res := s.db.Delete(&db.MenuItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

// SaveSection validates and persists a web section, creating it when
// the ID is empty.
func (s *WebService) SaveSection(section db.WebSection) (*db.WebSection, error) {
	if err := section.Validate(); err != nil {
		return nil, err
	}

	if section.ID == "" {
		if err := s.db.Create(&section).Error; err != nil {
			return nil, err
		}
		return &section, nil
	}

	var existing db.WebSection
	if err := s.db.First(&existing, "id = ?", section.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	if err := s.db.Save(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// DeleteSection removes a web section by id.
func (s *WebService) DeleteSection(id string) error {
	res := s.db.Delete(&db.WebSection{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSectionNotFound
	}
	return nil
}
