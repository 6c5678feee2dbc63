package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xyence/internal/db"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrVersionNotFound = errors.New("article version not found")
	ErrTitleRequired   = errors.New("article title is required")
)

// versionCreateAttempts bounds the retry loop that backs version
// numbering with the (article_id, version_number) unique index.
const versionCreateAttempts = 3

// ArticleService wraps article related database operations.
type ArticleService struct {
	db *gorm.DB
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title   string
	Slug    string
	Summary string
	Body    string
}

// VersionInput describes a content snapshot to append to an article.
type VersionInput struct {
	Title     string
	Summary   string
	Body      string
	Source    string
	Prompt    string
	ModelName string
}

// ArticleFilter describes filters for listing published articles.
type ArticleFilter struct {
	Page    int
	PerPage int
}

// ArticleListResult aggregates paginated list data.
type ArticleListResult struct {
	Articles   []db.Article
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb}
}

// ListAll returns all articles ordered by published time, newest first.
func (s *ArticleService) ListAll() ([]db.Article, error) {
	var articles []db.Article
	if err := s.db.Order("published_at desc, created_at desc").Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// Get fetches an article by id.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// GetPublishedBySlug fetches a published article by slug. Unpublished
// articles are indistinguishable from missing ones.
func (s *ArticleService) GetPublishedBySlug(slug string) (*db.Article, error) {
	var article db.Article
	err := s.db.Where("slug = ? AND status = ?", slug, db.StatusPublished).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// ListPublished returns published articles, newest first, paginated.
func (s *ArticleService) ListPublished(filter ArticleFilter) (*ArticleListResult, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	query := s.db.Model(&db.Article{}).Where("status = ?", db.StatusPublished)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var articles []db.Article
	err := query.Order("published_at desc, created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&articles).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &ArticleListResult{
		Articles:   articles,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PerPage:    perPage,
	}, nil
}

// Create persists a new draft article. Slug derivation and publish
// stamping happen in the model hook.
func (s *ArticleService) Create(input ArticleInput) (*db.Article, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	article := db.Article{
		Title:   title,
		Slug:    strings.TrimSpace(input.Slug),
		Summary: strings.TrimSpace(input.Summary),
		Body:    input.Body,
		Status:  db.StatusDraft,
	}
	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// Update applies content changes to an existing article.
func (s *ArticleService) Update(id uint, input ArticleInput) (*db.Article, error) {
	article, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	article.Title = title
	if slug := strings.TrimSpace(input.Slug); slug != "" {
		article.Slug = slug
	}
	article.Summary = strings.TrimSpace(input.Summary)
	article.Body = input.Body

	if err := s.db.Save(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// Publish transitions an article to the published status. The first
// transition stamps PublishedAt; later calls never touch it.
func (s *ArticleService) Publish(id uint) (*db.Article, error) {
	article, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	article.Status = db.StatusPublished
	if err := s.db.Save(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// Delete removes an article together with its versions.
func (s *ArticleService) Delete(id uint) error {
	article, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", article.ID).Delete(&db.ArticleVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(article).Error
	})
}

// CreateVersion appends a numbered snapshot to an article. The number
// is max(existing)+1 computed inside a transaction; the unique index on
// (article_id, version_number) backstops concurrent writers, so a
// duplicate insert is retried with a fresh number.
func (s *ArticleService) CreateVersion(articleID uint, input VersionInput) (*db.ArticleVersion, error) {
	if _, err := s.Get(articleID); err != nil {
		return nil, err
	}

	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = db.SourceAI
	}

	var version db.ArticleVersion
	var err error
	for attempt := 0; attempt < versionCreateAttempts; attempt++ {
		err = s.db.Transaction(func(tx *gorm.DB) error {
			var maxNumber int
			row := tx.Model(&db.ArticleVersion{}).
				Where("article_id = ?", articleID).
				Select("COALESCE(MAX(version_number), 0)")
			if err := row.Scan(&maxNumber).Error; err != nil {
				return err
			}

			version = db.ArticleVersion{
				ArticleID:     articleID,
				VersionNumber: maxNumber + 1,
				Title:         input.Title,
				Summary:       input.Summary,
				Body:          input.Body,
				Source:        source,
				Prompt:        input.Prompt,
				ModelName:     input.ModelName,
			}
			return tx.Create(&version).Error
		})
		if err == nil {
			return &version, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) && !isUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("assign version number: %w", err)
}

// ListVersions returns an article's versions, newest first.
func (s *ArticleService) ListVersions(articleID uint) ([]db.ArticleVersion, error) {
	var versions []db.ArticleVersion
	err := s.db.Where("article_id = ?", articleID).
		Order("version_number desc").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// ApplyVersions copies the content of each selected version back onto
// its parent article. Articles not yet published are forced to draft;
// published ones keep their status. No new version rows are written —
// this is a rollback, not a generation event.
func (s *ArticleService) ApplyVersions(versionIDs []uint) (int, error) {
	applied := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range versionIDs {
			var version db.ArticleVersion
			if err := tx.First(&version, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrVersionNotFound
				}
				return err
			}

			var article db.Article
			if err := tx.First(&article, version.ArticleID).Error; err != nil {
				return err
			}

			article.Title = version.Title
			article.Summary = version.Summary
			article.Body = version.Body
			if article.Status != db.StatusPublished {
				article.Status = db.StatusDraft
			}
			if err := tx.Save(&article).Error; err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
