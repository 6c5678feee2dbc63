package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	// StatusDraft 表示草稿状态的文章。
	StatusDraft = "draft"
	// StatusPublished 表示已发布的文章。
	StatusPublished = "published"
)

// maxSlugLength 与 slug 列宽保持一致。
const maxSlugLength = 220

// Article 定义了文章模型
type Article struct {
	gorm.Model
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"size:220;uniqueIndex;not null"`
	Summary     string `gorm:"type:text"`
	Body        string `gorm:"type:text"`
	Status      string `gorm:"size:20;not null;default:draft"`
	PublishedAt *time.Time
	Versions    []ArticleVersion `gorm:"constraint:OnDelete:CASCADE"`
}

// BeforeSave 在写入前补齐 slug，并在首次发布时盖上发布时间戳。
// PublishedAt 一经设置便不再改变。
func (a *Article) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(a.Slug) == "" {
		a.Slug = Slugify(a.Title, maxSlugLength)
	}
	if a.Status == StatusPublished && a.PublishedAt == nil {
		now := time.Now()
		a.PublishedAt = &now
	}
	return nil
}
