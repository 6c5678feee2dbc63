package db

import "time"

const (
	// SourceAI 表示由 AI Studio 生成的版本。
	SourceAI = "ai"
	// SourceManual 表示人工保存的版本。
	SourceManual = "manual"
)

// ArticleVersion 记录文章内容的历史版本快照，只追加、不修改。
type ArticleVersion struct {
	ID            uint    `gorm:"primarykey"`
	ArticleID     uint    `gorm:"not null;uniqueIndex:idx_article_versions_article_version"`
	Article       Article `gorm:"constraint:OnDelete:CASCADE"`
	VersionNumber int     `gorm:"not null;uniqueIndex:idx_article_versions_article_version"`
	Title         string  `gorm:"size:200;not null"`
	Summary       string  `gorm:"type:text"`
	Body          string  `gorm:"type:text"`
	Source        string  `gorm:"size:20;not null;default:ai"`
	Prompt        string  `gorm:"type:text"`
	ModelName     string  `gorm:"size:100"`
	CreatedAt     time.Time
}

// TableName 指定自定义表名。
func (ArticleVersion) TableName() string {
	return "article_versions"
}
