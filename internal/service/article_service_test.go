package service

import (
	"errors"
	"testing"

	"github.com/xyence/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupArticleServiceTestDB(t *testing.T) func() {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.Article{}, &db.ArticleVersion{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestCreateDefaultsToDraft(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	article, err := svc.Create(ArticleInput{Title: "Caching 101", Summary: "s", Body: "<p>b</p>"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if article.Status != db.StatusDraft {
		t.Fatalf("expected draft status, got %s", article.Status)
	}
	if article.Slug != "caching-101" {
		t.Fatalf("expected derived slug, got %s", article.Slug)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	if _, err := svc.Create(ArticleInput{Title: "   "}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
}

func TestVersionNumbersIncrement(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	article, err := svc.Create(ArticleInput{Title: "Versioned"})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}

	first, err := svc.CreateVersion(article.ID, VersionInput{Title: "v1", Source: db.SourceAI})
	if err != nil {
		t.Fatalf("failed to create first version: %v", err)
	}
	if first.VersionNumber != 1 {
		t.Fatalf("expected version 1, got %d", first.VersionNumber)
	}

	second, err := svc.CreateVersion(article.ID, VersionInput{Title: "v2", Source: db.SourceManual})
	if err != nil {
		t.Fatalf("failed to create second version: %v", err)
	}
	if second.VersionNumber != 2 {
		t.Fatalf("expected version 2, got %d", second.VersionNumber)
	}

	other, err := svc.Create(ArticleInput{Title: "Another"})
	if err != nil {
		t.Fatalf("failed to create second article: %v", err)
	}
	otherFirst, err := svc.CreateVersion(other.ID, VersionInput{Title: "v1"})
	if err != nil {
		t.Fatalf("failed to version second article: %v", err)
	}
	if otherFirst.VersionNumber != 1 {
		t.Fatalf("version numbering should be per article, got %d", otherFirst.VersionNumber)
	}
}

func TestCreateVersionUnknownArticle(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	if _, err := svc.CreateVersion(42, VersionInput{Title: "v"}); !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("expected ErrArticleNotFound, got %v", err)
	}
}

func TestApplyVersionsRestoresContent(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	article, err := svc.Create(ArticleInput{Title: "Original", Summary: "old", Body: "<p>old</p>"})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}

	version, err := svc.CreateVersion(article.ID, VersionInput{
		Title:   "Restored Title",
		Summary: "restored summary",
		Body:    "<p>restored</p>",
		Source:  db.SourceAI,
	})
	if err != nil {
		t.Fatalf("failed to create version: %v", err)
	}

	// 继续修改文章内容，之后回滚到快照
	if _, err := svc.Update(article.ID, ArticleInput{Title: "Drifted", Summary: "drifted", Body: "<p>drifted</p>"}); err != nil {
		t.Fatalf("failed to update article: %v", err)
	}

	applied, err := svc.ApplyVersions([]uint{version.ID})
	if err != nil {
		t.Fatalf("ApplyVersions returned error: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied version, got %d", applied)
	}

	restored, err := svc.Get(article.ID)
	if err != nil {
		t.Fatalf("failed to reload article: %v", err)
	}
	if restored.Title != "Restored Title" || restored.Summary != "restored summary" || restored.Body != "<p>restored</p>" {
		t.Fatalf("version content not applied: %+v", restored)
	}
	if restored.Status != db.StatusDraft {
		t.Fatalf("expected draft status after apply, got %s", restored.Status)
	}

	versions, err := svc.ListVersions(article.ID)
	if err != nil {
		t.Fatalf("failed to list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("apply must not create versions, got %d", len(versions))
	}
}

func TestApplyVersionsKeepsPublishedStatus(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	article, err := svc.Create(ArticleInput{Title: "Live Article"})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}
	version, err := svc.CreateVersion(article.ID, VersionInput{Title: "Snapshot"})
	if err != nil {
		t.Fatalf("failed to create version: %v", err)
	}
	if _, err := svc.Publish(article.ID); err != nil {
		t.Fatalf("failed to publish article: %v", err)
	}

	if _, err := svc.ApplyVersions([]uint{version.ID}); err != nil {
		t.Fatalf("ApplyVersions returned error: %v", err)
	}

	reloaded, err := svc.Get(article.ID)
	if err != nil {
		t.Fatalf("failed to reload article: %v", err)
	}
	if reloaded.Status != db.StatusPublished {
		t.Fatalf("published article must stay published, got %s", reloaded.Status)
	}
}

func TestPublishStampsOnce(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	article, err := svc.Create(ArticleInput{Title: "Stamped"})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}

	published, err := svc.Publish(article.ID)
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
	if published.PublishedAt == nil {
		t.Fatal("expected publish timestamp")
	}
	stamped := *published.PublishedAt

	again, err := svc.Publish(article.ID)
	if err != nil {
		t.Fatalf("failed to re-publish: %v", err)
	}
	if !again.PublishedAt.Equal(stamped) {
		t.Fatalf("publish timestamp must not change, was %v now %v", stamped, again.PublishedAt)
	}
}

func TestListPublishedFiltersDrafts(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	published, err := svc.Create(ArticleInput{Title: "Published"})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}
	if _, err := svc.Publish(published.ID); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
	if _, err := svc.Create(ArticleInput{Title: "Still Draft"}); err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}

	result, err := svc.ListPublished(ArticleFilter{})
	if err != nil {
		t.Fatalf("ListPublished returned error: %v", err)
	}
	if result.Total != 1 || len(result.Articles) != 1 {
		t.Fatalf("expected exactly one published article, got %d", result.Total)
	}
	if result.Articles[0].Slug != "published" {
		t.Fatalf("unexpected article returned: %s", result.Articles[0].Slug)
	}
}

func TestDeleteArticleRemovesVersions(t *testing.T) {
	cleanup := setupArticleServiceTestDB(t)
	defer cleanup()

	svc := NewArticleService(db.DB)
	article, err := svc.Create(ArticleInput{Title: "Doomed"})
	if err != nil {
		t.Fatalf("failed to create article: %v", err)
	}
	if _, err := svc.CreateVersion(article.ID, VersionInput{Title: "v1"}); err != nil {
		t.Fatalf("failed to create version: %v", err)
	}

	if err := svc.Delete(article.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	var count int64
	if err := db.DB.Model(&db.ArticleVersion{}).Where("article_id = ?", article.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count versions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected versions cascade-deleted, got %d", count)
	}
}
