package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/xyence/internal/db"
	"github.com/xyence/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// Healthcheck 返回服务入口信息。
func (a *API) Healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"admin":    "/admin/",
		"articles": "/api/articles/",
	})
}

func articlePayload(article db.Article) gin.H {
	var publishedAt interface{}
	if article.PublishedAt != nil {
		publishedAt = article.PublishedAt.Format(time.RFC3339)
	}
	return gin.H{
		"id":           article.ID,
		"title":        article.Title,
		"slug":         article.Slug,
		"summary":      article.Summary,
		"body":         article.Body,
		"status":       article.Status,
		"published_at": publishedAt,
		"created_at":   article.CreatedAt.Format(time.RFC3339),
		"updated_at":   article.UpdatedAt.Format(time.RFC3339),
	}
}

// ListPublishedArticles 返回已发布文章的分页列表。
func (a *API) ListPublishedArticles(c *gin.Context) {
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)
	perPage := parsePositiveInt(c.DefaultQuery("per_page", "20"), 20)

	result, err := a.articles.ListPublished(service.ArticleFilter{Page: page, PerPage: perPage})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list articles"})
		return
	}

	items := make([]gin.H, 0, len(result.Articles))
	for _, article := range result.Articles {
		items = append(items, articlePayload(article))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	})
}

// GetPublishedArticle 按 slug 返回单篇已发布文章，未发布与不存在同样返回 404。
func (a *API) GetPublishedArticle(c *gin.Context) {
	article, err := a.articles.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load article"})
		return
	}
	c.JSON(http.StatusOK, articlePayload(*article))
}

func (a *API) menuPayload() ([]gin.H, error) {
	items, err := a.web.ListVisibleMenu()
	if err != nil {
		return nil, err
	}

	payload := make([]gin.H, 0, len(items))
	for _, item := range items {
		var pageSlug interface{}
		if item.Kind == db.MenuKindPage && item.Page != nil {
			pageSlug = item.Page.Slug
		}
		var externalURL interface{}
		if item.ExternalURL != "" {
			externalURL = item.ExternalURL
		}
		payload = append(payload, gin.H{
			"label":         item.Label,
			"path":          item.Path,
			"kind":          item.Kind,
			"requires_auth": item.RequiresAuth,
			"page_slug":     pageSlug,
			"external_url":  externalURL,
			"order":         item.Position,
		})
	}
	return payload, nil
}

func sectionPayload(sections []db.WebSection) []gin.H {
	payload := make([]gin.H, 0, len(sections))
	for _, section := range sections {
		var title interface{}
		if section.Title != "" {
			title = section.Title
		}
		var data interface{}
		if strings.TrimSpace(section.DataJSON) != "" {
			data = json.RawMessage(section.DataJSON)
		}
		payload = append(payload, gin.H{
			"key":          section.Key,
			"section_type": section.SectionType,
			"title":        title,
			"body_md":      section.BodyMD,
			"body_html":    renderMarkdown(section.BodyMD),
			"data_json":    data,
			"order":        section.Position,
		})
	}
	return payload
}

func renderMarkdown(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return sanitizer.Sanitize(buf.String())
}

// PublicMenu 返回可见的导航菜单。
func (a *API) PublicMenu(c *gin.Context) {
	menu, err := a.menuPayload()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": menu})
}

// PublicPages 返回已发布页面列表。
func (a *API) PublicPages(c *gin.Context) {
	pages, err := a.web.ListPublishedPages()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load pages"})
		return
	}

	items := make([]gin.H, 0, len(pages))
	for _, page := range pages {
		items = append(items, gin.H{"title": page.Title, "slug": page.Slug})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// PublicPageDetail 按 slug 返回已发布页面。
func (a *API) PublicPageDetail(c *gin.Context) {
	page, err := a.web.GetPublishedPage(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load page"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"title": page.Title, "slug": page.Slug})
}

// PublicPageSections 返回已发布页面的可见区块。
func (a *API) PublicPageSections(c *gin.Context) {
	page, err := a.web.GetPublishedPage(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load page"})
		return
	}

	sections, err := a.web.ListPageSections(page.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sectionPayload(sections)})
}

// PublicHome 聚合菜单、home 页面与其区块；home 页面缺席时回退到站点级区块。
func (a *API) PublicHome(c *gin.Context) {
	menu, err := a.menuPayload()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load menu"})
		return
	}

	var pagePayload interface{}
	var sections []db.WebSection

	page, err := a.web.GetPublishedPage("home")
	switch {
	case err == nil:
		pagePayload = gin.H{"title": page.Title, "slug": page.Slug}
		sections, err = a.web.ListPageSections(page.ID)
	case errors.Is(err, service.ErrPageNotFound):
		sections, err = a.web.ListSiteWideSections()
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load home"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"menu":     menu,
		"page":     pagePayload,
		"sections": sectionPayload(sections),
	})
}

// PublicSiteConfig 返回站点名称，未配置时为空字符串。
func (a *API) PublicSiteConfig(c *gin.Context) {
	name, err := a.web.SiteName()
	if err != nil && !errors.Is(err, service.ErrNotConfigured) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load site config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"site_name": name})
}

func parsePositiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
