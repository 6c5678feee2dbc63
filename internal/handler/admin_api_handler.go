package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/xyence/internal/db"
	"github.com/xyence/internal/service"
)

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// respondServiceError maps service sentinel errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
	case errors.Is(err, service.ErrArticleNotFound),
		errors.Is(err, service.ErrVersionNotFound),
		errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrMenuItemNotFound),
		errors.Is(err, service.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrPageSlugRequired),
		errors.Is(err, service.ErrAPIKeyRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type articleRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
}

// GetArticles 返回全部文章（含草稿），供后台列表使用。
func (a *API) GetArticles(c *gin.Context) {
	articles, err := a.articles.ListAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": articles})
}

// CreateArticle 新建一篇草稿文章。
func (a *API) CreateArticle(c *gin.Context) {
	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := a.articles.Create(service.ArticleInput{
		Title:   req.Title,
		Slug:    req.Slug,
		Summary: req.Summary,
		Body:    req.Body,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, article)
}

// UpdateArticle 更新文章内容字段。
func (a *API) UpdateArticle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req articleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	article, err := a.articles.Update(id, service.ArticleInput{
		Title:   req.Title,
		Slug:    req.Slug,
		Summary: req.Summary,
		Body:    req.Body,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// DeleteArticle 删除文章及其全部版本。
func (a *API) DeleteArticle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := a.articles.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// PublishArticle 将文章置为已发布，首次发布时盖上时间戳。
func (a *API) PublishArticle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	article, err := a.articles.Publish(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// GetArticleVersions 返回文章的版本历史。
func (a *API) GetArticleVersions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if _, err := a.articles.Get(id); err != nil {
		respondServiceError(c, err)
		return
	}
	versions, err := a.articles.ListVersions(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": versions})
}

// SnapshotArticle 手工为文章当前内容追加一个 manual 版本。
func (a *API) SnapshotArticle(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	article, err := a.articles.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	version, err := a.articles.CreateVersion(article.ID, service.VersionInput{
		Title:   article.Title,
		Summary: article.Summary,
		Body:    article.Body,
		Source:  db.SourceManual,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, version)
}

type applyVersionsRequest struct {
	IDs []uint `json:"ids"`
}

// ApplyVersions 批量把选中的版本内容回写到各自的文章上，不产生新版本。
func (a *API) ApplyVersions(c *gin.Context) {
	var req applyVersionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "version ids are required"})
		return
	}

	applied, err := a.articles.ApplyVersions(req.IDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied})
}

type pageRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Published bool   `json:"published"`
}

// GetPages 返回全部页面。
func (a *API) GetPages(c *gin.Context) {
	var pages []db.Page
	if err := a.db.Order("slug asc").Find(&pages).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": pages})
}

// CreatePage 新建页面。
func (a *API) CreatePage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	page, err := a.web.CreatePage(service.PageInput{Title: req.Title, Slug: req.Slug, Published: req.Published})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, page)
}

// UpdatePage 更新页面。
func (a *API) UpdatePage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	page, err := a.web.UpdatePage(c.Param("id"), service.PageInput{Title: req.Title, Slug: req.Slug, Published: req.Published})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// DeletePage 删除页面，解除菜单引用并连带删除区块。
func (a *API) DeletePage(c *gin.Context) {
	if err := a.web.DeletePage(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type menuItemRequest struct {
	Label        string  `json:"label"`
	Path         string  `json:"path"`
	Kind         string  `json:"kind"`
	PageID       *string `json:"page_id"`
	ExternalURL  string  `json:"external_url"`
	RequiresAuth bool    `json:"requires_auth"`
	Visible      *bool   `json:"visible"`
	Position     int     `json:"order"`
}

func (r menuItemRequest) toModel(id string) db.MenuItem {
	visible := true
	if r.Visible != nil {
		visible = *r.Visible
	}
	return db.MenuItem{
		ID:           id,
		Label:        r.Label,
		Path:         r.Path,
		Kind:         r.Kind,
		PageID:       r.PageID,
		ExternalURL:  r.ExternalURL,
		RequiresAuth: r.RequiresAuth,
		Visible:      visible,
		Position:     r.Position,
	}
}

// GetMenuItems 返回全部菜单项。
func (a *API) GetMenuItems(c *gin.Context) {
	var items []db.MenuItem
	if err := a.db.Preload("Page").Order("position asc, label asc").Find(&items).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateMenuItem 新建菜单项，字段级校验错误逐项返回。
func (a *API) CreateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	item, err := a.web.SaveMenuItem(req.toModel(""))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem 更新菜单项。
func (a *API) UpdateMenuItem(c *gin.Context) {
	var req menuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	item, err := a.web.SaveMenuItem(req.toModel(c.Param("id")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem 删除菜单项。
func (a *API) DeleteMenuItem(c *gin.Context) {
	if err := a.web.DeleteMenuItem(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type sectionRequest struct {
	PageID      *string `json:"page_id"`
	Key         string  `json:"key"`
	SectionType string  `json:"section_type"`
	Title       string  `json:"title"`
	BodyMD      string  `json:"body_md"`
	DataJSON    string  `json:"data_json"`
	Position    int     `json:"order"`
	Visible     *bool   `json:"visible"`
}

func (r sectionRequest) toModel(id string) db.WebSection {
	visible := true
	if r.Visible != nil {
		visible = *r.Visible
	}
	return db.WebSection{
		ID:          id,
		PageID:      r.PageID,
		Key:         r.Key,
		SectionType: r.SectionType,
		Title:       r.Title,
		BodyMD:      r.BodyMD,
		DataJSON:    r.DataJSON,
		Position:    r.Position,
		Visible:     visible,
	}
}

// GetSections 返回全部区块。
func (a *API) GetSections(c *gin.Context) {
	var sections []db.WebSection
	if err := a.db.Order("position asc, key asc").Find(&sections).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sections})
}

// CreateSection 新建区块。
func (a *API) CreateSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	section, err := a.web.SaveSection(req.toModel(""))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, section)
}

// UpdateSection 更新区块。
func (a *API) UpdateSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	section, err := a.web.SaveSection(req.toModel(c.Param("id")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

// DeleteSection 删除区块。
func (a *API) DeleteSection(c *gin.Context) {
	if err := a.web.DeleteSection(c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type siteConfigRequest struct {
	SiteName string `json:"site_name"`
}

// UpdateSiteConfig 写入站点配置。
func (a *API) UpdateSiteConfig(c *gin.Context) {
	var req siteConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cfg, err := a.web.SaveSiteConfig(req.SiteName)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type openAIConfigRequest struct {
	APIKey             string `json:"api_key"`
	DefaultModel       string `json:"default_model"`
	SystemInstructions string `json:"system_instructions"`
}

// UpdateOpenAIConfig 写入草稿生成配置。响应不回传 API Key。
func (a *API) UpdateOpenAIConfig(c *gin.Context) {
	var req openAIConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cfg, err := a.aiConfig.Save(req.APIKey, req.DefaultModel, req.SystemInstructions)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":          cfg.Name,
		"default_model": cfg.DefaultModel,
	})
}
