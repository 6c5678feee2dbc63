package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xyence/internal/db"
	"github.com/xyence/internal/service"
)

type aiStudioForm struct {
	ArticleID     string
	Prompt        string
	ModelOverride string
}

func (a *API) renderAIStudio(c *gin.Context, status int, form aiStudioForm, data gin.H) {
	articles, err := a.articles.ListAll()
	if err != nil {
		articles = nil
	}

	payload := gin.H{
		"title":         "AI Studio",
		"articles":      articles,
		"articleID":     form.ArticleID,
		"prompt":        form.Prompt,
		"modelOverride": form.ModelOverride,
	}
	if cfg, err := a.aiConfig.Active(); err == nil {
		payload["defaultModel"] = cfg.DefaultModel
	}
	for key, value := range data {
		payload[key] = value
	}
	c.HTML(status, "ai_studio.html", payload)
}

// ShowAIStudio 渲染 AI Studio 表单。缺少 OpenAI 配置时给出明确提示。
func (a *API) ShowAIStudio(c *gin.Context) {
	data := gin.H{}
	if _, err := a.aiConfig.Active(); err != nil {
		if errors.Is(err, service.ErrNotConfigured) {
			data["error"] = "Create an OpenAI config before using AI Studio."
		} else {
			data["error"] = "failed to load OpenAI config"
		}
	}
	if saved := strings.TrimSpace(c.Query("saved")); saved != "" {
		data["success"] = "Draft saved. Review in the article editor."
		data["savedArticleID"] = saved
	}
	a.renderAIStudio(c, http.StatusOK, aiStudioForm{}, data)
}

// GenerateAIStudio 执行 AI Studio 工作流：提交提示词、调用草稿生成、
// 落库文章并追加版本。生成失败时不写入任何记录，表单保留已填内容。
func (a *API) GenerateAIStudio(c *gin.Context) {
	form := aiStudioForm{
		ArticleID:     strings.TrimSpace(c.PostForm("article")),
		Prompt:        strings.TrimSpace(c.PostForm("prompt")),
		ModelOverride: strings.TrimSpace(c.PostForm("model_override")),
	}

	cfg, err := a.aiConfig.Active()
	if err != nil {
		msg := "failed to load OpenAI config"
		if errors.Is(err, service.ErrNotConfigured) {
			msg = "Create an OpenAI config before using AI Studio."
		}
		a.renderAIStudio(c, http.StatusOK, form, gin.H{"error": msg})
		return
	}

	if form.Prompt == "" {
		a.renderAIStudio(c, http.StatusOK, form, gin.H{"error": "prompt is required"})
		return
	}

	var article *db.Article
	if form.ArticleID != "" {
		id, convErr := strconv.ParseUint(form.ArticleID, 10, 64)
		if convErr != nil {
			a.renderAIStudio(c, http.StatusOK, form, gin.H{"error": "invalid article selection"})
			return
		}
		article, err = a.articles.Get(uint(id))
		if err != nil {
			a.renderAIStudio(c, http.StatusOK, form, gin.H{"error": "selected article no longer exists"})
			return
		}
	}

	draft, _, err := a.drafts.GenerateDraft(c.Request.Context(), form.Prompt, *cfg, form.ModelOverride)
	if err != nil {
		a.renderAIStudio(c, http.StatusOK, form, gin.H{
			"error": "OpenAI request failed: " + err.Error(),
		})
		return
	}

	title := draft.Title
	if title == "" {
		title = "Untitled draft"
	}

	if article == nil {
		article, err = a.articles.Create(service.ArticleInput{
			Title:   title,
			Summary: draft.Summary,
			Body:    draft.BodyHTML,
		})
	} else {
		article.Title = title
		article.Summary = draft.Summary
		article.Body = draft.BodyHTML
		if article.Status != db.StatusPublished {
			article.Status = db.StatusDraft
		}
		err = a.db.Save(article).Error
	}
	if err != nil {
		a.renderAIStudio(c, http.StatusOK, form, gin.H{"error": "failed to save draft: " + err.Error()})
		return
	}

	modelName := form.ModelOverride
	if modelName == "" {
		modelName = cfg.DefaultModel
	}

	_, err = a.articles.CreateVersion(article.ID, service.VersionInput{
		Title:     title,
		Summary:   draft.Summary,
		Body:      draft.BodyHTML,
		Source:    db.SourceAI,
		Prompt:    form.Prompt,
		ModelName: modelName,
	})
	if err != nil {
		a.renderAIStudio(c, http.StatusOK, form, gin.H{"error": "failed to record version: " + err.Error()})
		return
	}

	c.Redirect(http.StatusFound, "/admin/ai-studio?saved="+strconv.FormatUint(uint64(article.ID), 10))
}
