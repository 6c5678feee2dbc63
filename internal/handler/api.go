package handler

import (
	"github.com/xyence/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	articles       *service.ArticleService
	web            *service.WebService
	aiConfig       *service.OpenAIConfigService
	drafts         service.DraftGenerator
	allowedDomains []string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, allowedDomains []string, openAIBaseURL string) *API {
	draftService := service.NewDraftService()
	if openAIBaseURL != "" {
		draftService.SetBaseURL(openAIBaseURL)
	}

	return &API{
		db:             gdb,
		articles:       service.NewArticleService(gdb),
		web:            service.NewWebService(gdb),
		aiConfig:       service.NewOpenAIConfigService(gdb),
		drafts:         draftService,
		allowedDomains: allowedDomains,
	}
}

// SetDraftGenerator 覆盖默认的草稿生成实现，主要用于测试。
func (a *API) SetDraftGenerator(g service.DraftGenerator) {
	if g != nil {
		a.drafts = g
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
