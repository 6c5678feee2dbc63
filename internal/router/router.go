package router

import (
	"embed"
	"html/template"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/xyence/internal/db"
	"github.com/xyence/internal/handler"
)

//go:embed template/admin/*.html
var templateFS embed.FS

// Setup 配置 Gin 引擎和路由
func Setup(sessionSecret string, allowedDomains []string, openAIBaseURL string) *gin.Engine {
	api := handler.NewAPI(db.DB, allowedDomains, openAIBaseURL)
	return SetupWithAPI(api, sessionSecret)
}

// SetupWithAPI 使用外部构造的 handler.API 组装路由，便于测试注入依赖。
func SetupWithAPI(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("xyence_session", store))

	// 后台模板随二进制打包
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "template/admin/*.html")))

	r.GET("/", api.Healthcheck)

	// 只读文章 API
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/articles", api.ListPublishedArticles)
		apiGroup.GET("/articles/:slug", api.GetPublishedArticle)
	}

	// 面向前端的站点内容 API
	web := r.Group("/web")
	{
		web.GET("/menu", api.PublicMenu)
		web.GET("/pages", api.PublicPages)
		web.GET("/pages/:slug", api.PublicPageDetail)
		web.GET("/pages/:slug/sections", api.PublicPageSections)
		web.GET("/home", api.PublicHome)
		web.GET("/site-config", api.PublicSiteConfig)
	}

	// 账号入口，域名白名单在这里收口
	accounts := r.Group("/accounts")
	{
		accounts.POST("/signup", api.Signup)
		accounts.POST("/login", api.AccountLogin)
		accounts.GET("/logout", api.AccountLogout)
	}

	// 后台管理路由
	admin := r.Group("/admin")
	{
		admin.GET("/login", api.ShowLoginPage)
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.ShowDashboard)
			auth.GET("/ai-studio", api.ShowAIStudio)
			auth.POST("/ai-studio", api.GenerateAIStudio)

			// API路由
			adminAPI := auth.Group("/api")
			{
				adminAPI.GET("/articles", api.GetArticles)
				adminAPI.POST("/articles", api.CreateArticle)
				adminAPI.PUT("/articles/:id", api.UpdateArticle)
				adminAPI.DELETE("/articles/:id", api.DeleteArticle)
				adminAPI.POST("/articles/:id/publish", api.PublishArticle)
				adminAPI.GET("/articles/:id/versions", api.GetArticleVersions)
				adminAPI.POST("/articles/:id/versions", api.SnapshotArticle)
				adminAPI.POST("/versions/apply", api.ApplyVersions)

				adminAPI.GET("/pages", api.GetPages)
				adminAPI.POST("/pages", api.CreatePage)
				adminAPI.PUT("/pages/:id", api.UpdatePage)
				adminAPI.DELETE("/pages/:id", api.DeletePage)

				adminAPI.GET("/menu-items", api.GetMenuItems)
				adminAPI.POST("/menu-items", api.CreateMenuItem)
				adminAPI.PUT("/menu-items/:id", api.UpdateMenuItem)
				adminAPI.DELETE("/menu-items/:id", api.DeleteMenuItem)

				adminAPI.GET("/sections", api.GetSections)
				adminAPI.POST("/sections", api.CreateSection)
				adminAPI.PUT("/sections/:id", api.UpdateSection)
				adminAPI.DELETE("/sections/:id", api.DeleteSection)

				adminAPI.PUT("/site-config", api.UpdateSiteConfig)
				adminAPI.PUT("/openai-config", api.UpdateOpenAIConfig)
			}
		}
	}

	return r
}
