package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/xyence/internal/config"
	"github.com/xyence/internal/db"
	"github.com/xyence/internal/logging"
	"github.com/xyence/internal/router"
)

func main() {
	// .env 仅用于本地开发，缺失时忽略
	_ = godotenv.Load()

	log := logging.New("server")
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	// 可选的引导账号，便于首次部署后登录后台
	if err := db.EnsureUser(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin user")
	}

	r := router.Setup(cfg.SessionSecret, cfg.AllowedLoginDomains, cfg.OpenAIBaseURL)

	// 公共读 API 供独立前端跨域访问
	handler := cors.Default().Handler(r)

	log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
	if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
