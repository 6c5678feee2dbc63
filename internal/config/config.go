package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr          string
	Port                string
	DatabasePath        string
	SessionSecret       string
	GinMode             string
	JobsRedisURL        string
	AllowedLoginDomains []string
	OpenAIBaseURL       string
	AdminEmail          string
	AdminPassword       string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "xyence.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "xyence-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	jobsRedisURL := strings.TrimSpace(os.Getenv("XYENCE_JOBS_REDIS_URL"))
	if jobsRedisURL == "" {
		jobsRedisURL = "redis://redis:6379/0"
	}

	return AppConfig{
		ListenAddr:          listenAddr,
		Port:                port,
		DatabasePath:        databasePath,
		SessionSecret:       sessionSecret,
		GinMode:             ginMode,
		JobsRedisURL:        jobsRedisURL,
		AllowedLoginDomains: ParseAllowedDomains(os.Getenv("ALLOWED_LOGIN_DOMAINS")),
		OpenAIBaseURL:       strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		AdminEmail:          strings.TrimSpace(os.Getenv("XYENCE_ADMIN_EMAIL")),
		AdminPassword:       strings.TrimSpace(os.Getenv("XYENCE_ADMIN_PASSWORD")),
	}
}

// ParseAllowedDomains 解析逗号分隔的登录域名白名单，为空时回退到 xyence.io。
func ParseAllowedDomains(raw string) []string {
	var domains []string
	for _, part := range strings.Split(raw, ",") {
		domain := strings.ToLower(strings.TrimSpace(part))
		if domain != "" {
			domains = append(domains, domain)
		}
	}
	if len(domains) == 0 {
		return []string{"xyence.io"}
	}
	return domains
}
