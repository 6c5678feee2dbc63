package service

import (
	"errors"
	"strings"

	"github.com/xyence/internal/db"
	"gorm.io/gorm"
)

// ErrNotConfigured 表示所需的配置记录尚未创建。
var ErrNotConfigured = errors.New("configuration record not found")

var ErrAPIKeyRequired = errors.New("api key is required")

// OpenAIConfigService resolves the draft-generation credentials by the
// fixed configuration name instead of relying on insertion order.
type OpenAIConfigService struct {
	db *gorm.DB
}

// NewOpenAIConfigService returns a new OpenAIConfigService instance.
func NewOpenAIConfigService(gdb *gorm.DB) *OpenAIConfigService {
	return &OpenAIConfigService{db: gdb}
}

// Active fetches the named default config, or ErrNotConfigured.
func (s *OpenAIConfigService) Active() (*db.OpenAIConfig, error) {
	var cfg db.OpenAIConfig
	err := s.db.Where("name = ?", db.OpenAIConfigNameDefault).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	return &cfg, nil
}

// Save creates or updates the named default config.
func (s *OpenAIConfigService) Save(apiKey, defaultModel, systemInstructions string) (*db.OpenAIConfig, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	model := strings.TrimSpace(defaultModel)
	if model == "" {
		model = "gpt-5.2"
	}
	instructions := strings.TrimSpace(systemInstructions)
	if instructions == "" {
		instructions = db.DefaultSystemInstructions
	}

	cfg, err := s.Active()
	if err != nil {
		if !errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		created := db.OpenAIConfig{
			Name:               db.OpenAIConfigNameDefault,
			APIKey:             apiKey,
			DefaultModel:       model,
			SystemInstructions: instructions,
		}
		if err := s.db.Create(&created).Error; err != nil {
			return nil, err
		}
		return &created, nil
	}

	cfg.APIKey = apiKey
	cfg.DefaultModel = model
	cfg.SystemInstructions = instructions
	if err := s.db.Save(cfg).Error; err != nil {
		return nil, err
	}
	return cfg, nil
}
