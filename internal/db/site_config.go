package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteConfigNameDefault 是站点配置的固定查找名称。
const SiteConfigNameDefault = "default"

// SiteConfig 保存全站配置，按固定名称解析而非依赖插入顺序。
type SiteConfig struct {
	ID        string `gorm:"size:36;primaryKey"`
	Name      string `gorm:"size:100;uniqueIndex;not null;default:default"`
	SiteName  string `gorm:"size:120"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 自定义表名以保持命名一致。
func (SiteConfig) TableName() string {
	return "site_configs"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (c *SiteConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Name == "" {
		c.Name = SiteConfigNameDefault
	}
	return nil
}
