package db

import "gorm.io/gorm"

// OpenAIConfigNameDefault 是工作流读取配置时使用的固定名称。
const OpenAIConfigNameDefault = "default"

// DefaultSystemInstructions 是未另行配置时使用的系统提示词。
const DefaultSystemInstructions = "You are assisting in drafting technical articles for Xyence, a CTO and " +
	"platform consulting firm. Output a JSON object with a title, summary, " +
	"and HTML body suitable for a website article. Treat the response as a " +
	"draft artifact that will be versioned in a CMS."

// OpenAIConfig 存储草稿生成所需的模型凭据与系统提示词。
type OpenAIConfig struct {
	gorm.Model
	Name               string `gorm:"size:100;uniqueIndex;not null;default:default"`
	APIKey             string `gorm:"type:text;not null"`
	DefaultModel       string `gorm:"size:100;not null;default:gpt-5.2"`
	SystemInstructions string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (OpenAIConfig) TableName() string {
	return "openai_configs"
}
