package service

import (
	"strings"
	"unicode/utf8"

	"github.com/xyence/internal/logging"
)

const maxAILogSnippetRunes = 1024

var aiLog = logging.New("ai-studio")

// logAIExchange 用于输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(phase, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		aiLog.Debug().Str("phase", phase).Msg("<empty>")
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxAILogSnippetRunes {
		snippet = string([]rune(trimmed)[:maxAILogSnippetRunes]) + "…(truncated)"
	}
	aiLog.Debug().Str("phase", phase).Int("runes", runeCount).Msg(snippet)
}
