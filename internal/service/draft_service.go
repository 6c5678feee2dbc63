package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xyence/internal/db"
)

// ErrExternalService 表示草稿生成的外部调用失败或返回了无法解析的内容。
var ErrExternalService = errors.New("external draft service failed")

var draftSanitizer = bluemonday.UGCPolicy()

// ArticleDraft is the structured result parsed from the model output.
type ArticleDraft struct {
	Title    string
	Summary  string
	BodyHTML string
}

// DraftGenerator 定义草稿生成能力，便于在业务层注入不同实现。
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, prompt string, cfg db.OpenAIConfig, modelOverride string) (ArticleDraft, string, error)
}

// DraftService calls the configured text-generation provider and parses
// the structured JSON result. Persistence stays with the caller.
type DraftService struct {
	client *openAIClient
}

// NewDraftService constructs a DraftService with the default client.
func NewDraftService() *DraftService {
	return &DraftService{client: newOpenAIClient()}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *DraftService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetBaseURL 覆盖默认的 OpenAI API 地址。
func (s *DraftService) SetBaseURL(base string) {
	s.client.SetBaseURL(base)
}

// GenerateDraft sends the stored system instructions plus the operator
// prompt to the provider. The response must be a JSON object carrying
// title, summary and body_html (or body); anything else fails with
// ErrExternalService. There is no retry.
func (s *DraftService) GenerateDraft(ctx context.Context, prompt string, cfg db.OpenAIConfig, modelOverride string) (ArticleDraft, string, error) {
	model := strings.TrimSpace(modelOverride)
	if model == "" {
		model = strings.TrimSpace(cfg.DefaultModel)
	}

	instructions := strings.TrimSpace(cfg.SystemInstructions)
	if instructions == "" {
		instructions = db.DefaultSystemInstructions
	}

	logAIExchange("prompt", prompt)

	raw, err := s.client.Complete(ctx, cfg.APIKey, model, instructions, prompt)
	if err != nil {
		return ArticleDraft{}, "", fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	logAIExchange("response", raw)

	draft, err := parseDraft(raw)
	if err != nil {
		return ArticleDraft{}, raw, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return draft, raw, nil
}

func parseDraft(raw string) (ArticleDraft, error) {
	var payload struct {
		Title    string `json:"title"`
		Summary  string `json:"summary"`
		BodyHTML string `json:"body_html"`
		Body     string `json:"body"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		return ArticleDraft{}, fmt.Errorf("response is not a JSON draft: %w", err)
	}

	body := payload.BodyHTML
	if strings.TrimSpace(body) == "" {
		body = payload.Body
	}

	return ArticleDraft{
		Title:    strings.TrimSpace(payload.Title),
		Summary:  strings.TrimSpace(payload.Summary),
		BodyHTML: draftSanitizer.Sanitize(body),
	}, nil
}

// stripCodeFence 去掉模型偶尔包裹在 JSON 外层的 Markdown 代码栅栏。
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
