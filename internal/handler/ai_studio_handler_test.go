package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xyence/internal/db"
	"github.com/xyence/internal/service"
)

type fakeDraftGenerator struct {
	draft         service.ArticleDraft
	err           error
	prompts       []string
	configs       []db.OpenAIConfig
	modelRequests []string
}

func (f *fakeDraftGenerator) GenerateDraft(ctx context.Context, prompt string, cfg db.OpenAIConfig, modelOverride string) (service.ArticleDraft, string, error) {
	f.prompts = append(f.prompts, prompt)
	f.configs = append(f.configs, cfg)
	f.modelRequests = append(f.modelRequests, modelOverride)
	if f.err != nil {
		return service.ArticleDraft{}, "", f.err
	}
	return f.draft, `{"raw":true}`, nil
}

func loginAs(t *testing.T, r *gin.Engine, email, password string) []*http.Cookie {
	t.Helper()

	if err := db.EnsureUser(email, password); err != nil {
		t.Fatalf("failed to seed operator: %v", err)
	}

	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("login should redirect, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login should set a session cookie")
	}
	return cookies
}

func postStudioForm(r *gin.Engine, cookies []*http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/ai-studio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedOpenAIConfig(t *testing.T) {
	t.Helper()
	cfg := db.OpenAIConfig{
		Name:               db.OpenAIConfigNameDefault,
		APIKey:             "sk-test",
		DefaultModel:       "gpt-5.2",
		SystemInstructions: "write drafts",
	}
	if err := db.DB.Create(&cfg).Error; err != nil {
		t.Fatalf("failed to seed OpenAI config: %v", err)
	}
}

func TestAIStudioRequiresLogin(t *testing.T) {
	r, _, cleanup := setupTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/admin/ai-studio", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect for anonymous visitor, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/login" {
		t.Fatalf("expected redirect to login, got %q", loc)
	}
}

func TestAIStudioWarnsWhenNotConfigured(t *testing.T) {
	r, _, cleanup := setupTestServer(t)
	defer cleanup()

	cookies := loginAs(t, r, "operator@xyence.io", "secret123")

	req := httptest.NewRequest(http.MethodGet, "/admin/ai-studio", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Create an OpenAI config before using AI Studio.") {
		t.Fatalf("missing config warning not rendered:\n%s", w.Body.String())
	}
}

func TestAIStudioCreatesDraftArticleAndVersion(t *testing.T) {
	r, api, cleanup := setupTestServer(t)
	defer cleanup()

	seedOpenAIConfig(t)
	fake := &fakeDraftGenerator{draft: service.ArticleDraft{
		Title:    "Edge Caching Strategies",
		Summary:  "A practical tour.",
		BodyHTML: "<p>Cache at the edge.</p>",
	}}
	api.SetDraftGenerator(fake)

	cookies := loginAs(t, r, "operator@xyence.io", "secret123")
	w := postStudioForm(r, cookies, url.Values{"prompt": {"Write about edge caching"}})

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after save, got %d: %s", w.Code, w.Body.String())
	}

	var article db.Article
	if err := db.DB.Where("slug = ?", "edge-caching-strategies").First(&article).Error; err != nil {
		t.Fatalf("generated article should be persisted: %v", err)
	}
	if article.Status != db.StatusDraft {
		t.Fatalf("generated articles start as drafts, got %s", article.Status)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/ai-studio?saved="+strconv.FormatUint(uint64(article.ID), 10) {
		t.Fatalf("unexpected redirect target: %q", loc)
	}

	var version db.ArticleVersion
	if err := db.DB.Where("article_id = ?", article.ID).First(&version).Error; err != nil {
		t.Fatalf("generation should record a version: %v", err)
	}
	if version.VersionNumber != 1 || version.Source != db.SourceAI {
		t.Fatalf("unexpected version record: %+v", version)
	}
	if version.Prompt != "Write about edge caching" {
		t.Fatalf("prompt not captured: %q", version.Prompt)
	}
	if version.ModelName != "gpt-5.2" {
		t.Fatalf("resolved model not captured: %q", version.ModelName)
	}

	if len(fake.prompts) != 1 || fake.configs[0].APIKey != "sk-test" {
		t.Fatalf("draft generator called with unexpected arguments: %+v", fake)
	}
}

func TestAIStudioOverwritesSelectedArticle(t *testing.T) {
	r, api, cleanup := setupTestServer(t)
	defer cleanup()

	seedOpenAIConfig(t)
	existing := db.Article{Title: "Old Title", Status: db.StatusPublished}
	if err := db.DB.Create(&existing).Error; err != nil {
		t.Fatalf("failed to seed article: %v", err)
	}

	fake := &fakeDraftGenerator{draft: service.ArticleDraft{
		Title:    "Refreshed Title",
		Summary:  "New summary.",
		BodyHTML: "<p>New body.</p>",
	}}
	api.SetDraftGenerator(fake)

	cookies := loginAs(t, r, "operator@xyence.io", "secret123")
	w := postStudioForm(r, cookies, url.Values{
		"article":        {strconv.FormatUint(uint64(existing.ID), 10)},
		"prompt":         {"Refresh this article"},
		"model_override": {"gpt-5.2-mini"},
	})

	if w.Code != http.StatusFound {
		t.Fatalf("expected redirect after save, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded db.Article
	if err := db.DB.First(&reloaded, existing.ID).Error; err != nil {
		t.Fatalf("failed to reload article: %v", err)
	}
	if reloaded.Title != "Refreshed Title" {
		t.Fatalf("article content not replaced: %q", reloaded.Title)
	}
	if reloaded.Status != db.StatusPublished {
		t.Fatalf("published article must stay published, got %s", reloaded.Status)
	}

	var version db.ArticleVersion
	if err := db.DB.Where("article_id = ?", existing.ID).First(&version).Error; err != nil {
		t.Fatalf("overwrite should record a version: %v", err)
	}
	if version.ModelName != "gpt-5.2-mini" {
		t.Fatalf("override model not captured: %q", version.ModelName)
	}
	if fake.modelRequests[0] != "gpt-5.2-mini" {
		t.Fatalf("override not forwarded to generator: %q", fake.modelRequests[0])
	}
}

func TestAIStudioFailurePersistsNothing(t *testing.T) {
	r, api, cleanup := setupTestServer(t)
	defer cleanup()

	seedOpenAIConfig(t)
	fake := &fakeDraftGenerator{err: errors.New("upstream timeout")}
	api.SetDraftGenerator(fake)

	cookies := loginAs(t, r, "operator@xyence.io", "secret123")
	w := postStudioForm(r, cookies, url.Values{
		"prompt":         {"Write about failure modes"},
		"model_override": {"gpt-5.2-mini"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("failed generation should re-render the form, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "OpenAI request failed") {
		t.Fatalf("error message not rendered:\n%s", body)
	}
	// 表单应保留已填内容
	if !strings.Contains(body, "Write about failure modes") || !strings.Contains(body, "gpt-5.2-mini") {
		t.Fatalf("form values not retained:\n%s", body)
	}

	var articleCount, versionCount int64
	db.DB.Model(&db.Article{}).Count(&articleCount)
	db.DB.Model(&db.ArticleVersion{}).Count(&versionCount)
	if articleCount != 0 || versionCount != 0 {
		t.Fatalf("failed generation must persist nothing, found %d articles, %d versions", articleCount, versionCount)
	}
}

func TestAIStudioRequiresPrompt(t *testing.T) {
	r, api, cleanup := setupTestServer(t)
	defer cleanup()

	seedOpenAIConfig(t)
	fake := &fakeDraftGenerator{}
	api.SetDraftGenerator(fake)

	cookies := loginAs(t, r, "operator@xyence.io", "secret123")
	w := postStudioForm(r, cookies, url.Values{"prompt": {"   "}})

	if w.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "prompt is required") {
		t.Fatalf("prompt validation message not rendered:\n%s", w.Body.String())
	}
	if len(fake.prompts) != 0 {
		t.Fatal("generator must not be called without a prompt")
	}
}
