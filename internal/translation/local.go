package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tetsuya81/QuickLang/internal/catalog"
	"github.com/Tetsuya81/QuickLang/internal/globaltime"
	"github.com/Tetsuya81/QuickLang/internal/langdetect"
	"github.com/Tetsuya81/QuickLang/internal/language"
)

const (
	// DefaultLocalEndpoint points to a local OpenAI-compatible translation endpoint.
	DefaultLocalEndpoint = "http://127.0.0.1:8845/v1"
	// DefaultLocalModel is the default HY-MT model name.
	DefaultLocalModel = "tencent/HY-MT1.5-7B"
	// DefaultLocalTimeout bounds one HTTP round trip to the endpoint.
	DefaultLocalTimeout = 2 * time.Minute

	maxErrorBodyBytes = 4 * 1024
)

// Detector guesses the language of a text sample.
type Detector func(text string) (language.Tag, bool)

// LocalOptions configures a LocalProvider. Zero values select the defaults.
type LocalOptions struct {
	Endpoint   string
	Model      string
	Timeout    time.Duration
	Store      ModelStore
	Catalog    *catalog.Catalog
	Detector   Detector
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// LocalProvider translates text by calling an OpenAI-compatible chat completions endpoint.
// Prepared language pairs are tracked in a ModelStore.
type LocalProvider struct {
	chatURL   string
	modelsURL string
	model     string
	client    *http.Client
	store     ModelStore
	languages *catalog.Catalog
	detect    Detector
	session   *session
	logger    zerolog.Logger
}

// NewLocalProvider builds a local provider for the given options.
func NewLocalProvider(opts LocalOptions) *LocalProvider {
	normalizedEndpoint := normalizeEndpoint(opts.Endpoint)
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultLocalModel
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultLocalTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	store := opts.Store
	if store == nil {
		store = NewMemoryModelStore()
	}
	languages := opts.Catalog
	if languages == nil {
		languages = catalog.Default()
	}
	detect := opts.Detector
	if detect == nil {
		detect = langdetect.Detect
	}

	chatURL := chatCompletionsURL(normalizedEndpoint)
	return &LocalProvider{
		chatURL:   chatURL,
		modelsURL: strings.TrimSuffix(chatURL, "/chat/completions") + "/models",
		model:     model,
		client:    client,
		store:     store,
		languages: languages,
		detect:    detect,
		session:   newSession(),
		logger:    opts.Logger.With().Str("provider", "local").Logger(),
	}
}

func (p *LocalProvider) Name() string {
	return "local"
}

// ModelName returns the configured model identifier.
func (p *LocalProvider) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *LocalProvider) CheckAvailability(ctx context.Context, source, target language.Tag) (Availability, error) {
	if source.IsAuto() {
		return Unsupported, fmt.Errorf("%w: availability needs a concrete source language", ErrProviderUnavailable)
	}
	if !p.languages.Contains(source) || !p.languages.Contains(target) || target.IsAuto() {
		return Unsupported, nil
	}
	if source == target {
		return Unsupported, nil
	}

	first, second := OrderPair(source.Code(), target.Code())
	installed, err := p.store.IsPairInstalled(ctx, p.model, first, second)
	if err != nil {
		return Unsupported, fmt.Errorf("%w: lookup installed models: %v", ErrProviderUnavailable, err)
	}
	if installed {
		return Installed, nil
	}
	return DownloadRequired, nil
}

// PrepareModel verifies that the endpoint serves the configured model and records the pair as installed.
func (p *LocalProvider) PrepareModel(ctx context.Context, source, target language.Tag) error {
	if source.IsAuto() || source.IsZero() || target.IsZero() {
		return fmt.Errorf("%w: a concrete language pair is required", ErrDownloadFailed)
	}

	callCtx, done := p.session.bind(ctx)
	defer done()

	served, err := p.listModels(callCtx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if !containsString(served, p.model) {
		return fmt.Errorf("%w: model %q is not served by %s", ErrDownloadFailed, p.model, p.modelsURL)
	}

	first, second := OrderPair(source.Code(), target.Code())
	if err := p.store.MarkPairInstalled(ctx, p.model, first, second); err != nil {
		return fmt.Errorf("%w: record installed model: %v", ErrDownloadFailed, err)
	}

	p.logger.Info().
		Str("model", p.model).
		Str("source_lang", source.Code()).
		Str("target_lang", target.Code()).
		Msg("language model prepared")
	return nil
}

func (p *LocalProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: local provider is nil", ErrTranslationFailed)
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrTranslationFailed)
	}
	if req.Target.IsZero() || req.Target.IsAuto() {
		return nil, fmt.Errorf("%w: target language is required", ErrTranslationFailed)
	}

	source := req.Source
	if source.IsAuto() {
		detected, ok := p.detect(text)
		if ok {
			source = detected
		} else {
			source = language.Tag{}
		}
	}

	prompt := p.buildPrompt(text, source, req.Target)
	body, err := json.Marshal(localChatRequest{
		Model: p.model,
		Messages: []localChatMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		Temperature: 0.7,
		TopP:        0.6,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal translation request: %v", ErrTranslationFailed, err)
	}

	callCtx, done := p.session.bind(ctx)
	defer done()

	started := globaltime.Now()
	respBody, err := p.do(callCtx, http.MethodPost, p.chatURL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranslationFailed, err)
	}

	var parsed localChatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode translation response: %v", ErrTranslationFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: translation response missing choices", ErrTranslationFailed)
	}

	translated := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if translated == "" {
		return nil, fmt.Errorf("%w: translation response was empty", ErrTranslationFailed)
	}

	return &TranslateResponse{
		Text:         translated,
		Source:       source,
		Target:       req.Target,
		ProviderName: p.Name(),
		ModelName:    p.model,
		Latency:      globaltime.Since(started),
	}, nil
}

// InvalidateSession aborts every in-flight endpoint call.
func (p *LocalProvider) InvalidateSession() {
	if p == nil {
		return
	}
	p.session.invalidate()
	p.logger.Debug().Msg("translation session invalidated")
}

func (p *LocalProvider) listModels(ctx context.Context) ([]string, error) {
	respBody, err := p.do(ctx, http.MethodGet, p.modelsURL, nil)
	if err != nil {
		return nil, err
	}

	var parsed localModelsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}
	ids := make([]string, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		if id := strings.TrimSpace(item.ID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (p *LocalProvider) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errPayload localChatErrorResponse
		if unmarshalErr := json.Unmarshal(respBody, &errPayload); unmarshalErr == nil {
			if msg := strings.TrimSpace(errPayload.Error.Message); msg != "" {
				return nil, fmt.Errorf("endpoint status %d: %s", resp.StatusCode, msg)
			}
		}
		snippet := respBody
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return nil, fmt.Errorf("endpoint status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return respBody, nil
}

type localChatRequest struct {
	Model       string             `json:"model"`
	Messages    []localChatMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
	TopP        float64            `json:"top_p,omitempty"`
}

type localChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type localChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type localChatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type localModelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// hymtChineseLabels names target languages inside the HY-MT zh<=>xx template.
var hymtChineseLabels = map[string]string{
	"ar":      "阿拉伯语",
	"de":      "德语",
	"en":      "英语",
	"es":      "西班牙语",
	"fr":      "法语",
	"hi":      "印地语",
	"id":      "印度尼西亚语",
	"it":      "意大利语",
	"ja":      "日语",
	"ko":      "韩语",
	"pl":      "波兰语",
	"pt":      "葡萄牙语",
	"ru":      "俄语",
	"th":      "泰语",
	"tr":      "土耳其语",
	"uk":      "乌克兰语",
	"vi":      "越南语",
	"zh":      "简体中文",
	"zh-hant": "繁体中文",
}

func (p *LocalProvider) buildPrompt(text string, source, target language.Tag) string {
	if source.Base() == "zh" || target.Base() == "zh" {
		// HY-MT zh<=>xx template.
		label, ok := hymtChineseLabels[target.Code()]
		if !ok {
			label = p.englishLabel(target)
		}
		return fmt.Sprintf("将以下文本翻译为%s，注意只需要输出翻译后的结果，不要额外解释：\n\n%s", label, text)
	}
	// HY-MT xx<=>xx template.
	return fmt.Sprintf("Translate the following segment into %s, without additional explanation.\n\n%s", p.englishLabel(target), text)
}

func (p *LocalProvider) englishLabel(tag language.Tag) string {
	if label, err := p.languages.DisplayName(tag); err == nil {
		return label
	}
	if code := tag.Code(); code != "" {
		return code
	}
	return "English"
}

func containsString(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}

func normalizeEndpoint(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return DefaultLocalEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLocalEndpoint
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	if parsed.Path == "" {
		parsed.Path = "/v1"
	}
	return parsed.String()
}

func chatCompletionsURL(endpoint string) string {
	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLocalEndpoint + "/chat/completions"
	}

	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		parsed.Path = path
	case strings.HasSuffix(path, "/v1"):
		parsed.Path = path + "/chat/completions"
	case path == "":
		parsed.Path = "/v1/chat/completions"
	default:
		parsed.Path = path + "/v1/chat/completions"
	}

	return parsed.String()
}
