package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"undercover_web/pkg/config"
)

var (
	ErrDailyLimitExceeded = errors.New("今日 LLM 請求額度已用完")
	ErrEmptyCompletion    = errors.New("模型回傳內容無效")

	thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

const (
	llmMaxRetries       = 3
	llmModelFailLimit   = 5
	llmMinContentLength = 5
)

// ChatMessage 是一則對話消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// LLMOptions 允許單次呼叫覆寫預設的 API 端點與模型
type LLMOptions struct {
	BaseURL string
	APIKey  string
	Model   string
}

// LLMClient 透過 OpenAI 相容介面呼叫語言模型，
// 帶重試、備援模型與每日請求額度控制
type LLMClient struct {
	cfg        config.LLMConfig
	httpClient *http.Client

	mu           sync.Mutex
	modelFails   map[string]int // 各模型連續失敗次數
	requestsUsed int
	usageDay     string
}

func NewLLMClient(cfg config.LLMConfig) *LLMClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		modelFails: make(map[string]int),
	}
}

// Chat 發送對話請求並回傳清理後的內容。
// 主模型失敗時依序嘗試備援模型，每個模型最多重試三次
func (c *LLMClient) Chat(ctx context.Context, messages []ChatMessage, opts *LLMOptions) (string, error) {
	if err := c.consumeBudget(); err != nil {
		return "", err
	}

	baseURL := c.cfg.BaseURL
	apiKey := c.cfg.APIKey
	model := c.cfg.Model
	if opts != nil {
		if opts.BaseURL != "" {
			baseURL = opts.BaseURL
		}
		if opts.APIKey != "" {
			apiKey = opts.APIKey
		}
		if opts.Model != "" {
			model = opts.Model
		}
	}

	models := append([]string{model}, c.cfg.FallbackModels...)
	var lastErr error
	for _, m := range models {
		if c.modelDisabled(m) {
			continue
		}

		content, err := c.chatWithRetry(ctx, baseURL, apiKey, m, messages)
		if err == nil {
			c.recordResult(m, true)
			return content, nil
		}
		c.recordResult(m, false)
		lastErr = err
		log.Printf("llm model %s failed: %v", m, err)
	}

	if lastErr == nil {
		lastErr = errors.New("沒有可用的模型")
	}
	return "", lastErr
}

func (c *LLMClient) chatWithRetry(ctx context.Context, baseURL, apiKey, model string, messages []ChatMessage) (string, error) {
	var lastErr error
	for attempt := 0; attempt < llmMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<attempt) * 500 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		content, err := c.doRequest(ctx, baseURL, apiKey, model, messages)
		if err == nil {
			return content, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (c *LLMClient) doRequest(ctx context.Context, baseURL, apiKey, model string, messages []ChatMessage) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(baseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm api status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", err
	}
	if completion.Error != nil {
		return "", fmt.Errorf("llm api error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := cleanCompletion(completion.Choices[0].Message.Content)
	if len([]rune(content)) < llmMinContentLength {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

// cleanCompletion 移除推理模型的思考標籤並修剪空白
func cleanCompletion(content string) string {
	content = thinkTagPattern.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// consumeBudget 消耗一次每日額度，跨日自動重置
func (c *LLMClient) consumeBudget() error {
	if c.cfg.DailyLimit <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	today := time.Now().Format("2006-01-02")
	if c.usageDay != today {
		c.usageDay = today
		c.requestsUsed = 0
	}
	if c.requestsUsed >= c.cfg.DailyLimit {
		return ErrDailyLimitExceeded
	}
	c.requestsUsed++
	return nil
}

// modelDisabled 連續失敗太多次的模型暫時停用
func (c *LLMClient) modelDisabled(model string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modelFails[model] >= llmModelFailLimit
}

func (c *LLMClient) recordResult(model string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.modelFails[model] = 0
	} else {
		c.modelFails[model]++
	}
}
