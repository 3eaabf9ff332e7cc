package enrich

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/user/barky/internal/config"
)

// SummaryResult contains the LLM-generated summary and keywords
type SummaryResult struct {
	Summary     string
	Keywords    string
	RawResponse string
}

// Notes renders the result as a single notes line.
func (r *SummaryResult) Notes() string {
	if r.Keywords == "" {
		return r.Summary
	}
	return fmt.Sprintf("%s (%s)", r.Summary, r.Keywords)
}

// Summarizer generates summaries using LLM
type Summarizer struct {
	cfg config.LLMConfig
}

func NewSummarizer(cfg config.LLMConfig) *Summarizer {
	return &Summarizer{cfg: cfg}
}

const summaryPrompt = `Analyze this bookmarked page and provide:
1. A concise 1 sentence summary of what this is about
2. 3-5 relevant keywords separated by commas

Format your response exactly as:
SUMMARY: <your summary>
KEYWORDS: <keyword1>, <keyword2>, <keyword3>

Content:
%s`

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func (s *Summarizer) Summarize(ctx context.Context, content string) (*SummaryResult, error) {
	// Truncate content for LLM
	const maxContentLen = 10000
	content = truncateUTF8(content, maxContentLen)

	prompt := fmt.Sprintf(summaryPrompt, content)

	var response string
	var err error

	switch s.cfg.Provider {
	case "anthropic":
		response, err = s.summarizeWithAnthropic(ctx, prompt)
	case "openai", "openrouter":
		response, err = s.summarizeWithOpenAI(ctx, prompt)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.cfg.Provider)
	}

	if err != nil {
		return nil, err
	}

	result := parseResponse(response)
	if result.Summary == "" {
		return nil, fmt.Errorf("empty summary from %s", s.cfg.Provider)
	}
	return result, nil
}

func (s *Summarizer) apiKey(env string) string {
	if s.cfg.APIKey != "" {
		return s.cfg.APIKey
	}
	return os.Getenv(env)
}

func (s *Summarizer) summarizeWithAnthropic(ctx context.Context, prompt string) (string, error) {
	apiKey := s.apiKey("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	var opts []anthropic.ClientOption
	if s.cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(s.cfg.BaseURL))
	}
	client := anthropic.NewClient(apiKey, opts...)

	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(s.cfg.Model),
		MaxTokens: 300,
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{{Type: "text", Text: &prompt}},
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	return resp.Content[0].GetText(), nil
}

func (s *Summarizer) summarizeWithOpenAI(ctx context.Context, prompt string) (string, error) {
	var apiKey string
	baseURL := s.cfg.BaseURL

	if s.cfg.Provider == "openrouter" {
		apiKey = s.apiKey("OPENROUTER_API_KEY")
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
	} else {
		apiKey = s.apiKey("OPENAI_API_KEY")
	}

	if apiKey == "" {
		return "", fmt.Errorf("API key not set for provider %s", s.cfg.Provider)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	client := openai.NewClientWithConfig(clientCfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.cfg.Model,
		MaxTokens: 300,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

func parseResponse(response string) *SummaryResult {
	result := &SummaryResult{RawResponse: response}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "SUMMARY:") {
			result.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		} else if strings.HasPrefix(line, "KEYWORDS:") {
			result.Keywords = strings.TrimSpace(strings.TrimPrefix(line, "KEYWORDS:"))
		}
	}

	return result
}
