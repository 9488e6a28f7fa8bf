package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"
	model          = "claude-3-haiku-20240307"
	maxTokens      = 256
)

// ErrNoEntry is returned when the model finds no member name in the text.
var ErrNoEntry = errors.New("no entry found in text")

// Client defines the interface for AI text processing.
type Client interface {
	// TranslateToEntry rewrites free text into the canonical "name milk, fat"
	// entry line.
	TranslateToEntry(ctx context.Context, input string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
}

// NewClient creates a configured Anthropic client. An empty baseURL uses the
// public API.
func NewClient(apiKey, baseURL string) Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type extractedEntry struct {
	Name string   `json:"name"`
	Milk *float64 `json:"milk"`
	Fat  *float64 `json:"fat"`
}

const systemPrompt = `You help a village dairy collection centre record milk intake.
The operator sends one short message, possibly in Hindi, Hinglish or English, about milk received from one supplier.
Extract the supplier name, the milk quantity in litres and the fat percentage.

RULES:
- Output ONLY a JSON object: {"name": string, "milk": number or null, "fat": number or null}
- Convert spoken or written number words to digits.
- Keep the name as spoken, lowercase, without honorifics such as ji or bhai.
- If there is no supplier name, set "name" to "".`

func (c *anthropicClient) TranslateToEntry(ctx context.Context, input string) (string, error) {
	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		// Prefill the assistant response to force JSON
		Messages: []message{
			{Role: "user", Content: input},
			{Role: "assistant", Content: "{"},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(messagesPath)

	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", errors.New("empty response from ai")
	}

	// Reconstruct the full JSON since we prefilled the opening brace
	responseText := cleanJSON("{" + respBody.Content[0].Text)

	var extracted extractedEntry
	if err := json.Unmarshal([]byte(responseText), &extracted); err != nil {
		return "", fmt.Errorf("failed to unmarshal ai response: %w", err)
	}
	return formatEntry(extracted)
}

// cleanJSON strips markdown code fences the model sometimes adds.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

func formatEntry(e extractedEntry) (string, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return "", ErrNoEntry
	}
	line := name
	if e.Milk != nil {
		line += " " + strconv.FormatFloat(*e.Milk, 'f', -1, 64)
	}
	if e.Fat != nil {
		line += ", " + strconv.FormatFloat(*e.Fat, 'f', -1, 64)
	}
	return line, nil
}
