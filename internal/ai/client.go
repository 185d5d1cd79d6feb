// Package ai wraps the remote language model behind two narrow calls:
// best-effort extraction of a transaction draft from free text, and a short
// narrative insight over the ledger. Both are optional and fallible; every
// failure is converted to "no result" or a fixed fallback at this boundary
// and never propagates further.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tally/internal/core"

	"github.com/sashabaranov/go-openai"
)

// Config points the client at any OpenAI-compatible endpoint; a local
// Ollama server works via its /v1 API. An empty model disables the client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// completer is the slice of the OpenAI client the package uses. Narrowed
// for testability.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api   completer
	model string
}

func New(cfg Config) *Client {
	if cfg.Model == "" {
		return &Client{}
	}
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
	}
}

// Enabled reports whether a model is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.api != nil
}

// Draft is a partial transaction extracted from free text. Nil fields were
// not extracted and must not overwrite whatever the caller already has.
type Draft struct {
	Amount     *core.Money           `json:"amountCents,omitempty"`
	CategoryID *string               `json:"categoryId,omitempty"`
	Type       *core.TransactionType `json:"type,omitempty"`
	Note       *string               `json:"note,omitempty"`
	Date       *time.Time            `json:"date,omitempty"`
}

// parsePayload is the JSON shape the model is instructed to emit.
type parsePayload struct {
	Amount     json.Number `json:"amount"`
	CategoryID string      `json:"categoryId"`
	Type       string      `json:"type"`
	Note       string      `json:"note"`
	Date       string      `json:"date"`
}

// ParseFreeText asks the model to extract a transaction draft. It returns
// (nil, nil) when no amount can be determined; that is a normal outcome,
// not an error. The caller decides what to do with a transport error; the
// usual answer is to log it and treat it as "nothing extracted".
func (c *Client) ParseFreeText(ctx context.Context, text string, now time.Time) (*Draft, error) {
	if !c.Enabled() {
		return nil, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: parseSystemPrompt(now)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty response")
	}

	return draftFromPayload(ctx, resp.Choices[0].Message.Content)
}

func parseSystemPrompt(now time.Time) string {
	var catIDs []string
	for _, c := range core.Categories() {
		catIDs = append(catIDs, fmt.Sprintf("%s (%s)", c.ID, c.Type))
	}

	return fmt.Sprintf(`Return only minified JSON in one line. No comments. No markdown.

CRITICAL RULES:
- Extract at most one transaction from the user's text.
- amount is the decimal amount of money, always positive. Omit it (or use 0) when no amount is stated.
- categoryId MUST be exactly one of: %s. Never invent new ids; omit when unsure.
- type is "EXPENSE" or "INCOME"; omit when unsure.
- note is a short free-text description taken from the input; omit when there is none.
- date MUST be ISO-8601 (YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS). Resolve relative dates against today, %s. Omit when no date is mentioned.

OUTPUT JSON SCHEMA:
{"amount":number,"categoryId":string,"type":string,"note":string,"date":string}`,
		strings.Join(catIDs, ", "),
		now.Format("2006-01-02"))
}

// draftFromPayload converts the model's JSON into a Draft, dropping every
// field that does not survive validation. No amount means no draft.
func draftFromPayload(ctx context.Context, content string) (*Draft, error) {
	content = stripCodeFence(content)

	var payload parsePayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal model output: %w", err)
	}

	amount, err := payload.Amount.Float64()
	if err != nil || amount <= 0 {
		return nil, nil
	}
	money := core.MoneyFromFloat(amount)
	if money.Cents <= 0 {
		return nil, nil
	}

	draft := &Draft{Amount: &money}

	if _, ok := core.CategoryByID(payload.CategoryID); ok {
		id := payload.CategoryID
		draft.CategoryID = &id
	} else if payload.CategoryID != "" {
		slog.DebugContext(ctx, "Dropping unknown category from model output", "category", payload.CategoryID)
	}

	if typ, err := core.ParseTransactionType(payload.Type); err == nil {
		draft.Type = &typ
	} else if draft.CategoryID != nil {
		// Fall back to the category's own type when the model omitted it.
		if c, ok := core.CategoryByID(*draft.CategoryID); ok {
			t := c.Type
			draft.Type = &t
		}
	}

	if note := strings.TrimSpace(payload.Note); note != "" {
		draft.Note = &note
	}

	if payload.Date != "" {
		if ts, ok := parseModelDate(payload.Date); ok {
			draft.Date = &ts
		} else {
			slog.DebugContext(ctx, "Dropping unparseable date from model output", "date", payload.Date)
		}
	}

	return draft, nil
}

func parseModelDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
