package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/stats"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/singleflight"
)

// fallbackInsight is returned whenever the model cannot be reached or is
// not configured. Fixed per language; never an error.
var fallbackInsight = map[core.Language]string{
	core.English: "Keep recording your income and expenses to unlock personalized insights.",
	core.German:  "Erfasse weiter deine Einnahmen und Ausgaben, um persönliche Auswertungen zu erhalten.",
	core.Chinese: "继续记录收支，即可获得个性化的财务分析。",
}

var insightLanguageName = map[core.Language]string{
	core.English: "English",
	core.German:  "German",
	core.Chinese: "Simplified Chinese",
}

// Insights generates a short narrative over the ledger. Results are cached
// per store revision and language; concurrent requests for the same key are
// collapsed into one model call.
type Insights struct {
	client *Client
	cache  *cache.LRU[string]
	group  singleflight.Group
}

func NewInsights(client *Client) *Insights {
	return &Insights{
		client: client,
		cache:  cache.NewLRU[string](16, 30*time.Minute),
	}
}

// Generate never fails: any problem yields the per-language fallback.
// revision identifies the ledger state the snapshot was taken from.
func (i *Insights) Generate(ctx context.Context, txs []core.Transaction, lang core.Language, revision uint64) string {
	if !lang.IsValid() {
		lang = core.English
	}
	if !i.client.Enabled() || len(txs) == 0 {
		return fallbackInsight[lang]
	}

	key := fmt.Sprintf("%d:%s", revision, lang)
	if cached, ok := i.cache.Get(key); ok {
		return cached
	}

	result, err, _ := i.group.Do(key, func() (any, error) {
		text, err := i.generate(ctx, txs, lang)
		if err != nil {
			return "", err
		}
		i.cache.Set(key, text)
		return text, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "Insight generation failed, using fallback", "error", err, "language", lang)
		return fallbackInsight[lang]
	}
	return result.(string)
}

func (i *Insights) generate(ctx context.Context, txs []core.Transaction, lang core.Language) (string, error) {
	resp, err := i.client.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       i.client.model,
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: insightSystemPrompt(lang)},
			{Role: openai.ChatMessageRoleUser, Content: insightUserPrompt(txs, lang)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("chat completion: blank insight")
	}
	return text, nil
}

func insightSystemPrompt(lang core.Language) string {
	return fmt.Sprintf(`You are a concise personal finance assistant. Given aggregate
figures of a user's ledger, reply with 2-3 short sentences of practical,
friendly observations. No lists, no headings, no financial advice
disclaimers. Respond in %s.`, insightLanguageName[lang])
}

// insightUserPrompt condenses the ledger into aggregates; raw notes are
// deliberately not sent to the model.
func insightUserPrompt(txs []core.Transaction, lang core.Language) string {
	summary := stats.Totals(txs)
	savings := stats.CurrentMonthSavings(txs, time.Now())

	var b strings.Builder
	fmt.Fprintf(&b, "Transactions recorded: %d\n", len(txs))
	fmt.Fprintf(&b, "Total income: %s\n", summary.Income)
	fmt.Fprintf(&b, "Total expense: %s\n", summary.Expense)
	fmt.Fprintf(&b, "Balance: %s\n", summary.Balance)
	fmt.Fprintf(&b, "Savings this month: %s\n", savings)

	breakdown := stats.CategoryExpenseBreakdown(txs, func(id string) (string, bool) {
		c, ok := core.CategoryByID(id)
		if !ok {
			return "", false
		}
		return c.LocalizedName(lang), true
	})
	if len(breakdown) > 0 {
		b.WriteString("Top expense categories:\n")
		for i, entry := range breakdown {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", entry.Name, entry.Value)
		}
	}
	return b.String()
}

// Fallback exposes the fixed fallback text for a language.
func Fallback(lang core.Language) string {
	if !lang.IsValid() {
		lang = core.English
	}
	return fallbackInsight[lang]
}
