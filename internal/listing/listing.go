// Package listing drafts marketplace listings for a product keyword.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"product-scout/internal/domain"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxTitleRunes = 80

	SourceAI       = "ai"
	SourceTemplate = "template"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// ProductData is the market context passed to the generator.
type ProductData struct {
	AvgPrice    float64 `json:"avg_price"`
	SoldCount   int     `json:"sold_count"`
	Competition string  `json:"competition"`
}

type Listing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Source      string   `json:"source"`
}

// Generator asks the LLM for a listing and falls back to a fixed template
// when no client is configured or the reply is unusable.
type Generator struct {
	tracer trace.Tracer
	llm    LLMClient
	model  string
}

func NewGenerator(tracer trace.Tracer, llm LLMClient, model string) *Generator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Generator{tracer: tracer, llm: llm, model: model}
}

func (g *Generator) AIEnabled() bool {
	return g.llm != nil
}

func (g *Generator) Generate(ctx context.Context, keyword string, data ProductData) Listing {
	ctx, span := g.tracer.Start(ctx, "listing.generate")
	defer span.End()
	span.SetAttributes(attribute.String("keyword", keyword))

	if g.llm == nil {
		return Template(keyword, data)
	}

	l, err := g.fromLLM(ctx, keyword, data)
	if err != nil {
		span.RecordError(err)
		log.Printf("listing generation failed for %q, using template: %v", keyword, err)
		return Template(keyword, data)
	}
	return l
}

func (g *Generator) fromLLM(ctx context.Context, keyword string, data ProductData) (Listing, error) {
	completion, err := g.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildPrompt(keyword, data)),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(800),
	})
	if err != nil {
		return Listing{}, err
	}
	if len(completion.Choices) == 0 {
		return Listing{}, fmt.Errorf("no choices in LLM response")
	}

	var l Listing
	if err := json.Unmarshal([]byte(stripFences(completion.Choices[0].Message.Content)), &l); err != nil {
		return Listing{}, fmt.Errorf("parse listing: %w", err)
	}
	if l.Title == "" || l.Description == "" {
		return Listing{}, fmt.Errorf("listing missing title or description")
	}
	l.Title = truncate(l.Title, maxTitleRunes)
	l.Source = SourceAI
	return l, nil
}

func buildPrompt(keyword string, data ProductData) string {
	return fmt.Sprintf(`Create a high-converting eBay listing for %q.

Product details:
- Average selling price: $%.2f
- Sold count: %d
- Competition: %s

Generate JSON with:
1. title (max 80 chars, SEO-optimized)
2. description (engaging, 200-300 words)
3. keywords (10 SEO terms)

Format: {"title": "...", "description": "...", "keywords": ["..."]}`,
		keyword, data.AvgPrice, data.SoldCount, data.Competition)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Template builds a listing without any remote call.
func Template(keyword string, data ProductData) Listing {
	name := domain.ProductName(keyword)
	description := fmt.Sprintf(`Premium %s

- High quality product
- Fast and free shipping
- 30-day money back guarantee
- Top rated seller

This %s is perfect for anyone looking for quality and value. With %d+ satisfied customers, you can trust this product!

Shipping: ships within 1 business day
Guarantee: 100%% satisfaction or your money back

Perfect for: Home, Office, Gift, Personal Use`, name, keyword, data.SoldCount)

	return Listing{
		Title:       truncate(name+" - Fast Shipping - High Quality - Best Price", maxTitleRunes),
		Description: description,
		Keywords: []string{
			keyword,
			keyword + " best",
			keyword + " quality",
			keyword + " cheap",
			"buy " + keyword,
			keyword + " sale",
			keyword + " deal",
			keyword + " fast shipping",
			keyword + " new",
			keyword + " premium",
		},
		Source: SourceTemplate,
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
