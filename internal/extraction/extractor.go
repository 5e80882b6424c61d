// Package extraction calls the vision-language extraction service to turn a
// receipt image into a draft transaction. The service's output is treated as
// an untrusted suggestion: parsed defensively, validated, and coerced before
// anything leaves this package.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/spendwise-platform/internal/config"
	"github.com/spendwise-platform/internal/domain/receipt"
)

const extractionPrompt = `Analyze this receipt or invoice image and extract the following information in JSON format:
- Total amount (just the number, from TOTAL field if it's an invoice)
- Date (in ISO format YYYY-MM-DD, from invoice date or receipt date)
- Description or items purchased (brief summary of items)
- Merchant/store name (company name from FROM field or merchant name)
- Suggested category (one of: housing,transportation,groceries,utilities,entertainment,food,shopping,healthcare,education,personal,travel,insurance,gifts,bills,other-expense)

Only respond with valid JSON in this exact format:
{
  "amount": number,
  "date": "ISO date string (YYYY-MM-DD)",
  "description": "string",
  "merchantName": "string",
  "category": "string"
}

If it's not a receipt or invoice, return an empty object {}`

// ContentGenerator wraps the generate call for testability
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content) (string, error)
}

type genaiGenerator struct {
	client *genai.Client
}

func (g *genaiGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Extractor orchestrates extraction attempts across an ordered model list
type Extractor struct {
	gen    ContentGenerator
	models []string
	logger *slog.Logger
	now    func() time.Time
}

// NewExtractor creates an extractor backed by the GenAI API
func NewExtractor(ctx context.Context, logger *slog.Logger, cfg *config.GeminiConfig) (*Extractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Extractor{
		gen:    &genaiGenerator{client: client},
		models: cfg.Models,
		logger: logger,
		now:    time.Now,
	}, nil
}

// extractedFields mirrors the JSON shape requested in the prompt. Fields are
// loosely typed; coercion happens after validation.
type extractedFields struct {
	Amount       json.Number `json:"amount"`
	Date         string      `json:"date"`
	Description  string      `json:"description"`
	MerchantName string      `json:"merchantName"`
	Category     string      `json:"category"`
}

// Scan extracts a draft transaction from a receipt image. Models are tried
// in order; the first one that answers wins. The model that produced the
// draft is returned alongside it for auditing.
func (e *Extractor) Scan(ctx context.Context, image []byte, mimeType string) (*receipt.Draft, string, error) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", receipt.ErrInvalidImage
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
				{Text: extractionPrompt},
			},
		},
	}

	var (
		text    string
		model   string
		lastErr error
	)
	for _, m := range e.models {
		out, err := e.gen.GenerateContent(ctx, m, contents)
		if err != nil {
			e.logger.Warn("Extraction model failed, trying next", "model", m, "error", err)
			lastErr = err
			continue
		}
		text = out
		model = m
		break
	}
	if model == "" {
		return nil, "", receipt.ErrAllModelsFailed{Models: e.models, LastErr: lastErr}
	}

	draft, err := e.parse(text)
	if err != nil {
		return nil, model, err
	}

	return draft, model, nil
}

// parse validates and coerces the model's text response into a draft
func (e *Extractor) parse(text string) (*receipt.Draft, error) {
	cleaned := stripCodeFences(text)
	if cleaned == "" || cleaned == "{}" {
		return nil, receipt.ErrNoReceiptData
	}

	var fields extractedFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		e.logger.Warn("Extraction response is not valid JSON", "error", err)
		return nil, fmt.Errorf("invalid extraction response: %w", err)
	}

	if fields.Amount == "" || fields.Category == "" {
		return nil, receipt.ErrIncompleteData
	}

	amount, err := fields.Amount.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid extraction response: %w", err)
	}

	date := e.now()
	if fields.Date != "" {
		if parsed, err := time.Parse("2006-01-02", fields.Date); err == nil {
			date = parsed
		}
	}

	return &receipt.Draft{
		Amount:       amount,
		Date:         date,
		Description:  fields.Description,
		Category:     fields.Category,
		MerchantName: fields.MerchantName,
	}, nil
}

// stripCodeFences removes markdown fence artifacts models sometimes wrap
// around JSON despite instructions
func stripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```json")
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	return strings.TrimSpace(s)
}
