package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"pocket-ledger/internal/models"
	"pocket-ledger/internal/receipt"
	"pocket-ledger/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
)

const suggestionInstruction = `You label shopping receipts for a personal finance app.
Answer with exactly one category id from the list you are given and nothing else.
If no category fits, answer "uncategorized".`

const maxPromptItems = 30

var wordRe = regexp.MustCompile(`[a-z0-9-]+`)

// CategorySuggester asks GigaChat which expense category a scanned receipt
// belongs to. Without an API key it suggests nothing.
type CategorySuggester struct {
	client   *gigago.Client
	generate func(ctx context.Context, prompt string) (string, error)
	logger   *zap.Logger
}

func NewCategorySuggester(ctx context.Context, cfg *config.GigaChatConfig, logger *zap.Logger) (*CategorySuggester, error) {
	if cfg.APIKey == "" {
		logger.Info("GigaChat API key not set, category suggestions disabled")
		return &CategorySuggester{logger: logger}, nil
	}

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = suggestionInstruction
	model.Temperature = 0.1

	return &CategorySuggester{
		client: client,
		generate: func(ctx context.Context, prompt string) (string, error) {
			resp, err := model.Generate(ctx, []gigago.Message{
				{Role: gigago.RoleUser, Content: prompt},
			})
			if err != nil {
				return "", fmt.Errorf("failed to generate response: %w", err)
			}
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("no response from LLM")
			}
			return resp.Choices[0].Message.Content, nil
		},
		logger: logger,
	}, nil
}

func (s *CategorySuggester) Enabled() bool {
	return s != nil && s.generate != nil
}

// Suggest returns the id of one of the given expense categories, or "" when
// suggestions are disabled or the model answered with something unknown.
func (s *CategorySuggester) Suggest(ctx context.Context, r receipt.ParsedReceipt, categories []models.Category) (string, error) {
	if !s.Enabled() || len(r.Items) == 0 {
		return "", nil
	}

	known := make(map[string]bool)
	for _, c := range categories {
		if c.Type == models.TransactionTypeExpense {
			known[c.ID] = true
		}
	}
	if len(known) == 0 {
		return "", nil
	}

	content, err := s.generate(ctx, buildSuggestionPrompt(r, categories))
	if err != nil {
		return "", err
	}

	id := matchCategory(content, known)
	s.logger.Debug("Category suggested",
		zap.String("answer", strings.TrimSpace(content)),
		zap.String("category", id),
	)
	return id, nil
}

func buildSuggestionPrompt(r receipt.ParsedReceipt, categories []models.Category) string {
	var sb strings.Builder
	sb.WriteString("Categories:\n")
	for _, c := range categories {
		if c.Type != models.TransactionTypeExpense {
			continue
		}
		fmt.Fprintf(&sb, "- %s (%s)\n", c.ID, c.Name)
	}

	sb.WriteString("\nReceipt items:\n")
	for i, it := range r.Items {
		if i == maxPromptItems {
			fmt.Fprintf(&sb, "... and %d more\n", len(r.Items)-maxPromptItems)
			break
		}
		fmt.Fprintf(&sb, "- %s x%d\n", it.Name, it.Quantity)
	}
	fmt.Fprintf(&sb, "\nTotal: %s\n", r.Total.StringFixed(2))
	return sb.String()
}

// matchCategory picks the first word of the answer that is a known id.
func matchCategory(content string, known map[string]bool) string {
	for _, word := range wordRe.FindAllString(strings.ToLower(content), -1) {
		if known[word] {
			return word
		}
	}
	return ""
}

func (s *CategorySuggester) Close() error {
	if s != nil && s.client != nil {
		s.client.Close()
	}
	return nil
}
