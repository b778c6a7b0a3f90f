package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pocket-ledger/internal/models"
	"pocket-ledger/internal/receipt"
	"pocket-ledger/pkg/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func coffeeReceipt() receipt.ParsedReceipt {
	return receipt.ParsedReceipt{
		Items: []receipt.Item{{Name: "Latte", Price: decimal.NewFromInt(4), Quantity: 2}},
		Total: decimal.NewFromInt(8),
	}
}

func TestCategorySuggesterDisabledWithoutKey(t *testing.T) {
	s, err := NewCategorySuggester(context.Background(), &config.GigaChatConfig{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCategorySuggester failed: %v", err)
	}
	if s.Enabled() {
		t.Fatalf("expected suggestions to be disabled")
	}

	got, err := s.Suggest(context.Background(), coffeeReceipt(), models.DefaultCategories)
	if err != nil || got != "" {
		t.Fatalf("expected no suggestion, got %q, %v", got, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestCategorySuggesterParsesAnswer(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{name: "bare id", answer: "dining", want: "dining"},
		{name: "sentence", answer: "The best fit is Dining.", want: "dining"},
		{name: "income category is not offered", answer: "salary", want: ""},
		{name: "unknown", answer: "coffee", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prompt string
			s := &CategorySuggester{
				generate: func(ctx context.Context, p string) (string, error) {
					prompt = p
					return tt.answer, nil
				},
				logger: zap.NewNop(),
			}

			got, err := s.Suggest(context.Background(), coffeeReceipt(), models.DefaultCategories)
			if err != nil {
				t.Fatalf("Suggest failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if !strings.Contains(prompt, "- dining (Dining)") || strings.Contains(prompt, "salary") {
				t.Errorf("prompt must list expense categories only:\n%s", prompt)
			}
			if !strings.Contains(prompt, "- Latte x2") {
				t.Errorf("prompt is missing the receipt items:\n%s", prompt)
			}
		})
	}
}

func TestCategorySuggesterPropagatesErrors(t *testing.T) {
	s := &CategorySuggester{
		generate: func(ctx context.Context, p string) (string, error) {
			return "", errors.New("rate limited")
		},
		logger: zap.NewNop(),
	}
	if _, err := s.Suggest(context.Background(), coffeeReceipt(), models.DefaultCategories); err == nil {
		t.Fatalf("expected error")
	}
}
