package dto

import "pocket-ledger/internal/models"

// CategoryRequest creates a custom category. ID is derived from Name when
// left empty.
type CategoryRequest struct {
	ID   string `json:"id" validate:"omitempty,min=2,max=40,lowercase"`
	Name string `json:"name" validate:"required,max=50"`
	Type string `json:"type" validate:"required,oneof=income expense"`
	Icon string `json:"icon" validate:"max=16"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Icon      string `json:"icon"`
	IsDefault bool   `json:"is_default"`
}

type PaymentMethodRequest struct {
	ID   string `json:"id" validate:"omitempty,min=2,max=40,lowercase"`
	Name string `json:"name" validate:"required,max=50"`
	Icon string `json:"icon" validate:"max=16"`
}

type PaymentMethodResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	IsDefault bool   `json:"is_default"`
}

func NewCategoryResponses(categories []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{
			ID:        c.ID,
			Name:      c.Name,
			Type:      string(c.Type),
			Icon:      c.Icon,
			IsDefault: c.IsDefault,
		})
	}
	return out
}

func NewPaymentMethodResponses(methods []models.PaymentMethod) []PaymentMethodResponse {
	out := make([]PaymentMethodResponse, 0, len(methods))
	for _, pm := range methods {
		out = append(out, PaymentMethodResponse{
			ID:        pm.ID,
			Name:      pm.Name,
			Icon:      pm.Icon,
			IsDefault: pm.IsDefault,
		})
	}
	return out
}
