package dto

import (
	"pocket-ledger/internal/receipt"
	"pocket-ledger/internal/splitbill"

	"github.com/shopspring/decimal"
)

type ParseReceiptRequest struct {
	Text string `json:"text" validate:"required,max=20000"`
}

type ScanResponse struct {
	ID                string                `json:"id"`
	FileName          string                `json:"file_name"`
	FileURL           string                `json:"file_url"`
	ExtractedText     string                `json:"extracted_text"`
	Receipt           receipt.ParsedReceipt `json:"receipt"`
	SuggestedCategory string                `json:"suggested_category,omitempty"`
	Status            string                `json:"status"`
	Cached            bool                  `json:"cached"`
	CreatedAt         string                `json:"created_at"`
}

const (
	BookModeTotal    = "total"
	BookModeItemized = "itemized"
)

// BookReceiptRequest books a scanned receipt into the ledger. Category falls
// back to the scan's suggested category; Date defaults to today.
type BookReceiptRequest struct {
	Mode          string `json:"mode" validate:"required,oneof=total itemized"`
	Category      string `json:"category" validate:"omitempty,max=40"`
	PaymentMethod string `json:"payment_method" validate:"required,max=40"`
	Description   string `json:"description" validate:"max=500"`
	Date          string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type BookReceiptResponse struct {
	ScanID       string                `json:"scan_id"`
	Transactions []TransactionResponse `json:"transactions"`
}

type SplitPersonRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required,max=50"`
}

type SplitItemRequest struct {
	Name       string          `json:"name" validate:"required"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity" validate:"min=1,max=999"`
	AssignedTo []string        `json:"assigned_to" validate:"required,min=1,dive,required"`
}

type SplitBillRequest struct {
	Items      []SplitItemRequest   `json:"items" validate:"required,min=1,dive"`
	People     []SplitPersonRequest `json:"people" validate:"required,min=1,dive"`
	Tax        decimal.Decimal      `json:"tax"`
	TaxPercent *decimal.Decimal     `json:"tax_percent"`
	Tip        decimal.Decimal      `json:"tip"`
}

// Bill converts the request into the splitter's input.
func (r SplitBillRequest) Bill() splitbill.Bill {
	bill := splitbill.Bill{
		Items:      make([]splitbill.Item, 0, len(r.Items)),
		People:     make([]splitbill.Person, 0, len(r.People)),
		Tax:        r.Tax,
		TaxPercent: r.TaxPercent,
		Tip:        r.Tip,
	}
	for _, it := range r.Items {
		bill.Items = append(bill.Items, splitbill.Item{
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
			AssignedTo: it.AssignedTo,
		})
	}
	for _, p := range r.People {
		bill.People = append(bill.People, splitbill.Person{ID: p.ID, Name: p.Name})
	}
	return bill
}
