package models

import (
	"time"

	"github.com/google/uuid"
)

type ScanStatus string

const (
	ScanStatusParsed ScanStatus = "parsed"
	ScanStatusFailed ScanStatus = "failed"
	ScanStatusBooked ScanStatus = "booked"
)

// ReceiptScan is one uploaded receipt image or PDF together with the OCR text
// and the parsed receipt serialized as JSON.
type ReceiptScan struct {
	ID                uuid.UUID  `db:"id"`
	UserID            uuid.UUID  `db:"user_id"`
	FileName          string     `db:"file_name"`
	FileSize          int64      `db:"file_size"`
	FileURL           string     `db:"file_url"`
	ContentHash       string     `db:"content_hash"`
	ExtractedText     string     `db:"extracted_text"`
	ParsedJSON        []byte     `db:"parsed_json"`
	SuggestedCategory string     `db:"suggested_category"`
	Status            ScanStatus `db:"status"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}
