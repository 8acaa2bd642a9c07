package models

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Bill is a payable owned by one user. PaidDate is non-nil only while Paid.
type Bill struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     *civil.Date     `json:"dueDate"`
	Paid        bool            `json:"paid"`
	PaidDate    *time.Time      `json:"paidDate"`
	Attachments []string        `json:"attachments"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Open reports whether the bill is still unpaid.
func (b Bill) Open() bool { return !b.Paid }

// NewBill is a validated create payload.
type NewBill struct {
	Title       string
	Description *string
	Amount      decimal.Decimal
	DueDate     *civil.Date
	Attachments []string
}

// BillPatch is a validated partial update, see TodoPatch.
type BillPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Amount      Optional[decimal.Decimal]
	DueDate     Optional[civil.Date]
	Paid        Optional[bool]
	PaidDate    Optional[time.Time]
	Attachments Optional[[]string]
}
