package ledger

import "github.com/google/uuid"

// Financial status values. The status is set by a treasurer's manual edit,
// not derived from the ledger.
const (
	StatusFinancial    = "financial"
	StatusNotFinancial = "not financial"
)

// Member is the owner of payments and plans. The treasury core only reads
// members; account lifecycle lives in the surrounding application.
type Member struct {
	ID              uuid.UUID
	Name            string
	Email           string
	Active          bool
	FinancialStatus string
}
